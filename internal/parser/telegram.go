package parser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

const telegramDefaultMessages = 200

// backfillMessageFactor deepens the scroll under backfill; the channel posts
// a handful of messages a day, so 6x the budget covers a month-scale window.
const backfillMessageFactor = 6

var (
	// Positive markers: the post announces a conference or a CFP.
	telegramPositiveRE = regexp.MustCompile(`(?i)\bконференц|\bмеждународн(ая|ый)\s+конференц|\bворкшоп\b|\bworkshop\b|\bсимпозиум\b|\bsymposium\b|\bфорум\b|\bcfp\b|call for papers|call for abstracts|paper submission|abstract submission`)

	// Negative markers: seminars, lectures, vacancies and similar noise.
	telegramNegativeRE = regexp.MustCompile(`(?i)\bсеминар(ы)?\b|\bнаучн(ый|ые)\s+семинар|\bлекци(я|и)\b|\bвебинар\b|\bwebinar\b|\bмастер-?класс\b|\bкурс\b|\bхакатон\b|\bhackathon\b|\bконкурс\b|\bстипенди(я|и)\b|\bгрант\b|\bваканси(я|и)\b|\bновост(ь|и)\b|\bнобелев`)

	telegramDateHintRE = regexp.MustCompile(`(?i)\b(\d{1,2}[./]\d{1,2}([./]\d{2,4})?|\d{1,2}\s+[а-яё]+(\s+\d{4})?)\b`)

	telegramMsgIDRE = regexp.MustCompile(`/(\d+)$`)
)

// TelegramChannel reads a public channel through the t.me/s/<name> HTML
// preview, which needs no API credentials. Older history is reached with
// the ?before=<id> cursor. Only conference-looking posts become items.
type TelegramChannel struct {
	client      *fetch.Client
	username    string
	maxMessages int
	baseURL     string
}

// NewTelegramChannel reads @username (the @ is optional). maxMessages zero
// means the default budget.
func NewTelegramChannel(client *fetch.Client, username string, maxMessages int) *TelegramChannel {
	if maxMessages <= 0 {
		maxMessages = telegramDefaultMessages
	}
	return &TelegramChannel{
		client:      client,
		username:    strings.TrimPrefix(username, "@"),
		maxMessages: maxMessages,
		baseURL:     "https://t.me",
	}
}

func (p *TelegramChannel) Name() string { return "telegram_channel" }

type tgMessage struct {
	id    int
	text  string
	dtISO string
	link  string
}

func (p *TelegramChannel) listURL(before int) string {
	base := fmt.Sprintf("%s/s/%s", p.baseURL, p.username)
	if before > 0 {
		return fmt.Sprintf("%s?before=%d", base, before)
	}
	return base
}

func (p *TelegramChannel) Fetch(ctx context.Context, w Window) ([]item.Item, error) {
	budget := p.maxMessages
	if w.Backfill() {
		budget *= backfillMessageFactor
	}

	var collected []tgMessage
	seen := make(map[int]bool)
	before := 0

	for len(collected) < budget {
		doc, err := p.client.GetDocument(ctx, p.listURL(before))
		if err != nil {
			if len(collected) == 0 {
				return nil, err
			}
			break
		}

		page := parseChannelPage(doc)
		if len(page) == 0 {
			break
		}

		minID := page[0].id
		added := 0
		for _, msg := range page {
			if msg.id < minID {
				minID = msg.id
			}
			if !seen[msg.id] {
				seen[msg.id] = true
				collected = append(collected, msg)
				added++
			}
		}
		// A page of already-seen messages means the cursor stopped moving.
		if added == 0 {
			break
		}
		before = minID
	}

	if len(collected) > budget {
		collected = collected[:budget]
	}

	var items []item.Item
	for _, msg := range collected {
		if !isConferencePost(msg.text) {
			continue
		}
		items = append(items, p.messageItem(msg))
	}
	return items, nil
}

func (p *TelegramChannel) messageItem(msg tgMessage) item.Item {
	title := ""
	if lines := strings.SplitN(msg.text, "\n", 2); len(lines) > 0 {
		title = strings.TrimSpace(lines[0])
		if len([]rune(title)) > 300 {
			title = string([]rune(title)[:300])
		}
	}

	return item.Item{
		Parser:    p.Name(),
		SourceURL: msg.link,
		Title:     title,
		DateRaw:   msg.dtISO,
		Details:   msg.text,
		URLs:      item.Dedupe(append([]string{msg.link}, extractURLs(msg.text)...)),
		Emails:    item.Dedupe(extractEmails(msg.text)),
	}
}

// parseChannelPage extracts the message wraps from one preview page.
func parseChannelPage(doc *goquery.Document) []tgMessage {
	var out []tgMessage
	doc.Find(".tgme_widget_message_wrap").Each(func(_ int, wrap *goquery.Selection) {
		a := wrap.Find("a.tgme_widget_message_date[href]").First()
		if a.Length() == 0 {
			return
		}
		link, _ := a.Attr("href")
		link = strings.TrimSpace(link)

		m := telegramMsgIDRE.FindStringSubmatch(link)
		if m == nil {
			return
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}

		text := flattenText(wrap.Find(".tgme_widget_message_text").First())

		dtISO, _ := wrap.Find("time[datetime]").First().Attr("datetime")

		out = append(out, tgMessage{id: id, text: text, dtISO: dtISO, link: link})
	})
	return out
}

// isConferencePost keeps only posts that read like a conference or CFP
// announcement and carry at least one date.
func isConferencePost(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if telegramNegativeRE.MatchString(t) {
		return false
	}
	if !telegramPositiveRE.MatchString(t) {
		return false
	}
	return telegramDateHintRE.MatchString(t)
}
