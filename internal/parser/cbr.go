package parser

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

const cbrActivityURL = "https://cbr.ru/ec_research/activity/"

// Card dates look like "12 сентября 2026" or "12 сентября - 13 сентября 2026".
var cbrDateRE = regexp.MustCompile(`(?i)^\d{1,2}\s+[а-яё]+(?:\s*[-–]\s*\d{1,2}\s+[а-яё]+)?\s+\d{4}$`)

// CbrActivity scrapes the Bank of Russia research events page. Cards link to
// /ec_research/activity/<id>/; only conferences and contests are kept.
type CbrActivity struct {
	client *fetch.Client
}

func NewCbrActivity(client *fetch.Client) *CbrActivity {
	return &CbrActivity{client: client}
}

func (p *CbrActivity) Name() string { return "cbr_ec_research_activity" }

func (p *CbrActivity) Fetch(ctx context.Context, _ Window) ([]item.Item, error) {
	doc, err := p.client.GetDocument(ctx, cbrActivityURL)
	if err != nil {
		return nil, err
	}
	return p.parse(doc), nil
}

func (p *CbrActivity) parse(doc *goquery.Document) []item.Item {
	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	var items []item.Item
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(href, "/ec_research/activity/") {
			return
		}

		title := normSpace(a.Text())
		if title == "" {
			return
		}

		fullURL := absURL(cbrActivityURL, href)

		container := a.Closest("li, div, article, section")
		if container.Length() == 0 {
			container = a.Parent()
		}
		lines := blockLines(flattenText(container))

		var dateRaw string
		for _, ln := range lines {
			if cbrDateRE.MatchString(ln) {
				dateRaw = ln
				break
			}
		}

		kind := cardKind(lines, title, dateRaw)
		if !cbrTarget(title, kind) {
			return
		}

		details := kind
		if strings.EqualFold(details, title) {
			details = ""
		}

		items = append(items, item.Item{
			Parser:    p.Name(),
			SourceURL: cbrActivityURL,
			Title:     title,
			DateRaw:   dateRaw,
			Details:   details,
			URLs:      []string{fullURL},
			Emails:    []string{},
		})
	})

	return items
}

// cardKind guesses the event type label on a card. It is usually the
// shortest of the trailing lines once the title and date are excluded.
func cardKind(lines []string, title, dateRaw string) string {
	var tail []string
	for _, ln := range lines {
		if strings.EqualFold(ln, title) || strings.EqualFold(ln, dateRaw) {
			continue
		}
		tail = append(tail, ln)
	}
	if len(tail) == 0 {
		return ""
	}
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}

	kind := tail[0]
	for _, ln := range tail[1:] {
		if len(ln) < len(kind) {
			kind = ln
		}
	}
	return kind
}

func cbrTarget(title, kind string) bool {
	t := strings.ToLower(title)
	k := strings.ToLower(kind)
	return strings.Contains(t, "конкурс") || strings.Contains(k, "конкурс") ||
		strings.Contains(t, "конференц") || strings.Contains(k, "конференц")
}
