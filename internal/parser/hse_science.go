package parser

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

const hseScienceURL = "https://www.hse.ru/science/HSEconf"

// Month headings structure the page; they are separators, not announcements.
var hseMonthHeaders = map[string]bool{
	"ЯНВАРЬ": true, "ФЕВРАЛЬ": true, "МАРТ": true, "АПРЕЛЬ": true,
	"МАЙ": true, "ИЮНЬ": true, "ИЮЛЬ": true, "АВГУСТ": true,
	"СЕНТЯБРЬ": true, "ОКТЯБРЬ": true, "НОЯБРЬ": true, "ДЕКАБРЬ": true,
}

// HseScience scrapes the university-wide HSE conference calendar: a flat
// sequence of h4 blocks grouped under month headings, each block running
// until the next h4.
type HseScience struct {
	client *fetch.Client
}

func NewHseScience(client *fetch.Client) *HseScience {
	return &HseScience{client: client}
}

func (p *HseScience) Name() string { return "hse_science_hseconf" }

func (p *HseScience) Fetch(ctx context.Context, _ Window) ([]item.Item, error) {
	doc, err := p.client.GetDocument(ctx, hseScienceURL)
	if err != nil {
		return nil, err
	}
	return p.parse(doc), nil
}

func (p *HseScience) parse(doc *goquery.Document) []item.Item {
	var items []item.Item

	doc.Find("h4").Each(func(_ int, h *goquery.Selection) {
		title := normSpace(h.Text())
		if title == "" || hseMonthHeaders[strings.ToUpper(title)] {
			return
		}

		lines, hrefs := collectBlock(h)
		blockText := strings.Join(append([]string{title}, lines...), "\n")

		// The first date-looking line becomes the raw date; the rest stay
		// in the details.
		var dateRaw string
		var remaining []string
		for _, ln := range lines {
			if dateRaw == "" && extractDate(ln) != "" {
				dateRaw = ln
				continue
			}
			remaining = append(remaining, ln)
		}

		items = append(items, item.Item{
			Parser:    p.Name(),
			SourceURL: hseScienceURL,
			Title:     title,
			DateRaw:   dateRaw,
			Details:   strings.Join(remaining, "\n"),
			URLs:      item.Dedupe(append(hrefs, extractURLs(blockText)...)),
			Emails:    item.Dedupe(extractEmails(blockText)),
		})
	})

	return items
}

// collectBlock gathers the text lines and link targets of the siblings
// between h4 and the next h4. "Подробнее" link captions are dropped since
// the link itself is kept.
func collectBlock(h *goquery.Selection) (lines []string, hrefs []string) {
	h.NextUntil("h4").Each(func(_ int, sib *goquery.Selection) {
		sib.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)
			if href != "" && href != "#" {
				hrefs = append(hrefs, absURL(hseScienceURL, href))
			}
		})

		for _, ln := range blockLines(flattenText(sib)) {
			if ln != "Подробнее" {
				lines = append(lines, ln)
			}
		}
	})
	return lines, hrefs
}
