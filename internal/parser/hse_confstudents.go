package parser

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

const hseConfStudentsURL = "https://lang.hse.ru/ric/confstudents"

// HseConfStudents scrapes the HSE student conference list. Each announcement
// is an h4 (or h3) heading of the form "Title - date", with the surrounding
// block carrying links and contact addresses.
type HseConfStudents struct {
	client *fetch.Client
}

func NewHseConfStudents(client *fetch.Client) *HseConfStudents {
	return &HseConfStudents{client: client}
}

func (p *HseConfStudents) Name() string { return "hse_confstudents" }

func (p *HseConfStudents) Fetch(ctx context.Context, _ Window) ([]item.Item, error) {
	doc, err := p.client.GetDocument(ctx, hseConfStudentsURL)
	if err != nil {
		return nil, err
	}
	return p.parse(doc), nil
}

func (p *HseConfStudents) parse(doc *goquery.Document) []item.Item {
	headings := doc.Find("h4")
	if headings.Length() == 0 {
		headings = doc.Find("h3")
	}

	var items []item.Item
	headings.Each(func(_ int, h *goquery.Selection) {
		heading := normSpace(h.Text())
		if heading == "" {
			return
		}

		container := h.Closest("li, div, section")
		if container.Length() == 0 {
			container = h.Parent()
		}
		blockText := flattenText(container)

		details := blockText
		if strings.HasPrefix(blockText, heading) {
			details = strings.TrimSpace(blockText[len(heading):])
		}

		title, dateRaw := splitHeadingDate(heading)

		items = append(items, item.Item{
			Parser:    p.Name(),
			SourceURL: hseConfStudentsURL,
			Title:     title,
			DateRaw:   dateRaw,
			Details:   details,
			URLs:      item.Dedupe(extractURLs(blockText)),
			Emails:    item.Dedupe(extractEmails(blockText)),
		})
	})

	return items
}

// splitHeadingDate splits "Title - 12 мая 2026" on the last " - ".
func splitHeadingDate(heading string) (title, dateRaw string) {
	if idx := strings.LastIndex(heading, " - "); idx >= 0 {
		return strings.TrimSpace(heading[:idx]), strings.TrimSpace(heading[idx+3:])
	}
	return strings.TrimSpace(heading), ""
}
