package parser

import (
	"context"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

const econorusURL = "https://www.econorus.org/conference.phtml"

// Anchor text has to look like a scientific meeting, otherwise the page's
// navigation links flood the results.
var econorusTitleRE = regexp.MustCompile(`(?i)конференц|симпозиум|конгресс|воркшоп|workshop|forum|форум|кругл(ый|ые)\s+стол`)

// Dates on this page usually read like "14-15 октября 2026 г.".
var econorusDateRE = regexp.MustCompile(`(?i)\d{1,2}\s*(?:[-–]\s*\d{1,2}\s*)?[а-яё]+\s*\d{4}\s*г\.?`)

// Econorus scrapes the New Economic Association conference listing. The site
// serves windows-1251, which the fetch client transparently decodes.
type Econorus struct {
	client *fetch.Client
}

func NewEconorus(client *fetch.Client) *Econorus {
	return &Econorus{client: client}
}

func (p *Econorus) Name() string { return "econorus_conferences" }

func (p *Econorus) Fetch(ctx context.Context, _ Window) ([]item.Item, error) {
	doc, err := p.client.GetDocument(ctx, econorusURL)
	if err != nil {
		return nil, err
	}
	return p.parse(doc), nil
}

func (p *Econorus) parse(doc *goquery.Document) []item.Item {
	var items []item.Item

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		title := normSpace(a.Text())
		if title == "" || !econorusTitleRE.MatchString(title) {
			return
		}

		href, _ := a.Attr("href")
		fullURL := absURL(econorusURL, href)

		// The line around the link usually carries the venue and dates.
		line := title
		if parent := a.Parent(); parent.Length() > 0 {
			line = normSpace(parent.Text())
		}

		items = append(items, item.Item{
			Parser:    p.Name(),
			SourceURL: econorusURL,
			Title:     title,
			DateRaw:   normSpace(econorusDateRE.FindString(line)),
			Details:   line,
			URLs:      []string{fullURL},
			Emails:    []string{},
		})
	})

	return items
}
