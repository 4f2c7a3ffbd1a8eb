package parser

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

const hseEconScienceURL = "https://economics.hse.ru/science_conferences"

// HseEconScience scrapes the HSE economics faculty conference index and
// follows every listed conference to its own page for dates, deadlines,
// and contact addresses. A detail page that fails to load is skipped so
// one offline subdomain never loses the rest of the list.
type HseEconScience struct {
	client *fetch.Client
}

func NewHseEconScience(client *fetch.Client) *HseEconScience {
	return &HseEconScience{client: client}
}

func (p *HseEconScience) Name() string { return "hse_econ_science_conferences" }

func (p *HseEconScience) Fetch(ctx context.Context, _ Window) ([]item.Item, error) {
	doc, err := p.client.GetDocument(ctx, hseEconScienceURL)
	if err != nil {
		return nil, err
	}

	var items []item.Item
	for _, link := range p.listLinks(doc) {
		it, err := p.fetchDetail(ctx, link.title, link.url)
		if err != nil {
			continue
		}
		items = append(items, *it)
	}
	return items, nil
}

type listLink struct {
	title string
	url   string
}

// listLinks extracts the conference links from the content block under the
// page heading, de-duplicated by target URL.
func (p *HseEconScience) listLinks(doc *goquery.Document) []listLink {
	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	// The conference list sits right under the h1; scoping to its parent
	// keeps header and footer navigation out.
	if h1 := root.Find("h1").First(); h1.Length() > 0 {
		if container := h1.Parent(); container.Length() > 0 {
			root = container
		}
	}

	seen := make(map[string]bool)
	var links []listLink
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		title := normSpace(a.Text())
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" || strings.HasPrefix(href, "#") {
			return
		}
		full := absURL(hseEconScienceURL, href)
		if seen[full] {
			return
		}
		seen[full] = true
		links = append(links, listLink{title: title, url: full})
	})
	return links
}

// fetchDetail loads one conference page and builds its item.
func (p *HseEconScience) fetchDetail(ctx context.Context, listTitle, pageURL string) (*item.Item, error) {
	doc, err := p.client.GetDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return p.parseDetail(doc, listTitle, pageURL), nil
}

func (p *HseEconScience) parseDetail(doc *goquery.Document, listTitle, pageURL string) *item.Item {
	title := normSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = normSpace(listTitle)
	}
	if title == "" {
		title = pageURL
	}

	text := descriptionText(doc)
	deadlines := extractDeadlines(text)

	return &item.Item{
		Parser:    p.Name(),
		SourceURL: hseEconScienceURL,
		Title:     title,
		DateRaw:   extractDate(text),
		Details:   prependDeadlines(deadlines, text),
		URLs:      []string{pageURL},
		Emails:    item.Dedupe(extractEmails(text)),
	}
}

// descriptionText pulls the readable body of a page, preferring
// article/section content and stripping navigation chrome.
func descriptionText(doc *goquery.Document) string {
	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	root.Find("nav, footer").Remove()

	candidate := root.Find("article").First()
	if candidate.Length() == 0 {
		candidate = root.Find("section").First()
	}
	if candidate.Length() == 0 {
		candidate = root
	}
	return flattenText(candidate)
}
