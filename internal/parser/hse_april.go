package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

// HseAprilConf scrapes the landing page of the HSE April International
// Academic Conference. The page for the upcoming year is a single
// announcement, so the parser yields at most one item.
type HseAprilConf struct {
	client *fetch.Client
	year   int
}

// NewHseAprilConf targets the conference page for year. Zero means the next
// calendar year, which is when the upcoming edition is announced.
func NewHseAprilConf(client *fetch.Client, year int) *HseAprilConf {
	if year == 0 {
		year = time.Now().Year() + 1
	}
	return &HseAprilConf{client: client, year: year}
}

func (p *HseAprilConf) Name() string { return "hse_april_conf" }

func (p *HseAprilConf) url() string {
	return fmt.Sprintf("https://conf.hse.ru/en/%d", p.year)
}

func (p *HseAprilConf) Fetch(ctx context.Context, _ Window) ([]item.Item, error) {
	doc, err := p.client.GetDocument(ctx, p.url())
	if err != nil {
		return nil, err
	}
	return p.parse(doc, p.url()), nil
}

func (p *HseAprilConf) parse(doc *goquery.Document, pageURL string) []item.Item {
	title := normSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = normSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = fmt.Sprintf("HSE Conference %d", p.year)
	}

	main := doc.Find("main").First()
	if main.Length() == 0 {
		main = doc.Find("body").First()
	}
	details := flattenText(main)

	urls := []string{strings.TrimRight(pageURL, "/")}
	main.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		urls = append(urls, absURL(pageURL, href))
	})

	return []item.Item{{
		Parser:    p.Name(),
		SourceURL: strings.TrimRight(pageURL, "/"),
		Title:     title,
		DateRaw:   extractDate(details),
		Details:   details,
		URLs:      item.Dedupe(urls),
		Emails:    []string{},
	}}
}
