package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

// The bare host lets requests through more often; www is the fallback.
var ineconListURLs = []string{
	"https://inecon.org/nauchnaya-zhizn/konferenczii/",
	"https://www.inecon.org/nauchnaya-zhizn/konferenczii/",
}

var (
	ineconPositiveRE   = regexp.MustCompile(`(?i)конференц|конгресс|школа|симпозиум|форум|workshop|воркшоп`)
	ineconNegativeRE   = regexp.MustCompile(`(?i)семинар|круглый\s+стол|заседани`)
	ineconDatePrefixRE = regexp.MustCompile(`(?i)^\s*\d{1,2}\s*(?:[-–—]{1,2}\s*\d{1,2}\s*)?[а-яё]+\s+\d{4}\s*г\.?\s*`)
)

// Inecon scrapes the Institute of Economics (RAS) conference list, following
// each upcoming conference to its detail page.
type Inecon struct {
	client *fetch.Client
}

func NewInecon(client *fetch.Client) *Inecon {
	return &Inecon{client: client}
}

func (p *Inecon) Name() string { return "inecon_conferences" }

func (p *Inecon) Fetch(ctx context.Context, _ Window) ([]item.Item, error) {
	doc, sourceURL, err := p.fetchList(ctx)
	if err != nil {
		return nil, err
	}

	var items []item.Item
	for _, link := range p.listLinks(doc, sourceURL) {
		it, err := p.fetchDetail(ctx, link.url, link.title, sourceURL)
		if err != nil {
			continue
		}
		items = append(items, *it)
	}
	return items, nil
}

func (p *Inecon) fetchList(ctx context.Context) (*goquery.Document, string, error) {
	var lastErr error
	for _, u := range ineconListURLs {
		doc, err := p.client.GetDocument(ctx, u)
		if err != nil {
			lastErr = err
			continue
		}
		return doc, u, nil
	}
	return nil, "", fmt.Errorf("fetching conference list: %w", lastErr)
}

// listLinks prefers the "Предстоящие" (upcoming) section; when the page
// structure shifts it falls back to any link sitting under a conference-like
// heading.
func (p *Inecon) listLinks(doc *goquery.Document, sourceURL string) []listLink {
	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	var links []listLink

	var upcoming *goquery.Selection
	root.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.Contains(normSpace(h.Text()), "Предстоящие") {
			upcoming = h
			return false
		}
		return true
	})

	if upcoming != nil {
		if ul := upcoming.NextAll().Filter("ul").First(); ul.Length() > 0 {
			ul.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				title := normSpace(a.Text())
				if title == "" || !p.targetTitle(title) {
					return
				}
				href, _ := a.Attr("href")
				links = append(links, listLink{title: title, url: absURL(sourceURL, href)})
			})
		}
	}

	if len(links) == 0 {
		root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			hdr := a.PrevAll().Filter("h3, h4").First()
			if hdr.Length() == 0 {
				return
			}
			title := normSpace(hdr.Text())
			if title == "" || !p.targetTitle(title) {
				return
			}
			href, _ := a.Attr("href")
			links = append(links, listLink{title: title, url: absURL(sourceURL, href)})
		})
	}

	seen := make(map[string]bool, len(links))
	uniq := links[:0]
	for _, l := range links {
		if seen[l.url] {
			continue
		}
		seen[l.url] = true
		uniq = append(uniq, l)
	}
	return uniq
}

func (p *Inecon) targetTitle(title string) bool {
	if ineconNegativeRE.MatchString(title) {
		return false
	}
	return ineconPositiveRE.MatchString(title)
}

func (p *Inecon) fetchDetail(ctx context.Context, pageURL, listTitle, sourceURL string) (*item.Item, error) {
	doc, err := p.client.GetDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return p.parseDetail(doc, pageURL, listTitle, sourceURL), nil
}

func (p *Inecon) parseDetail(doc *goquery.Document, pageURL, listTitle, sourceURL string) *item.Item {
	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	root.Find("nav, footer").Remove()

	title := normSpace(root.Find("h1").First().Text())
	if title == "" {
		title = normSpace(listTitle)
	}
	if title == "" {
		title = pageURL
	}

	text := flattenText(root)

	dateRaw := normSpace(ineconDatePrefixRE.FindString(title))
	if dateRaw == "" {
		dateRaw = normSpace(ineconDatePrefixRE.FindString(listTitle))
	}

	urls := []string{pageURL}
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href != "" && !strings.HasPrefix(href, "#") {
			urls = append(urls, absURL(pageURL, href))
		}
	})
	urls = append(urls, extractURLs(text)...)

	return &item.Item{
		Parser:    p.Name(),
		SourceURL: sourceURL,
		Title:     title,
		DateRaw:   dateRaw,
		Details:   prependDeadlines(extractDeadlines(text), text),
		URLs:      item.Dedupe(urls),
		Emails:    item.Dedupe(extractEmails(text)),
	}
}
