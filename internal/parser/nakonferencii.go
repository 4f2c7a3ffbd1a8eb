package parser

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ovolkova/confwatch/internal/fetch"
	"github.com/ovolkova/confwatch/internal/item"
)

// Card dates read like "26 февраля - 27 февраля 2026 г.".
var naKonfDateRE = regexp.MustCompile(`(?i)\d{1,2}\s+[а-яё]+(?:\s+\d{4})?(?:\s*[-–]\s*\d{1,2}\s+[а-яё]+(?:\s+\d{4})?)?(?:\s*г\.)?`)

const naKonfDefaultPages = 30

// NaKonferencii scrapes a na-konferencii.ru category listing: a WordPress
// archive of conference cards with standard pagination. The page budget
// doubles under backfill to reach older announcements.
type NaKonferencii struct {
	client      *fetch.Client
	categoryURL string
	maxPages    int
}

// NewNaKonferencii targets one category archive. maxPages zero means the
// default page budget.
func NewNaKonferencii(client *fetch.Client, categoryURL string, maxPages int) *NaKonferencii {
	if maxPages <= 0 {
		maxPages = naKonfDefaultPages
	}
	return &NaKonferencii{
		client:      client,
		categoryURL: strings.TrimRight(categoryURL, "/"),
		maxPages:    maxPages,
	}
}

func (p *NaKonferencii) Name() string { return "na_konferencii_category" }

func (p *NaKonferencii) Fetch(ctx context.Context, w Window) ([]item.Item, error) {
	budget := p.maxPages
	if w.Backfill() {
		budget *= 2
	}

	var items []item.Item
	pageURL := p.categoryURL
	visited := make(map[string]bool)

	for page := 0; page < budget; page++ {
		if visited[pageURL] {
			break
		}
		visited[pageURL] = true

		doc, err := p.client.GetDocument(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			// Deeper pages are best effort; keep what we have.
			break
		}

		pageItems := p.parsePage(doc, pageURL)
		if len(pageItems) == 0 {
			break
		}
		items = append(items, pageItems...)

		next := p.nextPageURL(doc, pageURL)
		if next == "" {
			break
		}
		pageURL = next
	}

	return items, nil
}

func (p *NaKonferencii) parsePage(doc *goquery.Document, pageURL string) []item.Item {
	var items []item.Item
	p.findCards(doc).Each(func(_ int, card *goquery.Selection) {
		text := flattenText(card)

		title, link := cardTitleAndLink(card, p.categoryURL)
		if title == "" || link == "" {
			return
		}

		// Breadcrumb/category links sometimes render as cards.
		if strings.Contains(link, "conference-cat") && strings.HasPrefix(strings.ToLower(title), "категория") {
			return
		}

		details := text
		if strings.HasPrefix(details, title) {
			details = strings.TrimSpace(details[len(title):])
		}

		items = append(items, item.Item{
			Parser:    p.Name(),
			SourceURL: pageURL,
			Title:     title,
			DateRaw:   normSpace(naKonfDateRE.FindString(text)),
			Details:   details,
			URLs:      []string{link},
			Emails:    []string{},
		})
	})
	return items
}

// findCards tries the usual WordPress card markup in order of likelihood.
func (p *NaKonferencii) findCards(doc *goquery.Document) *goquery.Selection {
	if cards := doc.Find("article"); cards.Length() > 0 {
		return cards
	}
	if cards := doc.Find(".post, .type-post, .conference, .conf, .item"); cards.Length() > 0 {
		return cards
	}

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find(".content").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	return root.Find("h2, h3")
}

func cardTitleAndLink(card *goquery.Selection, baseURL string) (string, string) {
	var a *goquery.Selection
	for _, sel := range []string{"h2 a[href]", "h3 a[href]", "a[href]"} {
		a = card.Find(sel).First()
		if a.Length() > 0 {
			break
		}
	}
	if a == nil || a.Length() == 0 {
		return "", ""
	}

	title := normSpace(a.Text())
	href, _ := a.Attr("href")
	if href == "" {
		return title, ""
	}
	return title, absURL(baseURL+"/", href)
}

// nextPageURL finds the pagination link: rel=next, then the standard
// WordPress .next.page-numbers, then any "next"-captioned link.
func (p *NaKonferencii) nextPageURL(doc *goquery.Document, currentURL string) string {
	if a := doc.Find(`a[rel="next"]`).First(); a.Length() > 0 {
		if href, ok := a.Attr("href"); ok && href != "" {
			return absURL(currentURL, href)
		}
	}
	if a := doc.Find("a.next.page-numbers[href]").First(); a.Length() > 0 {
		href, _ := a.Attr("href")
		return absURL(currentURL, href)
	}

	var next string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		t := strings.ToLower(normSpace(a.Text()))
		if strings.Contains(t, "след") || strings.Contains(t, "next") {
			href, _ := a.Attr("href")
			next = absURL(currentURL, href)
			return false
		}
		return true
	})
	return next
}
