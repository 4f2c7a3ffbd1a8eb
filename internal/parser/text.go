package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockTags are elements that imply a line break when flattening markup
// into plain text.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "section": true, "article": true,
}

// flattenText renders a selection as plain text with newlines between block
// elements, mirroring how announcement pages read to a human.
func flattenText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteString("\n")
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(blockLines(b.String()), "\n")
}

var (
	urlRE   = regexp.MustCompile(`https?://[^\s<>"]+`)
	emailRE = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	spaceRE = regexp.MustCompile(`\s+`)

	// Russian and English dates like "14-15 октября 2026 г." or "3 June 2026".
	dateRE = regexp.MustCompile(`(?i)\d{1,2}\s*(?:[-–—]\s*\d{1,2}\s*)?(?:[а-яё]+|[A-Za-z]+)\s+\d{4}(?:\s*г\.?)?`)
)

// normSpace collapses whitespace runs and trims, keeping the original case.
func normSpace(s string) string {
	return spaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// extractURLs pulls http(s) links out of free text, stripping trailing
// punctuation that regularly clings to pasted links.
func extractURLs(text string) []string {
	matches := urlRE.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimRight(m, ").,;»"))
	}
	return out
}

// extractEmails pulls e-mail addresses out of free text.
func extractEmails(text string) []string {
	return emailRE.FindAllString(text, -1)
}

// extractDate returns the first date-looking fragment in text, or "".
func extractDate(text string) string {
	return strings.TrimSpace(dateRE.FindString(text))
}

// absURL resolves href against base. Unparseable input comes back unchanged
// so a single odd link never loses the rest of the page.
func absURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// blockLines splits block text into trimmed, non-empty lines.
func blockLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, ln := range raw {
		if n := normSpace(ln); n != "" {
			out = append(out, n)
		}
	}
	return out
}
