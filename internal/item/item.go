package item

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// detailsHashLimit caps how much of the details body participates in the
// fingerprint. Long pages often carry volatile tails (counters, related
// links), so only the leading portion identifies the announcement.
const detailsHashLimit = 500

// Item represents one parsed conference announcement.
type Item struct {
	Parser      string    `db:"parser" json:"parser"`
	SourceURL   string    `db:"source_url" json:"source_url"`
	Title       string    `db:"title" json:"title,omitempty"`
	DateRaw     string    `db:"date_raw" json:"date_raw,omitempty"`
	Details     string    `db:"details" json:"details,omitempty"`
	URLs        []string  `db:"-" json:"urls"`
	Emails      []string  `db:"-" json:"emails"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetched_at"`
	ContentHash string    `db:"content_hash" json:"content_hash"`
}

var spaceRE = regexp.MustCompile(`\s+`)

// Normalize lowercases s, trims it, and collapses internal whitespace runs
// into single spaces.
func Normalize(s string) string {
	return spaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Fingerprint derives the deduplication hash for the item. URL and email
// lists are sorted before hashing, so two scrapes of the same announcement
// that extracted links in a different order still collide. Details are
// truncated to their leading normalized portion.
func Fingerprint(it *Item) string {
	details := Normalize(it.Details)
	if len(details) > detailsHashLimit {
		details = details[:detailsHashLimit]
	}

	parts := []string{
		Normalize(it.Parser),
		Normalize(it.SourceURL),
		Normalize(it.Title),
		Normalize(it.DateRaw),
		details,
		joinSorted(it.URLs),
		joinSorted(it.Emails),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)
}

// joinSorted normalizes, sorts, and joins a list for stable hashing.
func joinSorted(vals []string) string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		n := Normalize(v)
		if n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// Dedupe returns vals with duplicates removed, preserving first-seen order.
func Dedupe(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
