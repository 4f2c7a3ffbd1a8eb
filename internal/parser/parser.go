package parser

import (
	"context"

	"github.com/ovolkova/confwatch/internal/item"
)

// Window selects how far back a fetch should reach. The zero value means
// "latest": each source's default page or message budget. A positive Days
// value is a backfill request; sources respond by deepening pagination.
type Window struct {
	Days int
}

// Backfill reports whether the window asks for historical items.
func (w Window) Backfill() bool {
	return w.Days > 0
}

// Parser is one source-specific extraction routine.
type Parser interface {
	// Name identifies the source in stored rows, stats, and logs.
	Name() string
	// Fetch retrieves and extracts announcements for the window.
	Fetch(ctx context.Context, w Window) ([]item.Item, error)
}
