package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ovolkova/confwatch/internal/item"
)

// listSep joins multi-valued columns inside a single cell.
const listSep = "; "

var header = []string{
	"parser", "source_url", "title", "date", "details",
	"urls", "emails", "fetched_at", "content_hash",
}

// Write saves items to path, picking the format from the extension.
func Write(path string, items []item.Item) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXLSX(path, items)
	}
	return writeCSV(path, items)
}

func row(it item.Item) []string {
	return []string{
		it.Parser,
		it.SourceURL,
		it.Title,
		it.DateRaw,
		it.Details,
		strings.Join(it.URLs, listSep),
		strings.Join(it.Emails, listSep),
		it.FetchedAt.UTC().Format(time.RFC3339),
		it.ContentHash,
	}
}

func writeCSV(path string, items []item.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, it := range items {
		if err := w.Write(row(it)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return f.Close()
}

func writeXLSX(path string, items []item.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Listings"
	f.SetSheetName("Sheet1", sheet)

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("writing sheet header: %w", err)
	}

	for i, it := range items {
		vals := row(it)
		cells := make([]any, len(vals))
		for j, v := range vals {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing sheet row: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing sheet row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
