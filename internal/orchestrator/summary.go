package orchestrator

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

const timeRounding = 10 * time.Millisecond

// RenderSummary writes the per-source pass results as a table.
func RenderSummary(w io.Writer, s *Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Source", "Fetched", "Inserted", "Duplicates", "Status", "Duration"})

	for _, src := range s.Sources {
		status := "ok"
		if src.Failed {
			status = "failed"
		}
		t.AppendRow(table.Row{
			src.Parser, src.Fetched, src.Inserted, src.Duplicates,
			status, src.Duration.Round(timeRounding).String(),
		})
	}

	t.AppendFooter(table.Row{
		"total", s.TotalFetched(), s.TotalInserted(), s.TotalDuplicates(),
		"", s.Duration.Round(timeRounding).String(),
	})
	t.Render()
}
