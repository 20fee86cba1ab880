package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/cvsheet/internal/model"
)

// RenderHistory prints saved snapshots one per row, with the change in
// validated hours since the previous snapshot of the same language.
func RenderHistory(w io.Writer, records []model.SnapshotRecord) error {
	if len(records) == 0 {
		return writeLines(w, []string{"No saved snapshots."})
	}
	prev := make(map[string]float64, len(records))
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		delta := "-"
		if last, ok := prev[rec.Lang]; ok {
			delta = fmt.Sprintf("%+.2f", rec.ValidatedHours-last)
		}
		prev[rec.Lang] = rec.ValidatedHours
		needs := "no"
		if rec.NeedsMoreSentences {
			needs = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.ID),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Lang,
			fmt.Sprintf("%.2f", rec.ValidatedHours),
			delta,
			humanize.Comma(int64(rec.TotalClips)),
			humanize.Comma(int64(rec.Contributors)),
			needs,
		})
	}
	headers := []string{"ID", "Date", "Lang", "Hours", "Change", "Clips", "Contributors", "Needs sentences"}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true, 6: true}))
}
