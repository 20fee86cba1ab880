package stats

import (
	"sort"

	"github.com/verte-zerg/cvsheet/internal/model"
)

// TopEntries returns the n most frequent histogram entries, ties broken by
// label. n <= 0 returns every entry.
func TopEntries(h model.Histogram, n int) []model.HistogramEntry {
	items := h.Entries()
	if len(items) == 0 {
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Label < items[j].Label
		}
		return items[i].Count > items[j].Count
	})
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	return items[:n]
}
