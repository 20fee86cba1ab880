package stats

import "github.com/verte-zerg/cvsheet/internal/model"

const msPerHour = 1000 * 60 * 60

// DurationIndex maps a clip path to its duration in milliseconds.
type DurationIndex map[string]int64

// BuildDurationIndex indexes valid duration records. Invalid records are
// skipped. When a clip id repeats, the last record wins.
func BuildDurationIndex(records []model.DurationRecord) DurationIndex {
	idx := make(DurationIndex, len(records))
	for _, r := range records {
		if !r.Valid {
			continue
		}
		idx[r.Clip] = r.DurationMs
	}
	return idx
}

// Hours sums the durations of clips and converts them to hours.
// Clips missing from the index count as zero. The result is not rounded.
func Hours(clips []model.ClipRecord, idx DurationIndex) float64 {
	var totalMs int64
	for _, c := range clips {
		totalMs += idx[c.Path]
	}
	return float64(totalMs) / msPerHour
}
