package stats

import "github.com/verte-zerg/cvsheet/internal/model"

// Default thresholds for the needs-more-sentences signal.
const (
	DefaultSentenceThreshold = 1000
	DefaultAvgClipsThreshold = 5.0
)

// Thresholds configure when a language needs more sentences.
type Thresholds struct {
	// Sentences is the minimum number of used sentences still waiting for
	// a recording.
	Sentences int
	// AvgClips is the maximum average number of clips per used sentence.
	AvgClips float64
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Sentences: DefaultSentenceThreshold, AvgClips: DefaultAvgClipsThreshold}
}

// Config controls snapshot assembly.
type Config struct {
	Thresholds Thresholds
	// Sampler draws sample sentences. A time-seeded generator is used when nil.
	Sampler Sampler
}

// DefaultConfig returns default thresholds and a time-seeded sampler.
func DefaultConfig() Config {
	return Config{Thresholds: DefaultThresholds()}
}

// NeedsMoreSentences reports whether contributors are running out of fresh
// sentences: too few used sentences lack a recording, or used sentences are
// already recorded too many times on average.
func NeedsMoreSentences(tc model.TextCorpusStats, th Thresholds) bool {
	return tc.SentencesWithoutRecording < th.Sentences || tc.AverageClipsPerSentence > th.AvgClips
}

// NeedsMoreSentences evaluates the signal for snap with the configured thresholds.
func (c Config) NeedsMoreSentences(snap model.Snapshot) bool {
	return NeedsMoreSentences(snap.TextCorpus, c.Thresholds)
}

// Assemble computes the full statistics snapshot for one corpus.
// It performs no I/O and never fails; malformed or missing values have
// already been decoded to zero defaults.
func Assemble(lang model.Language, in model.Input, cfg Config) model.Snapshot {
	idx := BuildDurationIndex(in.Durations)
	validatedHours := round(Hours(in.Validated, idx), 2)
	invalidatedHours := round(Hours(in.Invalidated, idx), 2)

	return model.Snapshot{
		Language: lang,
		ClipStats: model.ClipStats{
			TotalCount:       len(in.Durations),
			ValidatedCount:   len(in.Validated),
			InvalidatedCount: len(in.Invalidated),
			ValidatedHours:   validatedHours,
			InvalidatedHours: invalidatedHours,
			// Sum of the rounded parts; rounding again only drops float noise.
			TotalHours: round(validatedHours+invalidatedHours, 2),
		},
		SentenceStats: model.SentenceStats{
			ValidatedCount:   len(in.ValidatedSentences),
			InvalidatedCount: len(in.UnvalidatedSentences),
			TotalCount:       len(in.ValidatedSentences) + len(in.UnvalidatedSentences),
		},
		Demographics:     Demographics(in.Validated),
		ContributorStats: ContributorDistribution(in.Validated),
		TextCorpus:       TextCorpus(in.ValidatedSentences, in.Validated, cfg.Sampler),
	}
}

// Diagnostics counts data-quality problems that Assemble recovers from.
type Diagnostics struct {
	InvalidDurations   int
	DuplicateDurations int
	// MissingDurations counts clips with no duration record.
	MissingDurations int
	MissingClientIDs int
}

// Empty reports whether no problem was found.
func (d Diagnostics) Empty() bool {
	return d == Diagnostics{}
}

// Diagnose inspects in without changing how it is aggregated.
func Diagnose(in model.Input) Diagnostics {
	var d Diagnostics
	seen := make(map[string]struct{}, len(in.Durations))
	for _, r := range in.Durations {
		if !r.Valid {
			d.InvalidDurations++
			continue
		}
		if _, ok := seen[r.Clip]; ok {
			d.DuplicateDurations++
		}
		seen[r.Clip] = struct{}{}
	}
	for _, clips := range [][]model.ClipRecord{in.Validated, in.Invalidated} {
		for _, c := range clips {
			if _, ok := seen[c.Path]; !ok {
				d.MissingDurations++
			}
		}
	}
	for _, c := range in.Validated {
		if c.ClientID == "" {
			d.MissingClientIDs++
		}
	}
	return d
}
