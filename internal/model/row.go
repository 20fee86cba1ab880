package model

import (
	"strconv"
	"strings"
)

// Row is one tabular record keyed by column header.
type Row map[string]string

// Get returns the column value, or "" when the column is absent.
func (r Row) Get(key string) string {
	return r[key]
}

// RowSet holds the raw rows of one corpus directory.
type RowSet struct {
	Validated            []Row
	Invalidated          []Row
	Durations            []Row
	ValidatedSentences   []Row
	UnvalidatedSentences []Row
}

// Column names used by the Common Voice release files.
const (
	ColPath       = "path"
	ColClientID   = "client_id"
	ColSentence   = "sentence"
	ColGender     = "gender"
	ColAge        = "age"
	ColAccents    = "accents"
	ColSource     = "source"
	ColClip       = "clip"
	ColDuration   = "duration[ms]"
	ColDurationMs = "duration_ms"
	ColIsUsed     = "is_used"
	ColClipsCount = "clips_count"
)

// DecodeClip converts a clip row into a ClipRecord.
func DecodeClip(r Row) ClipRecord {
	return ClipRecord{
		Path:     r.Get(ColPath),
		ClientID: r.Get(ColClientID),
		Sentence: r.Get(ColSentence),
		Gender:   r.Get(ColGender),
		Age:      r.Get(ColAge),
		Accents:  r.Get(ColAccents),
		Source:   r.Get(ColSource),
	}
}

// DecodeDuration converts a duration row. The release header is
// "duration[ms]"; "duration_ms" is accepted as a fallback.
func DecodeDuration(r Row) DurationRecord {
	rec := DurationRecord{Clip: r.Get(ColClip)}
	raw, ok := r[ColDuration]
	if !ok {
		raw = r.Get(ColDurationMs)
	}
	ms, ok := parseCount(raw)
	if rec.Clip == "" || !ok {
		return rec
	}
	rec.DurationMs = ms
	rec.Valid = true
	return rec
}

// DecodeSentence converts a sentence row. An absent or malformed
// clips_count decodes to 0.
func DecodeSentence(r Row) SentenceRecord {
	count, _ := parseCount(r.Get(ColClipsCount))
	return SentenceRecord{
		Sentence:   r.Get(ColSentence),
		IsUsed:     r.Get(ColIsUsed) == "1",
		ClipsCount: int(count),
		Source:     r.Get(ColSource),
	}
}

// InputFromRows decodes every collection of a RowSet.
func InputFromRows(rs RowSet) Input {
	in := Input{
		Validated:            make([]ClipRecord, 0, len(rs.Validated)),
		Invalidated:          make([]ClipRecord, 0, len(rs.Invalidated)),
		Durations:            make([]DurationRecord, 0, len(rs.Durations)),
		ValidatedSentences:   make([]SentenceRecord, 0, len(rs.ValidatedSentences)),
		UnvalidatedSentences: make([]SentenceRecord, 0, len(rs.UnvalidatedSentences)),
	}
	for _, r := range rs.Validated {
		in.Validated = append(in.Validated, DecodeClip(r))
	}
	for _, r := range rs.Invalidated {
		in.Invalidated = append(in.Invalidated, DecodeClip(r))
	}
	for _, r := range rs.Durations {
		in.Durations = append(in.Durations, DecodeDuration(r))
	}
	for _, r := range rs.ValidatedSentences {
		in.ValidatedSentences = append(in.ValidatedSentences, DecodeSentence(r))
	}
	for _, r := range rs.UnvalidatedSentences {
		in.UnvalidatedSentences = append(in.UnvalidatedSentences, DecodeSentence(r))
	}
	return in
}

// parseCount parses a non-negative integer, tolerating surrounding spaces.
func parseCount(raw string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
