// Package model defines shared data structures.
package model

import "time"

// Language identifies the corpus a snapshot was computed for.
type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// ClipRecord is one validated or invalidated clip row.
// Absent columns decode to the empty string.
type ClipRecord struct {
	Path     string
	ClientID string
	// Sentence is empty when the row carries no transcript.
	Sentence string
	Gender   string
	Age      string
	Accents  string
	Source   string
}

// DurationRecord is one row of clip_durations.tsv.
type DurationRecord struct {
	Clip       string
	DurationMs int64
	// Valid is false when the clip id is missing or the duration is not a
	// non-negative integer.
	Valid bool
}

// SentenceRecord is one row of a sentence file.
type SentenceRecord struct {
	Sentence   string
	IsUsed     bool
	ClipsCount int
	Source     string
}

// Input holds the fully materialized record collections of one corpus.
type Input struct {
	Validated            []ClipRecord
	Invalidated          []ClipRecord
	Durations            []DurationRecord
	ValidatedSentences   []SentenceRecord
	UnvalidatedSentences []SentenceRecord
}

// Snapshot is the statistics object produced by one aggregation run.
// Field names are a stable contract for downstream prompt templates.
type Snapshot struct {
	Language         Language        `json:"language" yaml:"language"`
	ClipStats        ClipStats       `json:"clip_stats" yaml:"clip_stats"`
	SentenceStats    SentenceStats   `json:"sentence_stats" yaml:"sentence_stats"`
	Demographics     Demographics    `json:"demographics" yaml:"demographics"`
	ContributorStats Histogram       `json:"contributor_stats" yaml:"contributor_stats"`
	TextCorpus       TextCorpusStats `json:"text_corpus" yaml:"text_corpus"`
}

// ClipStats summarizes clip counts and recorded hours.
type ClipStats struct {
	TotalCount       int     `json:"total_count" yaml:"total_count"`
	ValidatedCount   int     `json:"validated_count" yaml:"validated_count"`
	InvalidatedCount int     `json:"invalidated_count" yaml:"invalidated_count"`
	ValidatedHours   float64 `json:"validated_hours" yaml:"validated_hours"`
	InvalidatedHours float64 `json:"invalidated_hours" yaml:"invalidated_hours"`
	TotalHours       float64 `json:"total_hours" yaml:"total_hours"`
}

// SentenceStats counts sentence rows. It is independent of ClipStats.
type SentenceStats struct {
	ValidatedCount   int `json:"validated_count" yaml:"validated_count"`
	InvalidatedCount int `json:"invalidated_count" yaml:"invalidated_count"`
	TotalCount       int `json:"total_count" yaml:"total_count"`
}

// Demographics holds self-reported speaker histograms.
type Demographics struct {
	Gender Histogram `json:"gender" yaml:"gender"`
	Age    Histogram `json:"age" yaml:"age"`
	Accent Histogram `json:"accent" yaml:"accent"`
}

// TextCorpusStats describes the sentence corpus.
type TextCorpusStats struct {
	UniqueSources               []string `json:"unique_sources" yaml:"unique_sources"`
	SentencesWithoutRecording   int      `json:"sentences_without_recording" yaml:"sentences_without_recording"`
	AverageClipsPerSentence     float64  `json:"average_clips_per_sentence" yaml:"average_clips_per_sentence"`
	Alphabet                    []string `json:"alphabet" yaml:"alphabet"`
	SampleSentences             []string `json:"sample_sentences" yaml:"sample_sentences"`
	AverageSentenceLengthTokens float64  `json:"average_sentence_length_tokens" yaml:"average_sentence_length_tokens"`
	AverageSentenceLengthChars  float64  `json:"average_sentence_length_chars" yaml:"average_sentence_length_chars"`
}

// HistoryFilter selects saved snapshots.
type HistoryFilter struct {
	Lang  string
	Since *time.Time
	Last  int
}

// SnapshotRecord is a saved snapshot with its history metadata.
type SnapshotRecord struct {
	ID                 int64     `json:"id" yaml:"id"`
	RunID              string    `json:"run_id" yaml:"run_id"`
	CreatedAt          time.Time `json:"created_at" yaml:"created_at"`
	Lang               string    `json:"lang" yaml:"lang"`
	ValidatedHours     float64   `json:"validated_hours" yaml:"validated_hours"`
	TotalClips         int       `json:"total_clips" yaml:"total_clips"`
	Contributors       int       `json:"contributors" yaml:"contributors"`
	NeedsMoreSentences bool      `json:"needs_more_sentences" yaml:"needs_more_sentences"`
	Snapshot           Snapshot  `json:"snapshot" yaml:"snapshot"`
}
