package stats

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/cvsheet/internal/generator"
	"github.com/verte-zerg/cvsheet/internal/model"
)

// SampleSize is the maximum number of sample sentences in a snapshot.
const SampleSize = 5

// Sampler draws k items from population uniformly without replacement.
type Sampler interface {
	Sample(population []string, k int) []string
}

// TextCorpus analyzes the sentence corpus.
//
// Sentence usage figures come from used sentences (is_used == "1").
// Length averages, alphabet and samples come from the transcript of every
// validated clip, so a sentence recorded n times is weighted n times.
func TextCorpus(sentences []model.SentenceRecord, clips []model.ClipRecord, s Sampler) model.TextCorpusStats {
	used := UsedSentences(sentences)
	withoutRecording := 0
	clipsSum := 0
	for _, u := range used {
		if u.ClipsCount == 0 {
			withoutRecording++
		}
		clipsSum += u.ClipsCount
	}

	texts := ClipTexts(clips)
	tokens, chars := 0, 0
	for _, t := range texts {
		tokens += len(strings.Fields(t))
		chars += utf8.RuneCountInString(t)
	}

	return model.TextCorpusStats{
		UniqueSources:               UniqueSources(used),
		SentencesWithoutRecording:   withoutRecording,
		AverageClipsPerSentence:     round(mean(float64(clipsSum), len(used)), 2),
		Alphabet:                    Alphabet(texts),
		SampleSentences:             sampleSentences(s, texts),
		AverageSentenceLengthTokens: round(mean(float64(tokens), len(texts)), 1),
		AverageSentenceLengthChars:  round(mean(float64(chars), len(texts)), 1),
	}
}

// UsedSentences returns sentences with at least one associated clip.
func UsedSentences(sentences []model.SentenceRecord) []model.SentenceRecord {
	out := make([]model.SentenceRecord, 0, len(sentences))
	for _, s := range sentences {
		if s.IsUsed {
			out = append(out, s)
		}
	}
	return out
}

// ClipTexts returns the non-empty transcript of every clip, repeats kept.
func ClipTexts(clips []model.ClipRecord) []string {
	out := make([]string, 0, len(clips))
	for _, c := range clips {
		if c.Sentence != "" {
			out = append(out, c.Sentence)
		}
	}
	return out
}

// UniqueSources returns the sorted distinct non-empty sources.
func UniqueSources(sentences []model.SentenceRecord) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, s := range sentences {
		if s.Source == "" {
			continue
		}
		if _, ok := seen[s.Source]; ok {
			continue
		}
		seen[s.Source] = struct{}{}
		out = append(out, s.Source)
	}
	sort.Strings(out)
	return out
}

// Alphabet returns every distinct character of texts sorted by code point.
// Whitespace and punctuation are included.
func Alphabet(texts []string) []string {
	seen := map[rune]struct{}{}
	for _, t := range texts {
		for _, r := range t {
			seen[r] = struct{}{}
		}
	}
	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

func sampleSentences(s Sampler, texts []string) []string {
	k := SampleSize
	if len(texts) < k {
		k = len(texts)
	}
	if k == 0 {
		return []string{}
	}
	if s == nil {
		s = generator.New()
	}
	return s.Sample(texts, k)
}
