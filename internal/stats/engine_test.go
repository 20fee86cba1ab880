package stats

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/cvsheet/internal/generator"
	"github.com/verte-zerg/cvsheet/internal/model"
)

func clipsFor(counts map[string]int) []model.ClipRecord {
	var clips []model.ClipRecord
	for id, n := range counts {
		for i := 0; i < n; i++ {
			clips = append(clips, model.ClipRecord{ClientID: id, Path: fmt.Sprintf("%s-%d.mp3", id, i)})
		}
	}
	return clips
}

func TestBuildDurationIndexLastWriteWins(t *testing.T) {
	idx := BuildDurationIndex([]model.DurationRecord{
		{Clip: "a", DurationMs: 100, Valid: true},
		{Clip: "b", DurationMs: 5, Valid: false},
		{Clip: "a", DurationMs: 250, Valid: true},
	})
	if len(idx) != 1 {
		t.Fatalf("expected invalid record to be skipped, got %v", idx)
	}
	if idx["a"] != 250 {
		t.Fatalf("expected last duration 250, got %d", idx["a"])
	}
}

func TestHoursEmptyLaws(t *testing.T) {
	idx := DurationIndex{"a": 3_600_000}
	if got := Hours(nil, idx); got != 0 {
		t.Fatalf("expected 0 hours for no clips, got %v", got)
	}
	clips := []model.ClipRecord{{Path: "a"}, {Path: "b"}}
	if got := Hours(clips, DurationIndex{}); got != 0 {
		t.Fatalf("expected 0 hours for empty index, got %v", got)
	}
}

func TestHoursIsNotRounded(t *testing.T) {
	idx := DurationIndex{"a": 1000, "b": 2000, "c": 3000}
	clips := []model.ClipRecord{{Path: "a"}, {Path: "b"}, {Path: "c"}, {Path: "missing"}}
	want := 6000.0 / 3_600_000
	if got := Hours(clips, idx); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDemographicsTotalsMatchNonEmptyRows(t *testing.T) {
	clips := []model.ClipRecord{
		{Gender: "female", Age: "twenties", Accents: "Almaty"},
		{Gender: "male", Age: "", Accents: "Almaty"},
		{Gender: "", Age: "thirties", Accents: "Southern, rural"},
		{Gender: "female"},
		{},
	}
	d := Demographics(clips)
	if d.Gender.Total() != 3 || d.Age.Total() != 2 || d.Accent.Total() != 3 {
		t.Fatalf("unexpected totals gender=%d age=%d accent=%d", d.Gender.Total(), d.Age.Total(), d.Accent.Total())
	}
	if d.Gender.Count("female") != 2 {
		t.Fatalf("expected 2 female, got %d", d.Gender.Count("female"))
	}
	if d.Accent.Count("Southern, rural") != 1 {
		t.Fatalf("expected multi-valued accent counted whole: %v", d.Accent.Entries())
	}
	if diff := cmp.Diff([]string{"female", "male"}, d.Gender.Labels()); diff != "" {
		t.Fatalf("expected first-seen order (-want +got):\n%s", diff)
	}
}

func TestContributorDistributionScenario(t *testing.T) {
	h := ContributorDistribution(clipsFor(map[string]int{"A": 5, "B": 15, "C": 600}))
	want := []model.HistogramEntry{
		{Label: "1-10", Count: 1},
		{Label: "11-50", Count: 1},
		{Label: "51-100", Count: 0},
		{Label: "101-500", Count: 0},
		{Label: ">500", Count: 1},
	}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Fatalf("buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestContributorBucketsPartition(t *testing.T) {
	counts := map[string]int{}
	for i := 1; i <= 700; i += 7 {
		counts[fmt.Sprintf("c%d", i)] = i
	}
	clips := clipsFor(counts)
	clips = append(clips, model.ClipRecord{Path: "anon.mp3"})
	h := ContributorDistribution(clips)
	if h.Len() != 5 {
		t.Fatalf("expected fixed 5 buckets, got %v", h.Labels())
	}
	if h.Total() != len(counts) {
		t.Fatalf("expected %d contributors across buckets, got %d", len(counts), h.Total())
	}
	if ContributorCount(clips) != len(counts) {
		t.Fatalf("expected %d distinct contributors, got %d", len(counts), ContributorCount(clips))
	}
}

func TestBucketForBoundaries(t *testing.T) {
	tests := map[int]string{
		1: "1-10", 10: "1-10", 11: "11-50", 50: "11-50", 51: "51-100",
		100: "51-100", 101: "101-500", 500: "101-500", 501: ">500",
	}
	for n, want := range tests {
		if got := BucketFor(n); got != want {
			t.Fatalf("BucketFor(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestContributorDistributionEmpty(t *testing.T) {
	h := ContributorDistribution(nil)
	if diff := cmp.Diff(ContributorBuckets(), h.Labels()); diff != "" {
		t.Fatalf("expected all buckets present (-want +got):\n%s", diff)
	}
	if h.Total() != 0 {
		t.Fatalf("expected zero total, got %d", h.Total())
	}
}

func TestTextCorpusScenarioDuplicateSentences(t *testing.T) {
	clips := []model.ClipRecord{{Sentence: "ab"}, {Sentence: "ab"}, {Sentence: "c"}, {}}
	tc := TextCorpus(nil, clips, generator.NewSeeded(11))
	if diff := cmp.Diff([]string{"a", "b", "c"}, tc.Alphabet); diff != "" {
		t.Fatalf("alphabet mismatch (-want +got):\n%s", diff)
	}
	if tc.AverageSentenceLengthChars != 1.7 {
		t.Fatalf("expected 1.7 chars, got %v", tc.AverageSentenceLengthChars)
	}
	if tc.AverageSentenceLengthTokens != 1.0 {
		t.Fatalf("expected 1.0 tokens, got %v", tc.AverageSentenceLengthTokens)
	}
	sample := append([]string(nil), tc.SampleSentences...)
	sort.Strings(sample)
	if diff := cmp.Diff([]string{"ab", "ab", "c"}, sample); diff != "" {
		t.Fatalf("sample mismatch (-want +got):\n%s", diff)
	}
}

func TestTextCorpusSeededSampleIsReproducible(t *testing.T) {
	var clips []model.ClipRecord
	for i := 0; i < 40; i++ {
		clips = append(clips, model.ClipRecord{Sentence: fmt.Sprintf("sentence %d", i)})
	}
	a := TextCorpus(nil, clips, generator.NewSeeded(5)).SampleSentences
	b := TextCorpus(nil, clips, generator.NewSeeded(5)).SampleSentences
	if len(a) != SampleSize {
		t.Fatalf("expected %d samples, got %d", SampleSize, len(a))
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("seeded samples differ (-a +b):\n%s", diff)
	}
}

func TestTextCorpusSentenceUsage(t *testing.T) {
	sentences := []model.SentenceRecord{
		{Sentence: "one", IsUsed: true, ClipsCount: 0, Source: "wiki"},
		{Sentence: "two", IsUsed: true, ClipsCount: 3, Source: "sentence-collector"},
		{Sentence: "three", IsUsed: true, ClipsCount: 4, Source: "wiki"},
		{Sentence: "four", IsUsed: false, ClipsCount: 9, Source: "proverbs"},
		{Sentence: "five", IsUsed: true, ClipsCount: 0},
	}
	tc := TextCorpus(sentences, nil, generator.NewSeeded(1))
	if tc.SentencesWithoutRecording != 2 {
		t.Fatalf("expected 2 sentences without recording, got %d", tc.SentencesWithoutRecording)
	}
	if tc.AverageClipsPerSentence != 1.75 {
		t.Fatalf("expected 1.75 average clips, got %v", tc.AverageClipsPerSentence)
	}
	if diff := cmp.Diff([]string{"sentence-collector", "wiki"}, tc.UniqueSources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestTextCorpusEmptyPopulations(t *testing.T) {
	tc := TextCorpus(nil, nil, nil)
	if tc.AverageClipsPerSentence != 0 || tc.AverageSentenceLengthTokens != 0 || tc.AverageSentenceLengthChars != 0 {
		t.Fatalf("expected zero averages, got %+v", tc)
	}
	if tc.Alphabet == nil || tc.UniqueSources == nil || tc.SampleSentences == nil {
		t.Fatalf("expected empty non-nil slices, got %+v", tc)
	}
}

func TestUniqueSourcesDeduplicates(t *testing.T) {
	var sentences []model.SentenceRecord
	for i := 0; i < 1000; i++ {
		sentences = append(sentences, model.SentenceRecord{IsUsed: true, Source: "sentence-collector"})
	}
	sentences = append(sentences, model.SentenceRecord{IsUsed: true, Source: "Wikipedia"})
	got := UniqueSources(sentences)
	if diff := cmp.Diff([]string{"Wikipedia", "sentence-collector"}, got); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestAlphabetSortedUnique(t *testing.T) {
	got := Alphabet([]string{"Сәлем, әлем!", "hello world", "Zz"})
	if !sort.StringsAreSorted(got) {
		t.Fatalf("alphabet not sorted: %v", got)
	}
	seen := map[string]bool{}
	for _, ch := range got {
		if seen[ch] {
			t.Fatalf("duplicate %q in alphabet", ch)
		}
		seen[ch] = true
	}
	joined := strings.Join(got, "")
	for _, want := range []string{" ", ",", "!", "ә", "Z"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in alphabet %v", want, got)
		}
	}
}

func TestTokenCountUsesWhitespaceRuns(t *testing.T) {
	clips := []model.ClipRecord{{Sentence: "  one\ttwo   three "}, {Sentence: "four"}}
	tc := TextCorpus(nil, clips, generator.NewSeeded(1))
	if tc.AverageSentenceLengthTokens != 2.0 {
		t.Fatalf("expected 2.0 tokens, got %v", tc.AverageSentenceLengthTokens)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{5.0 / 3.0, 1, 1.7},
		{6000.0 / 3_600_000, 2, 0},
		{2.675, 2, 2.67},
		{0.125, 2, 0.12},
		{0.375, 2, 0.38},
	}
	for _, tt := range tests {
		if got := round(tt.in, tt.places); got != tt.want {
			t.Fatalf("round(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}
