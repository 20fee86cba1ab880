package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/verte-zerg/cvsheet/internal/generator"
	"github.com/verte-zerg/cvsheet/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func seededConfig() Config {
	return Config{Thresholds: DefaultThresholds(), Sampler: generator.NewSeeded(42)}
}

func TestAssembleSmallDurationsRoundToZero(t *testing.T) {
	in := model.Input{
		Validated: []model.ClipRecord{{Path: "a"}, {Path: "b"}, {Path: "c"}},
		Durations: []model.DurationRecord{
			{Clip: "a", DurationMs: 1000, Valid: true},
			{Clip: "b", DurationMs: 2000, Valid: true},
			{Clip: "c", DurationMs: 3000, Valid: true},
		},
	}
	snap := Assemble(model.Language{Code: "kk", Name: "Kazakh"}, in, seededConfig())
	if snap.ClipStats.ValidatedHours != 0 {
		t.Fatalf("expected 0.0 validated hours, got %v", snap.ClipStats.ValidatedHours)
	}
}

func TestAssembleClipStats(t *testing.T) {
	in := model.Input{
		Validated:   []model.ClipRecord{{Path: "a"}, {Path: "b"}, {Path: "c"}},
		Invalidated: []model.ClipRecord{{Path: "d"}, {Path: "orphan"}},
		Durations: []model.DurationRecord{
			{Clip: "a", DurationMs: 3_600_000, Valid: true},
			{Clip: "b", DurationMs: 3_600_000, Valid: true},
			{Clip: "c", DurationMs: 3_600_000, Valid: true},
			{Clip: "d", DurationMs: 1_080_000, Valid: true},
			{Clip: "broken"},
		},
	}
	got := Assemble(model.Language{Code: "kk", Name: "Kazakh"}, in, seededConfig()).ClipStats
	want := model.ClipStats{
		TotalCount:       5,
		ValidatedCount:   3,
		InvalidatedCount: 2,
		ValidatedHours:   3.0,
		InvalidatedHours: 0.3,
		TotalHours:       3.3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("clip stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleTotalHoursIsSumOfRoundedParts(t *testing.T) {
	in := model.Input{
		Validated:   []model.ClipRecord{{Path: "a"}},
		Invalidated: []model.ClipRecord{{Path: "b"}},
		Durations: []model.DurationRecord{
			{Clip: "a", DurationMs: 360_000, Valid: true},
			{Clip: "b", DurationMs: 720_000, Valid: true},
		},
	}
	cs := Assemble(model.Language{}, in, seededConfig()).ClipStats
	if cs.ValidatedHours != 0.1 || cs.InvalidatedHours != 0.2 {
		t.Fatalf("unexpected parts: %+v", cs)
	}
	if cs.TotalHours != 0.3 {
		t.Fatalf("expected total 0.3 without float noise, got %v", cs.TotalHours)
	}
}

func TestAssembleSentenceStatsIndependentOfClips(t *testing.T) {
	in := model.Input{
		Validated:            []model.ClipRecord{{Path: "a"}},
		ValidatedSentences:   make([]model.SentenceRecord, 4),
		UnvalidatedSentences: make([]model.SentenceRecord, 2),
	}
	ss := Assemble(model.Language{}, in, seededConfig()).SentenceStats
	if diff := cmp.Diff(model.SentenceStats{ValidatedCount: 4, InvalidatedCount: 2, TotalCount: 6}, ss); diff != "" {
		t.Fatalf("sentence stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	snap := Assemble(model.Language{Code: "xx", Name: "XX"}, model.Input{}, DefaultConfig())
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := buf.String()
	for _, want := range []string{
		`"contributor_stats":{"1-10":0,"11-50":0,"51-100":0,"101-500":0,">500":0}`,
		`"gender":{}`,
		`"unique_sources":[]`,
		`"alphabet":[]`,
		`"sample_sentences":[]`,
		`"average_clips_per_sentence":0`,
		`"total_hours":0`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s in %s", want, text)
		}
	}
}

func TestAssembleToleratesMalformedRows(t *testing.T) {
	rows := model.RowSet{
		Validated: []model.Row{
			{"path": "a.mp3", "client_id": "c1", "sentence": "hi there"},
			{"sentence": "no path"},
		},
		Durations: []model.Row{
			{"clip": "a.mp3", "duration[ms]": "not-a-number"},
			{"duration[ms]": "100"},
		},
		ValidatedSentences: []model.Row{
			{"sentence": "hi there", "is_used": "1", "clips_count": ""},
			{"sentence": "bye", "is_used": "1", "clips_count": "x7"},
		},
	}
	in := model.InputFromRows(rows)
	snap := Assemble(model.Language{Code: "en", Name: "English"}, in, seededConfig())
	if snap.ClipStats.ValidatedHours != 0 {
		t.Fatalf("expected malformed durations to count as zero, got %v", snap.ClipStats.ValidatedHours)
	}
	if snap.ClipStats.TotalCount != 2 {
		t.Fatalf("expected every duration row counted, got %d", snap.ClipStats.TotalCount)
	}
	if snap.TextCorpus.SentencesWithoutRecording != 2 || snap.TextCorpus.AverageClipsPerSentence != 0 {
		t.Fatalf("expected malformed clip counts to be zero: %+v", snap.TextCorpus)
	}

	d := Diagnose(in)
	want := Diagnostics{InvalidDurations: 2, MissingDurations: 2, MissingClientIDs: 1}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnoseDuplicates(t *testing.T) {
	d := Diagnose(model.Input{
		Validated: []model.ClipRecord{{Path: "a", ClientID: "c"}},
		Durations: []model.DurationRecord{
			{Clip: "a", DurationMs: 1, Valid: true},
			{Clip: "a", DurationMs: 2, Valid: true},
		},
	})
	if d.DuplicateDurations != 1 || d.MissingDurations != 0 {
		t.Fatalf("unexpected diagnostics: %+v", d)
	}
	if (Diagnostics{}).Empty() != true || d.Empty() {
		t.Fatalf("unexpected Empty result")
	}
}

func TestNeedsMoreSentences(t *testing.T) {
	th := DefaultThresholds()
	tc := model.TextCorpusStats{SentencesWithoutRecording: 1200, AverageClipsPerSentence: 2.0}
	if NeedsMoreSentences(tc, th) {
		t.Fatalf("expected false for 1200 unrecorded sentences and 2.0 clips")
	}
	tc.SentencesWithoutRecording = 800
	if !NeedsMoreSentences(tc, th) {
		t.Fatalf("expected true for 800 unrecorded sentences")
	}
	tc = model.TextCorpusStats{SentencesWithoutRecording: 5000, AverageClipsPerSentence: 5.01}
	if !NeedsMoreSentences(tc, th) {
		t.Fatalf("expected true above the average clips threshold")
	}
	tc.AverageClipsPerSentence = 5
	if NeedsMoreSentences(tc, th) {
		t.Fatalf("expected false at exactly the average clips threshold")
	}
	if !NeedsMoreSentences(tc, Thresholds{Sentences: 6000, AvgClips: 5}) {
		t.Fatalf("expected custom sentence threshold to apply")
	}
}

func fakeLoader(sets map[string]model.RowSet) Loader {
	return func(ctx context.Context, dir string) (model.RowSet, error) {
		if err := ctx.Err(); err != nil {
			return model.RowSet{}, err
		}
		rs, ok := sets[dir]
		if !ok {
			return model.RowSet{}, errors.New("no such corpus")
		}
		return rs, nil
	}
}

func TestBuildReport(t *testing.T) {
	load := fakeLoader(map[string]model.RowSet{
		"/corpus/kk": {
			Validated: []model.Row{
				{"path": "a", "client_id": "u1", "sentence": "сәлем"},
				{"path": "b", "client_id": "u1", "sentence": "әлем"},
				{"path": "c", "client_id": "u2", "sentence": "сәлем"},
			},
			Durations: []model.Row{{"clip": "a", "duration[ms]": "3600000"}},
			ValidatedSentences: []model.Row{
				{"sentence": "сәлем", "is_used": "1", "clips_count": "2"},
			},
		},
	})
	rep, err := BuildReport(context.Background(), Task{Dir: "/corpus/kk", Language: model.Language{Code: "kk", Name: "Kazakh"}}, load, seededConfig())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if rep.Contributors != 2 {
		t.Fatalf("expected 2 contributors, got %d", rep.Contributors)
	}
	if rep.Snapshot.ClipStats.ValidatedHours != 1 {
		t.Fatalf("expected 1 validated hour, got %v", rep.Snapshot.ClipStats.ValidatedHours)
	}
	if !rep.NeedsMoreSentences {
		t.Fatalf("expected small corpus to need more sentences")
	}
	if rep.Diagnostics.MissingDurations != 2 {
		t.Fatalf("expected 2 missing durations, got %+v", rep.Diagnostics)
	}
}

func TestBuildReportsParallel(t *testing.T) {
	sets := map[string]model.RowSet{}
	var tasks []Task
	for _, code := range []string{"tt", "kk", "uz", "az", "ky"} {
		dir := "/corpus/" + code
		sets[dir] = model.RowSet{Validated: []model.Row{{"path": code, "client_id": code, "sentence": code}}}
		tasks = append(tasks, Task{Dir: dir, Language: model.Language{Code: code}})
	}
	reports, err := BuildReports(context.Background(), tasks, fakeLoader(sets), DefaultConfig(), 2, func(code string) Sampler {
		return generator.Derive(1, code)
	})
	if err != nil {
		t.Fatalf("build reports: %v", err)
	}
	var codes []string
	for _, r := range reports {
		codes = append(codes, r.Snapshot.Language.Code)
		if diff := cmp.Diff([]string{r.Snapshot.Language.Code}, r.Snapshot.TextCorpus.SampleSentences); diff != "" {
			t.Fatalf("report for %s mixed up corpora (-want +got):\n%s", r.Snapshot.Language.Code, diff)
		}
	}
	if diff := cmp.Diff([]string{"az", "kk", "ky", "tt", "uz"}, codes); diff != "" {
		t.Fatalf("expected reports sorted by code (-want +got):\n%s", diff)
	}
}

func TestBuildReportsFailure(t *testing.T) {
	tasks := []Task{
		{Dir: "/corpus/kk", Language: model.Language{Code: "kk"}},
		{Dir: "/corpus/missing", Language: model.Language{Code: "zz"}},
	}
	sets := map[string]model.RowSet{"/corpus/kk": {}}
	_, err := BuildReports(context.Background(), tasks, fakeLoader(sets), DefaultConfig(), 0, nil)
	if err == nil {
		t.Fatalf("expected error for missing corpus")
	}
	if !strings.HasPrefix(err.Error(), "zz: ") {
		t.Fatalf("expected error prefixed with language code, got %v", err)
	}
}
