package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/cvsheet/internal/model"
)

// RenderOptions tune the text rendering of a report.
type RenderOptions struct {
	// Width of the output in columns; 0 uses the terminal width.
	Width int
	// TopAccents limits the accent table; 0 shows every accent.
	TopAccents int
	ForceColor bool
}

// RenderReport prints a report as aligned text tables and bar charts.
func RenderReport(w io.Writer, rep Report, opts RenderOptions) error {
	snap := rep.Snapshot
	if _, err := fmt.Fprintf(w, "%s (%s)\n\n", snap.Language.Name, snap.Language.Code); err != nil {
		return err
	}
	if err := RenderClipTable(w, snap); err != nil {
		return err
	}
	if err := RenderSentenceTable(w, snap.SentenceStats); err != nil {
		return err
	}
	contributors := fmt.Sprintf("Contributors (%s)", humanize.Comma(int64(rep.Contributors)))
	if err := RenderBars(w, contributors, snap.ContributorStats.Entries(), opts.Width, opts.ForceColor); err != nil {
		return err
	}
	if err := RenderBars(w, "Gender", snap.Demographics.Gender.Entries(), opts.Width, opts.ForceColor); err != nil {
		return err
	}
	if err := RenderBars(w, "Age", snap.Demographics.Age.Entries(), opts.Width, opts.ForceColor); err != nil {
		return err
	}
	if err := renderHistogramTable(w, "Accent", TopEntries(snap.Demographics.Accent, opts.TopAccents)); err != nil {
		return err
	}
	if err := RenderTextCorpus(w, snap.TextCorpus); err != nil {
		return err
	}
	if rep.NeedsMoreSentences {
		if _, err := fmt.Fprintln(w, "This language needs new sentences."); err != nil {
			return err
		}
	}
	return nil
}

// RenderClipTable prints clip counts and hours.
func RenderClipTable(w io.Writer, snap model.Snapshot) error {
	cs := snap.ClipStats
	rows := [][]string{
		{"Validated Clips", humanize.Comma(int64(cs.ValidatedCount)), fmt.Sprintf("%.2f", cs.ValidatedHours)},
		{"Invalidated Clips", humanize.Comma(int64(cs.InvalidatedCount)), fmt.Sprintf("%.2f", cs.InvalidatedHours)},
		{"Total Clips", humanize.Comma(int64(cs.TotalCount)), fmt.Sprintf("%.2f", cs.TotalHours)},
	}
	return writeLines(w, formatTable([]string{"Type", "Count", "Hours"}, rows, map[int]bool{1: true, 2: true}))
}

// RenderSentenceTable prints sentence counts.
func RenderSentenceTable(w io.Writer, ss model.SentenceStats) error {
	rows := [][]string{
		{"Validated Sentences", humanize.Comma(int64(ss.ValidatedCount))},
		{"Invalidated Sentences", humanize.Comma(int64(ss.InvalidatedCount))},
		{"Total Sentences", humanize.Comma(int64(ss.TotalCount))},
	}
	return writeLines(w, formatTable([]string{"Type", "Count"}, rows, map[int]bool{1: true}))
}

// RenderTextCorpus prints the text corpus figures.
func RenderTextCorpus(w io.Writer, tc model.TextCorpusStats) error {
	alphabet := make([]string, len(tc.Alphabet))
	for i, ch := range tc.Alphabet {
		alphabet[i] = visibleChar(ch)
	}
	lines := []string{
		"Text Corpus",
		fmt.Sprintf("Sentences without a recording: %s", humanize.Comma(int64(tc.SentencesWithoutRecording))),
		fmt.Sprintf("Average clips per sentence: %.2f", tc.AverageClipsPerSentence),
		fmt.Sprintf("Average sentence length (tokens): %.1f", tc.AverageSentenceLengthTokens),
		fmt.Sprintf("Average sentence length (characters): %.1f", tc.AverageSentenceLengthChars),
		fmt.Sprintf("Sources: %s", strings.Join(tc.UniqueSources, ", ")),
		fmt.Sprintf("Alphabet: %s", strings.Join(alphabet, " ")),
		"Sample sentences:",
	}
	for _, s := range tc.SampleSentences {
		lines = append(lines, "  - "+s)
	}
	return writeLines(w, lines)
}

func renderHistogramTable(w io.Writer, title string, entries []model.HistogramEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Label, strconv.Itoa(e.Count)})
	}
	return writeLines(w, formatTable([]string{title, "Count"}, rows, map[int]bool{1: true}))
}

func visibleChar(ch string) string {
	switch ch {
	case " ":
		return "<space>"
	case "\t":
		return "<tab>"
	}
	return ch
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
