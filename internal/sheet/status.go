package sheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StatusEntry is the review state of one drafted datasheet.
type StatusEntry struct {
	Code  string
	Final bool
}

// StatusReport lists drafted datasheets and whether each has been finalized.
type StatusReport struct {
	Entries []StatusEntry
	Final   int
	Total   int
}

// Status compares the markdown files of draftDir and finalDir. Languages are
// keyed by the file name up to its first dot.
func Status(draftDir, finalDir string) (StatusReport, error) {
	drafts, err := markdownCodes(draftDir)
	if err != nil {
		return StatusReport{}, err
	}
	finals, err := markdownCodes(finalDir)
	if err != nil && !os.IsNotExist(err) {
		return StatusReport{}, err
	}
	finalSet := make(map[string]struct{}, len(finals))
	for _, code := range finals {
		finalSet[code] = struct{}{}
	}

	report := StatusReport{Entries: make([]StatusEntry, 0, len(drafts))}
	for _, code := range drafts {
		_, final := finalSet[code]
		if final {
			report.Final++
		}
		report.Total++
		report.Entries = append(report.Entries, StatusEntry{Code: code, Final: final})
	}
	return report, nil
}

func markdownCodes(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		code, _, _ := strings.Cut(name, ".")
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// RenderStatus writes the datasheet index page with its status table.
func RenderStatus(w io.Writer, report StatusReport) error {
	lines := []string{
		"# Datasheets",
		"",
		"## Status",
		"",
		fmt.Sprintf("%d / %d", report.Final, report.Total),
		"",
		"| Draft | Final |",
		"|-------|-------|",
	}
	for _, e := range report.Entries {
		mark := "-"
		if e.Final {
			mark = "✔"
		}
		lines = append(lines, fmt.Sprintf("| `%s` | %s |", e.Code, mark))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
