package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/verte-zerg/cvsheet/internal/logging"
	"github.com/verte-zerg/cvsheet/internal/model"
)

// File names inside a language directory of a release.
const (
	ValidatedFile            = "validated.tsv"
	InvalidatedFile          = "invalidated.tsv"
	DurationsFile            = "clip_durations.tsv"
	ValidatedSentencesFile   = "validated_sentences.tsv"
	UnvalidatedSentencesFile = "unvalidated_sentences.tsv"
)

// Loader reads language directories, logging what it reads.
type Loader struct {
	log *zap.Logger
}

// NewLoader returns a loader. A nil logger discards output.
func NewLoader(log *zap.Logger) *Loader {
	return &Loader{log: logging.OrNop(log)}
}

// Load reads the corpus files of dir. validated.tsv is required; the other
// files are optional and read as empty when absent.
func (l *Loader) Load(ctx context.Context, dir string) (model.RowSet, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return model.RowSet{}, fmt.Errorf("failed to stat corpus directory: %w", err)
	}
	if !info.IsDir() {
		return model.RowSet{}, fmt.Errorf("%s is not a directory", dir)
	}

	var rs model.RowSet
	files := []struct {
		name     string
		required bool
		dst      *[]model.Row
	}{
		{ValidatedFile, true, &rs.Validated},
		{InvalidatedFile, false, &rs.Invalidated},
		{DurationsFile, false, &rs.Durations},
		{ValidatedSentencesFile, false, &rs.ValidatedSentences},
		{UnvalidatedSentencesFile, false, &rs.UnvalidatedSentences},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return model.RowSet{}, err
		}
		path := filepath.Join(dir, f.name)
		l.log.Debug("reading corpus file", zap.String("path", path))
		rows, err := ReadTSV(path)
		if errors.Is(err, fs.ErrNotExist) {
			if f.required {
				return model.RowSet{}, fmt.Errorf("required file missing: %s", path)
			}
			l.log.Warn("optional file not found, proceeding without it", zap.String("path", path))
			rows = []model.Row{}
		} else if err != nil {
			return model.RowSet{}, err
		}
		l.log.Debug("read corpus file", zap.String("file", f.name), zap.Int("rows", len(rows)))
		*f.dst = rows
	}
	return rs, nil
}

// Load reads dir with a loader logging to log.
func Load(ctx context.Context, dir string, log *zap.Logger) (model.RowSet, error) {
	return NewLoader(log).Load(ctx, dir)
}

// IsLanguageDir reports whether dir holds a validated.tsv file.
func IsLanguageDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ValidatedFile))
	return err == nil && !info.IsDir()
}

// ListLanguages returns the sorted language codes under root, keeping those
// that match any of patterns. No patterns keeps every language.
func ListLanguages(root string, patterns []string) ([]string, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid language pattern %q: %w", p, err)
		}
		matchers = append(matchers, g)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus root: %w", err)
	}
	langs := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		code := entry.Name()
		if !IsLanguageDir(filepath.Join(root, code)) {
			continue
		}
		if !matchAny(matchers, code) {
			continue
		}
		langs = append(langs, code)
	}
	sort.Strings(langs)
	return langs, nil
}

func matchAny(matchers []glob.Glob, code string) bool {
	if len(matchers) == 0 {
		return true
	}
	for _, m := range matchers {
		if m.Match(code) {
			return true
		}
	}
	return false
}
