// Package stats contains the corpus statistics engine and its text rendering.
package stats

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/cvsheet/internal/model"
)

// Loader reads the raw rows of one corpus directory.
type Loader func(ctx context.Context, dir string) (model.RowSet, error)

// Task names one corpus directory to aggregate.
type Task struct {
	Dir      string
	Language model.Language
}

// Report is an assembled snapshot with its derived signals.
type Report struct {
	Snapshot           model.Snapshot
	NeedsMoreSentences bool
	Contributors       int
	Diagnostics        Diagnostics
}

// BuildReport loads one corpus and assembles its snapshot.
func BuildReport(ctx context.Context, task Task, load Loader, cfg Config) (Report, error) {
	rows, err := load(ctx, task.Dir)
	if err != nil {
		return Report{}, err
	}
	in := model.InputFromRows(rows)
	snap := Assemble(task.Language, in, cfg)
	return Report{
		Snapshot:           snap,
		NeedsMoreSentences: cfg.NeedsMoreSentences(snap),
		Contributors:       ContributorCount(in.Validated),
		Diagnostics:        Diagnose(in),
	}, nil
}

// BuildReports aggregates independent corpora in parallel, running at most
// jobs loads at once (unbounded when jobs <= 0). samplerFor, when set,
// supplies a per-language sampler. The first failure cancels the rest.
// Reports are sorted by language code.
func BuildReports(ctx context.Context, tasks []Task, load Loader, cfg Config, jobs int, samplerFor func(code string) Sampler) ([]Report, error) {
	reports := make([]Report, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, task := range tasks {
		taskCfg := cfg
		if samplerFor != nil {
			taskCfg.Sampler = samplerFor(task.Language.Code)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := BuildReport(gctx, task, load, taskCfg)
			if err != nil {
				return fmt.Errorf("%s: %w", task.Language.Code, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Snapshot.Language.Code < reports[j].Snapshot.Language.Code
	})
	return reports, nil
}
