package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/cvsheet/internal/config"
	"github.com/verte-zerg/cvsheet/internal/corpus"
	"github.com/verte-zerg/cvsheet/internal/generator"
	"github.com/verte-zerg/cvsheet/internal/model"
	"github.com/verte-zerg/cvsheet/internal/stats"
	"github.com/verte-zerg/cvsheet/internal/store"
)

// Output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

var (
	statsBasePath    string
	statsRoot        string
	statsAll         bool
	statsLangs       []string
	statsJobs        int
	statsFormat      string
	statsSeed        int64
	statsSave        bool
	statsMetadata    string
	statsSentences   int
	statsAvgClips    float64
	statsWidth       int
	statsTopAccents  int
	statsDiagnostics bool
	statsForceColor  bool
	statsDBPath      string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute corpus statistics",
		Long: `Compute the statistics snapshot of one language directory (--base-path)
or of every language under a release directory (--root --all).`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}
	cmd.Flags().StringVar(&statsBasePath, "base-path", "", "language directory (e.g. ./cv-corpus-23.0/kk)")
	cmd.Flags().StringVar(&statsRoot, "root", "", "release directory holding language directories")
	cmd.Flags().BoolVar(&statsAll, "all", false, "aggregate every language under --root")
	cmd.Flags().StringSliceVar(&statsLangs, "lang", nil, "language glob patterns for --all (e.g. k?,nn-*)")
	cmd.Flags().IntVar(&statsJobs, "jobs", defaultJobs, "languages aggregated in parallel")
	cmd.Flags().StringVar(&statsFormat, "format", formatJSON, "output format (json|yaml|text)")
	cmd.Flags().Int64Var(&statsSeed, "seed", 0, "seed for sample sentences (default: random)")
	cmd.Flags().BoolVar(&statsSave, "save", false, "record the snapshots in the history database")
	cmd.Flags().StringVar(&statsDBPath, "db", "", "history database (default: $XDG_DATA_HOME/cvsheet/history.db)")
	cmd.Flags().StringVar(&statsMetadata, "metadata", "", "metadata.json with English language names")
	cmd.Flags().IntVar(&statsSentences, "sentence-threshold", stats.DefaultSentenceThreshold, "needs-more-sentences threshold for unrecorded sentences")
	cmd.Flags().Float64Var(&statsAvgClips, "avg-clips-threshold", stats.DefaultAvgClipsThreshold, "needs-more-sentences threshold for clips per sentence")
	cmd.Flags().IntVar(&statsWidth, "width", 0, "text output width (default: terminal width)")
	cmd.Flags().IntVar(&statsTopAccents, "top-accents", 20, "accents shown in text output (0 for all)")
	cmd.Flags().BoolVar(&statsDiagnostics, "diagnostics", false, "log data-quality counts for each language")
	cmd.Flags().BoolVar(&statsForceColor, "color", false, "force colored bars in text output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "root", &statsRoot, fileCfg.Corpus.Root)
	applyIntConfig(cmd, "jobs", &statsJobs, fileCfg.Corpus.Jobs)
	applyIntConfig(cmd, "sentence-threshold", &statsSentences, fileCfg.Thresholds.Sentences)
	applyFloatConfig(cmd, "avg-clips-threshold", &statsAvgClips, fileCfg.Thresholds.AvgClips)

	if err := validateStatsFlags(); err != nil {
		return err
	}
	th := stats.Thresholds{Sentences: statsSentences, AvgClips: statsAvgClips}
	if err := validateThresholds(th); err != nil {
		return err
	}
	resolver, err := newResolver(fileCfg, statsMetadata)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	seeded := cmd.Flags().Changed("seed")
	load := corpus.NewLoader(logger).Load

	var reports []stats.Report
	if statsAll {
		codes, err := corpus.ListLanguages(statsRoot, statsLangs)
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			return fmt.Errorf("no language directories found under %s", statsRoot)
		}
		reports, err = buildAll(ctx, codes, resolver.Language, load, th, seeded)
		if err != nil {
			return err
		}
	} else {
		code := filepath.Base(filepath.Clean(statsBasePath))
		cfg := stats.Config{Thresholds: th}
		if seeded {
			cfg.Sampler = generator.NewSeeded(statsSeed)
		}
		logger.Info("computing statistics", zap.String("lang", code), zap.String("path", statsBasePath))
		rep, err := stats.BuildReport(ctx, stats.Task{Dir: statsBasePath, Language: resolver.Language(code)}, load, cfg)
		if err != nil {
			return err
		}
		reports = []stats.Report{rep}
	}

	for _, rep := range reports {
		logDiagnostics(rep)
	}
	if statsSave {
		if err := saveReports(ctx, reports); err != nil {
			return err
		}
	}
	return writeReports(cmd.OutOrStdout(), reports, statsAll, statsFormat)
}

func validateStatsFlags() error {
	switch statsFormat {
	case formatJSON, formatYAML, formatText:
	default:
		return fmt.Errorf("--format must be json, yaml or text")
	}
	if statsAll {
		if statsRoot == "" {
			return fmt.Errorf("--all requires --root")
		}
		if statsBasePath != "" {
			return fmt.Errorf("--base-path and --all are mutually exclusive")
		}
		if statsJobs < 0 {
			return fmt.Errorf("--jobs must be >= 0")
		}
		return nil
	}
	if statsBasePath == "" {
		return fmt.Errorf("--base-path is required (or use --root --all)")
	}
	return nil
}

// buildAll aggregates codes in parallel. A seed derives one sampler per
// language so results do not depend on scheduling.
func buildAll(ctx context.Context, codes []string, langFor func(string) model.Language, load stats.Loader, th stats.Thresholds, seeded bool) ([]stats.Report, error) {
	tasks := make([]stats.Task, 0, len(codes))
	for _, code := range codes {
		tasks = append(tasks, stats.Task{Dir: filepath.Join(statsRoot, code), Language: langFor(code)})
	}
	var samplerFor func(string) stats.Sampler
	if seeded {
		seed := statsSeed
		samplerFor = func(code string) stats.Sampler { return generator.Derive(seed, code) }
	}
	logger.Info("computing statistics", zap.Int("languages", len(tasks)), zap.Int("jobs", statsJobs))
	return stats.BuildReports(ctx, tasks, load, stats.Config{Thresholds: th}, statsJobs, samplerFor)
}

func logDiagnostics(rep stats.Report) {
	d := rep.Diagnostics
	fields := []zap.Field{
		zap.String("lang", rep.Snapshot.Language.Code),
		zap.Int("invalid_durations", d.InvalidDurations),
		zap.Int("duplicate_durations", d.DuplicateDurations),
		zap.Int("missing_durations", d.MissingDurations),
		zap.Int("missing_client_ids", d.MissingClientIDs),
	}
	switch {
	case statsDiagnostics:
		logger.Info("data quality", fields...)
	case !d.Empty():
		logger.Warn("data quality", fields...)
	}
}

func saveReports(ctx context.Context, reports []stats.Report) error {
	path := statsDBPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", zap.Error(cerr))
		}
	}()
	runID := store.NewRunID()
	for _, rep := range reports {
		id, err := st.InsertSnapshot(ctx, model.SnapshotRecord{
			RunID:              runID,
			Contributors:       rep.Contributors,
			NeedsMoreSentences: rep.NeedsMoreSentences,
			Snapshot:           rep.Snapshot,
		})
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", rep.Snapshot.Language.Code, err)
		}
		logger.Info("saved snapshot", zap.Int64("id", id), zap.String("lang", rep.Snapshot.Language.Code), zap.String("run_id", runID))
	}
	return nil
}

// writeReports prints one snapshot, or with keyed set an object keyed by
// language code.
func writeReports(w io.Writer, reports []stats.Report, keyed bool, format string) error {
	if format == formatText {
		for _, rep := range reports {
			opts := stats.RenderOptions{Width: statsWidth, TopAccents: statsTopAccents, ForceColor: statsForceColor}
			if err := stats.RenderReport(w, rep, opts); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}

	var value any
	if keyed {
		byCode := make(map[string]model.Snapshot, len(reports))
		for _, rep := range reports {
			byCode[rep.Snapshot.Language.Code] = rep.Snapshot
		}
		value = byCode
	} else if len(reports) == 1 {
		value = reports[0].Snapshot
	}
	return encode(w, value, format)
}

func encode(w io.Writer, value any, format string) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
