package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/cvsheet/internal/corpus"
	"github.com/verte-zerg/cvsheet/internal/generator"
	"github.com/verte-zerg/cvsheet/internal/narrate"
	"github.com/verte-zerg/cvsheet/internal/prompt"
	"github.com/verte-zerg/cvsheet/internal/stats"
)

var (
	genBasePath   string
	genUpdateFile string
	genModel      string
	genAPIKeyEnv  string
	genPromptOnly bool
	genMetadata   string
	genSentences  int
	genAvgClips   float64
	genSeed       int64
	genOutput     string
)

// newNarrator is replaced in tests.
var newNarrator = func(ctx context.Context, apiKey, model string) (narrate.Client, error) {
	return narrate.NewGemini(ctx, apiKey, model, logger)
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a datasheet from corpus statistics",
		Long: `Compute the statistics of one language directory and ask Gemini to
write (or, with --update-file, update) its datasheet.`,
		Args: cobra.NoArgs,
		RunE: runGenerateCmd,
	}
	cmd.Flags().StringVar(&genBasePath, "base-path", "", "language directory (e.g. ./cv-corpus-23.0/kk)")
	cmd.Flags().StringVar(&genUpdateFile, "update-file", "", "existing datasheet to update")
	cmd.Flags().StringVar(&genModel, "model", narrate.DefaultModel, "Gemini model")
	cmd.Flags().StringVar(&genAPIKeyEnv, "api-key-env", narrate.DefaultAPIKeyEnv, "environment variable holding the API key")
	cmd.Flags().BoolVar(&genPromptOnly, "prompt-only", false, "print the prompt instead of calling the API")
	cmd.Flags().StringVar(&genMetadata, "metadata", "", "metadata.json with English language names")
	cmd.Flags().IntVar(&genSentences, "sentence-threshold", stats.DefaultSentenceThreshold, "needs-more-sentences threshold for unrecorded sentences")
	cmd.Flags().Float64Var(&genAvgClips, "avg-clips-threshold", stats.DefaultAvgClipsThreshold, "needs-more-sentences threshold for clips per sentence")
	cmd.Flags().Int64Var(&genSeed, "seed", 0, "seed for sample sentences (default: random)")
	cmd.Flags().StringVar(&genOutput, "output", "", "write the generated markdown to this file")
	_ = cmd.MarkFlagRequired("base-path")
	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "model", &genModel, fileCfg.Generate.Model)
	applyStringConfig(cmd, "api-key-env", &genAPIKeyEnv, fileCfg.Generate.APIKeyEnv)
	applyIntConfig(cmd, "sentence-threshold", &genSentences, fileCfg.Thresholds.Sentences)
	applyFloatConfig(cmd, "avg-clips-threshold", &genAvgClips, fileCfg.Thresholds.AvgClips)

	th := stats.Thresholds{Sentences: genSentences, AvgClips: genAvgClips}
	if err := validateThresholds(th); err != nil {
		return err
	}
	resolver, err := newResolver(fileCfg, genMetadata)
	if err != nil {
		return err
	}
	existing, err := readExisting(genUpdateFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	code := filepath.Base(filepath.Clean(genBasePath))
	cfg := stats.Config{Thresholds: th}
	if cmd.Flags().Changed("seed") {
		cfg.Sampler = generator.NewSeeded(genSeed)
	}
	logger.Info("computing statistics", zap.String("lang", code), zap.String("path", genBasePath))
	rep, err := stats.BuildReport(ctx, stats.Task{Dir: genBasePath, Language: resolver.Language(code)}, corpus.NewLoader(logger).Load, cfg)
	if err != nil {
		return err
	}
	logDiagnostics(rep)

	text, err := prompt.Build(rep.Snapshot, th, existing)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if genPromptOnly {
		_, err := io.WriteString(out, text)
		return err
	}

	client, err := newNarrator(ctx, os.Getenv(genAPIKeyEnv), genModel)
	if err != nil {
		return err
	}
	markdown, err := client.Generate(ctx, text)
	if err != nil {
		return err
	}

	if genOutput != "" {
		if err := os.WriteFile(genOutput, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", genOutput, err)
		}
		logger.Info("wrote datasheet", zap.String("path", genOutput))
	}
	statsJSON, err := prompt.StatsJSON(rep.Snapshot)
	if err != nil {
		return err
	}
	return writeResults(out, statsJSON, markdown)
}

// readExisting returns the datasheet to update. A missing file falls back
// to writing a new datasheet.
func readExisting(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("update file not found, generating a new datasheet", zap.String("path", path))
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	logger.Info("updating existing datasheet", zap.String("path", path))
	return string(data), nil
}

func writeResults(w io.Writer, statsJSON, markdown string) error {
	var b strings.Builder
	b.WriteString("\n\n" + strings.Repeat("=", 30) + " RESULTS " + strings.Repeat("=", 30) + "\n")
	b.WriteString("\n--- PART 1: GATHERED STATISTICS (Data sent to LLM) ---\n\n")
	b.WriteString(strings.TrimRight(statsJSON, "\n") + "\n")
	b.WriteString("\n\n--- PART 2: FINAL MARKDOWN (Generated by Gemini API) ---\n\n")
	b.WriteString(markdown + "\n")
	b.WriteString("\n" + strings.Repeat("=", 28) + " END OF SCRIPT " + strings.Repeat("=", 28) + "\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
