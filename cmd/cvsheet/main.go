// Package main provides the CLI entrypoint for cvsheet.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/cvsheet/internal/config"
	"github.com/verte-zerg/cvsheet/internal/corpus"
	"github.com/verte-zerg/cvsheet/internal/languages"
	"github.com/verte-zerg/cvsheet/internal/logging"
	"github.com/verte-zerg/cvsheet/internal/narrate"
	"github.com/verte-zerg/cvsheet/internal/stats"
)

const defaultJobs = 4

var (
	logger = zap.NewNop()

	verbose    bool
	logFormat  string
	configPath string

	langsRoot string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cvsheet",
		Short:         "Common Voice corpus statistics and datasheets",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(verbose, logFormat)
			if err != nil {
				return err
			}
			logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatJSON, "log format (json|console)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cvsheet/config.toml)")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newFillCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newPruneCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newMetadataCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())

	return rootCmd
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadFileConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(resolvedConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func newResolver(fileCfg config.FileConfig, metadataPath string) (*languages.Resolver, error) {
	var meta languages.Metadata
	if metadataPath != "" {
		m, err := languages.ReadMetadata(metadataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata: %w", err)
		}
		meta = m
	}
	return languages.NewResolver(fileCfg.Languages, meta), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := resolvedConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logger.Info("created config file", zap.String("path", path))
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "langs [pattern...]",
		Short: "List language directories of a corpus release",
		RunE:  runLangsCmd,
	}
	cmd.Flags().StringVar(&langsRoot, "root", "", "corpus release directory")
	return cmd
}

func runLangsCmd(cmd *cobra.Command, patterns []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "root", &langsRoot, fileCfg.Corpus.Root)
	if langsRoot == "" {
		return fmt.Errorf("--root is required")
	}
	codes, err := corpus.ListLanguages(langsRoot, patterns)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return fmt.Errorf("no language directories found under %s", langsRoot)
	}
	resolver := languages.NewResolver(fileCfg.Languages, nil)
	for _, code := range codes {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, resolver.Name(code)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# cvsheet configuration
# Uncomment a value to enable it. CLI flags override config values.

[thresholds]
# sentences = %d          # Fewer unrecorded sentences than this needs new sentences
# avg-clips = %.1f         # More clips per sentence than this needs new sentences

[generate]
# model = %q   # Gemini model
# api-key-env = %q   # Environment variable holding the API key

[corpus]
# root = "/data/cv-corpus-23.0-2025-09-17"   # Release directory for --all and langs
# jobs = %d                                   # Languages aggregated in parallel

[languages]
# kk = "Kazakh"   # English name overrides by language code
`,
		stats.DefaultSentenceThreshold,
		stats.DefaultAvgClipsThreshold,
		narrate.DefaultModel,
		narrate.DefaultAPIKeyEnv,
		defaultJobs,
	)
}

func validateThresholds(th stats.Thresholds) error {
	if th.Sentences < 0 {
		return fmt.Errorf("--sentence-threshold must be >= 0")
	}
	if th.AvgClips < 0 {
		return fmt.Errorf("--avg-clips-threshold must be >= 0")
	}
	return nil
}
