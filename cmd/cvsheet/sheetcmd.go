package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/cvsheet/internal/languages"
	"github.com/verte-zerg/cvsheet/internal/sheet"
)

const defaultPreviewWidth = 100

var (
	previewWidth int

	fillMetadata string
	fillTemplate string
	fillOutDir   string

	describeTemplate    string
	describeDescription string

	statusDraftDir string
	statusFinalDir string

	metadataStats        string
	metadataTranslations string
	metadataOut          string
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render a datasheet in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPreviewCmd,
	}
	cmd.Flags().IntVar(&previewWidth, "width", 0, "wrap width (default: terminal width)")
	return cmd
}

func runPreviewCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	width := previewWidth
	if width <= 0 {
		width = defaultPreviewWidth
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", args[0], err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Write one datasheet skeleton per locale",
		Args:  cobra.NoArgs,
		RunE:  runFillCmd,
	}
	cmd.Flags().StringVar(&fillMetadata, "metadata", "", "metadata.json")
	cmd.Flags().StringVar(&fillTemplate, "template", "", "datasheet template")
	cmd.Flags().StringVar(&fillOutDir, "out-dir", ".", "output directory")
	_ = cmd.MarkFlagRequired("metadata")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func runFillCmd(cmd *cobra.Command, _ []string) error {
	meta, err := languages.ReadMetadata(fillMetadata)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	template, err := os.ReadFile(fillTemplate)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	if err := os.MkdirAll(fillOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	locales := make([]string, 0, len(meta))
	for locale := range meta {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		path := filepath.Join(fillOutDir, locale+".md")
		text := sheet.Fill(string(template), locale, meta[locale])
		if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debug("wrote datasheet skeleton", zap.String("lang", locale), zap.String("path", path))
	}
	logger.Info("filled datasheet template", zap.Int("locales", len(locales)), zap.String("out_dir", fillOutDir))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d datasheets written to %s\n", len(locales), fillOutDir); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Substitute ==KEY== description blocks into a template",
		Args:  cobra.NoArgs,
		RunE:  runDescribeCmd,
	}
	cmd.Flags().StringVar(&describeTemplate, "template", "", "datasheet template")
	cmd.Flags().StringVar(&describeDescription, "description", "", "description file with ==KEY== blocks")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func runDescribeCmd(cmd *cobra.Command, _ []string) error {
	template, err := os.ReadFile(describeTemplate)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	f, err := os.Open(describeDescription)
	if err != nil {
		return fmt.Errorf("failed to open description: %w", err)
	}
	defer func() { _ = f.Close() }()
	table, err := sheet.ParseDescription(f)
	if err != nil {
		return fmt.Errorf("failed to read description: %w", err)
	}
	logger.Debug("parsed description", zap.Int("keys", len(table)))
	_, err = io.WriteString(cmd.OutOrStdout(), sheet.Describe(string(template), table)+"\n")
	return err
}

func newPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune FILE",
		Short: "Drop empty and unfilled datasheet sections",
		Args:  cobra.ExactArgs(1),
		RunE:  runPruneCmd,
	}
}

func runPruneCmd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	kept, dropped := sheet.Prune(data)
	logger.Info("pruned datasheet", zap.String("path", args[0]), zap.Int("dropped_sections", dropped))
	_, err = io.WriteString(cmd.OutOrStdout(), kept)
	return err
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report which drafted datasheets are final",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().StringVar(&statusDraftDir, "draft-dir", "draft", "drafted datasheets")
	cmd.Flags().StringVar(&statusFinalDir, "final-dir", "final", "finalized datasheets")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	report, err := sheet.Status(statusDraftDir, statusFinalDir)
	if err != nil {
		return fmt.Errorf("failed to read datasheets: %w", err)
	}
	return sheet.RenderStatus(cmd.OutOrStdout(), report)
}

func newMetadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Build metadata.json from platform statistics and translations",
		Args:  cobra.NoArgs,
		RunE:  runMetadataCmd,
	}
	cmd.Flags().StringVar(&metadataStats, "stats", "", "language statistics export (JSON)")
	cmd.Flags().StringVar(&metadataTranslations, "translations", "", "localization file with a # [Languages] block")
	cmd.Flags().StringVar(&metadataOut, "out", "metadata.json", "output file")
	_ = cmd.MarkFlagRequired("stats")
	_ = cmd.MarkFlagRequired("translations")
	return cmd
}

func runMetadataCmd(cmd *cobra.Command, _ []string) error {
	localeStats, err := languages.ReadLocaleStats(metadataStats)
	if err != nil {
		return fmt.Errorf("failed to read language statistics: %w", err)
	}
	f, err := os.Open(metadataTranslations)
	if err != nil {
		return fmt.Errorf("failed to open translations: %w", err)
	}
	defer func() { _ = f.Close() }()
	translations, err := languages.ParseTranslations(f)
	if err != nil {
		return fmt.Errorf("failed to read translations: %w", err)
	}

	meta := languages.MergeMetadata(localeStats, translations)
	if err := languages.WriteMetadata(metadataOut, meta); err != nil {
		return err
	}
	logger.Info("wrote metadata", zap.String("path", metadataOut), zap.Int("locales", len(meta)))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d locales written to %s\n", len(meta), metadataOut); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
