package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/cvsheet/internal/config"
	"github.com/verte-zerg/cvsheet/internal/model"
	"github.com/verte-zerg/cvsheet/internal/stats"
	"github.com/verte-zerg/cvsheet/internal/statsui"
	"github.com/verte-zerg/cvsheet/internal/store"
)

var (
	historyLang   string
	historySince  string
	historyLast   int
	historyFormat string
	historyDBPath string
)

func addHistoryFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&historyLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N snapshots")
	cmd.Flags().StringVar(&historyDBPath, "db", "", "history database (default: $XDG_DATA_HOME/cvsheet/history.db)")
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	addHistoryFilterFlags(cmd)
	cmd.Flags().StringVar(&historyFormat, "format", formatText, "output format (text|json|yaml)")
	return cmd
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse saved snapshots",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	addHistoryFilterFlags(cmd)
	return cmd
}

func historyFilter() (model.HistoryFilter, error) {
	if historyLast < 0 {
		return model.HistoryFilter{}, fmt.Errorf("--last must be >= 0")
	}
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryFilter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	return model.HistoryFilter{Lang: historyLang, Since: sinceTime, Last: historyLast}, nil
}

func openHistory() (*store.Store, error) {
	path := historyDBPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeHistory(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logger.Warn("failed to close db", zap.Error(cerr))
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	switch historyFormat {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("--format must be text, json or yaml")
	}
	filter, err := historyFilter()
	if err != nil {
		return err
	}
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st)

	records, err := st.ListSnapshots(cmd.Context(), filter)
	if err != nil {
		return err
	}
	logger.Debug("loaded snapshots", zap.Int("count", len(records)))
	if historyFormat == formatText {
		return stats.RenderHistory(cmd.OutOrStdout(), records)
	}
	if records == nil {
		records = []model.SnapshotRecord{}
	}
	return encode(cmd.OutOrStdout(), records, historyFormat)
}

func runViewCmd(_ *cobra.Command, _ []string) error {
	filter, err := historyFilter()
	if err != nil {
		return err
	}
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st)

	program := tea.NewProgram(statsui.NewModel(st, filter), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}
