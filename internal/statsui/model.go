// Package statsui provides the Bubble Tea snapshot viewer.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/cvsheet/internal/model"
	"github.com/verte-zerg/cvsheet/internal/stats"
)

const (
	tabOverview = iota
	tabDemographics
	tabTextCorpus
	tabHistory
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// History lists saved snapshots.
type History interface {
	ListSnapshots(ctx context.Context, filter model.HistoryFilter) ([]model.SnapshotRecord, error)
}

// Model implements the Bubble Tea snapshot viewer.
type Model struct {
	history History
	filter  model.HistoryFilter

	// records are ordered newest first.
	records []model.SnapshotRecord
	current int
	errMsg  string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	historyTable table.Model

	width  int
	height int
}

// NewModel constructs a viewer over the snapshots matching filter.
func NewModel(h History, filter model.HistoryFilter) *Model {
	m := &Model{
		history: h,
		filter:  filter,
		tabs:    []string{"Overview", "Demographics", "Text Corpus", "History"},
	}
	m.initViewports()
	m.historyTable = buildHistoryTable(nil, 80, 1)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refresh()
			return m, nil
		case "enter":
			if m.activeTab == tabHistory {
				m.selectRecord(m.historyTable.Cursor())
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabHistory {
				m.historyTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.historyTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.historyTable, cmd = m.historyTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Current returns the snapshot shown in the detail tabs.
func (m *Model) Current() (model.SnapshotRecord, bool) {
	if m.current < 0 || m.current >= len(m.records) {
		return model.SnapshotRecord{}, false
	}
	return m.records[m.current], true
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(maxInt(1, vpHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

func (m *Model) refresh() {
	records, err := m.history.ListSnapshots(context.Background(), m.filter)
	if err != nil {
		m.errMsg = err.Error()
		m.records = nil
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	m.records = records
	m.current = 0
	m.historyTable.SetRows(historyRows(records))
	m.renderTabContents()
}

func (m *Model) selectRecord(idx int) {
	if idx < 0 || idx >= len(m.records) {
		return
	}
	m.current = idx
	m.renderTabContents()
	m.activeTab = tabOverview
	m.historyTable.Blur()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := "No snapshot selected"
	if rec, ok := m.Current(); ok {
		summary = fmt.Sprintf("%s (%s)  saved %s  run %s",
			rec.Snapshot.Language.Name, rec.Lang,
			rec.CreatedAt.Local().Format("2006-01-02 15:04"), shortID(rec.RunID))
	}
	return tabs + "\n" + padLines(headerStyle.Render(truncateLine(summary, m.width)), m.width)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q"
	if m.activeTab == tabHistory {
		help = "Nav: left/right  Select: up/down  Open: enter  Reload: r  Quit: q"
	}
	out := headerStyle.Render(help)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	}
	return out
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabHistory {
		if len(m.records) == 0 {
			return fitLines("No snapshots saved. Run: cvsheet stats --save", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.historyTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	rec, ok := m.Current()
	if m.errMsg != "" || !ok {
		msg := "No snapshots saved. Run: cvsheet stats --save"
		if m.errMsg != "" {
			msg = "Failed to load history."
		}
		for i := range m.viewports {
			m.viewports[i].SetContent(msg)
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	rep := stats.Report{
		Snapshot:           rec.Snapshot,
		NeedsMoreSentences: rec.NeedsMoreSentences,
		Contributors:       rec.Contributors,
	}
	m.viewports[tabOverview].SetContent(renderOverview(rep, width))
	m.viewports[tabDemographics].SetContent(renderDemographics(rep.Snapshot, width))
	m.viewports[tabTextCorpus].SetContent(renderTextCorpus(rep.Snapshot))
}

func renderOverview(rep stats.Report, width int) string {
	snap := rep.Snapshot
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Validated hours", fmt.Sprintf("%.2f", snap.ClipStats.ValidatedHours)),
		metricCard("Total hours", fmt.Sprintf("%.2f", snap.ClipStats.TotalHours)),
		metricCard("Clips", humanize.Comma(int64(snap.ClipStats.TotalCount))),
		metricCard("Contributors", humanize.Comma(int64(rep.Contributors))),
		metricCard("Sentences", humanize.Comma(int64(snap.SentenceStats.TotalCount))),
	)
	var buf bytes.Buffer
	if err := stats.RenderClipTable(&buf, snap); err != nil {
		return fmt.Sprintf("Failed to render clips: %v", err)
	}
	if err := stats.RenderSentenceTable(&buf, snap.SentenceStats); err != nil {
		return fmt.Sprintf("Failed to render sentences: %v", err)
	}
	if err := stats.RenderBars(&buf, "Clips per contributor", snap.ContributorStats.Entries(), width, true); err != nil {
		return fmt.Sprintf("Failed to render contributors: %v", err)
	}
	parts := []string{cards, "", strings.TrimRight(buf.String(), "\n")}
	if rep.NeedsMoreSentences {
		parts = append(parts, "", warnStyle.Render("This language needs new sentences."))
	}
	return strings.Join(parts, "\n")
}

func renderDemographics(snap model.Snapshot, width int) string {
	sections := []struct {
		title   string
		entries []model.HistogramEntry
	}{
		{"Gender", snap.Demographics.Gender.Entries()},
		{"Age", snap.Demographics.Age.Entries()},
		{"Accent (top 15)", stats.TopEntries(snap.Demographics.Accent, 15)},
	}
	var buf bytes.Buffer
	for _, sec := range sections {
		if len(sec.entries) == 0 {
			buf.WriteString(sec.title + "\nNo data.\n\n")
			continue
		}
		if err := stats.RenderBars(&buf, sec.title, sec.entries, width, true); err != nil {
			return fmt.Sprintf("Failed to render demographics: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTextCorpus(snap model.Snapshot) string {
	var buf bytes.Buffer
	if err := stats.RenderTextCorpus(&buf, snap.TextCorpus); err != nil {
		return fmt.Sprintf("Failed to render text corpus: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func historyRows(records []model.SnapshotRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		needs := "-"
		if rec.NeedsMoreSentences {
			needs = "yes"
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(rec.ID, 10),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Lang,
			fmt.Sprintf("%.2f", rec.ValidatedHours),
			humanize.Comma(int64(rec.TotalClips)),
			humanize.Comma(int64(rec.Contributors)),
			needs,
		})
	}
	return rows
}

func buildHistoryTable(records []model.SnapshotRecord, width, height int) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Saved", Width: 16},
		{Title: "Lang", Width: 7},
		{Title: "Hours", Width: 9},
		{Title: "Clips", Width: 10},
		{Title: "Contributors", Width: 12},
		{Title: "Needs sentences", Width: 15},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(historyRows(records)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(historyTableStyles())
	return t
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
