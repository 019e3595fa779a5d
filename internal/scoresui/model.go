// Package scoresui provides the Bubble Tea leaderboard interface.
package scoresui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/facecards/internal/model"
	"github.com/verte-zerg/facecards/internal/score"
	"github.com/verte-zerg/facecards/internal/store"
)

const (
	tabOverview = iota
	tabLeaderboard
	tabHistory
)

const leaderboardLimit = 25

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
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea scores UI.
type Model struct {
	store *store.Store
	cfg   model.ScoresConfig

	sessions []model.SessionRecord
	top      []model.SessionRecord
	errMsg   string

	tabs      []string
	activeTab int

	viewports []viewport.Model
	board     table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a scores UI model.
func NewModel(st *store.Store, cfg model.ScoresConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Leaderboard", "History"},
	}
	m.initInputs()
	m.viewports = []viewport.Model{viewport.New(0, 0), viewport.New(0, 0), viewport.New(0, 0)}
	m.board = buildBoard(nil, 0, 1)
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
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabLeaderboard {
				m.board.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabLeaderboard {
				m.board.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabLeaderboard {
				var cmd tea.Cmd
				m.board, cmd = m.board.Update(msg)
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
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
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
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.board = buildBoard(m.top, m.width, bodyHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabLeaderboard {
		m.board.Focus()
	} else {
		m.board.Blur()
	}
}

func (m *Model) refresh() {
	ctx := context.Background()
	sessions, err := m.store.ListSessions(ctx, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	top, err := m.store.TopScores(ctx, m.cfg.Deck, m.cfg.Mode, leaderboardLimit)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.sessions = sessions
	m.top = top
	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.sessions, width))
	m.viewports[tabHistory].SetContent(renderHistory(m.sessions, width))
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(m.filterSummary())
}

func (m *Model) filterSummary() string {
	deckLabel := m.cfg.Deck
	if deckLabel == "" {
		deckLabel = "any"
	}
	modeLabel := m.cfg.Mode
	if modeLabel == "" {
		modeLabel = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Filters: deck=%s  mode=%s  since=%s  last=%s", deckLabel, modeLabel, since, last)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filters (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab == tabLeaderboard {
		if len(m.top) == 0 {
			return "Leaderboard is empty."
		}
		return mutedStyle.Render(m.board.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Filters: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Deck: "),
		newFilterInput("Mode (classic/timed/rocket): "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Deck))
	m.filterInputs[1].SetValue(strings.TrimSpace(m.cfg.Mode))
	if m.cfg.Since != nil {
		m.filterInputs[2].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[2].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[3].SetValue("")
	}
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterIndex = 0
	m.filterError = ""
	m.setInputsFromConfig()
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
	cmd := m.filterInputs[0].Focus()
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		delta := 1
		if msg.Type == tea.KeyShiftTab {
			delta = -1
		}
		m.filterInputs[m.filterIndex].Blur()
		m.filterIndex = (m.filterIndex + delta + len(m.filterInputs)) % len(m.filterInputs)
		cmd := m.filterInputs[m.filterIndex].Focus()
		return m, cmd
	case tea.KeyEnter:
		cfg, err := m.parseFilters()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refresh()
		return m, tea.ClearScreen
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) parseFilters() (model.ScoresConfig, error) {
	cfg := model.ScoresConfig{
		Deck: strings.TrimSpace(m.filterInputs[0].Value()),
		Mode: strings.TrimSpace(strings.ToLower(m.filterInputs[1].Value())),
	}
	if cfg.Mode != "" {
		if _, ok := model.ParseGameMode(cfg.Mode); !ok {
			return cfg, fmt.Errorf("unknown mode %q", cfg.Mode)
		}
	}
	if raw := strings.TrimSpace(m.filterInputs[2].Value()); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date: %v", err)
		}
		cfg.Since = &parsed
	}
	if raw := strings.TrimSpace(m.filterInputs[3].Value()); raw != "" {
		last, err := strconv.Atoi(raw)
		if err != nil || last < 0 {
			return cfg, fmt.Errorf("last must be a non-negative number")
		}
		cfg.Last = last
	}
	return cfg, nil
}

func renderOverview(records []model.SessionRecord, width int) string {
	if len(records) == 0 {
		return "No sessions recorded yet."
	}
	var accSum float64
	best := 0
	crashes := 0
	var bestTime int64
	for _, rec := range records {
		acc := score.AccuracyPercent(rec.Correct, rec.Total)
		accSum += float64(acc)
		if acc > best {
			best = acc
		}
		if rec.Crashed {
			crashes++
		}
		if rec.Mode == model.ModeTimed && rec.DurationMs > 0 && (bestTime == 0 || rec.DurationMs < bestTime) {
			bestTime = rec.DurationMs
		}
	}
	count := len(records)
	cards := []string{
		metricCard("Sessions", strconv.Itoa(count)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", accSum/float64(count))),
		metricCard("Best Acc", fmt.Sprintf("%d%%", best)),
	}
	if bestTime > 0 {
		cards = append(cards, metricCard("Best Time", score.FormatElapsed(bestTime)))
	}
	if crashes > 0 {
		cards = append(cards, metricCard("Crashes", strconv.Itoa(crashes)))
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderHistory(records []model.SessionRecord, width int) string {
	if len(records) == 0 {
		return "No sessions recorded yet."
	}
	series := score.AccuracySeries(records)
	smoothed := score.MovingAverage(series, 5)
	sparkWidth := width - 4
	if sparkWidth > 0 && len(smoothed) > sparkWidth {
		smoothed = smoothed[len(smoothed)-sparkWidth:]
	}
	lines := []string{
		"Accuracy trend (5-session moving average)",
		score.Sparkline(smoothed),
		"",
	}
	start := 0
	if len(records) > 20 {
		start = len(records) - 20
	}
	for i := len(records) - 1; i >= start; i-- {
		rec := records[i]
		elapsed := ""
		if rec.DurationMs > 0 {
			elapsed = "  " + score.FormatElapsed(rec.DurationMs)
		}
		crashed := ""
		if rec.Crashed {
			crashed = "  crashed"
		}
		lines = append(lines, fmt.Sprintf("%s  %-8s %-7s %d/%d (%d%%)%s%s",
			rec.EndedAt.Local().Format("2006-01-02 15:04"),
			rec.Deck, rec.Mode, rec.Correct, rec.Total,
			score.AccuracyPercent(rec.Correct, rec.Total), elapsed, crashed))
	}
	return strings.Join(lines, "\n")
}

func buildBoard(records []model.SessionRecord, width, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Deck", Width: 14},
		{Title: "Mode", Width: 8},
		{Title: "Score", Width: 7},
		{Title: "Acc", Width: 5},
		{Title: "Time", Width: 8},
		{Title: "When", Width: 16},
	}
	rows := make([]table.Row, 0, len(records))
	for i, rec := range records {
		elapsed := "-"
		if rec.DurationMs > 0 {
			elapsed = score.FormatElapsed(rec.DurationMs)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			rec.Deck,
			string(rec.Mode),
			fmt.Sprintf("%d/%d", rec.Correct, rec.Total),
			fmt.Sprintf("%d%%", score.AccuracyPercent(rec.Correct, rec.Total)),
			elapsed,
			rec.EndedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	return t
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
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
