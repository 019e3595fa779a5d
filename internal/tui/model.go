package tui

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/facecards/internal/engine"
	"github.com/verte-zerg/facecards/internal/mnemonic"
	"github.com/verte-zerg/facecards/internal/model"
	"github.com/verte-zerg/facecards/internal/photo"
	"github.com/verte-zerg/facecards/internal/scene"
	"github.com/verte-zerg/facecards/internal/score"
	"github.com/verte-zerg/facecards/internal/store"
)

const (
	frameInterval = time.Second / 60
	photoCols     = 28
	photoRows     = 14
	starCount     = 60
	storeTimeout  = 5 * time.Second
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AD786"))
	nicknameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	dangerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A")).Padding(0, 1)
)

type frameMsg struct {
	gen int
	at  time.Time
}

type autoAdvanceMsg struct {
	gen int
}

type clockMsg struct {
	gen int
}

type photoMsg struct {
	cardID string
	art    photo.Art
	err    error
}

type scoreSavedMsg struct {
	gen  int
	rank model.RankInfo
	err  error
}

type mnemonicSavedMsg struct {
	err error
}

// Model implements the Bubble Tea practice UI. The engine owns all
// gameplay state; the model owns presentation and the frame clock.
type Model struct {
	deckName string
	session  *engine.Session
	store    *store.Store
	suggest  *mnemonic.Suggester
	rng      *rand.Rand

	guessInput      textinput.Model
	correctionInput textinput.Model

	width  int
	height int

	// gen invalidates in-flight frame and auto-advance ticks whenever the
	// session restarts, so a stale timer can never touch the new session.
	gen       int
	frame     int
	lastFrame time.Time

	// clockRunning keeps the timed-mode header refresh down to a single
	// pending tick.
	clockRunning bool

	stars []scene.Star

	photos    map[string]photo.Art
	photoErrs map[string]bool

	mnemonics map[string]string

	notice     string
	rank       *model.RankInfo
	scoreSaved bool
}

// NewModel constructs a practice model over the eligible cards of a deck.
func NewModel(deckName string, cards []model.Card, cfg model.Config, st *store.Store) (*Model, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	session, err := engine.NewSession(cards, cfg.Mode, cfg.Difficulty, cfg.Shuffle, rng)
	if err != nil {
		return nil, err
	}

	guess := textinput.New()
	guess.Placeholder = "type their name"
	guess.CharLimit = 64
	guess.Focus()

	correction := textinput.New()
	correction.Placeholder = "retype the correct name"
	correction.CharLimit = 64

	m := &Model{
		deckName:        deckName,
		session:         session,
		store:           st,
		suggest:         mnemonic.New(),
		rng:             rng,
		guessInput:      guess,
		correctionInput: correction,
		stars:           scene.NewStarfield(starCount, rng),
		photos:          map[string]photo.Art{},
		photoErrs:       map[string]bool{},
		mnemonics:       map[string]string{},
	}
	for _, c := range cards {
		if c.Mnemonic != "" {
			m.mnemonics[c.ID] = c.Mnemonic
		}
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadPhotoCmd(m.session.Current()), m.frameCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case frameMsg:
		return m, m.handleFrame(msg)
	case autoAdvanceMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if m.session.AutoAdvance() {
			return m, m.afterAdvance()
		}
		return m, nil
	case clockMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.clockRunning = false
		return m, m.clockCmd()
	case photoMsg:
		if msg.err != nil {
			m.photoErrs[msg.cardID] = true
			logErrf("failed to load photo for %s: %v\n", msg.cardID, msg.err)
			return m, nil
		}
		m.photos[msg.cardID] = msg.art
		return m, nil
	case scoreSavedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.notice = "couldn't save score"
			logErrf("failed to save score: %v\n", msg.err)
			return m, nil
		}
		rank := msg.rank
		m.rank = &rank
		return m, nil
	case mnemonicSavedMsg:
		if msg.err != nil {
			m.notice = "couldn't save mnemonic"
			logErrf("failed to save mnemonic: %v\n", msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleFrame(msg frameMsg) tea.Cmd {
	if msg.gen != m.gen || m.session.Mode() != model.ModeRocket {
		return nil
	}
	dt := frameInterval.Seconds()
	if !m.lastFrame.IsZero() {
		dt = msg.at.Sub(m.lastFrame).Seconds()
	}
	m.lastFrame = msg.at
	m.frame++

	crashedNow := m.session.Tick(dt)
	var cmds []tea.Cmd
	if crashedNow {
		cmds = append(cmds, m.saveScoreCmd())
	}
	if !m.session.Complete() {
		cmds = append(cmds, m.frameCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.session.Complete() {
		switch {
		case msg.Type == tea.KeyEnter:
			return m, m.restart()
		case msg.Type == tea.KeyTab:
			m.session.SetMode(nextMode(m.session.Mode()))
			return m, m.restart()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab:
		m.session.SetMode(nextMode(m.session.Mode()))
		return m, m.restart()
	case tea.KeyCtrlD:
		m.toggleDifficulty()
		return m, nil
	case tea.KeyCtrlF:
		m.session.Shuffle()
		m.guessInput.SetValue("")
		m.guessInput.Focus()
		m.correctionInput.SetValue("")
		m.correctionInput.Blur()
		return m, m.loadPhotoCmd(m.session.Current())
	}

	switch m.session.Phase() {
	case engine.PhaseAwaitingGuess:
		return m.handleGuessKey(msg)
	case engine.PhaseShowingFeedback:
		return m.handleFeedbackKey(msg)
	default:
		// Input is blocked while auto-advancing.
		return m, nil
	}
}

func (m *Model) handleGuessKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		out, ok := m.session.SubmitGuess(m.guessInput.Value())
		if !ok {
			return m, nil
		}
		return m, m.afterOutcome(out)
	case tea.KeyCtrlR:
		out, ok := m.session.Reveal()
		if !ok {
			return m, nil
		}
		return m, m.afterOutcome(out)
	}
	var cmd tea.Cmd
	m.guessInput, cmd = m.guessInput.Update(msg)
	return m, cmd
}

func (m *Model) handleFeedbackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlG {
		return m, m.regenerateMnemonic()
	}

	if m.session.GateActive() {
		switch msg.Type {
		case tea.KeyEnter:
			if m.session.Advance() {
				return m, m.afterAdvance()
			}
			return m, nil
		case tea.KeyCtrlS:
			if m.session.SkipCorrection() {
				return m, m.afterAdvance()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.correctionInput, cmd = m.correctionInput.Update(msg)
		m.session.SetCorrectionInput(m.correctionInput.Value())
		return m, cmd
	}

	if msg.Type == tea.KeyEnter {
		if m.session.Advance() {
			return m, m.afterAdvance()
		}
	}
	return m, nil
}

func (m *Model) afterOutcome(out engine.Outcome) tea.Cmd {
	var cmds []tea.Cmd
	if m.session.GateActive() {
		m.correctionInput.SetValue("")
		m.correctionInput.Focus()
		m.guessInput.Blur()
	}
	if out.AutoAdvance {
		gen := m.gen
		cmds = append(cmds, tea.Tick(engine.AutoAdvanceDelay, func(time.Time) tea.Msg {
			return autoAdvanceMsg{gen: gen}
		}))
	}
	if out.Completed {
		cmds = append(cmds, m.saveScoreCmd())
	} else if cmd := m.clockCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) afterAdvance() tea.Cmd {
	m.guessInput.SetValue("")
	m.guessInput.Focus()
	m.correctionInput.Blur()
	m.correctionInput.SetValue("")
	if m.session.Complete() {
		return m.saveScoreCmd()
	}
	return m.loadPhotoCmd(m.session.Current())
}

// restart invalidates pending ticks and starts the session over.
func (m *Model) restart() tea.Cmd {
	m.gen++
	m.frame = 0
	m.lastFrame = time.Time{}
	m.clockRunning = false
	m.rank = nil
	m.scoreSaved = false
	m.notice = ""
	m.session.Restart()
	m.guessInput.SetValue("")
	m.guessInput.Focus()
	m.correctionInput.SetValue("")
	m.correctionInput.Blur()
	return tea.Batch(m.loadPhotoCmd(m.session.Current()), m.frameCmd())
}

func (m *Model) toggleDifficulty() {
	if m.session.Difficulty() == model.DifficultyFirstName {
		m.session.SetDifficulty(model.DifficultyFullName)
	} else {
		m.session.SetDifficulty(model.DifficultyFirstName)
	}
}

func nextMode(mode model.GameMode) model.GameMode {
	switch mode {
	case model.ModeClassic:
		return model.ModeTimed
	case model.ModeTimed:
		return model.ModeRocket
	default:
		return model.ModeClassic
	}
}

// clockCmd keeps the timed-mode elapsed readout moving between
// keystrokes.
func (m *Model) clockCmd() tea.Cmd {
	if m.session.Mode() != model.ModeTimed || !m.session.Started() || m.session.Complete() || m.clockRunning {
		return nil
	}
	m.clockRunning = true
	gen := m.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return clockMsg{gen: gen}
	})
}

func (m *Model) frameCmd() tea.Cmd {
	if m.session.Mode() != model.ModeRocket || m.session.Complete() {
		return nil
	}
	gen := m.gen
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, at: t}
	})
}

func (m *Model) loadPhotoCmd(card model.Card) tea.Cmd {
	if _, ok := m.photos[card.ID]; ok {
		return nil
	}
	if m.photoErrs[card.ID] {
		return nil
	}
	path := card.Photo
	id := card.ID
	return func() tea.Msg {
		art, err := photo.Load(path, photoCols, photoRows)
		return photoMsg{cardID: id, art: art, err: err}
	}
}

// saveScoreCmd submits the finished session to the leaderboard. The
// session never waits on it; a failure only sets a notice.
func (m *Model) saveScoreCmd() tea.Cmd {
	if m.store == nil || m.scoreSaved {
		return nil
	}
	m.scoreSaved = true
	correct, total := m.session.Stats()
	rec := model.SessionRecord{
		Deck:       m.deckName,
		Mode:       m.session.Mode(),
		Difficulty: m.session.Difficulty(),
		Correct:    correct,
		Total:      total,
		DurationMs: m.session.Elapsed().Milliseconds(),
		Crashed:    m.session.Crashed(),
		EndedAt:    time.Now(),
	}
	gen := m.gen
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		rank, err := st.InsertSession(ctx, rec)
		return scoreSavedMsg{gen: gen, rank: rank, err: err}
	}
}

// regenerateMnemonic replaces the current card's hint with a fresh
// suggestion and persists it in the background.
func (m *Model) regenerateMnemonic() tea.Cmd {
	card := m.session.Current()
	text := m.suggest.Suggest(card.Name)
	if text == "" {
		return nil
	}
	m.mnemonics[card.ID] = text
	if m.store == nil {
		return nil
	}
	st := m.store
	deckName := m.deckName
	cardID := card.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return mnemonicSavedMsg{err: st.SaveMnemonic(ctx, deckName, cardID, text)}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.session.Complete() {
		return m.viewComplete()
	}
	return m.viewPractice()
}

func (m *Model) viewPractice() string {
	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPhotoPanel(), " ", m.renderPromptPanel())
	if m.session.Mode() == model.ModeRocket {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.renderRocketPanel())
	}
	footer := m.renderFooter()

	content := strings.Join([]string{header, "", body, "", footer}, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	correct, total := m.session.Stats()
	parts := []string{
		titleStyle.Render(m.deckName),
		fmt.Sprintf("card %d/%d", m.session.Position(), m.session.Len()),
		fmt.Sprintf("score %d/%d", correct, total),
		fmt.Sprintf("%s · %s", m.session.Mode(), difficultyLabel(m.session.Difficulty())),
	}
	if m.session.Mode() == model.ModeTimed && m.session.Started() {
		parts = append(parts, score.FormatElapsed(m.session.Elapsed().Milliseconds()))
	}
	return footerStyle.Render(strings.Join(parts, "  ·  "))
}

func (m *Model) renderPhotoPanel() string {
	card := m.session.Current()
	art, ok := m.photos[card.ID]
	if !ok {
		art = photo.Placeholder(photoCols, photoRows)
	}
	return panelStyle.Render(art.Render())
}

func (m *Model) renderPromptPanel() string {
	card := m.session.Current()
	width := 36
	var b strings.Builder

	switch m.session.Phase() {
	case engine.PhaseAwaitingGuess:
		b.WriteString(promptStyle.Render("Who is this?"))
		b.WriteString("\n\n")
		b.WriteString(m.guessInput.View())
		if hint := m.mnemonics[card.ID]; hint != "" {
			b.WriteString("\n\n")
			b.WriteString(hintStyle.Render(wrapText(hint, width)))
		}
	case engine.PhaseShowingFeedback, engine.PhaseAutoAdvancing:
		b.WriteString(m.renderFeedback(card, width))
	}

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (m *Model) renderFeedback(card model.Card, width int) string {
	var b strings.Builder
	switch m.session.Feedback() {
	case engine.FeedbackCorrect:
		b.WriteString(correctStyle.Render("Correct!"))
	case engine.FeedbackNickname:
		b.WriteString(nicknameStyle.Render("Close enough: that's their nickname."))
	case engine.FeedbackIncorrect:
		b.WriteString(incorrectStyle.Render("Not quite."))
	}
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(card.Name))
	if hint := m.mnemonics[card.ID]; hint != "" {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(wrapText(hint, width)))
	}

	if m.session.GateActive() {
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render(fmt.Sprintf("Type %q to continue:", m.session.CorrectionTarget())))
		b.WriteString("\n")
		b.WriteString(m.correctionInput.View())
		if m.session.CorrectionSatisfied() {
			b.WriteString("\n")
			b.WriteString(correctStyle.Render("Got it, enter to continue."))
		}
	} else if m.session.Phase() == engine.PhaseShowingFeedback {
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("enter: next card"))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	help := "enter: submit · ctrl+r: reveal · ctrl+f: shuffle · tab: mode · ctrl+d: difficulty · ctrl+c: quit"
	if m.session.GateActive() {
		help = "retype the name · ctrl+s: skip · ctrl+g: new hint · ctrl+c: quit"
	} else if m.session.Phase() == engine.PhaseShowingFeedback {
		help = "enter: next · ctrl+g: new hint · ctrl+c: quit"
	}
	line := footerStyle.Render(help)
	if m.notice != "" {
		line += "\n" + noticeStyle.Render(m.notice)
	}
	return line
}

func (m *Model) viewComplete() string {
	correct, total := m.session.Stats()
	title := completionTitle(m.session.ResultTier(), m.session.Crashed())
	tierLine := ""
	if m.session.Mode() == model.ModeTimed && m.session.Started() {
		// Timed runs lead with the final time.
		tierLine = title
		title = score.FormatElapsed(m.session.Elapsed().Milliseconds())
	}

	lines := []string{
		titleStyle.Render(title),
		"",
		fmt.Sprintf("Score %d/%d · %d%% accuracy", correct, total, m.session.Accuracy()),
	}
	if tierLine != "" {
		lines = append(lines, tierLine)
	}
	if m.rank != nil {
		if m.rank.PersonalBest {
			lines = append(lines, nicknameStyle.Render("New personal best!"))
		} else {
			lines = append(lines, footerStyle.Render(fmt.Sprintf("Leaderboard: #%d of %d", m.rank.Rank, m.rank.OfTotal)))
		}
	}
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	lines = append(lines, "", footerStyle.Render("enter: play again · tab: switch mode · ctrl+c: quit"))

	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func completionTitle(tier engine.Tier, crashed bool) string {
	if crashed {
		return "Crashed! The ground remembers."
	}
	switch tier {
	case engine.TierPerfect:
		return "Perfect recall!"
	case engine.TierGreat:
		return "Great memory!"
	case engine.TierGood:
		return "Good progress."
	default:
		return "Keep practicing."
	}
}

func difficultyLabel(d model.Difficulty) string {
	if d == model.DifficultyFullName {
		return "full names"
	}
	return "first names"
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
