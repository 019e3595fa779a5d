// Package engine implements the practice session state machine and the
// rocket altitude simulation. It is display-free: the TUI feeds it input
// events and frame ticks and renders whatever state comes back.
package engine

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/facecards/internal/model"
)

// ErrNoCards is returned when a session is started without any eligible
// cards.
var ErrNoCards = errors.New("no eligible cards to practice")

// Phase is the session's position in the guess cycle.
type Phase int

// Session phases.
const (
	PhaseAwaitingGuess Phase = iota
	PhaseShowingFeedback
	PhaseAutoAdvancing
	PhaseComplete
)

// Feedback classifies the most recent guess.
type Feedback int

// Guess classifications.
const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackNickname
	FeedbackIncorrect
)

// Correct reports whether the feedback counts as a correct recall.
func (f Feedback) Correct() bool {
	return f == FeedbackCorrect || f == FeedbackNickname
}

// Tier buckets a finished session's accuracy for the completion screen.
type Tier int

// Accuracy tiers.
const (
	TierDefault Tier = iota
	TierGood         // >= 60%
	TierGreat        // >= 80%
	TierPerfect      // 100%
)

// AutoAdvanceDelay is how long rocket mode shows feedback before moving to
// the next card on its own.
const AutoAdvanceDelay = 800 * time.Millisecond

// Outcome reports what a submitted guess did.
type Outcome struct {
	Feedback    Feedback
	Crashed     bool
	AutoAdvance bool
	Completed   bool
}

// Session runs one practice pass over a fixed set of eligible cards.
// All mutation goes through its methods; there is exactly one writer.
type Session struct {
	cards      []model.Card
	mode       model.GameMode
	difficulty model.Difficulty
	shuffle    bool
	rng        *rand.Rand
	now        func() time.Time

	order  []int
	cursor int

	correct int
	total   int

	phase    Phase
	feedback Feedback

	correctionInput string

	startedAt time.Time
	endedAt   time.Time

	altitude *Altitude
}

// NewSession builds a session over the given eligible cards. The rng drives
// the shuffle; pass a seeded rand for reproducible tests.
func NewSession(cards []model.Card, mode model.GameMode, difficulty model.Difficulty, shuffle bool, rng *rand.Rand) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	s := &Session{
		cards:      cards,
		mode:       mode,
		difficulty: difficulty,
		shuffle:    shuffle,
		rng:        rng,
		now:        time.Now,
	}
	s.restart()
	return s, nil
}

func (s *Session) restart() {
	s.order = make([]int, len(s.cards))
	for i := range s.order {
		s.order[i] = i
	}
	if s.shuffle {
		shuffleInts(s.order, s.rng)
	}
	s.cursor = 0
	s.correct = 0
	s.total = 0
	s.phase = PhaseAwaitingGuess
	s.feedback = FeedbackNone
	s.correctionInput = ""
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.altitude = nil
	if s.mode == model.ModeRocket {
		s.altitude = NewAltitude()
	}
}

// shuffleInts is an in-place Fisher-Yates shuffle.
func shuffleInts(xs []int, rng *rand.Rand) {
	for i := len(xs) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// Current returns the card the user is being asked about.
func (s *Session) Current() model.Card {
	return s.cards[s.order[s.cursor]]
}

// Phase returns the session phase.
func (s *Session) Phase() Phase { return s.phase }

// Feedback returns the classification for the current card, or
// FeedbackNone while awaiting a guess.
func (s *Session) Feedback() Feedback { return s.feedback }

// Mode returns the active game mode.
func (s *Session) Mode() model.GameMode { return s.mode }

// Difficulty returns the active difficulty.
func (s *Session) Difficulty() model.Difficulty { return s.difficulty }

// Stats returns the running correct/total counts.
func (s *Session) Stats() (correct, total int) { return s.correct, s.total }

// Len returns the number of cards in the session.
func (s *Session) Len() int { return len(s.order) }

// Position returns the 1-based number of the current card for display.
func (s *Session) Position() int { return s.cursor + 1 }

// Altitude returns the rocket altitude model, or nil outside rocket mode.
func (s *Session) Altitude() *Altitude { return s.altitude }

// Complete reports whether the session has finished, by exhausting the
// cards or by crashing.
func (s *Session) Complete() bool { return s.phase == PhaseComplete }

// Crashed reports whether a rocket session ended in a crash.
func (s *Session) Crashed() bool {
	return s.altitude != nil && s.altitude.Crashed()
}

// Started reports whether a timed session's clock is running.
func (s *Session) Started() bool { return !s.startedAt.IsZero() }

// Elapsed returns the timed-mode duration: zero before the first guess,
// running until completion, then frozen.
func (s *Session) Elapsed() time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	if !s.endedAt.IsZero() {
		return s.endedAt.Sub(s.startedAt)
	}
	return s.now().Sub(s.startedAt)
}

// SubmitGuess classifies the guess against the current card. Empty input
// and submissions outside the awaiting phase are no-ops (ok=false).
func (s *Session) SubmitGuess(raw string) (Outcome, bool) {
	guess := normalize(raw)
	if guess == "" || s.phase != PhaseAwaitingGuess {
		return Outcome{}, false
	}
	card := s.Current()

	feedback := FeedbackIncorrect
	if guess == s.target(card) {
		feedback = FeedbackCorrect
	} else if s.difficulty == model.DifficultyFirstName {
		// Nicknames only stand in for the first name, never the full name.
		for _, nick := range card.Nicknames {
			if guess == normalize(nick) {
				feedback = FeedbackNickname
				break
			}
		}
	}
	return s.applyFeedback(feedback), true
}

// Reveal gives up on the current card: counted as an incorrect guess,
// including the rocket penalty.
func (s *Session) Reveal() (Outcome, bool) {
	if s.phase != PhaseAwaitingGuess {
		return Outcome{}, false
	}
	return s.applyFeedback(FeedbackIncorrect), true
}

func (s *Session) applyFeedback(feedback Feedback) Outcome {
	if s.mode == model.ModeTimed && s.startedAt.IsZero() {
		s.startedAt = s.now()
	}

	s.total++
	if feedback.Correct() {
		s.correct++
	}
	s.feedback = feedback
	s.phase = PhaseShowingFeedback
	s.correctionInput = ""

	out := Outcome{Feedback: feedback}

	if s.mode == model.ModeRocket && s.altitude != nil {
		if feedback.Correct() {
			s.altitude.Boost()
			if s.total >= len(s.order) {
				s.complete()
				out.Completed = true
			} else {
				s.phase = PhaseAutoAdvancing
				out.AutoAdvance = true
			}
			return out
		}
		if s.altitude.Penalize(PenaltyAmount) {
			s.complete()
			out.Crashed = true
			out.Completed = true
			return out
		}
		return out
	}

	if feedback.Correct() && s.total >= len(s.order) {
		s.complete()
		out.Completed = true
	}
	return out
}

// Advance moves to the next card. In classic mode an incorrect answer
// blocks advancing until the correction gate is satisfied (or skipped via
// SkipCorrection). Returns false when advancing is not permitted.
func (s *Session) Advance() bool {
	if s.phase != PhaseShowingFeedback && s.phase != PhaseAutoAdvancing {
		return false
	}
	if s.gateActive() && !s.CorrectionSatisfied() {
		return false
	}
	s.advance()
	return true
}

// AutoAdvance fires the scheduled rocket-mode advance. It only acts in the
// auto-advancing phase so a stale timer can never double-advance.
func (s *Session) AutoAdvance() bool {
	if s.phase != PhaseAutoAdvancing {
		return false
	}
	s.advance()
	return true
}

func (s *Session) advance() {
	s.feedback = FeedbackNone
	s.correctionInput = ""
	if s.total >= len(s.order) {
		s.complete()
		return
	}
	s.cursor = (s.cursor + 1) % len(s.order)
	s.phase = PhaseAwaitingGuess
}

func (s *Session) complete() {
	if s.phase == PhaseComplete {
		return
	}
	s.phase = PhaseComplete
	if !s.startedAt.IsZero() && s.endedAt.IsZero() {
		s.endedAt = s.now()
	}
}

func (s *Session) gateActive() bool {
	return s.mode == model.ModeClassic && s.feedback == FeedbackIncorrect
}

// CorrectionTarget returns the string the user must retype to pass the
// correction gate.
func (s *Session) CorrectionTarget() string {
	return s.displayTarget(s.Current())
}

// GateActive reports whether the correction gate currently blocks
// advancing.
func (s *Session) GateActive() bool {
	return s.phase == PhaseShowingFeedback && s.gateActive()
}

// SetCorrectionInput records the current contents of the correction field.
// The gate recomputes on every keystroke.
func (s *Session) SetCorrectionInput(input string) {
	s.correctionInput = input
}

// CorrectionSatisfied reports whether the retyped answer matches the
// target (case-insensitive, trimmed).
func (s *Session) CorrectionSatisfied() bool {
	return normalize(s.correctionInput) == s.target(s.Current())
}

// SkipCorrection bypasses the correction gate and advances.
func (s *Session) SkipCorrection() bool {
	if !s.GateActive() {
		return false
	}
	s.advance()
	return true
}

// Shuffle reorders the cards and starts the pass from the first one.
// Stats, the timed clock, and the altitude model carry over; only
// Restart resets them.
func (s *Session) Shuffle() {
	if s.phase == PhaseComplete {
		return
	}
	shuffleInts(s.order, s.rng)
	s.cursor = 0
	s.feedback = FeedbackNone
	s.correctionInput = ""
	if s.total >= len(s.order) {
		s.complete()
		return
	}
	s.phase = PhaseAwaitingGuess
}

// Restart fully resets the session.
func (s *Session) Restart() {
	s.restart()
}

// SetMode switches the game mode. Any switch is a full restart.
func (s *Session) SetMode(mode model.GameMode) {
	s.mode = mode
	s.restart()
}

// SetDifficulty changes the match target. Difficulty may change
// mid-session without resetting progress.
func (s *Session) SetDifficulty(d model.Difficulty) {
	s.difficulty = d
}

// Tick advances the rocket simulation by dt seconds. Gravity only pulls
// while a guess is pending. Returns true on the tick where the rocket
// crashes; the session completes at that moment.
func (s *Session) Tick(dt float64) bool {
	if s.altitude == nil {
		return false
	}
	gravityActive := s.phase == PhaseAwaitingGuess
	crashedNow := s.altitude.Tick(dt, gravityActive)
	if crashedNow {
		s.feedback = FeedbackNone
		s.complete()
	}
	return crashedNow
}

// Accuracy returns the rounded percentage of correct answers, 0 when
// nothing has been answered.
func (s *Session) Accuracy() int {
	if s.total == 0 {
		return 0
	}
	return int(float64(s.correct)/float64(s.total)*100 + 0.5)
}

// ResultTier buckets the session accuracy for completion copy.
func (s *Session) ResultTier() Tier {
	acc := s.Accuracy()
	switch {
	case acc >= 100:
		return TierPerfect
	case acc >= 80:
		return TierGreat
	case acc >= 60:
		return TierGood
	default:
		return TierDefault
	}
}

// target returns the normalized string a guess is compared against.
func (s *Session) target(card model.Card) string {
	return normalize(s.displayTarget(card))
}

// displayTarget returns the answer in display casing.
func (s *Session) displayTarget(card model.Card) string {
	name := strings.TrimSpace(card.Name)
	if s.difficulty == model.DifficultyFullName {
		return name
	}
	return firstName(name)
}

// firstName is the substring before the first space.
func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
