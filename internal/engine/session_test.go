package engine

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/verte-zerg/facecards/internal/model"
)

func testCards(n int) []model.Card {
	names := []string{"Jane Doe", "John Smith", "Ana Gomez", "Li Wei", "Sam Ononogbo"}
	cards := make([]model.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, model.Card{
			ID:    names[i%len(names)],
			Name:  names[i%len(names)],
			Photo: "x.png",
		})
	}
	return cards
}

func newTestSession(t *testing.T, cards []model.Card, mode model.GameMode, difficulty model.Difficulty, shuffle bool) *Session {
	t.Helper()
	s, err := NewSession(cards, mode, difficulty, shuffle, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestNewSessionNoCards(t *testing.T) {
	if _, err := NewSession(nil, model.ModeClassic, model.DifficultyFirstName, false, rand.New(rand.NewSource(1))); err != ErrNoCards {
		t.Fatalf("expected ErrNoCards, got %v", err)
	}
}

func TestGuessClassification(t *testing.T) {
	card := model.Card{ID: "jane", Name: "Jane Doe", Nicknames: []string{"janie"}, Photo: "x.png"}

	tests := []struct {
		name       string
		difficulty model.Difficulty
		input      string
		want       Feedback
	}{
		{"first name exact", model.DifficultyFirstName, "jane", FeedbackCorrect},
		{"first name cased and padded", model.DifficultyFirstName, "  JANE ", FeedbackCorrect},
		{"nickname", model.DifficultyFirstName, "janie", FeedbackNickname},
		{"last name only", model.DifficultyFirstName, "doe", FeedbackIncorrect},
		{"full name exact", model.DifficultyFullName, "jane doe", FeedbackCorrect},
		{"nickname ignored at full difficulty", model.DifficultyFullName, "janie", FeedbackIncorrect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, []model.Card{card}, model.ModeTimed, tt.difficulty, false)
			out, ok := s.SubmitGuess(tt.input)
			if !ok {
				t.Fatalf("submit rejected")
			}
			if out.Feedback != tt.want {
				t.Fatalf("feedback = %v, want %v", out.Feedback, tt.want)
			}
		})
	}
}

func TestEmptyGuessRejected(t *testing.T) {
	s := newTestSession(t, testCards(2), model.ModeClassic, model.DifficultyFirstName, false)
	if _, ok := s.SubmitGuess("   "); ok {
		t.Fatalf("blank guess should be a no-op")
	}
	if _, total := s.Stats(); total != 0 {
		t.Fatalf("blank guess must not count, total = %d", total)
	}
}

func TestStatsBounds(t *testing.T) {
	s := newTestSession(t, testCards(4), model.ModeClassic, model.DifficultyFirstName, false)
	for !s.Complete() {
		correct, total := s.Stats()
		if correct > total || total > s.Len() {
			t.Fatalf("stats out of bounds: %d/%d over %d cards", correct, total, s.Len())
		}
		if _, ok := s.Reveal(); !ok {
			t.Fatalf("reveal rejected mid-session")
		}
		if s.Complete() {
			break
		}
		s.SetCorrectionInput(s.CorrectionTarget())
		if !s.Advance() {
			t.Fatalf("advance blocked after gate satisfied")
		}
	}
	_, total := s.Stats()
	if total != s.Len() {
		t.Fatalf("total = %d at natural completion, want %d", total, s.Len())
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	for _, n := range []int{1, 2, 5, 17} {
		s := newTestSession(t, testCards(n), model.ModeClassic, model.DifficultyFirstName, true)
		got := append([]int(nil), s.order...)
		sort.Ints(got)
		for i, v := range got {
			if v != i {
				t.Fatalf("n=%d: order is not a permutation: %v", n, s.order)
			}
		}
	}
}

func TestShuffleNotAlwaysIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	identity := 0
	const rounds = 50
	for i := 0; i < rounds; i++ {
		s, err := NewSession(testCards(5), model.ModeClassic, model.DifficultyFirstName, true, rng)
		if err != nil {
			t.Fatalf("new session: %v", err)
		}
		same := true
		for j, v := range s.order {
			if v != j {
				same = false
				break
			}
		}
		if same {
			identity++
		}
	}
	if identity == rounds {
		t.Fatalf("all %d shuffles produced the identity order", rounds)
	}
}

func TestCorrectionGate(t *testing.T) {
	cards := []model.Card{{ID: "jane", Name: "Jane Doe", Photo: "x.png"}, {ID: "john", Name: "John Smith", Photo: "x.png"}}
	s := newTestSession(t, cards, model.ModeClassic, model.DifficultyFirstName, false)

	out, _ := s.SubmitGuess("nope")
	if out.Feedback != FeedbackIncorrect {
		t.Fatalf("feedback = %v, want incorrect", out.Feedback)
	}
	if !s.GateActive() {
		t.Fatalf("gate should be active after a classic miss")
	}

	s.SetCorrectionInput("jan")
	if s.CorrectionSatisfied() {
		t.Fatalf("partial retype must not satisfy the gate")
	}
	if s.Advance() {
		t.Fatalf("advance must be blocked while the gate is unsatisfied")
	}

	s.SetCorrectionInput("jane ")
	if !s.CorrectionSatisfied() {
		t.Fatalf("trimmed case-insensitive retype should satisfy the gate")
	}
	if !s.Advance() {
		t.Fatalf("advance should pass once the gate is satisfied")
	}
	if s.Phase() != PhaseAwaitingGuess || s.Current().ID != "john" {
		t.Fatalf("expected to be awaiting a guess on the next card")
	}
}

func TestCorrectionGateSkip(t *testing.T) {
	s := newTestSession(t, testCards(2), model.ModeClassic, model.DifficultyFirstName, false)
	s.SubmitGuess("nope")
	if !s.SkipCorrection() {
		t.Fatalf("skip should bypass the gate")
	}
	if s.Phase() != PhaseAwaitingGuess {
		t.Fatalf("phase = %v after skip, want awaiting", s.Phase())
	}
}

func TestNoGateOutsideClassic(t *testing.T) {
	for _, mode := range []model.GameMode{model.ModeTimed} {
		s := newTestSession(t, testCards(2), mode, model.DifficultyFirstName, false)
		s.SubmitGuess("nope")
		if s.GateActive() {
			t.Fatalf("mode %s must not gate advancement", mode)
		}
		if !s.Advance() {
			t.Fatalf("mode %s should advance freely after a miss", mode)
		}
	}
}

func TestClassicEndToEnd(t *testing.T) {
	cards := []model.Card{
		{ID: "jane", Name: "Jane Doe", Photo: "x.png"},
		{ID: "john", Name: "John Smith", Photo: "x.png"},
		{ID: "ana", Name: "Ana Gomez", Photo: "x.png"},
	}
	s := newTestSession(t, cards, model.ModeClassic, model.DifficultyFirstName, false)

	if out, _ := s.SubmitGuess("Jane"); out.Feedback != FeedbackCorrect {
		t.Fatalf("card 1 should be correct")
	}
	if !s.Advance() {
		t.Fatalf("advance after correct answer")
	}

	if out, _ := s.SubmitGuess("wrong"); out.Feedback != FeedbackIncorrect {
		t.Fatalf("card 2 should be incorrect")
	}
	if s.Advance() {
		t.Fatalf("gate must block card 2 advance")
	}
	s.SetCorrectionInput("John")
	if !s.Advance() {
		t.Fatalf("gate should pass after retyping")
	}

	out, _ := s.SubmitGuess("ana")
	if !out.Completed {
		t.Fatalf("session should complete on the third submission")
	}
	correct, total := s.Stats()
	if correct != 2 || total != 3 {
		t.Fatalf("stats = %d/%d, want 2/3", correct, total)
	}
	if s.Accuracy() != 67 {
		t.Fatalf("accuracy = %d, want 67", s.Accuracy())
	}
	if !s.Complete() {
		t.Fatalf("session should report complete")
	}
}

func TestRocketCrashEndToEnd(t *testing.T) {
	s := newTestSession(t, testCards(5), model.ModeRocket, model.DifficultyFirstName, false)
	alt := s.Altitude()
	if alt == nil {
		t.Fatalf("rocket mode must own an altitude model")
	}
	if alt.Actual() != StartAltitude {
		t.Fatalf("starting altitude = %v, want %v", alt.Actual(), StartAltitude)
	}

	want := []float64{35, 20, 5}
	for i, w := range want {
		out, ok := s.SubmitGuess("wrong")
		if !ok {
			t.Fatalf("miss %d rejected", i+1)
		}
		if out.Crashed {
			t.Fatalf("miss %d should not crash yet", i+1)
		}
		if alt.Actual() != w {
			t.Fatalf("altitude after miss %d = %v, want %v", i+1, alt.Actual(), w)
		}
		if !s.Advance() {
			t.Fatalf("rocket mode has no correction gate")
		}
	}

	out, _ := s.SubmitGuess("wrong")
	if !out.Crashed || !out.Completed {
		t.Fatalf("fourth miss should crash and complete, got %+v", out)
	}
	if alt.Actual() != 0 || !alt.Crashed() {
		t.Fatalf("altitude should sit at 0 crashed, got %v", alt.Actual())
	}
	_, total := s.Stats()
	if total >= s.Len() {
		t.Fatalf("crash completion must not require exhausting the cards")
	}
	if !s.Crashed() {
		t.Fatalf("session should report the crash")
	}
}

func TestRocketCorrectAutoAdvances(t *testing.T) {
	s := newTestSession(t, testCards(3), model.ModeRocket, model.DifficultyFirstName, false)
	before := s.Altitude().Actual()
	out, _ := s.SubmitGuess(s.CorrectionTarget())
	if !out.AutoAdvance {
		t.Fatalf("correct rocket answer should schedule auto-advance")
	}
	if s.Phase() != PhaseAutoAdvancing {
		t.Fatalf("phase = %v, want auto-advancing", s.Phase())
	}
	if s.Altitude().Actual() <= before {
		t.Fatalf("boost should raise altitude above %v", before)
	}
	if !s.Altitude().Boosting() {
		t.Fatalf("flame should be showing right after a boost")
	}
	if !s.AutoAdvance() {
		t.Fatalf("scheduled advance should fire")
	}
	if s.AutoAdvance() {
		t.Fatalf("a stale timer must not double-advance")
	}
	if s.Position() != 2 {
		t.Fatalf("cursor should have moved exactly once")
	}
}

func TestRocketGravityPausesDuringFeedback(t *testing.T) {
	s := newTestSession(t, testCards(3), model.ModeRocket, model.DifficultyFirstName, false)
	s.SubmitGuess("wrong")
	before := s.Altitude().Actual()
	s.Tick(0.05)
	if s.Altitude().Actual() != before {
		t.Fatalf("gravity must pause while the answer is showing")
	}
}

func TestRocketGravityCrashCompletes(t *testing.T) {
	s := newTestSession(t, testCards(3), model.ModeRocket, model.DifficultyFirstName, false)
	crashes := 0
	for i := 0; i < 5000 && !s.Complete(); i++ {
		if s.Tick(0.016) {
			crashes++
		}
	}
	if crashes != 1 {
		t.Fatalf("crash fired %d times, want exactly once", crashes)
	}
	if !s.Complete() || !s.Crashed() {
		t.Fatalf("gravity crash should complete the session")
	}
}

func TestTimedClockStartsOnFirstGuess(t *testing.T) {
	s := newTestSession(t, testCards(2), model.ModeTimed, model.DifficultyFirstName, false)
	base := time.Unix(100, 0)
	clock := base
	s.now = func() time.Time { return clock }

	if s.Elapsed() != 0 {
		t.Fatalf("clock must not run before the first guess")
	}
	s.SubmitGuess("wrong")
	clock = base.Add(3 * time.Second)
	if s.Elapsed() != 3*time.Second {
		t.Fatalf("elapsed = %v, want 3s", s.Elapsed())
	}
	s.Advance()
	s.SubmitGuess("wrong")
	s.Advance() // completes
	frozen := s.Elapsed()
	clock = base.Add(time.Hour)
	if s.Elapsed() != frozen {
		t.Fatalf("elapsed must freeze at completion: %v != %v", s.Elapsed(), frozen)
	}
}

func TestModeSwitchRestarts(t *testing.T) {
	s := newTestSession(t, testCards(3), model.ModeClassic, model.DifficultyFirstName, false)
	s.SubmitGuess("wrong")
	s.SkipCorrection()
	s.SetMode(model.ModeRocket)
	correct, total := s.Stats()
	if correct != 0 || total != 0 {
		t.Fatalf("mode switch must reset stats, got %d/%d", correct, total)
	}
	if s.Altitude() == nil || s.Altitude().Actual() != StartAltitude {
		t.Fatalf("mode switch to rocket should create a fresh altitude model")
	}
	s.SetMode(model.ModeClassic)
	if s.Altitude() != nil {
		t.Fatalf("altitude model must be discarded outside rocket mode")
	}
}

func TestAccuracyAndTiers(t *testing.T) {
	tests := []struct {
		correct, total int
		accuracy       int
		tier           Tier
	}{
		{0, 0, 0, TierDefault},
		{3, 3, 100, TierPerfect},
		{4, 5, 80, TierGreat},
		{2, 3, 67, TierGood},
		{1, 2, 50, TierDefault},
	}
	for _, tt := range tests {
		s := newTestSession(t, testCards(1), model.ModeClassic, model.DifficultyFirstName, false)
		s.correct = tt.correct
		s.total = tt.total
		if got := s.Accuracy(); got != tt.accuracy {
			t.Errorf("accuracy(%d/%d) = %d, want %d", tt.correct, tt.total, got, tt.accuracy)
		}
		if got := s.ResultTier(); got != tt.tier {
			t.Errorf("tier(%d/%d) = %v, want %v", tt.correct, tt.total, got, tt.tier)
		}
	}
}

func TestDifficultySwitchMidSession(t *testing.T) {
	cards := []model.Card{{ID: "jane", Name: "Jane Doe", Photo: "x.png"}, {ID: "john", Name: "John Smith", Photo: "x.png"}}
	s := newTestSession(t, cards, model.ModeTimed, model.DifficultyFirstName, false)
	s.SubmitGuess("jane")
	s.Advance()
	s.SetDifficulty(model.DifficultyFullName)
	if out, _ := s.SubmitGuess("john"); out.Feedback != FeedbackIncorrect {
		t.Fatalf("full-name difficulty should require the full name")
	}
	correct, total := s.Stats()
	if correct != 1 || total != 2 {
		t.Fatalf("difficulty switch must keep progress, got %d/%d", correct, total)
	}
}

func TestFirstName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jane Doe", "Jane"},
		{"Cher", "Cher"},
		{"Mary Jane Watson", "Mary"},
	}
	for _, tt := range tests {
		if got := firstName(tt.in); got != tt.want {
			t.Errorf("firstName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShuffleKeepsProgress(t *testing.T) {
	s := newTestSession(t, testCards(3), model.ModeClassic, model.DifficultyFirstName, false)
	s.SubmitGuess("jane")
	s.Advance()

	s.Shuffle()
	correct, total := s.Stats()
	if correct != 1 || total != 1 {
		t.Fatalf("shuffle must keep stats, got %d/%d, want 1/1", correct, total)
	}
	if s.Phase() != PhaseAwaitingGuess || s.Position() != 1 {
		t.Fatalf("shuffle should restart the pass at card 1 awaiting a guess")
	}
	got := append([]int(nil), s.order...)
	sort.Ints(got)
	for i, v := range got {
		if v != i {
			t.Fatalf("shuffled order is not a permutation: %v", s.order)
		}
	}
}

func TestShuffleKeepsTimedClock(t *testing.T) {
	s := newTestSession(t, testCards(2), model.ModeTimed, model.DifficultyFirstName, false)
	base := time.Unix(100, 0)
	clock := base
	s.now = func() time.Time { return clock }

	s.SubmitGuess("jane")
	s.Advance()
	s.Shuffle()
	clock = base.Add(5 * time.Second)
	if !s.Started() || s.Elapsed() != 5*time.Second {
		t.Fatalf("shuffle must not reset the clock, elapsed = %v", s.Elapsed())
	}
}

func TestShuffleKeepsAltitude(t *testing.T) {
	s := newTestSession(t, testCards(3), model.ModeRocket, model.DifficultyFirstName, false)
	s.SubmitGuess("wrong")
	alt := s.Altitude()
	if alt.Actual() != StartAltitude-PenaltyAmount {
		t.Fatalf("altitude = %v after one miss", alt.Actual())
	}

	s.Shuffle()
	if s.Altitude() != alt || s.Altitude().Actual() != StartAltitude-PenaltyAmount {
		t.Fatalf("shuffle must keep the altitude model and its value")
	}
}

func TestShuffleAfterCompletionIsNoOp(t *testing.T) {
	s := newTestSession(t, testCards(1), model.ModeClassic, model.DifficultyFirstName, false)
	s.SubmitGuess("jane")
	if !s.Complete() {
		t.Fatalf("session should be complete")
	}
	s.Shuffle()
	if !s.Complete() {
		t.Fatalf("shuffle must not resurrect a completed session")
	}
	correct, total := s.Stats()
	if correct != 1 || total != 1 {
		t.Fatalf("stats changed after completion, got %d/%d", correct, total)
	}
}
