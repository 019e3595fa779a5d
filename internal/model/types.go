// Package model defines shared data structures.
package model

import "time"

// GameMode selects the practice variant.
type GameMode string

// Supported game modes.
const (
	ModeClassic GameMode = "classic"
	ModeTimed   GameMode = "timed"
	ModeRocket  GameMode = "rocket"
)

// ParseGameMode validates a mode string.
func ParseGameMode(s string) (GameMode, bool) {
	switch GameMode(s) {
	case ModeClassic, ModeTimed, ModeRocket:
		return GameMode(s), true
	}
	return "", false
}

// Difficulty selects the match target for a guess.
type Difficulty string

// Supported difficulties.
const (
	DifficultyFirstName Difficulty = "first"
	DifficultyFullName  Difficulty = "full"
)

// ParseDifficulty validates a difficulty string.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case DifficultyFirstName, DifficultyFullName:
		return Difficulty(s), true
	}
	return "", false
}

// Card is one person to be recalled.
type Card struct {
	ID        string
	Name      string
	Nicknames []string
	Photo     string
	Mnemonic  string
}

// Deck is a named collection of cards loaded from a deck file.
type Deck struct {
	Name  string
	Path  string
	Cards []Card
}

// Config defines practice settings.
type Config struct {
	Deck       string
	Mode       GameMode
	Difficulty Difficulty
	Shuffle    bool
}

// SessionRecord captures a completed practice session.
type SessionRecord struct {
	ID         int64
	Deck       string
	Mode       GameMode
	Difficulty Difficulty
	Correct    int
	Total      int
	DurationMs int64
	Crashed    bool
	EndedAt    time.Time
}

// RankInfo describes where a session landed on the leaderboard.
type RankInfo struct {
	Rank         int
	OfTotal      int
	PersonalBest bool
}

// ScoresConfig defines filters for score output.
type ScoresConfig struct {
	Deck  string
	Mode  string
	Since *time.Time
	Last  int
}
