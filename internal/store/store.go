// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/facecards/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history, the leaderboard, and
// mnemonic edits.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			deck TEXT NOT NULL,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			crashed INTEGER NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS mnemonic_edits (
			id INTEGER PRIMARY KEY,
			deck TEXT NOT NULL,
			card_id TEXT NOT NULL,
			text TEXT NOT NULL,
			edited_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_deck_mode ON sessions(deck, mode);`,
		`CREATE INDEX IF NOT EXISTS idx_mnemonic_edits_deck ON mnemonic_edits(deck, card_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a completed session and returns where it landed on
// the leaderboard for its deck and mode.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (model.RankInfo, error) {
	crashed := 0
	if rec.Crashed {
		crashed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (deck, mode, difficulty, correct, total, duration_ms, crashed, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Deck,
		string(rec.Mode),
		string(rec.Difficulty),
		rec.Correct,
		rec.Total,
		rec.DurationMs,
		crashed,
		rec.EndedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.RankInfo{}, err
	}
	return s.rankOf(ctx, rec)
}

// rankOf ranks a session among its deck+mode peers: higher accuracy wins,
// shorter duration breaks ties.
func (s *Store) rankOf(ctx context.Context, rec model.SessionRecord) (model.RankInfo, error) {
	accuracy := recordAccuracy(rec.Correct, rec.Total)

	var better, total int
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(CASE WHEN (CAST(correct AS REAL) / MAX(total, 1)) > ?
				OR ((CAST(correct AS REAL) / MAX(total, 1)) = ? AND duration_ms > 0 AND (? <= 0 OR duration_ms < ?))
				THEN 1 END),
			COUNT(*)
		 FROM sessions WHERE deck = ? AND mode = ?`,
		accuracy, accuracy, rec.DurationMs, rec.DurationMs,
		rec.Deck, string(rec.Mode),
	).Scan(&better, &total)
	if err != nil {
		return model.RankInfo{}, err
	}
	return model.RankInfo{
		Rank:         better + 1,
		OfTotal:      total,
		PersonalBest: better == 0,
	}, nil
}

func recordAccuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// ListSessions returns session records filtered by the scores config,
// oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.ScoresConfig) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Deck != "" {
		clauses = append(clauses, "deck = ?")
		args = append(args, cfg.Deck)
	}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, deck, mode, difficulty, correct, total, duration_ms, crashed, ended_at
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	return records, nil
}

// TopScores returns the leaderboard for a deck and mode: best accuracy
// first, faster time breaking ties.
func (s *Store) TopScores(ctx context.Context, deck, mode string, limit int) ([]model.SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	clauses := []string{"1=1"}
	args := []any{}
	if deck != "" {
		clauses = append(clauses, "deck = ?")
		args = append(args, deck)
	}
	if mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, mode)
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id, deck, mode, difficulty, correct, total, duration_ms, crashed, ended_at
		FROM sessions
		WHERE %s
		ORDER BY (CAST(correct AS REAL) / MAX(total, 1)) DESC,
			CASE WHEN duration_ms > 0 THEN duration_ms ELSE 9223372036854775807 END ASC,
			ended_at ASC
		LIMIT ?`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanSession(rows *sql.Rows) (model.SessionRecord, error) {
	var rec model.SessionRecord
	var mode, difficulty, endedAt string
	var crashed int
	if err := rows.Scan(&rec.ID, &rec.Deck, &mode, &difficulty, &rec.Correct, &rec.Total, &rec.DurationMs, &crashed, &endedAt); err != nil {
		return model.SessionRecord{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, endedAt)
	if err != nil {
		return model.SessionRecord{}, err
	}
	rec.Mode = model.GameMode(mode)
	rec.Difficulty = model.Difficulty(difficulty)
	rec.Crashed = crashed != 0
	rec.EndedAt = parsed
	return rec, nil
}

// SaveMnemonic records a mnemonic edit for a card. The latest edit wins
// when overlaying a deck.
func (s *Store) SaveMnemonic(ctx context.Context, deck, cardID, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mnemonic_edits (deck, card_id, text, edited_at) VALUES (?, ?, ?, ?)`,
		deck, cardID, text, time.Now().Format(time.RFC3339Nano))
	return err
}

// MnemonicOverlay returns the newest saved mnemonic per card for a deck.
func (s *Store) MnemonicOverlay(ctx context.Context, deck string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id, text FROM mnemonic_edits
		 WHERE deck = ?
		 ORDER BY edited_at ASC, id ASC`, deck)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	overlay := map[string]string{}
	for rows.Next() {
		var cardID, text string
		if err := rows.Scan(&cardID, &text); err != nil {
			return nil, err
		}
		overlay[cardID] = text
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overlay, nil
}
