// Package main provides the CLI entrypoint for facecards.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/facecards/internal/config"
	"github.com/verte-zerg/facecards/internal/deck"
	"github.com/verte-zerg/facecards/internal/model"
	"github.com/verte-zerg/facecards/internal/score"
	"github.com/verte-zerg/facecards/internal/scoresui"
	"github.com/verte-zerg/facecards/internal/store"
	"github.com/verte-zerg/facecards/internal/tui"
)

const (
	defaultDeck       = "coworkers"
	defaultMode       = "classic"
	defaultDifficulty = "first"
)

var (
	practiceDeck       string
	practiceMode       string
	practiceDifficulty string
	practiceShuffle    bool

	scoresDeck  string
	scoresMode  string
	scoresSince string
	scoresLast  int
	scoresPlain bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "facecards",
		Short:         "TUI name trainer for faces",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceDeck, "deck", defaultDeck, "deck name or path to a deck file")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "game mode (classic/timed/rocket)")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaultDifficulty, "match target (first/full)")
	rootCmd.Flags().BoolVar(&practiceShuffle, "shuffle", true, "shuffle card order")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDecksCmd())
	rootCmd.AddCommand(newScoresCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "deck", &practiceDeck, fileCfg.Practice.Deck)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyBoolConfig(cmd, "shuffle", &practiceShuffle, fileCfg.Practice.Shuffle)

	mode, ok := model.ParseGameMode(practiceMode)
	if !ok {
		return fmt.Errorf("unknown mode %q (expected classic, timed, or rocket)", practiceMode)
	}
	difficulty, ok := model.ParseDifficulty(practiceDifficulty)
	if !ok {
		return fmt.Errorf("unknown difficulty %q (expected first or full)", practiceDifficulty)
	}

	deckPath, err := resolveDeckPath(practiceDeck)
	if err != nil {
		return err
	}
	d, err := deck.Load(deckPath)
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logErrf("scores unavailable: %v\n", err)
		st = nil
	} else {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	cards := d.Cards
	if st != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		overlay, oerr := st.MnemonicOverlay(ctx, d.Name)
		cancel()
		if oerr != nil {
			logErrf("failed to load mnemonic edits: %v\n", oerr)
		} else {
			for i := range cards {
				if text, ok := overlay[cards[i].ID]; ok {
					cards[i].Mnemonic = text
				}
			}
		}
	}

	eligible := deck.Eligible(cards)
	if len(eligible) == 0 {
		return fmt.Errorf("deck %q has no cards with readable photos (checked %d cards)", d.Name, len(cards))
	}

	cfg := model.Config{
		Deck:       d.Name,
		Mode:       mode,
		Difficulty: difficulty,
		Shuffle:    practiceShuffle,
	}

	m, err := tui.NewModel(d.Name, eligible, cfg, st)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func resolveDeckPath(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasSuffix(name, ".toml") {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("deck file not found: %s", name)
		}
		return name, nil
	}
	path := config.DefaultDeckPath(name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat deck: %w", err)
	}
	return "", deckNotFoundError(name, path)
}

func deckNotFoundError(name, path string) error {
	lines := []string{
		fmt.Sprintf("deck %q not found", name),
		fmt.Sprintf("expected deck at: %s", path),
	}
	if names, err := deck.ListDir(config.DefaultDeckDir()); err == nil && len(names) > 0 {
		lines = append(lines, "Available decks: "+strings.Join(names, ", "))
	} else {
		lines = append(lines,
			fmt.Sprintf("Create one: mkdir -p %s and add a %s.toml deck file", config.DefaultDeckDir(), name),
			"Deck format: [[card]] blocks with name, photo, and optional nicknames/mnemonic")
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func newDecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List available decks",
		Args:  cobra.NoArgs,
		RunE:  runDecksCmd,
	}
}

func runDecksCmd(cmd *cobra.Command, _ []string) error {
	dir := config.DefaultDeckDir()
	names, err := deck.ListDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logErrf("No decks found. Add .toml deck files under %s\n", dir)
			return fmt.Errorf("deck directory does not exist")
		}
		return fmt.Errorf("failed to read deck directory: %w", err)
	}
	if len(names) == 0 {
		logErrf("No decks found. Add .toml deck files under %s\n", dir)
		return fmt.Errorf("no decks found")
	}
	for _, name := range names {
		d, lerr := deck.Load(config.DefaultDeckPath(name))
		if lerr != nil {
			if _, werr := fmt.Fprintf(cmd.OutOrStdout(), "%s (unreadable: %v)\n", name, lerr); werr != nil {
				return fmt.Errorf("failed to write output: %w", werr)
			}
			continue
		}
		eligible := deck.Eligible(d.Cards)
		if _, werr := fmt.Fprintf(cmd.OutOrStdout(), "%s (%d cards, %d with photos)\n", name, len(d.Cards), len(eligible)); werr != nil {
			return fmt.Errorf("failed to write output: %w", werr)
		}
	}
	return nil
}

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show session scores",
		Args:  cobra.NoArgs,
		RunE:  runScoresCmd,
	}
	cmd.Flags().StringVar(&scoresDeck, "deck", "", "deck filter")
	cmd.Flags().StringVar(&scoresMode, "mode", "", "mode filter (classic/timed/rocket)")
	cmd.Flags().StringVar(&scoresSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&scoresLast, "last", 0, "limit to last N sessions")
	cmd.Flags().BoolVar(&scoresPlain, "plain", false, "print to stdout instead of the TUI")
	return cmd
}

func runScoresCmd(_ *cobra.Command, _ []string) error {
	if scoresMode != "" {
		if _, ok := model.ParseGameMode(scoresMode); !ok {
			return fmt.Errorf("unknown mode %q (expected classic, timed, or rocket)", scoresMode)
		}
	}
	var sinceTime *time.Time
	if scoresSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", scoresSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if scoresLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	cfg := model.ScoresConfig{
		Deck:  scoresDeck,
		Mode:  scoresMode,
		Since: sinceTime,
		Last:  scoresLast,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if scoresPlain {
		return printScores(st, cfg)
	}

	m := scoresui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run scores TUI: %w", err)
	}
	return nil
}

func printScores(st *store.Store, cfg model.ScoresConfig) error {
	ctx := context.Background()
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if err := score.RenderSummary(os.Stdout, sessions); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	top, err := st.TopScores(ctx, cfg.Deck, cfg.Mode, 10)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if err := score.RenderLeaderboard(os.Stdout, top); err != nil {
		return fmt.Errorf("failed to write leaderboard: %w", err)
	}
	if err := score.RenderHistory(os.Stdout, sessions, score.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
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
	path := config.DefaultConfigPath()
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# facecards configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# deck = %q          # Deck name (file under the deck directory)
# mode = %q          # Game mode: classic, timed, or rocket
# difficulty = %q    # Match target: first or full
# shuffle = true     # Shuffle card order
`,
		defaultDeck,
		defaultMode,
		defaultDifficulty,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
