package score

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/facecards/internal/model"
)

const fallbackTermWidth = 80

// TerminalWidth reports the width available for plain output.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallbackTermWidth
	}
	return w
}

// RenderSummary prints aggregate numbers for the given sessions.
func RenderSummary(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	var accSum float64
	best := 0
	crashes := 0
	for _, rec := range records {
		acc := AccuracyPercent(rec.Correct, rec.Total)
		accSum += float64(acc)
		if acc > best {
			best = acc
		}
		if rec.Crashed {
			crashes++
		}
	}
	count := len(records)
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg accuracy: %.1f%%\n", accSum/float64(count)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best accuracy: %d%%\n", best); err != nil {
		return err
	}
	if crashes > 0 {
		if _, err := fmt.Fprintf(w, "Rocket crashes: %d\n", crashes); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderLeaderboard prints ranked sessions as a table.
func RenderLeaderboard(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "Leaderboard is empty.")
		return err
	}
	headers := []string{"#", "Deck", "Mode", "Score", "Accuracy", "Time", "When"}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		elapsed := "-"
		if rec.DurationMs > 0 {
			elapsed = FormatElapsed(rec.DurationMs)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			rec.Deck,
			string(rec.Mode),
			fmt.Sprintf("%d/%d", rec.Correct, rec.Total),
			fmt.Sprintf("%d%%", AccuracyPercent(rec.Correct, rec.Total)),
			elapsed,
			rec.EndedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	for _, line := range FormatTable(headers, rows, map[int]bool{0: true, 3: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistory prints an accuracy sparkline over past sessions, scaled to
// the given width.
func RenderHistory(w io.Writer, records []model.SessionRecord, width int) error {
	if len(records) == 0 {
		return nil
	}
	series := AccuracySeries(records)
	if width > 0 && len(series) > width {
		series = series[len(series)-width:]
	}
	if _, err := fmt.Fprintf(w, "Accuracy (last %d sessions)\n", len(series)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Sparkline(series))
	return err
}

// FormatTable lays out rows under headers with aligned columns separated
// by two spaces.
func FormatTable(headers []string, rows [][]string, rightAlign map[int]bool) []string {
	cols := len(headers)
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i := 0; i < cols && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	render := func(row []string) string {
		var b strings.Builder
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			pad := widths[i] - runewidth.StringWidth(cell)
			if pad < 0 {
				pad = 0
			}
			if rightAlign[i] {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				if i < cols-1 {
					b.WriteString(strings.Repeat(" ", pad))
				}
			}
		}
		return b.String()
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, render(headers))
	for _, row := range rows {
		lines = append(lines, render(row))
	}
	return lines
}
