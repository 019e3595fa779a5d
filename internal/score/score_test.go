package score

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/facecards/internal/model"
)

func TestAccuracyPercent(t *testing.T) {
	tests := []struct {
		correct, total int
		want           int
	}{
		{0, 0, 0},
		{2, 3, 67},
		{4, 5, 80},
		{3, 3, 100},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := AccuracyPercent(tt.correct, tt.total); got != tt.want {
			t.Errorf("AccuracyPercent(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0:00.0"},
		{900, "0:00.9"},
		{1000, "0:01.0"},
		{59900, "0:59.9"},
		{60000, "1:00.0"},
		{83450, "1:23.4"},
		{600000, "10:00.0"},
		{-5, "0:00.0"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.ms); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5, 4.5}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("MovingAverage[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	line := Sparkline([]float64{5, 5, 5})
	if len(line) != 3 {
		t.Fatalf("expected 3 chars, got %q", line)
	}
	if line[0] != line[1] || line[1] != line[2] {
		t.Fatalf("flat series should render uniformly: %q", line)
	}
}

func TestRenderLeaderboard(t *testing.T) {
	records := []model.SessionRecord{
		{Deck: "office", Mode: model.ModeTimed, Correct: 9, Total: 10, DurationMs: 83450, EndedAt: time.Unix(0, 0)},
		{Deck: "office", Mode: model.ModeClassic, Correct: 5, Total: 10, EndedAt: time.Unix(60, 0)},
	}
	var buf bytes.Buffer
	if err := RenderLeaderboard(&buf, records); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "9/10") || !strings.Contains(out, "90%") {
		t.Fatalf("missing score columns:\n%s", out)
	}
	if !strings.Contains(out, "1:23.4") {
		t.Fatalf("missing formatted time:\n%s", out)
	}
}

func TestFormatTableAlignment(t *testing.T) {
	lines := FormatTable(
		[]string{"Name", "Score"},
		[][]string{{"Jane", "100"}, {"Li", "7"}},
		map[int]bool{1: true},
	)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "Jane    100" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	if lines[2] != "Li        7" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}
