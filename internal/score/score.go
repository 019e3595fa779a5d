// Package score contains scoring calculations and reporting.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/facecards/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns the fraction of correct answers in [0, 1].
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// AccuracyPercent returns the rounded whole-number percentage.
func AccuracyPercent(correct, total int) int {
	return int(math.Round(Accuracy(correct, total) * 100))
}

// FormatElapsed renders a timed-mode duration as M:SS.t.
func FormatElapsed(durationMs int64) string {
	if durationMs < 0 {
		durationMs = 0
	}
	tenths := durationMs / 100
	minutes := tenths / 600
	seconds := (tenths / 10) % 60
	return fmt.Sprintf("%d:%02d.%d", minutes, seconds, tenths%10)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// AccuracySeries extracts per-session accuracy percentages, oldest first.
func AccuracySeries(records []model.SessionRecord) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = Accuracy(rec.Correct, rec.Total) * 100
	}
	return out
}
