package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/facecards/internal/scene"
)

const (
	rocketPanelCols = 18
	rocketPanelRows = photoRows
)

var (
	starStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E8C"))
	rocketStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	flameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9F43"))
	cloudStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8CA0"))
)

// renderRocketPanel paints the rocket scene from the altitude model's
// smoothed value. Gameplay reads Actual; everything here reads Visual.
func (m *Model) renderRocketPanel() string {
	alt := m.session.Altitude()
	if alt == nil {
		return ""
	}
	visual := alt.Visual()

	grid := make([][]string, rocketPanelRows)
	for y := range grid {
		grid[y] = make([]string, rocketPanelCols)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	for _, star := range m.stars {
		row := scene.StarRow(star, visual, rocketPanelRows)
		col := scene.StarCol(star, rocketPanelCols)
		grid[row][col] = starStyle.Render(string(star.Glyph))
	}

	// Cloud band drifts in near the ground.
	if op := scene.CloudOpacity(visual); op > 0.3 {
		cloudRow := rocketPanelRows - 2
		for x := 1; x < rocketPanelCols-1; x += 3 {
			grid[cloudRow][x] = cloudStyle.Render("~")
		}
	}

	rocketRow := scene.RocketRow(visual, rocketPanelRows)
	rocketCol := rocketPanelCols / 2
	grid[rocketRow][rocketCol] = rocketStyle.Render("▲")
	if alt.Boosting() && rocketRow+1 < rocketPanelRows {
		grid[rocketRow+1][rocketCol] = flameStyle.Render("▼")
	}

	rows := make([]string, 0, rocketPanelRows+1)
	for _, line := range grid {
		rows = append(rows, strings.Join(line, ""))
	}

	readout := fmt.Sprintf("ALT %3.0f", alt.Actual())
	if scene.DangerFlash(visual, m.frame) {
		readout = dangerStyle.Render(readout + " ▼▼")
	} else {
		readout = footerStyle.Render(readout)
	}
	rows = append(rows, readout)

	r, g, b := scene.SkyColor(visual)
	sky := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
	return panelStyle.Background(sky).Render(strings.Join(rows, "\n"))
}
