// Package photo renders card photos as terminal half-block art.
package photo

import (
	"fmt"
	"image"
	"os"
	"strings"

	// Decoders for the photo formats decks are expected to carry.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/lipgloss"
)

// Art is a rendered photo: one string per terminal row, each cell a
// half-block with the top pixel as foreground and the bottom as
// background.
type Art struct {
	Cols  int
	Rows  int
	Lines []string
}

// Render joins the art into a single block string.
func (a Art) Render() string {
	return strings.Join(a.Lines, "\n")
}

// Load decodes and downsamples an image into cols x rows terminal cells.
// Callers run this from a background command; an error means the view
// should keep its placeholder.
func Load(path string, cols, rows int) (Art, error) {
	if cols <= 0 || rows <= 0 {
		return Art{}, fmt.Errorf("invalid photo size %dx%d", cols, rows)
	}
	f, err := os.Open(path)
	if err != nil {
		return Art{}, fmt.Errorf("failed to open photo: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return Art{}, fmt.Errorf("failed to decode photo: %w", err)
	}
	return fromImage(img, cols, rows), nil
}

func fromImage(img image.Image, cols, rows int) Art {
	// Two pixels per cell: the upper half block splits each terminal row.
	pxRows := rows * 2
	samples := resample(img, cols, pxRows)

	lines := make([]string, 0, rows)
	for y := 0; y < rows; y++ {
		var b strings.Builder
		for x := 0; x < cols; x++ {
			top := samples[y*2][x]
			bottom := samples[y*2+1][x]
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top))).
				Background(lipgloss.Color(hexColor(bottom)))
			b.WriteString(style.Render("▀"))
		}
		lines = append(lines, b.String())
	}
	return Art{Cols: cols, Rows: rows, Lines: lines}
}

type rgb struct {
	r, g, b uint32
}

func hexColor(c rgb) string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(c.r>>8), uint8(c.g>>8), uint8(c.b>>8))
}

// resample box-averages the source into a w x h grid.
func resample(img image.Image, w, h int) [][]rgb {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	out := make([][]rgb, h)
	for y := 0; y < h; y++ {
		out[y] = make([]rgb, w)
		y0 := bounds.Min.Y + y*srcH/h
		y1 := bounds.Min.Y + (y+1)*srcH/h
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for x := 0; x < w; x++ {
			x0 := bounds.Min.X + x*srcW/w
			x1 := bounds.Min.X + (x+1)*srcW/w
			if x1 <= x0 {
				x1 = x0 + 1
			}
			var rSum, gSum, bSum, n uint64
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					r, g, b, _ := img.At(sx, sy).RGBA()
					rSum += uint64(r)
					gSum += uint64(g)
					bSum += uint64(b)
					n++
				}
			}
			if n == 0 {
				n = 1
			}
			out[y][x] = rgb{uint32(rSum / n), uint32(gSum / n), uint32(bSum / n)}
		}
	}
	return out
}

var placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))

// Placeholder returns a neutral silhouette shown while a photo loads or
// when loading failed.
func Placeholder(cols, rows int) Art {
	if cols < 3 {
		cols = 3
	}
	if rows < 3 {
		rows = 3
	}
	headRow := rows / 3
	lines := make([]string, 0, rows)
	for y := 0; y < rows; y++ {
		var b strings.Builder
		for x := 0; x < cols; x++ {
			ch := ' '
			switch {
			case y == headRow && x == cols/2:
				ch = '◯'
			case y > rows/2 && x >= cols/4 && x < cols-cols/4:
				ch = '▒'
			}
			b.WriteRune(ch)
		}
		lines = append(lines, placeholderStyle.Render(b.String()))
	}
	return Art{Cols: cols, Rows: rows, Lines: lines}
}
