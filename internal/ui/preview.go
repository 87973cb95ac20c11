package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// renderPreview draws img into a cols x rows cell grid using upper half blocks:
// each cell shows two vertical pixels, the top as foreground and the bottom as
// background. Transparent areas are painted white like paper.
func renderPreview(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	// Terminal cells are roughly twice as tall as wide, and each cell holds two
	// pixel rows, so the pixel grid is cols x rows*2.
	thumb := imaging.Fit(img, cols, rows*2, imaging.Box)
	tw, th := thumb.Bounds().Dx(), thumb.Bounds().Dy()
	paper := imaging.New(tw, th, color.White)
	paper = imaging.Overlay(paper, thumb, image.Pt(0, 0), 1.0)

	var sb strings.Builder
	for y := 0; y < th; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < tw; x++ {
			top := paper.NRGBAAt(x, y)
			bottom := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if y+1 < th {
				bottom = paper.NRGBAAt(x, y+1)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top))).
				Background(lipgloss.Color(hexColor(bottom))).
				Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
