package ui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPreview_Dimensions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.Black)
		}
	}

	out := renderPreview(img, 20, 5)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, 10, strings.Count(lines[0], "▀"))
}

func TestRenderPreview_Empty(t *testing.T) {
	assert.Empty(t, renderPreview(nil, 10, 10))
	assert.Empty(t, renderPreview(image.NewNRGBA(image.Rect(0, 0, 4, 4)), 0, 10))
	assert.Empty(t, renderPreview(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 10, 10))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#ff8000", hexColor(color.NRGBA{R: 255, G: 128, B: 0, A: 255}))
}
