// Package printpage lays a coloring image out on a US-letter page for printing.
package printpage

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Page geometry in PostScript points (1/72 inch).
const (
	letterShortPt = 612
	letterLongPt  = 792
	marginPt      = 36
	pointsPerInch = 72

	// DefaultDPI is used when Compose is given a non-positive resolution.
	DefaultDPI = 150
)

// Page describes where an image lands on a letter page, in pixels.
type Page struct {
	Width     int
	Height    int
	Landscape bool
	Target    image.Rectangle
}

// Layout fits an imgW x imgH image inside the page margins, centered. The page
// turns landscape when the image is wider than it is tall.
func Layout(imgW, imgH, dpi int) Page {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	landscape := imgW > imgH
	wPt, hPt := letterShortPt, letterLongPt
	if landscape {
		wPt, hPt = letterLongPt, letterShortPt
	}

	scale := float64(dpi) / pointsPerInch
	page := Page{
		Width:     int(math.Round(float64(wPt) * scale)),
		Height:    int(math.Round(float64(hPt) * scale)),
		Landscape: landscape,
	}
	if imgW <= 0 || imgH <= 0 {
		return page
	}

	margin := float64(marginPt) * scale
	availW := float64(page.Width) - 2*margin
	availH := float64(page.Height) - 2*margin
	fit := math.Min(availW/float64(imgW), availH/float64(imgH))
	drawW := int(math.Round(float64(imgW) * fit))
	drawH := int(math.Round(float64(imgH) * fit))
	left := int(math.Round(margin + (availW-float64(drawW))/2))
	top := int(math.Round(margin + (availH-float64(drawH))/2))
	page.Target = image.Rect(left, top, left+drawW, top+drawH)
	return page
}

// Compose paints img onto a white letter page at dpi. Transparent regions come
// out white.
func Compose(img image.Image, dpi int) *image.NRGBA {
	b := img.Bounds()
	page := Layout(b.Dx(), b.Dy(), dpi)
	canvas := imaging.New(page.Width, page.Height, color.White)
	if page.Target.Empty() {
		return canvas
	}
	scaled := imaging.Resize(img, page.Target.Dx(), page.Target.Dy(), imaging.Lanczos)
	return imaging.Overlay(canvas, scaled, page.Target.Min, 1.0)
}

// Save writes page to path; the format follows the file extension.
func Save(page image.Image, path string) error {
	if err := imaging.Save(page, path); err != nil {
		return fmt.Errorf("save print page: %w", err)
	}
	return nil
}
