// Package layout maps percentage positions onto badge pixels.
//
// A [Frame] is built once per render from normalized print settings. All
// drawing code goes through it, so no other component computes absolute
// pixel coordinates on its own:
//
//	f := layout.NewFrame(cfg.PrintSettings())
//	x, y := f.X(pos.X), f.Y(pos.Y)
//
// Percentages always refer to the content box. The surface is larger by
// the bleed on every side, and every mapped coordinate is shifted by it.
package layout

import (
	"math"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/units"
)

// Frame is the pixel geometry of one badge surface.
type Frame struct {
	WidthPx  float64 // content width
	HeightPx float64 // content height
	BleedPx  float64 // bleed on each side
}

// NewFrame builds a frame from print settings. Settings are normalized
// first; content dimensions are rounded to whole pixels.
func NewFrame(s units.PrintSettings) Frame {
	w, h, b := s.Pixels()
	return Frame{WidthPx: float64(w), HeightPx: float64(h), BleedPx: b}
}

// TotalWidth returns the surface width including bleed on both sides.
func (f Frame) TotalWidth() int {
	return int(math.Round(f.WidthPx + 2*f.BleedPx))
}

// TotalHeight returns the surface height including bleed on both sides.
func (f Frame) TotalHeight() int {
	return int(math.Round(f.HeightPx + 2*f.BleedPx))
}

// ToPx maps a percentage of total onto the surface. The percentage is
// clamped to [0,100], so the result always lies in
// [BleedPx, BleedPx+total].
func (f Frame) ToPx(pct, total float64) float64 {
	if math.IsNaN(pct) {
		pct = 0
	}
	pct = math.Max(0, math.Min(100, pct))
	return pct/100*total + f.BleedPx
}

// X maps a horizontal percentage of the content box.
func (f Frame) X(pct float64) float64 { return f.ToPx(pct, f.WidthPx) }

// Y maps a vertical percentage of the content box.
func (f Frame) Y(pct float64) float64 { return f.ToPx(pct, f.HeightPx) }

// Center returns the pixel center of pos.
func (f Frame) Center(pos badge.ElementPosition) (x, y float64) {
	return f.X(pos.X), f.Y(pos.Y)
}

// BoxSide returns the pixel side of a square box element whose width is
// widthPct of the content width.
func (f Frame) BoxSide(widthPct float64) float64 {
	return widthPct / 100 * f.WidthPx
}

// FontPx converts a font size in percent of content height to pixels.
func (f Frame) FontPx(pct float64) float64 {
	return pct / 100 * f.HeightPx
}

// DerivedHeightPercent returns the height, in percent of content height,
// of a square box that is widthPct of the content width.
func (f Frame) DerivedHeightPercent(widthPct float64) float64 {
	if f.HeightPx <= 0 {
		return 0
	}
	return widthPct * f.WidthPx / f.HeightPx
}

// Trim returns the content rectangle inside the bleed.
func (f Frame) Trim() (x, y, w, h float64) {
	return f.BleedPx, f.BleedPx, f.WidthPx, f.HeightPx
}

// Size tier fractions of the content width.
var (
	photoTiers = map[badge.Size]float64{
		badge.SizeSmall:  0.22,
		badge.SizeMedium: 0.30,
		badge.SizeLarge:  0.38,
	}
	qrTiers = map[badge.Size]float64{
		badge.SizeSmall:  0.14,
		badge.SizeMedium: 0.18,
		badge.SizeLarge:  0.22,
	}
)

// PhotoTier returns the photo width fraction for size s. Unknown sizes
// use the medium tier.
func PhotoTier(s badge.Size) float64 {
	if v, ok := photoTiers[s]; ok {
		return v
	}
	return photoTiers[badge.SizeMedium]
}

// QRTier returns the QR width fraction for size s. Unknown sizes use the
// medium tier.
func QRTier(s badge.Size) float64 {
	if v, ok := qrTiers[s]; ok {
		return v
	}
	return qrTiers[badge.SizeMedium]
}

// ElementSide returns the pixel side of box element k: the custom width
// when set, otherwise the tier size.
func (f Frame) ElementSide(cfg *badge.Configuration, k badge.ElementKey) float64 {
	if w := cfg.CustomWidth(k); w > 0 {
		return f.BoxSide(w)
	}
	switch k {
	case badge.ElementPhoto:
		return PhotoTier(cfg.PhotoPlacement.Size) * f.WidthPx
	case badge.ElementQRCode:
		return QRTier(cfg.QRCode.Size) * f.WidthPx
	}
	return 0
}

// EditorBox returns the nominal on-screen badge box used by the
// positioning editor for a layout.
func EditorBox(l badge.Layout) (w, h float64) {
	switch l {
	case badge.LayoutLandscape:
		return 400, 300
	case badge.LayoutSquare:
		return 350, 350
	default:
		return 300, 400
	}
}

// FitScale returns the factor that fits a box of size w×h into the
// available area, bounded to [0.4, 1.5].
func FitScale(w, h, availW, availH float64) float64 {
	if w <= 0 || h <= 0 || availW <= 0 || availH <= 0 {
		return 1
	}
	s := math.Min(availW/w, availH/h)
	return math.Max(0.4, math.Min(1.5, s))
}
