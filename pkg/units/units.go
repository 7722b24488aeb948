// Package units converts between physical print units and raster pixels.
//
// Badges are specified in inches (or millimeters for display) at a given
// print resolution. Every component that turns a [PrintSettings] into
// pixels calls [Normalize] first, so partial or malformed settings coming
// from stored configurations never reach the renderer.
//
// # Conversions
//
// All conversion helpers return 0 for zero, negative, NaN or infinite
// inputs instead of propagating garbage:
//
//	px := units.InchesToPx(3.5, 300)  // 1050
//	in := units.PxToInches(1050, 300) // 3.5
package units

import (
	"fmt"
	"math"
)

const (
	// DefaultDPI is the print resolution used when none is configured.
	DefaultDPI = 300

	// MillimetersPerInch is the exact millimeter length of one inch.
	MillimetersPerInch = 25.4

	// PointsPerInch is the PDF user-space resolution.
	PointsPerInch = 72
)

// Unit is the display unit for badge dimensions.
type Unit string

const (
	Inches      Unit = "in"
	Millimeters Unit = "mm"
)

// Valid reports whether u is a known display unit.
func (u Unit) Valid() bool {
	return u == Inches || u == Millimeters
}

// PrintSettings describes the physical badge size. Dimensions are always
// stored in inches; Units only controls how they are displayed.
type PrintSettings struct {
	WidthInches  float64 `json:"widthInches,omitempty" yaml:"widthInches,omitempty" toml:"width_inches"`
	HeightInches float64 `json:"heightInches,omitempty" yaml:"heightInches,omitempty" toml:"height_inches"`
	DPI          float64 `json:"dpi,omitempty" yaml:"dpi,omitempty" toml:"dpi"`
	BleedInches  float64 `json:"bleedInches,omitempty" yaml:"bleedInches,omitempty" toml:"bleed_inches"`
	Units        Unit    `json:"units,omitempty" yaml:"units,omitempty" toml:"units"`
}

// Default returns the settings used when nothing is configured: a 3.5x2in
// card at 300 DPI without bleed.
func Default() PrintSettings {
	return PrintSettings{
		WidthInches:  3.5,
		HeightInches: 2,
		DPI:          DefaultDPI,
		BleedInches:  0,
		Units:        Inches,
	}
}

// Normalize merges s over [Default] field by field. Missing, non-positive,
// NaN or infinite dimensions and DPI take the default; a negative or
// non-finite bleed becomes 0. Normalize(nil) returns Default().
// Normalize is idempotent.
func Normalize(s *PrintSettings) PrintSettings {
	out := Default()
	if s == nil {
		return out
	}
	if positive(s.WidthInches) {
		out.WidthInches = s.WidthInches
	}
	if positive(s.HeightInches) {
		out.HeightInches = s.HeightInches
	}
	if positive(s.DPI) {
		out.DPI = s.DPI
	}
	if finite(s.BleedInches) && s.BleedInches > 0 {
		out.BleedInches = s.BleedInches
	}
	if s.Units.Valid() {
		out.Units = s.Units
	}
	return out
}

// FromMillimeters builds settings from millimeter dimensions. The result
// still stores inches but displays in millimeters.
func FromMillimeters(widthMm, heightMm, bleedMm, dpi float64) PrintSettings {
	return Normalize(&PrintSettings{
		WidthInches:  MmToInches(widthMm),
		HeightInches: MmToInches(heightMm),
		DPI:          dpi,
		BleedInches:  MmToInches(bleedMm),
		Units:        Millimeters,
	})
}

// InchesToPx converts inches to pixels at dpi.
func InchesToPx(v, dpi float64) float64 {
	if !positive(v) || !positive(dpi) {
		return 0
	}
	return v * dpi
}

// MmToPx converts millimeters to pixels at dpi.
func MmToPx(v, dpi float64) float64 {
	if !positive(v) || !positive(dpi) {
		return 0
	}
	return v / MillimetersPerInch * dpi
}

// PxToInches converts pixels to inches at dpi.
func PxToInches(px, dpi float64) float64 {
	if !positive(px) || !positive(dpi) {
		return 0
	}
	return px / dpi
}

// PxToMm converts pixels to millimeters at dpi.
func PxToMm(px, dpi float64) float64 {
	if !positive(px) || !positive(dpi) {
		return 0
	}
	return px / dpi * MillimetersPerInch
}

// MmToInches converts millimeters to inches.
func MmToInches(v float64) float64 {
	if !positive(v) {
		return 0
	}
	return v / MillimetersPerInch
}

// InchesToPoints converts inches to PDF points.
func InchesToPoints(v float64) float64 {
	if !positive(v) {
		return 0
	}
	return v * PointsPerInch
}

// Pixels returns the rounded content size and the bleed in pixels. The
// bleed stays fractional so that content plus both bleeds rounds to the
// same total as the physical page.
func (s PrintSettings) Pixels() (width, height int, bleed float64) {
	n := Normalize(&s)
	return roundPx(InchesToPx(n.WidthInches, n.DPI)),
		roundPx(InchesToPx(n.HeightInches, n.DPI)),
		InchesToPx(n.BleedInches, n.DPI)
}

// TotalPixels returns the full surface size including bleed on both sides.
func (s PrintSettings) TotalPixels() (width, height int) {
	w, h, b := s.Pixels()
	return roundPx(float64(w) + 2*b), roundPx(float64(h) + 2*b)
}

// Display formats the badge dimensions in the configured unit,
// e.g. "3.50 × 2.00 in" or "88.9 × 50.8 mm".
func (s PrintSettings) Display() string {
	n := Normalize(&s)
	if n.Units == Millimeters {
		return fmt.Sprintf("%.1f × %.1f mm",
			n.WidthInches*MillimetersPerInch, n.HeightInches*MillimetersPerInch)
	}
	return fmt.Sprintf("%.2f × %.2f in", n.WidthInches, n.HeightInches)
}

func roundPx(v float64) int {
	return int(math.Round(v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
