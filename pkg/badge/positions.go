package badge

import "math"

// Range limits for persisted positions.
const (
	MinPercent     = 0
	MaxPercent     = 100
	MinBoxWidth    = 5
	MaxBoxWidth    = 100
	MinFontSize    = 1
	MaxFontSize    = 20
	DefaultSnapGap = 2.0
)

// ElementPosition places one element. X and Y are the center in percent of
// the content box. Width applies to box elements and FontSize to text
// elements, both in percent; zero means unset. Height is a legacy field
// kept for round-tripping and is ignored when rendering.
type ElementPosition struct {
	X         float64   `json:"x" yaml:"x"`
	Y         float64   `json:"y" yaml:"y"`
	Width     float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Height    float64   `json:"height,omitempty" yaml:"height,omitempty"`
	FontSize  float64   `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	TextAlign TextAlign `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`
}

// Positions maps elements to their placement.
type Positions map[ElementKey]ElementPosition

// DefaultPositions returns the built-in placement used when custom
// positions are disabled.
func DefaultPositions() Positions {
	return Positions{
		ElementPhoto:     {X: 50, Y: 20, Width: 30},
		ElementName:      {X: 50, Y: 55},
		ElementEventName: {X: 50, Y: 62},
		ElementDateTime:  {X: 50, Y: 68},
		ElementAlbumCode: {X: 50, Y: 75},
		ElementQRCode:    {X: 50, Y: 88, Width: 15},
	}
}

// Clone returns a deep copy of p. Clone(nil) returns nil.
func (p Positions) Clone() Positions {
	if p == nil {
		return nil
	}
	out := make(Positions, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Get returns the position for k, falling back to the default entry when
// p has none.
func (p Positions) Get(k ElementKey) ElementPosition {
	if pos, ok := p[k]; ok {
		return pos
	}
	return DefaultPositions()[k]
}

// Equal reports whether p and o hold the same entries.
func (p Positions) Equal(o Positions) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		w, ok := o[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// Clamped returns a copy of p with every entry clamped for its element.
func (p Positions) Clamped() Positions {
	out := make(Positions, len(p))
	for k, v := range p {
		out[k] = v.Clamp(k)
	}
	return out
}

// Clamp limits pos to the valid ranges for element k. Unset sizes stay
// unset.
func (pos ElementPosition) Clamp(k ElementKey) ElementPosition {
	pos.X = clamp(pos.X, MinPercent, MaxPercent)
	pos.Y = clamp(pos.Y, MinPercent, MaxPercent)
	if pos.Height != 0 {
		pos.Height = clamp(pos.Height, MinPercent, MaxPercent)
	}
	if k.IsBox() && pos.Width != 0 {
		pos.Width = clamp(pos.Width, MinBoxWidth, MaxBoxWidth)
	}
	if k.IsText() && pos.FontSize != 0 {
		pos.FontSize = clamp(pos.FontSize, MinFontSize, MaxFontSize)
	}
	return pos
}

// Snap rounds X, Y, Width and Height of every entry to the nearest
// multiple of step. A non-positive step uses DefaultSnapGap.
func Snap(p Positions, step float64) Positions {
	if step <= 0 {
		step = DefaultSnapGap
	}
	out := make(Positions, len(p))
	for k, v := range p {
		v.X = snap(v.X, step)
		v.Y = snap(v.Y, step)
		v.Width = snap(v.Width, step)
		v.Height = snap(v.Height, step)
		out[k] = v
	}
	return out
}

func snap(v, step float64) float64 {
	return math.Round(v/step) * step
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
