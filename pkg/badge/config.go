package badge

import (
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/units"
)

// Configuration is the declarative badge design. The zero value renders
// with built-in defaults.
type Configuration struct {
	Layout             Layout               `json:"layout,omitempty"`
	Fields             Fields               `json:"fields"`
	TextStyle          TextStyle            `json:"textStyle"`
	PhotoPlacement     PhotoPlacement       `json:"photoPlacement"`
	QRCode             QRCode               `json:"qrCode"`
	BackgroundColor    string               `json:"backgroundColor,omitempty"`
	BackgroundURL      string               `json:"backgroundUrl,omitempty"`
	UseCustomPositions bool                 `json:"useCustomPositions,omitempty"`
	CustomPositions    Positions            `json:"customPositions,omitempty"`
	Print              *units.PrintSettings `json:"print,omitempty"`
	LayoutTemplateID   string               `json:"layoutTemplateId,omitempty"`
}

// DefaultConfiguration returns the configuration a new badge design
// starts from.
func DefaultConfiguration() Configuration {
	return Configuration{
		Layout: LayoutPortrait,
		Fields: Fields{
			ShowName:      true,
			ShowEventName: true,
			ShowDateTime:  true,
			ShowAlbumCode: true,
		},
		PhotoPlacement:  PhotoPlacement{Size: SizeMedium, Shape: ShapeCircle},
		QRCode:          QRCode{Enabled: true, Size: SizeMedium},
		BackgroundColor: "#1e293b",
	}
}

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	c.CustomPositions = c.CustomPositions.Clone()
	if c.Print != nil {
		p := *c.Print
		c.Print = &p
	}
	return c
}

// ActivePositions returns the positions the renderer should use: the
// custom map when enabled, otherwise the defaults. Missing entries of a
// custom map are resolved by [Positions.Get].
func (c *Configuration) ActivePositions() Positions {
	if c.UseCustomPositions && len(c.CustomPositions) > 0 {
		return c.CustomPositions
	}
	return DefaultPositions()
}

// PositionFor returns the active position of element k.
func (c *Configuration) PositionFor(k ElementKey) ElementPosition {
	return c.ActivePositions().Get(k)
}

// CustomWidth returns the custom width of a box element, or 0 when the
// tier size applies. Custom widths only count while custom positions are
// enabled.
func (c *Configuration) CustomWidth(k ElementKey) float64 {
	if !c.UseCustomPositions {
		return 0
	}
	pos, ok := c.CustomPositions[k]
	if !ok {
		return 0
	}
	return pos.Width
}

// CommitPositions replaces the whole custom position map with a clamped
// copy of p and enables custom positions. It is the single write path
// shared by the editor and template application.
func (c *Configuration) CommitPositions(p Positions) {
	c.CustomPositions = p.Clamped()
	c.UseCustomPositions = true
}

// ResetPositions restores the default positions and disables custom
// positioning.
func (c *Configuration) ResetPositions() {
	c.CustomPositions = DefaultPositions()
	c.UseCustomPositions = false
}

// PrintSettings returns the normalized print settings stored on c.
func (c *Configuration) PrintSettings() units.PrintSettings {
	return units.Normalize(c.Print)
}

// Validate checks enumerated fields. Empty values are allowed and resolve
// to defaults at render time.
func (c *Configuration) Validate() error {
	if c.Layout != "" && !c.Layout.Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown layout %q", c.Layout)
	}
	if s := c.PhotoPlacement.Size; s != "" && !s.Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown photo size %q", s)
	}
	switch c.PhotoPlacement.Shape {
	case "", ShapeCircle, ShapeRounded, ShapeSquare:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown photo shape %q", c.PhotoPlacement.Shape)
	}
	if s := c.QRCode.Size; s != "" && !s.Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown QR size %q", s)
	}
	for k, pos := range c.CustomPositions {
		if !k.Valid() {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown element %q", k)
		}
		switch pos.TextAlign {
		case "", AlignLeft, AlignCenter, AlignRight:
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "element %s: unknown text align %q", k, pos.TextAlign)
		}
	}
	return nil
}
