// Package badge defines the badge configuration model shared by the
// renderer, the export pipeline and the positioning editor.
//
// A [Configuration] is a declarative description of a badge: which text
// fields are shown, how they are styled, where the photo and QR code go and
// how large they are. Element positions are percentages of the content box
// (excluding bleed) and are anchored at the element's center.
//
// The host application owns persistence. Everything in this package is a
// plain value type that round-trips through JSON without loss.
//
// # Positions
//
// When [Configuration.UseCustomPositions] is false the renderer uses
// [DefaultPositions]. Every mutation of positions goes through
// [Configuration.CommitPositions] or [Configuration.ResetPositions], which
// keep the persisted map clamped to valid ranges.
package badge

// Layout is the badge orientation.
type Layout string

const (
	LayoutPortrait  Layout = "portrait"
	LayoutLandscape Layout = "landscape"
	LayoutSquare    Layout = "square"
)

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	switch l {
	case LayoutPortrait, LayoutLandscape, LayoutSquare:
		return true
	}
	return false
}

// Size is a photo or QR size tier.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Valid reports whether s is a known size tier.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Shape is the clip shape applied to the visitor photo.
type Shape string

const (
	ShapeCircle  Shape = "circle"
	ShapeRounded Shape = "rounded"
	ShapeSquare  Shape = "square"
)

// TextAlign shifts the horizontal anchor of a text element.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// ElementKey identifies a positionable badge element.
type ElementKey string

const (
	ElementPhoto     ElementKey = "photo"
	ElementName      ElementKey = "name"
	ElementEventName ElementKey = "eventName"
	ElementDateTime  ElementKey = "dateTime"
	ElementAlbumCode ElementKey = "albumCode"
	ElementQRCode    ElementKey = "qrCode"
)

// Elements lists every element key in paint order.
var Elements = []ElementKey{
	ElementPhoto,
	ElementName,
	ElementEventName,
	ElementDateTime,
	ElementAlbumCode,
	ElementQRCode,
}

// IsText reports whether k is sized by font size.
func (k ElementKey) IsText() bool {
	switch k {
	case ElementName, ElementEventName, ElementDateTime, ElementAlbumCode:
		return true
	}
	return false
}

// IsBox reports whether k is sized by width.
func (k ElementKey) IsBox() bool {
	return k == ElementPhoto || k == ElementQRCode
}

// Valid reports whether k is a known element.
func (k ElementKey) Valid() bool {
	return k.IsText() || k.IsBox()
}

// Fields toggles the text elements.
type Fields struct {
	ShowName      bool `json:"showName" yaml:"showName"`
	ShowEventName bool `json:"showEventName" yaml:"showEventName"`
	ShowDateTime  bool `json:"showDateTime" yaml:"showDateTime"`
	ShowAlbumCode bool `json:"showAlbumCode" yaml:"showAlbumCode"`
}

// Shows reports whether the text element k is enabled. Box elements are
// gated elsewhere and always report true.
func (f Fields) Shows(k ElementKey) bool {
	switch k {
	case ElementName:
		return f.ShowName
	case ElementEventName:
		return f.ShowEventName
	case ElementDateTime:
		return f.ShowDateTime
	case ElementAlbumCode:
		return f.ShowAlbumCode
	}
	return true
}

// TextStyle holds per-field colors and default font sizes. Font sizes are
// percentages of the badge content height; zero means unset.
type TextStyle struct {
	NameColor         string  `json:"nameColor,omitempty" yaml:"nameColor,omitempty"`
	NameFontSize      float64 `json:"nameFontSize,omitempty" yaml:"nameFontSize,omitempty"`
	EventNameColor    string  `json:"eventNameColor,omitempty" yaml:"eventNameColor,omitempty"`
	EventNameFontSize float64 `json:"eventNameFontSize,omitempty" yaml:"eventNameFontSize,omitempty"`
	DateTimeColor     string  `json:"dateTimeColor,omitempty" yaml:"dateTimeColor,omitempty"`
	DateTimeFontSize  float64 `json:"dateTimeFontSize,omitempty" yaml:"dateTimeFontSize,omitempty"`
	AlbumCodeColor    string  `json:"albumCodeColor,omitempty" yaml:"albumCodeColor,omitempty"`
	AlbumCodeFontSize float64 `json:"albumCodeFontSize,omitempty" yaml:"albumCodeFontSize,omitempty"`
	FontFamily        string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
}

// Style returns the configured color and font size for a text element.
// The album code falls back to the date/time style when it has none.
func (s TextStyle) Style(k ElementKey) (color string, fontSize float64) {
	switch k {
	case ElementName:
		return s.NameColor, s.NameFontSize
	case ElementEventName:
		return s.EventNameColor, s.EventNameFontSize
	case ElementDateTime:
		return s.DateTimeColor, s.DateTimeFontSize
	case ElementAlbumCode:
		color, fontSize = s.AlbumCodeColor, s.AlbumCodeFontSize
		if color == "" {
			color = s.DateTimeColor
		}
		if fontSize <= 0 {
			fontSize = s.DateTimeFontSize
		}
		return color, fontSize
	}
	return "", 0
}

// PhotoPlacement configures the visitor photo.
type PhotoPlacement struct {
	Size  Size  `json:"size,omitempty" yaml:"size,omitempty"`
	Shape Shape `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// QRCode configures the album QR code.
type QRCode struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Size    Size `json:"size,omitempty" yaml:"size,omitempty"`
}

// Visitor is the dynamic per-badge data. Empty fields fall back to sample
// text when rendering.
type Visitor struct {
	PhotoURL  string `json:"photoUrl,omitempty"`
	Name      string `json:"name,omitempty"`
	EventName string `json:"eventName,omitempty"`
	Date      string `json:"date,omitempty"`
	AlbumCode string `json:"albumCode,omitempty"`
}

// Sample text used when no visitor data is supplied.
const (
	SampleName      = "John Doe"
	SampleEventName = "Event Name"
	SampleDateTime  = "Nov 28 • 2:30 PM"
	SampleAlbumCode = "CODE"
)

// Text returns the string painted for a text element. albumCode is the
// code supplied by the caller and is used when the visitor has none.
func (v *Visitor) Text(k ElementKey, albumCode string) string {
	var val, fallback string
	switch k {
	case ElementName:
		fallback = SampleName
		if v != nil {
			val = v.Name
		}
	case ElementEventName:
		fallback = SampleEventName
		if v != nil {
			val = v.EventName
		}
	case ElementDateTime:
		fallback = SampleDateTime
		if v != nil {
			val = v.Date
		}
	case ElementAlbumCode:
		fallback = SampleAlbumCode
		if v != nil {
			val = v.AlbumCode
		}
		if val == "" {
			val = albumCode
		}
	}
	if val == "" {
		return fallback
	}
	return val
}
