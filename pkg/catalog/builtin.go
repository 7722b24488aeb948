package catalog

import (
	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/units"
)

// landscapePositions puts the photo on the left and stacks text on the right.
func landscapePositions() badge.Positions {
	return badge.Positions{
		badge.ElementPhoto:     {X: 24, Y: 45, Width: 28},
		badge.ElementName:      {X: 66, Y: 30},
		badge.ElementEventName: {X: 66, Y: 44},
		badge.ElementDateTime:  {X: 66, Y: 55},
		badge.ElementAlbumCode: {X: 66, Y: 66},
		badge.ElementQRCode:    {X: 86, Y: 80, Width: 14},
	}
}

// lanyardPositions suits tall badges with a punched hole at the top.
func lanyardPositions() badge.Positions {
	return badge.Positions{
		badge.ElementPhoto:     {X: 50, Y: 28, Width: 45},
		badge.ElementName:      {X: 50, Y: 55, FontSize: 7},
		badge.ElementEventName: {X: 50, Y: 63},
		badge.ElementDateTime:  {X: 50, Y: 69},
		badge.ElementAlbumCode: {X: 50, Y: 75},
		badge.ElementQRCode:    {X: 50, Y: 87, Width: 22},
	}
}

// builtinTemplates is the static preset list in display order.
var builtinTemplates = []Template{
	{
		ID:          "cr80-landscape",
		Name:        "ID card (landscape)",
		Description: "Standard CR80 card, 3.375 × 2.125 in with 1/8 in bleed.",
		Layout:      badge.LayoutLandscape,
		Print:       units.PrintSettings{WidthInches: 3.375, HeightInches: 2.125, DPI: 300, BleedInches: 0.125, Units: units.Inches},
		Positions:   landscapePositions(),
		QRSize:      badge.SizeSmall,
	},
	{
		ID:          "cr80-portrait",
		Name:        "ID card (portrait)",
		Description: "Standard CR80 card, 2.125 × 3.375 in with 1/8 in bleed.",
		Layout:      badge.LayoutPortrait,
		Print:       units.PrintSettings{WidthInches: 2.125, HeightInches: 3.375, DPI: 300, BleedInches: 0.125, Units: units.Inches},
	},
	{
		ID:          "business-card",
		Name:        "Business card",
		Description: "US business card, 3.5 × 2 in, no bleed.",
		Layout:      badge.LayoutLandscape,
		Print:       units.Default(),
		Positions:   landscapePositions(),
	},
	{
		ID:              "lanyard-4x6",
		Name:            "Lanyard badge",
		Description:     "Conference lanyard insert, 4 × 6 in with 1/8 in bleed.",
		Layout:          badge.LayoutPortrait,
		Print:           units.PrintSettings{WidthInches: 4, HeightInches: 6, DPI: 300, BleedInches: 0.125, Units: units.Inches},
		Positions:       lanyardPositions(),
		BackgroundColor: "#0f172a",
		PhotoSize:       badge.SizeLarge,
		QRSize:          badge.SizeLarge,
	},
	{
		ID:          "event-4x3",
		Name:        "Event badge",
		Description: "Name badge holder insert, 4 × 3 in.",
		Layout:      badge.LayoutLandscape,
		Print:       units.PrintSettings{WidthInches: 4, HeightInches: 3, DPI: 300, Units: units.Inches},
		Positions:   landscapePositions(),
	},
	{
		ID:          "square-3x3",
		Name:        "Square sticker",
		Description: "3 × 3 in square sticker with 1/16 in bleed.",
		Layout:      badge.LayoutSquare,
		Print:       units.PrintSettings{WidthInches: 3, HeightInches: 3, DPI: 300, BleedInches: 0.0625, Units: units.Inches},
	},
	{
		ID:          "a6-portrait",
		Name:        "A6 card",
		Description: "A6 card, 105 × 148 mm with 3 mm bleed.",
		Layout:      badge.LayoutPortrait,
		Print:       units.FromMillimeters(105, 148, 3, 300),
		PhotoSize:   badge.SizeLarge,
	},
}

// Builtin returns the catalog of built-in presets.
func Builtin() *Catalog {
	c, err := New(builtinTemplates...)
	if err != nil {
		panic("catalog: invalid builtin template: " + err.Error())
	}
	return c
}
