package catalog

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/units"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()
	if c.Len() == 0 {
		t.Fatal("Builtin catalog is empty")
	}
	for _, tpl := range c.List() {
		if err := tpl.Validate(); err != nil {
			t.Errorf("builtin %s invalid: %v", tpl.ID, err)
		}
		if tpl.Name == "" {
			t.Errorf("builtin %s has no name", tpl.ID)
		}
	}
}

func TestLookup(t *testing.T) {
	c := Builtin()

	tpl, err := c.Lookup("cr80-landscape")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if tpl.Layout != badge.LayoutLandscape {
		t.Errorf("Layout = %q", tpl.Layout)
	}

	// Mutating the result must not leak into the catalog.
	tpl.Positions[badge.ElementName] = badge.ElementPosition{X: 1, Y: 1}
	again, _ := c.Lookup("cr80-landscape")
	if again.Positions[badge.ElementName].X == 1 {
		t.Error("Lookup returned shared positions")
	}

	_, err = c.Lookup("nope")
	if !errors.Is(err, errors.ErrCodeTemplateNotFound) {
		t.Errorf("Lookup(nope) error = %v", err)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	tpl := Template{ID: "a", Name: "A", Layout: badge.LayoutSquare}
	_, err := New(tpl, tpl)
	if !stderrors.Is(err, ErrDuplicateTemplate) {
		t.Errorf("New() error = %v, want ErrDuplicateTemplate", err)
	}
}

func TestMerge(t *testing.T) {
	c := Builtin()
	n := c.Len()

	merged, err := c.Merge(
		Template{ID: "business-card", Name: "Override", Layout: badge.LayoutSquare},
		Template{ID: "custom", Name: "Custom", Layout: badge.LayoutPortrait},
	)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Len() != n+1 {
		t.Errorf("Len() = %d, want %d", merged.Len(), n+1)
	}
	tpl, _ := merged.Lookup("business-card")
	if tpl.Name != "Override" {
		t.Errorf("override not applied: %+v", tpl)
	}
	if orig, _ := c.Lookup("business-card"); orig.Name == "Override" {
		t.Error("Merge mutated the receiver")
	}
}

func TestApplyPreservesUnspecifiedFields(t *testing.T) {
	cfg := badge.DefaultConfiguration()
	cfg.Fields.ShowDateTime = false
	cfg.TextStyle.NameColor = "#ff0000"
	cfg.BackgroundURL = "bg.png"
	cfg.QRCode.Size = badge.SizeSmall

	tpl := Template{
		ID:              "lanyard",
		Name:            "Lanyard",
		Layout:          badge.LayoutPortrait,
		Print:           units.PrintSettings{WidthInches: 4, HeightInches: 6},
		BackgroundColor: "#000000",
		PhotoSize:       badge.SizeLarge,
	}
	out := Apply(tpl, cfg)

	if out.Fields.ShowDateTime || out.TextStyle.NameColor != "#ff0000" {
		t.Errorf("fields or text style lost: %+v", out)
	}
	if out.BackgroundURL != "bg.png" {
		t.Errorf("BackgroundURL = %q, want preserved", out.BackgroundURL)
	}
	if out.QRCode.Size != badge.SizeSmall {
		t.Errorf("QR size = %q, want preserved", out.QRCode.Size)
	}
	if out.BackgroundColor != "#000000" || out.PhotoPlacement.Size != badge.SizeLarge {
		t.Errorf("overrides not applied: %+v", out)
	}
	if out.LayoutTemplateID != "lanyard" {
		t.Errorf("LayoutTemplateID = %q", out.LayoutTemplateID)
	}
	if out.Print == nil || out.Print.DPI != units.DefaultDPI || out.Print.HeightInches != 6 {
		t.Errorf("Print = %+v, want normalized template settings", out.Print)
	}
	if !out.UseCustomPositions || !out.CustomPositions.Equal(badge.DefaultPositions()) {
		t.Errorf("positions = %v / %+v", out.UseCustomPositions, out.CustomPositions)
	}
	if cfg.LayoutTemplateID != "" || cfg.Print != nil {
		t.Error("Apply mutated its input")
	}
}

func TestApplyReplacesPositions(t *testing.T) {
	cfg := badge.DefaultConfiguration()
	cfg.CommitPositions(badge.Positions{badge.ElementName: {X: 10, Y: 10}})

	tpl, _ := Builtin().Lookup("cr80-landscape")
	out := Apply(tpl, cfg)
	if !out.CustomPositions.Equal(tpl.Positions) {
		t.Errorf("CustomPositions = %+v, want template positions", out.CustomPositions)
	}
}

func TestLoad(t *testing.T) {
	doc := `
templates:
  - id: conference
    name: Conference badge
    layout: portrait
    print: {widthInches: 4, heightInches: 6, dpi: 300, bleedInches: 0.125}
    qrSize: large
    positions:
      name: {x: 50, y: 60, fontSize: 7}
      qrCode: {x: 50, y: 85, width: 20}
`
	ts, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ts) != 1 {
		t.Fatalf("len = %d, want 1", len(ts))
	}
	tpl := ts[0]
	if tpl.Print.BleedInches != 0.125 || tpl.QRSize != badge.SizeLarge {
		t.Errorf("template = %+v", tpl)
	}
	if got := tpl.Positions[badge.ElementQRCode].Width; got != 20 {
		t.Errorf("qr width = %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "templates: [\n"},
		{"unknown field", "templates:\n  - id: a\n    layout: square\n    colour: red\n"},
		{"bad layout", "templates:\n  - id: a\n    layout: round\n"},
		{"bad id", "templates:\n  - id: A B\n    layout: square\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			if !errors.Is(err, errors.ErrCodeInvalidTemplate) {
				t.Errorf("Load() error = %v, want INVALID_TEMPLATE", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadFile(missing) error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	ts, err := LoadFile(path)
	if err != nil || len(ts) != 0 {
		t.Errorf("LoadFile(empty) = %v, %v", ts, err)
	}
}
