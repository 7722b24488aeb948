package badge

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/badgekit/pkg/errors"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		key  ElementKey
		in   ElementPosition
		want ElementPosition
	}{
		{"inside", ElementName, ElementPosition{X: 10, Y: 90, FontSize: 5}, ElementPosition{X: 10, Y: 90, FontSize: 5}},
		{"outside", ElementName, ElementPosition{X: -4, Y: 140, FontSize: 40}, ElementPosition{X: 0, Y: 100, FontSize: 20}},
		{"small font", ElementDateTime, ElementPosition{X: 50, Y: 50, FontSize: 0.2}, ElementPosition{X: 50, Y: 50, FontSize: 1}},
		{"box width", ElementPhoto, ElementPosition{X: 50, Y: 50, Width: 2}, ElementPosition{X: 50, Y: 50, Width: 5}},
		{"box too wide", ElementQRCode, ElementPosition{X: 50, Y: 50, Width: 130}, ElementPosition{X: 50, Y: 50, Width: 100}},
		{"unset stays unset", ElementPhoto, ElementPosition{X: 50, Y: 50}, ElementPosition{X: 50, Y: 50}},
		{"text ignores width", ElementName, ElementPosition{X: 50, Y: 50, Width: 300}, ElementPosition{X: 50, Y: 50, Width: 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(tt.key); got != tt.want {
				t.Errorf("Clamp() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSnap(t *testing.T) {
	in := Positions{
		ElementPhoto: {X: 50.9, Y: 21, Width: 29.2, Height: 3},
		ElementName:  {X: 49, Y: 54.4, FontSize: 6.3},
	}
	got := Snap(in, 0)
	want := Positions{
		ElementPhoto: {X: 50, Y: 22, Width: 30, Height: 4},
		ElementName:  {X: 50, Y: 54, FontSize: 6.3},
	}
	if !got.Equal(want) {
		t.Errorf("Snap() = %+v, want %+v", got, want)
	}
	if !Snap(got, 2).Equal(got) {
		t.Error("Snap should be stable on already snapped positions")
	}
}

func TestCommitPositions(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.CommitPositions(Positions{
		ElementName:   {X: 120, Y: 50, FontSize: 30},
		ElementQRCode: {X: 50, Y: 50, Width: 1},
	})

	if !cfg.UseCustomPositions {
		t.Error("CommitPositions should enable custom positions")
	}
	if got := cfg.CustomPositions[ElementName]; got.X != 100 || got.FontSize != 20 {
		t.Errorf("name not clamped: %+v", got)
	}
	if got := cfg.CustomPositions[ElementQRCode].Width; got != 5 {
		t.Errorf("qr width = %v, want 5", got)
	}
	if _, ok := cfg.CustomPositions[ElementPhoto]; ok {
		t.Error("CommitPositions should replace the whole map")
	}
	if got := cfg.PositionFor(ElementPhoto); got != DefaultPositions()[ElementPhoto] {
		t.Errorf("missing entry should fall back to default, got %+v", got)
	}
}

func TestResetPositions(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.CommitPositions(Positions{ElementName: {X: 10, Y: 10}})
	cfg.ResetPositions()

	if cfg.UseCustomPositions {
		t.Error("ResetPositions should disable custom positions")
	}
	if !cfg.CustomPositions.Equal(DefaultPositions()) {
		t.Errorf("CustomPositions = %+v, want defaults", cfg.CustomPositions)
	}
}

func TestCustomWidth(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.CustomPositions = Positions{ElementPhoto: {X: 50, Y: 50, Width: 40}}

	if got := cfg.CustomWidth(ElementPhoto); got != 0 {
		t.Errorf("custom width used while disabled: %v", got)
	}
	cfg.UseCustomPositions = true
	if got := cfg.CustomWidth(ElementPhoto); got != 40 {
		t.Errorf("CustomWidth() = %v, want 40", got)
	}
	if got := cfg.CustomWidth(ElementQRCode); got != 0 {
		t.Errorf("CustomWidth(qr) = %v, want 0", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.CommitPositions(DefaultPositions())
	cfg.Print = nil

	c := cfg.Clone()
	c.CustomPositions[ElementName] = ElementPosition{X: 1, Y: 1}
	if cfg.CustomPositions[ElementName].X == 1 {
		t.Error("Clone shares the position map")
	}
}

func TestTextStyleAlbumCodeFallback(t *testing.T) {
	s := TextStyle{DateTimeColor: "#aaaaaa", DateTimeFontSize: 4}
	color, size := s.Style(ElementAlbumCode)
	if color != "#aaaaaa" || size != 4 {
		t.Errorf("Style(albumCode) = %q, %v", color, size)
	}

	s.AlbumCodeColor = "#ffffff"
	s.AlbumCodeFontSize = 7
	color, size = s.Style(ElementAlbumCode)
	if color != "#ffffff" || size != 7 {
		t.Errorf("Style(albumCode) = %q, %v", color, size)
	}
}

func TestVisitorText(t *testing.T) {
	var none *Visitor
	tests := []struct {
		name      string
		visitor   *Visitor
		key       ElementKey
		albumCode string
		want      string
	}{
		{"sample name", none, ElementName, "", SampleName},
		{"sample event", none, ElementEventName, "", SampleEventName},
		{"sample date", none, ElementDateTime, "", SampleDateTime},
		{"sample code", none, ElementAlbumCode, "", SampleAlbumCode},
		{"supplied code", none, ElementAlbumCode, "ABC", "ABC"},
		{"visitor code wins", &Visitor{AlbumCode: "XYZ"}, ElementAlbumCode, "ABC", "XYZ"},
		{"visitor name", &Visitor{Name: "Ada"}, ElementName, "", "Ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.visitor.Text(tt.key, tt.albumCode); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigurationJSON(t *testing.T) {
	raw := `{
		"layout": "landscape",
		"fields": {"showName": true},
		"qrCode": {"enabled": true, "size": "large"},
		"useCustomPositions": true,
		"customPositions": {"name": {"x": 30, "y": 40, "fontSize": 8, "textAlign": "left"}},
		"print": {"widthInches": 4, "heightInches": 3}
	}`
	var cfg Configuration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cfg.Layout != LayoutLandscape || cfg.QRCode.Size != SizeLarge {
		t.Errorf("unexpected config: %+v", cfg)
	}
	pos := cfg.PositionFor(ElementName)
	if pos.X != 30 || pos.TextAlign != AlignLeft {
		t.Errorf("PositionFor(name) = %+v", pos)
	}
	if ps := cfg.PrintSettings(); ps.DPI != 300 || ps.WidthInches != 4 {
		t.Errorf("PrintSettings() = %+v", ps)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr bool
	}{
		{"default", func(*Configuration) {}, false},
		{"zero", func(c *Configuration) { *c = Configuration{} }, false},
		{"bad layout", func(c *Configuration) { c.Layout = "diagonal" }, true},
		{"bad shape", func(c *Configuration) { c.PhotoPlacement.Shape = "star" }, true},
		{"bad qr size", func(c *Configuration) { c.QRCode.Size = "huge" }, true},
		{"bad element", func(c *Configuration) { c.CustomPositions = Positions{"logo": {}} }, true},
		{"bad align", func(c *Configuration) {
			c.CustomPositions = Positions{ElementName: {TextAlign: "justify"}}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}
