// Package render paints badge configurations onto raster surfaces.
//
// [Engine.Render] draws one badge onto a [Target] in a fixed order:
// background, photo, text, QR code and, when the badge has bleed, dashed
// trim guides. Every position goes through a [layout.Frame], so the same
// configuration produces the same picture at any DPI.
//
// Image and QR failures never abort a render. A photo that cannot be
// loaded becomes a gradient placeholder, a background that cannot be
// loaded leaves the solid fill, and a QR value that cannot be encoded is
// skipped. Each of these is logged and reported through
// [observability.RenderHooks]. The only error Render returns is the
// context's.
//
// [Preview] wraps an engine for interactive use, discarding renders that
// were superseded by a newer request.
package render

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"

	"github.com/matzehuels/badgekit/pkg/asset"
	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/fonts"
	"github.com/matzehuels/badgekit/pkg/layout"
	"github.com/matzehuels/badgekit/pkg/observability"
	"github.com/matzehuels/badgekit/pkg/units"
)

// SampleQRValue is encoded when neither the visitor nor the caller
// supplies an album code.
const SampleQRValue = "sample-code"

// Drawing constants.
const (
	photoCornerRatio = 0.12  // rounded photo radius, fraction of the smaller side
	photoBorderRatio = 0.005 // photo border width, fraction of content width
	qrPlatePadding   = 0.05  // QR plate padding, fraction of QR side
	qrPlateRadius    = 8.0
	qrOversample     = 2.0
	shadowSigma      = 2.0 // gaussian sigma of a 4px canvas shadow blur
	guideDash        = 8.0
	guideGap         = 6.0
)

var (
	defaultBackground = color.NRGBA{0x11, 0x18, 0x27, 0xff}
	placeholderStart  = color.NRGBA{0x0e, 0xa5, 0xe9, 0xff}
	placeholderEnd    = color.NRGBA{0x63, 0x66, 0xf1, 0xff}
	photoBorder       = color.NRGBA{255, 255, 255, 51}
	textShadow        = color.NRGBA{0, 0, 0, 89}
	qrPlate           = color.NRGBA{255, 255, 255, 255}
	guideColor        = color.NRGBA{255, 255, 255, 64}
)

// textRole holds the built-in style of one text element.
type textRole struct {
	key    badge.ElementKey
	minPx  float64
	ratio  float64 // fallback size as a fraction of content height
	weight fonts.Weight
	color  color.NRGBA
}

var textRoles = []textRole{
	{badge.ElementName, 18, 0.06, fonts.Bold, color.NRGBA{255, 255, 255, 255}},
	{badge.ElementEventName, 12, 0.035, fonts.Regular, color.NRGBA{255, 255, 255, 217}},
	{badge.ElementDateTime, 10, 0.03, fonts.Regular, color.NRGBA{255, 255, 255, 179}},
	{badge.ElementAlbumCode, 10, 0.03, fonts.Bold, color.NRGBA{255, 255, 255, 179}},
}

// ImageLoader loads background and photo images.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Input is everything one render needs.
type Input struct {
	Config badge.Configuration

	// Print overrides Config.Print when set.
	Print *units.PrintSettings

	// AlbumCode is used for the album code text and QR value when the
	// visitor has none.
	AlbumCode string

	// Visitor supplies the dynamic text and photo. Nil renders sample text
	// and a placeholder photo.
	Visitor *badge.Visitor

	// SkipBleedGuides suppresses the dashed trim guides. Exports set it.
	SkipBleedGuides bool
}

// PrintSettings returns the normalized settings for the render: the
// override when present, otherwise the configuration's.
func (in Input) PrintSettings() units.PrintSettings {
	if in.Print != nil {
		return units.Normalize(in.Print)
	}
	return in.Config.PrintSettings()
}

// QRValue returns the string encoded in the QR code.
func (in Input) QRValue() string {
	if in.Visitor != nil && in.Visitor.AlbumCode != "" {
		return in.Visitor.AlbumCode
	}
	if in.AlbumCode != "" {
		return in.AlbumCode
	}
	return SampleQRValue
}

// Engine renders badges.
type Engine struct {
	loader ImageLoader
	fonts  *fonts.Registry
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoader sets the image loader.
func WithLoader(l ImageLoader) Option {
	return func(e *Engine) {
		if l != nil {
			e.loader = l
		}
	}
}

// WithFonts sets the font registry.
func WithFonts(r *fonts.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.fonts = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine. By default it loads images with an
// uncached [asset.Loader] and draws with the embedded fonts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fonts:  fonts.Default(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		e.loader = asset.NewLoader(asset.WithLogger(e.logger))
	}
	return e
}

// Render paints in onto t, resizing t to the badge's total pixel size.
func (e *Engine) Render(ctx context.Context, t *Target, in Input) (err error) {
	frame := layout.NewFrame(in.PrintSettings())
	w, h := frame.TotalWidth(), frame.TotalHeight()

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, w, h)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, time.Since(start), err) }()

	t.Resize(w, h)
	p := &painter{
		Engine: e,
		ctx:    ctx,
		dc:     t.dc,
		frame:  frame,
		cfg:    &in.Config,
		in:     in,
	}
	for _, step := range []func(){p.background, p.photo, p.text, p.qrCode, p.guides} {
		if err := ctx.Err(); err != nil {
			return err
		}
		step()
	}
	return ctx.Err()
}

// painter holds the state of one render.
type painter struct {
	*Engine
	ctx   context.Context
	dc    *gg.Context
	frame layout.Frame
	cfg   *badge.Configuration
	in    Input
}

func (p *painter) skip(element string, err error) {
	p.logger.Warn("badge element skipped", "element", element, "err", err)
	observability.Render().OnElementSkipped(p.ctx, element, err)
}

func (p *painter) background() {
	p.dc.SetColor(colorOr(p.cfg.BackgroundColor, defaultBackground))
	p.dc.Clear()

	if p.cfg.BackgroundURL == "" {
		return
	}
	img, err := p.loader.Load(p.ctx, p.cfg.BackgroundURL)
	if err != nil {
		p.skip("background", err)
		return
	}
	w, h := p.dc.Width(), p.dc.Height()
	p.dc.DrawImage(imaging.Resize(img, w, h, imaging.Linear), 0, 0)
}

func (p *painter) photo() {
	side := p.frame.ElementSide(p.cfg, badge.ElementPhoto)
	if side < 1 {
		return
	}
	cx, cy := p.frame.Center(p.cfg.PositionFor(badge.ElementPhoto))
	x, y := cx-side/2, cy-side/2
	shape := p.cfg.PhotoPlacement.Shape

	var img image.Image
	if p.in.Visitor != nil && p.in.Visitor.PhotoURL != "" {
		loaded, err := p.loader.Load(p.ctx, p.in.Visitor.PhotoURL)
		if err != nil {
			p.skip(string(badge.ElementPhoto), err)
		} else {
			img = loaded
		}
	}

	dc := p.dc
	dc.Push()
	shapePath(dc, shape, x, y, side)
	dc.Clip()
	if img != nil {
		b := img.Bounds()
		dx, dy, dw, dh := CoverRect(b.Dx(), b.Dy(), x, y, side, side)
		scaled := imaging.Resize(img, atLeastOne(dw), atLeastOne(dh), imaging.Lanczos)
		dc.DrawImage(scaled, int(math.Round(dx)), int(math.Round(dy)))
	} else {
		g := gg.NewLinearGradient(x, y, x+side, y+side)
		g.AddColorStop(0, placeholderStart)
		g.AddColorStop(1, placeholderEnd)
		dc.SetFillStyle(g)
		dc.DrawRectangle(x, y, side, side)
		dc.Fill()
	}
	dc.Pop()
	// Pop keeps the clip mask.
	dc.ResetClip()

	if img == nil {
		return
	}
	dc.NewSubPath()
	shapePath(dc, shape, x, y, side)
	dc.SetColor(photoBorder)
	dc.SetLineWidth(p.frame.WidthPx * photoBorderRatio)
	dc.Stroke()
}

type textItem struct {
	key   badge.ElementKey
	s     string
	x, y  float64
	ax    float64
	color color.NRGBA
	face  font.Face
}

func (p *painter) text() {
	family := p.fonts.Resolve(p.cfg.TextStyle.FontFamily)

	var items []textItem
	defer func() {
		for _, it := range items {
			it.face.Close()
		}
	}()
	for _, role := range textRoles {
		if !p.cfg.Fields.Shows(role.key) {
			continue
		}
		s := p.in.Visitor.Text(role.key, p.in.AlbumCode)
		if s == "" {
			continue
		}
		pos := p.cfg.PositionFor(role.key)
		styleColor, styleSize := p.cfg.TextStyle.Style(role.key)
		face, err := p.fonts.Face(family, role.weight, fontSize(p.frame, role, pos.FontSize, styleSize))
		if err != nil {
			p.skip(string(role.key), err)
			continue
		}
		x, y := p.frame.Center(pos)
		items = append(items, textItem{
			key:   role.key,
			s:     s,
			x:     x,
			y:     y,
			ax:    anchorX(pos.TextAlign),
			color: colorOr(styleColor, role.color),
			face:  face,
		})
	}
	if len(items) == 0 {
		return
	}

	shadow := gg.NewContext(p.dc.Width(), p.dc.Height())
	shadow.SetColor(textShadow)
	for _, it := range items {
		shadow.SetFontFace(it.face)
		shadow.DrawStringAnchored(it.s, it.x, it.y, it.ax, 0.5)
	}
	p.dc.DrawImage(imaging.Blur(shadow.Image(), shadowSigma), 0, 0)

	for _, it := range items {
		p.dc.SetFontFace(it.face)
		p.dc.SetColor(it.color)
		p.dc.DrawStringAnchored(it.s, it.x, it.y, it.ax, 0.5)
	}
}

func (p *painter) qrCode() {
	if !p.cfg.QRCode.Enabled {
		return
	}
	side := p.frame.ElementSide(p.cfg, badge.ElementQRCode)
	if side < 1 {
		return
	}

	q, err := qrcode.New(p.in.QRValue(), qrcode.Medium)
	if err != nil {
		p.skip(string(badge.ElementQRCode), err)
		return
	}
	q.DisableBorder = true
	modules := len(q.Bitmap())
	bitmap := q.Image(int(math.Round(side * qrOversample)))

	cx, cy := p.frame.Center(p.cfg.PositionFor(badge.ElementQRCode))
	pad := side * qrPlatePadding
	p.dc.NewSubPath()
	roundedRect(p.dc, cx-side/2-pad, cy-side/2-pad, side+2*pad, side+2*pad, qrPlateRadius)
	p.dc.SetColor(qrPlate)
	p.dc.Fill()

	// One module of quiet zone inside the side.
	inner := side * float64(modules) / float64(modules+2)
	scaled := imaging.Resize(bitmap, atLeastOne(inner), atLeastOne(inner), imaging.Box)
	p.dc.DrawImageAnchored(scaled, int(math.Round(cx)), int(math.Round(cy)), 0.5, 0.5)
}

func (p *painter) guides() {
	if p.in.SkipBleedGuides || p.frame.BleedPx <= 0 {
		return
	}
	dc := p.dc
	dc.NewSubPath()
	dc.DrawRectangle(p.frame.Trim())
	dc.SetColor(guideColor)
	dc.SetLineWidth(1)
	dc.SetDash(guideDash, guideGap)
	dc.Stroke()
	dc.SetDash()
}

// fontSize returns the pixel size of a text element: the position's
// font size, then the style's, both in percent of content height, then
// the role's fallback.
func fontSize(f layout.Frame, role textRole, positionPct, stylePct float64) float64 {
	switch {
	case positionPct > 0:
		return f.FontPx(positionPct)
	case stylePct > 0:
		return f.FontPx(stylePct)
	}
	return math.Max(role.minPx, f.HeightPx*role.ratio)
}

// CoverRect scales an imgW×imgH image to cover the box (x, y, w, h)
// while keeping its aspect ratio, centered on the box.
func CoverRect(imgW, imgH int, x, y, w, h float64) (dx, dy, dw, dh float64) {
	if imgW <= 0 || imgH <= 0 {
		return x, y, w, h
	}
	scale := math.Max(w/float64(imgW), h/float64(imgH))
	dw, dh = float64(imgW)*scale, float64(imgH)*scale
	return x + (w-dw)/2, y + (h-dh)/2, dw, dh
}

func anchorX(a badge.TextAlign) float64 {
	switch a {
	case badge.AlignLeft:
		return 0
	case badge.AlignRight:
		return 1
	}
	return 0.5
}

// shapePath adds the photo outline of a side×side box at (x, y).
func shapePath(dc *gg.Context, shape badge.Shape, x, y, side float64) {
	switch shape {
	case badge.ShapeRounded:
		roundedRect(dc, x, y, side, side, photoCornerRatio*side)
	case badge.ShapeSquare:
		dc.DrawRectangle(x, y, side, side)
	default:
		dc.DrawEllipse(x+side/2, y+side/2, side/2, side/2)
	}
}

// roundedRect adds a rectangle with quadratic corners of radius r.
func roundedRect(dc *gg.Context, x, y, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)
	dc.MoveTo(x+r, y)
	dc.LineTo(x+w-r, y)
	dc.QuadraticTo(x+w, y, x+w, y+r)
	dc.LineTo(x+w, y+h-r)
	dc.QuadraticTo(x+w, y+h, x+w-r, y+h)
	dc.LineTo(x+r, y+h)
	dc.QuadraticTo(x, y+h, x, y+h-r)
	dc.LineTo(x, y+r)
	dc.QuadraticTo(x, y, x+r, y)
	dc.ClosePath()
}

func atLeastOne(v float64) int {
	return max(1, int(math.Round(v)))
}
