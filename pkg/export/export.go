// Package export turns rendered badges into print artifacts.
//
// An [Exporter] produces two artifacts from a [render.Input]:
//
//   - [Exporter.Raster]: a PNG of the full surface including bleed
//   - [Exporter.Document]: a one-page PDF sized to the badge plus bleed,
//     with the raster placed full-bleed and, when the badge has bleed, a
//     thin red trim rectangle
//
// Bleed guides are never part of an export. [Exporter.Print] writes the
// document to a spool file and hands it to the system viewer; [Save]
// stores an artifact in a directory.
//
//	ex := export.New(render.NewEngine())
//	a, err := ex.Document(ctx, render.Input{Config: cfg, AlbumCode: "AB12"})
//	path, err := export.Save("out", a) // out/badge-AB12.pdf
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/observability"
	"github.com/matzehuels/badgekit/pkg/render"
	"github.com/matzehuels/badgekit/pkg/units"
)

// Format is an artifact format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{FormatPNG, FormatPDF}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatPDF:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", s).
		WithHint("use png or pdf")
}

// MIME returns the media type of f.
func (f Format) MIME() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// Artifact is an exported file held in memory.
type Artifact struct {
	Name   string
	Format Format
	Data   []byte

	// Width and Height are the raster size in pixels, bleed included.
	Width, Height int
}

// Trim rectangle drawn on documents with bleed.
const (
	trimLineWidth = 0.5 // points
	trimAlpha     = 0.5
)

// Exporter renders and encodes artifacts.
type Exporter struct {
	engine   *render.Engine
	opener   Opener
	spoolDir string
	logger   *log.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithOpener sets the viewer used by [Exporter.Print].
func WithOpener(o Opener) Option {
	return func(e *Exporter) {
		if o != nil {
			e.opener = o
		}
	}
}

// WithSpoolDir sets where [Exporter.Print] writes documents. The default
// is the system temp directory.
func WithSpoolDir(dir string) Option {
	return func(e *Exporter) { e.spoolDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an exporter that renders with engine.
func New(engine *render.Engine, opts ...Option) *Exporter {
	e := &Exporter{
		engine: engine,
		opener: SystemOpener{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export produces the artifact for format.
func (e *Exporter) Export(ctx context.Context, format Format, in render.Input) (*Artifact, error) {
	switch format {
	case FormatPNG:
		return e.Raster(ctx, in)
	case FormatPDF:
		return e.Document(ctx, in)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// Raster renders in without bleed guides and encodes it as PNG.
func (e *Exporter) Raster(ctx context.Context, in render.Input) (a *Artifact, err error) {
	hooks := observability.Export()
	hooks.OnExportStart(ctx, string(FormatPNG))
	start := time.Now()
	defer func() { hooks.OnExportComplete(ctx, string(FormatPNG), artifactSize(a), time.Since(start), err) }()

	return e.raster(ctx, in)
}

func (e *Exporter) raster(ctx context.Context, in render.Input) (*Artifact, error) {
	in.SkipBleedGuides = true
	t := render.NewTarget()
	if err := e.engine.Render(ctx, t, in); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := t.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "encode png")
	}
	w, h := t.Size()
	e.logger.Debug("raster encoded", "width", w, "height", h, "bytes", buf.Len())
	return &Artifact{
		Name:   FileName(albumCode(in), FormatPNG),
		Format: FormatPNG,
		Data:   buf.Bytes(),
		Width:  w,
		Height: h,
	}, nil
}

// Document renders in and places it full-bleed on a single PDF page of
// (width+2·bleed) × (height+2·bleed) inches.
func (e *Exporter) Document(ctx context.Context, in render.Input) (a *Artifact, err error) {
	hooks := observability.Export()
	hooks.OnExportStart(ctx, string(FormatPDF))
	start := time.Now()
	defer func() { hooks.OnExportComplete(ctx, string(FormatPDF), artifactSize(a), time.Since(start), err) }()

	raster, err := e.raster(ctx, in)
	if err != nil {
		return nil, err
	}
	data, err := buildDocument(in.PrintSettings(), raster.Data)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Name:   FileName(albumCode(in), FormatPDF),
		Format: FormatPDF,
		Data:   data,
		Width:  raster.Width,
		Height: raster.Height,
	}, nil
}

func buildDocument(s units.PrintSettings, png []byte) ([]byte, error) {
	bleed := units.InchesToPoints(s.BleedInches)
	pageW := units.InchesToPoints(s.WidthInches) + 2*bleed
	pageH := units.InchesToPoints(s.HeightInches) + 2*bleed

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		OrientationStr: "P",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("badgekit", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("badge", opts, bytes.NewReader(png))
	pdf.ImageOptions("badge", 0, 0, pageW, pageH, false, opts, 0, "")

	if bleed > 0 {
		pdf.SetAlpha(trimAlpha, "Normal")
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(trimLineWidth)
		pdf.Rect(bleed, bleed, pageW-2*bleed, pageH-2*bleed, "D")
		pdf.SetAlpha(1, "Normal")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "encode pdf")
	}
	return buf.Bytes(), nil
}

// Print builds the document, writes it to a uniquely named spool file and
// opens it with the configured viewer. It returns the spool path. A
// viewer that cannot be started yields VIEWER_BLOCKED.
func (e *Exporter) Print(ctx context.Context, in render.Input) (string, error) {
	a, err := e.Document(ctx, in)
	if err != nil {
		return "", err
	}

	dir := e.spoolDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create spool dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("badge-print-%s.pdf", uuid.NewString()))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write spool file: %w", err)
	}

	if err := e.opener.Open(ctx, path); err != nil {
		return path, errors.Wrap(errors.ErrCodeViewerBlocked, err, "could not open print document").
			WithHint("allow pop-ups or configure a PDF viewer, then open " + path)
	}
	e.logger.Info("print document opened", "path", path)
	return path, nil
}

// FileName returns badge-{code}.{ext}, or badge-preview.{ext} without a
// code.
func FileName(code string, f Format) string {
	if code == "" {
		code = "preview"
	}
	return fmt.Sprintf("badge-%s.%s", code, f)
}

// Save writes a into dir under its name and returns the path. The file
// is written to a temporary name first and renamed into place.
func Save(dir string, a *Artifact) (string, error) {
	if err := errors.ValidatePath(a.Name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".badge-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", a.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", a.Name, err)
	}
	path := filepath.Join(dir, a.Name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", a.Name, err)
	}
	return path, nil
}

func albumCode(in render.Input) string {
	if in.Visitor != nil && in.Visitor.AlbumCode != "" {
		return in.Visitor.AlbumCode
	}
	return in.AlbumCode
}

func artifactSize(a *Artifact) int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}
