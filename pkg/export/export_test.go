package export

import (
	"bytes"
	"compress/zlib"
	"context"
	stderrors "errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/observability"
	"github.com/matzehuels/badgekit/pkg/render"
	"github.com/matzehuels/badgekit/pkg/units"
)

func testInput(print *units.PrintSettings) render.Input {
	cfg := badge.DefaultConfiguration()
	cfg.Fields = badge.Fields{ShowName: true}
	return render.Input{Config: cfg, Print: print}
}

func TestRasterSize(t *testing.T) {
	tests := []struct {
		name  string
		print *units.PrintSettings
		w, h  int
	}{
		{"business card with bleed", &units.PrintSettings{WidthInches: 3.5, HeightInches: 2, DPI: 300, BleedInches: 0.125}, 1125, 675},
		{"no bleed", &units.PrintSettings{WidthInches: 2, HeightInches: 1, DPI: 100}, 200, 100},
	}
	ex := New(render.NewEngine())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ex.Raster(context.Background(), testInput(tt.print))
			if err != nil {
				t.Fatalf("Raster() error: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(a.Data))
			if err != nil {
				t.Fatalf("png.Decode() error: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("decoded size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
			if a.Width != tt.w || a.Height != tt.h {
				t.Errorf("artifact size = %dx%d, want %dx%d", a.Width, a.Height, tt.w, tt.h)
			}
			if a.Name != "badge-preview.png" {
				t.Errorf("Name = %q, want badge-preview.png", a.Name)
			}
		})
	}
}

func TestRasterOmitsGuides(t *testing.T) {
	in := testInput(&units.PrintSettings{WidthInches: 2, HeightInches: 1, DPI: 100, BleedInches: 0.1})
	ex := New(render.NewEngine())

	a, err := ex.Raster(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	in.SkipBleedGuides = true
	target := render.NewTarget()
	if err := render.NewEngine().Render(context.Background(), target, in); err != nil {
		t.Fatal(err)
	}
	var want bytes.Buffer
	if err := target.EncodePNG(&want); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Data, want.Bytes()) {
		t.Error("raster differs from a guide-free render")
	}
}

func TestDocument(t *testing.T) {
	tests := []struct {
		name     string
		print    *units.PrintSettings
		mediaBox string
	}{
		{"with bleed", &units.PrintSettings{WidthInches: 3.5, HeightInches: 2, DPI: 100, BleedInches: 0.125}, "/MediaBox [0 0 270.00 162.00]"},
		{"no bleed", &units.PrintSettings{WidthInches: 4, HeightInches: 6, DPI: 50}, "/MediaBox [0 0 288.00 432.00]"},
	}
	ex := New(render.NewEngine())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(tt.print)
			in.AlbumCode = "AB12"
			a, err := ex.Document(context.Background(), in)
			if err != nil {
				t.Fatalf("Document() error: %v", err)
			}
			if !bytes.HasPrefix(a.Data, []byte("%PDF-")) {
				t.Error("output is not a PDF")
			}
			if !bytes.Contains(a.Data, []byte(tt.mediaBox)) {
				t.Errorf("page size %s not found", tt.mediaBox)
			}
			if a.Name != "badge-AB12.pdf" {
				t.Errorf("Name = %q, want badge-AB12.pdf", a.Name)
			}
			if a.Format.MIME() != "application/pdf" {
				t.Errorf("MIME() = %q", a.Format.MIME())
			}
		})
	}
}

// pageContent returns the inflated streams of a PDF, concatenated.
func pageContent(t *testing.T, data []byte) []byte {
	t.Helper()
	var out []byte
	for {
		i := bytes.Index(data, []byte("stream\n"))
		if i < 0 {
			return out
		}
		data = data[i+len("stream\n"):]
		j := bytes.Index(data, []byte("endstream"))
		if j < 0 {
			return out
		}
		if r, err := zlib.NewReader(bytes.NewReader(data[:j])); err == nil {
			b, _ := io.ReadAll(r)
			out = append(out, b...)
		} else {
			out = append(out, data[:j]...)
		}
		data = data[j:]
	}
}

func TestDocumentTrimMarks(t *testing.T) {
	tests := []struct {
		name  string
		print *units.PrintSettings
		trim  bool
	}{
		{"with bleed", &units.PrintSettings{WidthInches: 3.5, HeightInches: 2, DPI: 40, BleedInches: 0.125}, true},
		{"no bleed", &units.PrintSettings{WidthInches: 3.5, HeightInches: 2, DPI: 40}, false},
	}
	ex := New(render.NewEngine())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ex.Document(context.Background(), testInput(tt.print))
			if err != nil {
				t.Fatalf("Document() error: %v", err)
			}
			content := pageContent(t, a.Data)
			// Inset 0.125in = 9pt on a 270x162pt page; gofpdf flips y.
			hasTrim := bytes.Contains(content, []byte("9.00 153.00 252.00 -144.00 re S"))
			if hasTrim != tt.trim {
				t.Errorf("trim rectangle present = %v, want %v", hasTrim, tt.trim)
			}
			if !tt.trim && bytes.Contains(content, []byte("re S")) {
				t.Error("stroked rectangle drawn without bleed")
			}
		})
	}
}

func TestExportDispatch(t *testing.T) {
	ex := New(render.NewEngine())
	small := &units.PrintSettings{WidthInches: 1, HeightInches: 1, DPI: 40}
	for _, f := range Formats {
		a, err := ex.Export(context.Background(), f, testInput(small))
		if err != nil {
			t.Fatalf("Export(%s) error: %v", f, err)
		}
		if a.Format != f {
			t.Errorf("Export(%s).Format = %s", f, a.Format)
		}
	}
	if _, err := ex.Export(context.Background(), "svg", testInput(small)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Export(svg) error = %v, want INVALID_FORMAT", err)
	}
}

func TestPrint(t *testing.T) {
	small := &units.PrintSettings{WidthInches: 1, HeightInches: 1, DPI: 40}

	t.Run("opens spool file", func(t *testing.T) {
		var opened string
		ex := New(render.NewEngine(),
			WithSpoolDir(t.TempDir()),
			WithOpener(OpenerFunc(func(_ context.Context, path string) error {
				opened = path
				return nil
			})),
		)
		path, err := ex.Print(context.Background(), testInput(small))
		if err != nil {
			t.Fatalf("Print() error: %v", err)
		}
		if opened != path {
			t.Errorf("opened %q, want %q", opened, path)
		}
		data, err := os.ReadFile(path)
		if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("spool file not a PDF: %v", err)
		}
	})

	t.Run("unique spool names", func(t *testing.T) {
		dir := t.TempDir()
		ex := New(render.NewEngine(), WithSpoolDir(dir), WithOpener(OpenerFunc(func(context.Context, string) error { return nil })))
		a, _ := ex.Print(context.Background(), testInput(small))
		b, _ := ex.Print(context.Background(), testInput(small))
		if a == b {
			t.Errorf("spool paths collide: %s", a)
		}
	})

	t.Run("blocked viewer", func(t *testing.T) {
		ex := New(render.NewEngine(),
			WithSpoolDir(t.TempDir()),
			WithOpener(OpenerFunc(func(context.Context, string) error {
				return stderrors.New("no viewer")
			})),
		)
		_, err := ex.Print(context.Background(), testInput(small))
		if !errors.Is(err, errors.ErrCodeViewerBlocked) {
			t.Fatalf("Print() error = %v, want VIEWER_BLOCKED", err)
		}
		if msg := errors.UserMessage(err); !strings.Contains(msg, "allow pop-ups") {
			t.Errorf("UserMessage() = %q, want actionable hint", msg)
		}
	})
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	a := &Artifact{Name: FileName("XY", FormatPNG), Format: FormatPNG, Data: []byte("data")}

	path, err := Save(dir, a)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if path != filepath.Join(dir, "badge-XY.png") {
		t.Errorf("path = %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "data" {
		t.Errorf("saved data = %q, %v", got, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (temp file left behind)", len(entries))
	}

	if _, err := Save(dir, &Artifact{Name: "../escape.png"}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Save(../escape.png) error = %v, want INVALID_PATH", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		code string
		f    Format
		want string
	}{
		{"AB12", FormatPNG, "badge-AB12.png"},
		{"", FormatPNG, "badge-preview.png"},
		{"", FormatPDF, "badge-preview.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.code, tt.f); got != tt.want {
			t.Errorf("FileName(%q, %s) = %q, want %q", tt.code, tt.f, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"png", "PDF", " pdf "} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error: %v", s, err)
		}
	}
	if _, err := ParseFormat("svg"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(svg) error = %v, want INVALID_FORMAT", err)
	}
}

type exportRecorder struct {
	observability.NoopExportHooks
	mu     sync.Mutex
	events []string
}

func (r *exportRecorder) OnExportComplete(_ context.Context, format string, size int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil && size > 0 {
		r.events = append(r.events, format)
	}
}

func TestExportHooks(t *testing.T) {
	rec := &exportRecorder{}
	observability.SetExportHooks(rec)
	t.Cleanup(observability.Reset)

	ex := New(render.NewEngine())
	small := &units.PrintSettings{WidthInches: 1, HeightInches: 1, DPI: 40}
	if _, err := ex.Document(context.Background(), testInput(small)); err != nil {
		t.Fatal(err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 || rec.events[0] != "pdf" {
		t.Errorf("events = %v, want [pdf]", rec.events)
	}
}
