package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/badgekit/pkg/cache"
	"github.com/matzehuels/badgekit/pkg/errors"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadSources(t *testing.T) {
	data := testPNG(t, 4, 3)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(WithBaseDir(dir))
	sources := map[string]string{
		"relative path": "photo.png",
		"absolute path": filepath.Join(dir, "photo.png"),
		"file url":      "file://" + filepath.ToSlash(filepath.Join(dir, "photo.png")),
		"data url":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		"http":          srv.URL + "/photo.png",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			img, err := l.Load(context.Background(), src)
			if err != nil {
				t.Fatalf("Load(%s): %v", src, err)
			}
			if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
				t.Errorf("bounds = %v", b)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(WithBaseDir(t.TempDir()))
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"missing file", "nope.png", errors.ErrCodeFileNotFound},
		{"bad scheme", "ftp://example.com/a.png", errors.ErrCodeInvalidInput},
		{"bad data url", "data:image/png;base64", errors.ErrCodeInvalidInput},
		{"not an image", "data:text/plain,hello", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(context.Background(), tt.src)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRemoteCachedAndShared(t *testing.T) {
	data := testPNG(t, 2, 2)
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write(data)
	}))
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := NewLoader(WithCache(c, cache.NewDefaultKeyer()))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Fetch(context.Background(), srv.URL); err != nil {
				t.Errorf("Fetch: %v", err)
			}
		}()
	}
	close(release)
	wg.Wait()

	// A second round is served from the cache.
	if _, err := l.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if n := hits.Load(); n > 4 || n < 1 {
		t.Errorf("server hits = %d", n)
	}
	before := hits.Load()
	if _, err := NewLoader(WithCache(c, cache.NewDefaultKeyer())).Fetch(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != before {
		t.Error("cached source fetched again")
	}
}

func TestDecodeDataURLPercentEncoded(t *testing.T) {
	got, err := decodeDataURL("data:text/plain,a%20b")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a b" {
		t.Errorf("decodeDataURL = %q", got)
	}
}
