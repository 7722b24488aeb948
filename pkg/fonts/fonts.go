// Package fonts provides the typefaces used to draw badge text.
//
// The Go font family is embedded through golang.org/x/image, so rendering
// never depends on fonts installed on the host. Custom TrueType/OpenType
// files can be registered under a family name and are then selected by a
// configuration's fontFamily value.
//
// Parsed fonts are cached per family and weight. Faces are not safe for
// concurrent use, so [Registry.Face] returns a new face on every call;
// callers that draw many strings keep their own faces for one render.
package fonts

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Built-in family names.
const (
	Sans = "sans-serif"
	Mono = "monospace"
)

// Weight selects the regular or bold variant of a family.
type Weight int

const (
	Regular Weight = iota
	Bold
)

type variant struct {
	family string
	weight Weight
}

// Registry parses fonts lazily and caches the parsed fonts.
type Registry struct {
	mu     sync.Mutex
	data   map[variant][]byte
	parsed map[variant]*opentype.Font
}

// NewRegistry returns a registry with the embedded Go fonts.
func NewRegistry() *Registry {
	return &Registry{
		data: map[variant][]byte{
			{Sans, Regular}: goregular.TTF,
			{Sans, Bold}:    gobold.TTF,
			{Mono, Regular}: gomono.TTF,
			{Mono, Bold}:    gomonobold.TTF,
		},
		parsed: make(map[variant]*opentype.Font),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds font data under family and weight. The data is parsed
// immediately so that broken files fail at registration.
func (r *Registry) Register(family string, w Weight, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	v := variant{strings.ToLower(strings.TrimSpace(family)), w}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[v] = data
	r.parsed[v] = f
	return nil
}

// RegisterFile reads and registers a font file.
func (r *Registry) RegisterFile(family string, w Weight, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return r.Register(family, w, data)
}

// Resolve maps a CSS-like font-family list to a registered family. The
// first registered entry wins; generic names containing "mono" map to
// the monospace family and everything else to sans-serif.
func (r *Registry) Resolve(families string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range strings.Split(families, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if name == "" {
			continue
		}
		if _, ok := r.data[variant{name, Regular}]; ok {
			return name
		}
		if strings.Contains(name, "mono") {
			return Mono
		}
	}
	return Sans
}

// Face returns a new face for family at sizePx pixels. A family without a
// bold variant falls back to its regular variant, and an unknown family
// to sans-serif.
func (r *Registry) Face(family string, w Weight, sizePx float64) (font.Face, error) {
	if sizePx <= 0 || math.IsNaN(sizePx) || math.IsInf(sizePx, 0) {
		return nil, fmt.Errorf("invalid font size %v", sizePx)
	}
	f, err := r.font(strings.ToLower(family), w)
	if err != nil {
		return nil, err
	}

	// DPI 72 makes Size a pixel size.
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

func (r *Registry) font(family string, w Weight) (*opentype.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.variantFor(family, w)
	if f, ok := r.parsed[v]; ok {
		return f, nil
	}
	f, err := opentype.Parse(r.data[v])
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", v.family, err)
	}
	r.parsed[v] = f
	return f, nil
}

func (r *Registry) variantFor(family string, w Weight) variant {
	if _, ok := r.data[variant{family, w}]; ok {
		return variant{family, w}
	}
	if _, ok := r.data[variant{family, Regular}]; ok {
		return variant{family, Regular}
	}
	return variant{Sans, w}
}
