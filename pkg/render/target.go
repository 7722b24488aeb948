package render

import (
	"image"
	"io"

	"github.com/fogleman/gg"
)

// Target is a resizable drawing surface. The engine resizes it to the
// badge's total pixel size before painting.
type Target struct {
	dc *gg.Context
}

// NewTarget returns an empty 1×1 target.
func NewTarget() *Target {
	return &Target{dc: gg.NewContext(1, 1)}
}

// Resize makes the surface w×h and transparent.
func (t *Target) Resize(w, h int) {
	if t.dc.Width() == w && t.dc.Height() == h {
		t.dc.ResetClip()
		t.dc.SetRGBA(0, 0, 0, 0)
		t.dc.Clear()
		return
	}
	t.dc = gg.NewContext(w, h)
}

// Size returns the surface dimensions.
func (t *Target) Size() (w, h int) {
	return t.dc.Width(), t.dc.Height()
}

// Context returns the underlying gg context.
func (t *Target) Context() *gg.Context {
	return t.dc
}

// Image returns the painted surface.
func (t *Target) Image() image.Image {
	return t.dc.Image()
}

// EncodePNG writes the surface as PNG.
func (t *Target) EncodePNG(w io.Writer) error {
	return t.dc.EncodePNG(w)
}
