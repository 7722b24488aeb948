package render

import (
	"context"
	stderrors "errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrSuperseded is returned by [Preview.Render] when a newer render was
// requested before this one finished.
var ErrSuperseded = stderrors.New("render superseded")

// Preview renders badges for interactive display. Every request takes a
// new generation; a render that completes after a newer request was made
// is discarded, so subscribers only ever see the latest configuration.
type Preview struct {
	engine *Engine
	gen    atomic.Uint64

	mu        sync.Mutex
	published uint64
	latest    image.Image
	subs      map[string]func(image.Image)
}

// NewPreview creates a preview backed by e.
func NewPreview(e *Engine) *Preview {
	return &Preview{
		engine: e,
		subs:   make(map[string]func(image.Image)),
	}
}

// Render paints in and publishes the result to subscribers. It returns
// ErrSuperseded when another Render or [Preview.Invalidate] happened in
// the meantime.
func (p *Preview) Render(ctx context.Context, in Input) (image.Image, error) {
	gen := p.gen.Add(1)

	t := NewTarget()
	if err := p.engine.Render(ctx, t, in); err != nil {
		return nil, err
	}
	img := t.Image()

	p.mu.Lock()
	if p.gen.Load() != gen || gen < p.published {
		p.mu.Unlock()
		return nil, ErrSuperseded
	}
	p.published = gen
	p.latest = img
	subs := make([]func(image.Image), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(img)
	}
	return img, nil
}

// Invalidate supersedes any render in flight.
func (p *Preview) Invalidate() {
	p.gen.Add(1)
}

// Generation returns the latest requested generation.
func (p *Preview) Generation() uint64 {
	return p.gen.Load()
}

// Latest returns the most recently published image, or nil.
func (p *Preview) Latest() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Subscribe registers fn to receive every published image. The returned
// function removes the subscription.
func (p *Preview) Subscribe(fn func(image.Image)) (cancel func()) {
	id := uuid.NewString()
	p.mu.Lock()
	p.subs[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}
