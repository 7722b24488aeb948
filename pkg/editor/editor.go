// Package editor implements pointer-driven positioning of badge elements.
//
// An [Editor] holds a working copy of a configuration's positions and
// moves elements in response to pointer events expressed in container
// coordinates (the on-screen badge box, see [layout.EditorBox]):
//
//	Idle ──BeginDrag──▶ Dragging ──Release/Leave──▶ Idle
//	Idle ──BeginResize─▶ Resizing ──Release/Leave──▶ Idle
//
// Moves only change the working copy. The full position map is pushed to
// subscribers when a gesture ends, and [Editor.ApplyTo] writes it through
// [badge.Configuration.CommitPositions], the same path template
// application uses.
//
// An editor is not safe for concurrent use; drive it from one event loop.
package editor

import (
	stderrors "errors"
	"math"
	"sort"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/layout"
)

// FontSizeDivisor maps a text resize gesture to a font size: the doubled
// pointer distance from the element center, in percent of the container
// width, divided by this value.
const FontSizeDivisor = 8

var (
	// ErrBusy is returned when a gesture starts while another is active.
	ErrBusy = stderrors.New("editor: gesture in progress")

	// ErrUnknownElement is returned for keys outside [badge.Elements].
	ErrUnknownElement = stderrors.New("editor: unknown element")

	// ErrClosed is returned by operations on a closed editor.
	ErrClosed = stderrors.New("editor: closed")
)

// State is the gesture state.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// Point is a pointer location in container coordinates.
type Point struct{ X, Y float64 }

// Rect is the container box in pointer coordinates.
type Rect struct{ X, Y, W, H float64 }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Update is pushed to subscribers whenever positions are committed.
type Update struct {
	Positions          badge.Positions
	UseCustomPositions bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithFontSizeDivisor overrides [FontSizeDivisor].
func WithFontSizeDivisor(d float64) Option {
	return func(e *Editor) {
		if d > 0 {
			e.divisor = d
		}
	}
}

// WithSnap enables grid snapping for external changes passed to
// [Editor.Sync]. A non-positive step uses [badge.DefaultSnapGap].
func WithSnap(step float64) Option {
	return func(e *Editor) {
		if step <= 0 {
			step = badge.DefaultSnapGap
		}
		e.snapStep = step
	}
}

// Editor is the positioning state machine.
type Editor struct {
	box       Rect
	positions badge.Positions
	custom    bool
	photoSize badge.Size
	qrSize    badge.Size
	fields    badge.Fields
	qrEnabled bool

	state  State
	active badge.ElementKey
	offset Point

	divisor  float64
	snapStep float64

	subs   map[int]func(Update)
	nextID int
	closed bool
}

// New creates an editor over cfg's active positions inside box.
func New(cfg *badge.Configuration, box Rect, opts ...Option) *Editor {
	e := &Editor{
		box:       box,
		positions: fill(cfg.ActivePositions()),
		custom:    cfg.UseCustomPositions,
		photoSize: cfg.PhotoPlacement.Size,
		qrSize:    cfg.QRCode.Size,
		fields:    cfg.Fields,
		qrEnabled: cfg.QRCode.Enabled,
		divisor:   FontSizeDivisor,
		subs:      make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fill returns a copy of p with every element present.
func fill(p badge.Positions) badge.Positions {
	out := make(badge.Positions, len(badge.Elements))
	for _, k := range badge.Elements {
		out[k] = p.Get(k)
	}
	return out
}

// SetBox updates the container box, for example after a resize.
func (e *Editor) SetBox(box Rect) { e.box = box }

// SetSnap sets the grid step used by [Editor.Sync]. Zero disables
// snapping; a negative step uses [badge.DefaultSnapGap].
func (e *Editor) SetSnap(step float64) {
	if step < 0 {
		step = badge.DefaultSnapGap
	}
	e.snapStep = step
}

// Snap returns the grid step, or 0 when snapping is off.
func (e *Editor) Snap() float64 { return e.snapStep }

// Box returns the container box.
func (e *Editor) Box() Rect { return e.box }

// State returns the gesture state and the active element.
func (e *Editor) State() (State, badge.ElementKey) { return e.state, e.active }

// Positions returns a copy of the working positions.
func (e *Editor) Positions() badge.Positions { return e.positions.Clone() }

// UseCustomPositions reports whether the working positions are custom.
func (e *Editor) UseCustomPositions() bool { return e.custom }

// Center returns the container coordinates of element k's center.
func (e *Editor) Center(k badge.ElementKey) Point {
	pos := e.positions.Get(k)
	return Point{
		X: e.box.X + pos.X/100*e.box.W,
		Y: e.box.Y + pos.Y/100*e.box.H,
	}
}

// WidthPercent returns the displayed width of box element k in percent
// of the container width.
func (e *Editor) WidthPercent(k badge.ElementKey) float64 {
	if e.custom {
		if w := e.positions.Get(k).Width; w > 0 {
			return w
		}
	}
	switch k {
	case badge.ElementPhoto:
		return layout.PhotoTier(e.photoSize) * 100
	case badge.ElementQRCode:
		return layout.QRTier(e.qrSize) * 100
	}
	return 0
}

// Visible reports whether element k is drawn.
func (e *Editor) Visible(k badge.ElementKey) bool {
	if k == badge.ElementQRCode {
		return e.qrEnabled
	}
	return e.fields.Shows(k)
}

// HitTest returns the topmost visible element under p. Box elements are
// hit inside their square; text elements inside a band of tolerance
// container units around their center line.
func (e *Editor) HitTest(p Point, tolerance float64) (badge.ElementKey, bool) {
	for i := len(badge.Elements) - 1; i >= 0; i-- {
		k := badge.Elements[i]
		if !e.Visible(k) {
			continue
		}
		c := e.Center(k)
		if k.IsBox() {
			half := e.WidthPercent(k) / 100 * e.box.W / 2
			if math.Abs(p.X-c.X) <= half && math.Abs(p.Y-c.Y) <= half {
				return k, true
			}
			continue
		}
		if math.Abs(p.Y-c.Y) <= tolerance && math.Abs(p.X-c.X) <= e.box.W/2 {
			return k, true
		}
	}
	return "", false
}

// BeginDrag starts dragging k. The offset between p and the element's
// current center is kept so the element does not jump to the pointer.
func (e *Editor) BeginDrag(k badge.ElementKey, p Point) error {
	if err := e.begin(k); err != nil {
		return err
	}
	c := e.Center(k)
	e.state, e.active = Dragging, k
	e.offset = Point{X: p.X - c.X, Y: p.Y - c.Y}
	return nil
}

// BeginResize starts resizing k: text elements by font size, box
// elements by width.
func (e *Editor) BeginResize(k badge.ElementKey, p Point) error {
	if err := e.begin(k); err != nil {
		return err
	}
	e.state, e.active = Resizing, k
	e.offset = Point{}
	return nil
}

func (e *Editor) begin(k badge.ElementKey) error {
	switch {
	case e.closed:
		return ErrClosed
	case e.state != Idle:
		return ErrBusy
	case !k.Valid():
		return ErrUnknownElement
	}
	return nil
}

// Move applies a pointer move to the active gesture. It reports whether
// the working positions changed.
func (e *Editor) Move(p Point) bool {
	if e.closed || e.state == Idle || e.box.W <= 0 || e.box.H <= 0 {
		return false
	}
	pos := e.positions.Get(e.active)
	before := pos

	switch e.state {
	case Dragging:
		pos.X = clamp((p.X-e.offset.X-e.box.X)/e.box.W*100, badge.MinPercent, badge.MaxPercent)
		pos.Y = clamp((p.Y-e.offset.Y-e.box.Y)/e.box.H*100, badge.MinPercent, badge.MaxPercent)
	case Resizing:
		if e.active.IsText() {
			pos.FontSize = e.TextFontSize(p)
		} else {
			pos.Width = e.BoxWidth(p)
		}
	}
	if pos == before {
		return false
	}
	e.positions[e.active] = pos
	return true
}

// TextFontSize returns the font size a text resize to p yields for the
// active element.
func (e *Editor) TextFontSize(p Point) float64 {
	c := e.Center(e.active)
	widthPct := 2 * math.Abs(p.X-c.X) / e.box.W * 100
	return clamp(widthPct/e.divisor, badge.MinFontSize, badge.MaxFontSize)
}

// BoxWidth returns the width a box resize to p yields for the active
// element.
func (e *Editor) BoxWidth(p Point) float64 {
	pointerPct := (p.X - e.box.X) / e.box.W * 100
	x := e.positions.Get(e.active).X
	return clamp(math.Abs(pointerPct-x)*2, badge.MinBoxWidth, badge.MaxBoxWidth)
}

// Release ends the active gesture and commits the positions. The gesture
// state is cleared even when nothing was active.
func (e *Editor) Release() {
	active := e.state != Idle
	e.state, e.active, e.offset = Idle, "", Point{}
	if !active || e.closed {
		return
	}
	e.positions = e.positions.Clamped()
	e.custom = true
	e.emit()
}

// Leave handles the pointer leaving the container. It behaves like
// [Editor.Release].
func (e *Editor) Leave() { e.Release() }

// Reset replaces all positions with the defaults, disables custom
// positions and notifies subscribers.
func (e *Editor) Reset() {
	if e.closed {
		return
	}
	e.state, e.active, e.offset = Idle, "", Point{}
	e.positions = badge.DefaultPositions()
	e.custom = false
	e.emit()
}

// Sync adopts positions changed outside the editor. With snapping
// enabled the positions are rounded to the grid and, only when rounding
// changed them, pushed back to subscribers. It reports whether an update
// was emitted and fails with ErrBusy during a gesture.
func (e *Editor) Sync(p badge.Positions, custom bool) (bool, error) {
	switch {
	case e.closed:
		return false, ErrClosed
	case e.state != Idle:
		return false, ErrBusy
	}
	e.positions = fill(p)
	e.custom = custom
	if e.snapStep <= 0 {
		return false, nil
	}
	snapped := badge.Snap(e.positions, e.snapStep)
	if snapped.Equal(e.positions) {
		return false, nil
	}
	e.positions = snapped
	e.custom = true
	e.emit()
	return true, nil
}

// ApplyTo commits the working positions to cfg. Without custom positions
// it resets cfg's positions instead.
func (e *Editor) ApplyTo(cfg *badge.Configuration) {
	if !e.custom {
		cfg.ResetPositions()
		return
	}
	cfg.CommitPositions(e.positions)
}

// Subscription is a registered update callback.
type Subscription struct {
	editor *Editor
	id     int
}

// Subscribe registers fn for committed updates.
func (e *Editor) Subscribe(fn func(Update)) *Subscription {
	id := e.nextID
	e.nextID++
	if !e.closed {
		e.subs[id] = fn
	}
	return &Subscription{editor: e, id: id}
}

// Close removes the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil || s.editor == nil {
		return
	}
	delete(s.editor.subs, s.id)
	s.editor = nil
}

// Close removes every subscription and ends any gesture. Later calls on
// the editor are no-ops or return ErrClosed.
func (e *Editor) Close() {
	e.closed = true
	e.state, e.active, e.offset = Idle, "", Point{}
	clear(e.subs)
}

func (e *Editor) emit() {
	ids := make([]int, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fn, ok := e.subs[id]
		if !ok {
			continue
		}
		fn(Update{Positions: e.positions.Clone(), UseCustomPositions: e.custom})
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
