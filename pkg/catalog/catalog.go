// Package catalog provides named layout templates.
//
// A [Template] bundles a badge shape, print settings and, optionally,
// element positions, a background and size overrides. The built-in
// presets cover common card stock; additional templates can be loaded
// from YAML files and merged over them by id:
//
//	cat := catalog.Builtin()
//	extra, err := catalog.LoadFile("templates.yaml")
//	if err == nil {
//	    cat, err = cat.Merge(extra...)
//	}
//	t, err := cat.Lookup("cr80-landscape")
//	cfg = catalog.Apply(t, cfg)
package catalog

import (
	stderrors "errors"
	"sort"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/units"
)

// ErrDuplicateTemplate is returned by [New] when two templates share an id.
var ErrDuplicateTemplate = stderrors.New("duplicate template id")

// Template is an immutable layout preset.
type Template struct {
	ID              string              `yaml:"id" json:"id"`
	Name            string              `yaml:"name" json:"name"`
	Description     string              `yaml:"description,omitempty" json:"description,omitempty"`
	Layout          badge.Layout        `yaml:"layout" json:"layout"`
	Print           units.PrintSettings `yaml:"print" json:"print"`
	Positions       badge.Positions     `yaml:"positions,omitempty" json:"positions,omitempty"`
	BackgroundColor string              `yaml:"backgroundColor,omitempty" json:"backgroundColor,omitempty"`
	BackgroundURL   string              `yaml:"backgroundUrl,omitempty" json:"backgroundUrl,omitempty"`
	QRSize          badge.Size          `yaml:"qrSize,omitempty" json:"qrSize,omitempty"`
	PhotoSize       badge.Size          `yaml:"photoSize,omitempty" json:"photoSize,omitempty"`
}

// Validate checks the template id and enumerated fields.
func (t Template) Validate() error {
	if err := errors.ValidateTemplateID(t.ID); err != nil {
		return err
	}
	if !t.Layout.Valid() {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: unknown layout %q", t.ID, t.Layout)
	}
	if t.QRSize != "" && !t.QRSize.Valid() {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: unknown qr size %q", t.ID, t.QRSize)
	}
	if t.PhotoSize != "" && !t.PhotoSize.Valid() {
		return errors.New(errors.ErrCodeInvalidTemplate, "template %s: unknown photo size %q", t.ID, t.PhotoSize)
	}
	for k := range t.Positions {
		if !k.Valid() {
			return errors.New(errors.ErrCodeInvalidTemplate, "template %s: unknown element %q", t.ID, k)
		}
	}
	return nil
}

// Catalog is a read-only, ordered set of templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// New builds a catalog from ts, preserving order. Every template is
// validated and ids must be unique.
func New(ts ...Template) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(ts))}
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.byID[t.ID]; ok {
			return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, ErrDuplicateTemplate, "template %s", t.ID)
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// List returns all templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// IDs returns the sorted template ids.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the template with the given id.
func (c *Catalog) Lookup(id string) (Template, error) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, errors.New(errors.ErrCodeTemplateNotFound, "unknown template %q", id)
	}
	t := c.templates[i]
	t.Positions = t.Positions.Clone()
	return t, nil
}

// Merge returns a new catalog with ts added. A template whose id already
// exists replaces the existing one in place.
func (c *Catalog) Merge(ts ...Template) (*Catalog, error) {
	all := c.List()
	for _, t := range ts {
		if i, ok := c.byID[t.ID]; ok {
			all[i] = t
			continue
		}
		all = append(all, t)
	}
	return New(all...)
}

// Apply returns cfg with template t applied. Layout, print settings and
// template id are replaced. Positions are replaced by the template's when
// it carries any, otherwise the currently active positions are kept; in
// both cases custom positioning is enabled. Background and size overrides
// apply only when the template sets them. Every other field of cfg is
// preserved.
func Apply(t Template, cfg badge.Configuration) badge.Configuration {
	out := cfg.Clone()
	out.Layout = t.Layout
	out.LayoutTemplateID = t.ID

	ps := units.Normalize(&t.Print)
	out.Print = &ps

	positions := t.Positions
	if len(positions) == 0 {
		positions = cfg.ActivePositions()
	}
	out.CommitPositions(positions.Clone())

	if t.BackgroundColor != "" {
		out.BackgroundColor = t.BackgroundColor
	}
	if t.BackgroundURL != "" {
		out.BackgroundURL = t.BackgroundURL
	}
	if t.QRSize != "" {
		out.QRCode.Size = t.QRSize
	}
	if t.PhotoSize != "" {
		out.PhotoPlacement.Size = t.PhotoSize
	}
	return out
}
