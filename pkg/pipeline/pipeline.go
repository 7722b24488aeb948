// Package pipeline runs the prepare → render → export pipeline for one
// badge design and any number of visitors.
//
// This package is the single entry point the CLI uses for badge output,
// so template application, caching and batching behave the same for the
// render and print commands.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Prepare: apply the layout template (if any) and print settings to
//     the configuration and validate the result
//  2. Render: paint one surface per visitor with the render engine
//  3. Export: encode each surface in every requested format
//
// Render and export run together per visitor and are cached by the hash
// of the prepared configuration, the visitor and the format. Visitors are
// processed concurrently up to Options.Jobs.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, exporter, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:     cfg,
//	    TemplateID: "cr80-landscape",
//	    Formats:    []string{"png", "pdf"},
//	    Visitors:   visitors,
//	})
//	for _, a := range result.Artifacts {
//	    export.Save("out", a)
//	}
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/export"
	"github.com/matzehuels/badgekit/pkg/units"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultJobs is the number of visitors rendered concurrently.
	DefaultJobs = 4

	// MaxJobs bounds Options.Jobs.
	MaxJobs = 64
)

// DefaultFormats are exported when Options.Formats is empty.
var DefaultFormats = []string{string(export.FormatPNG)}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Config is the badge design.
	Config badge.Configuration `json:"config"`

	// TemplateID applies a catalog template before rendering.
	TemplateID string `json:"template_id,omitempty"`

	// Print overrides the print settings of Config and the template.
	Print *units.PrintSettings `json:"print,omitempty"`

	// AlbumCode is used for visitors without their own code.
	AlbumCode string `json:"album_code,omitempty"`

	// Visitors are rendered one badge each. Without visitors a single
	// sample badge is rendered.
	Visitors []badge.Visitor `json:"visitors,omitempty"`

	// Name replaces the badge-{code} base name of every artifact.
	// Repeated names still get -2, -3 suffixes.
	Name string `json:"name,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Jobs    int      `json:"jobs,omitempty"`

	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	formats   []export.Format
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Config is the prepared configuration that was rendered.
	Config badge.Configuration

	// ConfigHash is the content hash of the prepared configuration.
	ConfigHash string

	// Artifacts are ordered by visitor, then by format.
	Artifacts []*export.Artifact

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Badges      int
	Bytes       int
	PrepareTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo counts artifact cache lookups.
type CacheInfo struct {
	Hits   int
	Misses int
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats parses every format.
func ValidateFormats(formats []string) ([]export.Format, error) {
	out := make([]export.Format, 0, len(formats))
	seen := make(map[export.Format]bool)
	for _, s := range formats {
		f, err := export.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// ValidateJobs checks the concurrency limit.
func ValidateJobs(jobs int) error {
	if jobs < 1 || jobs > MaxJobs {
		return errors.New(errors.ErrCodeInvalidInput, "jobs must be between 1 and %d, got %d", MaxJobs, jobs)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	if o.Jobs == 0 {
		o.Jobs = DefaultJobs
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}

	formats, err := ValidateFormats(o.Formats)
	if err != nil {
		return err
	}
	if err := ValidateJobs(o.Jobs); err != nil {
		return err
	}
	if err := errors.ValidateAlbumCode(o.AlbumCode); err != nil {
		return err
	}
	for i, v := range o.Visitors {
		if err := errors.ValidateAlbumCode(v.AlbumCode); err != nil {
			return fmt.Errorf("visitor %d: %w", i+1, err)
		}
	}
	if o.Name != "" {
		if err := errors.ValidateAlbumCode(o.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "file name %q", o.Name)
		}
	}
	if o.TemplateID != "" {
		if err := errors.ValidateTemplateID(o.TemplateID); err != nil {
			return err
		}
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}

	o.formats = formats
	o.validated = true
	return nil
}

// visitors returns the visitors to render; nil stands for the sample
// badge.
func (o *Options) visitors() []*badge.Visitor {
	if len(o.Visitors) == 0 {
		return []*badge.Visitor{nil}
	}
	out := make([]*badge.Visitor, len(o.Visitors))
	for i := range o.Visitors {
		out[i] = &o.Visitors[i]
	}
	return out
}
