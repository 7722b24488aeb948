package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/cache"
	"github.com/matzehuels/badgekit/pkg/catalog"
	"github.com/matzehuels/badgekit/pkg/export"
	"github.com/matzehuels/badgekit/pkg/observability"
	"github.com/matzehuels/badgekit/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Exporter *export.Exporter
	Catalog  *catalog.Catalog
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil keyer uses the DefaultKeyer, a nil
// cache disables caching, a nil exporter renders with a default engine,
// and the built-in template catalog is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, exporter *export.Exporter, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if exporter == nil {
		exporter = export.New(render.NewEngine(render.WithLogger(logger)), export.WithLogger(logger))
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Exporter: exporter,
		Catalog:  catalog.Builtin(),
		Logger:   logger,
	}
}

// Execute runs the complete pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Prepare
	prepareStart := time.Now()
	cfg, err := r.Prepare(opts)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	configHash, err := cache.HashJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash configuration: %w", err)
	}
	result.Config = cfg
	result.ConfigHash = configHash
	result.Stats.PrepareTime = time.Since(prepareStart)

	// Stages 2 and 3: Render and export per visitor
	renderStart := time.Now()
	visitors := opts.visitors()
	perVisitor := make([][]*export.Artifact, len(visitors))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, v := range visitors {
		in := render.Input{Config: cfg, AlbumCode: opts.AlbumCode, Visitor: v}
		g.Go(func() error {
			artifacts := make([]*export.Artifact, 0, len(opts.formats))
			for _, f := range opts.formats {
				a, hit, err := r.RenderArtifact(gctx, f, in, configHash, opts.Refresh)
				if err != nil {
					return fmt.Errorf("badge %d (%s): %w", i+1, f, err)
				}
				mu.Lock()
				if hit {
					result.CacheInfo.Hits++
				} else {
					result.CacheInfo.Misses++
				}
				mu.Unlock()
				artifacts = append(artifacts, a)
			}
			perVisitor[i] = artifacts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, as := range perVisitor {
		result.Artifacts = append(result.Artifacts, as...)
	}
	if opts.Name != "" {
		for _, a := range result.Artifacts {
			a.Name = opts.Name + "." + string(a.Format)
		}
	}
	uniqueNames(result.Artifacts)
	for _, a := range result.Artifacts {
		result.Stats.Bytes += len(a.Data)
	}
	result.Stats.Badges = len(visitors)
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered badges",
		"badges", result.Stats.Badges,
		"artifacts", len(result.Artifacts),
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Prepare returns the configuration to render: opts.Config with the
// template applied and the print override stored on it.
func (r *Runner) Prepare(opts Options) (badge.Configuration, error) {
	cfg := opts.Config.Clone()
	if opts.TemplateID != "" {
		t, err := r.Catalog.Lookup(opts.TemplateID)
		if err != nil {
			return badge.Configuration{}, err
		}
		cfg = catalog.Apply(t, cfg)
		r.Logger.Debug("applied template", "id", t.ID, "layout", t.Layout)
	}
	if opts.Print != nil {
		p := *opts.Print
		cfg.Print = &p
	}
	if err := cfg.Validate(); err != nil {
		return badge.Configuration{}, err
	}
	return cfg, nil
}

// RenderArtifact renders and encodes one artifact, consulting the cache
// first unless refresh is set. It reports whether the artifact came from
// the cache.
func (r *Runner) RenderArtifact(ctx context.Context, f export.Format, in render.Input, configHash string, refresh bool) (*export.Artifact, bool, error) {
	key := r.Keyer.ArtifactKey(configHash, cache.ArtifactKeyOpts{
		Format:    string(f),
		AlbumCode: in.AlbumCode,
		Visitor:   visitorHash(in.Visitor),
	})
	name := export.FileName(artifactCode(in), f)
	w, h := in.PrintSettings().TotalPixels()

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return &export.Artifact{Name: name, Format: f, Data: data, Width: w, Height: h}, true, nil
		} else if err != nil {
			r.Logger.Warn("artifact cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	a, err := r.Exporter.Export(ctx, f, in)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, a.Data, cache.ArtifactTTL); err != nil {
		r.Logger.Warn("artifact cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(a.Data))
	}
	return a, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func visitorHash(v *badge.Visitor) string {
	if v == nil {
		return ""
	}
	h, err := cache.HashJSON(v)
	if err != nil {
		return ""
	}
	return h
}

func artifactCode(in render.Input) string {
	if in.Visitor != nil && in.Visitor.AlbumCode != "" {
		return in.Visitor.AlbumCode
	}
	return in.AlbumCode
}

// uniqueNames suffixes repeated artifact names with -2, -3, ... skipping
// suffixed names that another artifact already uses.
func uniqueNames(artifacts []*export.Artifact) {
	taken := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		taken[a.Name] = true
	}
	seen := make(map[string]int)
	for _, a := range artifacts {
		seen[a.Name]++
		n := seen[a.Name]
		if n == 1 {
			continue
		}
		ext := "." + string(a.Format)
		base := strings.TrimSuffix(a.Name, ext)
		name := fmt.Sprintf("%s-%d%s", base, n, ext)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s-%d%s", base, n, ext)
		}
		seen[a.Name] = n
		taken[name] = true
		a.Name = name
	}
}
