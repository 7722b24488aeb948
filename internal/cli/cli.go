// Package cli implements the badgekit command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/badgekit/pkg/asset"
	"github.com/matzehuels/badgekit/pkg/buildinfo"
	"github.com/matzehuels/badgekit/pkg/cache"
	"github.com/matzehuels/badgekit/pkg/catalog"
	"github.com/matzehuels/badgekit/pkg/export"
	"github.com/matzehuels/badgekit/pkg/httputil"
	"github.com/matzehuels/badgekit/pkg/pipeline"
	"github.com/matzehuels/badgekit/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "badgekit"

	// configFileName is looked up in the XDG config directory.
	configFileName = "badgekit.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Badgekit lays out, renders and prints event badges",
		Long:          `Badgekit turns a declarative badge configuration into pixel-accurate PNG previews and print-ready PDF documents with bleed, and lets you position badge elements interactively in the terminal.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+filepath.Join("$XDG_CONFIG_HOME", appName, configFileName)+")")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.printCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the explicit --config file, or the default one when it
// exists.
func (c *CLI) loadConfig() error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, configFileName)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The cache backs both
// downloaded assets and rendered artifacts.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	cat, err := c.catalog()
	if err != nil {
		ch.Close()
		return nil, err
	}
	exporter, err := c.newExporter(ch)
	if err != nil {
		ch.Close()
		return nil, err
	}
	runner := pipeline.NewRunner(ch, c.keyer(), exporter, c.Logger)
	runner.Catalog = cat
	return runner, nil
}

// newExporter wires the render engine into an exporter.
func (c *CLI) newExporter(ch cache.Cache) (*export.Exporter, error) {
	engine, err := c.newEngine(ch)
	if err != nil {
		return nil, err
	}
	return export.New(engine, export.WithLogger(c.Logger)), nil
}

// newEngine creates a render engine whose asset loader fetches with the
// configured timeout and retries, caches in ch, and resolves relative
// image paths against the working directory.
func (c *CLI) newEngine(ch cache.Cache) (*render.Engine, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	client := httputil.NewClient(
		httputil.WithTimeout(c.Config.Fetch.Timeout),
		httputil.WithRetry(c.Config.Fetch.Attempts, 0),
	)
	loader := asset.NewLoader(
		asset.WithClient(client),
		asset.WithCache(ch, c.keyer()),
		asset.WithTTL(c.Config.Cache.TTL),
		asset.WithBaseDir(wd),
		asset.WithLogger(c.Logger),
	)
	return render.NewEngine(render.WithLoader(loader), render.WithLogger(c.Logger)), nil
}

func (c *CLI) keyer() cache.Keyer {
	k := cache.NewDefaultKeyer()
	if c.Config.Cache.Prefix != "" {
		k = cache.NewScopedKeyer(k, c.Config.Cache.Prefix)
	}
	return k
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case cacheBackendNone:
		return cache.NewNullCache(), nil
	case cacheBackendRedis:
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// catalog returns the built-in templates merged with the configured
// template files.
func (c *CLI) catalog() (*catalog.Catalog, error) {
	cat := catalog.Builtin()
	for _, path := range c.Config.Templates.Files {
		ts, err := catalog.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if cat, err = cat.Merge(ts...); err != nil {
			return nil, err
		}
		c.Logger.Debug("loaded templates", "path", path, "count", len(ts))
	}
	return cat, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/badgekit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/badgekit/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return pipeline.DefaultFormats
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
