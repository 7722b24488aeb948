package cli

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/badgekit/pkg/cache"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/httputil"
	"github.com/matzehuels/badgekit/pkg/units"
)

const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Config holds persistent CLI defaults read from badgekit.toml:
//
//	[print]
//	width_inches = 4
//	height_inches = 3
//	bleed_inches = 0.125
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[fetch]
//	timeout = "10s"
//	attempts = 2
//
//	[templates]
//	files = ["~/badges/templates.yaml"]
//
//	[output]
//	dir = "badges"
//	formats = ["png", "pdf"]
type Config struct {
	// Print is used when neither the configuration nor --print sets print
	// settings.
	Print *units.PrintSettings `toml:"print"`

	Cache     CacheConfig     `toml:"cache"`
	Fetch     FetchConfig     `toml:"fetch"`
	Templates TemplatesConfig `toml:"templates"`
	Output    OutputConfig    `toml:"output"`
}

// CacheConfig selects the cache backend shared by assets and artifacts.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// FetchConfig tunes remote asset downloads.
type FetchConfig struct {
	Timeout  time.Duration `toml:"timeout"`
	Attempts int           `toml:"attempts"`
}

// TemplatesConfig lists YAML template catalogs merged over the built-ins.
type TemplatesConfig struct {
	Files []string `toml:"files"`
}

// OutputConfig sets defaults for render output.
type OutputConfig struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Backend: cacheBackendFile,
			TTL:     cache.AssetTTL,
		},
		Fetch: FetchConfig{
			Timeout:  httputil.DefaultTimeout,
			Attempts: httputil.DefaultAttempts,
		},
		Output: OutputConfig{Dir: "."},
	}
}

// LoadConfig decodes path over DefaultConfig. Errors from opening the
// file are returned unwrapped so callers can test them with os.IsNotExist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		var pathErr *fs.PathError
		if stderrors.As(err, &pathErr) {
			return Config{}, err
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case cacheBackendFile, cacheBackendNone:
	case cacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend).
			WithHint("use file, redis or none")
	}
	if c.Cache.TTL < 0 || c.Fetch.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	if c.Fetch.Attempts < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "fetch attempts must not be negative")
	}
	if c.Print != nil && c.Print.Units != "" && !c.Print.Units.Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown units %q", c.Print.Units)
	}
	return nil
}
