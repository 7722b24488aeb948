package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/badgekit/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[print]
width_inches = 4
height_inches = 3
bleed_inches = 0.125

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
prefix = "kiosk-1"
ttl = "72h"

[fetch]
timeout = "5s"

[output]
dir = "badges"
formats = ["png", "pdf"]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Print == nil || cfg.Print.WidthInches != 4 || cfg.Print.BleedInches != 0.125 {
		t.Errorf("print = %+v", cfg.Print)
	}
	if cfg.Cache.Backend != cacheBackendRedis || cfg.Cache.TTL != 72*time.Hour || cfg.Cache.Prefix != "kiosk-1" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("fetch timeout = %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.Attempts != DefaultConfig().Fetch.Attempts {
		t.Errorf("attempts = %d, want default kept", cfg.Fetch.Attempts)
	}
	if cfg.Output.Dir != "badges" || len(cfg.Output.Formats) != 2 {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[cache\nbackend = 1"},
		{"unknown key", "[cache]\nbackend = \"file\"\ncolour = \"red\""},
		{"unknown backend", "[cache]\nbackend = \"memcached\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"negative attempts", "[fetch]\nattempts = -1"},
		{"bad units", "[print]\nwidth_inches = 3\nunits = \"furlong\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("LoadConfig() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !os.IsNotExist(err) {
		t.Errorf("LoadConfig() error = %v, want not-exist", err)
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}
