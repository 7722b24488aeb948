package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/badgekit/pkg/badge"
)

// WriteConfiguration encodes cfg as indented JSON and writes it to w.
// The output can be read back with [ReadConfiguration].
func WriteConfiguration(cfg badge.Configuration, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportConfiguration writes cfg to path, replacing the file atomically.
func ExportConfiguration(cfg badge.Configuration, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".badge-config-*.json")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteConfiguration(cfg, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
