package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/badgekit/pkg/badge"
	"github.com/matzehuels/badgekit/pkg/errors"
	"github.com/matzehuels/badgekit/pkg/units"
)

// ReadConfiguration decodes and validates a configuration from r.
// ReadConfiguration does not close r.
func ReadConfiguration(r io.Reader) (badge.Configuration, error) {
	var cfg badge.Configuration
	if err := decode(r, &cfg); err != nil {
		return badge.Configuration{}, err
	}
	if err := cfg.Validate(); err != nil {
		return badge.Configuration{}, err
	}
	return cfg, nil
}

// ImportConfiguration reads a configuration file.
func ImportConfiguration(path string) (badge.Configuration, error) {
	var cfg badge.Configuration
	err := withFile(path, func(f io.Reader) (err error) {
		cfg, err = ReadConfiguration(f)
		return err
	})
	return cfg, err
}

// ReadPrintSettings decodes print settings from r. The result is not
// normalized, so unset fields stay zero and merge with the defaults
// later.
func ReadPrintSettings(r io.Reader) (units.PrintSettings, error) {
	var s units.PrintSettings
	if err := decode(r, &s); err != nil {
		return units.PrintSettings{}, err
	}
	if s.Units != "" && !s.Units.Valid() {
		return units.PrintSettings{}, errors.New(errors.ErrCodeInvalidConfig, "unknown units %q", s.Units).
			WithHint("use in or mm")
	}
	return s, nil
}

// ImportPrintSettings reads a print settings file.
func ImportPrintSettings(path string) (units.PrintSettings, error) {
	var s units.PrintSettings
	err := withFile(path, func(f io.Reader) (err error) {
		s, err = ReadPrintSettings(f)
		return err
	})
	return s, err
}

// ReadVisitors decodes a visitor object or an array of visitors from r
// and validates their album codes.
func ReadVisitors(r io.Reader) ([]badge.Visitor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)

	var visitors []badge.Visitor
	if bytes.HasPrefix(data, []byte("[")) {
		err = json.Unmarshal(data, &visitors)
	} else {
		var v badge.Visitor
		err = json.Unmarshal(data, &v)
		visitors = []badge.Visitor{v}
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode visitors")
	}
	for i, v := range visitors {
		if err := errors.ValidateAlbumCode(v.AlbumCode); err != nil {
			return nil, fmt.Errorf("visitor %d: %w", i+1, err)
		}
	}
	return visitors, nil
}

// ImportVisitors reads a visitors file.
func ImportVisitors(path string) ([]badge.Visitor, error) {
	var vs []badge.Visitor
	err := withFile(path, func(f io.Reader) (err error) {
		vs, err = ReadVisitors(f)
		return err
	})
	return vs, err
}

func decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	return nil
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
