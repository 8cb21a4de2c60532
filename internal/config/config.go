// Package config resolves run settings from defaults, an optional YAML
// file, the environment and command-line flags, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/fextract/internal/diag"
	"github.com/agentic-research/fextract/internal/ingest"
)

// Environment variables read by FromEnv.
const (
	EnvConfig    = "FEXTRACT_CONFIG"
	EnvLogLevel  = "FEXTRACT_LOG_LEVEL"
	EnvRecursive = "FEXTRACT_RECURSIVE"
	EnvWorkers   = "FEXTRACT_WORKERS"
	EnvOutput    = "FEXTRACT_OUTPUT"
	EnvDisable   = "FEXTRACT_DISABLE"
)

// Config is the resolved run configuration.
type Config struct {
	Recursive bool
	LogLevel  string
	// Output is a file path; empty means stdout.
	Output  string
	Workers int
	// Disable names capabilities to switch off.
	Disable []string
	Summary bool
}

// Overlay is a partial configuration. Nil fields leave the base untouched.
type Overlay struct {
	Recursive *bool    `yaml:"recursive"`
	LogLevel  *string  `yaml:"log_level"`
	Output    *string  `yaml:"output"`
	Workers   *int     `yaml:"workers"`
	Disable   []string `yaml:"disable"`
	Summary   *bool    `yaml:"summary"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{LogLevel: "INFO", Workers: 1}
}

// LoadFile decodes a YAML overlay, rejecting unknown keys.
func LoadFile(path string) (Overlay, error) {
	var o Overlay
	raw, err := os.ReadFile(path)
	if err != nil {
		return o, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return o, fmt.Errorf("parse %s: %w", path, err)
	}
	return o, nil
}

// FromEnv builds an overlay from FEXTRACT_* variables.
func FromEnv(lookup func(string) (string, bool)) (Overlay, error) {
	var o Overlay
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		o.LogLevel = &v
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		o.Output = &v
	}
	if v, ok := lookup(EnvRecursive); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, fmt.Errorf("%s: %w", EnvRecursive, err)
		}
		o.Recursive = &b
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		o.Workers = &n
	}
	if v, ok := lookup(EnvDisable); ok && v != "" {
		o.Disable = SplitList(v)
	}
	return o, nil
}

// Merge applies over on top of base (later wins, no deep merge).
func Merge(base Config, over Overlay) Config {
	out := base
	if over.Recursive != nil {
		out.Recursive = *over.Recursive
	}
	if over.LogLevel != nil {
		out.LogLevel = strings.TrimSpace(*over.LogLevel)
	}
	if over.Output != nil {
		out.Output = *over.Output
	}
	if over.Workers != nil {
		out.Workers = *over.Workers
	}
	if over.Disable != nil {
		out.Disable = append([]string(nil), over.Disable...)
	}
	if over.Summary != nil {
		out.Summary = *over.Summary
	}
	return out
}

// Validate rejects unknown log levels, negative worker counts and unknown
// capability names.
func (c Config) Validate() error {
	var errs []error
	if _, err := diag.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	for _, name := range c.Disable {
		if _, err := ingest.ParseCapability(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolve layers defaults, the config file (path, or $FEXTRACT_CONFIG when
// empty), the environment and flags. A .env file in the working directory
// is loaded first without overriding variables already set.
func Resolve(path string, flags Overlay) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = Merge(cfg, file)
	}

	env, err := FromEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	cfg = Merge(cfg, env)
	cfg = Merge(cfg, flags)
	return cfg, cfg.Validate()
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
