// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config holds the vfxgen command configuration, read from TOML.
//
// Example vfxgen.toml:
//
//	templates = "shaders"
//	output = "build/shaders"
//	modes = ["debug", "runtime"]
//	threads_per_group = 64
//	log_level = "info"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/vfxgen/codegen"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "vfxgen.toml"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// Config configures shader generation.
type Config struct {
	// Templates is a directory of templates. Empty selects the built-in set.
	Templates string `toml:"templates"`

	// Output is the directory receiving generated shaders.
	Output string `toml:"output"`

	// Modes lists the compilation modes to generate.
	Modes []string `toml:"modes"`

	Includes        []string `toml:"includes"`
	ThreadsPerGroup int      `toml:"threads_per_group"`
	CBufferName     string   `toml:"cbuffer_name"`
	RegisterSpace   uint8    `toml:"register_space"`

	// RegexTimeoutMS bounds each attribute filter match. Zero disables it.
	RegexTimeoutMS int `toml:"regex_timeout_ms"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := codegen.DefaultOptions()
	return &Config{
		Output:          ".",
		Modes:           []string{"runtime"},
		Includes:        opts.Includes,
		ThreadsPerGroup: opts.ThreadsPerGroup,
		CBufferName:     opts.CBufferName,
		RegexTimeoutMS:  100,
		LogLevel:        "warn",
	}
}

// Load reads path over the defaults. A missing file is an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode reads a TOML document over the defaults and validates the result.
// Unknown keys are rejected. Lists given in the document replace the
// default lists.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	modes, includes := c.Modes, c.Includes
	c.Modes, c.Includes = nil, nil

	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.TrimSpace(strict.String()))
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Modes == nil {
		c.Modes = modes
	}
	if c.Includes == nil {
		c.Includes = includes
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if len(c.Modes) == 0 {
		return fmt.Errorf("%w: no modes", ErrInvalid)
	}
	if _, err := c.ParsedModes(); err != nil {
		return err
	}
	if c.ThreadsPerGroup <= 0 || c.ThreadsPerGroup > 1024 {
		return fmt.Errorf("%w: threads_per_group %d out of range 1..1024", ErrInvalid, c.ThreadsPerGroup)
	}
	if c.RegexTimeoutMS < 0 {
		return fmt.Errorf("%w: negative regex_timeout_ms", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ParsedModes returns the configured modes.
func (c *Config) ParsedModes() ([]codegen.Mode, error) {
	modes := make([]codegen.Mode, 0, len(c.Modes))
	for _, s := range c.Modes {
		m, err := codegen.ParseMode(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return l, nil
}

// Options returns generator options reading templates from templates.
func (c *Config) Options(templates fs.FS, logger *slog.Logger) codegen.Options {
	return codegen.Options{
		Templates:       templates,
		Includes:        c.Includes,
		ThreadsPerGroup: c.ThreadsPerGroup,
		CBufferName:     c.CBufferName,
		RegisterSpace:   c.RegisterSpace,
		RegexTimeout:    time.Duration(c.RegexTimeoutMS) * time.Millisecond,
		Logger:          logger,
	}
}
