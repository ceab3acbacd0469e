// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gogpu/vfxgen"
	"github.com/gogpu/vfxgen/config"
)

// options holds the flags shared by every subcommand.
type options struct {
	configPath string
	templates  string
	output     string
	modes      []string
	logLevel   string
	jobs       int

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "vfxgen",
		Short:         "Generate HLSL particle shaders from system descriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "", "configuration file (default: ./"+config.FileName+" when present)")
	f.StringVarP(&o.templates, "templates", "t", "", "template directory (default: built-in templates)")
	f.StringVarP(&o.output, "output", "o", "", "output directory")
	f.StringSliceVarP(&o.modes, "mode", "m", nil, "compilation modes: debug, runtime")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.IntVarP(&o.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "systems generated in parallel")

	cmd.AddCommand(
		newGenerateCommand(o),
		newWatchCommand(o),
		newVersionCommand(o),
	)
	return cmd
}

// loadConfig reads the configuration file, then applies the flags the user
// set explicitly.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case o.configPath != "":
		cfg, err = config.Load(o.configPath)
	default:
		if _, statErr := os.Stat(config.FileName); statErr == nil {
			cfg, err = config.Load(config.FileName)
		} else if errors.Is(statErr, fs.ErrNotExist) {
			cfg = config.Default()
		} else {
			err = fmt.Errorf("config: %w", statErr)
		}
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("templates") {
		cfg.Templates = o.templates
	}
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("mode") {
		cfg.Modes = o.modes
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRunner resolves the configuration into compile options and a logger.
func (o *options) newRunner(cmd *cobra.Command) (*runner, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
	vfxgen.SetLogger(log)

	modes, err := cfg.ParsedModes()
	if err != nil {
		return nil, err
	}
	templates := vfxgen.Templates()
	if cfg.Templates != "" {
		templates = os.DirFS(cfg.Templates)
	}

	jobs := o.jobs
	if jobs < 1 {
		jobs = 1
	}
	return &runner{
		cfg: cfg,
		opts: vfxgen.CompileOptions{
			Modes:     modes,
			Generator: cfg.Options(templates, log),
		},
		log:  log,
		jobs: jobs,
		out:  o.stdout,
	}, nil
}
