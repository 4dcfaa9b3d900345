// SPDX-License-Identifier: BSD-2-Clause
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hyply-dev/hyply"
)

var (
	noColor    bool
	verbose    bool
	workers    int
	configPath string
)

// fileConfig is the shape of --config's YAML file: worker count and extra
// ignore globs layered on top of the catalog's built-in defaults (§(new)
// AMBIENT STACK "Configuration").
type fileConfig struct {
	Workers      int      `yaml:"workers"`
	IgnoreGlobs  []string `yaml:"ignore_globs"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hyply [path]",
		Version: version,
		Short:   "Identify the programming language of a file, or break down a directory tree by language",
		Long: `hyply identifies the programming language of a single file, or walks a
directory tree in parallel and reports the share of files attributed to
each language it finds.

Detection runs a staged pipeline: filename, then extension, then
interpreter (shebang), then source heuristics, then a token classifier --
each stage only runs if the previous ones did not settle on a single
language.`,
		Example: `  hyply main.rs                  # detect a single file
  hyply ./src                    # break down a directory
  hyply --workers 4 ./src        # cap the detection worker pool
  hyply lang list                # list every known language
  hyply lang extensions Go       # list Go's recognized extensions`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || !isTerminal(os.Stdout) {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runIdentify(cmd.Context(), args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	cmd.PersistentFlags().IntVar(&workers, "workers", 0, "detection worker pool size (0 = one worker per CPU)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config overriding worker count and ignore globs")

	cmd.AddCommand(newLangCmd())

	return cmd
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runIdentify(ctx context.Context, path string) error {
	id, err := hyply.Open()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return &pathError{path: path, err: err}
	}

	fileCfg, err := loadFileConfig(configPath)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return runBreakdown(ctx, id, path, fileCfg)
	}
	return runDetect(id, path)
}

func runDetect(id *hyply.Identifier, path string) error {
	d, ok, err := id.Detect(path)
	if err != nil {
		return fmt.Errorf("detecting %s: %w", path, err)
	}
	if !ok {
		fmt.Println("unknown")
		return nil
	}
	fmt.Println(d.Language)
	return nil
}

func runBreakdown(ctx context.Context, id *hyply.Identifier, path string, fileCfg fileConfig) error {
	poolSize := workers
	if poolSize == 0 {
		poolSize = fileCfg.Workers
	}

	opts := []hyply.BreakdownOption{hyply.WithLogger(newLogger())}
	if poolSize > 0 {
		opts = append(opts, hyply.WithWorkers(poolSize))
	}
	if len(fileCfg.IgnoreGlobs) > 0 {
		opts = append(opts, hyply.WithExtraIgnoreGlobs(fileCfg.IgnoreGlobs))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	bd, err := id.GetLanguageBreakdown(ctx, path, opts...)
	if err != nil {
		return fmt.Errorf("walking %s: %w", path, err)
	}

	renderBreakdown(bd)
	return nil
}

type pathError struct {
	path string
	err  error
}

func (e *pathError) Error() string { return fmt.Sprintf("%s: %v", e.path, e.err) }
func (e *pathError) Unwrap() error { return e.err }
