// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shared holds the flags and helpers used by more than one subcommand.
package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/config"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/generator"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
	"github.com/matt-FFFFFF/posterbatch/internal/theme"
	"github.com/urfave/cli/v3"
)

const (
	GeneratorDirFlag = "generator-dir"
	PythonFlag       = "python"
	ScriptFlag       = "script"
	OutputDirFlag    = "output-dir"
	ThemesDirFlag    = "themes-dir"
	EnvFlag          = "env"
	FileFlag         = "file"

	GeneratorDirEnvVar = "POSTERBATCH_GENERATOR_DIR"
	PythonEnvVar       = "POSTERBATCH_PYTHON"
)

// ErrNoBatch is returned when a command needs at least one batch and none was given.
var ErrNoBatch = errors.New("no batch specified, name a built-in batch or pass --file")

// GeneratorFlags are the flags that locate the external generator.
func GeneratorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      GeneratorDirFlag,
			Aliases:   []string{"C"},
			Usage:     "Directory containing the poster generator; it is the working directory of every invocation",
			Sources:   cli.EnvVars(GeneratorDirEnvVar),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:     PythonFlag,
			Usage:    "Python interpreter name or path",
			Sources:  cli.EnvVars(PythonEnvVar),
			Value:    generator.DefaultPython,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      ScriptFlag,
			Usage:     "Generator script, relative to the generator directory",
			Value:     generator.DefaultScript,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      OutputDirFlag,
			Usage:     "Directory the generator writes posters to, relative to the generator directory",
			Value:     generator.DefaultOutputDir,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      ThemesDirFlag,
			Usage:     "Theme directory used for validation, defaults to <generator-dir>/themes",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringMapFlag{
			Name:  EnvFlag,
			Usage: "KEY=VALUE added to the generator's environment, overriding inherited values. Repeatable",
		},
	}
}

// FileFlagDef is the repeatable --file flag naming batch definitions by go-getter URL.
func FileFlagDef() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    FileFlag,
		Aliases: []string{"f"},
		Usage: "URL of a YAML or HCL batch definition. " +
			"Supports Hashicorp's go-getter syntax for fetching files from various sources. " +
			"Specify multiple times to run several files in order.",
		TakesFile: true,
	}
}

// Generator builds a generator from the flags of cmd.
func Generator(cmd *cli.Command) *generator.Generator {
	return &generator.Generator{
		Dir:       cmd.String(GeneratorDirFlag),
		Python:    cmd.String(PythonFlag),
		Script:    cmd.String(ScriptFlag),
		OutputDir: cmd.String(OutputDirFlag),
		Env:       cmd.StringMap(EnvFlag),
	}
}

// ThemesDir returns the theme directory from flags, falling back to the generator's.
func ThemesDir(cmd *cli.Command) string {
	if dir := cmd.String(ThemesDirFlag); dir != "" {
		return dir
	}

	return Generator(cmd).ThemesDir()
}

// Sources returns the batch sources of cmd: positional arguments then --file values.
func Sources(cmd *cli.Command) []string {
	var srcs []string

	for _, a := range cmd.Args().Slice() {
		if a = strings.TrimSpace(a); a != "" {
			srcs = append(srcs, a)
		}
	}

	for _, f := range cmd.StringSlice(FileFlag) {
		if f = strings.TrimSpace(f); f != "" {
			srcs = append(srcs, f)
		}
	}

	return srcs
}

// LoadBatch loads every source and joins them in order. A single source keeps its own name.
func LoadBatch(ctx context.Context, srcs []string) (*batch.Batch, error) {
	if len(srcs) == 0 {
		return nil, ErrNoBatch
	}

	batches := make([]*batch.Batch, 0, len(srcs))
	names := make([]string, 0, len(srcs))

	for _, src := range srcs {
		b, err := config.Load(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}

		ctxlog.Debug(ctx, "loaded batch", "src", src, "name", b.Name, "entries", b.Len())

		batches = append(batches, b)
		names = append(names, b.Name)
	}

	if len(batches) == 1 {
		return batches[0], nil
	}

	return batch.Concat(strings.Join(names, "+"), batches...), nil
}

// Validate checks b before anything runs. The theme check is skipped when no
// catalogue can be read.
func Validate(ctx context.Context, b *batch.Batch, styleAvailable bool, themesDir string) error {
	opts := batch.ValidateOptions{StyleAvailable: styleAvailable}

	catalog, err := theme.Load(themesDir)

	switch {
	case catalog == nil:
		ctxlog.Info(ctx, "theme catalogue unavailable, themes will not be checked", "dir", themesDir, "error", err)
	case err != nil:
		ctxlog.Warn(ctx, "some themes could not be read", "dir", themesDir, "error", err)

		opts.Themes = catalog
	default:
		opts.Themes = catalog
	}

	return b.Validate(opts)
}

// Writer is where a command prints. Subcommands share the root command's writer.
func Writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

// ErrWriter is where a command prints diagnostics.
func ErrWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}

	return os.Stderr
}

// CommandPreview renders generator command lines without resolving the interpreter.
type CommandPreview struct {
	Generator *generator.Generator
}

// CommandLine returns the shell-quoted command that would run e.
func (p *CommandPreview) CommandLine(e batch.Entry) string {
	python := p.Generator.Python
	if python == "" {
		python = generator.DefaultPython
	}

	c := &runbatch.OSCommand{Path: python, Args: p.Generator.Args(e)}

	return c.CommandLine()
}
