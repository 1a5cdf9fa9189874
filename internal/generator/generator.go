// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
	"github.com/spf13/afero"
)

const (
	// DefaultPython is the interpreter looked up on PATH when none is configured.
	DefaultPython = "python3"
	// DefaultScript is the generator entry point, relative to the generator directory.
	DefaultScript = "create_map_poster.py"
	// DefaultOutputDir is where the generator writes posters, relative to the generator directory.
	DefaultOutputDir = "posters"
	// DefaultThemesDir holds the generator's theme records, relative to the generator directory.
	DefaultThemesDir = "themes"
	// StyleTokenEnvVar must be set for entries that request AI styling.
	StyleTokenEnvVar = "REPLICATE_API_TOKEN"
)

var (
	// ErrInterpreterNotFound is returned when the interpreter is not on PATH.
	ErrInterpreterNotFound = errors.New("interpreter not found")
	// ErrScriptNotFound is returned when the generator script does not exist.
	ErrScriptNotFound = errors.New("generator script not found")
	// ErrGeneratorDir is returned when the generator directory is not usable.
	ErrGeneratorDir = errors.New("generator directory is not a directory")
)

// FS is the filesystem used to check the generator and find posters.
var FS = afero.NewOsFs()

var (
	_ runbatch.Builder           = (*Generator)(nil)
	_ runbatch.ArtifactLocator   = (*Generator)(nil)
	_ runbatch.ArtifactPredictor = (*Generator)(nil)
)

// Generator builds invocations of the external poster generator.
// The zero value runs python3 create_map_poster.py in the current directory.
type Generator struct {
	Dir       string            // Working directory of the generator
	Python    string            // Interpreter name or path
	Script    string            // Script path, relative to Dir unless absolute
	OutputDir string            // Poster directory, relative to Dir unless absolute
	Env       map[string]string // Added to the environment of every invocation
}

// Build implements runbatch.Builder.
func (g *Generator) Build(ctx context.Context, entry batch.Entry) (runbatch.Runnable, error) {
	python, err := g.Interpreter()
	if err != nil {
		return nil, err
	}

	args := g.Args(entry)
	ctxlog.Debug(ctx, "generator command", "python", python, "args", args, "cwd", g.Dir)

	return &runbatch.OSCommand{
		Label: entry.Description(),
		Path:  python,
		Args:  args,
		Cwd:   g.Dir,
		Env:   g.Env,
	}, nil
}

// Args returns the arguments passed to the interpreter for entry, script first.
// Optional flags are only present when the entry sets them.
func (g *Generator) Args(entry batch.Entry) []string {
	args := []string{g.script(), "--city", entry.City, "--country", entry.Country}

	if entry.Theme != "" {
		args = append(args, "--theme", entry.Theme)
	}

	if entry.Distance > 0 {
		args = append(args, "--distance", strconv.Itoa(entry.Distance))
	}

	if entry.FontFamily != "" {
		args = append(args, "--font-family", entry.FontFamily)
	}

	if entry.Width > 0 {
		args = append(args, "--width", formatFloat(entry.Width))
	}

	if entry.Height > 0 {
		args = append(args, "--height", formatFloat(entry.Height))
	}

	if entry.Format != "" {
		args = append(args, "--format", entry.Format)
	}

	if entry.DisplayCity != "" {
		args = append(args, "--display-city", entry.DisplayCity)
	}

	if entry.DisplayCountry != "" {
		args = append(args, "--display-country", entry.DisplayCountry)
	}

	if entry.CountryLabel != "" {
		args = append(args, "--country-label", entry.CountryLabel)
	}

	if entry.HasCentre() {
		args = append(args,
			"--latitude", formatFloat(*entry.Latitude),
			"--longitude", formatFloat(*entry.Longitude),
		)
	}

	if entry.Style {
		args = append(args, "--style")
	}

	return args
}

// Interpreter resolves the configured interpreter. Names without a path separator are looked up on PATH.
func (g *Generator) Interpreter() (string, error) {
	python := g.Python
	if python == "" {
		python = DefaultPython
	}

	if strings.ContainsRune(python, os.PathSeparator) || strings.ContainsRune(python, '/') {
		abs, err := filepath.Abs(python)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInterpreterNotFound, python, err)
		}

		if !isExecutable(abs) {
			return "", fmt.Errorf("%w: %s", ErrInterpreterNotFound, abs)
		}

		return abs, nil
	}

	path, ok := findInPath(python)
	if !ok {
		return "", fmt.Errorf("%w: %s is not on PATH", ErrInterpreterNotFound, python)
	}

	return path, nil
}

// Check verifies that the generator directory and script exist.
func (g *Generator) Check() error {
	var errs []error

	if g.Dir != "" {
		if info, err := FS.Stat(g.Dir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("%w: %s", ErrGeneratorDir, g.Dir))
		}
	}

	script := g.resolve(g.script())
	if info, err := FS.Stat(script); err != nil || info.IsDir() {
		errs = append(errs, fmt.Errorf("%w: %s", ErrScriptNotFound, script))
	}

	if _, err := g.Interpreter(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ThemesDir is the directory holding the generator's theme records.
func (g *Generator) ThemesDir() string {
	return g.resolve(DefaultThemesDir)
}

// StyleAvailable reports whether entries may request AI styling.
func (g *Generator) StyleAvailable() bool {
	if g.Env[StyleTokenEnvVar] != "" {
		return true
	}

	return os.Getenv(StyleTokenEnvVar) != ""
}

func (g *Generator) script() string {
	if g.Script == "" {
		return DefaultScript
	}

	return g.Script
}

func (g *Generator) outputDir() string {
	if g.OutputDir == "" {
		return g.resolve(DefaultOutputDir)
	}

	return g.resolve(g.OutputDir)
}

// resolve makes p relative to the generator directory.
func (g *Generator) resolve(p string) string {
	if filepath.IsAbs(p) || g.Dir == "" {
		return p
	}

	return filepath.Join(g.Dir, p)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
