// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema implements the schema subcommand.
package schema

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/shared"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/schema"
	"github.com/matt-FFFFFF/posterbatch/internal/theme"
	"github.com/urfave/cli/v3"
)

const (
	formatFlag   = "format"
	outFlag      = "out"
	noThemesFlag = "no-themes"
)

// NewSchemaCmd returns the command that documents the batch definition format.
func NewSchemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of batch definition files",
		Description: `Print the schema of YAML batch definition files, for editor validation and completion.

When the generator's themes directory can be read, entry themes are restricted to
the themes it contains. Use --no-themes for a schema that accepts any theme name.`,
		Flags: append(shared.GeneratorFlags(),
			&cli.StringFlag{
				Name:        formatFlag,
				Usage:       "Output format: json, yaml or markdown",
				DefaultText: "json",
				Value:       "json",
			},
			&cli.StringFlag{
				Name:      outFlag,
				Aliases:   []string{"o"},
				Usage:     "Write the schema to this file instead of stdout",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:  noThemesFlag,
				Usage: "Do not restrict entry themes to the installed ones",
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	var themes []string

	if !cmd.Bool(noThemesFlag) {
		themes = installedThemes(ctx, shared.ThemesDir(cmd))
	}

	gen := schema.ForBatch(themes)

	var write func(io.Writer, any, string, string) error

	switch format := strings.ToLower(cmd.String(formatFlag)); format {
	case "json":
		write = gen.WriteJSON
	case "yaml", "yml":
		write = gen.WriteYAML
	case "markdown", "md":
		write = gen.WriteMarkdown
	default:
		return cli.Exit(fmt.Sprintf("Invalid format: %s. Valid formats: json, yaml, markdown", format), 1)
	}

	w := shared.Writer(cmd)

	if name := cmd.String(outFlag); name != "" {
		f, err := os.Create(name)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		defer f.Close() //nolint:errcheck

		w = f
	}

	if err := write(w, schema.BatchDefinition(), schema.BatchTitle, schema.BatchDescription); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to generate schema: %v", err), 1)
	}

	return nil
}

// installedThemes returns every theme in dir, or nil when the directory cannot be read.
func installedThemes(ctx context.Context, dir string) []string {
	catalog, err := theme.Load(dir)
	if catalog == nil {
		ctxlog.Info(ctx, "theme catalogue unavailable, themes will not be restricted", "dir", dir, "error", err)
		return nil
	}

	if err != nil {
		ctxlog.Warn(ctx, "some themes could not be read", "dir", dir, "error", err)
	}

	return catalog.AllNames()
}
