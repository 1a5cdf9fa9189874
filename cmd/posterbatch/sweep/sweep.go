// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sweep implements the sweep subcommand, which renders one city in every theme.
package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/shared"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/generator"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
	"github.com/matt-FFFFFF/posterbatch/internal/theme"
	"github.com/urfave/cli/v3"
)

const (
	cityFlag         = "city"
	countryFlag      = "country"
	distanceFlag     = "distance"
	fontFamilyFlag   = "font-family"
	allFlag          = "all"
	dryRunFlag       = "dry-run"
	entryTimeoutFlag = "entry-timeout"
)

// ErrNoThemes is returned when the catalogue has no theme to sweep.
var ErrNoThemes = errors.New("no themes to generate")

// NewSweepCmd returns the command that generates one poster per theme for a single city.
func NewSweepCmd() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Generate one poster per theme for a single city",
		Description: `Render the same city, country and distance once for every theme in the
generator's themes directory, in lexical order. Themes named in hidden_themes.json
are left out unless --all is given. Progress is printed as '[i/N] theme' and the
first failing theme stops the sweep.`,
		Flags: append(shared.GeneratorFlags(),
			&cli.StringFlag{
				Name:     cityFlag,
				Usage:    "City to geocode",
				Required: true,
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:     countryFlag,
				Usage:    "Country of the city",
				Required: true,
				OnlyOnce: true,
			},
			&cli.IntFlag{
				Name:     distanceFlag,
				Aliases:  []string{"d"},
				Usage:    "Map radius in metres, 0 for the generator's default",
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:     fontFamilyFlag,
				Usage:    "Google Fonts family used for the labels",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:    allFlag,
				Aliases: []string{"a"},
				Usage:   "Include hidden themes",
			},
			&cli.BoolFlag{
				Name:     dryRunFlag,
				Aliases:  []string{"n"},
				Usage:    "Print the progress lines and generator commands without running anything",
				OnlyOnce: true,
			},
			&cli.DurationFlag{
				Name:     entryTimeoutFlag,
				Usage:    "Kill the generator when a theme takes longer than this, 0 for no limit",
				OnlyOnce: true,
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	dir := shared.ThemesDir(cmd)

	catalog, err := theme.Load(dir)
	if catalog == nil {
		return cli.Exit(err.Error(), 1)
	}

	if err != nil {
		logger.Warn("some themes could not be read", "dir", dir, "error", err)
	}

	names := catalog.Names()
	if cmd.Bool(allFlag) {
		names = catalog.AllNames()
	}

	if len(names) == 0 {
		return cli.Exit(fmt.Sprintf("%s in %s", ErrNoThemes, dir), 1)
	}

	base := batch.Entry{
		City:       cmd.String(cityFlag),
		Country:    cmd.String(countryFlag),
		Distance:   cmd.Int(distanceFlag),
		FontFamily: cmd.String(fontFamilyFlag),
	}

	b := batch.ForThemes("sweep-"+generator.Slug(base.City), base, names)
	logger.Debug("sweeping themes", "city", base.City, "themes", b.Len())

	if err := b.Validate(batch.ValidateOptions{Themes: catalog}); err != nil {
		return cli.Exit(fmt.Sprintf("sweep is invalid: %s", err.Error()), 1)
	}

	gen := shared.Generator(cmd)
	dryRun := cmd.Bool(dryRunFlag)

	if !dryRun {
		if err := gen.Check(); err != nil {
			return cli.Exit(fmt.Sprintf("generator is not usable: %s", err.Error()), 1)
		}
	}

	runner := &runbatch.Runner{
		Builder:      gen,
		Out:          shared.Writer(cmd),
		Stdout:       shared.Writer(cmd),
		Stderr:       shared.ErrWriter(cmd),
		EntryTimeout: cmd.Duration(entryTimeoutFlag),
		DryRun:       dryRun,
	}

	res := runner.Run(ctx, b)

	if res.HasError() {
		msg := ""
		if err := res.Err(); err != nil {
			msg = err.Error()
		}

		return cli.Exit(msg, res.ExitCode())
	}

	return nil
}
