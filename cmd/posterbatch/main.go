// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the posterbatch command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/posterbatch"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/export"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/list"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/run"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/schema"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/show"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/sweep"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/themes"
	"github.com/matt-FFFFFF/posterbatch/internal/color"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

const (
	logFormatFlag = "log-format"
	colorFlag     = "color"

	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

var errUnknownColorMode = errors.New("unknown color mode")

// newRootCmd builds the root command for the CLI.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			run.NewRunCmd(),
			sweep.NewSweepCmd(),
			list.NewListCmd(),
			themes.NewThemesCmd(),
			show.NewShowCmd(),
			export.NewExportCmd(),
			schema.NewSchemaCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    logFormatFlag,
				Usage:   "Log record format, pretty or json",
				Sources: cli.EnvVars("POSTERBATCH_LOG_FORMAT"),
				Value:   ctxlog.FormatPretty,
			},
			&cli.StringFlag{
				Name:  colorFlag,
				Usage: "Colored output: auto, always or never",
				Value: colorAuto,
			},
		},
		Before:    configureOutput,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "posterbatch",
		Description: `posterbatch generates city map posters in batches. It works through an
ordered list of city, country, theme and distance combinations and invokes the
create_map_poster.py generator once per entry, printing '[i/N]' progress as it goes.
The first failing invocation stops the batch.`,
		Usage:     "posterbatch run colombia-brazil",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		Version:               fmt.Sprintf("%s (commit: %s)", posterbatch.Version, posterbatch.Commit),
		EnableShellCompletion: true,
	}
}

// configureOutput applies the color mode and installs the logger chosen by the root flags.
func configureOutput(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	switch mode := cmd.String(colorFlag); mode {
	case colorAuto, "":
	case colorAlways:
		color.SetEnabled(true)
	case colorNever:
		color.SetEnabled(false)
	default:
		return ctx, cli.Exit(fmt.Sprintf("%s %q, want %s, %s or %s", errUnknownColorMode, mode, colorAuto, colorAlways, colorNever), 1)
	}

	logger, err := ctxlog.NewLogger(cmd.String(logFormatFlag))
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}

	return ctxlog.New(ctx, logger), nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := newRootCmd().Run(ctx, os.Args) // Exit codes are handled by the cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
