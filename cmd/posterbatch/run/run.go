// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run subcommand.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/shared"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/progress"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
	"github.com/matt-FFFFFF/posterbatch/internal/tui"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
)

const (
	outFlag                  = "out"
	noOutputStdErrFlag       = "no-output-stderr"
	outputStdOutFlag         = "output-stdout"
	outputSuccessDetailsFlag = "output-success-details"
	tuiFlag                  = "tui"
	dryRunFlag               = "dry-run"
	entryTimeoutFlag         = "entry-timeout"
	skipValidationFlag       = "skip-validation"
	confirmFlag              = "confirm"
	cliExitStr               = ""
)

// ErrAborted is returned when the user declines the confirmation prompt.
var ErrAborted = errors.New("batch aborted at confirmation prompt")

// Confirm asks the user whether to start the batch. Tests replace it.
var Confirm = linerConfirm

// NewRunCmd returns the command that generates the posters of one or more batches.
func NewRunCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Generate every poster in a batch, stopping at the first failure",
		ArgsUsage: "[BATCH...]",
		Description: `Run one or more batches of poster generator invocations.

Each BATCH is either the name of a built-in batch (see 'posterbatch list') or the
go-getter URL of a YAML or HCL batch definition. Batches named with --file run
after positional ones. Entries run one at a time, in order. Each entry prints a
'[i/N] description' progress line and then invokes the generator. The first
entry that fails stops the batch; later entries are not attempted and the exit
code is the generator's exit code.

Config file URLs use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.
`,
		Flags: append(shared.GeneratorFlags(),
			shared.FileFlagDef(),
			&cli.BoolFlag{
				Name:     dryRunFlag,
				Aliases:  []string{"n"},
				Usage:    "Print the progress lines and generator commands without running anything",
				OnlyOnce: true,
			},
			&cli.DurationFlag{
				Name:     entryTimeoutFlag,
				Usage:    "Kill the generator when an entry takes longer than this, 0 for no limit",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     skipValidationFlag,
				Usage:    "Do not check entries and themes before the first invocation",
				OnlyOnce: true,
			},
			&cli.BoolFlag{
				Name:     confirmFlag,
				Aliases:  []string{"i"},
				Usage:    "Ask before starting the batch",
				OnlyOnce: true,
			},
			&cli.StringFlag{
				Name:      outFlag,
				Usage:     "Save the results to this file, view them later with 'posterbatch show'",
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:        outputSuccessDetailsFlag,
				Aliases:     []string{"success"},
				Usage:       "Print the detailed result of successful entries too",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        noOutputStdErrFlag,
				Aliases:     []string{"no-stderr"},
				Usage:       "Exclude the generator's stderr from the detailed results",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        outputStdOutFlag,
				Aliases:     []string{"stdout"},
				Usage:       "Include the generator's stdout in the detailed results",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        tuiFlag,
				Aliases:     []string{"t", "interactive"},
				Usage:       "Show progress in an interactive terminal UI",
				DefaultText: "false",
				OnlyOnce:    true,
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command")

	b, err := shared.LoadBatch(ctx, shared.Sources(cmd))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	gen := shared.Generator(cmd)
	dryRun := cmd.Bool(dryRunFlag)

	if !cmd.Bool(skipValidationFlag) {
		if err := shared.Validate(ctx, b, gen.StyleAvailable(), shared.ThemesDir(cmd)); err != nil {
			return cli.Exit(fmt.Sprintf("batch %q is invalid: %s", b.Name, err.Error()), 1)
		}
	}

	if !dryRun {
		if err := gen.Check(); err != nil {
			return cli.Exit(fmt.Sprintf("generator is not usable: %s", err.Error()), 1)
		}
	}

	if cmd.Bool(confirmFlag) && !dryRun {
		ok, err := Confirm(fmt.Sprintf("Generate %d posters from batch %q? [y/N] ", b.Len(), b.Name))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		if !ok {
			return cli.Exit(ErrAborted.Error(), 1)
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

	var res runbatch.Results

	switch {
	case cmd.Bool(tuiFlag) && !dryRun:
		logger.Info("starting interactive TUI mode")

		res = runWithTUI(ctx, cmd, runner, b)
	default:
		res = runner.Run(ctx, b)
	}

	if outFileName := cmd.String(outFlag); outFileName != "" {
		if err := writeResultsFile(outFileName, res); err != nil {
			logger.Error("failed to save results", "file", outFileName, "error", err)
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info("results written", "file", outFileName)
	}

	opts := runbatch.DefaultOutputOptions()
	opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
	opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
	opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

	if res.HasError() || opts.ShowSuccessDetails {
		if err := res.WriteWithOptions(shared.Writer(cmd), opts); err != nil {
			logger.Error("failed to write results", "error", err)
			return cli.Exit(cliExitStr, 1)
		}
	}

	if res.HasError() {
		msg := cliExitStr
		if err := res.Err(); err != nil {
			msg = err.Error()
		}

		return cli.Exit(msg, res.ExitCode())
	}

	return nil
}

// runWithTUI runs the batch behind the terminal UI. Everything the runner would print
// is buffered and written once the UI has exited.
func runWithTUI(ctx context.Context, cmd *cli.Command, runner *runbatch.Runner, b *batch.Batch) runbatch.Results {
	buf := new(bytes.Buffer)
	tuiCtx := ctxlog.NewForTUI(ctx, buf)

	runner.Out = buf
	runner.Stdout = nil
	runner.Stderr = nil

	ui := tui.NewRunner(tuiCtx, b)

	res, err := ui.Run(tuiCtx, func(ctx context.Context, reporter progress.Reporter) runbatch.Results {
		runner.Reporter = reporter
		return runner.Run(ctx, b)
	})

	buf.WriteTo(shared.Writer(cmd)) //nolint:errcheck

	if err != nil {
		ctxlog.Error(ctx, "TUI execution error", "error", err)
	}

	return res
}

func writeResultsFile(name string, res runbatch.Results) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	defer f.Close() //nolint:errcheck

	return runbatch.WriteBinary(f, res)
}

func linerConfirm(prompt string) (bool, error) {
	line := liner.NewLiner()
	defer line.Close() //nolint:errcheck

	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(prompt)

	switch {
	case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
