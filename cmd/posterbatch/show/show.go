// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the show subcommand.
package show

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/shared"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	fileArg                  = "file"
	outputStdOutFlag         = "output-stdout"
	noOutputStdErrFlag       = "no-output-stderr"
	outputSuccessDetailsFlag = "output-success-details"
)

var (
	// ErrReadFile is returned when the file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrDecodeResults is returned when the results cannot be decoded from the file.
	ErrDecodeResults = errors.New("failed to decode results")
	// ErrWriteResults is returned when the results cannot be written.
	ErrWriteResults = errors.New("failed to write results")
	// ErrNoFile is returned when no results file is named.
	ErrNoFile = errors.New("no results file specified")
)

// NewShowCmd returns the command that displays results saved by 'run --out'.
func NewShowCmd() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show previously saved results",
		Description: "Show the results of a batch run saved with 'posterbatch run --out FILE'.",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: fileArg,
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    outputSuccessDetailsFlag,
				Aliases: []string{"success"},
				Usage:   "Include successful entries in detail",
			},
			&cli.BoolFlag{
				Name:    noOutputStdErrFlag,
				Aliases: []string{"no-stderr"},
				Usage:   "Exclude the generator's stderr",
			},
			&cli.BoolFlag{
				Name:    outputStdOutFlag,
				Aliases: []string{"stdout"},
				Usage:   "Include the generator's stdout",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			name := cmd.StringArg(fileArg)
			if name == "" {
				return cli.Exit(ErrNoFile.Error(), 1)
			}

			file, err := os.Open(name)
			if err != nil {
				return errors.Join(ErrReadFile, err)
			}
			defer file.Close() // nolint:errcheck

			results, err := runbatch.ReadBinary(file)
			if err != nil {
				return errors.Join(ErrDecodeResults, err)
			}

			opts := runbatch.DefaultOutputOptions()
			opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
			opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
			opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)

			w := shared.Writer(cmd)

			if err := results.WriteWithOptions(w, opts); err != nil {
				return errors.Join(ErrWriteResults, err)
			}

			if err := runbatch.WriteSummary(w, results, isDryRun(results)); err != nil {
				return errors.Join(ErrWriteResults, err)
			}

			return nil
		},
	}
}

// isDryRun reports whether the saved results come from a dry run.
func isDryRun(results runbatch.Results) bool {
	for _, root := range results {
		for _, c := range root.Children {
			if !errors.Is(c.Error, runbatch.ErrDryRun) {
				return false
			}
		}
	}

	return len(results) > 0
}
