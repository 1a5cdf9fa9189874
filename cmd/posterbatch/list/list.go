// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list implements the list subcommand.
package list

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/shared"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/color"
	"github.com/matt-FFFFFF/posterbatch/internal/config"
	"github.com/urfave/cli/v3"
)

const (
	commandsFlag = "commands"
	jsonFlag     = "json"
	jsonIndent   = 2
)

// ErrMarshalJSON is returned when a batch cannot be rendered as JSON.
var ErrMarshalJSON = errors.New("failed to render batch as JSON")

// NewListCmd returns the command that lists the built-in batches or the entries of a batch.
func NewListCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List the built-in batches, or the entries of a batch",
		ArgsUsage: "[BATCH...]",
		Description: `Without arguments, list the batches compiled into posterbatch.
With a batch name or --file, list its entries in the order they run.`,
		Flags: append(shared.GeneratorFlags(),
			shared.FileFlagDef(),
			&cli.BoolFlag{
				Name:    commandsFlag,
				Aliases: []string{"c"},
				Usage:   "Show the generator command line of each entry",
			},
			&cli.BoolFlag{
				Name:  jsonFlag,
				Usage: "Print the batch as JSON",
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	w := shared.Writer(cmd)
	srcs := shared.Sources(cmd)

	if len(srcs) == 0 {
		return listBuiltins(w)
	}

	b, err := shared.LoadBatch(ctx, srcs)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if cmd.Bool(jsonFlag) {
		return writeJSON(w, b)
	}

	var gen *shared.CommandPreview
	if cmd.Bool(commandsFlag) {
		gen = &shared.CommandPreview{Generator: shared.Generator(cmd)}
	}

	return writeEntries(w, b, gen)
}

func listBuiltins(w io.Writer) error {
	for _, name := range config.BuiltinNames() {
		b, err := config.Builtin(name)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s %s %s\n",
			color.Colorize(fmt.Sprintf("%-20s", name), color.Bold),
			color.Colorize(fmt.Sprintf("(%d entries)", b.Len()), color.Faint),
			b.Description,
		); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}

func writeEntries(w io.Writer, b *batch.Batch, preview *shared.CommandPreview) error {
	if _, err := fmt.Fprintf(w, "%s\n", color.Colorize(b.Name, color.Bold)); err != nil {
		return err //nolint:wrapcheck
	}

	if b.Description != "" {
		fmt.Fprintf(w, "%s\n", b.Description) //nolint:errcheck
	}

	total := b.Len()

	for i, e := range b.Entries {
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, total, e.Description()) //nolint:errcheck

		if preview != nil {
			fmt.Fprintf(w, "    $ %s\n", preview.CommandLine(e)) //nolint:errcheck
		}
	}

	return nil
}

// writeJSON prints b as indented JSON, coloured when the terminal supports it.
func writeJSON(w io.Writer, b *batch.Batch) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return errors.Join(ErrMarshalJSON, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Join(ErrMarshalJSON, err)
	}

	formatter := colorjson.NewFormatter()
	formatter.Indent = jsonIndent
	formatter.DisabledColor = !color.Enabled()

	out, err := formatter.Marshal(obj)
	if err != nil {
		return errors.Join(ErrMarshalJSON, err)
	}

	_, err = fmt.Fprintf(w, "%s\n", out)

	return err //nolint:wrapcheck
}
