// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package export implements the export subcommand.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/shared"
	"github.com/matt-FFFFFF/posterbatch/internal/config"
	"github.com/urfave/cli/v3"
)

const (
	formatFlag = "format"
	outFlag    = "out"

	FormatYAML = "yaml"
	FormatHCL  = "hcl"
)

// ErrUnknownFormat is returned for a --format other than yaml or hcl.
var ErrUnknownFormat = errors.New("unknown export format, expected yaml or hcl")

// NewExportCmd returns the command that writes a batch as a YAML or HCL definition.
func NewExportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a batch as a YAML or HCL definition file",
		ArgsUsage: "BATCH...",
		Description: `Export a built-in or file batch so it can be edited and run with --file.
Several batches are joined into one, in order.`,
		Flags: []cli.Flag{
			shared.FileFlagDef(),
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "Output format, yaml or hcl",
				Value: FormatYAML,
			},
			&cli.StringFlag{
				Name:      outFlag,
				Aliases:   []string{"o"},
				Usage:     "Write to this file instead of stdout",
				TakesFile: true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	b, err := shared.LoadBatch(ctx, shared.Sources(cmd))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var data []byte

	switch f := strings.ToLower(cmd.String(formatFlag)); f {
	case FormatYAML, "yml":
		data, err = config.EncodeYAML(b)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	case FormatHCL:
		data = config.EncodeHCL(b)
	default:
		return cli.Exit(fmt.Sprintf("%s: %q", ErrUnknownFormat.Error(), f), 1)
	}

	if name := cmd.String(outFlag); name != "" {
		if err := os.WriteFile(name, data, 0o644); err != nil { //nolint:gosec
			return cli.Exit(err.Error(), 1)
		}

		return nil
	}

	_, err = shared.Writer(cmd).Write(data)

	return err //nolint:wrapcheck
}
