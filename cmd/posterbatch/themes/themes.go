// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package themes implements the themes subcommand.
package themes

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/posterbatch/cmd/posterbatch/shared"
	"github.com/matt-FFFFFF/posterbatch/internal/color"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/theme"
	"github.com/urfave/cli/v3"
)

const allFlag = "all"

// NewThemesCmd returns the command that lists the themes the generator can render with.
func NewThemesCmd() *cli.Command {
	return &cli.Command{
		Name:  "themes",
		Usage: "List the generator's colour themes",
		Description: `List the themes found in the generator's themes directory.
Themes named in hidden_themes.json are left out unless --all is given.`,
		Flags: append(shared.GeneratorFlags(),
			&cli.BoolFlag{
				Name:    allFlag,
				Aliases: []string{"a"},
				Usage:   "Include hidden themes",
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	dir := shared.ThemesDir(cmd)

	catalog, err := theme.Load(dir)
	if catalog == nil {
		return cli.Exit(err.Error(), 1)
	}

	if err != nil {
		ctxlog.Warn(ctx, "some themes could not be read", "dir", dir, "error", err)
	}

	names := catalog.Names()
	if cmd.Bool(allFlag) {
		names = catalog.AllNames()
	}

	w := shared.Writer(cmd)

	for _, name := range names {
		t, err := catalog.Get(name)
		if err != nil {
			return err //nolint:wrapcheck
		}

		writeTheme(w, name, t, catalog.Hidden(name))
	}

	return nil
}

// writeTheme prints one line per theme with a swatch in its background and text colours.
func writeTheme(w io.Writer, name string, t theme.Theme, hidden bool) {
	swatch := "    "
	if color.Enabled() {
		swatch = lipgloss.NewStyle().
			Background(lipgloss.Color(t.Bg)).
			Foreground(lipgloss.Color(t.Text)).
			Render(" Aa ")
	}

	label := fmt.Sprintf("%-28s", name)
	if hidden {
		label = color.Colorize(label, color.Faint)
	}

	fmt.Fprintf(w, "%s %s %s\n", swatch, label, t.Description) //nolint:errcheck
}
