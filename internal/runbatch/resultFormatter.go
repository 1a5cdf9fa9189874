// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matt-FFFFFF/posterbatch/internal/color"
)

// OutputOptions controls what is included in the output.
type OutputOptions struct {
	IncludeStdOut      bool // Whether to include stdout in the output
	IncludeStdErr      bool // Whether to include stderr in the output
	ShowSuccessDetails bool // Whether to show details for successful entries
	ShowNotRun         bool // Whether to list entries that were never started
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdOut:      false,
		IncludeStdErr:      true,
		ShowSuccessDetails: false,
		ShowNotRun:         true,
	}
}

// WriteResults writes the result tree to w.
func WriteResults(w io.Writer, results Results, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, r := range results {
		if err := writeResultWithIndent(w, r, "", options); err != nil {
			return err
		}
	}

	return nil
}

func writeResultWithIndent(w io.Writer, r *Result, indent string, options *OutputOptions) error {
	if r.Status == ResultStatusNotRun && !options.ShowNotRun && len(r.Children) == 0 {
		return nil
	}

	var statusStr, labelPrefix string

	switch r.Status {
	case ResultStatusNotRun:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
	case ResultStatusError:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	case ResultStatusSuccess:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	default:
		statusStr = color.Colorize("?", color.FgWhite)
	}

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	if r.Index > 0 {
		label = fmt.Sprintf("%d. %s", r.Index, label)
	}

	fmt.Fprintf( // nolint:errcheck
		w,
		"%s%s %s%s%s",
		indent,
		statusStr,
		labelPrefix,
		label,
		color.ControlString(color.Reset),
	)

	if r.ExitCode != 0 {
		fmt.Fprintf(w, " (exit code: %d)", r.ExitCode) // nolint:errcheck
	}

	if d := r.Duration(); d > 0 {
		fmt.Fprintf(w, " %s", color.Colorize("["+d.Round(time.Millisecond).String()+"]", color.Faint)) // nolint:errcheck
	}

	fmt.Fprintln(w) // nolint:errcheck

	if r.Error != nil && !errors.Is(r.Error, ErrResultChildrenHasError) {
		var errColor color.Code

		switch r.Status {
		case ResultStatusNotRun:
			errColor = color.FgYellow
		case ResultStatusError:
			errColor = color.FgRed
		default:
			errColor = color.FgWhite
		}

		fmt.Fprintf( // nolint:errcheck
			w,
			"%s  %s %s\n",
			indent,
			color.Colorize("➜ Error:", errColor),
			r.Error.Error(),
		)
	}

	if r.Artifact != "" {
		fmt.Fprintf(w, "%s  ➜ Poster: %s\n", indent, r.Artifact) // nolint:errcheck
	}

	// Details only for failed entries, or when explicitly asked for.
	shouldShowDetails := (r.Status == ResultStatusError || options.ShowSuccessDetails) &&
		len(r.Children) == 0

	if shouldShowDetails && r.Command != "" && r.Status == ResultStatusError {
		fmt.Fprintf(w, "%s  ➜ Command: %s\n", indent, r.Command) // nolint:errcheck
	}

	if shouldShowDetails && options.IncludeStdOut && len(r.StdOut) > 0 {
		fmt.Fprintf(w, "%s  ➜ Output:\n", indent)                    // nolint:errcheck
		fmt.Fprintf(w, "%s", formatOutput(r.StdOut, indent+"     ")) // nolint:errcheck
	}

	if shouldShowDetails && options.IncludeStdErr && len(r.StdErr) > 0 {
		fmt.Fprintf(w, "%s  %s\n", indent, color.Colorize("➜ Error Output:", color.FgHiRed)) // nolint:errcheck
		fmt.Fprintf(w, "%s", formatOutput(r.StdErr, indent+"     "))                         // nolint:errcheck
	}

	if len(r.Children) > 0 {
		childIndent := indent + "  "
		for _, child := range r.Children {
			if err := writeResultWithIndent(w, child, childIndent, options); err != nil {
				return err
			}
		}
	}

	return nil
}

// formatOutput formats multi-line output with proper indentation.
func formatOutput(output []byte, indent string) string {
	sb := strings.Builder{}
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	sb.Grow(len(output) + len(lines)*len(indent))

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
