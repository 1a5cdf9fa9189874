// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"io"

	"github.com/matt-FFFFFF/posterbatch/internal/color"
)

// WriteSummary prints the closing lines of a run: a success message when every entry ran,
// otherwise how far the batch got, which entry stopped it and how many were never attempted.
func WriteSummary(w io.Writer, results Results, dryRun bool) error {
	for _, root := range results {
		total := len(root.Children)
		failure := Results{root}.FirstFailure()

		var err error

		switch {
		case failure != nil:
			completed := Results{root}.Count(ResultStatusSuccess)
			notRun := Results{root}.Count(ResultStatusNotRun)

			_, err = fmt.Fprintf(w, "%s batch %q stopped at [%d/%d] %s (exit code: %d)\n  completed %d/%d, not attempted %d\n",
				color.Colorize("✗", color.FgRed),
				root.Label,
				failure.Index,
				total,
				failure.Label,
				failure.ExitCode,
				completed,
				total,
				notRun,
			)
		case dryRun:
			_, err = fmt.Fprintf(w, "%s dry run of batch %q: %d entries, nothing executed\n",
				color.Colorize("~", color.FgYellow),
				root.Label,
				total,
			)
		default:
			_, err = fmt.Fprintf(w, "%s all %d posters generated for batch %q\n",
				color.Colorize("✓", color.FgGreen),
				total,
				root.Label,
			)
		}

		if err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}
