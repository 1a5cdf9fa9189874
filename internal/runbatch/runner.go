// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/progress"
)

// Runner executes the entries of a batch in order and stops at the first failure.
type Runner struct {
	Builder      Builder           // Prepares the invocation for each entry
	Out          io.Writer         // Progress lines and the summary, defaults to os.Stdout
	Stdout       io.Writer         // Live generator stdout, nil discards it
	Stderr       io.Writer         // Live generator stderr, nil discards it
	Reporter     progress.Reporter // Receives progress events, may be nil
	EntryTimeout time.Duration     // Per-entry limit, zero for none
	DryRun       bool              // Print the commands without running them
	Quiet        bool              // Suppress the summary
}

// Run executes b and returns a single batch result whose children are the entry results.
// The batch is copied first so the caller's entries are never modified.
func (r *Runner) Run(ctx context.Context, b *batch.Batch) Results {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	reporter := r.Reporter
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	if b == nil {
		b = &batch.Batch{}
	}

	b = b.Clone()
	total := b.Len()

	logger := ctxlog.Logger(ctx).With("batch", b.Name)
	logger.Debug("running batch", "entries", total, "dryRun", r.DryRun)

	root := &Result{
		Label:    b.Name,
		Started:  time.Now(),
		Children: make(Results, 0, total),
	}

	var failure *Result

	for i, entry := range b.Entries {
		idx := i + 1
		res := &Result{Index: idx, Label: entry.Description()}
		root.Children = append(root.Children, res)

		event := func(t progress.EventType, data progress.EventData) {
			reporter.Report(progress.Event{
				Batch:     b.Name,
				Index:     idx,
				Total:     total,
				Label:     res.Label,
				Type:      t,
				Timestamp: time.Now(),
				Data:      data,
			})
		}

		if failure != nil {
			res.Status = ResultStatusNotRun
			res.Error = ErrNotAttempted
			event(progress.EventSkipped, progress.EventData{})

			continue
		}

		if err := ctx.Err(); err != nil {
			res.Status = ResultStatusError
			res.ExitCode = -1
			res.Error = errors.Join(ErrCancelled, err)
			failure = res
			event(progress.EventFailed, progress.EventData{ExitCode: -1, Error: res.Error})

			continue
		}

		fmt.Fprintf(out, "[%d/%d] %s\n", idx, total, res.Label) // nolint:errcheck
		event(progress.EventStarted, progress.EventData{})

		r.runEntry(ctx, entry, res, event)

		switch res.Status {
		case ResultStatusSuccess:
			event(progress.EventCompleted, progress.EventData{ExitCode: res.ExitCode, Artifact: res.Artifact})
		case ResultStatusNotRun:
			event(progress.EventSkipped, progress.EventData{})
		default:
			logger.Debug("entry failed, stopping batch", "index", idx, "error", res.Error)
			failure = res
			event(progress.EventFailed, progress.EventData{ExitCode: res.ExitCode, Error: res.Error})
		}
	}

	root.Finished = time.Now()
	root.Status = ResultStatusSuccess

	if failure != nil {
		root.Status = ResultStatusError
		root.ExitCode = failure.ExitCode
		root.Error = ErrResultChildrenHasError
	}

	results := Results{root}

	if !r.Quiet {
		WriteSummary(out, results, r.DryRun) // nolint:errcheck
	}

	return results
}

func (r *Runner) runEntry(
	ctx context.Context, entry batch.Entry, res *Result, event func(progress.EventType, progress.EventData),
) {
	if r.Builder == nil {
		res.Status = ResultStatusError
		res.ExitCode = -1
		res.Error = ErrNilBuilder

		return
	}

	runnable, err := r.Builder.Build(ctx, entry)
	if err != nil {
		res.Status = ResultStatusError
		res.ExitCode = -1
		res.Error = errors.Join(ErrBuildCommand, err)

		return
	}

	if cl, ok := runnable.(CommandLiner); ok {
		res.Command = cl.CommandLine()
	}

	if r.DryRun {
		out := r.Out
		if out == nil {
			out = os.Stdout
		}

		fmt.Fprintf(out, "    $ %s\n", res.Command) // nolint:errcheck

		if p, ok := r.Builder.(ArtifactPredictor); ok {
			if path := p.ExpectedPath(entry, time.Now()); path != "" {
				fmt.Fprintf(out, "    → %s\n", path) // nolint:errcheck
			}
		}

		res.Status = ResultStatusNotRun
		res.Error = ErrDryRun

		return
	}

	if sink, ok := runnable.(OutputSink); ok {
		sink.SetOutput(r.Stdout, r.Stderr, func(line string, isStderr bool) {
			event(progress.EventOutput, progress.EventData{OutputLine: line, IsStderr: isStderr})
		})
	}

	runCtx := ctx
	cancel := func() {}

	if r.EntryTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.EntryTimeout)
	}

	started := time.Now()
	results := runnable.Run(runCtx)

	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil

	cancel()

	if len(results) == 0 {
		res.Status = ResultStatusSuccess
		res.Started = started
		res.Finished = time.Now()

		return
	}

	got := results[0]
	res.Status = got.Status
	res.ExitCode = got.ExitCode
	res.Error = got.Error
	res.StdOut = got.StdOut
	res.StdErr = got.StdErr
	res.Started = got.Started
	res.Finished = got.Finished

	if res.Started.IsZero() {
		res.Started = started
	}

	if res.Finished.IsZero() {
		res.Finished = time.Now()
	}

	if got.Command != "" {
		res.Command = got.Command
	}

	if timedOut && res.Status != ResultStatusSuccess {
		res.Error = errors.Join(ErrEntryTimeout, res.Error)
	}

	if res.Status != ResultStatusSuccess {
		return
	}

	if loc, ok := r.Builder.(ArtifactLocator); ok {
		artifact, err := loc.Artifact(entry, started)
		if err != nil {
			ctxlog.Warn(ctx, "generator succeeded but no poster was found", "entry", res.Label, "error", err)
			return
		}

		res.Artifact = artifact
	}
}
