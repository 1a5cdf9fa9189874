// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/progress"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
)

// eventBuffer is the number of progress events queued between the runner and the screen.
const eventBuffer = 256

// BatchFunc runs a batch, reporting progress to reporter.
type BatchFunc func(ctx context.Context, reporter progress.Reporter) runbatch.Results

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model   *Model
	program *tea.Program
	mutex   sync.Mutex
}

// TUIReporter forwards progress events to the TUI program.
// It is used as the Listener of a progress.ChannelReporter so the runner never waits on the screen.
type TUIReporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewTUIReporter creates a new TUI progress reporter.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{
		program: program,
	}
}

// OnEvent implements progress.Listener.
func (tr *TUIReporter) OnEvent(event progress.Event) {
	tr.Report(event)
}

// Report implements progress.Reporter.
func (tr *TUIReporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *TUIReporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// NewRunner creates a TUI runner showing one row per entry of b.
func NewRunner(ctx context.Context, b *batch.Batch, opts ...tea.ProgramOption) *Runner {
	model := NewModel(ctx, b)

	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &Runner{
		model:   model,
		program: tea.NewProgram(model, opts...),
	}
}

// Run starts the TUI and calls fn with a reporter that feeds it.
// When the batch finishes the screen stays up until the user quits.
// Quitting early cancels the batch and waits for fn to return.
func (r *Runner) Run(ctx context.Context, fn BatchFunc) (runbatch.Results, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tuiReporter := NewTUIReporter(r.program)
	reporter := progress.NewChannelReporter(batchCtx, eventBuffer)
	reporter.Listen(tuiReporter)

	resultChan := make(chan runbatch.Results, 1)

	go func() {
		defer close(resultChan)

		res := fn(batchCtx, reporter)

		// Drain queued events before the completion message.
		reporter.Close()

		resultChan <- res
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		result runbatch.Results
		tuiErr error
	)

	select {
	case result = <-resultChan:
		r.program.Send(BatchCompletedMsg{Results: result})

		select {
		case tuiErr = <-tuiDone:
		case <-ctx.Done():
			r.program.Quit()

			tuiErr = <-tuiDone
		}

		tuiReporter.Close()

	case tuiErr = <-tuiDone:
		// User quit while the batch was running.
		tuiReporter.Close()
		cancel()

		result = <-resultChan

	case <-ctx.Done():
		tuiReporter.Close()
		r.program.Quit()

		result = <-resultChan

		<-tuiDone
	}

	return result, tuiErr
}
