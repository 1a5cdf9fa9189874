// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeBuilder records every invocation and fails the entries whose city is in failOn.
type fakeBuilder struct {
	mu        sync.Mutex
	invoked   []batch.Entry
	failOn    map[string]int
	buildErr  map[string]error
	artifacts map[string]string
}

type fakeRunnable struct {
	b     *fakeBuilder
	entry batch.Entry
	out   io.Writer
	line  func(string, bool)
}

func (f *fakeRunnable) Run(context.Context) Results {
	f.b.mu.Lock()
	f.b.invoked = append(f.b.invoked, f.entry)
	f.b.mu.Unlock()

	if f.out != nil {
		fmt.Fprintf(f.out, "rendering %s\n", f.entry.City) // nolint:errcheck
	}

	if f.line != nil {
		f.line("rendering "+f.entry.City, false)
	}

	if code, ok := f.b.failOn[f.entry.City]; ok {
		return Results{{
			ExitCode: code,
			Status:   ResultStatusError,
			StdErr:   []byte("geocoding failed\n"),
		}}
	}

	return Results{{Status: ResultStatusSuccess}}
}

func (f *fakeRunnable) SetOutput(stdout, _ io.Writer, onLine func(string, bool)) {
	f.out = stdout
	f.line = onLine
}

func (f *fakeRunnable) CommandLine() string {
	return "generate " + f.entry.City
}

func (b *fakeBuilder) Build(_ context.Context, e batch.Entry) (Runnable, error) {
	if err := b.buildErr[e.City]; err != nil {
		return nil, err
	}

	return &fakeRunnable{b: b, entry: e}, nil
}

func (b *fakeBuilder) Artifact(e batch.Entry, _ time.Time) (string, error) {
	if a, ok := b.artifacts[e.City]; ok {
		return a, nil
	}

	return "", os.ErrNotExist
}

func (b *fakeBuilder) cities() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, len(b.invoked))
	for _, e := range b.invoked {
		out = append(out, e.City)
	}

	return out
}

// recordingReporter keeps every event it receives.
type recordingReporter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingReporter) Report(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recordingReporter) Close() {}

func (r *recordingReporter) types() []progress.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]progress.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}

	return out
}

func exampleBatch() *batch.Batch {
	return &batch.Batch{
		Name: "colombia-brazil",
		Entries: []batch.Entry{
			{City: "Medellín", Country: "Colombia", Theme: "neon_purple_green_alt", Distance: 8000},
			{City: "Cartagena", Country: "Colombia", Theme: "multicolor_cartagena", Distance: 6000},
			{City: "Rio de Janeiro", Country: "Brazil", Theme: "neon_amber_blue_water", Distance: 12000},
		},
	}
}

func progressLines(out string) []string {
	var lines []string

	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "[") {
			lines = append(lines, l)
		}
	}

	return lines
}

func TestRunner_AllSucceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := exampleBatch()
	fb := &fakeBuilder{artifacts: map[string]string{"Cartagena": "posters/cartagena_multicolor_cartagena_20260101_120000.png"}}

	var out, genOut bytes.Buffer

	r := &Runner{Builder: fb, Out: &out, Stdout: &genOut}
	results := r.Run(testContext(t, 5*time.Second), b)

	require.Len(t, results, 1)
	assert.False(t, results.HasError())
	assert.Equal(t, 0, results.ExitCode())
	assert.Equal(t, ResultStatusSuccess, results[0].Status)
	assert.Equal(t, []string{"Medellín", "Cartagena", "Rio de Janeiro"}, fb.cities())
	assert.Equal(t, b.Entries, fb.invoked)

	assert.Equal(t, []string{
		"[1/3] Medellín, Colombia (neon_purple_green_alt, 8000m)",
		"[2/3] Cartagena, Colombia (multicolor_cartagena, 6000m)",
		"[3/3] Rio de Janeiro, Brazil (neon_amber_blue_water, 12000m)",
	}, progressLines(out.String()))
	assert.Contains(t, out.String(), `all 3 posters generated for batch "colombia-brazil"`)
	assert.Equal(t, "rendering Medellín\nrendering Cartagena\nrendering Rio de Janeiro\n", genOut.String())

	children := results[0].Children
	require.Len(t, children, 3)
	assert.Equal(t, "posters/cartagena_multicolor_cartagena_20260101_120000.png", children[1].Artifact)
	assert.Empty(t, children[0].Artifact)
	assert.Equal(t, "generate Rio de Janeiro", children[2].Command)
}

func TestRunner_EmptyBatchSucceeds(t *testing.T) {
	fb := &fakeBuilder{}

	var out bytes.Buffer

	r := &Runner{Builder: fb, Out: &out}
	results := r.Run(context.Background(), &batch.Batch{Name: "nothing"})

	require.Len(t, results, 1)
	assert.False(t, results.HasError())
	assert.NoError(t, results.Err())
	assert.Equal(t, 0, results.ExitCode())
	assert.Empty(t, fb.invoked)
	assert.Empty(t, progressLines(out.String()))
	assert.Contains(t, out.String(), `all 0 posters generated for batch "nothing"`)
}

func TestRunner_FailFast(t *testing.T) {
	for k := 1; k <= 3; k++ {
		t.Run(fmt.Sprintf("entry %d fails", k), func(t *testing.T) {
			b := exampleBatch()
			failing := b.Entries[k-1].City
			fb := &fakeBuilder{failOn: map[string]int{failing: 2}}

			var out bytes.Buffer

			r := &Runner{Builder: fb, Out: &out}
			results := r.Run(testContext(t, 5*time.Second), b)

			assert.Len(t, fb.invoked, k)
			assert.Len(t, progressLines(out.String()), k)
			assert.True(t, results.HasError())
			assert.Equal(t, 2, results.ExitCode())

			root := results[0]
			assert.Equal(t, ResultStatusError, root.Status)
			require.ErrorIs(t, root.Error, ErrResultChildrenHasError)
			assert.Equal(t, k-1, results.Count(ResultStatusSuccess))
			assert.Equal(t, 1, results.Count(ResultStatusError))
			assert.Equal(t, 3-k, results.Count(ResultStatusNotRun))

			for _, c := range root.Children[k:] {
				require.ErrorIs(t, c.Error, ErrNotAttempted)
			}

			assert.Contains(t, out.String(), fmt.Sprintf("completed %d/3, not attempted %d", k-1, 3-k))
			assert.NotContains(t, out.String(), "posters generated")
		})
	}
}

func TestRunner_ExampleSecondFails(t *testing.T) {
	b := exampleBatch()
	fb := &fakeBuilder{failOn: map[string]int{"Cartagena": 1}}

	var out bytes.Buffer

	r := &Runner{Builder: fb, Out: &out}
	results := r.Run(testContext(t, 5*time.Second), b)

	assert.Equal(t, []string{"Medellín", "Cartagena"}, fb.cities())
	assert.Equal(t, 1, results.ExitCode())

	f := results.FirstFailure()
	require.NotNil(t, f)
	assert.Equal(t, 2, f.Index)
	assert.Equal(t, "geocoding failed\n", string(f.StdErr))
	assert.Contains(t, out.String(), `batch "colombia-brazil" stopped at [2/3]`)
}

func TestRunner_BuildErrorStopsBatch(t *testing.T) {
	b := exampleBatch()
	boom := errors.New("no interpreter")
	fb := &fakeBuilder{buildErr: map[string]error{"Medellín": boom}}

	r := &Runner{Builder: fb, Out: io.Discard}
	results := r.Run(testContext(t, 5*time.Second), b)

	assert.Empty(t, fb.invoked)
	assert.Equal(t, 1, results.ExitCode())

	f := results.FirstFailure()
	require.NotNil(t, f)
	require.ErrorIs(t, f.Error, ErrBuildCommand)
	require.ErrorIs(t, f.Error, boom)
}

func TestRunner_DryRunInvokesNothing(t *testing.T) {
	b := exampleBatch()
	fb := &fakeBuilder{}

	var out bytes.Buffer

	r := &Runner{Builder: fb, Out: &out, DryRun: true}
	results := r.Run(testContext(t, 5*time.Second), b)

	assert.Empty(t, fb.invoked)
	assert.False(t, results.HasError())
	assert.Equal(t, 3, results.Count(ResultStatusNotRun))
	assert.Len(t, progressLines(out.String()), 3)
	assert.Contains(t, out.String(), "    $ generate Cartagena\n")
	assert.Contains(t, out.String(), "nothing executed")
}

func TestRunner_CancelledContextStopsBeforeNextEntry(t *testing.T) {
	b := exampleBatch()
	fb := &fakeBuilder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Builder: fb, Out: io.Discard, Quiet: true}
	results := r.Run(ctx, b)

	assert.Empty(t, fb.invoked)

	f := results.FirstFailure()
	require.NotNil(t, f)
	require.ErrorIs(t, f.Error, ErrCancelled)
	assert.Equal(t, 2, results.Count(ResultStatusNotRun))
}

func TestRunner_DoesNotModifyCallerBatch(t *testing.T) {
	b := exampleBatch()
	before := b.Clone()

	r := &Runner{Builder: &fakeBuilder{}, Out: io.Discard}
	r.Run(testContext(t, 5*time.Second), b)

	assert.Equal(t, before, b)
}

func TestRunner_EmptyAndNilBatch(t *testing.T) {
	r := &Runner{Builder: &fakeBuilder{}, Out: io.Discard}

	results := r.Run(testContext(t, 5*time.Second), nil)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Children)
	assert.Equal(t, 0, results.ExitCode())
}

func TestRunner_NilBuilder(t *testing.T) {
	r := &Runner{Out: io.Discard}

	results := r.Run(testContext(t, 5*time.Second), exampleBatch())
	f := results.FirstFailure()
	require.NotNil(t, f)
	require.ErrorIs(t, f.Error, ErrNilBuilder)
}

func TestRunner_Events(t *testing.T) {
	b := exampleBatch()
	fb := &fakeBuilder{failOn: map[string]int{"Cartagena": 1}}
	rep := &recordingReporter{}

	r := &Runner{Builder: fb, Out: io.Discard, Reporter: rep}
	r.Run(testContext(t, 5*time.Second), b)

	assert.Equal(t, []progress.EventType{
		progress.EventStarted,
		progress.EventOutput,
		progress.EventCompleted,
		progress.EventStarted,
		progress.EventOutput,
		progress.EventFailed,
		progress.EventSkipped,
	}, rep.types())

	for _, e := range rep.events {
		assert.Equal(t, "colombia-brazil", e.Batch)
		assert.Equal(t, 3, e.Total)
	}

	assert.Equal(t, "rendering Medellín", rep.events[1].Data.OutputLine)
	assert.Equal(t, 3, rep.events[6].Index)
}

// osBuilder runs each entry through /bin/sh so the runner is exercised with real processes.
type osBuilder struct {
	script func(batch.Entry) string
}

func (o osBuilder) Build(_ context.Context, e batch.Entry) (Runnable, error) {
	return &OSCommand{
		Label: e.Description(),
		Path:  "/bin/sh",
		Args:  []string{"-c", o.script(e)},
		sigCh: make(chan os.Signal, 1),
	}, nil
}

func TestRunner_RealProcesses(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	b := exampleBatch()

	var out, genOut bytes.Buffer

	r := &Runner{
		Builder: osBuilder{script: func(e batch.Entry) string {
			if e.City == "Rio de Janeiro" {
				return "echo 'could not geocode' >&2; exit 4"
			}

			return fmt.Sprintf("echo 'Generating map for %s'", e.City)
		}},
		Out:    &out,
		Stdout: &genOut,
	}

	results := r.Run(testContext(t, 10*time.Second), b)

	assert.Equal(t, 4, results.ExitCode())
	assert.Equal(t, "Generating map for Medellín\nGenerating map for Cartagena\n", genOut.String())
	assert.Len(t, progressLines(out.String()), 3)

	f := results.FirstFailure()
	require.NotNil(t, f)
	assert.Equal(t, "could not geocode\n", string(f.StdErr))
}

func TestRunner_EntryTimeout(t *testing.T) {
	skipOnWindows(t)

	b := exampleBatch()

	r := &Runner{
		Builder:      osBuilder{script: func(batch.Entry) string { return "exec sleep 10" }},
		Out:          io.Discard,
		EntryTimeout: 200 * time.Millisecond,
	}

	start := time.Now()
	results := r.Run(testContext(t, 10*time.Second), b)

	assert.Less(t, time.Since(start), 5*time.Second)

	f := results.FirstFailure()
	require.NotNil(t, f)
	assert.Equal(t, 1, f.Index)
	require.ErrorIs(t, f.Error, ErrEntryTimeout)
	require.ErrorIs(t, f.Error, ErrTimeoutExceeded)
	assert.Equal(t, 1, results.ExitCode())
	assert.Equal(t, 2, results.Count(ResultStatusNotRun))
}
