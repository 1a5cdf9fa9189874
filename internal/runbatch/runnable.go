// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"io"
	"time"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
)

// Runnable is a single invocation prepared for a batch entry.
type Runnable interface {
	// Run executes the invocation and returns its result.
	// It should handle context cancellation and passing signals to any spawned process.
	Run(context.Context) Results
}

// Builder prepares the invocation for an entry.
type Builder interface {
	Build(ctx context.Context, entry batch.Entry) (Runnable, error)
}

// OutputSink is implemented by runnables that can stream output while they run.
// onLine receives every complete line, with isStderr set for the error stream.
type OutputSink interface {
	SetOutput(stdout, stderr io.Writer, onLine func(line string, isStderr bool))
}

// CommandLiner is implemented by runnables that can print the command they execute.
type CommandLiner interface {
	CommandLine() string
}

// ArtifactLocator is implemented by builders that know where an entry's output file ends up.
type ArtifactLocator interface {
	Artifact(entry batch.Entry, since time.Time) (string, error)
}

// ArtifactPredictor is implemented by builders that can name the file an entry will produce.
// An empty path means the name cannot be predicted.
type ArtifactPredictor interface {
	ExpectedPath(entry batch.Entry, t time.Time) string
}
