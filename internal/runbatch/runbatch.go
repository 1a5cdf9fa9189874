// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNotAttempted marks entries that were never started because an earlier entry failed.
	ErrNotAttempted = errors.New("not attempted, an earlier entry failed")
	// ErrDryRun marks entries that were only printed.
	ErrDryRun = errors.New("dry run, not executed")
	// ErrBuildCommand is returned when the invocation for an entry could not be prepared.
	ErrBuildCommand = errors.New("could not prepare generator command")
	// ErrEntryTimeout is returned when an entry runs longer than the configured timeout.
	ErrEntryTimeout = errors.New("entry timeout exceeded")
	// ErrCancelled is returned for the entry that was due to start when the batch was cancelled.
	ErrCancelled = errors.New("batch cancelled")
	// ErrNilBuilder is returned when the runner has nothing to build invocations with.
	ErrNilBuilder = errors.New("runner has no command builder")
)

// BatchError describes the entry that stopped a batch.
type BatchError struct {
	Batch  string
	Failed *Result
	Total  int
}

func (e *BatchError) Error() string {
	var sb strings.Builder

	sb.WriteString("batch ")
	sb.WriteString(strconv.Quote(e.Batch))
	sb.WriteString(" failed at [")
	sb.WriteString(strconv.Itoa(e.Failed.Index))
	sb.WriteString("/")
	sb.WriteString(strconv.Itoa(e.Total))
	sb.WriteString("] ")
	sb.WriteString(e.Failed.Label)

	if e.Failed.Error != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Failed.Error.Error())
	}

	sb.WriteString(" (exit code: ")
	sb.WriteString(strconv.Itoa(e.Failed.ExitCode))
	sb.WriteString(")")

	return sb.String()
}

// Unwrap returns the error of the failed entry.
func (e *BatchError) Unwrap() error {
	return e.Failed.Error
}

// Err returns a *BatchError for the first batch in r that stopped on a failed entry, or nil.
func (r Results) Err() error {
	for _, root := range r {
		if f := (Results{root}).FirstFailure(); f != nil {
			return &BatchError{Batch: root.Label, Failed: f, Total: len(root.Children)}
		}
	}

	return nil
}
