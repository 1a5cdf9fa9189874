// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"io"
	"slices"
	"time"
)

// ErrResultChildrenHasError is set on the batch result when one of its entries failed.
var ErrResultChildrenHasError = errors.New("result has children with errors")

// ResultStatus is the outcome of an entry or of the whole batch.
type ResultStatus int

const (
	// ResultStatusUnknown is the zero value, used before an entry finishes.
	ResultStatusUnknown ResultStatus = iota
	// ResultStatusSuccess means the generator exited zero.
	ResultStatusSuccess
	// ResultStatusError means the invocation failed.
	ResultStatusError
	// ResultStatusNotRun means the entry was never invoked.
	ResultStatusNotRun
)

// String implements fmt.Stringer.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "error"
	case ResultStatusNotRun:
		return "not-run"
	default:
		return "unknown"
	}
}

// Result represents the outcome of one entry, or of a batch when it has children.
type Result struct {
	Index    int          // 1-based position in the batch, 0 for the batch itself
	Label    string       // Entry description or batch name
	Status   ResultStatus // Outcome
	ExitCode int          // Exit code of the generator, -1 when it did not exit normally
	Error    error        // Error, if any
	StdOut   []byte       // Tail of the generator's stdout
	StdErr   []byte       // Tail of the generator's stderr
	Command  string       // Command line that was (or would have been) executed
	Artifact string       // Path of the poster that was written
	Started  time.Time    // Start time
	Finished time.Time    // Finish time
	Children Results      // Entry results, for the batch result
}

// Duration is the wall time between Started and Finished.
func (r *Result) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}

	return r.Finished.Sub(r.Started)
}

// Results is a slice of Result pointers, used to represent multiple results.
type Results []*Result

// HasError reports whether any result in the tree failed.
func (r Results) HasError() bool {
	for v := range slices.Values(r) {
		if v.Status == ResultStatusError {
			return true
		}

		if v.Children != nil {
			if v.Children.HasError() {
				return true
			}
		}
	}

	return false
}

// FirstFailure returns the first failed leaf result, or nil.
func (r Results) FirstFailure() *Result {
	for v := range slices.Values(r) {
		if len(v.Children) > 0 {
			if f := v.Children.FirstFailure(); f != nil {
				return f
			}

			continue
		}

		if v.Status == ResultStatusError {
			return v
		}
	}

	return nil
}

// Count returns the number of leaf results with the given status.
func (r Results) Count(status ResultStatus) int {
	n := 0

	for v := range slices.Values(r) {
		if len(v.Children) > 0 {
			n += v.Children.Count(status)
			continue
		}

		if v.Status == status {
			n++
		}
	}

	return n
}

// ExitCode is the process exit code for these results: 0 without failures,
// otherwise the failing generator's exit code when positive, and 1 when it is not.
func (r Results) ExitCode() int {
	f := r.FirstFailure()
	if f == nil {
		return 0
	}

	if f.ExitCode > 0 {
		return f.ExitCode
	}

	return 1
}

// WriteWithOptions outputs the results to the specified writer with the specified options.
func (r Results) WriteWithOptions(w io.Writer, options *OutputOptions) error {
	return WriteResults(w, r, options)
}
