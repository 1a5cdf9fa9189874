// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	// ErrWriteGob is returned when writing the results to a binary format fails.
	ErrWriteGob = errors.New("failed to write binary results")
	// ErrReadGob is returned when reading binary results fails.
	ErrReadGob = errors.New("failed to read binary results")
)

// knownErrors are restored as themselves when decoded, so errors.Is keeps working on saved results.
var knownErrors = []error{
	ErrResultChildrenHasError,
	ErrNotAttempted,
	ErrDryRun,
	ErrBuildCommand,
	ErrEntryTimeout,
	ErrCancelled,
	ErrNonZeroExit,
	ErrCouldNotStartProcess,
	ErrTimeoutExceeded,
	ErrSignalReceived,
	ErrDuplicateSignalReceived,
}

// resultWire is the gob representation of Result. Errors travel as their message.
type resultWire struct {
	Index    int
	Label    string
	Status   ResultStatus
	ExitCode int
	ErrorMsg string
	HasError bool
	StdOut   []byte
	StdErr   []byte
	Command  string
	Artifact string
	Started  time.Time
	Finished time.Time
	Children Results
}

// GobEncode implements gob.GobEncoder.
func (r *Result) GobEncode() ([]byte, error) {
	w := resultWire{
		Index:    r.Index,
		Label:    r.Label,
		Status:   r.Status,
		ExitCode: r.ExitCode,
		StdOut:   r.StdOut,
		StdErr:   r.StdErr,
		Command:  r.Command,
		Artifact: r.Artifact,
		Started:  r.Started,
		Finished: r.Finished,
		Children: r.Children,
	}

	if r.Error != nil {
		w.HasError = true
		w.ErrorMsg = r.Error.Error()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *Result) GobDecode(data []byte) error {
	var w resultWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err //nolint:wrapcheck
	}

	*r = Result{
		Index:    w.Index,
		Label:    w.Label,
		Status:   w.Status,
		ExitCode: w.ExitCode,
		StdOut:   w.StdOut,
		StdErr:   w.StdErr,
		Command:  w.Command,
		Artifact: w.Artifact,
		Started:  w.Started,
		Finished: w.Finished,
		Children: w.Children,
	}

	if w.HasError {
		r.Error = decodeError(w.ErrorMsg)
	}

	return nil
}

func decodeError(msg string) error {
	for _, known := range knownErrors {
		if known.Error() == msg {
			return known
		}

		if rest, ok := strings.CutPrefix(msg, known.Error()+": "); ok {
			return fmt.Errorf("%w: %s", known, rest)
		}
	}

	return errors.New(msg) //nolint:err113
}

// WriteBinary writes the results to w in gob format.
func WriteBinary(w io.Writer, results Results) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(results); err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	return nil
}

// ReadBinary reads results previously written with WriteBinary.
func ReadBinary(r io.Reader) (Results, error) {
	var results Results

	dec := gob.NewDecoder(r)
	if err := dec.Decode(&results); err != nil {
		return nil, errors.Join(ErrReadGob, err)
	}

	return results, nil
}
