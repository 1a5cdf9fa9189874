// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failedBatchResults() Results {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	return Results{{
		Label:    "colombia-brazil",
		Status:   ResultStatusError,
		ExitCode: 2,
		Error:    ErrResultChildrenHasError,
		Started:  started,
		Finished: started.Add(time.Minute),
		Children: Results{
			{
				Index:    1,
				Label:    "Medellín",
				Status:   ResultStatusSuccess,
				Artifact: "posters/medellín_neon_purple_green_alt_20260102_030405.png",
				Started:  started,
				Finished: started.Add(30 * time.Second),
			},
			{
				Index:    2,
				Label:    "Cartagena",
				Status:   ResultStatusError,
				ExitCode: 2,
				Error:    fmt.Errorf("wrapped: %w", errors.New("geocoding failed")),
				StdErr:   []byte("Traceback...\n"),
				Command:  "python3 create_map_poster.py --city Cartagena --country Colombia",
			},
			{
				Index:  3,
				Label:  "Rio de Janeiro",
				Status: ResultStatusNotRun,
				Error:  ErrNotAttempted,
			},
		},
	}}
}

func TestResults_Queries(t *testing.T) {
	results := failedBatchResults()

	assert.True(t, results.HasError())
	assert.Equal(t, 2, results.ExitCode())
	assert.Equal(t, 1, results.Count(ResultStatusSuccess))
	assert.Equal(t, 1, results.Count(ResultStatusError))
	assert.Equal(t, 1, results.Count(ResultStatusNotRun))

	f := results.FirstFailure()
	require.NotNil(t, f)
	assert.Equal(t, "Cartagena", f.Label)
	assert.Equal(t, time.Minute, results[0].Duration())
	assert.Zero(t, f.Duration())
}

func TestResults_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		results  Results
		expected int
	}{
		{"empty", nil, 0},
		{"success", Results{{Status: ResultStatusSuccess}}, 0},
		{"not run only", Results{{Status: ResultStatusNotRun}}, 0},
		{"positive exit code", Results{{Status: ResultStatusError, ExitCode: 7}}, 7},
		{"killed", Results{{Status: ResultStatusError, ExitCode: -1}}, 1},
		{"error without code", Results{{Status: ResultStatusError}}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.results.ExitCode())
		})
	}
}

func TestResultStatus_String(t *testing.T) {
	assert.Equal(t, "success", ResultStatusSuccess.String())
	assert.Equal(t, "error", ResultStatusError.String())
	assert.Equal(t, "not-run", ResultStatusNotRun.String())
	assert.Equal(t, "unknown", ResultStatusUnknown.String())
}

func TestBinary_RoundTrip(t *testing.T) {
	results := failedBatchResults()

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, results))

	got, err := ReadBinary(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)

	root := got[0]
	assert.Equal(t, "colombia-brazil", root.Label)
	assert.Equal(t, ResultStatusError, root.Status)
	require.ErrorIs(t, root.Error, ErrResultChildrenHasError)
	assert.True(t, root.Started.Equal(results[0].Started))
	require.Len(t, root.Children, 3)

	assert.Equal(t, results[0].Children[0].Artifact, root.Children[0].Artifact)
	assert.NoError(t, root.Children[0].Error)

	failed := root.Children[1]
	assert.Equal(t, 2, failed.ExitCode)
	assert.EqualError(t, failed.Error, "wrapped: geocoding failed")
	assert.Equal(t, "Traceback...\n", string(failed.StdErr))
	assert.Equal(t, results[0].Children[1].Command, failed.Command)

	require.ErrorIs(t, root.Children[2].Error, ErrNotAttempted)
	assert.Equal(t, 2, got.ExitCode())
}

func TestDecodeError_KeepsWrappedSentinel(t *testing.T) {
	err := decodeError(fmt.Errorf("%w: could not geocode Cartagena", ErrNonZeroExit).Error())

	require.ErrorIs(t, err, ErrNonZeroExit)
	assert.EqualError(t, err, "process exited with non-zero status: could not geocode Cartagena")

	assert.Same(t, ErrNotAttempted, decodeError(ErrNotAttempted.Error()))
	assert.NotErrorIs(t, decodeError("geocoding failed"), ErrNonZeroExit)
}

func TestReadBinary_Garbage(t *testing.T) {
	_, err := ReadBinary(bytes.NewReader([]byte("not a gob stream")))
	require.ErrorIs(t, err, ErrReadGob)
}
