// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummary(t *testing.T) {
	withoutColor(t)

	success := Results{{
		Label:  "colombia-brazil",
		Status: ResultStatusSuccess,
		Children: Results{
			{Index: 1, Status: ResultStatusSuccess},
			{Index: 2, Status: ResultStatusSuccess},
		},
	}}
	dry := Results{{
		Label:    "colombia-brazil",
		Status:   ResultStatusSuccess,
		Children: Results{{Index: 1, Status: ResultStatusNotRun, Error: ErrDryRun}},
	}}

	tests := []struct {
		name     string
		results  Results
		dryRun   bool
		expected string
	}{
		{
			name:     "success",
			results:  success,
			expected: "✓ all 2 posters generated for batch \"colombia-brazil\"\n",
		},
		{
			name:     "dry run",
			results:  dry,
			dryRun:   true,
			expected: "~ dry run of batch \"colombia-brazil\": 1 entries, nothing executed\n",
		},
		{
			name:    "failure",
			results: failedBatchResults(),
			expected: "✗ batch \"colombia-brazil\" stopped at [2/3] Cartagena (exit code: 2)\n" +
				"  completed 1/3, not attempted 1\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSummary(&buf, tc.results, tc.dryRun))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestBatchError(t *testing.T) {
	results := failedBatchResults()
	err := &BatchError{Batch: "colombia-brazil", Failed: results.FirstFailure(), Total: 3}

	assert.Equal(t,
		`batch "colombia-brazil" failed at [2/3] Cartagena: wrapped: geocoding failed (exit code: 2)`,
		err.Error(),
	)
	assert.EqualError(t, err.Unwrap(), "wrapped: geocoding failed")
}

func TestResultsErr(t *testing.T) {
	results := failedBatchResults()

	err := results.Err()

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.Failed.Index)
	assert.Equal(t, 3, batchErr.Total)
	assert.Contains(t, err.Error(), "failed at [2/3] Cartagena")

	assert.NoError(t, Results{{Label: "ok", Status: ResultStatusSuccess}}.Err())
	assert.NoError(t, Results(nil).Err())
}
