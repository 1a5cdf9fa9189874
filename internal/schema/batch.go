// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package schema

import (
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
)

const (
	// BatchTitle is the title of the batch definition schema.
	BatchTitle = "Poster Batch Definition"
	// BatchDescription describes the batch definition schema.
	BatchDescription = "An ordered list of posters for create_map_poster.py. " +
		"Entries run one at a time and the first failure stops the batch."
)

// ForBatch returns a generator for batch definition files. When themes is not empty,
// entry themes are restricted to those names.
func ForBatch(themes []string) *Generator {
	return NewGenerator().
		WithEnum("entries.format", batch.Formats).
		WithEnum("entries.theme", themes)
}

// BatchDefinition is the value schemas for batch files are generated from.
func BatchDefinition() any {
	return batch.Batch{}
}
