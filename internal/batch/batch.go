// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"slices"
)

// Batch is a named, ordered list of entries.
// A Batch is treated as read-only once loaded; the runner works on a Clone.
type Batch struct {
	Name        string  `yaml:"name,omitempty" json:"name" docdesc:"Name of the batch, defaults to the file name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty" docdesc:"What the batch produces"`
	Entries     []Entry `yaml:"entries" json:"entries" docdesc:"Posters to generate, in the order they run"`
}

// Len returns the number of entries.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}

	return len(b.Entries)
}

// Clone returns a deep copy so that later edits to b cannot reorder or change a running batch.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}

	c := &Batch{
		Name:        b.Name,
		Description: b.Description,
		Entries:     make([]Entry, 0, len(b.Entries)),
	}

	for e := range slices.Values(b.Entries) {
		c.Entries = append(c.Entries, e.Clone())
	}

	return c
}

// Concat joins batches in order under a new name.
func Concat(name string, batches ...*Batch) *Batch {
	out := &Batch{Name: name}

	for _, b := range batches {
		if b == nil {
			continue
		}

		out.Entries = append(out.Entries, b.Clone().Entries...)
	}

	return out
}

// ForThemes builds a batch that renders base once per theme, in the order given.
// Each entry is labelled with its theme.
func ForThemes(name string, base Entry, themes []string) *Batch {
	out := &Batch{
		Name:    name,
		Entries: make([]Entry, 0, len(themes)),
	}

	for _, t := range themes {
		e := base.Clone()
		e.Theme = t
		e.Label = t
		out.Entries = append(out.Entries, e)
	}

	return out
}
