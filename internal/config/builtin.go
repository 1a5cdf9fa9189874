// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
)

// ErrUnknownBatch is returned for a built-in batch name that does not exist.
var ErrUnknownBatch = errors.New("unknown built-in batch")

//go:embed builtin/*.yaml
var builtinFS embed.FS

const builtinDir = "builtin"

// BuiltinNames lists the batches compiled into the binary, sorted.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir(builtinDir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}

	slices.Sort(names)

	return names
}

// Builtin returns the built-in batch called name.
func Builtin(name string) (*batch.Batch, error) {
	if !slices.Contains(BuiltinNames(), name) {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBatch, name, strings.Join(BuiltinNames(), ", "))
	}

	fileName := path.Join(builtinDir, name+".yaml")

	data, err := builtinFS.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownBatch, name, err)
	}

	return DecodeYAML(fileName, data)
}
