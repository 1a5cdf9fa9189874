// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
)

var (
	// ErrParseYAML is returned when a YAML definition cannot be decoded.
	ErrParseYAML = errors.New("failed to parse YAML batch definition")
	// ErrEncodeYAML is returned when a batch cannot be written as YAML.
	ErrEncodeYAML = errors.New("failed to encode batch as YAML")
)

// DecodeYAML decodes a YAML batch definition. Unknown keys are rejected so typos surface early.
func DecodeYAML(fileName string, data []byte) (*batch.Batch, error) {
	var b batch.Batch

	if err := yaml.UnmarshalWithOptions(data, &b, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %s:\n%s", ErrParseYAML, fileName, yaml.FormatError(err, false, true))
	}

	if b.Name == "" {
		b.Name = nameFromFile(fileName)
	}

	return &b, nil
}

// EncodeYAML writes b as a YAML definition.
func EncodeYAML(b *batch.Batch) ([]byte, error) {
	data, err := yaml.Marshal(b)
	if err != nil {
		return nil, errors.Join(ErrEncodeYAML, err)
	}

	return data, nil
}
