// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ErrParseHCL is returned when an HCL definition cannot be decoded.
var ErrParseHCL = errors.New("failed to parse HCL batch definition")

// Environ supplies the variables exposed to HCL expressions as env.
var Environ = os.Environ

type hclFile struct {
	Batch hclBatch `hcl:"batch,block"`
}

type hclBatch struct {
	Name        string     `hcl:"name,label"`
	Description string     `hcl:"description,optional"`
	Entries     []hclEntry `hcl:"entry,block"`
}

type hclEntry struct {
	Label          string   `hcl:"label,label"`
	City           string   `hcl:"city"`
	Country        string   `hcl:"country"`
	Theme          string   `hcl:"theme,optional"`
	Distance       int      `hcl:"distance,optional"`
	FontFamily     string   `hcl:"font_family,optional"`
	Width          float64  `hcl:"width,optional"`
	Height         float64  `hcl:"height,optional"`
	Format         string   `hcl:"format,optional"`
	DisplayCity    string   `hcl:"display_city,optional"`
	DisplayCountry string   `hcl:"display_country,optional"`
	CountryLabel   string   `hcl:"country_label,optional"`
	Latitude       *float64 `hcl:"latitude,optional"`
	Longitude      *float64 `hcl:"longitude,optional"`
	Style          bool     `hcl:"style,optional"`
}

// DecodeHCL decodes an HCL batch definition containing exactly one batch block.
func DecodeHCL(fileName string, data []byte) (*batch.Batch, error) {
	file, diags := hclsyntax.ParseConfig(data, fileName, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrParseHCL, diags)
	}

	var f hclFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &f); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrParseHCL, diags)
	}

	b := &batch.Batch{
		Name:        f.Batch.Name,
		Description: f.Batch.Description,
		Entries:     make([]batch.Entry, 0, len(f.Batch.Entries)),
	}

	for _, e := range f.Batch.Entries {
		b.Entries = append(b.Entries, batch.Entry{
			Label:          e.Label,
			City:           e.City,
			Country:        e.Country,
			Theme:          e.Theme,
			Distance:       e.Distance,
			FontFamily:     e.FontFamily,
			Width:          e.Width,
			Height:         e.Height,
			Format:         e.Format,
			DisplayCity:    e.DisplayCity,
			DisplayCountry: e.DisplayCountry,
			CountryLabel:   e.CountryLabel,
			Latitude:       e.Latitude,
			Longitude:      e.Longitude,
			Style:          e.Style,
		})
	}

	if b.Name == "" {
		b.Name = nameFromFile(fileName)
	}

	return b, nil
}

// evalContext exposes the process environment as env and a few string functions.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	for _, kv := range Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
		},
	}
}

// EncodeHCL writes b as an HCL definition. Unset optional fields are omitted.
func EncodeHCL(b *batch.Batch) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	block := root.AppendNewBlock("batch", []string{b.Name})
	body := block.Body()

	if b.Description != "" {
		body.SetAttributeValue("description", cty.StringVal(b.Description))
	}

	for i, e := range b.Entries {
		if i > 0 || b.Description != "" {
			body.AppendNewline()
		}

		eb := body.AppendNewBlock("entry", []string{e.Label}).Body()
		eb.SetAttributeValue("city", cty.StringVal(e.City))
		eb.SetAttributeValue("country", cty.StringVal(e.Country))

		setString(eb, "theme", e.Theme)

		if e.Distance > 0 {
			eb.SetAttributeValue("distance", cty.NumberIntVal(int64(e.Distance)))
		}

		setString(eb, "font_family", e.FontFamily)
		setFloat(eb, "width", e.Width)
		setFloat(eb, "height", e.Height)
		setString(eb, "format", e.Format)
		setString(eb, "display_city", e.DisplayCity)
		setString(eb, "display_country", e.DisplayCountry)
		setString(eb, "country_label", e.CountryLabel)

		if e.Latitude != nil {
			eb.SetAttributeValue("latitude", cty.NumberFloatVal(*e.Latitude))
		}

		if e.Longitude != nil {
			eb.SetAttributeValue("longitude", cty.NumberFloatVal(*e.Longitude))
		}

		if e.Style {
			eb.SetAttributeValue("style", cty.True)
		}
	}

	return f.Bytes()
}

func setString(body *hclwrite.Body, name, v string) {
	if v != "" {
		body.SetAttributeValue(name, cty.StringVal(v))
	}
}

func setFloat(body *hclwrite.Body, name string, v float64) {
	if v > 0 {
		body.SetAttributeValue(name, cty.NumberFloatVal(v))
	}
}
