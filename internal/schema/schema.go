// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema generates JSON Schema and reference documentation for batch definition files.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	draft2020 = "https://json-schema.org/draft/2020-12/schema"

	typeArray  = "array"
	typeObject = "object"
	typeString = "string"
)

// ErrNotStruct is returned when a schema is requested for something other than a struct.
var ErrNotStruct = errors.New("expected struct type")

// Field represents a field in a JSON schema.
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Properties  []Field  `json:"properties,omitempty"`
	Items       *Field   `json:"items,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Generator builds schemas from struct definitions using their yaml and docdesc tags.
type Generator struct {
	enums map[string][]string
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{
		enums: make(map[string][]string),
	}
}

// WithEnum restricts the field at path to values. Paths are dotted yaml names,
// e.g. "entries.format". An empty values slice is ignored.
func (g *Generator) WithEnum(path string, values []string) *Generator {
	if len(values) > 0 {
		g.enums[path] = slices.Clone(values)
	}

	return g
}

// Fields returns the schema fields of the struct def.
func (g *Generator) Fields(def any) ([]Field, error) {
	return g.extractFields(reflect.TypeOf(def), "")
}

// JSONSchema returns the root JSON schema object for def.
func (g *Generator) JSONSchema(def any, title, description string) (map[string]any, error) {
	fields, err := g.Fields(def)
	if err != nil {
		return nil, err
	}

	root := g.objectProperty(fields)
	root["$schema"] = draft2020
	root["title"] = title

	if description != "" {
		root["description"] = description
	}

	return root, nil
}

// WriteJSON writes the JSON schema for def to w.
func (g *Generator) WriteJSON(w io.Writer, def any, title, description string) error {
	root, err := g.JSONSchema(def, title, description)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = fmt.Fprintf(w, "%s\n", data)

	return err //nolint:wrapcheck
}

// WriteYAML writes the JSON schema for def to w in YAML form.
func (g *Generator) WriteYAML(w io.Writer, def any, title, description string) error {
	root, err := g.JSONSchema(def, title, description)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = w.Write(data)

	return err //nolint:wrapcheck
}

// WriteMarkdown writes reference documentation for def to w, one table per object.
func (g *Generator) WriteMarkdown(w io.Writer, def any, title, description string) error {
	fields, err := g.Fields(def)
	if err != nil {
		return err
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)

	if description != "" {
		fmt.Fprintf(&sb, "%s\n\n", description)
	}

	writeTable(&sb, "Root", fields)

	_, err = io.WriteString(w, sb.String())

	return err //nolint:wrapcheck
}

func writeTable(sb *strings.Builder, heading string, fields []Field) {
	fmt.Fprintf(sb, "## %s\n\n", heading)
	sb.WriteString("| Field | Type | Required | Description |\n")
	sb.WriteString("|-------|------|----------|-------------|\n")

	var nested []Field

	for _, f := range fields {
		typ := f.Type
		if f.Items != nil {
			typ = fmt.Sprintf("%s of %s", f.Type, f.Items.Type)
		}

		req := "No"
		if f.Required {
			req = "Yes"
		}

		desc := f.Description
		if len(f.Enum) > 0 {
			desc = strings.TrimSpace(fmt.Sprintf("%s. One of `%s`", desc, strings.Join(f.Enum, "`, `")))
		}

		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", f.Name, typ, req, desc)

		if f.Items != nil && len(f.Items.Properties) > 0 {
			nested = append(nested, f)
		}
	}

	sb.WriteString("\n")

	for _, f := range nested {
		writeTable(sb, fmt.Sprintf("`%s` items", f.Name), f.Items.Properties)
	}
}

// extractFields extracts schema fields from a struct type using reflection.
func (g *Generator) extractFields(t reflect.Type, prefix string) ([]Field, error) {
	if t == nil {
		return nil, ErrNotStruct
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %s", ErrNotStruct, t.Kind())
	}

	var fields []Field

	for i := range t.NumField() {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		if field.Anonymous {
			embedded, err := g.extractFields(field.Type, prefix)
			if err != nil {
				return nil, err
			}

			fields = append(fields, embedded...)

			continue
		}

		f, err := g.fieldToSchemaField(field, prefix)
		if err != nil {
			return nil, err
		}

		if f != nil {
			fields = append(fields, *f)
		}
	}

	return sortFields(fields), nil
}

// fieldToSchemaField converts a struct field to a schema Field. Fields tagged yaml:"-" are skipped.
func (g *Generator) fieldToSchemaField(field reflect.StructField, prefix string) (*Field, error) {
	yamlTag := field.Tag.Get("yaml")
	if yamlTag == "-" {
		return nil, nil //nolint:nilnil
	}

	name := strings.ToLower(field.Name)
	if parts := strings.Split(yamlTag, ","); parts[0] != "" {
		name = parts[0]
	}

	path := name
	if prefix != "" {
		path = prefix + "." + name
	}

	f := &Field{
		Name:        name,
		Type:        getSchemaType(field.Type),
		Description: field.Tag.Get("docdesc"),
		Required:    !strings.Contains(yamlTag, "omitempty"),
		Enum:        g.enums[path],
	}

	elem := field.Type
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	switch elem.Kind() { //nolint:exhaustive
	case reflect.Slice, reflect.Array:
		item := &Field{Type: getSchemaType(elem.Elem())}

		if item.Type == typeObject {
			props, err := g.extractFields(elem.Elem(), path)
			if err != nil {
				return nil, err
			}

			item.Properties = props
		}

		f.Items = item
	case reflect.Struct:
		props, err := g.extractFields(elem, path)
		if err != nil {
			return nil, err
		}

		f.Properties = props
	}

	return f, nil
}

// getSchemaType converts a Go type to a JSON schema type.
func getSchemaType(t reflect.Type) string {
	switch t.Kind() { //nolint:exhaustive
	case reflect.String:
		return typeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return typeArray
	case reflect.Map, reflect.Struct:
		return typeObject
	case reflect.Ptr:
		return getSchemaType(t.Elem())
	default:
		return typeString
	}
}

// leadingFields come first, in this order. trailingFields come last.
var (
	leadingFields  = []string{"name", "label", "city", "country"}
	trailingFields = []string{"entries"}
)

// sortFields orders fields as leadingFields, the rest lexically, then trailingFields.
func sortFields(fields []Field) []Field {
	rank := func(name string) int {
		if i := slices.Index(leadingFields, name); i >= 0 {
			return i - len(leadingFields)
		}

		if slices.Contains(trailingFields, name) {
			return 1
		}

		return 0
	}

	sorted := slices.Clone(fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank(sorted[i].Name), rank(sorted[j].Name)
		if ri != rj {
			return ri < rj
		}

		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}

// objectProperty converts fields to a closed JSON schema object.
func (g *Generator) objectProperty(fields []Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := []string{}

	for _, f := range fields {
		properties[f.Name] = g.schemaFieldToProperty(f)

		if f.Required {
			required = append(required, f.Name)
		}
	}

	return map[string]any{
		"type":                 typeObject,
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// schemaFieldToProperty converts a Field to a JSON schema property.
func (g *Generator) schemaFieldToProperty(f Field) map[string]any {
	prop := map[string]any{
		"type": f.Type,
	}

	if f.Type == typeObject && len(f.Properties) > 0 {
		prop = g.objectProperty(f.Properties)
	}

	if f.Description != "" {
		prop["description"] = f.Description
	}

	if len(f.Enum) > 0 {
		prop["enum"] = f.Enum
	}

	if f.Type == typeArray && f.Items != nil {
		prop["items"] = g.schemaFieldToProperty(*f.Items)
	}

	return prop
}
