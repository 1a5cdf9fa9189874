// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Output formats understood by the generator.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
)

// Formats lists the accepted values of Entry.Format.
var Formats = []string{FormatPNG, FormatSVG, FormatPDF}

// Entry is one poster: a city, a theme and the map radius, plus optional overrides.
// Zero values mean "let the generator decide".
type Entry struct {
	Label          string   `yaml:"label,omitempty" json:"label,omitempty" docdesc:"Progress line text, replaces the generated description"`
	City           string   `yaml:"city" json:"city" docdesc:"City to geocode"`
	Country        string   `yaml:"country" json:"country" docdesc:"Country of the city"`
	Theme          string   `yaml:"theme,omitempty" json:"theme,omitempty" docdesc:"Theme name from the generator theme directory"`
	Distance       int      `yaml:"distance,omitempty" json:"distance,omitempty" docdesc:"Map radius in metres"`
	FontFamily     string   `yaml:"font_family,omitempty" json:"font_family,omitempty" docdesc:"Google Fonts family used for the labels"`
	Width          float64  `yaml:"width,omitempty" json:"width,omitempty" docdesc:"Poster width in inches"`
	Height         float64  `yaml:"height,omitempty" json:"height,omitempty" docdesc:"Poster height in inches"`
	Format         string   `yaml:"format,omitempty" json:"format,omitempty" docdesc:"Output file format"`
	DisplayCity    string   `yaml:"display_city,omitempty" json:"display_city,omitempty" docdesc:"City name printed on the poster"`
	DisplayCountry string   `yaml:"display_country,omitempty" json:"display_country,omitempty" docdesc:"Country name printed on the poster"`
	CountryLabel   string   `yaml:"country_label,omitempty" json:"country_label,omitempty" docdesc:"Overrides the country line of the poster"`
	Latitude       *float64 `yaml:"latitude,omitempty" json:"latitude,omitempty" docdesc:"Map centre latitude, skips geocoding when set with longitude"`
	Longitude      *float64 `yaml:"longitude,omitempty" json:"longitude,omitempty" docdesc:"Map centre longitude, skips geocoding when set with latitude"`
	Style          bool     `yaml:"style,omitempty" json:"style,omitempty" docdesc:"Restyle the poster with the AI style pass"`
}

// Description is the text printed after the [i/N] progress index.
func (e Entry) Description() string {
	if e.Label != "" {
		return e.Label
	}

	desc := e.City
	if e.Country != "" {
		desc += ", " + e.Country
	}

	var details []string
	if e.Theme != "" {
		details = append(details, e.Theme)
	}

	if e.Distance > 0 {
		details = append(details, strconv.Itoa(e.Distance)+"m")
	}

	if len(details) > 0 {
		desc += " (" + strings.Join(details, ", ") + ")"
	}

	return desc
}

// OutputFormat returns the requested format, or png when none was set.
func (e Entry) OutputFormat() string {
	if e.Format == "" {
		return FormatPNG
	}

	return e.Format
}

// HasCentre reports whether the entry overrides geocoding with explicit coordinates.
func (e Entry) HasCentre() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	c := e
	if e.Latitude != nil {
		lat := *e.Latitude
		c.Latitude = &lat
	}

	if e.Longitude != nil {
		lon := *e.Longitude
		c.Longitude = &lon
	}

	return c
}

// String implements fmt.Stringer.
func (e Entry) String() string {
	return fmt.Sprintf("%s, %s [%s]", e.City, e.Country, e.Theme)
}

func validFormat(f string) bool {
	return f == "" || slices.Contains(Formats, f)
}
