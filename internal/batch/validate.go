// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrMissingCity is returned when an entry has no city.
	ErrMissingCity = errors.New("city is required")
	// ErrMissingCountry is returned when an entry has no country.
	ErrMissingCountry = errors.New("country is required")
	// ErrNegativeDistance is returned when the map radius is negative.
	ErrNegativeDistance = errors.New("distance must not be negative")
	// ErrInvalidFormat is returned when the output format is not png, svg or pdf.
	ErrInvalidFormat = errors.New("unsupported output format")
	// ErrInvalidDimensions is returned when width or height is negative.
	ErrInvalidDimensions = errors.New("width and height must be positive")
	// ErrIncompleteCentre is returned when only one of latitude and longitude is set.
	ErrIncompleteCentre = errors.New("latitude and longitude must be set together")
	// ErrCentreOutOfRange is returned when the coordinates are not on the globe.
	ErrCentreOutOfRange = errors.New("latitude or longitude out of range")
	// ErrUnknownTheme is returned when the theme is not in the theme catalogue.
	ErrUnknownTheme = errors.New("unknown theme")
	// ErrStyleUnavailable is returned when AI styling is requested without an API token.
	ErrStyleUnavailable = errors.New("styling requested but no API token is configured")
)

// ThemeChecker reports whether a theme name is known.
type ThemeChecker interface {
	Has(name string) bool
}

// ValidateOptions tunes Validate.
type ValidateOptions struct {
	// Themes is consulted for entries that name a theme. Nil disables the check.
	Themes ThemeChecker
	// StyleAvailable must be true for entries that request AI styling.
	StyleAvailable bool
}

// EntryError attributes a validation error to an entry.
type EntryError struct {
	Index int // 1-based
	Label string
	Err   error
}

// Error implements error.
func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%s): %s", e.Index, e.Label, e.Err.Error())
}

// Unwrap returns the underlying validation error.
func (e *EntryError) Unwrap() error {
	return e.Err
}

// Validate checks every entry and returns all problems found, or nil.
// A batch without entries is valid and runs as a no-op.
func (b *Batch) Validate(opts ValidateOptions) error {
	if b == nil {
		return nil
	}

	var result *multierror.Error

	for i, e := range b.Entries {
		for _, err := range e.problems(opts) {
			result = multierror.Append(result, &EntryError{Index: i + 1, Label: e.Description(), Err: err})
		}
	}

	if result == nil {
		return nil
	}

	result.ErrorFormat = listFormat

	return result
}

func (e Entry) problems(opts ValidateOptions) []error {
	var errs []error

	if strings.TrimSpace(e.City) == "" {
		errs = append(errs, ErrMissingCity)
	}

	if strings.TrimSpace(e.Country) == "" {
		errs = append(errs, ErrMissingCountry)
	}

	if e.Distance < 0 {
		errs = append(errs, ErrNegativeDistance)
	}

	if !validFormat(e.Format) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFormat, e.Format))
	}

	if e.Width < 0 || e.Height < 0 {
		errs = append(errs, ErrInvalidDimensions)
	}

	switch {
	case (e.Latitude == nil) != (e.Longitude == nil):
		errs = append(errs, ErrIncompleteCentre)
	case e.HasCentre() && (*e.Latitude < -90 || *e.Latitude > 90 || *e.Longitude < -180 || *e.Longitude > 180):
		errs = append(errs, ErrCentreOutOfRange)
	}

	if e.Theme != "" && opts.Themes != nil && !opts.Themes.Has(e.Theme) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownTheme, e.Theme))
	}

	if e.Style && !opts.StyleAvailable {
		errs = append(errs, ErrStyleUnavailable)
	}

	return errs
}

func listFormat(errs []error) string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%d problem(s) in batch:", len(errs))

	for _, err := range errs {
		sb.WriteString("\n  * ")
		sb.WriteString(err.Error())
	}

	return sb.String()
}
