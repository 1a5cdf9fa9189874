// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package theme reads the named colour themes that the poster generator renders with.
// Themes are JSON records stored one per file as <themes dir>/<name>.json. The optional
// hidden_themes.json lists names to leave out of listings; hidden themes stay usable.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// HiddenThemesFile is the name of the file listing hidden themes.
const HiddenThemesFile = "hidden_themes.json"

const themeFileExt = ".json"

var (
	// ErrThemesDir is returned when the themes directory cannot be read.
	ErrThemesDir = errors.New("cannot read themes directory")
	// ErrParseTheme is returned when a theme file is not valid JSON.
	ErrParseTheme = errors.New("cannot parse theme file")
	// ErrInvalidColour is returned when a theme colour is not a hex colour.
	ErrInvalidColour = errors.New("invalid colour")
	// ErrThemeNotFound is returned by Get for unknown names.
	ErrThemeNotFound = errors.New("theme not found")
)

// hexColour matches #RGB, #RGBA, #RRGGBB and #RRGGBBAA.
var hexColour = regexp.MustCompile(`^#([0-9A-Fa-f]{3,4}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)

// FS is the filesystem themes are read from.
var FS = afero.NewOsFs()

// Theme is a named palette.
type Theme struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Bg              string `json:"bg"`
	Text            string `json:"text"`
	GradientColor   string `json:"gradient_color,omitempty"`
	Water           string `json:"water"`
	Parks           string `json:"parks"`
	RoadMotorway    string `json:"road_motorway"`
	RoadPrimary     string `json:"road_primary"`
	RoadSecondary   string `json:"road_secondary"`
	RoadTertiary    string `json:"road_tertiary"`
	RoadResidential string `json:"road_residential"`
	RoadDefault     string `json:"road_default"`
}

// Colours returns the palette keyed by the JSON field names; unset colours are omitted.
func (t Theme) Colours() map[string]string {
	all := map[string]string{
		"bg":               t.Bg,
		"text":             t.Text,
		"gradient_color":   t.GradientColor,
		"water":            t.Water,
		"parks":            t.Parks,
		"road_motorway":    t.RoadMotorway,
		"road_primary":     t.RoadPrimary,
		"road_secondary":   t.RoadSecondary,
		"road_tertiary":    t.RoadTertiary,
		"road_residential": t.RoadResidential,
		"road_default":     t.RoadDefault,
	}

	maps.DeleteFunc(all, func(_, v string) bool { return v == "" })

	return all
}

// Validate checks that every set colour is a hex colour.
func (t Theme) Validate() error {
	var result error

	colours := t.Colours()

	for _, k := range slices.Sorted(maps.Keys(colours)) {
		if v := colours[k]; !hexColour.MatchString(v) {
			result = multierror.Append(result, fmt.Errorf("%w: %s=%q", ErrInvalidColour, k, v))
		}
	}

	return result
}

// Catalog is the set of themes found in a directory.
type Catalog struct {
	Dir    string
	themes map[string]Theme
	hidden map[string]struct{}
}

// Load reads every theme in dir. Problems are reported together in the returned error.
// Files that fail to parse are left out; themes with colours in another notation
// (e.g. matplotlib names) are kept, since the generator may still render them.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{
		Dir:    dir,
		themes: make(map[string]Theme),
		hidden: make(map[string]struct{}),
	}

	if _, err := FS.Stat(dir); err != nil {
		return nil, errors.Join(ErrThemesDir, err)
	}

	matches, err := afero.Glob(FS, filepath.Join(dir, "*"+themeFileExt))
	if err != nil {
		return nil, errors.Join(ErrThemesDir, err)
	}

	var result error

	for _, path := range matches {
		base := filepath.Base(path)
		if base == HiddenThemesFile {
			continue
		}

		name := strings.TrimSuffix(base, themeFileExt)

		t, err := readTheme(path)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", base, err))
		}

		if err == nil || errors.Is(err, ErrInvalidColour) {
			c.themes[name] = t
		}
	}

	hidden, err := readHidden(filepath.Join(dir, HiddenThemesFile))
	if err != nil {
		result = multierror.Append(result, err)
	}

	for _, h := range hidden {
		c.hidden[h] = struct{}{}
	}

	return c, result
}

// Has reports whether name is a known theme, hidden or not.
func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}

	_, ok := c.themes[name]

	return ok
}

// Get returns the theme called name.
func (c *Catalog) Get(name string) (Theme, error) {
	if t, ok := c.themes[name]; ok {
		return t, nil
	}

	return Theme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
}

// Names returns the visible theme names in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.themes))

	for name := range c.themes {
		if _, hidden := c.hidden[name]; !hidden {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// AllNames returns every theme name, hidden ones included, in lexical order.
func (c *Catalog) AllNames() []string {
	return slices.Sorted(maps.Keys(c.themes))
}

// Hidden reports whether name is excluded from listings.
func (c *Catalog) Hidden(name string) bool {
	_, ok := c.hidden[name]
	return ok
}

// Len returns the number of themes, including hidden ones.
func (c *Catalog) Len() int {
	return len(c.themes)
}

func readTheme(path string) (Theme, error) {
	b, err := afero.ReadFile(FS, path)
	if err != nil {
		return Theme{}, err
	}

	var t Theme
	if err := json.Unmarshal(b, &t); err != nil {
		return Theme{}, errors.Join(ErrParseTheme, err)
	}

	return t, t.Validate()
}

func readHidden(path string) ([]string, error) {
	b, err := afero.ReadFile(FS, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var hidden []string
	if err := json.Unmarshal(b, &hidden); err != nil {
		return nil, fmt.Errorf("%s: %w", HiddenThemesFile, errors.Join(ErrParseTheme, err))
	}

	return hidden, nil
}
