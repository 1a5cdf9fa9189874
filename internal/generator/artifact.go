// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package generator

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/spf13/afero"
)

// TimestampLayout is the timestamp the generator puts in poster file names.
const TimestampLayout = "20060102_150405"

// mtimeSlack absorbs filesystems that store modification times in whole seconds.
const mtimeSlack = time.Second

// ErrArtifactNotFound is returned when no poster newer than the invocation exists.
var ErrArtifactNotFound = errors.New("no poster found")

// Slug is the city part of a poster file name.
func Slug(city string) string {
	return strings.ReplaceAll(strings.ToLower(city), " ", "_")
}

// ExpectedPath is the file the generator writes for entry when started at t.
// It is empty when the entry leaves the theme to the generator, since the name depends on it.
func (g *Generator) ExpectedPath(entry batch.Entry, t time.Time) string {
	if entry.Theme == "" {
		return ""
	}

	name := fmt.Sprintf("%s_%s_%s.%s", Slug(entry.City), entry.Theme, t.Format(TimestampLayout), entry.OutputFormat())

	return filepath.Join(g.outputDir(), name)
}

// Artifact implements runbatch.ArtifactLocator. It returns the newest poster for entry
// modified at or after since.
func (g *Generator) Artifact(entry batch.Entry, since time.Time) (string, error) {
	theme := entry.Theme
	if theme == "" {
		theme = "*"
	}

	pattern := filepath.Join(g.outputDir(), fmt.Sprintf("%s_%s_*.%s", Slug(entry.City), theme, entry.OutputFormat()))

	matches, err := afero.Glob(FS, pattern)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrArtifactNotFound, pattern, err)
	}

	var (
		newest   string
		newestAt time.Time
	)

	for _, m := range matches {
		info, err := FS.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}

		if info.ModTime().Before(since.Add(-mtimeSlack)) {
			continue
		}

		if newest == "" || info.ModTime().After(newestAt) {
			newest = m
			newestAt = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, pattern)
	}

	return newest, nil
}
