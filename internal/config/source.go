// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
)

// ErrGetConfigFile is returned when a definition file cannot be fetched.
var ErrGetConfigFile = errors.New("failed to get batch definition file")

// Load resolves src to a batch. A bare name selects a built-in batch; anything else is a
// go-getter URL (a local path, git::, https://, s3:: ...) of a YAML or HCL definition.
func Load(ctx context.Context, src string) (*batch.Batch, error) {
	if IsBuiltinName(src) {
		return Builtin(src)
	}

	ctxlog.Debug(ctx, "fetching batch definition", "src", src)

	data, err := getURL(ctx, src)
	if err != nil {
		return nil, err
	}

	return Decode(src, data)
}

// IsBuiltinName reports whether src names a built-in batch rather than a file or URL.
func IsBuiltinName(src string) bool {
	return src != "" &&
		!strings.ContainsAny(src, `/\:.`)
}

// Decode picks the decoder from the file extension: .hcl is HCL, anything else YAML.
func Decode(fileName string, data []byte) (*batch.Batch, error) {
	ext := strings.ToLower(filepath.Ext(stripQuery(fileName)))

	if ext == ".hcl" {
		return DecodeHCL(fileName, data)
	}

	return DecodeYAML(fileName, data)
}

// nameFromFile derives a batch name from its file name.
func nameFromFile(fileName string) string {
	base := filepath.Base(stripQuery(fileName))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func stripQuery(url string) string {
	if i := strings.Index(url, goGetterRefSeparator); i >= 0 {
		return url[:i]
	}

	return url
}

// getURL retrieves the content from the specified URL using Hashicorp's go-getter.
// It removes the temporary file after reading its content.
func getURL(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrGetConfigFile
	}

	tmpDir, err := os.MkdirTemp("", "posterbatch-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string
	// Remote sources are fetched as a directory and the file is read from there.
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, errors.Join(ErrGetConfigFile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, fmt.Errorf("%w: invalid URL format: %s", ErrGetConfigFile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	return data, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // Minimum parts in a go-getter URL: scheme, host, and path
)

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// It returns the new getter URL without the file name and the file name itself.
// It will append any ref query parameter to the new URL if it exists.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref, fileName string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName = filepath.Base(last)
	parts[len(parts)-1] = filepath.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
