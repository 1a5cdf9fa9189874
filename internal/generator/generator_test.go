// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func memFS(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	stubs := gostub.Stub(&FS, fs)
	t.Cleanup(stubs.Reset)

	return fs
}

func TestArgs(t *testing.T) {
	g := &Generator{}

	tests := []struct {
		name     string
		entry    batch.Entry
		expected []string
	}{
		{
			name:  "required only",
			entry: batch.Entry{City: "Venice", Country: "Italy"},
			expected: []string{
				"create_map_poster.py", "--city", "Venice", "--country", "Italy",
			},
		},
		{
			name: "example entry",
			entry: batch.Entry{
				City: "Medellín", Country: "Colombia", Theme: "neon_purple_green_alt", Distance: 8000,
			},
			expected: []string{
				"create_map_poster.py", "--city", "Medellín", "--country", "Colombia",
				"--theme", "neon_purple_green_alt", "--distance", "8000",
			},
		},
		{
			name: "every option",
			entry: batch.Entry{
				Label:          "ignored",
				City:           "Rio de Janeiro",
				Country:        "Brazil",
				Theme:          "neon_amber_blue_water",
				Distance:       12000,
				FontFamily:     "Noto Sans JP",
				Width:          12,
				Height:         16.5,
				Format:         batch.FormatSVG,
				DisplayCity:    "Rio",
				DisplayCountry: "Brasil",
				CountryLabel:   "BR",
				Latitude:       ptr(-22.9068),
				Longitude:      ptr(-43.1729),
				Style:          true,
			},
			expected: []string{
				"create_map_poster.py", "--city", "Rio de Janeiro", "--country", "Brazil",
				"--theme", "neon_amber_blue_water", "--distance", "12000",
				"--font-family", "Noto Sans JP",
				"--width", "12", "--height", "16.5",
				"--format", "svg",
				"--display-city", "Rio", "--display-country", "Brasil", "--country-label", "BR",
				"--latitude", "-22.9068", "--longitude", "-43.1729",
				"--style",
			},
		},
		{
			name:  "half a centre is ignored",
			entry: batch.Entry{City: "Oslo", Country: "Norway", Latitude: ptr(59.9)},
			expected: []string{
				"create_map_poster.py", "--city", "Oslo", "--country", "Norway",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, g.Args(tc.entry))
			// Stable across calls.
			assert.Equal(t, g.Args(tc.entry), g.Args(tc.entry))
		})
	}
}

func TestArgs_CustomScript(t *testing.T) {
	g := &Generator{Script: "tools/poster.py"}

	args := g.Args(batch.Entry{City: "Venice", Country: "Italy"})
	assert.Equal(t, "tools/poster.py", args[0])
}

func TestInterpreter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on windows")
	}

	fs := memFS(t)
	require.NoError(t, afero.WriteFile(fs, "/opt/py/bin/python3", []byte("#!"), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/opt/py/bin/python3.12", []byte("#!"), 0o644))
	require.NoError(t, fs.MkdirAll("/usr/bin/python3", 0o755))

	t.Setenv("PATH", strings.Join([]string{"/usr/bin", "", "/opt/py/bin"}, string(os.PathListSeparator)))

	tests := []struct {
		name     string
		python   string
		expected string
		wantErr  bool
	}{
		{name: "default on PATH skips directories", expected: "/opt/py/bin/python3"},
		{name: "named on PATH", python: "python3", expected: "/opt/py/bin/python3"},
		{name: "not executable", python: "python3.12", wantErr: true},
		{name: "missing", python: "python2", wantErr: true},
		{name: "absolute path", python: "/opt/py/bin/python3", expected: "/opt/py/bin/python3"},
		{name: "absolute path not executable", python: "/opt/py/bin/python3.12", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := &Generator{Python: tc.python}

			got, err := g.Interpreter()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInterpreterNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestBuild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on windows")
	}

	fs := memFS(t)
	require.NoError(t, afero.WriteFile(fs, "/opt/py/bin/python3", []byte("#!"), 0o755))
	t.Setenv("PATH", "/opt/py/bin")

	g := &Generator{Dir: "/srv/maptoposter", Env: map[string]string{"MPLBACKEND": "Agg"}}
	entry := batch.Entry{City: "Cartagena", Country: "Colombia", Theme: "multicolor_cartagena", Distance: 6000}

	r, err := g.Build(context.Background(), entry)
	require.NoError(t, err)

	cmd, ok := r.(*runbatch.OSCommand)
	require.True(t, ok)
	assert.Equal(t, "/opt/py/bin/python3", cmd.Path)
	assert.Equal(t, g.Args(entry), cmd.Args)
	assert.Equal(t, "/srv/maptoposter", cmd.Cwd)
	assert.Equal(t, "Agg", cmd.Env["MPLBACKEND"])
	assert.Equal(t, entry.Description(), cmd.Label)

	t.Setenv("PATH", "/nowhere")

	_, err = g.Build(context.Background(), entry)
	require.ErrorIs(t, err, ErrInterpreterNotFound)
}

func TestCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not used on windows")
	}

	fs := memFS(t)
	require.NoError(t, afero.WriteFile(fs, "/opt/py/bin/python3", []byte("#!"), 0o755))
	require.NoError(t, afero.WriteFile(fs, "/srv/maptoposter/create_map_poster.py", []byte("print()"), 0o644))
	t.Setenv("PATH", "/opt/py/bin")

	require.NoError(t, (&Generator{Dir: "/srv/maptoposter"}).Check())

	err := (&Generator{Dir: "/srv/other", Python: "python9"}).Check()
	require.ErrorIs(t, err, ErrGeneratorDir)
	require.ErrorIs(t, err, ErrScriptNotFound)
	require.ErrorIs(t, err, ErrInterpreterNotFound)
}

func TestPaths(t *testing.T) {
	g := &Generator{Dir: "/srv/maptoposter"}
	assert.Equal(t, "/srv/maptoposter/themes", g.ThemesDir())
	assert.Equal(t, "/srv/maptoposter/posters", g.outputDir())

	g.OutputDir = "/tmp/out"
	assert.Equal(t, "/tmp/out", g.outputDir())

	assert.Equal(t, "themes", (&Generator{}).ThemesDir())
}

func TestStyleAvailable(t *testing.T) {
	t.Setenv(StyleTokenEnvVar, "")
	assert.False(t, (&Generator{}).StyleAvailable())
	assert.True(t, (&Generator{Env: map[string]string{StyleTokenEnvVar: "r8_x"}}).StyleAvailable())

	t.Setenv(StyleTokenEnvVar, "r8_y")
	assert.True(t, (&Generator{}).StyleAvailable())
}

func TestSlugAndExpectedPath(t *testing.T) {
	assert.Equal(t, "rio_de_janeiro", Slug("Rio de Janeiro"))
	assert.Equal(t, "medellín", Slug("Medellín"))

	g := &Generator{Dir: "/srv/maptoposter"}
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	assert.Equal(t,
		"/srv/maptoposter/posters/rio_de_janeiro_neon_amber_blue_water_20260304_050607.png",
		g.ExpectedPath(batch.Entry{City: "Rio de Janeiro", Theme: "neon_amber_blue_water"}, at),
	)
	assert.Equal(t,
		"/srv/maptoposter/posters/venice_noir_20260304_050607.pdf",
		g.ExpectedPath(batch.Entry{City: "Venice", Theme: "noir", Format: batch.FormatPDF}, at),
	)
	assert.Empty(t, g.ExpectedPath(batch.Entry{City: "Venice", Format: batch.FormatPDF}, at),
		"no prediction without a theme")
}

func TestArtifact(t *testing.T) {
	fs := memFS(t)
	g := &Generator{Dir: "/gen"}
	entry := batch.Entry{City: "Rio de Janeiro", Country: "Brazil", Theme: "noir"}

	since := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)

	write := func(name string, mtime time.Time) {
		p := filepath.Join("/gen/posters", name)
		require.NoError(t, afero.WriteFile(fs, p, []byte("png"), 0o644))
		require.NoError(t, fs.Chtimes(p, mtime, mtime))
	}

	_, err := g.Artifact(entry, since)
	require.ErrorIs(t, err, ErrArtifactNotFound)

	write("rio_de_janeiro_noir_20260101_000000.png", since.Add(-time.Hour))
	_, err = g.Artifact(entry, since)
	require.ErrorIs(t, err, ErrArtifactNotFound, "older posters are ignored")

	write("rio_de_janeiro_noir_20260304_050610.png", since.Add(10*time.Second))
	write("rio_de_janeiro_noir_20260304_050620.png", since.Add(20*time.Second))
	write("rio_de_janeiro_sunset_20260304_050630.png", since.Add(30*time.Second))
	write("rio_de_janeiro_noir_20260304_050640.svg", since.Add(40*time.Second))

	got, err := g.Artifact(entry, since)
	require.NoError(t, err)
	assert.Equal(t, "/gen/posters/rio_de_janeiro_noir_20260304_050620.png", got)

	got, err = g.Artifact(batch.Entry{City: "Rio de Janeiro", Format: batch.FormatSVG}, since)
	require.NoError(t, err)
	assert.Equal(t, "/gen/posters/rio_de_janeiro_noir_20260304_050640.svg", got)
}

const fakeGenerator = `#!/bin/sh
printf '%s\n' "$*" >> invocations.log
city=""
theme=""
while [ $# -gt 0 ]; do
  case "$1" in
    --city) city="$2"; shift ;;
    --theme) theme="$2"; shift ;;
  esac
  shift
done
echo "Generating map for $city"
if [ "$city" = "$FAIL_CITY" ]; then
  echo "could not geocode $city" >&2
  exit 3
fi
slug=$(printf '%s' "$city" | tr 'A-Z ' 'a-z_')
mkdir -p posters
touch "posters/${slug}_${theme}_$(date +%Y%m%d_%H%M%S).png"
`

func exampleBatch() *batch.Batch {
	return &batch.Batch{
		Name: "colombia-brazil",
		Entries: []batch.Entry{
			{City: "Medellín", Country: "Colombia", Theme: "neon_purple_green_alt", Distance: 8000},
			{City: "Cartagena", Country: "Colombia", Theme: "multicolor_cartagena", Distance: 6000},
			{City: "Rio de Janeiro", Country: "Brazil", Theme: "neon_amber_blue_water", Distance: 12000},
		},
	}
}

func setupFakeGenerator(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake_python"), []byte(fakeGenerator), 0o755)) //nolint:gosec
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultScript), []byte(""), 0o644))             //nolint:gosec

	return dir
}

func readInvocations(t *testing.T, dir string) []string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, "invocations.log"))
	if os.IsNotExist(err) {
		return nil
	}

	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRun_ExampleBatch(t *testing.T) {
	dir := setupFakeGenerator(t)

	g := &Generator{Dir: dir, Python: filepath.Join(dir, "fake_python")}

	var out, genOut bytes.Buffer

	r := &runbatch.Runner{Builder: g, Out: &out, Stdout: &genOut}
	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	results := r.Run(ctx, exampleBatch())

	assert.Equal(t, 0, results.ExitCode())
	assert.Equal(t, []string{
		"create_map_poster.py --city Medellín --country Colombia --theme neon_purple_green_alt --distance 8000",
		"create_map_poster.py --city Cartagena --country Colombia --theme multicolor_cartagena --distance 6000",
		"create_map_poster.py --city Rio de Janeiro --country Brazil --theme neon_amber_blue_water --distance 12000",
	}, readInvocations(t, dir))
	assert.Contains(t, out.String(), "[3/3] Rio de Janeiro, Brazil (neon_amber_blue_water, 12000m)\n")
	assert.Contains(t, out.String(), "all 3 posters generated")
	assert.Contains(t, genOut.String(), "Generating map for Cartagena\n")

	for _, c := range results[0].Children {
		assert.NotEmpty(t, c.Artifact, c.Label)
	}

	assert.Contains(t, results[0].Children[2].Artifact, filepath.Join(dir, "posters", "rio_de_janeiro_neon_amber_blue_water_"))
}

func TestRun_ExampleBatchSecondFails(t *testing.T) {
	dir := setupFakeGenerator(t)

	g := &Generator{
		Dir:    dir,
		Python: filepath.Join(dir, "fake_python"),
		Env:    map[string]string{"FAIL_CITY": "Cartagena"},
	}

	var out bytes.Buffer

	r := &runbatch.Runner{Builder: g, Out: &out}
	results := r.Run(context.Background(), exampleBatch())

	assert.Equal(t, 3, results.ExitCode())
	assert.Len(t, readInvocations(t, dir), 2)
	assert.NotContains(t, out.String(), "[3/3]")
	assert.Contains(t, out.String(), "completed 1/3, not attempted 1")

	f := results.FirstFailure()
	require.NotNil(t, f)
	assert.Equal(t, "could not geocode Cartagena\n", string(f.StdErr))
}

func TestRun_DryRun(t *testing.T) {
	dir := setupFakeGenerator(t)

	g := &Generator{Dir: dir, Python: filepath.Join(dir, "fake_python")}

	var out bytes.Buffer

	r := &runbatch.Runner{Builder: g, Out: &out, DryRun: true}
	results := r.Run(context.Background(), exampleBatch())

	assert.Equal(t, 0, results.ExitCode())
	assert.Empty(t, readInvocations(t, dir))
	assert.Contains(t, out.String(), `create_map_poster.py --city "Rio de Janeiro" --country Brazil`)
	assert.Contains(t, out.String(), "    → "+filepath.Join(dir, "posters", "cartagena_multicolor_cartagena_"))
}

func TestRun_DryRunWithoutTheme(t *testing.T) {
	dir := setupFakeGenerator(t)

	g := &Generator{Dir: dir, Python: filepath.Join(dir, "fake_python")}

	var out bytes.Buffer

	r := &runbatch.Runner{Builder: g, Out: &out, DryRun: true}
	r.Run(context.Background(), &batch.Batch{Name: "plain", Entries: []batch.Entry{{City: "Venice", Country: "Italy"}}})

	assert.Contains(t, out.String(), "[1/1] Venice, Italy\n")
	assert.Contains(t, out.String(), "    $ ")
	assert.NotContains(t, out.String(), "→")
	assert.NotContains(t, out.String(), "*")
}
