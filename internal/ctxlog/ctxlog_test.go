// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		ctx           func() context.Context
		expectDefault bool
	}{
		{
			name: "context with logger",
			ctx: func() context.Context {
				return New(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			},
		},
		{
			name:          "context without logger",
			ctx:           context.Background,
			expectDefault: true,
		},
		{
			name: "nil logger falls back to default",
			ctx: func() context.Context {
				return New(context.Background(), nil)
			},
			expectDefault: true,
		},
		{
			name: "wrong value type",
			ctx: func() context.Context {
				return context.WithValue(context.Background(), loggerKey{}, "not a logger")
			},
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := Logger(tt.ctx())
			assert.NotNil(t, logger)
			assert.Equal(t, tt.expectDefault, logger == DefaultLogger)
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer

	ctx := New(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	tests := []struct {
		name    string
		logFunc func(context.Context, string, ...any)
		level   string
	}{
		{name: "debug", logFunc: Debug, level: "DEBUG"},
		{name: "info", logFunc: Info, level: "INFO"},
		{name: "warn", logFunc: Warn, level: "WARN"},
		{name: "error", logFunc: Error, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc(ctx, "entry finished", "city", "Medellín")
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), "entry finished")
			assert.Contains(t, buf.String(), "Medellín")
		})
	}
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{value: "DEBUG", want: slog.LevelDebug},
		{value: "info", want: slog.LevelInfo},
		{value: "WARN", want: slog.LevelWarn},
		{value: "ERROR", want: slog.LevelError},
		{value: "bogus", want: slog.LevelWarn},
		{value: "", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			t.Setenv(LogLevelEnvVar, tt.value)
			assert.Equal(t, tt.want, logLevelFromEnv())
		})
	}
}

func TestNewForTUI(t *testing.T) {
	original := LevelVar.Level()
	defer LevelVar.Set(original)

	LevelVar.Set(slog.LevelInfo)

	var buf bytes.Buffer

	ctx := NewForTUI(context.Background(), &buf)
	Info(ctx, "buffered while the tui runs")

	assert.Contains(t, buf.String(), "buffered while the tui runs")
	assert.NotContains(t, buf.String(), "\033[", "tui buffer must not contain escape codes")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("json")
	require.NoError(t, err)
	assert.Same(t, JSONLogger, logger)

	logger, err = NewLogger("")
	require.NoError(t, err)
	assert.IsType(t, &PrettyHandler{}, logger.Handler())

	logger, err = NewLogger(" Pretty ")
	require.NoError(t, err)
	assert.IsType(t, &PrettyHandler{}, logger.Handler())

	_, err = NewLogger("logfmt")
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), `"logfmt"`)
}
