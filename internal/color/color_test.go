// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsColorCapable(t *testing.T) {
	t.Setenv(NoColor, "1")
	assert.False(t, isColorCapable(), "NO_COLOR should disable color")

	t.Setenv(ForceColor, "1")
	assert.False(t, isColorCapable(), "NO_COLOR wins over FORCE_COLOR")

	t.Setenv(NoColor, "")
	assert.True(t, isColorCapable(), "FORCE_COLOR should enable color")
}

func TestColorize(t *testing.T) {
	prev := SetEnabled(true)
	defer SetEnabled(prev)

	assert.Equal(t, "\033[1;31mfail\033[0m", Colorize("fail", Bold, FgRed))
	assert.Equal(t, "plain", Colorize("plain"))
	assert.Equal(t, "\033[32m", ControlString(FgGreen))

	SetEnabled(false)
	assert.Equal(t, "fail", Colorize("fail", Bold, FgRed))
	assert.Empty(t, ControlString(FgGreen))
}
