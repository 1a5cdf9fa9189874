// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decorates console output with ANSI escape codes.
// Output is only decorated when NO_COLOR is unset and either FORCE_COLOR is set
// or stdout is a terminal (detected with golang.org/x/term).
package color
