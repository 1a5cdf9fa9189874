// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package generator knows the command-line contract of the external poster generator:
// how an entry becomes an argv, which interpreter runs the script and where the
// finished poster is written.
package generator
