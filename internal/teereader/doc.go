// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader wraps the generator's stdout/stderr pipes. It keeps a bounded
// tail of everything read and hands each complete line to a callback, which the
// runner turns into progress events for the terminal UI.
package teereader
