// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes through PrettyHandler, a compact console format whose
// attributes are rendered as colorized JSON. The level comes from the
// POSTERBATCH_LOG_LEVEL environment variable (DEBUG, INFO, WARN, ERROR) and
// defaults to WARN so that batch progress lines are not drowned out.
package ctxlog
