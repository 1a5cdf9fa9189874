// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries per-entry lifecycle events from the batch runner to
// observers such as the terminal UI. Reporting never blocks the runner: events
// that cannot be delivered are dropped.
package progress
