// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui shows a running batch as a live list: one row per entry with its status,
// elapsed time and the last line the generator printed. It is driven by progress events
// and stays on screen after the batch finishes until the user quits.
package tui
