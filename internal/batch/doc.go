// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch defines the poster batch: an ordered, immutable list of entries,
// each naming one poster the external generator should produce.
package batch
