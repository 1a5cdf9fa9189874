// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs a batch of poster entries one after another.
//
// For entry i of N the runner prints "[i/N] <description>" and invokes the external
// generator. The first failed invocation stops the batch: later entries are never
// started and are recorded as not run. The results form a tree (batch, then entries)
// that can be printed, summarised or saved in a binary form for later inspection.
package runbatch
