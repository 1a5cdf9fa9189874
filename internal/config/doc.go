// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config turns batch definitions into batch.Batch values.
//
// Definitions come from the batches compiled into the binary, or from YAML and HCL
// files fetched with go-getter. Any batch can be written back out in either format.
//
// A YAML definition:
//
//	name: colombia-brazil
//	entries:
//	  - city: Medellín
//	    country: Colombia
//	    theme: neon_purple_green_alt
//	    distance: 8000
//
// The same batch in HCL, where expressions may read the environment through env:
//
//	batch "colombia-brazil" {
//	  entry "" {
//	    city     = "Medellín"
//	    country  = "Colombia"
//	    theme    = "neon_purple_green_alt"
//	    distance = 8000
//	  }
//	}
package config
