// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package generator

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// findInPath returns the first executable called command in the PATH directories.
func findInPath(command string) (string, bool) {
	candidates := []string{command}
	if runtime.GOOS == "windows" && filepath.Ext(command) == "" {
		candidates = append(candidates, command+".exe")
	}

	for _, dir := range strings.Split(os.Getenv("PATH"), string(os.PathListSeparator)) {
		if dir == "" {
			continue
		}

		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if isExecutable(p) {
				return p, true
			}
		}
	}

	return "", false
}

func isExecutable(p string) bool {
	info, err := FS.Stat(p)
	if err != nil || info.IsDir() {
		return false
	}

	// check if the command is executable if not Windows
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return false
	}

	return true
}
