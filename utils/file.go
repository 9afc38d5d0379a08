// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExpandHome expands a leading ~ to the home directory.
func ExpandHome(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// ReadFile reads the file at [path] after expanding ~.
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(ExpandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return b, nil
}

// ReadOptionalFile is ReadFile, except that an empty [path] reads as no bytes.
func ReadOptionalFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return ReadFile(path)
}
