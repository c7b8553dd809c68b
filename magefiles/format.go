// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Format formats every file in samples/ into out/ as Word documents.
func Format() error {
	mg.Deps(Build, Init)

	inputs, err := filepath.Glob(filepath.Join("samples", "*"))
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		fmt.Println("[format] No files in samples/.")
		return nil
	}
	args := append([]string{"format", "--out-dir", "out", "--force"}, inputs...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Serve builds the CLI and runs the HTTP API on :8000.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}
