// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// errSkipped marks a file whose output already exists.
var errSkipped = errors.New("output already exists")

// BatchOptions controls FormatFiles.
type BatchOptions struct {
	// OutDir receives the formatted files; "" writes next to each input.
	OutDir string
	Output Output
	// Force overwrites existing outputs instead of skipping them.
	Force bool
}

// BatchResult holds the outcome of a batch formatting run.
type BatchResult struct {
	Formatted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Formatted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed formatting.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// OutputPath returns where the formatted version of path is written.
func OutputPath(path string, opts BatchOptions) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_apa" + opts.Output.Ext()
	dir := opts.OutDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, base)
}

// FormatFile formats one file, printing a status line to w.
func (f *Formatter) FormatFile(ctx context.Context, path string, opts BatchOptions, w io.Writer) error {
	dest := OutputPath(path, opts)
	if !opts.Force {
		if _, err := os.Stat(dest); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", dest)
			return errSkipped
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return err
	}

	res, err := f.Format(ctx, Input{Filename: path, Data: data}, opts.Output)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return err
	}
	if err := os.WriteFile(dest, res.Document.Data, 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return err
	}

	fmt.Fprintf(w, "formatted: %s -> %s\n", path, dest)
	return nil
}

// FormatFiles processes paths in order, printing per-file status to w and
// returning a summary.
func (f *Formatter) FormatFiles(ctx context.Context, paths []string, opts BatchOptions, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		err := f.FormatFile(ctx, p, opts, w)
		switch {
		case err == nil:
			result.Formatted++
		case errors.Is(err, errSkipped):
			result.Skipped++
		default:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d formatted, %d skipped, %d failed (total: %d)\n",
		result.Formatted, result.Skipped, result.Failed, result.Total())
	return result
}
