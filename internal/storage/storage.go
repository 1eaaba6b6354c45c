// Package storage writes report exports to disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is one export to be written.
type File struct {
	Name string
	Data []byte
}

// Written describes a file that reached disk.
type Written struct {
	Path string
	Size int64
}

// WriteFile atomically writes data to dir/name, creating dir if needed.
// An existing file is replaced.
func WriteFile(dir, name string, data []byte) (Written, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("storage error creating directories: %w", err)
	}

	path := filepath.Join(dir, name)

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return Written{}, fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return Written{}, fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return Written{Path: path, Size: int64(len(data))}, nil
}

// WriteAll writes files in order and stops at the first failure, returning
// what was written so far.
func WriteAll(dir string, files ...File) ([]Written, error) {
	out := make([]Written, 0, len(files))
	for _, f := range files {
		w, err := WriteFile(dir, f.Name, f.Data)
		if err != nil {
			return out, fmt.Errorf("writing %s: %w", f.Name, err)
		}
		out = append(out, w)
	}
	return out, nil
}
