//go:build !unix

package main

import "os"

// Fallback for non-Unix platforms: only output written through os.Stdout and
// os.Stderr is captured, not runtime panics.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
