package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// pickRepositoryDir walks the working directory and lets the user fuzzy-pick
// the repository to split. Returns "" with a nil error when the user aborts.
func pickRepositoryDir() (string, error) {
	candidates := []string{"."}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable entries just don't become candidates
		}
		if path == "." || !d.IsDir() {
			return nil
		}
		if isHidden(d.Name()) {
			return fs.SkipDir
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return "", &InputError{Path: ".", Msg: "error scanning for directories", Cause: err}
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 { // no selection yet
				return "Select the repository directory to split. Press Enter to confirm."
			}
			files, dirs := countDirEntries(candidates[i])
			return fmt.Sprintf("Path: %s\nFiles: %d\nSubdirectories: %d", candidates[i], files, dirs)
		}),
	)
	if err != nil {
		if err == fuzzyfinder.ErrAbort { // user pressed Esc or Ctrl+C
			fmt.Println("Interactive selection aborted.")
			return "", nil
		}
		return "", &InputError{Path: ".", Msg: "fuzzy finder error", Cause: err}
	}
	return candidates[idx], nil
}

// countDirEntries counts immediate files and subdirectories for the preview.
func countDirEntries(dir string) (files, dirs int) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}
	for _, e := range dirEntries {
		if e.IsDir() {
			dirs++
		} else {
			files++
		}
	}
	return files, dirs
}

// isHidden reports whether a base name is dot-hidden. "." itself is not.
func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
