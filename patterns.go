package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dirExcluded reports whether a directory name matches any exclude pattern.
// Patterns are matched against the bare name and against the name with a
// trailing slash, so both "node_modules" and "node_modules/" work.
func dirExcluded(name string, patterns []string) bool {
	for _, pat := range patterns {
		matched, err := filepath.Match(pat, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid exclude pattern %q: %v\n", pat, err)
			continue
		}
		if matched {
			return true
		}
		if matched, _ = filepath.Match(pat, name+"/"); matched {
			return true
		}
	}
	return false
}

// localizePatterns rescopes exclude patterns that mention a directory by name
// so they keep matching when gitingest runs inside that directory. With
// dirName "docs", "docs/*.txt" contributes "*.txt"; a "**" segment keeps the
// full pattern and contributes the rescoped remainder as well.
func localizePatterns(patterns []string, dirName string) []string {
	var local []string
	for _, pat := range patterns {
		parts := strings.Split(pat, "/")
		for i, part := range parts {
			if (part == dirName || part == "**") && i < len(parts)-1 {
				if part == "**" {
					local = append(local, pat)
				}
				local = append(local, strings.Join(parts[i+1:], "/"))
			}
		}
	}
	return local
}

// countLines counts newline-terminated lines. A trailing unterminated line
// still counts; an empty digest has zero lines.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
