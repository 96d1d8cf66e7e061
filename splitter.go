package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

// Splitter walks a repository top-down and decides, per directory, between
// emitting one digest for the whole subtree and splitting it into a
// local-files digest plus per-subdirectory digests.
type Splitter struct {
	Generator Generator
	RootPath  string
	RootName  string
	DigestDir string
	MaxLines  int
	MaxDepth  int
	Excludes  []string
	Ignore    gitignore.IgnoreMatcher // optional, skips gitignored subdirectories
	Out       io.Writer               // progress output, defaults to os.Stdout

	emitted  map[string]string // digest filename -> relative dir, collision guard
	ancestry []string          // resolved paths along the current recursion branch
}

// Run splits the configured repository and returns one IndexEntry per emitted
// digest file, in emission order. The first failure aborts the whole run.
func (s *Splitter) Run() ([]IndexEntry, error) {
	if s.Out == nil {
		s.Out = os.Stdout
	}
	if s.MaxLines <= 0 {
		return nil, &InputError{Path: s.RootPath, Msg: fmt.Sprintf("line budget must be positive, got %d", s.MaxLines)}
	}
	if s.MaxDepth < 0 {
		return nil, &InputError{Path: s.RootPath, Msg: fmt.Sprintf("depth limit must not be negative, got %d", s.MaxDepth)}
	}
	resolved, err := filepath.EvalSymlinks(s.RootPath)
	if err != nil {
		return nil, &InputError{Path: s.RootPath, Msg: "cannot resolve repository root", Cause: err}
	}
	s.emitted = make(map[string]string)
	s.ancestry = s.ancestry[:0]
	return s.split(s.RootPath, resolved, ".", 0)
}

// split handles one directory: digest it whole, then either keep that digest
// or replace it with a local-files digest plus recursive per-child digests.
func (s *Splitter) split(dir, resolved, rel string, depth int) ([]IndexEntry, error) {
	fmt.Fprintf(s.Out, "[depth=%d] Digesting %s as a whole...\n", depth, dir)
	whole, err := s.Generator.Generate(DigestRequest{Source: dir, Excludes: s.Excludes})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.Out, "  -> %d lines\n", whole.Lines)

	if whole.Lines <= s.MaxLines || depth >= s.MaxDepth {
		entry, err := s.emit(rel, depth, whole, false)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(s.Out, "  -> Keeping whole-directory digest: %s\n", entry.File)
		return []IndexEntry{entry}, nil
	}

	fmt.Fprintf(s.Out, "  -> Over %d lines with depth budget left, splitting into subdirectories...\n", s.MaxLines)
	local, err := s.Generator.Generate(DigestRequest{Source: dir, Excludes: s.Excludes, LocalOnly: true})
	if err != nil {
		return nil, err
	}
	entry, err := s.emit(rel, depth, local, true)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.Out, "  -> Local-files digest: %s (%d lines)\n", entry.File, local.Lines)
	entries := []IndexEntry{entry}

	children, err := listSubdirectories(dir)
	if err != nil {
		return nil, &InputError{Path: dir, Msg: "cannot list subdirectories", Cause: err}
	}

	s.ancestry = append(s.ancestry, resolved)
	defer func() { s.ancestry = s.ancestry[:len(s.ancestry)-1] }()

	for _, name := range children {
		if dirExcluded(name, s.Excludes) {
			fmt.Fprintf(s.Out, "  -> Skipping excluded directory: %s\n", name)
			continue
		}
		childPath := filepath.Join(dir, name)
		childRel := name
		if rel != "." {
			childRel = rel + "/" + name
		}
		// The matcher relativizes against the .gitignore location itself,
		// so it needs the filesystem path.
		if s.Ignore != nil && s.Ignore.Match(childPath, true) {
			fmt.Fprintf(s.Out, "  -> Skipping gitignored directory: %s\n", childRel)
			continue
		}
		childResolved, err := filepath.EvalSymlinks(childPath)
		if err != nil {
			return nil, &InputError{Path: childPath, Msg: "cannot resolve directory", Cause: err}
		}
		if s.onBranch(childResolved) {
			return nil, &InputError{Path: childPath, Msg: "symbolic link cycle detected, refusing to recurse"}
		}
		childEntries, err := s.split(childPath, childResolved, childRel, depth+1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, childEntries...)
	}
	return entries, nil
}

// emit writes one digest file and records its index entry. Two directories
// must never share a filename, so a collision aborts the run instead of
// silently overwriting the earlier digest.
func (s *Splitter) emit(rel string, depth int, digest Digest, split bool) (IndexEntry, error) {
	name := digestFileName(s.RootName, rel)
	if prev, taken := s.emitted[name]; taken {
		return IndexEntry{}, &OutputError{
			Path: filepath.Join(s.DigestDir, name),
			Msg:  fmt.Sprintf("directories %q and %q map to the same digest filename", prev, rel),
		}
	}
	s.emitted[name] = rel

	target := filepath.Join(s.DigestDir, name)
	if err := os.WriteFile(target, []byte(digest.Text), 0o644); err != nil {
		return IndexEntry{}, &OutputError{Path: target, Cause: err}
	}
	return IndexEntry{Dir: rel, File: name, Lines: digest.Lines, Depth: depth, Split: split}, nil
}

// onBranch reports whether a resolved path is already on the current
// recursion branch, which would mean a symlink loop.
func (s *Splitter) onBranch(resolved string) bool {
	for _, p := range s.ancestry {
		if p == resolved {
			return true
		}
	}
	return false
}

// listSubdirectories returns the names of dir's immediate subdirectories,
// symlinked directories included. os.ReadDir sorts by name, which keeps
// recursion order deterministic across platforms.
func listSubdirectories(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			names = append(names, entry.Name())
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(dir, entry.Name())); err == nil && info.IsDir() {
				names = append(names, entry.Name())
			}
		}
	}
	return names, nil
}
