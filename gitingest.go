package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// Generator produces a digest for one directory. The splitter depends only on
// this contract, so tests can plug in fakes while production runs shell out
// to the gitingest CLI.
type Generator interface {
	Generate(req DigestRequest) (Digest, error)
}

// gitingestGenerator drives the gitingest executable. Include patterns, the
// file size cap, and the branch apply to every request of a run; excludes
// vary per request.
type gitingestGenerator struct {
	binary   string
	includes []string
	maxSize  int64
	branch   string
}

// newGitingestGenerator resolves the gitingest binary up front so a missing
// install fails before any digest file is written.
func newGitingestGenerator(binary string, includes []string, maxSize int64, branch string) (*gitingestGenerator, error) {
	if _, err := exec.LookPath(binary); err != nil {
		return nil, &GenerationError{
			Path:  binary,
			Cause: fmt.Errorf("gitingest executable not found, install it with: pip install gitingest"),
		}
	}
	return &gitingestGenerator{binary: binary, includes: includes, maxSize: maxSize, branch: branch}, nil
}

// Generate runs gitingest into a throwaway temp file and reads it back. The
// temp file gets a unique name so concurrent runs cannot trample each other.
func (g *gitingestGenerator) Generate(req DigestRequest) (Digest, error) {
	tmpPath := filepath.Join(os.TempDir(), ".gitingest-splitter-"+uuid.New().String()+".txt")
	defer os.Remove(tmpPath)

	args, err := g.buildArgs(req, tmpPath)
	if err != nil {
		return Digest{}, err
	}

	cmd := exec.Command(g.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		genErr := &GenerationError{Path: req.Source, Stderr: stderr.String(), Cause: err}
		if exitErr, ok := err.(*exec.ExitError); ok {
			genErr.ExitCode = exitErr.ExitCode()
		}
		return Digest{}, genErr
	}

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return Digest{}, &GenerationError{Path: req.Source, Cause: fmt.Errorf("gitingest produced no readable output: %w", err)}
	}
	text := string(raw)
	return Digest{Text: text, Lines: countLines(text)}, nil
}

// buildArgs assembles the gitingest invocation for one request. Local-only
// requests additionally exclude every immediate subdirectory and carry
// rescoped copies of patterns that name the source directory.
func (g *gitingestGenerator) buildArgs(req DigestRequest, outPath string) ([]string, error) {
	excludes := append([]string(nil), req.Excludes...)
	if req.LocalOnly {
		excludes = append(excludes, localizePatterns(req.Excludes, filepath.Base(req.Source))...)
		children, err := listSubdirectories(req.Source)
		if err != nil {
			return nil, &GenerationError{Path: req.Source, Cause: err}
		}
		for _, child := range children {
			excludes = append(excludes, child+"/**")
		}
	}

	args := []string{req.Source, "-o", outPath}
	if g.maxSize > 0 {
		args = append(args, "-s", strconv.FormatInt(g.maxSize, 10))
	}
	for _, pat := range excludes {
		args = append(args, "-e", pat)
	}
	for _, pat := range g.includes {
		args = append(args, "-i", pat)
	}
	if g.branch != "" {
		args = append(args, "-b", g.branch)
	}
	return args, nil
}
