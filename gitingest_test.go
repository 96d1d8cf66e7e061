package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgsWholeTree(t *testing.T) {
	g := &gitingestGenerator{binary: "gitingest", includes: []string{"*.go"}, maxSize: 50000, branch: "main"}

	args, err := g.buildArgs(DigestRequest{Source: "/repo", Excludes: []string{".git", "*.log"}}, "/tmp/out.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/repo", "-o", "/tmp/out.txt",
		"-s", "50000",
		"-e", ".git",
		"-e", "*.log",
		"-i", "*.go",
		"-b", "main",
	}, args)
}

func TestBuildArgsLocalOnly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guides"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "api"), 0o755))

	g := &gitingestGenerator{binary: "gitingest"}
	args, err := g.buildArgs(DigestRequest{Source: root, Excludes: []string{"docs/*.txt"}, LocalOnly: true}, "/tmp/out.txt")
	require.NoError(t, err)

	// base excludes, then rescoped patterns, then one glob per subdirectory
	assert.Equal(t, []string{
		root, "-o", "/tmp/out.txt",
		"-e", "docs/*.txt",
		"-e", "*.txt",
		"-e", "api/**",
		"-e", "guides/**",
	}, args)
}

func TestNewGeneratorMissingBinary(t *testing.T) {
	_, err := newGitingestGenerator("gitingest-binary-that-does-not-exist", nil, 0, "")
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, err.Error(), "pip install gitingest")
}

// writeStubGitingest installs a shell script named gitingest on PATH.
func writeStubGitingest(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub script needs a POSIX shell")
	}
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "gitingest"), []byte(script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestGenerateReadsStubOutput(t *testing.T) {
	writeStubGitingest(t, `#!/bin/sh
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
printf 'alpha\nbeta\n' > "$out"
`)

	g, err := newGitingestGenerator("gitingest", nil, 0, "")
	require.NoError(t, err)

	digest, err := g.Generate(DigestRequest{Source: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", digest.Text)
	assert.Equal(t, 2, digest.Lines)
}

func TestGenerateSurfacesExitCodeAndStderr(t *testing.T) {
	writeStubGitingest(t, `#!/bin/sh
echo 'no such repository' >&2
exit 7
`)

	g, err := newGitingestGenerator("gitingest", nil, 0, "")
	require.NoError(t, err)

	src := t.TempDir()
	_, err = g.Generate(DigestRequest{Source: src})
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, src, genErr.Path)
	assert.Equal(t, 7, genErr.ExitCode)
	assert.Contains(t, genErr.Stderr, "no such repository")
	assert.Contains(t, err.Error(), "exit code 7")
}
