package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDigestFileName(t *testing.T) {
	assert.Equal(t, "digest-repo.txt", digestFileName("repo", "."))
	assert.Equal(t, "digest-repo.txt", digestFileName("repo", ""))
	assert.Equal(t, "digest-repo-cmd.txt", digestFileName("repo", "cmd"))
	assert.Equal(t, "digest-repo-cmd-server.txt", digestFileName("repo", "cmd/server"))
	// separators never leak into a filename
	assert.Equal(t, "digest-my-repo-a.txt", digestFileName("my/repo", "a"))
}

func TestIndexAndManifestNames(t *testing.T) {
	assert.Equal(t, "digest-repo-index.txt", indexFileName("repo"))
	assert.Equal(t, "digest-repo-index.yaml", manifestFileName("repo"))
}

func TestWriteIndexListsEntriesInOrder(t *testing.T) {
	entries := []IndexEntry{
		{Dir: ".", File: "digest-repo.txt", Lines: 120, Depth: 0, Split: true},
		{Dir: "core", File: "digest-repo-core.txt", Lines: 900, Depth: 1, Tokens: 4200},
	}
	indexPath := filepath.Join(t.TempDir(), "digest-repo-index.txt")

	text, err := writeIndex(indexPath, "/tmp/repo", 20000, 1, entries, true)
	require.NoError(t, err)

	raw, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	assert.Equal(t, text, string(raw))

	assert.Contains(t, text, "Digest index for repository: /tmp/repo")
	assert.Contains(t, text, "Max lines per digest: 20000")
	assert.Contains(t, text, "Max recursion depth: 1")
	assert.Contains(t, text, "(split into subdirs)")
	assert.Contains(t, text, "~4200 tokens")

	rootLine := strings.Index(text, "digest-repo.txt")
	coreLine := strings.Index(text, "digest-repo-core.txt")
	require.GreaterOrEqual(t, rootLine, 0)
	require.GreaterOrEqual(t, coreLine, 0)
	assert.Less(t, rootLine, coreLine)
}

func TestWriteIndexOmitsTokensWhenDisabled(t *testing.T) {
	entries := []IndexEntry{{Dir: ".", File: "digest-repo.txt", Lines: 10, Tokens: 999}}
	indexPath := filepath.Join(t.TempDir(), "digest-repo-index.txt")

	text, err := writeIndex(indexPath, "/tmp/repo", 100, 1, entries, false)
	require.NoError(t, err)
	assert.NotContains(t, text, "tokens")
}

func TestWriteManifest(t *testing.T) {
	entries := []IndexEntry{
		{Dir: ".", File: "digest-repo.txt", Lines: 10, Depth: 0, Split: true},
		{Dir: "a", File: "digest-repo-a.txt", Lines: 5, Depth: 1},
	}
	manifestPath := filepath.Join(t.TempDir(), "digest-repo-index.yaml")
	require.NoError(t, writeManifest(manifestPath, "/tmp/repo", 100, 1, entries))

	raw, err := os.ReadFile(manifestPath)
	require.NoError(t, err)

	var got indexManifest
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, "/tmp/repo", got.Repository)
	assert.Equal(t, 100, got.MaxLines)
	assert.Equal(t, 1, got.MaxDepth)
	assert.Equal(t, entries, got.Digests)

	// zero token counts stay out of the manifest entirely
	assert.NotContains(t, string(raw), "tokens")
}

func TestRenderSplitTree(t *testing.T) {
	entries := []IndexEntry{
		{Dir: ".", File: "digest-repo.txt", Split: true},
		{Dir: "a", File: "digest-repo-a.txt"},
		{Dir: "b", File: "digest-repo-b.txt", Split: true},
		{Dir: "b/c", File: "digest-repo-b-c.txt"},
	}
	got := renderSplitTree(buildSplitTree("repo", entries))
	want := "repo -> digest-repo.txt\n" +
		"├── a -> digest-repo-a.txt\n" +
		"└── b -> digest-repo-b.txt\n" +
		"    └── c -> digest-repo-b-c.txt\n"
	assert.Equal(t, want, got)
}

func TestRenderSplitTreeSingleDigest(t *testing.T) {
	entries := []IndexEntry{{Dir: ".", File: "digest-repo.txt"}}
	assert.Equal(t, "repo -> digest-repo.txt\n", renderSplitTree(buildSplitTree("repo", entries)))
}

func TestSummarize(t *testing.T) {
	s := summarize([]IndexEntry{
		{Lines: 10, Tokens: 40},
		{Lines: 5, Tokens: 20},
	})
	assert.Equal(t, Summary{Digests: 2, TotalLines: 15, TotalTokens: 60}, s)
	assert.Equal(t, Summary{}, summarize(nil))
}
