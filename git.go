package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL checks if the input string looks like a Git repository URL.
// Prioritizes .git suffix or git@ prefix; plain https:// is too ambiguous
// to treat as remote by default.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") ||
		strings.HasPrefix(input, "git@")
}

// repoNameFromURL derives the repository name used in digest filenames.
func repoNameFromURL(url string) string {
	name := strings.TrimRight(url, "/")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "repository"
	}
	return name
}

// cloneGitRepo clones a Git repository URL into a temporary directory and
// returns its path. An empty branch means the remote's default branch.
func cloneGitRepo(url, branch string) (string, error) {
	tempDir, err := os.MkdirTemp("", "gitingest-splitter-git-")
	if err != nil {
		return "", &InputError{Path: url, Msg: "cannot create temporary clone directory", Cause: err}
	}

	ref := plumbing.HEAD
	if branch != "" {
		ref = plumbing.NewBranchReferenceName(branch)
	}

	fmt.Printf("Cloning Git repository '%s' into '%s'...\n", url, tempDir)
	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           url,
		Progress:      os.Stdout,
		ReferenceName: ref,
		SingleBranch:  true, // only the branch being digested is needed
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", &InputError{Path: url, Msg: "clone failed", Cause: err}
	}

	fmt.Printf("Finished cloning '%s'.\n", url)
	return tempDir, nil
}
