package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGitURL(t *testing.T) {
	assert.True(t, isGitURL("https://github.com/user/repo.git"))
	assert.True(t, isGitURL("git@github.com:user/repo.git"))
	assert.True(t, isGitURL("git@example.com:group/project"))
	assert.False(t, isGitURL("https://github.com/user/repo"))
	assert.False(t, isGitURL("./local/path"))
	assert.False(t, isGitURL("/var/repos/project"))
}

func TestRepoNameFromURL(t *testing.T) {
	assert.Equal(t, "repo", repoNameFromURL("https://github.com/user/repo.git"))
	assert.Equal(t, "repo", repoNameFromURL("git@github.com:user/repo.git"))
	assert.Equal(t, "repo", repoNameFromURL("https://example.com/group/sub/repo.git/"))
	assert.Equal(t, "project", repoNameFromURL("git@example.com:group/project"))
	assert.Equal(t, "repository", repoNameFromURL(".git"))
}
