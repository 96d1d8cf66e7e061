package main

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessagesNameTheOffendingPath(t *testing.T) {
	inErr := &InputError{Path: "/repo", Msg: "repository must be a directory"}
	assert.Contains(t, inErr.Error(), "/repo")
	assert.Contains(t, inErr.Error(), "repository must be a directory")

	genErr := &GenerationError{Path: "/repo/sub", ExitCode: 2, Stderr: "bad pattern\n"}
	assert.Contains(t, genErr.Error(), "/repo/sub")
	assert.Contains(t, genErr.Error(), "exit code 2")
	assert.Contains(t, genErr.Error(), "bad pattern")

	outErr := &OutputError{Path: "/digests/x.txt", Cause: os.ErrPermission}
	assert.Contains(t, outErr.Error(), "/digests/x.txt")
	assert.Contains(t, outErr.Error(), os.ErrPermission.Error())
}

func TestGenerationErrorFallsBackToCause(t *testing.T) {
	genErr := &GenerationError{Path: "/repo", Cause: fmt.Errorf("spawn failed")}
	assert.Contains(t, genErr.Error(), "spawn failed")
}

func TestErrorsUnwrapTheirCause(t *testing.T) {
	cause := os.ErrNotExist
	wrapped := fmt.Errorf("run failed: %w", &InputError{Path: "/repo", Cause: cause})

	assert.ErrorIs(t, wrapped, cause)
	var inErr *InputError
	assert.ErrorAs(t, wrapped, &inErr)
	assert.Equal(t, "/repo", inErr.Path)

	assert.ErrorIs(t, &OutputError{Path: "/x", Cause: os.ErrPermission}, os.ErrPermission)
	assert.ErrorIs(t, &GenerationError{Path: "/x", Cause: cause}, cause)
}
