package main

import (
	"fmt"
	"strings"
)

// All three error categories are fatal: the run aborts on the first failure
// instead of leaving a half-written index that misrepresents the output.

// InputError reports an unusable repository path or run option.
type InputError struct {
	Path  string
	Msg   string
	Cause error
}

func (e *InputError) Error() string {
	msg := "invalid input"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error { return e.Cause }

// GenerationError reports a digest generation failure for one directory. The
// gitingest exit code and stderr are preserved for diagnosis.
type GenerationError struct {
	Path     string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *GenerationError) Error() string {
	msg := "digest generation failed for " + e.Path
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg += ": " + detail
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// OutputError reports a failure writing into the digest directory.
type OutputError struct {
	Path  string
	Msg   string
	Cause error
}

func (e *OutputError) Error() string {
	msg := "cannot write " + e.Path
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *OutputError) Unwrap() error { return e.Cause }
