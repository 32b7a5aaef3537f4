package main

import (
	"errors"
	"fmt"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2
)

// UsageError reports a malformed command line.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string { return e.msg }

// NotFoundError reports a recording path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return e.Path + " not found." }

// SourceIOError is any failure to open, read or release the recording.
type SourceIOError struct {
	Op  string // "open", "read" or "close"
	Err error
}

func (e *SourceIOError) Error() string {
	return fmt.Sprintf("%s recording: %v", e.Op, e.Err)
}

func (e *SourceIOError) Unwrap() error { return e.Err }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return exitNotFound
	}
	return exitFailure
}
