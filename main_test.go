package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, opener func(zerolog.Logger) Opener, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, opener)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// fakeOpener serves src for any path, ignoring the logger.
func fakeOpener(src *fakeSource) func(zerolog.Logger) Opener {
	return func(zerolog.Logger) Opener { return openerFor(src) }
}

// touch creates an empty file so the existence check passes.
func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

// ---------------------------------------------------------------------------
// Argument handling
// ---------------------------------------------------------------------------

func TestCLIWrongArgumentCount(t *testing.T) {
	path := touch(t, "a.jfr")
	for _, args := range [][]string{
		{},
		{path, path},
		{path, path, path},
	} {
		src := &fakeSource{events: []RecordedEvent{sample(Frame{"A", "a"})}}
		r := runCLI(t, fakeOpener(src), args...)

		assert.Equal(t, 1, r.code, "args=%v", args)
		assert.Empty(t, r.stdout, "args=%v", args)
		assert.Equal(t, "expected jfr input file as argument\n", r.stderr, "args=%v", args)
		assert.Zero(t, src.closes, "source must not be opened")
	}
}

func TestCLIMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jfr")
	src := &fakeSource{}

	r := runCLI(t, fakeOpener(src), path)

	assert.Equal(t, 2, r.code)
	assert.Empty(t, r.stdout)
	assert.Equal(t, path+" not found.\n", r.stderr)
	assert.Zero(t, src.closes)
}

func TestCLIUnknownFlag(t *testing.T) {
	r := runCLI(t, fakeOpener(&fakeSource{}), "--bogus", touch(t, "a.jfr"))

	assert.Equal(t, 1, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "bogus")
}

func TestCLIBadLogLevel(t *testing.T) {
	r := runCLI(t, fakeOpener(&fakeSource{}), "--log-level", "loud", touch(t, "a.jfr"))

	assert.Equal(t, 1, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, `unknown log level "loud"`)
}

// ---------------------------------------------------------------------------
// Processing
// ---------------------------------------------------------------------------

func TestCLIEndToEnd(t *testing.T) {
	a := Frame{"A", "m1"}
	b := Frame{"B", "m2"}
	src := &fakeSource{events: []RecordedEvent{sample(a, b), sample(a), sample(a, b)}}

	r := runCLI(t, fakeOpener(src), touch(t, "profile.jfr"))

	assert.Equal(t, 0, r.code)
	assert.Equal(t, "A::m1 1\nB::m2;A::m1 2\n", r.stdout)
	assert.Empty(t, r.stderr)
	assert.Equal(t, 1, src.closes)
}

func TestCLIZeroSamples(t *testing.T) {
	src := &fakeSource{events: []RecordedEvent{other("jdk.CPULoad")}}

	r := runCLI(t, fakeOpener(src), touch(t, "idle.jfr"))

	assert.Equal(t, 0, r.code)
	assert.Empty(t, r.stdout)
}

func TestCLIReadFailure(t *testing.T) {
	src := &fakeSource{
		events:  []RecordedEvent{sample(Frame{"A", "a"})},
		readErr: errors.New("invalid chunk header"),
	}

	r := runCLI(t, fakeOpener(src), touch(t, "broken.jfr"))

	assert.NotZero(t, r.code)
	assert.Empty(t, r.stdout, "no partial output")
	assert.Contains(t, r.stderr, "error: read recording: invalid chunk header")
	assert.Equal(t, 1, src.closes)
}

func TestCLIVerboseLogsToStderr(t *testing.T) {
	src := &fakeSource{events: []RecordedEvent{sample(Frame{"A", "a"}), other("jdk.CPULoad")}}

	r := runCLI(t, fakeOpener(src), "-v", touch(t, "profile.jfr"))

	assert.Equal(t, 0, r.code)
	assert.Equal(t, "A::a 1\n", r.stdout)
	assert.Contains(t, r.stderr, "recording collapsed")
	assert.Contains(t, r.stderr, "event census")
}

func TestCLIRealDecoderOnCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.jfr.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))

	r := runCLI(t, jfrOpener, path)

	assert.Equal(t, 1, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "error: open recording: gzip:")
}

func TestCLIEmptyRecording(t *testing.T) {
	r := runCLI(t, jfrOpener, touch(t, "empty.jfr"))

	assert.Equal(t, 1, r.code)
	assert.Empty(t, r.stdout)
	assert.Contains(t, r.stderr, "error: open recording: not a JFR recording")
}

func TestCLIHelpFlag(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		src := &fakeSource{}
		r := runCLI(t, fakeOpener(src), flag)

		assert.Equal(t, 0, r.code, flag)
		assert.Contains(t, r.stdout, "Usage:", flag)
		assert.Contains(t, r.stdout, "jfr-collapse [flags] <file>", flag)
		assert.Empty(t, r.stderr, flag)
		assert.Zero(t, src.closes, flag)
	}
}

func TestCLIDashPathAfterSeparator(t *testing.T) {
	r := runCLI(t, fakeOpener(&fakeSource{}), "--", "--help")

	assert.Equal(t, 2, r.code)
	assert.Empty(t, r.stdout)
	assert.Equal(t, "--help not found.\n", r.stderr)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(&UsageError{msg: "x"}))
	assert.Equal(t, 2, exitCode(&NotFoundError{Path: "x"}))
	assert.Equal(t, 1, exitCode(&SourceIOError{Op: "read", Err: errors.New("x")}))
}
