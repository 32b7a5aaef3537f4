package main

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grafana/jfr-parser/parser"
	"github.com/grafana/jfr-parser/parser/types"
	"github.com/grafana/jfr-parser/parser/types/def"
	"github.com/rs/zerolog"
)

// executionSampleKind is the event type name of a JFR CPU sample.
const executionSampleKind = "jdk.ExecutionSample"

const unknownName = "<unknown>"

// jfrMagic starts every JFR chunk.
var jfrMagic = []byte("FLR\x00")

var errNotRecording = errors.New("not a JFR recording")

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Frame is one call site: owning class and method name.
type Frame struct {
	Type   string
	Method string
}

// RecordedEvent is one decoded event. Frames are leaf-first and only
// populated for execution samples.
type RecordedEvent struct {
	Kind   string
	Frames []Frame
}

// EventSource is a sequential, exhaustible stream of recorded events.
// Next returns io.EOF once the stream is exhausted; any other error means
// the recording could not be read.
type EventSource interface {
	Next() (RecordedEvent, error)
	Close() error
}

// Opener acquires the event source for a recording path.
type Opener func(path string) (EventSource, error)

// ---------------------------------------------------------------------------
// JFR-backed source
// ---------------------------------------------------------------------------

type jfrSource struct {
	rc     io.ReadCloser
	p      *parser.Parser
	closed bool
}

// jfrOpener returns an Opener decoding JFR recordings, optionally gzipped.
func jfrOpener(log zerolog.Logger) Opener {
	return func(path string) (EventSource, error) {
		return openRecording(path, log)
	}
}

func openRecording(path string, log zerolog.Logger) (EventSource, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	buf, err := io.ReadAll(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	if !bytes.HasPrefix(buf, jfrMagic) {
		rc.Close()
		return nil, fmt.Errorf("%w: %d bytes, missing chunk magic", errNotRecording, len(buf))
	}
	log.Debug().
		Str("path", path).
		Int("bytes", len(buf)).
		Bool("gzip", isGzipPath(path)).
		Msg("recording loaded")
	return &jfrSource{
		rc: rc,
		p:  parser.NewParser(buf, parser.Options{}),
	}, nil
}

// recoverDecoder turns a decoder panic on corrupted input into *err.
func recoverDecoder(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("jfr parser panic: %v", r)
	}
}

func (s *jfrSource) Next() (ev RecordedEvent, err error) {
	defer recoverDecoder(&err)
	typ, err := s.p.ParseEvent()
	if err != nil {
		return RecordedEvent{}, err
	}
	ev.Kind = s.kindName(typ)
	if ev.Kind == executionSampleKind && typ == s.p.TypeMap.T_EXECUTION_SAMPLE {
		ev.Frames = s.resolveStack(s.p.ExecutionSample.StackTrace)
	}
	return ev, nil
}

func (s *jfrSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rc.Close()
}

func (s *jfrSource) kindName(typ def.TypeID) string {
	if c := s.p.TypeMap.IDMap[typ]; c != nil {
		return c.Name
	}
	return ""
}

// resolveStack returns the frames of a stack trace, leaf-first as stored.
func (s *jfrSource) resolveStack(ref types.StackTraceRef) []Frame {
	st := s.p.GetStacktrace(ref)
	if st == nil {
		return nil
	}
	frames := make([]Frame, len(st.Frames))
	for i, f := range st.Frames {
		frames[i] = resolveFrame(s.p, f)
	}
	return frames
}

// symbolTable is the part of *parser.Parser that names frames.
type symbolTable interface {
	GetMethod(types.MethodRef) *types.Method
	GetClass(types.ClassRef) *types.Class
	GetSymbolString(types.SymbolRef) string
}

func resolveFrame(syms symbolTable, sf types.StackFrame) Frame {
	method := syms.GetMethod(sf.Method)
	if method == nil {
		return Frame{Type: unknownName, Method: unknownName}
	}
	typeName := unknownName
	if class := syms.GetClass(method.Type); class != nil {
		typeName = javaClassName(syms.GetSymbolString(class.Name))
	}
	return Frame{Type: typeName, Method: syms.GetSymbolString(method.Name)}
}

// ---------------------------------------------------------------------------
// File access
// ---------------------------------------------------------------------------

func isGzipPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// openReader opens a recording for reading, decompressing *.gz files.
func openReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if isGzipPath(path) {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &gzipReadCloser{gz: gr, f: f}, nil
	}
	return f, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	g.gz.Close()
	return g.f.Close()
}
