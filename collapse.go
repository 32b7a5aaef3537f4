package main

import (
	"strings"

	"github.com/rs/zerolog"
)

// collapseFrames folds a leaf-first frame list into a root-first
// "Type::method;Type::method" string. Names are not escaped.
func collapseFrames(frames []Frame) string {
	n := len(frames)
	parts := make([]string, n)
	for i, f := range frames {
		parts[n-1-i] = frameName(f)
	}
	return strings.Join(parts, ";")
}

// collapser turns one recording into sorted collapsed-stack lines.
type collapser struct {
	open Opener
	kind string
	log  zerolog.Logger
}

func newCollapser(open Opener, log zerolog.Logger) *collapser {
	return &collapser{open: open, kind: executionSampleKind, log: log}
}

// run reads the whole recording before returning any line. On error no
// lines are returned.
func (c *collapser) run(path string) ([]string, error) {
	census := make(kindCensus)
	counts := newCountTable()

	for ev, err := range filterKind(census.observe(Events(c.open, path)), c.kind) {
		if err != nil {
			return nil, err
		}
		counts.add(collapseFrames(ev.Frames))
	}

	census.log(c.log)
	c.log.Debug().
		Str("path", path).
		Int("events", census.total()).
		Int64("samples", counts.total()).
		Int("stacks", counts.len()).
		Msg("recording collapsed")

	return formatLines(counts), nil
}
