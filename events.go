package main

import (
	"errors"
	"io"
	"iter"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Events opens the recording at path and yields its events in order.
//
// The source is owned by the iterator: it is closed exactly once when the
// stream is exhausted, when a read fails, or when the caller stops ranging.
// A failure is yielded once as a *SourceIOError and ends the sequence.
func Events(open Opener, path string) iter.Seq2[RecordedEvent, error] {
	return func(yield func(RecordedEvent, error) bool) {
		src, err := open(path)
		if err != nil {
			yield(RecordedEvent{}, &SourceIOError{Op: "open", Err: err})
			return
		}
		closed := false
		defer func() {
			if !closed {
				src.Close()
			}
		}()

		var failure error
		for {
			ev, err := src.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				failure = &SourceIOError{Op: "read", Err: err}
				break
			}
			if !yield(ev, nil) {
				return
			}
		}

		closed = true
		if cerr := src.Close(); cerr != nil {
			closeErr := &SourceIOError{Op: "close", Err: cerr}
			if failure != nil {
				failure = multierror.Append(failure, closeErr)
			} else {
				failure = closeErr
			}
		}
		if failure != nil {
			yield(RecordedEvent{}, failure)
		}
	}
}

// filterKind passes through events of the given kind. Errors are always
// passed through.
func filterKind(events iter.Seq2[RecordedEvent, error], kind string) iter.Seq2[RecordedEvent, error] {
	return func(yield func(RecordedEvent, error) bool) {
		for ev, err := range events {
			if err != nil {
				yield(ev, err)
				return
			}
			if ev.Kind != kind {
				continue
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// kindCensus counts events per kind as they flow past.
type kindCensus map[string]int

func (c kindCensus) observe(events iter.Seq2[RecordedEvent, error]) iter.Seq2[RecordedEvent, error] {
	return func(yield func(RecordedEvent, error) bool) {
		for ev, err := range events {
			if err == nil {
				c[ev.Kind]++
			}
			if !yield(ev, err) {
				return
			}
		}
	}
}

func (c kindCensus) total() int {
	n := 0
	for _, cnt := range c {
		n += cnt
	}
	return n
}

// log writes one debug line per event kind, most frequent first.
func (c kindCensus) log(log zerolog.Logger) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	type entry struct {
		name    string
		samples int
	}
	var ranked []entry
	for name, cnt := range c {
		ranked = append(ranked, entry{name, cnt})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].samples == ranked[j].samples {
			return ranked[i].name < ranked[j].name
		}
		return ranked[i].samples > ranked[j].samples
	})
	for _, e := range ranked {
		log.Debug().Str("kind", e.name).Int("events", e.samples).Msg("event census")
	}
}
