// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"fmt"
	"io"
)

// EventKind identifies a diagnostic event emitted by the engine.
type EventKind string

const (
	// EventEmptyText is emitted when a citation arrives with no raw text.
	EventEmptyText EventKind = "empty-text"

	// EventNotFound is emitted when none of a citation's search variants
	// occur in the document body. The citation is skipped, never fatal.
	EventNotFound EventKind = "not-found"

	// EventLocated is emitted when a search variant is claimed for a
	// citation, carrying the chosen variant text.
	EventLocated EventKind = "located"

	// EventDeletedFallback is emitted when an unconsumed deleted change
	// record is annotated directly by its old or new text.
	EventDeletedFallback EventKind = "deleted-fallback"
)

// Event is one diagnostic emitted during annotation.
type Event struct {
	Kind       EventKind
	CitationID string
	Text       string // the citation's raw text or the change record's text
	Detail     string // e.g. the variant that was located
}

// Tracer receives diagnostic events from the engine. Implementations must
// not mutate engine inputs; tracing is observation only.
type Tracer interface {
	Trace(Event)
}

type nopTracer struct{}

func (nopTracer) Trace(Event) {}

// NopTracer discards all events.
var NopTracer Tracer = nopTracer{}

type writerTracer struct {
	w io.Writer
}

// NewWriterTracer returns a Tracer that prints one line per event, in the
// same spirit as the CLI's per-item progress output.
func NewWriterTracer(w io.Writer) Tracer {
	return writerTracer{w: w}
}

func (t writerTracer) Trace(e Event) {
	id := e.CitationID
	if id == "" {
		id = "-"
	}
	switch e.Kind {
	case EventEmptyText:
		fmt.Fprintf(t.w, "skipped %s: empty raw text\n", id)
	case EventNotFound:
		fmt.Fprintf(t.w, "skipped %s: %q not found in body\n", id, e.Text)
	case EventLocated:
		fmt.Fprintf(t.w, "located %s: %q as %q\n", id, e.Text, e.Detail)
	case EventDeletedFallback:
		fmt.Fprintf(t.w, "orphan  %s: deleted citation %q wrapped\n", id, e.Text)
	default:
		fmt.Fprintf(t.w, "%s %s: %q\n", e.Kind, id, e.Text)
	}
}
