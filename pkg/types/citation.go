// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for pubcite.
// Citations, reference entries, and change records are read-only input
// snapshots supplied by upstream collaborators; the annotation engine
// derives markup from them and never mutates them.
// Implements: prd001-annotation (R1).
package types

// Citation is one detected in-text citation occurrence. Citations arrive
// fully formed from the detection service each render; zero-valued optional
// fields mean "not supplied".
type Citation struct {
	// ID is a stable identifier. May be empty for synthetic or orphan
	// entries that no longer correspond to a detected occurrence.
	ID string `json:"id" yaml:"id"`

	// RawText is the exact substring expected in the document markup,
	// e.g. "[3]", "[1,2]", "(Smith & Jones, 2020)".
	RawText string `json:"raw_text" yaml:"raw_text"`

	// ParagraphIndex is the zero-based paragraph the citation was detected
	// in. Informational; -1 or 0 when the detector did not supply it.
	ParagraphIndex int `json:"paragraph_index,omitempty" yaml:"paragraph_index,omitempty"`

	// StartOffset and EndOffset are character (rune) offsets into the
	// plain-text rendering of the document. Used only as a last-resort
	// search fallback when RawText cannot be located in the markup.
	StartOffset int `json:"start_offset,omitempty" yaml:"start_offset,omitempty"`
	EndOffset   int `json:"end_offset,omitempty" yaml:"end_offset,omitempty"`

	// CitationNumber is the displayed citation number, when numeric.
	// Zero means unset (numbers are 1-indexed).
	CitationNumber int `json:"citation_number,omitempty" yaml:"citation_number,omitempty"`

	// ReferenceNumber is the number of the reference entry this citation
	// points at, when known. Zero means unset.
	ReferenceNumber int `json:"reference_number,omitempty" yaml:"reference_number,omitempty"`

	// IsOrphaned marks a citation whose target reference was removed.
	// The flag is authoritative: it wins over any numeric re-match.
	IsOrphaned bool `json:"is_orphaned,omitempty" yaml:"is_orphaned,omitempty"`
}

// ReferenceEntry is one bibliography item in the current reference list
// snapshot. Numbers are 1-indexed and unique within a snapshot, dense but
// not guaranteed contiguous after edits.
type ReferenceEntry struct {
	// ID is the reference's stable identifier.
	ID string `json:"id" yaml:"id"`

	// Number is the displayed reference number.
	Number int `json:"number" yaml:"number"`

	// Authors lists author names, in "Last, First" or "First Last" form.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the 4-digit publication year.
	Year string `json:"year" yaml:"year"`
}

// ChangeType classifies how a citation changed between two render passes.
type ChangeType string

const (
	ChangeStyle     ChangeType = "style"
	ChangeRenumber  ChangeType = "renumber"
	ChangeDeleted   ChangeType = "deleted"
	ChangeUnchanged ChangeType = "unchanged"
)

// ChangeRecord describes the transition of one citation between the last
// stable render and the current one. The record set is transient: supplied
// once, consumed for a single rendering, then discarded by the caller.
type ChangeRecord struct {
	// CitationID identifies the citation the change applies to. May be
	// empty when the citation itself was removed.
	CitationID string `json:"citation_id" yaml:"citation_id"`

	// OldNumber is the reference number before the change. Zero when the
	// citation was not numeric.
	OldNumber int `json:"old_number,omitempty" yaml:"old_number,omitempty"`

	// NewNumber is the reference number after the change. Nil means the
	// reference was deleted; a ChangeDeleted record must carry nil here.
	NewNumber *int `json:"new_number" yaml:"new_number"`

	// OldText and NewText are the citation's display text before and
	// after the change.
	OldText string `json:"old_text" yaml:"old_text"`
	NewText string `json:"new_text" yaml:"new_text"`

	// ChangeType is one of style, renumber, deleted, unchanged.
	ChangeType ChangeType `json:"change_type" yaml:"change_type"`
}
