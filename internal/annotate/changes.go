// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import "github.com/pdiddy/pubcite/pkg/types"

// ResolveChange returns the index of the most relevant pending change
// record for a citation, or false if none applies. Lookup order, first hit
// wins: exact citation ID, then NewText equal to the citation's raw text,
// then OldText equal to it (R4.1).
//
// The text fallbacks exist because a citation's displayed text may reflect
// either the pre- or post-change state depending on whether the
// surrounding markup has been regenerated yet.
func ResolveChange(c types.Citation, changes []types.ChangeRecord) (int, bool) {
	if c.ID != "" {
		for i, ch := range changes {
			if ch.CitationID == c.ID {
				return i, true
			}
		}
	}
	if c.RawText != "" {
		for i, ch := range changes {
			if ch.NewText == c.RawText {
				return i, true
			}
		}
		for i, ch := range changes {
			if ch.OldText == c.RawText {
				return i, true
			}
		}
	}
	return 0, false
}
