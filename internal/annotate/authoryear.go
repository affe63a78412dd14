// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pubcite/pkg/types"
)

// Author-year citation patterns, tried in order; the first match per
// segment wins (R3.1).
var (
	// twoAuthorRe matches "Smith & Jones, 2020" and "Smith and Jones, 2020".
	twoAuthorRe = regexp.MustCompile(`([A-Z][A-Za-z'\x{2019}-]+)\s*(?:&|and)\s+([A-Z][A-Za-z'\x{2019}-]+)\s*,?\s*(\d{4})`)

	// etAlRe matches "Smith et al., 2020".
	etAlRe = regexp.MustCompile(`([A-Z][A-Za-z'\x{2019}-]+)\s+et\s+al\.?\s*,?\s*(\d{4})`)

	// singleAuthorRe matches "Smith, 2020".
	singleAuthorRe = regexp.MustCompile(`([A-Z][A-Za-z'\x{2019}-]+)\s*,\s*(\d{4})`)
)

// AuthorYearMatch is one parsed author-year citation segment. RefNumber is
// zero when no reference entry agrees on both last name and year.
type AuthorYearMatch struct {
	// Authors holds the candidate last-name tokens taken from the text.
	Authors []string

	// Year is the 4-digit year taken from the text.
	Year string

	// RefNumber is the matched reference's number, or zero if unmatched.
	RefNumber int

	// RefID is the matched reference's identifier, when matched.
	RefID string

	// MatchedSpan is the exact substring consumed by the pattern, used
	// for precise clickable-link insertion.
	MatchedSpan string
}

// ParseAuthorYear extracts author/year tuples from free-text citation text
// and matches them against the reference list. Semicolons separate
// multi-citation parentheticals like "(Smith, 2020; Jones, 2021)" (R3.1-R3.3).
func ParseAuthorYear(text string, refs []types.ReferenceEntry) []AuthorYearMatch {
	var matches []AuthorYearMatch

	for _, segment := range strings.Split(text, ";") {
		m, ok := parseSegment(segment)
		if !ok {
			continue
		}
		if ref, found := matchReference(m.Authors, m.Year, refs); found {
			m.RefNumber = ref.Number
			m.RefID = ref.ID
		}
		matches = append(matches, m)
	}

	return matches
}

// parseSegment tries the two-author, et-al, and single-author patterns in
// order and returns the tuple for the first that matches.
func parseSegment(segment string) (AuthorYearMatch, bool) {
	if loc := twoAuthorRe.FindStringSubmatchIndex(segment); loc != nil {
		return AuthorYearMatch{
			Authors:     []string{segment[loc[2]:loc[3]], segment[loc[4]:loc[5]]},
			Year:        segment[loc[6]:loc[7]],
			MatchedSpan: segment[loc[0]:loc[1]],
		}, true
	}
	if loc := etAlRe.FindStringSubmatchIndex(segment); loc != nil {
		return AuthorYearMatch{
			Authors:     []string{segment[loc[2]:loc[3]]},
			Year:        segment[loc[4]:loc[5]],
			MatchedSpan: segment[loc[0]:loc[1]],
		}, true
	}
	if loc := singleAuthorRe.FindStringSubmatchIndex(segment); loc != nil {
		return AuthorYearMatch{
			Authors:     []string{segment[loc[2]:loc[3]]},
			Year:        segment[loc[4]:loc[5]],
			MatchedSpan: segment[loc[0]:loc[1]],
		}, true
	}
	return AuthorYearMatch{}, false
}

// matchReference returns the first reference whose year equals the parsed
// year and whose derived author last names share at least one
// case-insensitive match with the candidate names (R3.2).
func matchReference(candidates []string, year string, refs []types.ReferenceEntry) (types.ReferenceEntry, bool) {
	for _, ref := range refs {
		if ref.Year != year {
			continue
		}
		for _, author := range ref.Authors {
			last := lastName(author)
			if last == "" {
				continue
			}
			for _, candidate := range candidates {
				if strings.EqualFold(last, candidate) {
					return ref, true
				}
			}
		}
	}
	return types.ReferenceEntry{}, false
}

// lastName derives an author's last name: the text before the first comma
// in "Last, First" form, otherwise the final whitespace-delimited token.
func lastName(author string) string {
	if i := strings.Index(author, ","); i >= 0 {
		return strings.TrimSpace(author[:i])
	}
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
