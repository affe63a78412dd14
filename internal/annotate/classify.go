// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/pdiddy/pubcite/pkg/types"
)

// State is the validity state of one citation. Exactly one state applies
// per citation per render (R5.1).
type State string

const (
	// StateChanged marks a citation with a style or renumber change in
	// flight; rendered as an "old → new" transition.
	StateChanged State = "changed"

	// StateOrphaned marks a citation whose target reference no longer
	// exists; rendered struck through with a warning glyph.
	StateOrphaned State = "orphaned"

	// StateUnmatched marks a citation that never matched any reference.
	StateUnmatched State = "unmatched"

	// StateMatchedNumber marks a citation matched by explicit number;
	// each embedded number is an independently clickable unit.
	StateMatchedNumber State = "number"

	// StateMatchedAuthorYear marks a citation matched by author-year
	// parsing; each matched span is a clickable unit.
	StateMatchedAuthorYear State = "author-year"

	// StateDefault is the fallback highlight when nothing else applies.
	StateDefault State = "default"
)

// Click-routing contract (R5.4). The host's click handler keys on these
// exact strings; changing them breaks deployed display layers.
const (
	linkClass    = "pc-cite-link"
	refNumAttr   = "data-ref-number"
	wrapperClass = "pc-cite"
)

// Classification is the outcome of the validity classifier for one
// citation: its state, the ordered search texts to locate in the markup,
// and the markup fragment that replaces the located text.
type Classification struct {
	State State

	// SearchTexts lists the literal texts to look for, primary first.
	SearchTexts []string

	// Fragment is the sanitizer-safe markup that replaces the first
	// search text found.
	Fragment string
}

// Classify decides the validity state for one citation from its resolved
// change record (nil if none), its expanded numbers, its author-year
// matches, and the set of existing reference numbers. States are checked
// in fixed priority order; the first applicable wins. A change in flight
// deliberately outranks a stale orphan signal (R5.1-R5.3).
func Classify(c types.Citation, change *types.ChangeRecord, numbers []int, ayMatches []AuthorYearMatch, refNumbers map[int]bool) Classification {
	if change != nil && change.OldText != "" && change.NewText != "" && change.OldText != change.NewText {
		return classifyChanged(c, change)
	}

	if isOrphaned(c, change, numbers, refNumbers) {
		return classifyOrphaned(c, change)
	}

	resolved := resolvedCount(ayMatches)

	if c.ReferenceNumber == 0 && len(numbers) == 0 && resolved == 0 {
		return Classification{
			State:       StateUnmatched,
			SearchTexts: []string{c.RawText},
			Fragment:    renderUnmatched(c.RawText),
		}
	}

	if (c.ReferenceNumber > 0 && refNumbers[c.ReferenceNumber]) || anyPresent(numbers, refNumbers) {
		return Classification{
			State:       StateMatchedNumber,
			SearchTexts: []string{c.RawText},
			Fragment:    renderMatchedNumber(c, numbers, refNumbers),
		}
	}

	if resolved > 0 {
		return Classification{
			State:       StateMatchedAuthorYear,
			SearchTexts: []string{c.RawText},
			Fragment:    renderAuthorYear(c.RawText, ayMatches),
		}
	}

	return Classification{
		State:       StateDefault,
		SearchTexts: []string{c.RawText},
		Fragment:    renderDefault(c.RawText),
	}
}

// classifyChanged renders a style/renumber transition. For renumber
// changes the markup has usually been regenerated, so NewText is searched
// first; for style conversions the pre-change text typically still appears,
// so OldText is searched first (R5.2).
func classifyChanged(c types.Citation, change *types.ChangeRecord) Classification {
	var search []string
	if change.ChangeType == types.ChangeRenumber {
		search = []string{change.NewText, change.OldText}
	} else {
		search = []string{change.OldText, change.NewText}
	}
	if c.RawText != "" {
		search = append(search, c.RawText)
	}

	oldEsc := html.EscapeString(change.OldText)
	newEsc := html.EscapeString(change.NewText)
	fragment := fmt.Sprintf(
		`<span class="%s %s-changed %s-pulse" title="Citation updated: %s &#8594; %s"><span class="%s-old">%s</span> &#8594; <span class="%s-new">%s</span></span>`,
		wrapperClass, wrapperClass, wrapperClass,
		oldEsc, newEsc,
		wrapperClass, oldEsc,
		wrapperClass, newEsc,
	)

	return Classification{
		State:       StateChanged,
		SearchTexts: dedupeStrings(search),
		Fragment:    fragment,
	}
}

// isOrphaned applies the orphan conditions in order. The numeric-absence
// conditions require a non-empty reference list: an empty snapshot means
// "nothing to compare against", not "everything deleted" (R5.3).
func isOrphaned(c types.Citation, change *types.ChangeRecord, numbers []int, refNumbers map[int]bool) bool {
	if c.IsOrphaned {
		return true
	}
	if change != nil {
		if change.ChangeType == types.ChangeDeleted {
			return true
		}
		if change.NewNumber == nil && change.OldText == change.NewText {
			return true
		}
	}
	if len(refNumbers) == 0 {
		return false
	}
	if c.ReferenceNumber > 0 && !refNumbers[c.ReferenceNumber] {
		return true
	}
	for _, n := range numbers {
		if !refNumbers[n] {
			return true
		}
	}
	return false
}

func classifyOrphaned(c types.Citation, change *types.ChangeRecord) Classification {
	display := c.RawText
	search := []string{c.RawText}
	if change != nil && change.OldText != "" {
		display = change.OldText
		search = []string{change.OldText, c.RawText}
	}
	return Classification{
		State:       StateOrphaned,
		SearchTexts: dedupeStrings(search),
		Fragment:    renderOrphaned(display),
	}
}

func renderOrphaned(text string) string {
	return fmt.Sprintf(
		`<span class="%s %s-orphaned" title="Reference no longer exists"><s>%s</s> &#9888;</span>`,
		wrapperClass, wrapperClass, html.EscapeString(text),
	)
}

func renderUnmatched(text string) string {
	return fmt.Sprintf(
		`<span class="%s %s-unmatched" title="No matching reference">%s</span>`,
		wrapperClass, wrapperClass, html.EscapeString(text),
	)
}

// renderMatchedNumber wraps each embedded reference number in a clickable
// link. Compound forms like "[3,4]" become independent units. A citation
// matched only through its ReferenceNumber field (no digits in the text)
// becomes a single link over the whole text (R5.4).
func renderMatchedNumber(c types.Citation, numbers []int, refNumbers map[int]bool) string {
	inner := linkNumbers(c.RawText, refNumbers, false)
	if len(numbers) == 0 && c.ReferenceNumber > 0 {
		inner = renderLink(c.ReferenceNumber, html.EscapeString(c.RawText))
	}
	return fmt.Sprintf(
		`<span class="%s %s-number" title="Matched reference">%s</span>`,
		wrapperClass, wrapperClass, inner,
	)
}

// renderAuthorYear wraps each matched span in a clickable link keyed to its
// resolved reference number; unresolved spans stay plain text (R5.5).
func renderAuthorYear(raw string, matches []AuthorYearMatch) string {
	var b strings.Builder
	cursor := 0
	for _, m := range matches {
		if m.RefNumber == 0 || m.MatchedSpan == "" {
			continue
		}
		idx := strings.Index(raw[cursor:], m.MatchedSpan)
		if idx < 0 {
			continue
		}
		idx += cursor
		b.WriteString(html.EscapeString(raw[cursor:idx]))
		b.WriteString(renderLink(m.RefNumber, html.EscapeString(m.MatchedSpan)))
		cursor = idx + len(m.MatchedSpan)
	}
	b.WriteString(html.EscapeString(raw[cursor:]))
	return fmt.Sprintf(
		`<span class="%s %s-author-year" title="Matched reference">%s</span>`,
		wrapperClass, wrapperClass, b.String(),
	)
}

// renderDefault applies the default highlight; embedded numbers remain
// clickable so numeric citations stay navigable even when the reference
// snapshot is momentarily empty (R5.6).
func renderDefault(text string) string {
	return fmt.Sprintf(
		`<span class="%s %s-default">%s</span>`,
		wrapperClass, wrapperClass, linkNumbers(text, nil, true),
	)
}

// linkNumbers escapes text while wrapping digit runs in clickable links.
// Escaping happens around the digits, never across them, so entity
// references introduced by escaping are not mistaken for citation numbers.
func linkNumbers(text string, refNumbers map[int]bool, linkAll bool) string {
	var b strings.Builder
	cursor := 0
	for _, loc := range standaloneNumberRe.FindAllStringIndex(text, -1) {
		digits := text[loc[0]:loc[1]]
		n, err := strconv.Atoi(digits)
		linkable := err == nil && n > 0 && n < maxCitationNumber && (linkAll || refNumbers[n])
		b.WriteString(html.EscapeString(text[cursor:loc[0]]))
		if linkable {
			b.WriteString(renderLink(n, digits))
		} else {
			b.WriteString(digits)
		}
		cursor = loc[1]
	}
	b.WriteString(html.EscapeString(text[cursor:]))
	return b.String()
}

func renderLink(refNumber int, inner string) string {
	return fmt.Sprintf(`<a class="%s" href="#ref-%d" %s="%d">%s</a>`,
		linkClass, refNumber, refNumAttr, refNumber, inner)
}

func resolvedCount(matches []AuthorYearMatch) int {
	count := 0
	for _, m := range matches {
		if m.RefNumber > 0 {
			count++
		}
	}
	return count
}

func anyPresent(numbers []int, refNumbers map[int]bool) bool {
	for _, n := range numbers {
		if refNumbers[n] {
			return true
		}
	}
	return false
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
