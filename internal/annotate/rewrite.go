// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/pubcite/pkg/types"
)

// referenceHeadingRes lists the heading shapes that open a bibliography
// section, tried in order; the first match wins and everything from that
// point on is excluded from annotation (R6.1).
var referenceHeadingRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<h[1-6][^>]*>\s*(?:references|bibliography|works\s+cited)\b`),
	regexp.MustCompile(`(?im)^#{1,6}\s*(?:references|bibliography|works\s+cited)\s*$`),
	regexp.MustCompile(`(?im)^\s*(?:<(?:p|div|strong|b)[^>]*>)*\s*(?:references|bibliography|works\s+cited)\s*:?\s*(?:</(?:p|div|strong|b)>)*\s*$`),
}

// tagRe strips markup tags for the plain-text rendering used by
// offset-derived fallbacks.
var tagRe = regexp.MustCompile(`<[^>]*>`)

// attrEscaper produces the attribute-escaped form of a search text.
var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// enDashEncodings are the interchangeable encodings of an en dash seen in
// rendered markup.
var enDashEncodings = []string{"–", "&#8211;", "&ndash;"}

// Summary carries the badge counts shown next to a document in the UI.
type Summary struct {
	UnmatchedCount int `json:"unmatched_count" yaml:"unmatched_count"`
	OrphanedCount  int `json:"orphaned_count" yaml:"orphaned_count"`
}

// replacement is one claimed search variant awaiting substitution.
type replacement struct {
	variant     string
	placeholder string
	fragment    string
}

// Annotate wraps every located citation occurrence in the document body
// with semantic markup reflecting its validity state. It is a pure
// function: identical inputs yield byte-identical output, and failure to
// locate a citation degrades to a traced skip, never a corrupted body
// (R6.1-R6.6).
func Annotate(body string, citations []types.Citation, refs []types.ReferenceEntry, changes []types.ChangeRecord, tr Tracer) string {
	if tr == nil {
		tr = NopTracer
	}

	head, tail := splitReferences(body)
	plain := []rune(plainText(head))
	refNumbers := buildRefNumbers(refs)

	ordered := orderCitations(citations, tr)

	claimed := make(map[string]bool)
	consumed := make(map[int]bool)
	var repls []replacement

	for _, c := range ordered {
		cls, changeIdx, hasChange := classifyCitation(c, refs, changes, refNumbers)
		if hasChange {
			consumed[changeIdx] = true
		}

		var change *types.ChangeRecord
		if hasChange {
			ch := changes[changeIdx]
			change = &ch
		}

		variant, found := pickVariant(head, searchVariants(cls.SearchTexts, c, plain, change), claimed)
		if !found {
			tr.Trace(Event{Kind: EventNotFound, CitationID: c.ID, Text: c.RawText})
			continue
		}

		claimed[variant] = true
		tr.Trace(Event{Kind: EventLocated, CitationID: c.ID, Text: c.RawText, Detail: variant})
		repls = append(repls, replacement{
			variant:     variant,
			placeholder: newPlaceholder(),
			fragment:    cls.Fragment,
		})
	}

	// Deleted references whose citation object is gone (blank ID, never
	// resolved) still deserve orphan markup when their text survives in
	// the body (R6.5).
	for i, ch := range changes {
		if ch.ChangeType != types.ChangeDeleted || consumed[i] {
			continue
		}
		for _, text := range []string{ch.OldText, ch.NewText} {
			if text == "" || claimed[text] || !strings.Contains(head, text) {
				continue
			}
			claimed[text] = true
			tr.Trace(Event{Kind: EventDeletedFallback, CitationID: ch.CitationID, Text: text})
			repls = append(repls, replacement{
				variant:     text,
				placeholder: newPlaceholder(),
				fragment:    renderOrphaned(text),
			})
			break
		}
	}

	return substitute(head, repls) + tail
}

// Summarize re-runs the validity classifier without the rewrite step and
// returns the unmatched/orphaned badge counts (R6.7).
func Summarize(citations []types.Citation, refs []types.ReferenceEntry, changes []types.ChangeRecord) Summary {
	refNumbers := buildRefNumbers(refs)
	var s Summary
	for _, c := range orderCitations(citations, NopTracer) {
		cls, _, _ := classifyCitation(c, refs, changes, refNumbers)
		switch cls.State {
		case StateUnmatched:
			s.UnmatchedCount++
		case StateOrphaned:
			s.OrphanedCount++
		}
	}
	return s
}

// classifyCitation runs the leaf components for one citation and returns
// its classification plus the resolved change record index, if any.
func classifyCitation(c types.Citation, refs []types.ReferenceEntry, changes []types.ChangeRecord, refNumbers map[int]bool) (Classification, int, bool) {
	changeIdx, hasChange := ResolveChange(c, changes)
	var change *types.ChangeRecord
	if hasChange {
		ch := changes[changeIdx]
		change = &ch
	}
	numbers := ExpandNumbers(c.RawText)
	ayMatches := ParseAuthorYear(c.RawText, refs)
	return Classify(c, change, numbers, ayMatches, refNumbers), changeIdx, hasChange
}

// orderCitations drops empty-text citations, deduplicates by raw text
// (first occurrence keeps priority), and sorts longest text first so a
// shorter citation never partially consumes a longer one (R6.2).
func orderCitations(citations []types.Citation, tr Tracer) []types.Citation {
	seen := make(map[string]bool, len(citations))
	ordered := make([]types.Citation, 0, len(citations))
	for _, c := range citations {
		if c.RawText == "" {
			tr.Trace(Event{Kind: EventEmptyText, CitationID: c.ID})
			continue
		}
		if seen[c.RawText] {
			continue
		}
		seen[c.RawText] = true
		ordered = append(ordered, c)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].RawText) > len(ordered[j].RawText)
	})
	return ordered
}

// searchVariants builds the ordered list of textual variants to try for
// one citation: each canonical search text, its attribute-escaped form,
// its en-dash encoding variants, then the offset-derived plain-text
// fallback and any change-record alternate (R6.3).
func searchVariants(searchTexts []string, c types.Citation, plain []rune, change *types.ChangeRecord) []string {
	var variants []string
	for _, st := range searchTexts {
		variants = append(variants, st)
		if esc := attrEscaper.Replace(st); esc != st {
			variants = append(variants, esc)
		}
		variants = append(variants, dashVariants(st)...)
	}
	if c.EndOffset > c.StartOffset && c.StartOffset >= 0 && c.EndOffset <= len(plain) {
		if sub := strings.TrimSpace(string(plain[c.StartOffset:c.EndOffset])); sub != "" {
			variants = append(variants, sub)
		}
	}
	if change != nil {
		variants = append(variants, change.NewText, change.OldText)
	}
	return dedupeStrings(variants)
}

// dashVariants returns the text re-encoded with each alternate en-dash
// encoding it does not already use.
func dashVariants(text string) []string {
	var out []string
	for _, enc := range enDashEncodings {
		if !strings.Contains(text, enc) {
			continue
		}
		for _, alt := range enDashEncodings {
			if alt == enc {
				continue
			}
			out = append(out, strings.ReplaceAll(text, enc, alt))
		}
	}
	return out
}

// pickVariant returns the first unclaimed variant present in the body.
func pickVariant(body string, variants []string, claimed map[string]bool) (string, bool) {
	for _, v := range variants {
		if claimed[v] {
			continue
		}
		if strings.Contains(body, v) {
			return v, true
		}
	}
	return "", false
}

// substitute performs the two-phase placeholder rewrite. Both phases run
// as a single linear scan through a strings.Replacer; pairs are ordered
// longest variant first so overlapping texts resolve to the longer claim,
// and placeholders are synthesized to never collide with real content, so
// the second phase cannot re-match anything the first produced (R6.4).
func substitute(body string, repls []replacement) string {
	if len(repls) == 0 {
		return body
	}

	sort.SliceStable(repls, func(i, j int) bool {
		return len(repls[i].variant) > len(repls[j].variant)
	})

	phase1 := make([]string, 0, len(repls)*2)
	phase2 := make([]string, 0, len(repls)*2)
	for _, r := range repls {
		phase1 = append(phase1, r.variant, r.placeholder)
		phase2 = append(phase2, r.placeholder, r.fragment)
	}

	body = strings.NewReplacer(phase1...).Replace(body)
	return strings.NewReplacer(phase2...).Replace(body)
}

// newPlaceholder synthesizes a token that cannot occur in legitimate
// document content (NUL bytes never survive rendering pipelines).
func newPlaceholder() string {
	return "\x00pc-" + uuid.NewString() + "\x00"
}

// splitReferences cuts the body at the first recognizable bibliography
// heading. The tail is reattached untouched after annotation.
func splitReferences(body string) (head, tail string) {
	for _, re := range referenceHeadingRes {
		if loc := re.FindStringIndex(body); loc != nil {
			return body[:loc[0]], body[loc[0]:]
		}
	}
	return body, ""
}

// plainText renders markup to plain text: tags removed, entities decoded.
// Offsets supplied by the detection service count characters of this
// rendering.
func plainText(markup string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(markup, ""))
}

func buildRefNumbers(refs []types.ReferenceEntry) map[int]bool {
	numbers := make(map[int]bool, len(refs))
	for _, ref := range refs {
		numbers[ref.Number] = true
	}
	return numbers
}
