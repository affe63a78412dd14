// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate implements the citation annotation engine: a pure
// transformation that wraps every citation occurrence in a document body
// with semantic markup reflecting its validity state.
// Implements: prd001-annotation (R1-R6);
//
//	docs/ARCHITECTURE § Annotation Engine.
package annotate

import (
	"regexp"
	"sort"
	"strconv"
)

const (
	// maxRangeSpan bounds expansion of a numeric range. Ranges spanning
	// 50 or more entries are treated as malformed input, not citations.
	maxRangeSpan = 50

	// maxCitationNumber bounds accepted reference numbers. Integers at or
	// above 1000 (or at/below 0) are noise, e.g. years or page numbers.
	maxCitationNumber = 1000
)

// Numeric range patterns (R2.1).
var (
	// numberRangeRe matches "3-5", "3–5", "3—5" (hyphen, en dash, em dash).
	numberRangeRe = regexp.MustCompile(`(\d+)\s*[-\x{2013}\x{2014}]\s*(\d+)`)

	// standaloneNumberRe matches bare integers outside any range.
	standaloneNumberRe = regexp.MustCompile(`\d+`)
)

// ExpandNumbers turns bracket-style citation text like "[3-5]" or "[1,2,3]"
// into an explicit, deduplicated, ascending list of reference numbers.
// Non-numeric text yields an empty result (R2.1, R2.2).
func ExpandNumbers(text string) []int {
	seen := make(map[int]bool)
	var numbers []int

	add := func(n int) {
		if n <= 0 || n >= maxCitationNumber || seen[n] {
			return
		}
		seen[n] = true
		numbers = append(numbers, n)
	}

	for _, m := range numberRangeRe.FindAllStringSubmatch(text, -1) {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		if end <= start || end-start >= maxRangeSpan {
			continue
		}
		for n := start; n <= end; n++ {
			add(n)
		}
	}

	// Scan what remains once ranges are removed, so "3-5" does not also
	// contribute standalone 3 and 5.
	remainder := numberRangeRe.ReplaceAllString(text, " ")
	for _, m := range standaloneNumberRe.FindAllString(remainder, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		add(n)
	}

	sort.Ints(numbers)
	return numbers
}
