// Package atlas implements an inverted index over free-text study annotations.
//
// WHAT IS A TERM INDEX?
// A term index maps each distinct annotation term to the set of study IDs
// annotated with it. It is the structure behind every term-facing query:
// search, counting, intersection, and dissociation.
//
// HOW IT WORKS:
// 1. Each raw (study, term) row is normalized (see normalizeTerm) and the
//    study ID is added to the term's roaring bitmap posting list.
// 2. Fuzzy lookup is a substring scan over the sorted vocabulary, matching
//    the semantics of SQL LIKE '%query%' with case folding.
// 3. Study-set lookup unions the posting lists of every matched term.
//
// NORMALIZATION:
// Terms and queries go through the same pipeline, so both sides of a match
// always agree:
//   - Underscores become spaces ("frontal_cortex" -> "frontal cortex")
//   - Unicode NFKC normalization plus lowercasing
//   - Whitespace runs collapse to single spaces using UAX#29 segmentation
//
// TIME COMPLEXITY:
//   - Build: O(n) over annotation rows
//   - MatchSubstring / StudiesMatchingSubstring: O(v) over vocabulary size
//   - StudiesFor: O(1) map lookup
//
// MEMORY REQUIREMENTS:
// Posting lists are roaring bitmaps, so memory stays proportional to the
// number of distinct (term, study) pairs with heavy compression for dense
// study populations.
//
// GUARANTEES & TRADE-OFFS:
// ✓ Pros:
//   - Exact LIKE '%q%' substring semantics, case-insensitive
//   - Deterministic (lexicographic) match order for identical inputs
//   - Immutable after build: safe for unlimited concurrent readers
//
// ✗ Cons:
//   - Substring scan is linear in vocabulary size (fine at annotation-corpus
//     scale; a trigram index would be needed far beyond that)
//   - No stemming: distinct normalized spellings stay distinct terms
//
// WHEN TO USE:
// Use the term index whenever a query references annotations by text. It is
// always consumed through a Snapshot, never mutated in place.
package atlas

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// DefaultMatchLimit caps the number of terms returned by MatchSubstring when
// the caller does not supply a positive limit. It mirrors the display bound
// of the external contract; study-set unions are never capped.
const DefaultMatchLimit = 10

// TermAnnotation is one raw (study, term) row supplied by an AnnotationStore.
type TermAnnotation struct {
	StudyID uint32 `json:"study_id"`
	Term    string `json:"term"`
}

// TermIndex is an immutable inverted index from normalized terms to study
// IDs. Build one with NewTermIndex; all methods are safe for concurrent use
// because the index is never mutated after construction.
type TermIndex struct {
	// postings: normalized term -> study IDs
	postings map[string]*roaring.Bitmap
	// vocabulary sorted lexicographically for deterministic scans
	vocab []string
	// total number of accepted annotation rows
	rows int
}

// normalizeTerm canonicalizes a raw term or user query so that vocabulary
// and lookups always compare equal forms. Underscores act as literal space
// separators, the string is NFKC-folded and lowercased, and whitespace runs
// collapse to a single space via UAX#29 word segmentation.
func normalizeTerm(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ToLower(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	toks := words.FromString(s)
	for toks.Next() {
		tok := toks.Value()
		if strings.TrimSpace(tok) == "" {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteString(tok)
	}
	return b.String()
}

// NewTermIndex builds a term index from raw annotation rows.
// Rows whose term normalizes to the empty string are skipped. An empty row
// set is legal and yields an index where every lookup returns zero matches.
//
// Parameters:
//   - rows: raw (study, term) annotation rows
//
// Returns:
//   - *TermIndex: a fully built, immutable index
//
// Time Complexity: O(n log v) for n rows and v distinct terms
//
// Example:
//
//	idx := NewTermIndex([]TermAnnotation{
//		{StudyID: 1, Term: "amygdala"},
//		{StudyID: 2, Term: "amygdala"},
//		{StudyID: 2, Term: "cortex"},
//	})
func NewTermIndex(rows []TermAnnotation) *TermIndex {
	ix := &TermIndex{
		postings: make(map[string]*roaring.Bitmap),
	}

	for _, row := range rows {
		term := normalizeTerm(row.Term)
		if term == "" {
			continue
		}
		bm := ix.postings[term]
		if bm == nil {
			bm = roaring.New()
			ix.postings[term] = bm
		}
		bm.Add(row.StudyID)
		ix.rows++
	}

	ix.vocab = make([]string, 0, len(ix.postings))
	for term := range ix.postings {
		ix.vocab = append(ix.vocab, term)
	}
	sort.Strings(ix.vocab)

	return ix
}

// Len returns the number of distinct normalized terms in the vocabulary.
func (ix *TermIndex) Len() int {
	return len(ix.vocab)
}

// Rows returns the number of annotation rows accepted at build time.
func (ix *TermIndex) Rows() int {
	return ix.rows
}

// MatchSubstring returns up to limit distinct terms whose normalized form
// contains the normalized query as a substring, in lexicographic order.
// A limit <= 0 falls back to DefaultMatchLimit.
//
// This is the display contract only: counting and set-algebra queries use
// StudiesMatchingSubstring, which is not capped.
//
// An empty query matches every term, mirroring LIKE '%%'.
func (ix *TermIndex) MatchSubstring(query string, limit int) []string {
	limit = clampLimit(limit, DefaultMatchLimit)
	q := normalizeTerm(query)

	matches := []string{}
	for _, term := range ix.vocab {
		if strings.Contains(term, q) {
			matches = append(matches, term)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

// StudiesFor returns the study set annotated with exactly the given term
// after normalization. Unknown terms yield an empty bitmap, never an error.
//
// The returned bitmap is a copy and may be mutated freely by the caller.
func (ix *TermIndex) StudiesFor(term string) *roaring.Bitmap {
	if bm, ok := ix.postings[normalizeTerm(term)]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// StudiesMatchingSubstring returns the union of study sets over every term
// matched by substring. This is the set consumed by count, intersection, and
// dissociation queries; unlike MatchSubstring it is never capped.
func (ix *TermIndex) StudiesMatchingSubstring(query string) *roaring.Bitmap {
	q := normalizeTerm(query)

	result := roaring.New()
	for _, term := range ix.vocab {
		if strings.Contains(term, q) {
			result.Or(ix.postings[term])
		}
	}
	return result
}

// clampLimit ensures a display limit is positive, substituting def when the
// caller passes zero or a negative value.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
