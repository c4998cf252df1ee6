// Package atlas implements an inverted index over 3D activation coordinates.
//
// WHAT IS A COORDINATE INDEX?
// A coordinate index maps each distinct (x, y, z) triple in a fixed spatial
// reference frame to the set of study IDs reporting an activation at that
// point. It backs the location-facing dissociation query.
//
// HOW IT WORKS:
// Coordinates are exact integer triples used directly as map keys; there is
// no fuzzy or radius matching, only equality, mirroring the exact-value
// predicate semantics of the annotation source.
//
// TIME COMPLEXITY:
//   - Build: O(n) over annotation rows
//   - StudiesAt: O(1) map lookup
//
// WHEN TO USE:
// Use the coordinate index for any query that references studies by reported
// location. Like the term index, it is immutable once built and always
// consumed through a Snapshot.
package atlas

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// Coordinate is an exact integer triple in the spatial reference frame.
// Equality is exact; two coordinates one millimeter apart are unrelated.
// Components are 32-bit so a coordinate survives snapshot serialization
// bit-for-bit; parse boundaries reject anything wider.
type Coordinate struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// String renders the coordinate in its boundary literal form "x_y_z".
func (c Coordinate) String() string {
	return fmt.Sprintf("%d_%d_%d", c.X, c.Y, c.Z)
}

// ParseCoordinate parses a boundary literal of the form "x_y_z" with three
// base-10 integer components, each within 32-bit range.
//
// Returns:
//   - Coordinate: the parsed triple
//   - error: wraps ErrMalformedCoordinate unless the literal splits into
//     exactly three 32-bit integers
//
// Example:
//
//	c, err := ParseCoordinate("3_-5_10") // Coordinate{3, -5, 10}
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("%w: %q must have exactly three components", ErrMalformedCoordinate, s)
	}

	var vals [3]int32
	for i, part := range parts {
		v, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			return Coordinate{}, fmt.Errorf("%w: component %d of %q is not a 32-bit integer", ErrMalformedCoordinate, i+1, s)
		}
		vals[i] = int32(v)
	}

	return Coordinate{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// CoordinateAnnotation is one raw (study, coordinate) row supplied by an
// AnnotationStore.
type CoordinateAnnotation struct {
	StudyID    uint32     `json:"study_id"`
	Coordinate Coordinate `json:"coordinate"`
}

// CoordinateIndex is an immutable inverted index from exact coordinates to
// study IDs. Build one with NewCoordinateIndex; all methods are safe for
// concurrent use because the index is never mutated after construction.
type CoordinateIndex struct {
	// postings: coordinate -> study IDs
	postings map[Coordinate]*roaring.Bitmap
	// total number of annotation rows
	rows int
}

// NewCoordinateIndex builds a coordinate index from raw annotation rows.
// An empty row set is legal and yields an index where every lookup returns
// the empty set.
func NewCoordinateIndex(rows []CoordinateAnnotation) *CoordinateIndex {
	ix := &CoordinateIndex{
		postings: make(map[Coordinate]*roaring.Bitmap),
	}

	for _, row := range rows {
		bm := ix.postings[row.Coordinate]
		if bm == nil {
			bm = roaring.New()
			ix.postings[row.Coordinate] = bm
		}
		bm.Add(row.StudyID)
		ix.rows++
	}

	return ix
}

// Len returns the number of distinct coordinates in the index.
func (ix *CoordinateIndex) Len() int {
	return len(ix.postings)
}

// Rows returns the number of annotation rows accepted at build time.
func (ix *CoordinateIndex) Rows() int {
	return ix.rows
}

// StudiesAt returns the study set reporting an activation at exactly the
// given coordinate. Unknown coordinates yield an empty bitmap, never an
// error.
//
// The returned bitmap is a copy and may be mutated freely by the caller.
func (ix *CoordinateIndex) StudiesAt(c Coordinate) *roaring.Bitmap {
	if bm, ok := ix.postings[c]; ok {
		return bm.Clone()
	}
	return roaring.New()
}
