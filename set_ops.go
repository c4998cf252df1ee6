package atlas

import "github.com/RoaringBitmap/roaring"

// Set algebra over study-ID bitmaps. Every operation is pure, total, and
// safe for the empty set; none of them mutate their inputs.

// SetCount returns |a|. A nil bitmap counts as the empty set.
func SetCount(a *roaring.Bitmap) uint64 {
	if a == nil {
		return 0
	}
	return a.GetCardinality()
}

// IntersectionCount returns |a ∩ b| without materializing the intersection.
// It is commutative: IntersectionCount(a, b) == IntersectionCount(b, a).
func IntersectionCount(a, b *roaring.Bitmap) uint64 {
	if a == nil || b == nil {
		return 0
	}
	return a.AndCardinality(b)
}

// Dissociate returns both directions of the set difference: the studies in
// a but not b, and the studies in b but not a. Studies present in both sets
// appear in neither result by construction.
func Dissociate(a, b *roaring.Bitmap) (aNotB, bNotA *roaring.Bitmap) {
	aNotB = roaring.AndNot(orEmpty(a), orEmpty(b))
	bNotA = roaring.AndNot(orEmpty(b), orEmpty(a))
	return aNotB, bNotA
}

// StudyIDs materializes a bitmap as an ascending, non-nil slice of study
// IDs. The ordering makes query results deterministic for a given snapshot.
func StudyIDs(a *roaring.Bitmap) []uint32 {
	if a == nil || a.IsEmpty() {
		return []uint32{}
	}
	return a.ToArray()
}

// orEmpty substitutes a fresh empty bitmap for nil so set operations stay
// total.
func orEmpty(a *roaring.Bitmap) *roaring.Bitmap {
	if a == nil {
		return roaring.New()
	}
	return a
}
