package atlas

import "context"

// AnnotationStore supplies the raw annotation rows the engine indexes.
// The store owns the raw data; the engine owns only the derived indices.
// Implementations are consulted exclusively on the build/refresh path,
// never during queries.
type AnnotationStore interface {
	// TermAnnotations returns every (study, term) row.
	TermAnnotations(ctx context.Context) ([]TermAnnotation, error)

	// CoordinateAnnotations returns every (study, coordinate) row.
	CoordinateAnnotations(ctx context.Context) ([]CoordinateAnnotation, error)
}

// TermSampler is an optional capability of an AnnotationStore: a bounded
// peek at raw term rows for diagnostics. A store that cannot serve samples
// simply does not implement it; a failing sampler degrades to an empty
// sample (see Engine.Stats).
type TermSampler interface {
	SampleTermAnnotations(ctx context.Context, limit int) ([]TermAnnotation, error)
}

// CoordinateSampler is the coordinate-row counterpart of TermSampler.
type CoordinateSampler interface {
	SampleCoordinateAnnotations(ctx context.Context, limit int) ([]CoordinateAnnotation, error)
}

// Compile-time checks to ensure MemoryStore implements the store contracts
var (
	_ AnnotationStore   = (*MemoryStore)(nil)
	_ TermSampler       = (*MemoryStore)(nil)
	_ CoordinateSampler = (*MemoryStore)(nil)
)

// MemoryStore is an AnnotationStore backed by in-memory slices. It is the
// natural adapter for tests and for embedding the engine behind a caller
// that already holds its annotation rows.
type MemoryStore struct {
	Terms       []TermAnnotation
	Coordinates []CoordinateAnnotation
}

// NewMemoryStore creates a MemoryStore over the given rows. The slices are
// retained, not copied; callers must not mutate them afterwards.
func NewMemoryStore(terms []TermAnnotation, coordinates []CoordinateAnnotation) *MemoryStore {
	return &MemoryStore{
		Terms:       terms,
		Coordinates: coordinates,
	}
}

// TermAnnotations returns the stored term rows.
func (s *MemoryStore) TermAnnotations(ctx context.Context) ([]TermAnnotation, error) {
	return s.Terms, nil
}

// CoordinateAnnotations returns the stored coordinate rows.
func (s *MemoryStore) CoordinateAnnotations(ctx context.Context) ([]CoordinateAnnotation, error) {
	return s.Coordinates, nil
}

// SampleTermAnnotations returns up to limit term rows. A negative limit is
// treated as zero.
func (s *MemoryStore) SampleTermAnnotations(ctx context.Context, limit int) ([]TermAnnotation, error) {
	return s.Terms[:clampSample(limit, len(s.Terms))], nil
}

// SampleCoordinateAnnotations returns up to limit coordinate rows. A
// negative limit is treated as zero.
func (s *MemoryStore) SampleCoordinateAnnotations(ctx context.Context, limit int) ([]CoordinateAnnotation, error) {
	return s.Coordinates[:clampSample(limit, len(s.Coordinates))], nil
}

// clampSample bounds a sample limit to [0, rows].
func clampSample(limit, rows int) int {
	if limit < 0 {
		return 0
	}
	return min(limit, rows)
}
