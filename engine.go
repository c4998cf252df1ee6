// Package atlas query engine: the façade over both indices.
//
// WHAT IS THE QUERY ENGINE?
// The Engine owns the current index snapshot and answers the set-theoretic
// queries over study annotations: term search, study counts, intersections,
// and dissociations. It is the only component with outside-facing contracts;
// the response field names below are fixed.
//
// HOW IT WORKS:
// The engine resolves each query's text or coordinate inputs into one or two
// study-ID sets via the snapshot's indices, applies the set algebra in
// set_ops.go, and shapes the result. Queries never touch the annotation
// store: all I/O is confined to Refresh.
//
// CONCURRENCY:
// Queries are a pure reader fan-out over an immutable snapshot held in an
// atomic pointer. Refresh builds a replacement snapshot off to the side and
// swaps the pointer; in-flight queries keep the snapshot they started with.
// No locks are taken on the query path.
//
// ERROR POLICY:
// Absence of data is success: unknown terms, unknown coordinates, and empty
// intersections produce empty results, never errors. The only per-query
// failure is a malformed coordinate literal, which is returned to the
// immediate caller and has no effect on the engine. A failed refresh leaves
// the previous snapshot servable.
package atlas

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Engine answers annotation queries against an immutable index snapshot.
// Construct with NewEngine, populate with Refresh (or RestoreSnapshot), and
// share freely: all methods are safe for concurrent use.
type Engine struct {
	store       AnnotationStore
	logger      *Logger
	matchLimit  int
	requireRows bool

	snap atomic.Pointer[Snapshot]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used on the refresh path and for
// best-effort sub-query degradation. Defaults to a noop logger.
func WithLogger(l *Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMatchLimit overrides the display cap applied to TermSearch matches.
// Defaults to DefaultMatchLimit. Counting queries are never capped.
func WithMatchLimit(limit int) Option {
	return func(e *Engine) {
		e.matchLimit = limit
	}
}

// WithRequireAnnotations makes Refresh fail with ErrEmptyStore when the
// store yields no rows at all. By default an empty store is a legal,
// queryable state with zero matches.
func WithRequireAnnotations() Option {
	return func(e *Engine) {
		e.requireRows = true
	}
}

// NewEngine creates an engine over the given annotation store. The engine
// serves an empty snapshot until the first successful Refresh or
// RestoreSnapshot. The store may be nil for restore-only engines, in which
// case Refresh always fails with ErrStoreUnavailable.
func NewEngine(store AnnotationStore, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		logger:     NoopLogger(),
		matchLimit: DefaultMatchLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snap.Store(emptySnapshot())
	return e
}

// Refresh rebuilds the snapshot from the annotation store and atomically
// swaps it in. Both relations are loaded concurrently. On failure the
// previous snapshot remains servable and the error wraps
// ErrStoreUnavailable.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.store == nil {
		return fmt.Errorf("%w: engine has no store", ErrStoreUnavailable)
	}

	var (
		termRows  []TermAnnotation
		coordRows []CoordinateAnnotation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		termRows, err = e.store.TermAnnotations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		coordRows, err = e.store.CoordinateAnnotations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		e.logger.Error("refresh failed", "error", err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if e.requireRows && len(termRows) == 0 && len(coordRows) == 0 {
		return ErrEmptyStore
	}

	snap := newSnapshot(termRows, coordRows)
	e.snap.Store(snap)

	e.logger.Info("snapshot refreshed",
		"terms", snap.terms.Len(),
		"coordinates", snap.coordinates.Len(),
		"studies", snap.StudyCount(),
	)
	return nil
}

// Snapshot returns the snapshot currently served. Useful for callers that
// need a stable view across several queries.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// WriteSnapshot serializes the current snapshot to w (see Snapshot.WriteTo).
func (e *Engine) WriteSnapshot(w io.Writer) (int64, error) {
	return e.snap.Load().WriteTo(w)
}

// RestoreSnapshot deserializes a snapshot from r and atomically swaps it in,
// replacing whatever the engine was serving. The previous snapshot stays
// servable if the stream is malformed.
func (e *Engine) RestoreSnapshot(r io.Reader) (int64, error) {
	snap := new(Snapshot)
	n, err := snap.ReadFrom(r)
	if err != nil {
		return n, err
	}
	e.snap.Store(snap)
	return n, nil
}

// displayTerm echoes a user-supplied term the way the boundary contract
// expects: underscores become spaces, everything else is left as given.
func displayTerm(term string) string {
	return strings.ReplaceAll(term, "_", " ")
}

// TermSearchResult is the response shape of TermSearch.
type TermSearchResult struct {
	Term    string   `json:"term"`
	Exists  bool     `json:"exists"`
	Matches []string `json:"matches"`
}

// TermSearch reports whether any vocabulary term contains the query as a
// substring, along with up to the display cap of matching terms in
// lexicographic order.
func (e *Engine) TermSearch(term string) TermSearchResult {
	matches := e.snap.Load().terms.MatchSubstring(term, e.matchLimit)
	e.logger.WithTerm(term).Debug("term search", "matches", len(matches))
	return TermSearchResult{
		Term:    term,
		Exists:  len(matches) > 0,
		Matches: matches,
	}
}

// TermCountResult is the response shape of TermCount.
type TermCountResult struct {
	Term       string `json:"term"`
	StudyCount uint64 `json:"study_count"`
}

// TermCount returns the number of distinct studies annotated with any term
// containing the query as a substring. Unknown terms count zero studies.
func (e *Engine) TermCount(term string) TermCountResult {
	studies := e.snap.Load().terms.StudiesMatchingSubstring(term)
	return TermCountResult{
		Term:       displayTerm(term),
		StudyCount: SetCount(studies),
	}
}

// IntersectionResult is the response shape of Intersection.
type IntersectionResult struct {
	TermA             string `json:"term_a"`
	TermB             string `json:"term_b"`
	IntersectionCount uint64 `json:"intersection_count"`
}

// Intersection returns the number of studies annotated with both terms
// (substring semantics on each side). The operation is commutative.
func (e *Engine) Intersection(termA, termB string) IntersectionResult {
	snap := e.snap.Load()
	a := snap.terms.StudiesMatchingSubstring(termA)
	b := snap.terms.StudiesMatchingSubstring(termB)
	return IntersectionResult{
		TermA:             displayTerm(termA),
		TermB:             displayTerm(termB),
		IntersectionCount: IntersectionCount(a, b),
	}
}

// TermDissociationResult is the response shape of DissociateTerms.
type TermDissociationResult struct {
	StudyCount         uint64   `json:"study_count"`
	DissociatedStudies []uint32 `json:"dissociated_studies"`
}

// DissociateTerms returns the studies annotated with termA but not termB
// (substring semantics on each side), in ascending study-ID order.
//
// Only the A-without-B direction is exposed, matching the historical
// external contract for terms; the underlying Dissociate primitive computes
// both directions and the coordinate-facing operation exposes both.
func (e *Engine) DissociateTerms(termA, termB string) TermDissociationResult {
	snap := e.snap.Load()
	a := snap.terms.StudiesMatchingSubstring(termA)
	b := snap.terms.StudiesMatchingSubstring(termB)
	aNotB, _ := Dissociate(a, b)
	return TermDissociationResult{
		StudyCount:         SetCount(aNotB),
		DissociatedStudies: StudyIDs(aNotB),
	}
}

// LocationDissociationResult is the response shape of DissociateLocations.
type LocationDissociationResult struct {
	AToB []uint32 `json:"a_to_b"`
	BToA []uint32 `json:"b_to_a"`
}

// DissociateLocations returns both directions of the location dissociation:
// studies reporting coordinate a but not b, and studies reporting b but not
// a, each in ascending study-ID order. Studies reporting both coordinates
// appear in neither direction.
func (e *Engine) DissociateLocations(a, b Coordinate) LocationDissociationResult {
	snap := e.snap.Load()
	sa := snap.coordinates.StudiesAt(a)
	sb := snap.coordinates.StudiesAt(b)
	aNotB, bNotA := Dissociate(sa, sb)
	result := LocationDissociationResult{
		AToB: StudyIDs(aNotB),
		BToA: StudyIDs(bNotA),
	}
	e.logger.WithCoordinate(a).Debug("location dissociation",
		"against", b.String(),
		"a_to_b", len(result.AToB),
		"b_to_a", len(result.BToA),
	)
	return result
}
