package atlas

import "errors"

var (
	// ErrMalformedCoordinate reports a coordinate literal that does not
	// split into exactly three base-10 integers. It is a per-query failure:
	// the caller sees it, the engine and its snapshot are unaffected.
	ErrMalformedCoordinate = errors.New("atlas: malformed coordinate literal")

	// ErrStoreUnavailable reports that the annotation store failed during a
	// snapshot build or refresh. The previous snapshot, if any, remains
	// servable.
	ErrStoreUnavailable = errors.New("atlas: annotation store unavailable")

	// ErrEmptyStore reports that a refresh yielded no annotation rows at
	// all. Only returned when the engine was built with
	// WithRequireAnnotations; an empty store is otherwise a legal,
	// queryable state.
	ErrEmptyStore = errors.New("atlas: annotation store returned no rows")
)
