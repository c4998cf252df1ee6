package atlas

import "context"

// sampleLimit bounds the number of raw rows returned per relation by Stats.
const sampleLimit = 3

// StatsResult is the response shape of Stats: snapshot-derived counts plus
// optional raw-row samples from the store.
type StatsResult struct {
	OK bool `json:"ok"`

	// Snapshot-derived counts
	TermAnnotationCount       int    `json:"annotations_terms_count"`
	CoordinateAnnotationCount int    `json:"coordinates_count"`
	DistinctTerms             int    `json:"distinct_terms"`
	DistinctCoordinates       int    `json:"distinct_coordinates"`
	StudyCount                uint64 `json:"study_count"`

	// Best-effort raw-row samples; empty when the store cannot serve them
	TermSample       []TermAnnotation       `json:"annotations_terms_sample"`
	CoordinateSample []CoordinateAnnotation `json:"coordinates_sample"`
}

// Stats reports counts from the current snapshot together with a bounded
// sample of raw rows from the store.
//
// The samples are capability queries: each is attempted independently
// through the optional TermSampler / CoordinateSampler interfaces, and a
// store that lacks the capability or fails mid-sample degrades that sample
// to an empty slice. Sample failures are logged, never propagated — the
// counts in the result are always valid.
func (e *Engine) Stats(ctx context.Context) StatsResult {
	snap := e.snap.Load()
	result := StatsResult{
		OK:                        true,
		TermAnnotationCount:       snap.terms.Rows(),
		CoordinateAnnotationCount: snap.coordinates.Rows(),
		DistinctTerms:             snap.terms.Len(),
		DistinctCoordinates:       snap.coordinates.Len(),
		StudyCount:                snap.StudyCount(),
		TermSample:                []TermAnnotation{},
		CoordinateSample:          []CoordinateAnnotation{},
	}

	if sampler, ok := e.store.(TermSampler); ok {
		rows, err := sampler.SampleTermAnnotations(ctx, sampleLimit)
		if err != nil {
			e.logger.Warn("term sample unavailable", "error", err)
		} else if rows != nil {
			result.TermSample = rows
		}
	}

	if sampler, ok := e.store.(CoordinateSampler); ok {
		rows, err := sampler.SampleCoordinateAnnotations(ctx, sampleLimit)
		if err != nil {
			e.logger.Warn("coordinate sample unavailable", "error", err)
		} else if rows != nil {
			result.CoordinateSample = rows
		}
	}

	return result
}
