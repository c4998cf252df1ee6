package atlas

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// TestStats tests snapshot counts and raw-row samples
func TestStats(t *testing.T) {
	engine := refreshedEngine(t, scenarioStore())

	got := engine.Stats(context.Background())
	if !got.OK {
		t.Error("OK = false, want true")
	}
	if got.TermAnnotationCount != 4 {
		t.Errorf("TermAnnotationCount = %d, want 4", got.TermAnnotationCount)
	}
	if got.CoordinateAnnotationCount != 3 {
		t.Errorf("CoordinateAnnotationCount = %d, want 3", got.CoordinateAnnotationCount)
	}
	if got.DistinctTerms != 2 {
		t.Errorf("DistinctTerms = %d, want 2", got.DistinctTerms)
	}
	if got.DistinctCoordinates != 2 {
		t.Errorf("DistinctCoordinates = %d, want 2", got.DistinctCoordinates)
	}
	if got.StudyCount != 3 {
		t.Errorf("StudyCount = %d, want 3", got.StudyCount)
	}

	wantTermSample := []TermAnnotation{
		{StudyID: 1, Term: "amygdala"},
		{StudyID: 2, Term: "amygdala"},
		{StudyID: 2, Term: "cortex"},
	}
	if !reflect.DeepEqual(got.TermSample, wantTermSample) {
		t.Errorf("TermSample = %v, want %v", got.TermSample, wantTermSample)
	}
	if len(got.CoordinateSample) != sampleLimit {
		t.Errorf("CoordinateSample length = %d, want %d", len(got.CoordinateSample), sampleLimit)
	}
}

// brokenSampler serves rows but fails every sample request.
type brokenSampler struct {
	*MemoryStore
}

func (s *brokenSampler) SampleTermAnnotations(ctx context.Context, limit int) ([]TermAnnotation, error) {
	return nil, errors.New("sample query timed out")
}

func (s *brokenSampler) SampleCoordinateAnnotations(ctx context.Context, limit int) ([]CoordinateAnnotation, error) {
	return nil, errors.New("sample query timed out")
}

// TestStatsSampleDegradation tests the capability-query pattern: a failing
// sampler degrades its sample to empty without failing the call
func TestStatsSampleDegradation(t *testing.T) {
	engine := refreshedEngine(t, &brokenSampler{MemoryStore: scenarioStore()})

	got := engine.Stats(context.Background())
	if !got.OK {
		t.Error("OK = false, want true")
	}
	if got.TermAnnotationCount != 4 {
		t.Errorf("TermAnnotationCount = %d, want 4", got.TermAnnotationCount)
	}
	if got.TermSample == nil || len(got.TermSample) != 0 {
		t.Errorf("TermSample = %v, want empty non-nil slice", got.TermSample)
	}
	if got.CoordinateSample == nil || len(got.CoordinateSample) != 0 {
		t.Errorf("CoordinateSample = %v, want empty non-nil slice", got.CoordinateSample)
	}
}

// TestStatsWithoutSamplerCapability tests a store that does not implement
// the sampler interfaces at all
func TestStatsWithoutSamplerCapability(t *testing.T) {
	store := NewTSVStore("", "")
	engine := refreshedEngine(t, store)

	got := engine.Stats(context.Background())
	if !got.OK {
		t.Error("OK = false, want true")
	}
	if len(got.TermSample) != 0 || len(got.CoordinateSample) != 0 {
		t.Errorf("samples = %v / %v, want empty", got.TermSample, got.CoordinateSample)
	}
}

// TestStatsNilStore tests stats on a restore-only engine
func TestStatsNilStore(t *testing.T) {
	engine := NewEngine(nil)
	got := engine.Stats(context.Background())
	if !got.OK {
		t.Error("OK = false, want true")
	}
	if got.StudyCount != 0 {
		t.Errorf("StudyCount = %d, want 0", got.StudyCount)
	}
}
