package atlas

import (
	"reflect"
	"testing"
)

// TestNormalizeTerm tests the normalization pipeline shared by vocabulary
// and queries
func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercase passthrough",
			in:   "amygdala",
			want: "amygdala",
		},
		{
			name: "underscores become spaces",
			in:   "frontal_cortex",
			want: "frontal cortex",
		},
		{
			name: "case folding",
			in:   "Frontal_Cortex",
			want: "frontal cortex",
		},
		{
			name: "whitespace runs collapse",
			in:   "  frontal   cortex ",
			want: "frontal cortex",
		},
		{
			name: "fullwidth compatibility forms fold",
			in:   "ＡＢＣ",
			want: "abc",
		},
		{
			name: "hyphenated terms survive intact",
			in:   "n-back",
			want: "n-back",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only",
			in:   "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeTerm(tt.in); got != tt.want {
				t.Errorf("normalizeTerm(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNewTermIndex tests index construction from raw rows
func TestNewTermIndex(t *testing.T) {
	idx := NewTermIndex([]TermAnnotation{
		{StudyID: 1, Term: "amygdala"},
		{StudyID: 2, Term: "Amygdala"},
		{StudyID: 2, Term: "cortex"},
		{StudyID: 3, Term: "   "}, // skipped: normalizes to empty
	})

	if got := idx.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := idx.Rows(); got != 3 {
		t.Errorf("Rows() = %d, want 3", got)
	}
	if got := idx.StudiesFor("amygdala").GetCardinality(); got != 2 {
		t.Errorf("StudiesFor(amygdala) cardinality = %d, want 2", got)
	}
}

// TestNewTermIndexEmpty tests that an empty index is legal and queryable
func TestNewTermIndexEmpty(t *testing.T) {
	idx := NewTermIndex(nil)

	if got := idx.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	if matches := idx.MatchSubstring("anything", 0); len(matches) != 0 {
		t.Errorf("MatchSubstring() = %v, want empty", matches)
	}
	if !idx.StudiesFor("anything").IsEmpty() {
		t.Error("StudiesFor() on empty index should be empty")
	}
	if !idx.StudiesMatchingSubstring("anything").IsEmpty() {
		t.Error("StudiesMatchingSubstring() on empty index should be empty")
	}
}

// TestMatchSubstring tests substring matching semantics and ordering
func TestMatchSubstring(t *testing.T) {
	idx := NewTermIndex([]TermAnnotation{
		{StudyID: 1, Term: "amygdala"},
		{StudyID: 2, Term: "basolateral amygdala"},
		{StudyID: 3, Term: "cortex"},
		{StudyID: 4, Term: "frontal cortex"},
		{StudyID: 5, Term: "prefrontal cortex"},
	})

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{
			name:  "substring match across vocabulary",
			query: "amygd",
			limit: 10,
			want:  []string{"amygdala", "basolateral amygdala"},
		},
		{
			name:  "case insensitive",
			query: "CORTEX",
			limit: 10,
			want:  []string{"cortex", "frontal cortex", "prefrontal cortex"},
		},
		{
			name:  "underscore phrase query",
			query: "frontal_cortex",
			limit: 10,
			want:  []string{"frontal cortex", "prefrontal cortex"},
		},
		{
			name:  "limit caps matches",
			query: "cortex",
			limit: 2,
			want:  []string{"cortex", "frontal cortex"},
		},
		{
			name:  "empty query matches everything",
			query: "",
			limit: 10,
			want:  []string{"amygdala", "basolateral amygdala", "cortex", "frontal cortex", "prefrontal cortex"},
		},
		{
			name:  "no match yields empty non-nil slice",
			query: "hippocampus",
			limit: 10,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.MatchSubstring(tt.query, tt.limit)
			if got == nil {
				t.Fatal("MatchSubstring() returned nil, want non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MatchSubstring(%q, %d) = %v, want %v", tt.query, tt.limit, got, tt.want)
			}
		})
	}
}

// TestMatchSubstringDefaultLimit tests the default display cap
func TestMatchSubstringDefaultLimit(t *testing.T) {
	terms := []string{
		"cortex a", "cortex b", "cortex c", "cortex d", "cortex e",
		"cortex f", "cortex g", "cortex h", "cortex i", "cortex j",
		"cortex k", "cortex l",
	}
	rows := make([]TermAnnotation, len(terms))
	for i, term := range terms {
		rows[i] = TermAnnotation{StudyID: uint32(i + 1), Term: term}
	}
	idx := NewTermIndex(rows)

	got := idx.MatchSubstring("cortex", 0)
	if len(got) != DefaultMatchLimit {
		t.Errorf("MatchSubstring with limit 0 returned %d terms, want %d", len(got), DefaultMatchLimit)
	}

	// The study-set union must not be capped
	if got := idx.StudiesMatchingSubstring("cortex").GetCardinality(); got != uint64(len(terms)) {
		t.Errorf("StudiesMatchingSubstring cardinality = %d, want %d", got, len(terms))
	}
}

// TestStudiesFor tests exact lookup after normalization
func TestStudiesFor(t *testing.T) {
	idx := NewTermIndex([]TermAnnotation{
		{StudyID: 1, Term: "frontal cortex"},
		{StudyID: 2, Term: "frontal cortex"},
		{StudyID: 3, Term: "cortex"},
	})

	if got := idx.StudiesFor("Frontal_Cortex").ToArray(); !reflect.DeepEqual(got, []uint32{1, 2}) {
		t.Errorf("StudiesFor(Frontal_Cortex) = %v, want [1 2]", got)
	}

	// Exact lookup: no substring expansion
	if got := idx.StudiesFor("frontal").GetCardinality(); got != 0 {
		t.Errorf("StudiesFor(frontal) cardinality = %d, want 0", got)
	}
}

// TestStudiesMatchingSubstring tests the uncapped set union used by
// counting queries
func TestStudiesMatchingSubstring(t *testing.T) {
	idx := NewTermIndex([]TermAnnotation{
		{StudyID: 1, Term: "amygdala"},
		{StudyID: 2, Term: "amygdala"},
		{StudyID: 2, Term: "basolateral amygdala"},
		{StudyID: 3, Term: "cortex"},
	})

	got := idx.StudiesMatchingSubstring("amygdala").ToArray()
	want := []uint32{1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StudiesMatchingSubstring(amygdala) = %v, want %v", got, want)
	}

	// Returned bitmaps are copies: mutating one must not poison the index
	bm := idx.StudiesMatchingSubstring("cortex")
	bm.Add(99)
	if idx.StudiesFor("cortex").Contains(99) {
		t.Error("mutating a returned bitmap leaked into the index")
	}
}
