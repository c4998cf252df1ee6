/*
Package atlas indexes scientific studies by their annotations and answers
set-theoretic queries over them.

Studies carry two kinds of annotations: free-text terms ("amygdala",
"working memory") and exact 3D activation coordinates in a fixed spatial
reference frame. Atlas builds an inverted index over each kind and answers
membership searches, study counts, intersections, and dissociations —
studies carrying one annotation but not another.

# Quick Start

Build an engine over an annotation store and query it:

	package main

	import (
	    "context"
	    "fmt"
	    "log"

	    "github.com/cortexlab/atlas"
	)

	func main() {
	    store := atlas.NewMemoryStore(
	        []atlas.TermAnnotation{
	            {StudyID: 1, Term: "amygdala"},
	            {StudyID: 2, Term: "amygdala"},
	            {StudyID: 2, Term: "cortex"},
	        },
	        []atlas.CoordinateAnnotation{
	            {StudyID: 1, Coordinate: atlas.Coordinate{X: 0, Y: 0, Z: 0}},
	        },
	    )

	    engine := atlas.NewEngine(store)
	    if err := engine.Refresh(context.Background()); err != nil {
	        log.Fatal(err)
	    }

	    fmt.Println(engine.TermSearch("amygd").Matches)      // [amygdala]
	    fmt.Println(engine.TermCount("amygdala").StudyCount) // 2
	}

# Queries

Six operations make up the external contract. Term inputs are fuzzy: a query
matches every vocabulary term containing it as a substring, case-insensitive,
with underscores standing in for spaces ("frontal_cortex" means the phrase
"frontal cortex"). Coordinate inputs are exact triples, parsed from "x_y_z"
literals.

	engine.TermSearch("amygd")                // does any term match, and which
	engine.TermCount("emotion")               // distinct studies for a term
	engine.Intersection("amygdala", "cortex") // studies carrying both
	engine.DissociateTerms("fear", "reward")  // studies with A but not B
	engine.DissociateLocations(c1, c2)        // both directions, exact coords
	atlas.ParseCoordinate("3_-5_10")          // boundary literal -> Coordinate

Absence of data is success: unknown terms, unknown coordinates, and empty
intersections yield empty results, never errors.

# Snapshots

The engine serves every query from an immutable Snapshot pairing the two
indices. Refresh loads both relations from the store concurrently, builds a
new snapshot off to the side, and atomically swaps it in; in-flight queries
keep the snapshot they started with, and a failed refresh leaves the previous
snapshot servable. Snapshots serialize to a compact binary format for warm
starts:

	var buf bytes.Buffer
	engine.WriteSnapshot(&buf)

	restored := atlas.NewEngine(nil)
	restored.RestoreSnapshot(&buf)

# Annotation Stores

The engine reads raw rows through the AnnotationStore interface. Two
implementations ship with the package: MemoryStore over in-memory slices and
TSVStore over tab-separated dump files (plain or gzip). Stores may optionally
implement TermSampler and CoordinateSampler to let Stats include raw-row
samples; a store that fails mid-sample degrades that sample to empty rather
than failing the call.

# Thread Safety

All engine and snapshot methods are safe for concurrent use. Queries take no
locks: they are a pure reader fan-out over the current snapshot.
*/
package atlas
