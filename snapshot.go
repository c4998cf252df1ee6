// Package atlas snapshot: the immutable unit of engine state.
//
// A Snapshot pairs a fully built TermIndex and CoordinateIndex. Queries only
// ever see a complete snapshot: a refresh builds a new one off to the side
// and swaps a single pointer, so in-flight readers keep the snapshot they
// started with. Nothing in a snapshot is mutated after it is published.
//
// Snapshots can also be serialized. The binary format lets a service
// warm-start from a previously built snapshot without re-reading the
// annotation store:
//
//  1. Magic number (4 bytes) - "ATLS" identifier for validation
//  2. Version (4 bytes) - format version
//  3. Studies bitmap size (4 bytes) + bitmap bytes
//  4. Term row count (4 bytes), coordinate row count (4 bytes)
//  5. Number of terms (4 bytes); for each term in lexicographic order:
//     - term length (4 bytes) + term bytes
//     - bitmap size (4 bytes) + bitmap bytes
//  6. Number of coordinates (4 bytes); for each coordinate in (x, y, z)
//     order: x, y, z (4 bytes each, signed) + bitmap size + bitmap bytes
//
// Entries are written in sorted order so identical snapshots serialize to
// identical bytes.
package atlas

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Snapshot is an immutable pair of indices plus the distinct-study universe
// they cover. All methods are safe for concurrent use.
type Snapshot struct {
	terms       *TermIndex
	coordinates *CoordinateIndex
	// distinct study IDs across both relations
	studies *roaring.Bitmap
}

// newSnapshot builds a snapshot from raw annotation rows.
func newSnapshot(termRows []TermAnnotation, coordRows []CoordinateAnnotation) *Snapshot {
	studies := roaring.New()
	for _, row := range termRows {
		studies.Add(row.StudyID)
	}
	for _, row := range coordRows {
		studies.Add(row.StudyID)
	}

	return &Snapshot{
		terms:       NewTermIndex(termRows),
		coordinates: NewCoordinateIndex(coordRows),
		studies:     studies,
	}
}

// emptySnapshot returns a snapshot with no annotations. It is what a fresh
// engine serves before its first refresh: every query yields empty results,
// never an error.
func emptySnapshot() *Snapshot {
	return newSnapshot(nil, nil)
}

// Terms returns the term index of this snapshot.
func (s *Snapshot) Terms() *TermIndex {
	return s.terms
}

// Coordinates returns the coordinate index of this snapshot.
func (s *Snapshot) Coordinates() *CoordinateIndex {
	return s.coordinates
}

// StudyCount returns the number of distinct studies across both relations.
func (s *Snapshot) StudyCount() uint64 {
	return s.studies.GetCardinality()
}

// WriteTo serializes the snapshot to w in the format described in the
// package comment above.
//
// Returns:
//   - int64: number of bytes written
//   - error: returns error if any write fails
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	var bytesWritten int64

	writeU32 := func(v uint32) error {
		err := binary.Write(w, binary.LittleEndian, v)
		if err == nil {
			bytesWritten += 4
		}
		return err
	}
	writeBitmap := func(bm *roaring.Bitmap, what string) error {
		data, err := bm.ToBytes()
		if err != nil {
			return fmt.Errorf("failed to serialize %s bitmap: %w", what, err)
		}
		if err := writeU32(uint32(len(data))); err != nil {
			return fmt.Errorf("failed to write %s bitmap size: %w", what, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write %s bitmap data: %w", what, err)
		}
		bytesWritten += int64(len(data))
		return nil
	}

	// 1. Magic number "ATLS"
	magic := [4]byte{'A', 'T', 'L', 'S'}
	if _, err := w.Write(magic[:]); err != nil {
		return bytesWritten, fmt.Errorf("failed to write magic number: %w", err)
	}
	bytesWritten += 4

	// 2. Version
	if err := writeU32(1); err != nil {
		return bytesWritten, fmt.Errorf("failed to write version: %w", err)
	}

	// 3. Studies bitmap
	if err := writeBitmap(s.studies, "studies"); err != nil {
		return bytesWritten, err
	}

	// 4. Row counters
	if err := writeU32(uint32(s.terms.rows)); err != nil {
		return bytesWritten, fmt.Errorf("failed to write term row count: %w", err)
	}
	if err := writeU32(uint32(s.coordinates.rows)); err != nil {
		return bytesWritten, fmt.Errorf("failed to write coordinate row count: %w", err)
	}

	// 5. Term postings, lexicographic
	if err := writeU32(uint32(len(s.terms.vocab))); err != nil {
		return bytesWritten, fmt.Errorf("failed to write term count: %w", err)
	}
	for _, term := range s.terms.vocab {
		if err := writeU32(uint32(len(term))); err != nil {
			return bytesWritten, fmt.Errorf("failed to write term length: %w", err)
		}
		if _, err := io.WriteString(w, term); err != nil {
			return bytesWritten, fmt.Errorf("failed to write term %q: %w", term, err)
		}
		bytesWritten += int64(len(term))
		if err := writeBitmap(s.terms.postings[term], term); err != nil {
			return bytesWritten, err
		}
	}

	// 6. Coordinate postings, (x, y, z) order
	coords := make([]Coordinate, 0, len(s.coordinates.postings))
	for c := range s.coordinates.postings {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})

	if err := writeU32(uint32(len(coords))); err != nil {
		return bytesWritten, fmt.Errorf("failed to write coordinate count: %w", err)
	}
	for _, c := range coords {
		for _, v := range [3]int32{c.X, c.Y, c.Z} {
			if err := binary.Write(w, binary.LittleEndian, v); err != nil {
				return bytesWritten, fmt.Errorf("failed to write coordinate %s: %w", c, err)
			}
			bytesWritten += 4
		}
		if err := writeBitmap(s.coordinates.postings[c], c.String()); err != nil {
			return bytesWritten, err
		}
	}

	return bytesWritten, nil
}

// ReadFrom deserializes a snapshot from r, replacing the receiver's
// contents. It must only be called on an unpublished snapshot (one no query
// path can observe yet); the engine's RestoreSnapshot handles that.
//
// Returns:
//   - int64: number of bytes read
//   - error: returns error if the stream is truncated or malformed
func (s *Snapshot) ReadFrom(r io.Reader) (int64, error) {
	var bytesRead int64

	readU32 := func(what string) (uint32, error) {
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", what, err)
		}
		bytesRead += 4
		return v, nil
	}
	readBitmap := func(what string) (*roaring.Bitmap, error) {
		size, err := readU32(what + " bitmap size")
		if err != nil {
			return nil, err
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("failed to read %s bitmap data: %w", what, err)
		}
		bytesRead += int64(size)
		bm := roaring.New()
		if err := bm.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("failed to deserialize %s bitmap: %w", what, err)
		}
		return bm, nil
	}

	// 1. Magic number
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return bytesRead, fmt.Errorf("failed to read magic number: %w", err)
	}
	bytesRead += 4
	if string(magic) != "ATLS" {
		return bytesRead, fmt.Errorf("invalid magic number: expected 'ATLS', got %q", string(magic))
	}

	// 2. Version
	version, err := readU32("version")
	if err != nil {
		return bytesRead, err
	}
	if version != 1 {
		return bytesRead, fmt.Errorf("unsupported snapshot version: %d", version)
	}

	// 3. Studies bitmap
	studies, err := readBitmap("studies")
	if err != nil {
		return bytesRead, err
	}

	// 4. Row counters
	termRows, err := readU32("term row count")
	if err != nil {
		return bytesRead, err
	}
	coordRows, err := readU32("coordinate row count")
	if err != nil {
		return bytesRead, err
	}

	// 5. Term postings
	termCount, err := readU32("term count")
	if err != nil {
		return bytesRead, err
	}
	terms := &TermIndex{
		postings: make(map[string]*roaring.Bitmap, termCount),
		vocab:    make([]string, 0, termCount),
		rows:     int(termRows),
	}
	for i := uint32(0); i < termCount; i++ {
		length, err := readU32("term length")
		if err != nil {
			return bytesRead, err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return bytesRead, fmt.Errorf("failed to read term %d: %w", i, err)
		}
		bytesRead += int64(length)
		term := string(buf)

		bm, err := readBitmap(term)
		if err != nil {
			return bytesRead, err
		}
		terms.postings[term] = bm
		terms.vocab = append(terms.vocab, term)
	}
	sort.Strings(terms.vocab)

	// 6. Coordinate postings
	coordCount, err := readU32("coordinate count")
	if err != nil {
		return bytesRead, err
	}
	coordinates := &CoordinateIndex{
		postings: make(map[Coordinate]*roaring.Bitmap, coordCount),
		rows:     int(coordRows),
	}
	for i := uint32(0); i < coordCount; i++ {
		var xyz [3]int32
		for j := range xyz {
			if err := binary.Read(r, binary.LittleEndian, &xyz[j]); err != nil {
				return bytesRead, fmt.Errorf("failed to read coordinate %d: %w", i, err)
			}
			bytesRead += 4
		}
		c := Coordinate{X: xyz[0], Y: xyz[1], Z: xyz[2]}

		bm, err := readBitmap(c.String())
		if err != nil {
			return bytesRead, err
		}
		coordinates.postings[c] = bm
	}

	s.terms = terms
	s.coordinates = coordinates
	s.studies = studies

	return bytesRead, nil
}
