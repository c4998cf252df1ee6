package atlas

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Compile-time check to ensure TSVStore implements AnnotationStore
var _ AnnotationStore = (*TSVStore)(nil)

// TSVStore is an AnnotationStore backed by tab-separated annotation dump
// files, the interchange format the raw corpora ship in. Files ending in
// ".gz" are transparently gunzipped.
//
// Term file rows:       study_id <TAB> term
// Coordinate file rows: study_id <TAB> x <TAB> y <TAB> z
//
// Blank lines and lines starting with '#' are skipped.
type TSVStore struct {
	// TermPath is the path of the term annotation file. Empty means no
	// term annotations.
	TermPath string

	// CoordinatePath is the path of the coordinate annotation file. Empty
	// means no coordinate annotations.
	CoordinatePath string
}

// NewTSVStore creates a TSVStore over the given dump files. Either path may
// be empty, in which case that relation is treated as empty.
func NewTSVStore(termPath, coordinatePath string) *TSVStore {
	return &TSVStore{
		TermPath:       termPath,
		CoordinatePath: coordinatePath,
	}
}

// TermAnnotations reads and parses the term annotation file.
func (s *TSVStore) TermAnnotations(ctx context.Context) ([]TermAnnotation, error) {
	if s.TermPath == "" {
		return nil, nil
	}

	var rows []TermAnnotation
	err := s.scanFile(ctx, s.TermPath, func(fields []string, line int) error {
		if len(fields) != 2 {
			return fmt.Errorf("line %d: want 2 fields, got %d", line, len(fields))
		}
		id, err := parseStudyID(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, TermAnnotation{StudyID: id, Term: fields[1]})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("term annotations %s: %w", s.TermPath, err)
	}
	return rows, nil
}

// CoordinateAnnotations reads and parses the coordinate annotation file.
func (s *TSVStore) CoordinateAnnotations(ctx context.Context) ([]CoordinateAnnotation, error) {
	if s.CoordinatePath == "" {
		return nil, nil
	}

	var rows []CoordinateAnnotation
	err := s.scanFile(ctx, s.CoordinatePath, func(fields []string, line int) error {
		if len(fields) != 4 {
			return fmt.Errorf("line %d: want 4 fields, got %d", line, len(fields))
		}
		id, err := parseStudyID(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		var xyz [3]int32
		for i, f := range fields[1:] {
			v, err := strconv.ParseInt(f, 10, 32)
			if err != nil {
				return fmt.Errorf("line %d: coordinate component %q is not a 32-bit integer", line, f)
			}
			xyz[i] = int32(v)
		}
		rows = append(rows, CoordinateAnnotation{
			StudyID:    id,
			Coordinate: Coordinate{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("coordinate annotations %s: %w", s.CoordinatePath, err)
	}
	return rows, nil
}

// scanFile streams a dump file line by line, decompressing ".gz" files on
// the fly, and hands each tab-split row to parse.
func (s *TSVStore) scanFile(ctx context.Context, path string, parse func(fields []string, line int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("gunzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		text := scanner.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := parse(strings.Split(text, "\t"), line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parseStudyID parses a base-10 study identifier.
func parseStudyID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("study id %q is not a 32-bit unsigned integer", s)
	}
	return uint32(id), nil
}
