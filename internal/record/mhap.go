package record

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MhapSource streams Overlap records from a (possibly gzipped) MHAP
// file. MHAP columns (1-indexed, space separated):
//
//	1 A-id 2 B-id 3 error 4 shared-minmers
//	5 A-strand(0/1) 6 A-start 7 A-end 8 A-length
//	9 B-strand(0/1) 10 B-start 11 B-end 12 B-length
//
// A is the query, B is the target; both strand flags are relative to
// each read's own forward orientation, so the overlap's combined
// strand is their XOR.
type MhapSource struct {
	path string
	rc   io.ReadCloser
	lr   *lineReader
}

func NewMhapSource(path string) *MhapSource {
	return &MhapSource{path: path}
}

func (s *MhapSource) Reset() error {
	if s.rc != nil {
		s.rc.Close()
	}
	rc, err := openMaybeGzip(s.path)
	if err != nil {
		return err
	}
	s.rc = rc
	s.lr = newLineReader(rc)
	return nil
}

func (s *MhapSource) Parse(budget int) ([]Overlap, bool, error) {
	lines, more, err := s.lr.readLines(budget)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read MHAP %s: %w", s.path, err)
	}

	var out []Overlap
	for _, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 12 {
			return nil, false, fmt.Errorf("malformed MHAP line in %s: want >= 12 fields, got %d", s.path, len(fields))
		}

		errRate, e1 := strconv.ParseFloat(fields[2], 64)
		aStrand, e2 := strconv.Atoi(fields[4])
		aStart, e3 := strconv.Atoi(fields[5])
		aEnd, e4 := strconv.Atoi(fields[6])
		bStrand, e5 := strconv.Atoi(fields[8])
		bStart, e6 := strconv.Atoi(fields[9])
		bEnd, e7 := strconv.Atoi(fields[10])
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil || e7 != nil {
			return nil, false, fmt.Errorf("malformed MHAP numeric field in %s", s.path)
		}

		out = append(out, Overlap{
			QueryName:  fields[0],
			TargetName: fields[1],
			QBegin:     aStart,
			QEnd:       aEnd,
			TBegin:     bStart,
			TEnd:       bEnd,
			Strand:     (aStrand != 0) != (bStrand != 0),
			Error:      errRate,
			Length:     maxInt(aEnd-aStart, bEnd-bStart),
		})
	}

	if !more && s.rc != nil {
		s.rc.Close()
	}

	return out, more, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
