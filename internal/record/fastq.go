package record

import (
	"fmt"
	"io"
	"strings"
)

// FastqSource streams Sequence records (with quality) from a
// (possibly gzipped) FASTQ file. FASTQ records are always exactly
// four lines, so unlike FASTA no cross-chunk buffering beyond a
// trailing partial record is needed.
type FastqSource struct {
	path string
	rc   io.ReadCloser
	lr   *lineReader

	carry []string // 0-3 lines held over from a record split across chunks
}

// NewFastqSource opens path lazily; call Reset before the first Parse.
func NewFastqSource(path string) *FastqSource {
	return &FastqSource{path: path}
}

// Reset (re)opens the underlying file from the beginning.
func (s *FastqSource) Reset() error {
	if s.rc != nil {
		s.rc.Close()
	}
	rc, err := openMaybeGzip(s.path)
	if err != nil {
		return err
	}
	s.rc = rc
	s.lr = newLineReader(rc)
	s.carry = nil
	return nil
}

// Parse reads roughly budget bytes of FASTQ text and returns the
// whole 4-line records found within it.
func (s *FastqSource) Parse(budget int) ([]Sequence, bool, error) {
	lines, more, err := s.lr.readLines(budget)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read FASTQ %s: %w", s.path, err)
	}

	all := append(s.carry, lines...)
	s.carry = nil

	var out []Sequence
	i := 0
	for ; i+4 <= len(all); i += 4 {
		if len(all[i]) == 0 || all[i][0] != '@' {
			return nil, false, fmt.Errorf("malformed FASTQ %s: expected '@' header, got %q", s.path, all[i])
		}
		name := strings.TrimSpace(all[i][1:])
		seq := strings.ToUpper(strings.TrimSpace(all[i+1]))
		qual := strings.TrimSpace(all[i+3])
		if len(qual) != len(seq) {
			return nil, false, fmt.Errorf("malformed FASTQ %s: quality length mismatch for %s", s.path, name)
		}
		out = append(out, Sequence{Name: name, Data: seq, Quality: qual})
	}

	if !more {
		if i != len(all) {
			return nil, false, fmt.Errorf("malformed FASTQ %s: trailing partial record", s.path)
		}
		if s.rc != nil {
			s.rc.Close()
		}
	} else {
		s.carry = append(s.carry, all[i:]...)
	}

	return out, more, nil
}
