package record

import (
	"fmt"
	"io"
	"strings"
)

// FastaSource streams Sequence records from a (possibly gzipped)
// multi-FASTA file, carrying no quality.
type FastaSource struct {
	path string
	rc   io.ReadCloser
	lr   *lineReader

	pendingName string
	pendingSeq  strings.Builder
	havePending bool
}

// NewFastaSource opens path lazily; call Reset before the first Parse.
func NewFastaSource(path string) *FastaSource {
	return &FastaSource{path: path}
}

// Reset (re)opens the underlying file from the beginning.
func (s *FastaSource) Reset() error {
	if s.rc != nil {
		s.rc.Close()
	}
	rc, err := openMaybeGzip(s.path)
	if err != nil {
		return err
	}
	s.rc = rc
	s.lr = newLineReader(rc)
	s.pendingName = ""
	s.pendingSeq.Reset()
	s.havePending = false
	return nil
}

// Parse reads roughly budget bytes of FASTA text and returns the
// whole records found within it. A record split across chunk
// boundaries is buffered in pendingSeq until its header (or EOF)
// closes it.
func (s *FastaSource) Parse(budget int) ([]Sequence, bool, error) {
	lines, more, err := s.lr.readLines(budget)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read FASTA %s: %w", s.path, err)
	}

	var out []Sequence
	for _, line := range lines {
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if s.havePending {
				out = append(out, Sequence{Name: s.pendingName, Data: s.pendingSeq.String()})
			}
			s.pendingName = strings.TrimSpace(line[1:])
			s.pendingSeq.Reset()
			s.havePending = true
			continue
		}
		if s.havePending {
			s.pendingSeq.WriteString(strings.ToUpper(strings.TrimSpace(line)))
		}
	}

	if !more {
		if s.havePending {
			out = append(out, Sequence{Name: s.pendingName, Data: s.pendingSeq.String()})
			s.havePending = false
		}
		if s.rc != nil {
			s.rc.Close()
		}
	}

	return out, more, nil
}
