package record

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SamSource streams Overlap records from a (possibly gzipped) SAM
// file. Unlike PAF/MHAP, SAM carries only the target-side range (POS
// + CIGAR); query-side begin/end are recovered by walking the CIGAR
// string, and the error rate is the NM:i: tag divided by that query
// span (0 when the tag is absent).
type SamSource struct {
	path string
	rc   io.ReadCloser
	lr   *lineReader
}

func NewSamSource(path string) *SamSource {
	return &SamSource{path: path}
}

func (s *SamSource) Reset() error {
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

const (
	samFlagReverse  = 0x10
	samFlagUnmapped = 0x4
)

func (s *SamSource) Parse(budget int) ([]Overlap, bool, error) {
	lines, more, err := s.lr.readLines(budget)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read SAM %s: %w", s.path, err)
	}

	var out []Overlap
	for _, line := range lines {
		if line == "" || line[0] == '@' {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 11 {
			return nil, false, fmt.Errorf("malformed SAM line in %s: want >= 11 fields, got %d", s.path, len(fields))
		}

		flag, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false, fmt.Errorf("malformed SAM FLAG in %s: %w", s.path, err)
		}
		if flag&samFlagUnmapped != 0 || fields[5] == "*" {
			continue
		}

		pos, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, false, fmt.Errorf("malformed SAM POS in %s: %w", s.path, err)
		}

		refLen, queryBegin, queryEnd, matched, err := walkCIGAR(fields[5])
		if err != nil {
			return nil, false, fmt.Errorf("malformed SAM CIGAR in %s: %w", s.path, err)
		}

		alnLen := queryEnd - queryBegin
		nm := parseNMTag(fields[11:])
		errRate := 0.0
		if alnLen > 0 && nm >= 0 {
			errRate = float64(nm) / float64(alnLen)
		}
		_ = matched

		out = append(out, Overlap{
			QueryName:  fields[0],
			TargetName: fields[2],
			QBegin:     queryBegin,
			QEnd:       queryEnd,
			TBegin:     pos - 1,
			TEnd:       pos - 1 + refLen,
			Strand:     flag&samFlagReverse != 0,
			Error:      errRate,
			Length:     maxInt(refLen, alnLen),
		})
	}

	if !more && s.rc != nil {
		s.rc.Close()
	}

	return out, more, nil
}

// walkCIGAR returns the reference-consumed length, the [begin,end)
// query range spanned by the alignment (soft clips excluded), and the
// number of aligned (M/=/X) bases.
func walkCIGAR(cigar string) (refLen, queryBegin, queryEnd, matched int, err error) {
	queryPos := 0
	started := false

	n := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			continue
		}

		switch c {
		case 'S', 'I':
			if c == 'I' && !started {
				queryBegin = queryPos
			}
			queryPos += n
			if c == 'I' {
				started = true
			}
		case 'M', '=', 'X':
			if !started {
				queryBegin = queryPos
				started = true
			}
			queryPos += n
			refLen += n
			matched += n
			queryEnd = queryPos
		case 'D', 'N':
			refLen += n
		case 'H', 'P':
			// consumes neither query nor reference
		default:
			return 0, 0, 0, 0, fmt.Errorf("unknown CIGAR operation %q", c)
		}
		n = 0
	}

	return refLen, queryBegin, queryEnd, matched, nil
}

// parseNMTag looks for an "NM:i:<n>" optional field, returning -1 if absent.
func parseNMTag(optionalFields []string) int {
	for _, f := range optionalFields {
		if strings.HasPrefix(f, "NM:i:") {
			n, err := strconv.Atoi(strings.TrimPrefix(f, "NM:i:"))
			if err == nil {
				return n
			}
		}
	}
	return -1
}
