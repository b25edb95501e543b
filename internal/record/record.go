// Package record implements the "record source" collaborators of
// spec §6: streaming readers over FASTA/FASTQ (targets, queries) and
// MHAP/PAF/SAM (overlaps), each optionally gzip-compressed, each
// normalized to the core's 0-based half-open coordinate + boolean
// strand convention regardless of the source format's native
// convention.
package record

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sequence is one parsed FASTA/FASTQ record, pre-normalization.
type Sequence struct {
	Name    string
	Data    string
	Quality string // "" if the format carries no quality (FASTA)
}

// Overlap is one parsed MHAP/PAF/SAM record, already rewritten to
// 0-based half-open ranges and a boolean strand, but still carrying
// external query/target names rather than internal ids -- that
// rewrite is the overlap normalizer's job (internal/overlapset).
type Overlap struct {
	QueryName  string
	TargetName string
	QBegin     int
	QEnd       int
	TBegin     int
	TEnd       int
	Strand     bool // true: query aligns reverse-complemented
	Error      float64
	Length     int
}

// SequenceSource streams Sequence records in bounded-size chunks.
// Parse returns the records read within approximately budget bytes of
// input, and whether more records remain.
type SequenceSource interface {
	Reset() error
	Parse(budget int) (records []Sequence, more bool, err error)
}

// OverlapSource streams Overlap records the same way.
type OverlapSource interface {
	Reset() error
	Parse(budget int) (records []Overlap, more bool, err error)
}

// OpenSequenceSource dispatches path to a FastaSource or FastqSource by
// extension (".gz" stripped first), the way createPolisher does in
// polisher.cpp. Extension validity itself is config's job; this is
// only reached after config.Validate has already accepted the path.
func OpenSequenceSource(path string) (SequenceSource, error) {
	switch stem := strings.TrimSuffix(strings.ToLower(path), ".gz"); {
	case strings.HasSuffix(stem, ".fasta"), strings.HasSuffix(stem, ".fna"), strings.HasSuffix(stem, ".fa"):
		return NewFastaSource(path), nil
	case strings.HasSuffix(stem, ".fastq"), strings.HasSuffix(stem, ".fq"):
		return NewFastqSource(path), nil
	default:
		return nil, fmt.Errorf("unsupported sequence file extension: %s", path)
	}
}

// OpenOverlapSource dispatches path to a PafSource, MhapSource or
// SamSource by extension, the same way.
func OpenOverlapSource(path string) (OverlapSource, error) {
	switch stem := strings.TrimSuffix(strings.ToLower(path), ".gz"); {
	case strings.HasSuffix(stem, ".paf"):
		return NewPafSource(path), nil
	case strings.HasSuffix(stem, ".mhap"):
		return NewMhapSource(path), nil
	case strings.HasSuffix(stem, ".sam"):
		return NewSamSource(path), nil
	default:
		return nil, fmt.Errorf("unsupported overlap file extension: %s", path)
	}
}

// FastaRecord is one sequence to emit via WriteFasta.
type FastaRecord struct {
	Name string
	Data string
}

// WriteFasta writes records to path, one unwrapped ">name\ndata\n" entry
// per record, matching racon's own unwrapped single-line polished output.
func WriteFasta(path string, records []FastaRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		if _, err := fmt.Fprintf(w, ">%s\n%s\n", r.Name, r.Data); err != nil {
			return err
		}
	}
	return w.Flush()
}

// openMaybeGzip opens path, transparently wrapping it in a gzip
// reader when the name ends in ".gz". Grounded on the plain
// compress/gzip usage in the corpus (e.g. davidebolo1993-kfilt); no
// third-party gzip wrapper appears anywhere in the reference pack, so
// this ambient concern stays on the standard library (see DESIGN.md).
func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
	}
	return &gzipReadCloser{gz: gz, f: f}, nil
}

// gzipReadCloser closes both the gzip reader and the underlying file.
type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fErr := g.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

// lineReader reads budget-bounded batches of whole lines from a
// bufio.Reader, returning io.EOF semantics via the "more" boolean.
// Every format-specific source below uses it so chunk budgeting is
// uniform across FASTA/FASTQ/MHAP/PAF/SAM.
type lineReader struct {
	r    *bufio.Reader
	done bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// readLines reads whole lines until budget bytes have been consumed
// or EOF, trimming the trailing newline from each line.
func (lr *lineReader) readLines(budget int) (lines []string, more bool, err error) {
	if lr.done {
		return nil, false, nil
	}

	consumed := 0
	for consumed < budget {
		line, err := lr.r.ReadString('\n')
		if len(line) > 0 {
			consumed += len(line)
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if err == io.EOF {
				lr.done = true
				return lines, false, nil
			}
			return lines, false, err
		}
	}
	return lines, true, nil
}
