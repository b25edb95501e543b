// Package seqstore owns every target and query Sequence for the
// lifetime of a single polish run, and lazily materializes reverse
// complements so they are computed at most once and only for
// sequences an overlap actually references.
package seqstore

import "strings"

// complement maps a nucleotide byte to its Watson-Crick complement.
// Anything outside ACGT/acgt (e.g. N) complements to itself, matching
// the permissive behavior of the reference parser.
var complement = [256]byte{}

func init() {
	for i := 0; i < 256; i++ {
		complement[i] = byte(i)
	}
	complement['A'], complement['T'] = 'T', 'A'
	complement['C'], complement['G'] = 'G', 'C'
	complement['a'], complement['t'] = 't', 'a'
	complement['c'], complement['g'] = 'g', 'c'
}

// Sequence is an immutable forward nucleotide (+ optional quality)
// record, with lazily materialized reverse strings. Once materialized,
// the reverse strings never change, so concurrent readers after
// materialization need no further synchronization.
type Sequence struct {
	id   int
	name string

	data    string
	quality string // "" if the source had no quality line

	reverseComplement string
	reverseQuality    string
	reverseReady      bool
}

// NewSequence builds a Sequence with the given internal id. quality may be empty.
func NewSequence(id int, name, data, quality string) *Sequence {
	if quality != "" && len(quality) != len(data) {
		panic("seqstore: quality length must equal data length")
	}
	return &Sequence{id: id, name: name, data: data, quality: quality}
}

// ID is the dense internal index into the store.
func (s *Sequence) ID() int { return s.id }

// Name is the external record name (FASTA/FASTQ header, sans '>'/'@').
func (s *Sequence) Name() string { return s.name }

// Data is the forward nucleotide string.
func (s *Sequence) Data() string { return s.data }

// Quality reports whether a forward quality string was provided (same as HasQuality).
func (s *Sequence) Quality() bool { return s.quality != "" }

// QualityString is the forward Phred+33 quality string, or "" if absent.
func (s *Sequence) QualityString() string { return s.quality }

// Len is the length of the forward data string.
func (s *Sequence) Len() int { return len(s.data) }

// HasQuality reports whether a quality string was provided.
func (s *Sequence) HasQuality() bool { return s.quality != "" }

// Materialize computes the reverse complement and reverse quality
// strings, if not already computed. It is idempotent and safe to call
// redundantly from a single owning goroutine; concurrent callers must
// only materialize disjoint sequences (see pool phase 1 in spec §5).
func (s *Sequence) Materialize() {
	if s.reverseReady {
		return
	}

	rc := make([]byte, len(s.data))
	for i := 0; i < len(s.data); i++ {
		rc[len(s.data)-1-i] = complement[s.data[i]]
	}
	s.reverseComplement = string(rc)

	if s.quality != "" {
		rq := make([]byte, len(s.quality))
		for i := 0; i < len(s.quality); i++ {
			rq[len(s.quality)-1-i] = s.quality[i]
		}
		s.reverseQuality = string(rq)
	}

	s.reverseReady = true
}

// ReverseComplement returns the reverse-complement string. Panics if
// Materialize has not been called -- callers resolve materialization
// need from the overlap set before windows ever borrow from a sequence.
func (s *Sequence) ReverseComplement() string {
	if !s.reverseReady {
		panic("seqstore: ReverseComplement read before Materialize")
	}
	return s.reverseComplement
}

// ReverseQuality returns the reverse quality string ("" if the
// sequence has no quality at all). Panics if not yet materialized.
func (s *Sequence) ReverseQuality() string {
	if !s.reverseReady {
		panic("seqstore: ReverseQuality read before Materialize")
	}
	return s.reverseQuality
}

// Strand returns the forward or reverse-complement data depending on
// strand (true means reverse-complement), and the matching quality
// string (possibly "").
func (s *Sequence) Strand(reverse bool) (data, quality string) {
	if !reverse {
		return s.data, s.quality
	}
	return s.ReverseComplement(), s.ReverseQuality()
}

// cleanNucleotides uppercases and strips anything that isn't a
// nucleotide letter -- grounded on the unwantedChars regex the teacher
// repo uses when reading FASTA, reimplemented without regexp since the
// record package already validates per-line.
func cleanNucleotides(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		switch c {
		case 'A', 'C', 'G', 'T', 'N':
			b.WriteByte(c)
		case 'a', 'c', 'g', 't', 'n':
			b.WriteByte(c - 32)
		}
	}
	return b.String()
}
