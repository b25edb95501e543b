// Package overlapset implements the overlap normalizer of spec §4.B:
// it rewrites a record.Overlap's external query/target names into the
// sequence store's dense internal ids, drops overlaps that fail the
// run's structural or error-rate invariants, and (in contig-polish
// mode) deduplicates down to the single longest overlap per query.
//
// Grounded on polisher.cpp's find_breaking_points prelude, which walks
// the raw overlaps once, converts each to internal ids via the same
// id_to_name_/name_to_id_ tables seqstore now owns, and -- in contig
// mode -- keeps only the longest overlap seen so far for a given
// query id before any breaking-point search runs.
package overlapset

import (
	"fmt"

	"github.com/jjtimmons/conseq/internal/record"
	"github.com/jjtimmons/conseq/internal/seqstore"
)

// ErrEmptyInput is the input-integrity fatal of spec §7 bucket 2: every
// overlap failed validation or none were read at all.
var ErrEmptyInput = fmt.Errorf("empty overlap set after normalization")

// Overlap is a normalized overlap: query_id/target_id are dense
// internal store ids, coordinates are 0-based half-open.
type Overlap struct {
	QueryID, TargetID int
	QBegin, QEnd      int
	TBegin, TEnd      int
	Strand            bool // true: query aligns reverse-complemented
	Error             float64
	Length            int

	// BreakingPoints is populated by internal/breakpoint: sorted
	// (target_position, query_position) pairs, query_position relative
	// to QBegin. Nil until the breaking-point finder has run.
	BreakingPoints []Point
}

// Point is one (target_position, query_position) breaking point.
type Point struct {
	TPos, QPos int
}

func (o Overlap) length() int {
	tl := o.TEnd - o.TBegin
	ql := o.QEnd - o.QBegin
	if tl > ql {
		return tl
	}
	return ql
}

// Strands accumulates, per query id, whether any surviving overlap
// used that query forward and/or reverse-complemented -- spec §4.B's
// has_forward/has_reverse flags, consumed by seqstore.MaterializeReverse.
type Strands struct {
	Forward []bool
	Reverse []bool
}

func newStrands(n int) Strands {
	return Strands{Forward: make([]bool, n), Reverse: make([]bool, n)}
}

// Normalize reads every record from source, rewrites names to internal
// ids via store, drops invalid/over-threshold overlaps, and -- when
// contigMode is true -- deduplicates to one (the longest) overlap per
// query id. Returns the surviving overlaps in arrival order (mode F)
// or one-per-query order (mode C), plus the strand-usage flags.
func Normalize(source record.OverlapSource, store *seqstore.Store, errorThreshold float64, contigMode bool) ([]Overlap, Strands, error) {
	if err := source.Reset(); err != nil {
		return nil, Strands{}, err
	}

	strands := newStrands(store.Len())

	var out []Overlap
	var run []Overlap
	runQID := -1

	flushRun := func() {
		if len(run) == 0 {
			return
		}
		if contigMode {
			out = append(out, longest(run))
		} else {
			out = append(out, run...)
		}
		run = run[:0]
	}

	for {
		batch, more, err := source.Parse(1 << 20)
		if err != nil {
			return nil, Strands{}, err
		}

		for _, rec := range batch {
			ov, ok := normalizeOne(rec, store, errorThreshold)
			if !ok {
				continue
			}

			if contigMode {
				if ov.QueryID != runQID {
					flushRun()
					runQID = ov.QueryID
				}
				run = append(run, ov)
			} else {
				out = append(out, ov)
			}
		}

		if !more {
			break
		}
	}
	flushRun()

	for _, ov := range out {
		if ov.Strand {
			strands.Reverse[ov.QueryID] = true
		} else {
			strands.Forward[ov.QueryID] = true
		}
	}

	if len(out) == 0 {
		return nil, Strands{}, ErrEmptyInput
	}
	return out, strands, nil
}

func normalizeOne(rec record.Overlap, store *seqstore.Store, errorThreshold float64) (Overlap, bool) {
	qID, ok := store.QueryID(rec.QueryName)
	if !ok {
		return Overlap{}, false
	}
	tID, ok := store.TargetID(rec.TargetName)
	if !ok {
		return Overlap{}, false
	}
	if qID == tID {
		return Overlap{}, false
	}
	if rec.Error > errorThreshold {
		return Overlap{}, false
	}

	query := store.Get(qID)
	target := store.Get(tID)

	if rec.QBegin < 0 || rec.QEnd <= rec.QBegin || rec.QEnd > query.Len() {
		return Overlap{}, false
	}
	if rec.TBegin < 0 || rec.TEnd <= rec.TBegin || rec.TEnd > target.Len() {
		return Overlap{}, false
	}

	ov := Overlap{
		QueryID:  qID,
		TargetID: tID,
		QBegin:   rec.QBegin,
		QEnd:     rec.QEnd,
		TBegin:   rec.TBegin,
		TEnd:     rec.TEnd,
		Strand:   rec.Strand,
		Error:    rec.Error,
	}
	ov.Length = ov.length()
	return ov, true
}

// QueryRegion returns the overlap's query fragment -- reverse-
// complemented first when Strand is set -- and its quality span if the
// query carries one. Shared by internal/breakpoint (realignment) and
// internal/window (layer extraction) so both see identical bytes for
// the same overlap.
func (o Overlap) QueryRegion(store *seqstore.Store) (data, quality string, hasQuality bool) {
	query := store.Get(o.QueryID)
	strandData, strandQuality := query.Strand(o.Strand)

	qBegin, qEnd := o.QBegin, o.QEnd
	if o.Strand {
		n := query.Len()
		qBegin, qEnd = n-o.QEnd, n-o.QBegin
	}

	data = strandData[qBegin:qEnd]
	if query.HasQuality() {
		quality = strandQuality[qBegin:qEnd]
		hasQuality = true
	}
	return data, quality, hasQuality
}

// longest returns the overlap with the greatest span in a run of
// overlaps sharing one query id, discarding the rest (spec §4.B:
// "for each pair, discard the shorter").
func longest(run []Overlap) Overlap {
	best := run[0]
	for _, ov := range run[1:] {
		if ov.length() > best.length() {
			best = ov
		}
	}
	return best
}
