// Package stitch implements component G of spec §4: assembling a
// target's polished sequence from its windows' consensuses, either by
// plain concatenation (default mode) or by a second POA alignment
// between each adjacent pair's overlapping tails (overlap mode).
//
// Grounded on polisher.cpp's window-overlap stitching pass: the same
// first_match/last_match MSA scan, the same summary-weighted column
// tie-break, and the same InitialWindow -> BodyWindow* -> FinalWindow
// per-target state machine driving when an assembled sequence is
// emitted.
package stitch

import (
	"strings"

	"github.com/jjtimmons/conseq/internal/poa"
	"github.com/jjtimmons/conseq/internal/window"
)

// Result is one target's assembled output, mirroring the tags spec §4.H
// attaches to every emitted sequence.
type Result struct {
	TargetID      int
	Data          string
	Length        int
	Coverage      int
	PolishedRatio float64
	Dropped       bool

	// GapColumns preserves polisher.cpp's gap_count diagnostic: the
	// number of overlap-mode junction columns dropped because the gap
	// vote was the column's maximum.
	GapColumns int
}

// state is the per-target InitialWindow -> BodyWindow* -> FinalWindow
// machine spec §4.G names explicitly.
type state struct {
	targetID       int
	coverage       int
	polished       int
	total          int
	pieces         []string
	gapColumns     int
	pendingConsensus string         // previous window's full consensus, not yet stitched
	pendingSummary   window.Summary // summary aligned to pendingConsensus
}

// Assemble walks a window.Set's windows (already grouped and ordered by
// target then rank, as BuildWindows produces them) and returns one
// Result per target. overlapPercentage == 0 selects default
// (concatenation) mode; otherwise the overlap-mode stitcher runs,
// using engine for the junction realignments (OV kind, match=3,
// mismatch=-5, gap=-6 per spec §4.G.2).
func Assemble(windows []*window.Window, coverages []int, overlapPercentage float64, dropUnpolished bool, engine *poa.Engine) []Result {
	var results []Result

	var st *state
	flush := func() {
		if st == nil {
			return
		}
		data := strings.Join(st.pieces, "")
		ratio := 0.0
		if st.total > 0 {
			ratio = float64(st.polished) / float64(st.total)
		}
		results = append(results, Result{
			TargetID:      st.targetID,
			Data:          data,
			Length:        len(data),
			Coverage:      st.coverage,
			PolishedRatio: ratio,
			Dropped:       dropUnpolished && st.polished == 0,
			GapColumns:    st.gapColumns,
		})
	}

	for i, w := range windows {
		if st == nil || st.targetID != w.TargetID {
			flush()
			cov := 0
			if w.TargetID < len(coverages) {
				cov = coverages[w.TargetID]
			}
			st = &state{targetID: w.TargetID, coverage: cov}
		}
		st.total++
		if w.Polished {
			st.polished++
		}

		isLast := i == len(windows)-1 || windows[i+1].TargetID != w.TargetID || windows[i+1].Rank == 0

		if overlapPercentage == 0 {
			st.pieces = append(st.pieces, w.Consensus)
			if isLast {
				flush()
				st = nil
			}
			continue
		}

		appendOverlapWindow(st, w, isLast, overlapPercentage, engine)
		if isLast {
			flush()
			st = nil
		}
	}
	flush()

	return results
}

// appendOverlapWindow folds one window's consensus into the target's
// assembled pieces under overlap-mode stitching (spec §4.G.1-7).
//
// Every window's full consensus is eventually split across at most two
// junctions: once as the "right" half of the junction with its
// predecessor (contributing its head-merge plus its own middle span),
// and once as the "left" half of the junction with its successor
// (contributing its tail-merge). polisher.cpp re-reads each window's
// full consensus at the junction it participates in as the left side
// rather than carrying forward an already-truncated remainder, so this
// keeps the previous window's full consensus (not just its unconsumed
// tail) pending between calls.
func appendOverlapWindow(st *state, w *window.Window, isLast bool, overlapPercentage float64, engine *poa.Engine) {
	totalOverlap := 2 * overlapPercentage
	consensus := w.Consensus

	if st.pendingConsensus == "" && len(st.pieces) == 0 {
		// InitialWindow: everything except its own trailing overlap
		// fraction, which the next junction re-reads in full from
		// pendingConsensus.
		trail := int(float64(len(consensus)) * totalOverlap)
		st.pieces = append(st.pieces, consensus[:len(consensus)-trail])
		st.pendingConsensus = consensus
		st.pendingSummary = w.Summary
		if isLast {
			st.pieces = append(st.pieces, consensus[len(consensus)-trail:])
			st.pendingConsensus = ""
		}
		return
	}

	left := st.pendingConsensus
	right := consensus

	lenL := int(float64(len(left)) * totalOverlap)
	startL := len(left) - lenL
	if startL < 0 {
		startL = 0
	}

	// lenR is this window's own normal trailing-overlap length; it is
	// what the *next* junction will use as len_l when this window
	// becomes the left side, and (on the last window) what the final
	// trailing tail below is sized from. stitchLenR is what actually
	// gets fed to the realignment: the whole window on the last window,
	// since there is no further junction to hold a remainder for.
	lenR := int(float64(len(right)) * totalOverlap)
	stitchLenR := lenR
	if isLast {
		stitchLenR = len(right)
	}
	if stitchLenR > len(right) {
		stitchLenR = len(right)
	}

	overlap, gapCols := stitchPair(left[startL:], right[:stitchLenR], startL, engine, st.pendingSummary, w.Summary)
	st.gapColumns += gapCols
	st.pieces = append(st.pieces, overlap)

	if isLast {
		// Final trailing tail (spec §4.G.7): the last window's own
		// trailing total_overlap fraction, appended unconditionally.
		// stitchLenR already fed the whole window to the realignment,
		// so this content can appear twice in the output.
		st.pieces = append(st.pieces, right[len(right)-lenR:])
		st.pendingConsensus = ""
		return
	}

	st.pieces = append(st.pieces, right[stitchLenR:len(right)-lenR])
	st.pendingConsensus = right
	st.pendingSummary = w.Summary
}

// stitchPair implements spec §4.G steps 2-6: align right's head against
// a graph seeded with left's tail, extract a two-row MSA, and merge the
// junction by summary-weighted column voting. startL is leftTail's
// offset within the left window's full consensus (and therefore within
// summaryL), used to translate MSA columns back into summary indices.
func stitchPair(leftTail, rightHead string, startL int, engine *poa.Engine, summaryL, summaryR window.Summary) (string, int) {
	if leftTail == "" || rightHead == "" {
		return leftTail + rightHead, 0
	}

	graph := poa.NewGraph()
	weights := make([]int, len(leftTail))
	for i := range weights {
		weights[i] = 1
	}
	graph.AddAlignment(poa.Alignment{}, leftTail, weights)

	alignment, err := engine.Align(rightHead, graph)
	if err != nil {
		return leftTail + rightHead, 0
	}

	m0 := make([]byte, 0, alignment.Len())
	m1 := make([]byte, 0, alignment.Len())
	maxSeq := -1
	for i := 0; i < alignment.Len(); i++ {
		node, seq := alignment.At(i)
		if node >= 0 {
			m0 = append(m0, leftTail[node])
		} else {
			m0 = append(m0, '-')
		}
		if seq >= 0 {
			m1 = append(m1, rightHead[seq])
			if seq > maxSeq {
				maxSeq = seq
			}
		} else {
			m1 = append(m1, '-')
		}
	}
	// OV alignment leaves trailing query gaps free, so the optimal
	// endpoint may stop short of rightHead's end; append whatever
	// wasn't consumed as a trailing insertion column so it still
	// reaches the last_match scan below.
	for seq := maxSeq + 1; seq < len(rightHead); seq++ {
		m0 = append(m0, '-')
		m1 = append(m1, rightHead[seq])
	}

	firstMatch, lastMatch := -1, -1
	for j := 0; j < len(m0); j++ {
		if m0[j] == m1[j] {
			firstMatch = j
			break
		}
	}
	for j := len(m0) - 1; j >= 0; j-- {
		if m0[j] == m1[j] {
			lastMatch = j
			break
		}
	}

	if firstMatch == -1 || lastMatch == -1 {
		// Fallback of spec §4.G.6: raw tail and raw head, unmerged.
		return leftTail + rightHead, 0
	}

	var sb strings.Builder
	for j := 0; j < firstMatch; j++ {
		if m0[j] != '-' {
			sb.WriteByte(m0[j])
		}
	}

	lPos := startL + columnPosition(m0, 0, firstMatch)
	rPos := columnPosition(m1, 0, firstMatch)
	gapColumns := 0
	for j := firstMatch; j <= lastMatch; j++ {
		switch {
		case m0[j] == m1[j]:
			sb.WriteByte(m0[j])
			if m0[j] != '-' {
				lPos++
				rPos++
			}
		case m0[j] == '-':
			sb.WriteByte(m1[j])
			rPos++
		case m1[j] == '-':
			sb.WriteByte(m0[j])
			lPos++
		default:
			gaps := summaryL.Gap[lPos] + summaryR.Gap[rPos]
			l := summaryL.Row(window.Coder[m0[j]], lPos)
			r := summaryR.Row(window.Coder[m1[j]], rPos)
			switch {
			case gaps >= l && gaps >= r:
				gapColumns++
			case l > r:
				sb.WriteByte(m0[j])
			default:
				sb.WriteByte(m1[j])
			}
			lPos++
			rPos++
		}
	}

	var tail []byte
	for j := len(m0) - 1; j > lastMatch; j-- {
		if m1[j] != '-' {
			tail = append(tail, m1[j])
		}
	}
	for i := len(tail) - 1; i >= 0; i-- {
		sb.WriteByte(tail[i])
	}

	return sb.String(), gapColumns
}

// columnPosition counts the non-gap characters in row[lo:hi], used to
// translate an MSA column index back into the corresponding input
// sequence's (and therefore its summary's) position.
func columnPosition(row []byte, lo, hi int) int {
	n := 0
	for j := lo; j < hi; j++ {
		if row[j] != '-' {
			n++
		}
	}
	return n
}
