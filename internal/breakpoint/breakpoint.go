// Package breakpoint implements the breaking-point finder of spec
// §4.C: for one overlap, realign its query and target regions and
// record a (target_position, query_position) pair at every
// window-length boundary of the target the overlap crosses.
//
// Grounded on polisher.cpp's find_breaking_points, which performs one
// pairwise alignment per overlap and binary-searches the resulting
// path for each window boundary; the DP/traceback itself follows the
// scoring-matrix + traceback-matrix style of
// cancelei-aria-lang/.../needleman_wunsch.go, here run directly
// between two flat strings (target region, query region) rather than
// against a poa.Graph -- there is no DAG yet at this stage, only the
// two raw sequences named in the overlap.
package breakpoint

import "github.com/jjtimmons/conseq/internal/overlapset"

// Find realigns the target region [ov.TBegin, ov.TEnd) against the
// query region [ov.QBegin, ov.QEnd) (reverse-complemented first when
// ov.Strand is set) and returns the sorted breaking points required by
// spec §4.C: (t_begin, 0) first, (t_end, q_end-q_begin) last, and a
// duplicated (M, q) pair at every multiple M of windowLength strictly
// inside (t_begin, t_end).
func Find(targetRegion, queryRegion string, tBegin, qSpan, windowLength int, match, mismatch, gap int) []overlapset.Point {
	tAt, qAt := align(targetRegion, queryRegion, match, mismatch, gap)

	points := []overlapset.Point{{TPos: tBegin, QPos: 0}}

	// tAt/qAt are indexed by local target offset 0..len(targetRegion);
	// since a global alignment consumes the full target region exactly
	// once, every local offset appears, so no search is needed beyond
	// a direct index.
	first := ((tBegin / windowLength) + 1) * windowLength
	for m := first; m < tBegin+len(targetRegion); m += windowLength {
		local := m - tBegin
		if local <= 0 || local >= len(tAt) {
			continue
		}
		q := qAt[local]
		points = append(points, overlapset.Point{TPos: m, QPos: q})
		points = append(points, overlapset.Point{TPos: m, QPos: q})
	}

	points = append(points, overlapset.Point{TPos: tBegin + len(targetRegion), QPos: qSpan})
	return points
}

// align runs a global (Needleman-Wunsch) alignment of t against q and
// returns, for every local target offset 0..len(t), the corresponding
// local query offset reached in the best-scoring path -- the
// "alignment path" spec §4.C binary-searches, made directly indexable
// by target offset since the target side is always fully consumed.
func align(t, q string, match, mismatch, gap int) (tAt, qAt []int) {
	rows, cols := len(t)+1, len(q)+1
	score := make([][]int, rows)
	for r := range score {
		score[r] = make([]int, cols)
	}
	for c := 1; c < cols; c++ {
		score[0][c] = score[0][c-1] + gap
	}
	for r := 1; r < rows; r++ {
		score[r][0] = score[r-1][0] + gap
		for c := 1; c < cols; c++ {
			ms := mismatch
			if t[r-1] == q[c-1] {
				ms = match
			}
			best := score[r-1][c-1] + ms
			if v := score[r-1][c] + gap; v > best {
				best = v
			}
			if v := score[r][c-1] + gap; v > best {
				best = v
			}
			score[r][c] = best
		}
	}

	// Traceback from (rows-1, cols-1), recording the query offset
	// reached at each target offset as we walk back.
	tAt = make([]int, rows)
	qAt = make([]int, rows)
	r, c := rows-1, cols-1
	for r > 0 || c > 0 {
		tAt[r] = r
		qAt[r] = c

		switch {
		case r > 0 && c > 0 && score[r][c] == score[r-1][c-1]+mismatchOrMatch(t[r-1], q[c-1], match, mismatch):
			r, c = r-1, c-1
		case r > 0 && score[r][c] == score[r-1][c]+gap:
			r--
		default:
			c--
		}
	}
	tAt[0], qAt[0] = 0, 0

	return tAt, qAt
}

func mismatchOrMatch(a, b byte, match, mismatch int) int {
	if a == b {
		return match
	}
	return mismatch
}
