package poa

const negInf = -1 << 30

type moveKind int8

const (
	moveNone moveKind = iota
	moveDiag          // node matched/mismatched against seq[c-1]
	moveUp            // node consumed, seq not (deletion)
	moveLeft          // seq consumed, node not (insertion)
)

type cellMove struct {
	kind    moveKind
	predRow int
}

// Align computes the best-scoring alignment of seq against graph under
// the engine's scoring mode, using a DP over the graph's topological
// node order (valid because nodes are append-only, so predecessors
// always carry a smaller id than their successors).
func (e *Engine) Align(seq string, graph *Graph) (Alignment, error) {
	if graph.Empty() {
		return Alignment{}, nil
	}

	numNodes := len(graph.nodes)
	rows := numNodes + 1
	cols := len(seq) + 1

	score := make([][]int, rows)
	moves := make([][]cellMove, rows)
	for r := range score {
		score[r] = make([]int, cols)
		moves[r] = make([]cellMove, cols)
	}

	for c := 1; c < cols; c++ {
		if e.kind == OV {
			score[0][c] = 0
		} else {
			score[0][c] = score[0][c-1] + e.gap
		}
		moves[0][c] = cellMove{kind: moveLeft}
	}

	predRows := func(nodeID int) []int {
		in := graph.nodes[nodeID].in
		if len(in) == 0 {
			return []int{0}
		}
		rows := make([]int, len(in))
		for i, ed := range in {
			rows[i] = ed.to + 1
		}
		return rows
	}

	for r := 1; r < rows; r++ {
		nodeID := r - 1
		preds := predRows(nodeID)

		bestZero, bestZeroRow := negInf, preds[0]
		for _, pr := range preds {
			if v := score[pr][0] + e.gap; v > bestZero {
				bestZero, bestZeroRow = v, pr
			}
		}
		score[r][0] = bestZero
		moves[r][0] = cellMove{kind: moveUp, predRow: bestZeroRow}

		base := graph.nodes[nodeID].base
		for c := 1; c < cols; c++ {
			matchScore := e.mismatch
			if base == seq[c-1] {
				matchScore = e.match
			}

			best := negInf
			var bestMove cellMove
			for _, pr := range preds {
				if diag := score[pr][c-1] + matchScore; diag > best {
					best, bestMove = diag, cellMove{kind: moveDiag, predRow: pr}
				}
				if up := score[pr][c] + e.gap; up > best {
					best, bestMove = up, cellMove{kind: moveUp, predRow: pr}
				}
			}
			if left := score[r][c-1] + e.gap; left > best {
				best, bestMove = left, cellMove{kind: moveLeft}
			}
			score[r][c] = best
			moves[r][c] = bestMove
		}
	}

	endR, endC := rows-1, cols-1
	if e.kind == OV {
		best := score[rows-1][0]
		endC = 0
		for c := 1; c < cols; c++ {
			if score[rows-1][c] > best {
				best, endC = score[rows-1][c], c
			}
		}
	}

	var pairs []alignPair
	r, c := endR, endC
	for r > 0 || c > 0 {
		m := moves[r][c]
		switch m.kind {
		case moveDiag:
			pairs = append(pairs, alignPair{node: r - 1, seq: c - 1})
			r, c = m.predRow, c-1
		case moveUp:
			pairs = append(pairs, alignPair{node: r - 1, seq: -1})
			r = m.predRow
		case moveLeft:
			pairs = append(pairs, alignPair{node: -1, seq: c - 1})
			c--
		default:
			r, c = 0, 0
		}
	}
	for i, j := 0, len(pairs)-1; i < j; i, j = i+1, j-1 {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	}

	return Alignment{pairs: pairs}, nil
}
