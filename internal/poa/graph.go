package poa

// node is one base in the partial-order graph. Predecessors/successors
// are stored as node ids; because nodes are only ever appended (never
// inserted into the middle of the slice), id order is already a valid
// topological order -- a node's predecessors always have smaller ids.
type node struct {
	base byte
	// weight is the total layer weight (quality-derived or uniform)
	// that has matched this base at this graph position.
	weight int
	in     []edge
	out    []edge
}

type edge struct {
	to     int
	weight int
}

// membership records, for one sequence folded into the graph, which
// graph nodes it touched and what it contributed there: seqPos >= 0
// for a match (the base at that index matched the node), seqPos == -1
// for a graph node the sequence's path passed through as a deletion
// (present in the path but not consumed).
type membership struct {
	weights []int       // this sequence's per-base vote weights, indexed by seqPos
	at      map[int]int // node id -> seqPos, or -1 for a deletion
}

// Graph is a single window's (or stitch junction's) partial-order
// alignment graph: a DAG of weighted bases built incrementally by
// folding in one aligned sequence at a time.
type Graph struct {
	nodes   []node
	sources []int // nodes with no predecessor
	members []membership
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Clear resets the graph to empty so the engine's caller can reuse the
// same Graph value across windows without reallocating.
func (g *Graph) Clear() {
	g.nodes = g.nodes[:0]
	g.sources = g.sources[:0]
	g.members = g.members[:0]
}

// Empty reports whether the graph has no nodes yet.
func (g *Graph) Empty() bool { return len(g.nodes) == 0 }

func (g *Graph) addNode(base byte) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, node{base: base})
	return id
}

// addEdge accumulates weight onto an existing from->to edge rather
// than duplicating it, so HeaviestConsensus's per-edge comparison
// reflects the total vote a transition has received.
func (g *Graph) addEdge(from, to, weight int) {
	for i := range g.nodes[from].out {
		if g.nodes[from].out[i].to == to {
			g.nodes[from].out[i].weight += weight
			for j := range g.nodes[to].in {
				if g.nodes[to].in[j].to == from {
					g.nodes[to].in[j].weight += weight
					break
				}
			}
			return
		}
	}
	g.nodes[from].out = append(g.nodes[from].out, edge{to: to, weight: weight})
	g.nodes[to].in = append(g.nodes[to].in, edge{to: from, weight: weight})
}

// siblingWithBase looks for an existing node reachable directly from
// prev (or, when there is no predecessor yet, prev < 0, among the
// graph's sources) that
// already carries the given base -- the alternate-node lookup used to
// fold a mismatch into a parallel branch instead of corrupting an
// existing node's identity.
func (g *Graph) siblingWithBase(prev int, base byte) (int, bool) {
	if prev < 0 {
		for _, s := range g.sources {
			if g.nodes[s].base == base {
				return s, true
			}
		}
		return -1, false
	}
	for _, e := range g.nodes[prev].out {
		if g.nodes[e.to].base == base {
			return e.to, true
		}
	}
	return -1, false
}

// AddAlignment folds seq into the graph along the given alignment,
// creating new nodes for insertions and accumulating weight on matched
// nodes. weights holds one per-base vote weight, indexed like seq
// (typically derived from Phred quality, or all-ones when the layer
// carries no quality track).
func (g *Graph) AddAlignment(a Alignment, seq string, weights []int) {
	mem := membership{weights: append([]int(nil), weights...), at: make(map[int]int, len(a.pairs))}

	if a.Empty() {
		// First sequence ever folded into this graph: every base becomes
		// its own node, chained linearly.
		prev := -1
		for i := 0; i < len(seq); i++ {
			id := g.addNode(seq[i])
			g.nodes[id].weight += weights[i]
			mem.at[id] = i
			if prev == -1 {
				g.sources = append(g.sources, id)
			} else {
				g.addEdge(prev, id, weights[i])
			}
			prev = id
		}
		g.members = append(g.members, mem)
		return
	}

	prev := -1
	for _, p := range a.pairs {
		switch {
		case p.node >= 0 && p.seq >= 0:
			target := p.node
			if seq[p.seq] != g.nodes[p.node].base {
				// mismatch: vote on a parallel alternate-base node
				// sharing the same predecessor, instead of the aligned
				// node itself.
				if alt, ok := g.siblingWithBase(prev, seq[p.seq]); ok {
					target = alt
				} else {
					target = g.addNode(seq[p.seq])
					if prev < 0 {
						g.sources = append(g.sources, target)
					}
				}
			}
			g.nodes[target].weight += weights[p.seq]
			mem.at[target] = p.seq
			if prev >= 0 {
				g.addEdge(prev, target, weights[p.seq])
			} else if !containsInt(g.sources, target) {
				g.sources = append(g.sources, target)
			}
			prev = target

		case p.node < 0 && p.seq >= 0:
			// insertion: a brand-new node not previously in the graph
			id := g.addNode(seq[p.seq])
			g.nodes[id].weight += weights[p.seq]
			mem.at[id] = p.seq
			if prev >= 0 {
				g.addEdge(prev, id, weights[p.seq])
			} else {
				g.sources = append(g.sources, id)
			}
			prev = id

		case p.node >= 0 && p.seq < 0:
			// deletion: the sequence's path skips an existing node
			mem.at[p.node] = -1
			prev = p.node
		}
	}

	g.members = append(g.members, mem)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// HeaviestConsensus walks the graph from its heaviest source, always
// following the outgoing edge with the greatest cumulative weight, and
// returns the resulting base string plus the node id path (used by
// GenerateMSA to build column votes).
func (g *Graph) HeaviestConsensus() (string, []int) {
	if len(g.nodes) == 0 {
		return "", nil
	}

	best := g.sources[0]
	for _, s := range g.sources[1:] {
		if g.nodes[s].weight > g.nodes[best].weight {
			best = s
		}
	}

	var sb []byte
	var path []int
	cur := best
	for {
		sb = append(sb, g.nodes[cur].base)
		path = append(path, cur)

		if len(g.nodes[cur].out) == 0 {
			break
		}
		next := g.nodes[cur].out[0]
		for _, e := range g.nodes[cur].out[1:] {
			if e.weight > next.weight {
				next = e
			}
		}
		cur = next.to
	}

	return string(sb), path
}

// Summary is the per-column base/gap vote count used by window-overlap
// mode (spec §6's "summary"): one row per column of the consensus,
// weight totals for A, C, G, T and a gap count, from every sequence
// whose own alignment path reached that column.
type Summary struct {
	A, C, G, T, Gap []int
	// Voters counts, per column, how many sequences (backbone included)
	// cast a non-gap vote there -- distinct from the base totals, which
	// merge agreeing votes into one weight.
	Voters []int
}

// GenerateMSA projects every folded sequence's membership onto the
// consensus path's columns, producing per-column base/gap vote totals.
func (g *Graph) GenerateMSA() Summary {
	_, path := g.HeaviestConsensus()
	col := make(map[int]int, len(path))
	for i, id := range path {
		col[id] = i
	}

	s := Summary{
		A:      make([]int, len(path)),
		C:      make([]int, len(path)),
		G:      make([]int, len(path)),
		T:      make([]int, len(path)),
		Gap:    make([]int, len(path)),
		Voters: make([]int, len(path)),
	}

	for _, mem := range g.members {
		for nodeID, seqPos := range mem.at {
			c, onPath := col[nodeID]
			if !onPath {
				// An alternate-base branch off the consensus path (a
				// mismatch sibling) still occupies the column of
				// whichever path node it branched from.
				pc, ok := g.columnOfPredecessor(nodeID, col)
				if !ok {
					continue
				}
				c = pc
			}
			if seqPos < 0 {
				s.Gap[c]++
				continue
			}
			w := mem.weights[seqPos]
			s.Voters[c]++
			switch g.nodes[nodeID].base {
			case 'A':
				s.A[c] += w
			case 'C':
				s.C[c] += w
			case 'G':
				s.G[c] += w
			case 'T':
				s.T[c] += w
			}
		}
	}

	return s
}

// columnOfPredecessor assigns an off-consensus-path node the column of
// whichever path node feeds into it, if any -- the position a mismatch
// branch's vote belongs at.
func (g *Graph) columnOfPredecessor(nodeID int, col map[int]int) (int, bool) {
	for _, e := range g.nodes[nodeID].in {
		if c, ok := col[e.to]; ok {
			return c + 1, true
		}
	}
	return 0, false
}
