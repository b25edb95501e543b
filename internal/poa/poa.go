// Package poa implements the partial-order-alignment engine contract
// of spec §6: create an engine for a scoring mode, preallocate it for
// an expected window size, align a sequence to a graph, and fold the
// alignment into the graph to extract a heaviest-bundle consensus (and,
// for window-overlap mode, a per-column base/gap count summary).
//
// The POA library itself is named as an external collaborator in
// spec §1 ("the core only consumes its contract"); no Go POA package
// exists anywhere in the reference corpus or its usual ecosystem, so
// this package is an original, from-scratch implementation of that
// contract rather than a binding to a third-party one (see DESIGN.md).
// Its DAG shape is grounded on the weighted-node/directed-arc graph in
// jteutenberg-downpore's overlap package, adapted from a contig-overlap
// graph to a per-base alignment DAG; its DP/traceback is grounded on
// the scoring-matrix + traceback-matrix style of
// cancelei-aria-lang/.../needleman_wunsch.go, generalized from a
// string-vs-string alignment to a string-vs-DAG one.
package poa

// Kind selects the alignment engine's scoring mode.
type Kind int

const (
	// NW is global alignment: used to add backbone and layers to a window's graph.
	NW Kind = iota

	// OV is semi-global ("overlap") alignment: free leading/trailing
	// query gaps, used by the stitcher to align one window's tail
	// against another's head.
	OV
)

// Engine is a single-threaded, reusable alignment engine. It is NOT
// safe for concurrent use -- exactly one worker binds to one Engine
// for the run's lifetime, per spec §5.
type Engine struct {
	kind             Kind
	match            int
	mismatch         int
	gap              int
	preallocCapacity int
}

// NewEngine constructs an engine with the given scoring mode and
// match/mismatch/gap scores (spec §6's POA scoring triple).
func NewEngine(kind Kind, match, mismatch, gap int8) *Engine {
	return &Engine{kind: kind, match: int(match), mismatch: int(mismatch), gap: int(gap)}
}

// Prealloc records size as the expected sequence/graph length. It is a
// sizing hint only: nothing is reserved, maxOutDegree is ignored, and
// Align allocates its DP buffers on every call regardless.
func (e *Engine) Prealloc(size, maxOutDegree int) {
	e.preallocCapacity = size
}

// Alignment is the opaque result of aligning a sequence to a graph: a
// column-by-column list of (graph node id, sequence index) pairs, -1
// meaning "no counterpart in this column".
type Alignment struct {
	pairs []alignPair
}

type alignPair struct {
	node int // graph node id, or -1 for a pure insertion
	seq  int // index into the aligned sequence, or -1 for a pure deletion
}

// Empty reports whether the alignment carries no pairs -- used by the
// stitcher to seed a fresh graph with its first sequence via an
// identity "alignment".
func (a Alignment) Empty() bool { return len(a.pairs) == 0 }

// Len returns the number of alignment columns.
func (a Alignment) Len() int { return len(a.pairs) }

// At returns the (graph node id, sequence index) pair at column i, -1
// meaning "no counterpart in this column" -- the column-by-column view
// the stitcher reads directly as a two-row MSA when the graph it
// aligned against holds exactly one previously-folded linear sequence
// (node id then coincides with that sequence's position).
func (a Alignment) At(i int) (node, seq int) {
	return a.pairs[i].node, a.pairs[i].seq
}
