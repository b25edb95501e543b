package window

import "github.com/jjtimmons/conseq/internal/poa"

// uniformWeights returns an all-ones weight slice, used whenever a
// sequence carries no quality track.
func uniformWeights(n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func phredWeights(quality string) []int {
	w := make([]int, len(quality))
	for i := 0; i < len(quality); i++ {
		w[i] = int(quality[i]) - 33
	}
	return w
}

// GenerateConsensus implements spec §4.F: seed a POA graph with the
// backbone, fold in every layer via the engine, extract the heaviest
// consensus, optionally trim unsupported terminal segments, and -- in
// overlap mode -- compute the MSA summary. Returns true iff the window
// had at least one layer and was actually polished.
func (w *Window) GenerateConsensus(engine *poa.Engine, trim bool) bool {
	if len(w.Layers) == 0 {
		return false
	}

	graph := poa.NewGraph()

	backboneWeights := uniformWeights(len(w.Backbone))
	if w.BackboneHasQuality {
		backboneWeights = phredWeights(w.BackboneQuality)
	}
	graph.AddAlignment(poa.Alignment{}, w.Backbone, backboneWeights)

	for _, layer := range w.Layers {
		alignment, err := engine.Align(layer.Data, graph)
		if err != nil {
			continue
		}
		weights := uniformWeights(len(layer.Data))
		if layer.Quality != "" {
			weights = phredWeights(layer.Quality)
		}
		graph.AddAlignment(alignment, layer.Data, weights)
	}

	consensus, _ := graph.HeaviestConsensus()
	summary := toWindowSummary(graph.GenerateMSA())

	if trim {
		consensus, summary = trimUnsupported(consensus, summary)
	}

	w.Consensus = consensus
	if w.Overlap {
		w.Summary = summary
	}
	w.Polished = true
	return true
}

func toWindowSummary(s poa.Summary) Summary {
	return Summary{A: s.A, C: s.C, G: s.G, T: s.T, Gap: s.Gap, Coverage: s.Voters}
}

// trimUnsupported strips leading/trailing consensus columns that at
// most one sequence voted a base at (Coverage <= 1), whether that
// voter is the backbone or a single layer (spec §4.F: "trim terminal
// segments of the consensus not supported by the backbone path").
func trimUnsupported(consensus string, summary Summary) (string, Summary) {
	lo, hi := 0, len(consensus)
	for lo < hi && summary.Coverage[lo] <= 1 {
		lo++
	}
	for hi > lo && summary.Coverage[hi-1] <= 1 {
		hi--
	}
	return consensus[lo:hi], Summary{
		A:        summary.A[lo:hi],
		C:        summary.C[lo:hi],
		G:        summary.G[lo:hi],
		T:        summary.T[lo:hi],
		Gap:      summary.Gap[lo:hi],
		Coverage: summary.Coverage[lo:hi],
	}
}
