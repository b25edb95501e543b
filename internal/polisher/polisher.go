// Package polisher orchestrates the full pipeline of spec §2's data
// flow (A,B -> C -> D,E -> F -> G) against a populated config.Config:
// load sequences and overlaps, normalize overlaps, materialize the
// reverse complements surviving overlaps need, find breaking points,
// build windows, assign layers, run POA consensus per window, and
// stitch each target's windows into an emitted Output.
//
// Grounded on original_source/src/polisher.cpp's Polisher::initialize/
// ::polish, which drives this same sequence of phases over a fixed
// thread pool, with the caller thread observing futures in submission
// order between phases.
package polisher

import (
	"fmt"
	"log"

	"github.com/jjtimmons/conseq/config"
	"github.com/jjtimmons/conseq/internal/breakpoint"
	"github.com/jjtimmons/conseq/internal/overlapset"
	"github.com/jjtimmons/conseq/internal/poa"
	"github.com/jjtimmons/conseq/internal/pool"
	"github.com/jjtimmons/conseq/internal/progress"
	"github.com/jjtimmons/conseq/internal/record"
	"github.com/jjtimmons/conseq/internal/seqstore"
	"github.com/jjtimmons/conseq/internal/stitch"
	"github.com/jjtimmons/conseq/internal/window"
)

// Output is one emitted polished sequence, name already carrying the
// spec §6 suffix tags ("r" for mode F, LN:i:, RC:i:, XC:f:).
type Output struct {
	Name string
	Data string
}

// Run executes the full pipeline described by cfg and returns the
// emitted outputs in target order. logger receives progress.Bar ticks
// and may be nil to silence them.
func Run(cfg config.Config, logger *log.Logger) ([]Output, error) {
	targetSource, err := record.OpenSequenceSource(cfg.TargetsPath)
	if err != nil {
		return nil, err
	}
	querySource, err := record.OpenSequenceSource(cfg.QueriesPath)
	if err != nil {
		return nil, err
	}
	overlapSource, err := record.OpenOverlapSource(cfg.OverlapsPath)
	if err != nil {
		return nil, err
	}

	store := seqstore.New()
	targetCount, err := store.LoadTargets(targetSource)
	if err != nil {
		return nil, err
	}
	if _, err := store.LoadQueries(querySource); err != nil {
		return nil, err
	}

	overlaps, strands, err := overlapset.Normalize(overlapSource, store, cfg.ErrorThreshold, cfg.Type == config.TypeContig)
	if err != nil {
		return nil, err
	}

	p := pool.New(cfg.NumThreads)
	defer p.Close()

	// Phase 1: reverse-complement materialization, one task per
	// sequence a surviving overlap references reverse-complemented.
	var materializeFutures []*pool.Future
	store.MaterializeReverse(strands.Reverse, func(task func()) {
		materializeFutures = append(materializeFutures, p.Submit(func(int) (interface{}, error) {
			task()
			return nil, nil
		}))
	})
	for _, f := range materializeFutures {
		if _, err := f.Wait(); err != nil {
			return nil, err
		}
	}

	windowLength := int(cfg.WindowLength)

	// Phase 2: breaking-point finding, one task per surviving overlap.
	bpBar := progress.New(logger, "finding breaking points", len(overlaps))
	bpFutures := make([]*pool.Future, len(overlaps))
	for i := range overlaps {
		ov := &overlaps[i]
		bpFutures[i] = p.Submit(func(int) (interface{}, error) {
			breakpoint.Run(ov, store, windowLength, int(cfg.Match), int(cfg.Mismatch), int(cfg.Gap))
			return nil, nil
		})
	}
	for _, f := range bpFutures {
		f.Wait()
		bpBar.Tick()
	}

	kind := window.ClassifyReadType(queryLengths(store, targetCount))

	set := &window.Set{WindowLength: windowLength, Offset: window.Offset(windowLength, cfg.OverlapPercentage)}
	set.FirstOfTarget = make([]int, targetCount)
	for t := 0; t < targetCount; t++ {
		set.FirstOfTarget[t] = len(set.Windows)
		target := store.Get(t)
		set.Windows = append(set.Windows, window.BuildWindows(t, target, windowLength, cfg.OverlapPercentage, kind)...)
	}

	// Layer assignment runs serially in the caller thread: coverage
	// counters and the per-overlap prev_window_id state are not safe
	// (and not specified) to parallelize across overlaps (spec §4.E,
	// §5's "caller thread blocks... observe completions in window
	// order" applies to the consensus phase, not this one).
	coverages := make([]int, targetCount)
	for i := range overlaps {
		ov := &overlaps[i]
		query := store.Get(ov.QueryID)
		data, quality, _ := ov.QueryRegion(store)
		window.AssignLayer(set, ov, query, data, quality, cfg.QualityThreshold, coverages)
	}

	// Phase 3: window consensus, one task per window. Each worker is
	// statically bound to its own preallocated NW engine for the run's
	// lifetime (spec §5's thread-to-engine mapping).
	engines := make([]*poa.Engine, p.Size())
	for i := range engines {
		engines[i] = poa.NewEngine(poa.NW, cfg.Match, cfg.Mismatch, cfg.Gap)
		engines[i].Prealloc(windowLength, 5)
	}

	trim := cfg.Trim && cfg.OverlapPercentage == 0

	consensusBar := progress.New(logger, "generating consensus", len(set.Windows))
	consensusFutures := make([]*pool.Future, len(set.Windows))
	for i, w := range set.Windows {
		w := w
		consensusFutures[i] = p.Submit(func(workerIndex int) (interface{}, error) {
			w.GenerateConsensus(engines[workerIndex], trim)
			return nil, nil
		})
	}
	for _, f := range consensusFutures {
		// Result aggregation must observe completions in submission
		// (window) order so the stitcher's per-target state machine
		// sees windows in rank order, even though execution itself is
		// unordered (spec §5).
		f.Wait()
		consensusBar.Tick()
	}

	stitchEngine := poa.NewEngine(poa.OV, 3, -5, -6)
	results := stitch.Assemble(set.Windows, coverages, cfg.OverlapPercentage, cfg.DropUnpolishedSequences, stitchEngine)

	outputs := make([]Output, 0, len(results))
	for _, r := range results {
		if r.Dropped {
			continue
		}
		outputs = append(outputs, Output{
			Name: tagName(store.Get(r.TargetID).Name(), cfg.Type, r),
			Data: r.Data,
		})
	}
	return outputs, nil
}

// queryLengths gathers the lengths of every non-elided query sequence
// (store ids at or past targetCount) for window.ClassifyReadType.
func queryLengths(store *seqstore.Store, targetCount int) []int {
	lengths := make([]int, 0, store.Len()-targetCount)
	for id := targetCount; id < store.Len(); id++ {
		lengths = append(lengths, store.Get(id).Len())
	}
	return lengths
}

// tagName appends spec §6's per-sequence suffix tags: a leading "r"
// tag iff the polisher type is F, then LN:i:, RC:i:, XC:f:.
func tagName(name string, polisherType config.PolisherType, r stitch.Result) string {
	if polisherType == config.TypeFragment {
		return fmt.Sprintf("%s r LN:i:%d RC:i:%d XC:f:%.6f", name, r.Length, r.Coverage, r.PolishedRatio)
	}
	return fmt.Sprintf("%s LN:i:%d RC:i:%d XC:f:%.6f", name, r.Length, r.Coverage, r.PolishedRatio)
}
