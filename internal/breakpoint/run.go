package breakpoint

import (
	"github.com/jjtimmons/conseq/internal/overlapset"
	"github.com/jjtimmons/conseq/internal/seqstore"
)

// Run realigns ov against the sequences in store and fills in
// ov.BreakingPoints. Callers (spec §5 phase 2) submit one Run per
// surviving overlap to the worker pool.
func Run(ov *overlapset.Overlap, store *seqstore.Store, windowLength int, match, mismatch, gap int) {
	target := store.Get(ov.TargetID)
	targetRegion := target.Data()[ov.TBegin:ov.TEnd]

	queryRegion, _, _ := ov.QueryRegion(store)

	ov.BreakingPoints = Find(targetRegion, queryRegion, ov.TBegin, ov.QEnd-ov.QBegin, windowLength, match, mismatch, gap)
}
