package stitch

import (
	"testing"

	"github.com/jjtimmons/conseq/internal/poa"
	"github.com/jjtimmons/conseq/internal/window"
)

func TestAssemble_DefaultModeConcatenatesAndComputesRatio(t *testing.T) {
	windows := []*window.Window{
		{TargetID: 0, Rank: 0, Consensus: "AAAA", Polished: true},
		{TargetID: 0, Rank: 1, Consensus: "CCCC", Polished: true},
		{TargetID: 0, Rank: 2, Consensus: "GGGG", Polished: false},
	}
	results := Assemble(windows, []int{3}, 0, false, nil)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	if r.Data != "AAAACCCCGGGG" {
		t.Fatalf("Data = %q, want %q", r.Data, "AAAACCCCGGGG")
	}
	if r.Coverage != 3 {
		t.Fatalf("Coverage = %d, want 3", r.Coverage)
	}
	want := 2.0 / 3.0
	if r.PolishedRatio != want {
		t.Fatalf("PolishedRatio = %v, want %v", r.PolishedRatio, want)
	}
	if r.Dropped {
		t.Fatalf("result should not be dropped")
	}
}

func TestAssemble_DropsUnpolishedTargetWhenConfigured(t *testing.T) {
	windows := []*window.Window{
		{TargetID: 0, Rank: 0, Consensus: "ACGT", Polished: false},
	}
	results := Assemble(windows, []int{0}, 0, true, nil)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if !results[0].Dropped {
		t.Fatalf("expected target with zero polished windows to be dropped")
	}
}

func TestAssemble_MultipleTargetsProduceSeparateResults(t *testing.T) {
	windows := []*window.Window{
		{TargetID: 0, Rank: 0, Consensus: "AAAA", Polished: true},
		{TargetID: 1, Rank: 0, Consensus: "CCCC", Polished: true},
	}
	results := Assemble(windows, []int{1, 2}, 0, false, nil)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Data != "AAAA" || results[1].Data != "CCCC" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Coverage != 1 || results[1].Coverage != 2 {
		t.Fatalf("unexpected coverages: %+v", results)
	}
}

func uniformSummary(n int) window.Summary {
	zeros := make([]int, n)
	return window.Summary{
		A: append([]int(nil), zeros...), C: append([]int(nil), zeros...),
		G: append([]int(nil), zeros...), T: append([]int(nil), zeros...),
		Gap: append([]int(nil), zeros...), Coverage: append([]int(nil), zeros...),
	}
}

// TestStitchPair_MergesIdenticalJunction reproduces spec's overlap-mode
// stitch boundary example in isolation (spec §8 scenario 6): two
// adjacent consensuses sharing an identical "GGGG" overlap (len_L=4,
// len_R=4) merge into one sequence without duplication.
func TestStitchPair_MergesIdenticalJunction(t *testing.T) {
	engine := poa.NewEngine(poa.OV, 3, -5, -6)
	left := "AAAAGGGG"
	right := "GGGGTTTT"
	lenL, lenR := 4, 4
	startL := len(left) - lenL

	merged, gapCols := stitchPair(left[startL:], right[:lenR], startL, engine, uniformSummary(8), uniformSummary(8))
	if merged != "GGGG" {
		t.Fatalf("merged = %q, want %q", merged, "GGGG")
	}
	if gapCols != 0 {
		t.Fatalf("gapCols = %d, want 0", gapCols)
	}
	full := left[:startL] + merged + right[lenR:]
	if full != "AAAAGGGGTTTT" {
		t.Fatalf("full stitched sequence = %q, want %q", full, "AAAAGGGGTTTT")
	}
}

// TestAssemble_OverlapModeCarriesFullConsensusAcrossJunctions covers a
// 3-window target, the smallest case that exercises both review fixes:
// the window1-window2 junction must recompute len_L from window1's full
// consensus (not a previously truncated remainder), and the final
// window's trailing total_overlap fraction must still be emitted (spec
// §4.G.7) even though the last junction feeds the whole window in as
// its alignment query (polisher.cpp's own documented last-window
// limitation re-surfaces that trailing fraction's content a second
// time whenever, as here, it exactly matches what the realignment
// already recovered -- that duplication is polisher.cpp's behavior,
// not a new defect).
func TestAssemble_OverlapModeCarriesFullConsensusAcrossJunctions(t *testing.T) {
	engine := poa.NewEngine(poa.OV, 3, -5, -6)
	windows := []*window.Window{
		{TargetID: 0, Rank: 0, Consensus: "AAAACCCC", Polished: true, Overlap: true, Summary: uniformSummary(8)},
		{TargetID: 0, Rank: 1, Consensus: "CCCCGGGG", Polished: true, Overlap: true, Summary: uniformSummary(8)},
		{TargetID: 0, Rank: 2, Consensus: "GGGGTTTT", Polished: true, Overlap: true, Summary: uniformSummary(8)},
	}
	results := Assemble(windows, []int{3}, 0.25, false, engine)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	want := "AAAACCCCGGGGTTTTTTTT"
	if results[0].Data != want {
		t.Fatalf("Data = %q, want %q", results[0].Data, want)
	}
}

func TestAssemble_OverlapModeSingleWindowTargetEmitsConsensusUnchanged(t *testing.T) {
	engine := poa.NewEngine(poa.OV, 3, -5, -6)
	windows := []*window.Window{
		{TargetID: 0, Rank: 0, Consensus: "ACGTACGT", Polished: true, Overlap: true, Summary: uniformSummary(8)},
	}
	results := Assemble(windows, []int{0}, 0.25, false, engine)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Data != "ACGTACGT" {
		t.Fatalf("Data = %q, want %q", results[0].Data, "ACGTACGT")
	}
}
