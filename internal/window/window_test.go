package window

import (
	"testing"

	"github.com/jjtimmons/conseq/internal/overlapset"
	"github.com/jjtimmons/conseq/internal/poa"
	"github.com/jjtimmons/conseq/internal/seqstore"
)

func TestBuildWindows_NoExpansion(t *testing.T) {
	target := seqstore.NewSequence(0, "t1", "AAAACCCCGGGGTTTT", "") // len 16
	windows := BuildWindows(0, target, 4, 0, NGS)

	if len(windows) != 4 {
		t.Fatalf("len(windows) = %d, want 4", len(windows))
	}
	want := []string{"AAAA", "CCCC", "GGGG", "TTTT"}
	for i, w := range windows {
		if w.Backbone != want[i] {
			t.Fatalf("window %d backbone = %q, want %q", i, w.Backbone, want[i])
		}
		if w.Overlap {
			t.Fatalf("window %d should not be in overlap mode", i)
		}
	}
}

func TestBuildWindows_ExpandsWithOverlapPercentage(t *testing.T) {
	target := seqstore.NewSequence(0, "t1", "AAAACCCCGGGGTTTT", "")
	windows := BuildWindows(0, target, 4, 0.25, NGS) // offset = 1

	if len(windows) != 4 {
		t.Fatalf("len(windows) = %d, want 4", len(windows))
	}
	if windows[0].Backbone != "AAAAC" { // first window: right-expanded by offset even at k == 0
		t.Fatalf("window 0 backbone = %q, want %q", windows[0].Backbone, "AAAAC")
	}
	if windows[1].Backbone != "ACCCCG" { // middle window: -1 left, +1 right
		t.Fatalf("window 1 backbone = %q, want %q", windows[1].Backbone, "ACCCCG")
	}
	for i, w := range windows {
		if !w.Overlap {
			t.Fatalf("window %d should be in overlap mode", i)
		}
	}
}

func TestAssignLayer_RoutesFragmentToWindow(t *testing.T) {
	set := &Set{
		Windows:       []*Window{{Backbone: "AAAA"}, {Backbone: "CCCC"}},
		FirstOfTarget: []int{0},
		WindowLength:  4,
		Offset:        0,
	}
	ov := &overlapset.Overlap{
		TargetID: 0, QueryID: 1,
		BreakingPoints: []overlapset.Point{
			{TPos: 0, QPos: 0},
			{TPos: 4, QPos: 4},
		},
	}
	query := seqstore.NewSequence(1, "q1", "AAAA", "")
	coverages := make([]int, 1)

	AssignLayer(set, ov, query, "AAAA", "", 10, coverages)

	if coverages[0] != 1 {
		t.Fatalf("coverages[0] = %d, want 1", coverages[0])
	}
	if len(set.Windows[0].Layers) != 1 {
		t.Fatalf("window 0 layers = %d, want 1", len(set.Windows[0].Layers))
	}
	layer := set.Windows[0].Layers[0]
	if layer.Data != "AAAA" || layer.Begin != 0 || layer.End != 3 {
		t.Fatalf("layer = %+v, want Data=AAAA Begin=0 End=3", layer)
	}
}

func TestAssignLayer_SkipsLowQualityButAdvancesState(t *testing.T) {
	set := &Set{
		Windows:       []*Window{{Backbone: "AAAACC"}, {Backbone: "AACCCCGG"}},
		FirstOfTarget: []int{0},
		WindowLength:  4,
		Offset:        2,
	}
	// First fragment (query 0..2) is Phred 0, second (query 2..4) is Phred 40.
	qual := string([]byte{33, 33, 73, 73})
	ov := &overlapset.Overlap{
		TargetID: 0, QueryID: 1,
		BreakingPoints: []overlapset.Point{
			{TPos: 0, QPos: 0},
			{TPos: 2, QPos: 2},
			{TPos: 2, QPos: 2},
			{TPos: 4, QPos: 4},
		},
	}
	query := seqstore.NewSequence(1, "q1", "AAAA", qual)
	coverages := make([]int, 1)

	AssignLayer(set, ov, query, "AAAA", qual, 20, coverages)

	if len(set.Windows[0].Layers) != 0 {
		t.Fatalf("expected low-quality fragment to be skipped, got %d layers", len(set.Windows[0].Layers))
	}
	// The skipped fragment still claimed window 0, so the second
	// fragment (also starting in window 0) is pushed on to window 1.
	if len(set.Windows[1].Layers) != 1 {
		t.Fatalf("window 1 layers = %d, want 1 (state advanced past skipped fragment)", len(set.Windows[1].Layers))
	}
}

func TestGenerateConsensus_SingleLayerMatchesBackbone(t *testing.T) {
	w := &Window{Backbone: "ACGT", Layers: []Layer{{Data: "ACGT", Begin: 0, End: 3}}}
	engine := poa.NewEngine(poa.NW, 3, -5, -4)

	polished := w.GenerateConsensus(engine, false)
	if !polished {
		t.Fatalf("GenerateConsensus returned false, want true")
	}
	if w.Consensus != "ACGT" {
		t.Fatalf("Consensus = %q, want %q", w.Consensus, "ACGT")
	}
}

func TestGenerateConsensus_NoLayersNotPolished(t *testing.T) {
	w := &Window{Backbone: "ACGT"}
	engine := poa.NewEngine(poa.NW, 3, -5, -4)

	if w.GenerateConsensus(engine, false) {
		t.Fatalf("GenerateConsensus returned true with no layers, want false")
	}
	if w.Polished {
		t.Fatalf("window marked Polished with no layers")
	}
}
