package overlapset

import (
	"testing"

	"github.com/jjtimmons/conseq/internal/record"
	"github.com/jjtimmons/conseq/internal/seqstore"
)

// fakeSeqSource hands back a fixed batch of Sequence records on the
// first Parse call and signals no more afterward.
type fakeSeqSource struct {
	records []record.Sequence
	served  bool
}

func (f *fakeSeqSource) Reset() error { f.served = false; return nil }
func (f *fakeSeqSource) Parse(int) ([]record.Sequence, bool, error) {
	if f.served {
		return nil, false, nil
	}
	f.served = true
	return f.records, false, nil
}

type fakeOverlapSource struct {
	records []record.Overlap
	served  bool
}

func (f *fakeOverlapSource) Reset() error { f.served = false; return nil }
func (f *fakeOverlapSource) Parse(int) ([]record.Overlap, bool, error) {
	if f.served {
		return nil, false, nil
	}
	f.served = true
	return f.records, false, nil
}

func newTestStore(t *testing.T, targets, queries []record.Sequence) *seqstore.Store {
	t.Helper()
	store := seqstore.New()
	if _, err := store.LoadTargets(&fakeSeqSource{records: targets}); err != nil {
		t.Fatalf("LoadTargets: %v", err)
	}
	if _, err := store.LoadQueries(&fakeSeqSource{records: queries}); err != nil {
		t.Fatalf("LoadQueries: %v", err)
	}
	return store
}

func TestNormalize_DropsSelfReferentialAndOverThreshold(t *testing.T) {
	store := newTestStore(t,
		[]record.Sequence{{Name: "t1", Data: "ACGTACGT"}},
		// "t1" as a query duplicates the target and resolves to its id.
		[]record.Sequence{{Name: "q1", Data: "ACGTACGT"}, {Name: "q2", Data: "ACGTACGT"}, {Name: "t1", Data: "ACGTACGT"}},
	)

	src := &fakeOverlapSource{records: []record.Overlap{
		{QueryName: "q1", TargetName: "t1", QBegin: 0, QEnd: 8, TBegin: 0, TEnd: 8, Error: 0.1},
		{QueryName: "q2", TargetName: "t1", QBegin: 0, QEnd: 8, TBegin: 0, TEnd: 8, Error: 0.9}, // over threshold
		{QueryName: "t1", TargetName: "t1", QBegin: 0, QEnd: 8, TBegin: 0, TEnd: 8, Error: 0.0}, // self
	}}

	out, strands, err := Normalize(src, store, 0.3, false)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	q1, _ := store.QueryID("q1")
	if out[0].QueryID != q1 {
		t.Fatalf("surviving overlap has QueryID %d, want %d", out[0].QueryID, q1)
	}
	if !strands.Forward[q1] || strands.Reverse[q1] {
		t.Fatalf("strand flags = %+v, want forward only", strands)
	}
}

func TestNormalize_DropsStructurallyInvalid(t *testing.T) {
	store := newTestStore(t,
		[]record.Sequence{{Name: "t1", Data: "ACGTACGT"}},
		[]record.Sequence{{Name: "q1", Data: "ACGTACGT"}},
	)

	src := &fakeOverlapSource{records: []record.Overlap{
		{QueryName: "q1", TargetName: "t1", QBegin: 0, QEnd: 20, TBegin: 0, TEnd: 8, Error: 0}, // QEnd past end
		{QueryName: "q1", TargetName: "t1", QBegin: 4, QEnd: 4, TBegin: 0, TEnd: 8, Error: 0},  // zero length
	}}

	_, _, err := Normalize(src, store, 0.3, false)
	if err != ErrEmptyInput {
		t.Fatalf("Normalize error = %v, want ErrEmptyInput", err)
	}
}

func repeatSeq(n int) string {
	const unit = "ACGT"
	b := make([]byte, n)
	for i := range b {
		b[i] = unit[i%len(unit)]
	}
	return string(b)
}

func TestNormalize_ContigModeKeepsLongestPerQuery(t *testing.T) {
	store := newTestStore(t,
		[]record.Sequence{
			{Name: "t1", Data: repeatSeq(500)},
			{Name: "t2", Data: repeatSeq(800)},
		},
		[]record.Sequence{{Name: "q1", Data: repeatSeq(800)}},
	)

	src := &fakeOverlapSource{records: []record.Overlap{
		{QueryName: "q1", TargetName: "t1", QBegin: 0, QEnd: 500, TBegin: 0, TEnd: 500, Error: 0},
		{QueryName: "q1", TargetName: "t2", QBegin: 0, QEnd: 800, TBegin: 0, TEnd: 800, Error: 0},
	}}

	out, _, err := Normalize(src, store, 0.3, true)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (deduplicated)", len(out))
	}
	t2, _ := store.TargetID("t2")
	if out[0].TargetID != t2 {
		t.Fatalf("surviving overlap targets id %d, want t2's id %d (the longer one)", out[0].TargetID, t2)
	}
}
