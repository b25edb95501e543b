package breakpoint

import "testing"

func TestFind_IdenticalSequenceHitsEveryBoundary(t *testing.T) {
	target := "ACGTACGTACGTACGT" // len 16
	points := Find(target, target, 0, len(target), 4, 1, -1, -1)

	if points[0].TPos != 0 || points[0].QPos != 0 {
		t.Fatalf("first point = %+v, want (0,0)", points[0])
	}
	last := points[len(points)-1]
	if last.TPos != 16 || last.QPos != 16 {
		t.Fatalf("last point = %+v, want (16,16)", last)
	}

	// interior boundaries at 4, 8, 12, each duplicated.
	want := []int{4, 4, 8, 8, 12, 12}
	got := make([]int, 0, len(want))
	for _, p := range points[1 : len(points)-1] {
		got = append(got, p.TPos)
	}
	if len(got) != len(want) {
		t.Fatalf("interior points = %v, want boundaries %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("interior point %d TPos = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFind_OffsetTargetBeginSkipsNonInteriorMultiple(t *testing.T) {
	target := "ACGTACGT" // region starts at absolute tBegin=100, ends 108
	points := Find(target, target, 100, len(target), 4, 1, -1, -1)

	if points[0].TPos != 100 {
		t.Fatalf("first point TPos = %d, want 100", points[0].TPos)
	}
	// next multiple of 4 after 100 strictly inside (100,108) is 104.
	if len(points) != 4 {
		t.Fatalf("len(points) = %d, want 4 (start, 104 x2, end)", len(points))
	}
	if points[1].TPos != 104 || points[2].TPos != 104 {
		t.Fatalf("interior points = %+v, %+v, want TPos 104", points[1], points[2])
	}
}

func TestFind_SubstitutionStillBracketsBoundary(t *testing.T) {
	target := "ACGTACGT"
	query := "ACGAACGT" // mismatch at index 3
	points := Find(target, query, 0, len(query), 4, 3, -5, -4)

	for i := 1; i < len(points); i++ {
		if points[i].TPos < points[i-1].TPos {
			t.Fatalf("TPos not sorted: %+v then %+v", points[i-1], points[i])
		}
	}
	last := points[len(points)-1]
	if last.TPos != 8 || last.QPos != 8 {
		t.Fatalf("last point = %+v, want (8,8)", last)
	}
}
