package window

import "github.com/jjtimmons/conseq/internal/overlapset"

// queryView is the minimal view AssignLayer needs of a query sequence.
type queryView interface {
	HasQuality() bool
}

// AssignLayer implements spec §4.E: route a normalized, breaking-point
// annotated overlap's fragments into their target windows as layers,
// discarding fragments that are too short or too low quality, while
// still advancing the per-overlap sliding prev_window_id state on a
// quality skip (so the next fragment's window-boundary heuristic sees
// it).
//
// data/quality are the overlap's own (already strand-resolved) query
// region strings, as produced by Overlap.QueryRegion; query is used
// only to check whether a quality track exists at all.
func AssignLayer(set *Set, ov *overlapset.Overlap, query queryView, data, quality string, qualityThreshold float64, coverages []int) {
	coverages[ov.TargetID]++

	firstWindow := set.FirstOfTarget[ov.TargetID]
	windowLength := set.WindowLength
	offset := set.Offset

	prevWindowID := -1
	bp := ov.BreakingPoints

	for j := 0; j+1 < len(bp); j += 2 {
		left, right := bp[j], bp[j+1]

		if right.QPos-left.QPos < int(0.02*float64(windowLength)) {
			continue
		}

		bpw1 := left.TPos / windowLength
		bpw2 := right.TPos / windowLength
		windowID := firstWindow + bpw1

		switch {
		case bpw2-bpw1 > 1:
			windowID++
		case windowID == prevWindowID:
			windowID++
		case left.TPos < bpw1*windowLength+offset && j+2 < len(bp) && bp[j+2].TPos == left.TPos:
			windowID--
		}
		prevWindowID = windowID

		skip := false
		if query.HasQuality() {
			if meanPhred(quality[left.QPos:right.QPos]) < qualityThreshold {
				skip = true
			}
		}
		if skip {
			continue
		}

		if windowID < 0 || windowID >= len(set.Windows) {
			continue
		}
		w := set.Windows[windowID]

		windowStart := (windowID - firstWindow) * windowLength
		if windowID != firstWindow {
			windowStart -= offset
		}

		begin := left.TPos - windowStart
		end := right.TPos - windowStart - 1
		if begin < 0 || end < begin || end >= len(w.Backbone) {
			continue
		}

		layer := Layer{
			Data:    data[left.QPos:right.QPos],
			Begin:   begin,
			End:     end,
			QueryID: ov.QueryID,
		}
		if query.HasQuality() {
			layer.Quality = quality[left.QPos:right.QPos]
		}
		w.Layers = append(w.Layers, layer)
	}
}

// meanPhred computes the mean Phred+33 quality of a quality string span.
func meanPhred(quality string) float64 {
	if len(quality) == 0 {
		return 0
	}
	total := 0
	for i := 0; i < len(quality); i++ {
		total += int(quality[i]) - 33
	}
	return float64(total) / float64(len(quality))
}
