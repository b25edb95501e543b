// Package window implements components D, E and F of spec §4: slicing
// each target into fixed-length windows (D), routing overlap
// fragments into the correct window as quality-filtered layers (E),
// and running POA consensus per window (F).
//
// Grounded on window.hpp/polisher.cpp's Window class and
// Polisher::initialize/::polish: the same offset/expansion arithmetic
// for window slicing, the same prev_window_id sliding state for layer
// routing, and the same seed-backbone-then-fold-layers POA sequence
// for consensus.
package window

// ReadType is the NGS/TGS alignment-scoring hint derived once per run
// from average query length (spec §4.F).
type ReadType int

const (
	NGS ReadType = iota
	TGS
)

// ClassifyReadType implements spec §4.F's "derived once from average
// query length (≤1000 ⇒ NGS else TGS)".
func ClassifyReadType(queryLengths []int) ReadType {
	if len(queryLengths) == 0 {
		return TGS
	}
	total := 0
	for _, l := range queryLengths {
		total += l
	}
	if total/len(queryLengths) <= 1000 {
		return NGS
	}
	return TGS
}

// Layer is one query fragment folded onto a window's backbone: a
// borrow into the owning sequence's (possibly reverse-complemented)
// data/quality, plus the window-local span it covers.
type Layer struct {
	Data    string
	Quality string // "" if the query carries no quality track
	Begin   int    // inclusive, window-local
	End     int    // inclusive, window-local (spec §3: "end-in-window")
	QueryID int
}

// Window is one fixed-stride slice of a target plus the layers folded
// into it and (after GenerateConsensus) its POA consensus.
type Window struct {
	TargetID int
	Rank     int
	Kind     ReadType
	Overlap  bool // window created in overlap mode (overlap_percentage > 0)

	Backbone            string
	BackboneQuality     string
	BackboneHasQuality  bool
	Layers              []Layer

	Consensus string
	Polished  bool

	Summary Summary // only populated when Overlap is true
}

// Summary is spec §3's per-window MSA summary: vote counts per base
// per consensus column. The base->row coder is the package-level Coder.
type Summary struct {
	A, C, G, T, Gap []int
	Coverage        []int // number of sequences voting a real base at each column
}

// Coder is the fixed base->row mapping spec §3 calls a window's
// "coder" -- the same for every window, since the row identity (not
// its value) is all callers need.
var Coder = map[byte]int{'A': 0, 'C': 1, 'G': 2, 'T': 3}

// GapRow is the summary row index used for gap votes.
const GapRow = 4

// Row looks up a summary's vote count for the given coder row at column col.
func (s Summary) Row(row, col int) int {
	switch row {
	case Coder['A']:
		return s.A[col]
	case Coder['C']:
		return s.C[col]
	case Coder['G']:
		return s.G[col]
	case Coder['T']:
		return s.T[col]
	case GapRow:
		return s.Gap[col]
	}
	return 0
}

// Set is every window built for a run, plus a per-target index of
// where that target's windows begin in the flat Windows slice -- the
// "first_window_of_target" lookup spec §4.E's layer assigner needs to
// turn a per-target window-relative id into the global one.
type Set struct {
	Windows      []*Window
	FirstOfTarget []int
	WindowLength int
	Offset       int
}

// fillerQuality is substituted for a target's quality slice when the
// target carries none, matching polisher.cpp's filler-with-'!' so
// downstream code can always treat backbone quality as present text,
// even though GenerateConsensus still checks BackboneHasQuality before
// deriving real POA weights from it.
const fillerQuality = '!'

// targetAccessor is the minimal view BuildWindows needs of a target
// sequence -- satisfied by *seqstore.Sequence.
type targetAccessor interface {
	Len() int
	Data() string
	HasQuality() bool
	QualityString() string
}

// Offset is the expansion offset of spec §4.D: floor(window_length *
// overlap_percentage). Exported so callers building a Set alongside
// BuildWindows (internal/polisher) use the identical formula rather
// than recomputing it by hand.
func Offset(windowLength int, overlapPercentage float64) int {
	return int(float64(windowLength) * overlapPercentage)
}

// BuildWindows slices one target into fixed-length windows per spec
// §4.D, seeding each with the target's forward slice as backbone.
func BuildWindows(targetID int, target targetAccessor, windowLength int, overlapPercentage float64, kind ReadType) []*Window {
	length := target.Len()
	if length == 0 || windowLength <= 0 {
		return nil
	}

	offset := Offset(windowLength, overlapPercentage)
	numWindows := (length + windowLength - 1) / windowLength

	windows := make([]*Window, 0, numWindows)
	for k := 0; k < numWindows; k++ {
		start := k * windowLength
		end := start + windowLength
		if end > length {
			end = length
		}

		overlapMode := offset > 0
		if overlapMode {
			start -= offset
			if start < 0 {
				start = 0
			}
			end += offset
			if end > length {
				end = length
			}
		}

		backbone := target.Data()[start:end]

		var quality string
		hasQuality := target.HasQuality()
		if hasQuality {
			quality = target.QualityString()[start:end]
		} else {
			buf := make([]byte, len(backbone))
			for i := range buf {
				buf[i] = fillerQuality
			}
			quality = string(buf)
		}

		windows = append(windows, &Window{
			TargetID:           targetID,
			Rank:                k,
			Kind:                kind,
			Overlap:             overlapMode,
			Backbone:            backbone,
			BackboneQuality:     quality,
			BackboneHasQuality:  hasQuality,
		})
	}

	return windows
}
