package seqstore

import (
	"fmt"

	"github.com/jjtimmons/conseq/internal/record"
)

// chunkBudget bounds the memory used while streaming queries, matching
// the reference polisher's ~1 GiB chunk size.
const chunkBudget = 1024 * 1024 * 1024

// side distinguishes a target-side name/index lookup from a
// query-side one, so a target and a query that happen to share a name
// resolve through distinct keys (spec §4.A).
type side byte

const (
	sideTarget side = 't'
	sideQuery  side = 'q'
)

// ErrEmptyTargets and ErrEmptyQueries are the input-integrity fatals
// of spec §7 bucket 2.
var (
	ErrEmptyTargets = fmt.Errorf("empty target sequences set")
	ErrEmptyQueries = fmt.Errorf("empty sequences set")
)

// Store owns every Sequence for the lifetime of a polish run. Targets
// occupy ids [0, targetCount); queries occupy ids
// [targetCount, Len()), except where a query name duplicates a target
// name, in which case the query is elided and its external name
// resolves to the target's id instead of allocating a new one.
type Store struct {
	sequences   []*Sequence
	targetCount int

	nameToID map[nameKey]int
}

type nameKey struct {
	side side
	name string
}

// New returns an empty Store.
func New() *Store {
	return &Store{nameToID: make(map[nameKey]int)}
}

// LoadTargets reads every record from source and indexes it 0..T-1.
// Must be called exactly once, before LoadQueries.
func (s *Store) LoadTargets(source record.SequenceSource) (int, error) {
	if err := source.Reset(); err != nil {
		return 0, err
	}

	for {
		batch, more, err := source.Parse(chunkBudget)
		if err != nil {
			return 0, err
		}
		for _, rec := range batch {
			id := len(s.sequences)
			s.sequences = append(s.sequences, NewSequence(id, rec.Name, cleanNucleotides(rec.Data), rec.Quality))
			s.nameToID[nameKey{sideTarget, rec.Name}] = id
		}
		if !more {
			break
		}
	}

	s.targetCount = len(s.sequences)
	if s.targetCount == 0 {
		return 0, ErrEmptyTargets
	}
	return s.targetCount, nil
}

// LoadQueries streams query records in bounded chunks. A query whose
// name matches a target's name is elided: it must carry identical
// data and quality length, and its external name is redirected to the
// matching target id rather than allocating a new Sequence.
func (s *Store) LoadQueries(source record.SequenceSource) (int, error) {
	if err := source.Reset(); err != nil {
		return 0, err
	}

	added := 0
	for {
		batch, more, err := source.Parse(chunkBudget)
		if err != nil {
			return 0, err
		}
		for _, rec := range batch {
			data := cleanNucleotides(rec.Data)

			if targetID, ok := s.nameToID[nameKey{sideTarget, rec.Name}]; ok {
				target := s.sequences[targetID]
				if target.Len() != len(data) || len(target.QualityString()) != len(rec.Quality) {
					return 0, fmt.Errorf(
						"duplicate sequence %s with unequal data", rec.Name)
				}
				s.nameToID[nameKey{sideQuery, rec.Name}] = targetID
				continue
			}

			id := len(s.sequences)
			s.sequences = append(s.sequences, NewSequence(id, rec.Name, data, rec.Quality))
			s.nameToID[nameKey{sideQuery, rec.Name}] = id
			added++
		}
		if !more {
			break
		}
	}

	if added == 0 && s.Len() == s.targetCount {
		return 0, ErrEmptyQueries
	}
	return added, nil
}

// TargetID resolves an external target name to its internal id.
func (s *Store) TargetID(name string) (int, bool) {
	id, ok := s.nameToID[nameKey{sideTarget, name}]
	return id, ok
}

// QueryID resolves an external query name to its internal id
// (redirected to a target's id if the query was elided as a duplicate).
func (s *Store) QueryID(name string) (int, bool) {
	id, ok := s.nameToID[nameKey{sideQuery, name}]
	return id, ok
}

// Get returns the Sequence with the given internal id.
func (s *Store) Get(id int) *Sequence { return s.sequences[id] }

// Len is the total number of distinct sequences (targets + non-elided queries).
func (s *Store) Len() int { return len(s.sequences) }

// TargetCount is the number of target sequences.
func (s *Store) TargetCount() int { return s.targetCount }

// MaterializeReverse runs Sequence.Materialize for every id where
// need[id] is true. The pool wires this as one task per flagged
// sequence (spec §5 phase 1); a nil submit runs it serially.
func (s *Store) MaterializeReverse(need []bool, submit func(func())) {
	for id, flagged := range need {
		if !flagged {
			continue
		}
		id := id
		if submit == nil {
			s.sequences[id].Materialize()
			continue
		}
		submit(func() { s.sequences[id].Materialize() })
	}
}
