package binlist

import (
	"iter"
	"slices"
)

// Selection is the set of selected records ordered by offset. Membership is
// mirrored onto Record.selected so both views always agree.
type Selection struct {
	offsets []int
	byOff   map[int]*Record
}

func newSelection() *Selection {
	return &Selection{byOff: map[int]*Record{}}
}

func (s *Selection) Len() int { return len(s.offsets) }

func (s *Selection) Contains(r *Record) bool {
	if r == nil {
		return false
	}
	got, ok := s.byOff[r.offset]
	return ok && got == r
}

// Add inserts r. Adding a member again is a no-op.
func (s *Selection) Add(r *Record) {
	if r == nil {
		return
	}
	if _, ok := s.byOff[r.offset]; ok {
		r.selected = true
		return
	}
	i, _ := slices.BinarySearch(s.offsets, r.offset)
	s.offsets = slices.Insert(s.offsets, i, r.offset)
	s.byOff[r.offset] = r
	r.selected = true
}

func (s *Selection) Remove(r *Record) {
	if r == nil {
		return
	}
	r.selected = false
	if _, ok := s.byOff[r.offset]; !ok {
		return
	}
	delete(s.byOff, r.offset)
	if i, found := slices.BinarySearch(s.offsets, r.offset); found {
		s.offsets = slices.Delete(s.offsets, i, i+1)
	}
}

func (s *Selection) Clear() {
	for _, r := range s.byOff {
		r.selected = false
		r.active = false
	}
	clear(s.byOff)
	s.offsets = s.offsets[:0]
}

// First returns the selected record with the lowest offset.
func (s *Selection) First() *Record {
	if len(s.offsets) == 0 {
		return nil
	}
	return s.byOff[s.offsets[0]]
}

// All yields the selected records in ascending offset order.
func (s *Selection) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, off := range s.offsets {
			if !yield(s.byOff[off]) {
				return
			}
		}
	}
}

// reindex drops removed and shifts later offsets after a store removal.
func (s *Selection) reindex(removed int) {
	if len(s.offsets) == 0 {
		return
	}
	rebuilt := make(map[int]*Record, len(s.byOff))
	out := s.offsets[:0]
	for _, off := range s.offsets {
		r := s.byOff[off]
		if off == removed {
			continue
		}
		out = append(out, r.offset)
		rebuilt[r.offset] = r
	}
	s.offsets = out
	s.byOff = rebuilt
}
