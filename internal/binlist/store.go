package binlist

import "iter"

// Store is the ordered record sequence. It keeps offset == index on every
// mutation.
type Store struct {
	records []*Record
}

func NewStore() *Store { return &Store{} }

func (s *Store) Len() int { return len(s.records) }

// At returns the record at i, or nil when i is out of range.
func (s *Store) At(i int) *Record {
	if i < 0 || i >= len(s.records) {
		return nil
	}
	return s.records[i]
}

func (s *Store) Append(r *Record) {
	r.offset = len(s.records)
	s.records = append(s.records, r)
}

// Remove drops the record at offset and re-indexes its successors.
func (s *Store) Remove(offset int) (*Record, bool) {
	if offset < 0 || offset >= len(s.records) {
		return nil, false
	}
	r := s.records[offset]
	copy(s.records[offset:], s.records[offset+1:])
	s.records[len(s.records)-1] = nil
	s.records = s.records[:len(s.records)-1]
	for i := offset; i < len(s.records); i++ {
		s.records[i].offset = i
	}
	return r, true
}

func (s *Store) Clear() {
	clear(s.records)
	s.records = s.records[:0]
}

func (s *Store) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, r := range s.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Bytes returns the raw values of [from, to).
func (s *Store) Bytes(from, to int) []byte {
	from = max(from, 0)
	to = min(to, len(s.records))
	if from >= to {
		return nil
	}
	out := make([]byte, 0, to-from)
	for _, r := range s.records[from:to] {
		out = append(out, r.value)
	}
	return out
}
