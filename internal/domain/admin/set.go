package admin

import "sort"

// Set is the read-only allow-list of privileged user ids, fixed at startup.
type Set struct {
	ids map[int64]struct{}
}

func NewSet(ids ...int64) *Set {
	s := &Set{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		if id != 0 {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Contains is safe on a nil Set, which has no members.
func (s *Set) Contains(userID int64) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[userID]
	return ok
}

// IDs returns the members in ascending order.
func (s *Set) IDs() []int64 {
	if s == nil {
		return nil
	}
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}
