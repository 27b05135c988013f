package graph

// NeighborSet is a small deduplicated set of adjacent user ids. Membership
// is a linear scan; social-graph degrees are small enough that this beats
// hashing. Iteration yields the most recently inserted id first.
type NeighborSet struct {
	ids []uint64 // insertion order, oldest first
}

// NewNeighborSet returns an empty set.
func NewNeighborSet() *NeighborSet { return &NeighborSet{} }

// Contains reports whether id is a member.
func (s *NeighborSet) Contains(id uint64) bool {
	for _, x := range s.ids {
		if x == id {
			return true
		}
	}
	return false
}

// Insert adds id unless it is already present. It reports whether the set changed.
func (s *NeighborSet) Insert(id uint64) bool {
	if s.Contains(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Len returns the number of members.
func (s *NeighborSet) Len() int { return len(s.ids) }

// Each calls fn for every member, newest first, until fn returns false.
func (s *NeighborSet) Each(fn func(id uint64) bool) {
	for i := len(s.ids) - 1; i >= 0; i-- {
		if !fn(s.ids[i]) {
			return
		}
	}
}

// IDs returns a fresh slice of the members, newest first.
func (s *NeighborSet) IDs() []uint64 {
	out := make([]uint64, len(s.ids))
	for i, x := range s.ids {
		out[len(s.ids)-1-i] = x
	}
	return out
}
