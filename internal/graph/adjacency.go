package graph

const (
	// DefaultCapacity is the slot count of a fresh AdjacencyStore.
	DefaultCapacity = 101
	// DefaultMaxLoad is the load factor above which the store grows.
	DefaultMaxLoad = 0.7
)

// AdjacencyStore maps a user id to its NeighborSet using open addressing
// with linear probing. Slots are never freed: there is no delete.
type AdjacencyStore struct {
	keys    []uint64
	values  []*NeighborSet
	used    []bool
	size    int
	maxLoad float64
}

// NewAdjacencyStore returns an empty store with the given slot count and
// maximum load factor. Out-of-range arguments fall back to the defaults;
// maxLoad must stay below 1 so a probe always finds a free slot.
func NewAdjacencyStore(capacity int, maxLoad float64) *AdjacencyStore {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if maxLoad <= 0 || maxLoad >= 1 {
		maxLoad = DefaultMaxLoad
	}
	s := &AdjacencyStore{maxLoad: maxLoad}
	s.alloc(capacity)
	return s
}

func (s *AdjacencyStore) alloc(capacity int) {
	s.keys = make([]uint64, capacity)
	s.values = make([]*NeighborSet, capacity)
	s.used = make([]bool, capacity)
	s.size = 0
}

// hash folds the decimal digits of key, least significant first, as
// h = h*37 + digit and reduces the result modulo the slot count.
func (s *AdjacencyStore) hash(key uint64) int {
	var h uint64
	for k := key; k > 0; k /= 10 {
		h = h*37 + k%10
	}
	return int(h % uint64(len(s.keys)))
}

// probe returns the slot holding key, or the first free slot on its probe path.
func (s *AdjacencyStore) probe(key uint64) int {
	n := len(s.keys)
	idx := s.hash(key)
	for s.used[idx] && s.keys[idx] != key {
		idx = (idx + 1) % n
	}
	return idx
}

// Get returns the neighbor set stored for id, or nil if id is absent.
func (s *AdjacencyStore) Get(id uint64) *NeighborSet {
	idx := s.probe(id)
	if !s.used[idx] {
		return nil
	}
	return s.values[idx]
}

// Put stores set under id, replacing any previous set.
func (s *AdjacencyStore) Put(id uint64, set *NeighborSet) {
	idx := s.probe(id)
	if s.used[idx] {
		s.values[idx] = set
		return
	}
	s.keys[idx] = id
	s.values[idx] = set
	s.used[idx] = true
	s.size++
	if float64(s.size)/float64(len(s.keys)) > s.maxLoad {
		s.rehash()
	}
}

// ContainsKey reports whether id has a slot.
func (s *AdjacencyStore) ContainsKey(id uint64) bool {
	return s.used[s.probe(id)]
}

// rehash grows the table to 2*capacity+1 and reinserts every live entry.
func (s *AdjacencyStore) rehash() {
	oldKeys, oldValues, oldUsed := s.keys, s.values, s.used
	s.alloc(2*len(oldKeys) + 1)
	for i, ok := range oldUsed {
		if ok {
			s.Put(oldKeys[i], oldValues[i])
		}
	}
}

// Keys returns every stored id in slot order. The order changes after a
// rehash and carries no meaning.
func (s *AdjacencyStore) Keys() []uint64 {
	out := make([]uint64, 0, s.size)
	for i, ok := range s.used {
		if ok {
			out = append(out, s.keys[i])
		}
	}
	return out
}

// Len returns the number of stored ids.
func (s *AdjacencyStore) Len() int { return s.size }

// Capacity returns the current slot count.
func (s *AdjacencyStore) Capacity() int { return len(s.keys) }
