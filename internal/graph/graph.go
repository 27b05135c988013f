package graph

import "github.com/pandharkardeep/minisocial/internal/profiles"

// -------- Graph interface --------

// Store is the read/grow surface the suggester and HTTP layer depend on.
type Store interface {
	AddEdge(u, v uint64) bool
	Neighbors(u uint64) []uint64
	AreFriends(u, v uint64) bool
	Degree(u uint64) int
	ShortestPath(src, dst uint64) int
	Version() uint64 // bumped on every new edge, for cache invalidation
}

// -------- Options --------

type options struct {
	capacity int
	maxLoad  float64
}

// Option configures a SocialGraph.
type Option func(*options)

// WithCapacity sets the initial slot count of the adjacency store.
func WithCapacity(n int) Option { return func(o *options) { o.capacity = n } }

// WithMaxLoad sets the load factor that triggers an adjacency rehash.
func WithMaxLoad(f float64) Option { return func(o *options) { o.maxLoad = f } }

// -------- Undirected friendship graph --------

// SocialGraph is an undirected, grow-only friendship graph plus the profile
// registry of its users. It is not safe for concurrent use: callers must not
// add edges while a query is running.
type SocialGraph struct {
	adj     *AdjacencyStore
	edges   int
	version uint64

	Users *profiles.Registry
}

// New returns an empty graph.
func New(opts ...Option) *SocialGraph {
	o := options{capacity: DefaultCapacity, maxLoad: DefaultMaxLoad}
	for _, opt := range opts {
		opt(&o)
	}
	return &SocialGraph{
		adj:   NewAdjacencyStore(o.capacity, o.maxLoad),
		Users: profiles.NewRegistry(),
	}
}

// touch returns the neighbor set of u, creating it on first use.
func (g *SocialGraph) touch(u uint64) *NeighborSet {
	ns := g.adj.Get(u)
	if ns == nil {
		ns = NewNeighborSet()
		g.adj.Put(u, ns)
	}
	return ns
}

// AddEdge links u and v in both directions. Self-loops are ignored and a
// repeated pair does not count twice. It reports whether a new edge was added.
func (g *SocialGraph) AddEdge(u, v uint64) bool {
	if u == v {
		return false
	}
	nu := g.touch(u)
	nv := g.touch(v)
	added := nu.Insert(v)
	nv.Insert(u)
	if added {
		g.edges++
		g.version++
	}
	return added
}

// NeighborSet returns the stored set for u, or nil if u has no edges.
// The set is owned by the graph and must not be modified.
func (g *SocialGraph) NeighborSet(u uint64) *NeighborSet { return g.adj.Get(u) }

// Neighbors returns the friends of u, most recently added first.
func (g *SocialGraph) Neighbors(u uint64) []uint64 {
	ns := g.adj.Get(u)
	if ns == nil {
		return nil
	}
	return ns.IDs()
}

func (g *SocialGraph) AreFriends(u, v uint64) bool {
	ns := g.adj.Get(u)
	return ns != nil && ns.Contains(v)
}

func (g *SocialGraph) Degree(u uint64) int {
	ns := g.adj.Get(u)
	if ns == nil {
		return 0
	}
	return ns.Len()
}

// HasVertex reports whether u appears in at least one edge.
func (g *SocialGraph) HasVertex(u uint64) bool { return g.adj.ContainsKey(u) }

// Vertices returns every id touched by an edge, in adjacency-store order.
func (g *SocialGraph) Vertices() []uint64 { return g.adj.Keys() }

func (g *SocialGraph) NumVertices() int { return g.adj.Len() }
func (g *SocialGraph) NumEdges() int    { return g.edges }
func (g *SocialGraph) Version() uint64  { return g.version }

// Capacity returns the adjacency store's slot count.
func (g *SocialGraph) Capacity() int { return g.adj.Capacity() }

// Edges returns every undirected edge once, as (low, high) pairs.
func (g *SocialGraph) Edges() [][2]uint64 {
	out := make([][2]uint64, 0, g.edges)
	for _, u := range g.adj.Keys() {
		g.adj.Get(u).Each(func(v uint64) bool {
			if u < v {
				out = append(out, [2]uint64{u, v})
			}
			return true
		})
	}
	return out
}
