package graph

// walk runs breadth-first search from src over a FIFO queue. dist records
// the hop count of every discovered vertex and may already hold vertices
// from earlier floods, which are treated as visited. visit is called once
// per newly discovered vertex (src excluded); returning false stops the walk.
func (g *SocialGraph) walk(src uint64, dist map[uint64]int, visit func(id uint64, d int) bool) {
	dist[src] = 0
	queue := []uint64{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		ns := g.adj.Get(u)
		if ns == nil {
			continue
		}
		du := dist[u]
		stop := false
		ns.Each(func(v uint64) bool {
			if _, seen := dist[v]; seen {
				return true
			}
			dist[v] = du + 1
			if visit != nil && !visit(v, du+1) {
				stop = true
				return false
			}
			queue = append(queue, v)
			return true
		})
		if stop {
			return
		}
	}
}

// ShortestPath returns the hop count between src and dst, 0 when they are
// equal, and -1 when either is unknown or dst is unreachable. The search
// stops as soon as dst is discovered.
func (g *SocialGraph) ShortestPath(src, dst uint64) int {
	if src == dst {
		return 0
	}
	if !g.adj.ContainsKey(src) || !g.adj.ContainsKey(dst) {
		return -1
	}
	found := -1
	g.walk(src, make(map[uint64]int), func(id uint64, d int) bool {
		if id == dst {
			found = d
			return false
		}
		return true
	})
	return found
}

// ComponentCount returns the number of connected components among ids
// touched by at least one edge.
func (g *SocialGraph) ComponentCount() int {
	dist := make(map[uint64]int, g.adj.Len())
	comps := 0
	for _, start := range g.adj.Keys() {
		if _, seen := dist[start]; seen {
			continue
		}
		comps++
		g.walk(start, dist, nil)
	}
	return comps
}
