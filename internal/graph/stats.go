package graph

// DefaultDiameterSamples is the number of BFS roots used by ApproximateDiameter.
const DefaultDiameterSamples = 5

// Stats is a snapshot of the global graph metrics.
type Stats struct {
	Vertices   int     `json:"vertices"`
	Edges      int     `json:"edges"`
	Components int     `json:"components"`
	AvgDegree  float64 `json:"avg_degree"`
	Diameter   int     `json:"approx_diameter"`
	Clustering float64 `json:"avg_clustering"`
}

// Stats computes every global metric in one call.
func (g *SocialGraph) Stats(samples int) Stats {
	return Stats{
		Vertices:   g.NumVertices(),
		Edges:      g.NumEdges(),
		Components: g.ComponentCount(),
		AvgDegree:  g.AverageDegree(),
		Diameter:   g.ApproximateDiameter(samples),
		Clustering: g.AverageClusteringCoefficient(),
	}
}

// AverageDegree returns 2E/V, or 0 for an empty graph.
func (g *SocialGraph) AverageDegree() float64 {
	v := g.NumVertices()
	if v == 0 {
		return 0
	}
	return 2 * float64(g.edges) / float64(v)
}

// ApproximateDiameter runs BFS from the first min(samples, V) vertices in
// store order and returns the longest distance seen. It is a lower bound
// on the true diameter.
func (g *SocialGraph) ApproximateDiameter(samples int) int {
	keys := g.adj.Keys()
	m := min(samples, len(keys))
	diam := 0
	for _, start := range keys[:max(m, 0)] {
		g.walk(start, make(map[uint64]int), func(_ uint64, d int) bool {
			diam = max(diam, d)
			return true
		})
	}
	return diam
}

// ClusteringCoefficient returns the fraction of neighbor pairs of u that
// are themselves friends. ok is false when u has fewer than two neighbors.
func (g *SocialGraph) ClusteringCoefficient(u uint64) (c float64, ok bool) {
	ns := g.adj.Get(u)
	if ns == nil || ns.Len() < 2 {
		return 0, false
	}
	vs := ns.IDs()
	k := len(vs)
	links := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if g.AreFriends(vs[i], vs[j]) {
				links++
			}
		}
	}
	return float64(links) / (float64(k*(k-1)) / 2), true
}

// AverageClusteringCoefficient averages ClusteringCoefficient over vertices
// of degree two or more; the rest are left out of the mean entirely.
func (g *SocialGraph) AverageClusteringCoefficient() float64 {
	var sum float64
	count := 0
	for _, u := range g.adj.Keys() {
		if c, ok := g.ClusteringCoefficient(u); ok {
			sum += c
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
