package pymk

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pandharkardeep/minisocial/internal/graph"
	"github.com/pandharkardeep/minisocial/internal/metrics"
	"github.com/pandharkardeep/minisocial/internal/profiles"
)

// -------- Public types --------

type Suggestion struct {
	UserID uint64 `json:"user_id"`
	Score  int    `json:"score"`
	Why    struct {
		MutualFriends int `json:"mutual_friends"`
		CommonTags    int `json:"common_tags"`
		Distance      int `json:"distance"`
	} `json:"why"`
}

// Weights are the integer coefficients of the composite score
// Mutual*mutualFriends + Tags*commonTags - Distance*distance.
type Weights struct {
	Mutual   int `json:"mutual" yaml:"mutual"`
	Tags     int `json:"tags" yaml:"tags"`
	Distance int `json:"distance" yaml:"distance"`
}

var DefaultWeights = Weights{Mutual: 2, Tags: 1, Distance: 1}

type PYMKConfig struct {
	Weights   Weights
	CacheSize int // 0 disables the result cache
	CacheTTL  time.Duration
}

type Service struct {
	G graph.Store
	P profiles.Store
	C PYMKConfig

	log     *slog.Logger
	cacheMu sync.Mutex
	cache   *lruCache
}

func NewService(g graph.Store, p profiles.Store, cfg PYMKConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{G: g, P: p, C: cfg, log: logger.With("component", "pymk")}
	s.cache = newLRU(cfg.CacheSize, cfg.CacheTTL)
	s.cache.onHit = func() { metrics.PYMKCache.WithLabelValues("hit").Inc() }
	s.cache.onMiss = func() { metrics.PYMKCache.WithLabelValues("miss").Inc() }
	s.cache.onEvict = func() { metrics.PYMKCache.WithLabelValues("evict").Inc() }
	return s
}

// SetWeights replaces the scoring weights for subsequent requests.
func (s *Service) SetWeights(mutual, tags, distance int) {
	s.C.Weights = Weights{Mutual: mutual, Tags: tags, Distance: distance}
}

// CommonTags returns the size of the intersection of the tag sets of a
// and b. Matching is exact and case-sensitive; unknown users share none.
func (s *Service) CommonTags(a, b uint64) int {
	if s.P == nil {
		return 0
	}
	ua, ok := s.P.Get(a)
	if !ok {
		return 0
	}
	ub, ok := s.P.Get(b)
	if !ok {
		return 0
	}
	set := make(map[string]struct{}, len(ua.Tags))
	for _, t := range ua.Tags {
		set[t] = struct{}{}
	}
	c := 0
	for _, t := range ub.Tags {
		if _, ok := set[t]; ok {
			c++
			delete(set, t)
		}
	}
	return c
}

// Suggest returns up to k candidate ids for u, best first.
func (s *Service) Suggest(u uint64, k, radius int) []uint64 {
	res := s.Suggestions(u, k, radius)
	ids := make([]uint64, len(res))
	for i, r := range res {
		ids[i] = r.UserID
	}
	return ids
}

// Suggestions ranks the two-hop candidates of u.
//
// Candidates are friends of friends that are neither u nor a direct friend;
// each path through a distinct common friend adds one to the mutual count.
// The radius filter is applied afterwards against the true BFS distance.
// Since every candidate sits exactly two hops away, radius only matters
// below 2, where it removes everything.
func (s *Service) Suggestions(u uint64, k, radius int) []Suggestion {
	friends := s.G.Neighbors(u)
	if len(friends) == 0 || k <= 0 {
		metrics.SuggestRequests.WithLabelValues("empty").Inc()
		return []Suggestion{}
	}

	key := cacheKey{user: u, k: k, radius: radius, weights: s.C.Weights, graph: s.G.Version()}
	if s.P != nil {
		key.profiles = s.P.Version()
	}
	s.cacheMu.Lock()
	got, ok := s.cache.Get(key)
	s.cacheMu.Unlock()
	if ok {
		return append([]Suggestion{}, got...)
	}

	// 1) Mutual counts over two-hop paths
	direct := make(map[uint64]struct{}, len(friends)+1)
	direct[u] = struct{}{}
	for _, f := range friends {
		direct[f] = struct{}{}
	}
	mutual := make(map[uint64]int)
	for _, f := range friends {
		for _, c := range s.G.Neighbors(f) {
			if _, skip := direct[c]; skip {
				continue
			}
			mutual[c]++
		}
	}
	metrics.SuggestCandidates.Observe(float64(len(mutual)))

	// 2) Distance filter and composite score
	w := s.C.Weights
	type detail struct{ mutual, tags, dist int }
	details := make(map[uint64]detail, len(mutual))
	tree := &RankingTree{}
	for c, m := range mutual {
		d := s.G.ShortestPath(u, c)
		if d == -1 || d > radius {
			continue
		}
		tags := s.CommonTags(u, c)
		tree.Insert(c, w.Mutual*m+w.Tags*tags-w.Distance*d)
		details[c] = detail{mutual: m, tags: tags, dist: d}
	}

	// 3) Top-K
	top := tree.TopEntries(k)
	res := make([]Suggestion, len(top))
	for i, e := range top {
		d := details[e.ID]
		res[i].UserID = e.ID
		res[i].Score = e.Score
		res[i].Why.MutualFriends = d.mutual
		res[i].Why.CommonTags = d.tags
		res[i].Why.Distance = d.dist
	}
	s.log.Debug("suggestions computed",
		"user_id", u, "k", k, "radius", radius,
		"candidates", len(mutual), "ranked", tree.Len(), "returned", len(res))

	if len(res) == 0 {
		metrics.SuggestRequests.WithLabelValues("empty").Inc()
	} else {
		metrics.SuggestRequests.WithLabelValues("ok").Inc()
	}
	s.cacheMu.Lock()
	s.cache.Set(key, res)
	s.cacheMu.Unlock()
	return append([]Suggestion{}, res...)
}
