package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/pandharkardeep/minisocial/internal/graph"
	"github.com/pandharkardeep/minisocial/internal/metrics"
	"github.com/pandharkardeep/minisocial/internal/profiles"
	"github.com/pandharkardeep/minisocial/internal/pymk"
)

// Defaults are the fallback query values for /suggest and /stats.
type Defaults struct {
	K               int
	Radius          int
	DiameterSamples int
}

// server serializes access to the graph: the graph itself has no locking,
// so writes take mu exclusively and queries share it.
type server struct {
	mu  sync.RWMutex
	g   *graph.SocialGraph
	svc *pymk.Service
	def Defaults
	log *slog.Logger
}

func AttachRoutes(mux *http.ServeMux, svc *pymk.Service, g *graph.SocialGraph, def Defaults, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{svc: svc, g: g, def: def, log: logger}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /friends", s.postFriend)
	mux.HandleFunc("GET /friends", s.getFriends)
	mux.HandleFunc("GET /degree", s.getDegree)
	mux.HandleFunc("GET /path", s.getPath)
	mux.HandleFunc("GET /stats", s.getStats)
	mux.HandleFunc("POST /users", s.postUser)
	mux.HandleFunc("GET /users/{id}", s.getUser)
	mux.HandleFunc("GET /users", s.findUsers)
	mux.HandleFunc("GET /suggest", s.getSuggest)
}

func parseID(q string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(q), 10, 64)
}

// intParam returns the integer query value of key, or def when absent.
func intParam(r *http.Request, key string, def int) (int, error) {
	q := strings.TrimSpace(r.URL.Query().Get(key))
	if q == "" {
		return def, nil
	}
	return strconv.Atoi(q)
}

func (s *server) postFriend(w http.ResponseWriter, r *http.Request) {
	type req struct {
		U uint64 `json:"u"`
		V uint64 `json:"v"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	s.mu.Lock()
	added := s.g.AddEdge(body.U, body.V)
	vertices, edges := s.g.NumVertices(), s.g.NumEdges()
	s.mu.Unlock()
	if added {
		metrics.EdgesAdded.Inc()
		metrics.ObserveGraph(vertices, edges)
		s.log.Info("edge added", "u", body.U, "v", body.V)
	}
	writeJSON(w, map[string]any{"ok": added})
}

// getFriends lists the friends of ?user_id, or tests ?u and ?v for friendship.
func (s *server) getFriends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q.Has("user_id") {
		u, err := parseID(q.Get("user_id"))
		if err != nil {
			http.Error(w, "bad user_id", 400)
			return
		}
		out := s.g.Neighbors(u)
		if out == nil {
			out = []uint64{}
		}
		writeJSON(w, out)
		return
	}
	u, err1 := parseID(q.Get("u"))
	v, err2 := parseID(q.Get("v"))
	if err1 != nil || err2 != nil {
		http.Error(w, "bad ids", 400)
		return
	}
	writeJSON(w, map[string]any{"friends": s.g.AreFriends(u, v)})
}

func (s *server) getDegree(w http.ResponseWriter, r *http.Request) {
	u, err := parseID(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "bad user_id", 400)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, map[string]any{"user_id": u, "degree": s.g.Degree(u)})
}

func (s *server) getPath(w http.ResponseWriter, r *http.Request) {
	src, err1 := parseID(r.URL.Query().Get("src"))
	dst, err2 := parseID(r.URL.Query().Get("dst"))
	if err1 != nil || err2 != nil {
		http.Error(w, "bad ids", 400)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, map[string]any{"src": src, "dst": dst, "distance": s.g.ShortestPath(src, dst)})
}

func (s *server) getStats(w http.ResponseWriter, r *http.Request) {
	samples, err := intParam(r, "samples", s.def.DiameterSamples)
	if err != nil || samples < 1 {
		http.Error(w, "bad samples", 400)
		return
	}
	s.mu.RLock()
	st := s.g.Stats(samples)
	s.mu.RUnlock()
	metrics.ObserveGraph(st.Vertices, st.Edges)
	writeJSON(w, st)
}

func (s *server) postUser(w http.ResponseWriter, r *http.Request) {
	var u profiles.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if strings.TrimSpace(u.Name) == "" || u.Age <= 0 {
		http.Error(w, "name and positive age required", 400)
		return
	}
	s.mu.Lock()
	if u.ID == 0 {
		u.ID = s.g.Users.NextID()
	}
	err := s.g.Users.Add(u)
	s.mu.Unlock()
	switch {
	case errors.Is(err, profiles.ErrDuplicateName), errors.Is(err, profiles.ErrDuplicateID):
		http.Error(w, err.Error(), 409)
		return
	case err != nil:
		http.Error(w, err.Error(), 500)
		return
	}
	s.log.Info("user registered", "user_id", u.ID, "name", u.Name)
	writeJSONStatus(w, http.StatusCreated, u)
}

func (s *server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad id", 400)
		return
	}
	s.mu.RLock()
	u, ok := s.g.Users.Get(id)
	s.mu.RUnlock()
	if !ok {
		http.Error(w, profiles.ErrNotFound.Error(), 404)
		return
	}
	writeJSON(w, u)
}

func (s *server) findUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := s.g.Users.FindByName(r.URL.Query().Get("name"))
	s.mu.RUnlock()
	if out == nil {
		out = []profiles.User{}
	}
	writeJSON(w, out)
}

func (s *server) getSuggest(w http.ResponseWriter, r *http.Request) {
	u, err := parseID(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "bad user_id", 400)
		return
	}
	k, err := intParam(r, "k", s.def.K)
	if err != nil {
		http.Error(w, "bad k", 400)
		return
	}
	radius, err := intParam(r, "radius", s.def.Radius)
	if err != nil {
		http.Error(w, "bad radius", 400)
		return
	}
	s.mu.RLock()
	res := s.svc.Suggestions(u, k, radius)
	s.mu.RUnlock()
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
