package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandharkardeep/minisocial/internal/graph"
	"github.com/pandharkardeep/minisocial/internal/profiles"
	"github.com/pandharkardeep/minisocial/internal/pymk"
)

func newTestHandler(t *testing.T) (http.Handler, *bytes.Buffer) {
	t.Helper()
	g := graph.New()
	for _, e := range [][2]uint64{{1, 2}, {1, 3}, {2, 4}, {3, 4}, {2, 5}, {3, 6}} {
		g.AddEdge(e[0], e[1])
	}
	for _, u := range []profiles.User{
		{ID: 1, Name: "ana", Age: 29, Tags: []string{"go", "chess", "jazz"}},
		{ID: 4, Name: "bea", Age: 31, Tags: []string{"chess"}},
		{ID: 5, Name: "cai", Age: 22, Tags: []string{"go", "chess"}},
		{ID: 6, Name: "dov", Age: 40},
	} {
		require.NoError(t, g.Users.Add(u))
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	svc := pymk.NewService(g, g.Users, pymk.PYMKConfig{Weights: pymk.DefaultWeights, CacheSize: 8}, logger)

	mux := http.NewServeMux()
	AttachRoutes(mux, svc, g, Defaults{K: 5, Radius: 3, DiameterSamples: 5}, logger)
	return RequestLog(logger, mux), &logs
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestFriends(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/friends", `{"u":1,"v":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"ok": true}, decode[map[string]bool](t, rec))
	rec = do(t, h, http.MethodPost, "/friends", `{"u":7,"v":1}`)
	assert.Equal(t, map[string]bool{"ok": false}, decode[map[string]bool](t, rec), "already friends")

	rec = do(t, h, http.MethodGet, "/friends?user_id=1", "")
	assert.Equal(t, []uint64{7, 3, 2}, decode[[]uint64](t, rec), "newest friend first")
	rec = do(t, h, http.MethodGet, "/friends?user_id=999", "")
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/friends?u=1&v=2", "")
	assert.Equal(t, map[string]bool{"friends": true}, decode[map[string]bool](t, rec))
	rec = do(t, h, http.MethodGet, "/friends?u=1&v=4", "")
	assert.Equal(t, map[string]bool{"friends": false}, decode[map[string]bool](t, rec))

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/friends", `{bad`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/friends?user_id=x", "").Code)
}

func TestDegreeAndPath(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/degree?user_id=2", "")
	assert.Equal(t, 3, decode[map[string]int](t, rec)["degree"])

	rec = do(t, h, http.MethodGet, "/path?src=5&dst=6", "")
	assert.Equal(t, 4, decode[map[string]int](t, rec)["distance"])
	rec = do(t, h, http.MethodGet, "/path?src=1&dst=999", "")
	assert.Equal(t, -1, decode[map[string]int](t, rec)["distance"])

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/path?src=1", "").Code)
}

func TestStats(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[graph.Stats](t, rec)
	assert.Equal(t, 6, st.Vertices)
	assert.Equal(t, 6, st.Edges)
	assert.Equal(t, 1, st.Components)
	assert.InDelta(t, 2.0, st.AvgDegree, 1e-9)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/stats?samples=0", "").Code)
}

func TestSuggest(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/suggest?user_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	res := decode[[]pymk.Suggestion](t, rec)
	require.Len(t, res, 3)
	assert.Equal(t, uint64(4), res[0].UserID)
	assert.Equal(t, 2, res[0].Why.MutualFriends)

	rec = do(t, h, http.MethodGet, "/suggest?user_id=1&k=1", "")
	assert.Len(t, decode[[]pymk.Suggestion](t, rec), 1)
	rec = do(t, h, http.MethodGet, "/suggest?user_id=1&radius=1", "")
	assert.Equal(t, "[]\n", rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/suggest?user_id=1&k=many", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/suggest", "").Code)
}

func TestUsers(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/users", `{"name":"eli","age":30,"city":"Lima","tags":["go"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decode[profiles.User](t, rec)
	assert.Equal(t, uint64(7), u.ID, "next id after the highest registered")

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/users", `{"name":"eli","age":30}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/users", `{"id":4,"name":"new","age":30}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/users", `{"name":" ","age":30}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/users", `{"name":"zoe","age":0}`).Code)

	rec = do(t, h, http.MethodGet, "/users/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lima", decode[profiles.User](t, rec).City)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/users/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/users/abc", "").Code)

	rec = do(t, h, http.MethodGet, "/users?name=A", "")
	var names []string
	for _, u := range decode[[]profiles.User](t, rec) {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"ana", "bea", "cai"}, names)
	assert.Equal(t, "[]\n", do(t, h, http.MethodGet, "/users?name=zz", "").Body.String())
}

// TestSuggest_AfterRegister: a new profile changes tag overlap, and the
// next /suggest must reflect it even though no edge changed.
func TestSuggest_AfterRegister(t *testing.T) {
	h, _ := newTestHandler(t)
	ids := func() []uint64 {
		var out []uint64
		for _, s := range decode[[]pymk.Suggestion](t, do(t, h, http.MethodGet, "/suggest?user_id=1", "")) {
			out = append(out, s.UserID)
		}
		return out
	}
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/friends", `{"u":3,"v":8}`).Code)
	// 8 has no profile yet and ties with 6 at score 0
	require.Equal(t, []uint64{4, 5, 8, 6}, ids())

	rec := do(t, h, http.MethodPost, "/users", `{"id":8,"name":"gus","age":20,"tags":["go","chess","jazz"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	// 2*1 + 3 - 2 = 3 ties with 4, higher id first
	assert.Equal(t, []uint64{8, 4, 5, 6}, ids())
}

func TestRequestLog_RequestID(t *testing.T) {
	h, logs := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	assert.Contains(t, logs.String(), `"request_id":"abc-123"`)

	rec = do(t, h, http.MethodGet, "/users/99", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36, "generated uuid")
	assert.Contains(t, logs.String(), `"status":404`)
}
