package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pandharkardeep/minisocial/internal/graph"
	"github.com/pandharkardeep/minisocial/internal/profiles"
)

// Snapshot is the JSON form of a whole graph. Each edge appears once, low id first.
type Snapshot struct {
	Users []profiles.User `json:"users"`
	Edges [][2]uint64     `json:"edges"`
}

// TakeSnapshot captures g's profiles and edges.
func TakeSnapshot(g *graph.SocialGraph) Snapshot {
	return Snapshot{Users: g.Users.All(), Edges: g.Edges()}
}

// Restore builds a fresh graph from s.
func (s Snapshot) Restore(opts ...graph.Option) (*graph.SocialGraph, error) {
	g := graph.New(opts...)
	for _, u := range s.Users {
		if err := g.Users.Add(u); err != nil {
			return nil, fmt.Errorf("restore user %d: %w", u.ID, err)
		}
	}
	for _, e := range s.Edges {
		g.AddEdge(e[0], e[1])
	}
	return g, nil
}

// SaveJSON writes g as an indented JSON snapshot.
func SaveJSON(w io.Writer, g *graph.SocialGraph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(TakeSnapshot(g)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadJSON decodes a snapshot and restores it into a new graph.
func LoadJSON(r io.Reader, opts ...graph.Option) (*graph.SocialGraph, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s.Restore(opts...)
}

func SaveJSONFile(path string, g *graph.SocialGraph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", path, err)
	}
	if err := SaveJSON(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadJSONFile(path string, opts ...graph.Option) (*graph.SocialGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()
	return LoadJSON(f, opts...)
}

// ExportSuggestions writes ids as recommendation_id,name,age,city rows.
// Ids without a profile get their id as name and empty details.
func ExportSuggestions(w io.Writer, ids []uint64, reg profiles.Store) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"recommendation_id", "name", "age", "city"}); err != nil {
		return err
	}
	for _, id := range ids {
		sid := strconv.FormatUint(id, 10)
		row := []string{sid, sid, "0", ""}
		if u, ok := reg.Get(id); ok {
			row = []string{sid, u.Name, strconv.Itoa(u.Age), u.City}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
