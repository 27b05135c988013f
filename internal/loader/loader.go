// Package loader ingests edges and profiles from CSV files and saves or
// restores whole graphs as JSON snapshots.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pandharkardeep/minisocial/internal/profiles"
)

// ErrMalformedRow is wrapped by every parse failure, together with its line.
var ErrMalformedRow = errors.New("loader: malformed row")

// EdgeAdder receives parsed edges.
type EdgeAdder interface {
	AddEdge(u, v uint64) bool
}

// UserAdder receives parsed profiles.
type UserAdder interface {
	Add(u profiles.User) error
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// LoadEdges reads "u,v" rows into g and returns the number of rows read.
// Blank lines are skipped; extra columns are ignored.
func LoadEdges(r io.Reader, g EdgeAdder) (int, error) {
	cr := newReader(r)
	n := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 2 {
			return n, fmt.Errorf("%w: line %d: want 2 columns, got %d", ErrMalformedRow, line, len(rec))
		}
		u, err := parseID(rec[0])
		if err != nil {
			return n, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		v, err := parseID(rec[1])
		if err != nil {
			return n, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		g.AddEdge(u, v)
		n++
	}
}

// LoadUsers reads a profile CSV with a header row and the columns
// id,name,age,city,tags[,email]. Tags are ';'-separated.
func LoadUsers(r io.Reader, reg UserAdder) (int, error) {
	cr := newReader(r)
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: header: %v", ErrMalformedRow, err)
	}
	n := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		u, err := parseUser(rec)
		if err != nil {
			return n, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		if err := reg.Add(u); err != nil {
			return n, fmt.Errorf("line %d: user %d: %w", line, u.ID, err)
		}
		n++
	}
}

func parseUser(rec []string) (profiles.User, error) {
	if len(rec) < 4 {
		return profiles.User{}, fmt.Errorf("want at least 4 columns, got %d", len(rec))
	}
	id, err := parseID(rec[0])
	if err != nil {
		return profiles.User{}, err
	}
	age, err := strconv.Atoi(strings.TrimSpace(rec[2]))
	if err != nil {
		return profiles.User{}, err
	}
	u := profiles.User{ID: id, Name: rec[1], Age: age, City: rec[3]}
	if len(rec) > 4 {
		u.Tags = profiles.SplitTags(rec[4])
	}
	if len(rec) > 5 {
		u.Email = rec[5]
	}
	return u, nil
}

// LoadEdgesFile opens path and calls LoadEdges.
func LoadEdgesFile(path string, g EdgeAdder) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open edges %s: %w", path, err)
	}
	defer f.Close()
	n, err := LoadEdges(f, g)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// LoadUsersFile opens path and calls LoadUsers.
func LoadUsersFile(path string, reg UserAdder) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open users %s: %w", path, err)
	}
	defer f.Close()
	n, err := LoadUsers(f, reg)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
