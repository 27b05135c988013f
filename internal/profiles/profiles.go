// Package profiles holds user profile records and the id/name registry.
package profiles

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrDuplicateName = errors.New("profiles: name already registered")
	ErrDuplicateID   = errors.New("profiles: id already registered")
	ErrNotFound      = errors.New("profiles: user not found")
)

type User struct {
	ID    uint64   `json:"id"`
	Name  string   `json:"name"`
	Age   int      `json:"age"`
	City  string   `json:"city"`
	Tags  []string `json:"tags"`
	Email string   `json:"email,omitempty"`
}

// Store is the lookup surface the suggester needs. Version changes
// whenever a profile is added.
type Store interface {
	Get(id uint64) (User, bool)
	Version() uint64
}

// Registry maps id to User and enforces unique names. Not safe for
// concurrent use.
type Registry struct {
	users   map[uint64]User
	names   map[string]struct{}
	nextID  uint64
	version uint64
}

func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[uint64]User),
		names:  make(map[string]struct{}),
		nextID: 1,
	}
}

// Add registers u. It fails if the name or the id is already taken.
func (r *Registry) Add(u User) error {
	if _, ok := r.names[u.Name]; ok {
		return ErrDuplicateName
	}
	if _, ok := r.users[u.ID]; ok {
		return ErrDuplicateID
	}
	u.Tags = append([]string(nil), u.Tags...)
	r.users[u.ID] = u
	r.names[u.Name] = struct{}{}
	r.version++
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	return nil
}

func (r *Registry) Get(id uint64) (User, bool) {
	u, ok := r.users[id]
	return u, ok
}

// Version counts successful Adds.
func (r *Registry) Version() uint64 { return r.version }

func (r *Registry) NameExists(name string) bool {
	_, ok := r.names[name]
	return ok
}

// NextID returns an id greater than every registered one and reserves it.
func (r *Registry) NextID() uint64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *Registry) Len() int { return len(r.users) }

// All returns every user ordered by id.
func (r *Registry) All() []User {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindByName returns users whose name contains part, case-insensitively,
// ordered by id.
func (r *Registry) FindByName(part string) []User {
	part = strings.ToLower(part)
	var out []User
	for _, u := range r.All() {
		if strings.Contains(strings.ToLower(u.Name), part) {
			out = append(out, u)
		}
	}
	return out
}

// SplitTags splits a ';'-separated tag list, dropping empty tokens.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ";") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
