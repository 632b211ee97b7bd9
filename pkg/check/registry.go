package check

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps check IDs to checks. It is filled once at start-up and then
// only read.
type Registry struct {
	checks map[string]*Check
}

func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]*Check)}
}

// Register adds checks, rejecting empty or duplicate IDs.
func (r *Registry) Register(cs ...*Check) error {
	for _, c := range cs {
		if c == nil {
			return fmt.Errorf("register: nil check")
		}
		if c.ID == "" {
			return fmt.Errorf("register: check without an ID")
		}
		if _, dup := r.checks[c.ID]; dup {
			return fmt.Errorf("register: duplicate check ID %q", c.ID)
		}
		r.checks[c.ID] = c
	}
	return nil
}

// MustRegister is Register that panics on error, for static registration.
func (r *Registry) MustRegister(cs ...*Check) {
	if err := r.Register(cs...); err != nil {
		panic(err)
	}
}

// Get returns the check with the given ID.
func (r *Registry) Get(id string) (*Check, bool) {
	c, ok := r.checks[id]
	return c, ok
}

func (r *Registry) Len() int {
	return len(r.checks)
}

// All returns every check ordered by ID.
func (r *Registry) All() []*Check {
	out := make([]*Check, 0, len(r.checks))
	for _, c := range r.checks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Select returns a registry restricted by include and exclude lists of IDs
// or ID prefixes ending in "/". An empty include list keeps everything.
func (r *Registry) Select(include, exclude []string) *Registry {
	out := NewRegistry()
	for id, c := range r.checks {
		if len(include) > 0 && !matchesAny(id, include) {
			continue
		}
		if matchesAny(id, exclude) {
			continue
		}
		out.checks[id] = c
	}
	return out
}

func matchesAny(id string, patterns []string) bool {
	for _, p := range patterns {
		if p == id || (strings.HasSuffix(p, "/") && strings.HasPrefix(id, p)) {
			return true
		}
	}
	return false
}
