package polyjson

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Registry maps base shapes to their ordered discrimination rules and
// fallback shape. Rules are evaluated in registration order and the first
// match wins; when nothing matches, the fallback is used.
//
// A Registry is safe for concurrent use. The intended discipline is to define
// shapes and rules once at startup, call Freeze, and only decode afterwards.
type Registry struct {
	mu      sync.RWMutex
	shapes  map[string]*Shape
	entries map[string]*entry
	frozen  bool
}

type entry struct {
	rules    []Rule
	fallback string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{shapes: map[string]*Shape{}, entries: map[string]*entry{}}
}

// Default is the process-wide registry used by the package-level helpers.
var Default = NewRegistry()

// DefineShape adds a shape. The parent named by Extends must already be
// defined. Defining the same shape twice is allowed only with an identical
// definition.
func (r *Registry) DefineShape(s Shape) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if s.Name == "" {
		return &ConfigurationError{Reason: "shape name is empty"}
	}
	if prev, ok := r.shapes[s.Name]; ok {
		if sameDefinition(*prev, s) {
			return nil
		}
		return &ConfigurationError{Base: s.Name, Reason: "shape redefined with a different field list"}
	}
	var parent *Shape
	if s.Extends != "" {
		p, ok := r.shapes[s.Extends]
		if !ok {
			return &ConfigurationError{Base: s.Name, Reason: fmt.Sprintf("extends undefined shape %q", s.Extends)}
		}
		parent = p
	}
	ns := s
	ns.Fields = slices.Clone(s.Fields)
	ns.link(parent)
	r.shapes[s.Name] = &ns
	return nil
}

// Shape returns the defined shape with the given name.
func (r *Registry) Shape(name string) (*Shape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shapes[name]
	return s, ok
}

// Register appends rule to the ordered rule list of base. Identical rules are
// not deduplicated; a later duplicate simply never wins.
func (r *Registry) Register(base string, rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	e := r.entryLocked(base)
	e.rules = append(e.rules, rule)
	return nil
}

// SetFallback sets the shape used for base when no rule matches, replacing
// any previous fallback.
func (r *Registry) SetFallback(base, shape string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	r.entryLocked(base).fallback = shape
	return nil
}

func (r *Registry) entryLocked(base string) *entry {
	e, ok := r.entries[base]
	if !ok {
		e = &entry{}
		r.entries[base] = e
	}
	return e
}

// Freeze makes the registry read-only. Mutators return ErrFrozen afterwards.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Reset clears every shape and rule and unfreezes the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.shapes = map[string]*Shape{}
	r.entries = map[string]*entry{}
	r.frozen = false
	r.mu.Unlock()
}

// Rules returns a copy of base's rules in evaluation order.
func (r *Registry) Rules(base string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[base]; ok {
		return slices.Clone(e.rules)
	}
	return nil
}

// Fallback returns base's fallback shape name.
func (r *Registry) Fallback(base string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[base]
	if !ok || e.fallback == "" {
		return "", false
	}
	return e.fallback, true
}

// Bases returns the names of all configured base shapes, sorted.
func (r *Registry) Bases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for b := range r.entries {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the shape obj should be decoded as when declared as base.
func (r *Registry) Resolve(base string, obj map[string]any) (*Shape, error) {
	s, _, err := r.resolve(base, obj)
	return s, err
}

// resolve also reports the index of the matching rule (-1 for fallback).
func (r *Registry) resolve(base string, obj map[string]any) (*Shape, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, err := r.checkLocked(base)
	if err != nil {
		return nil, 0, err
	}
	target, idx := e.fallback, -1
	for i, rule := range e.rules {
		if rule.Match(obj) {
			target, idx = rule.Target(), i
			break
		}
	}
	s, err := r.targetLocked(base, target)
	if err != nil {
		return nil, 0, err
	}
	return s, idx, nil
}

// check verifies base can be decoded against at all.
func (r *Registry) check(base string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, err := r.checkLocked(base)
	return err
}

func (r *Registry) checkLocked(base string) (*entry, error) {
	e, ok := r.entries[base]
	if !ok || e.fallback == "" {
		return nil, &ConfigurationError{Base: base, Reason: "no fallback shape registered"}
	}
	return e, nil
}

func (r *Registry) targetLocked(base, target string) (*Shape, error) {
	s, ok := r.shapes[target]
	if !ok {
		return nil, &ConfigurationError{Base: base, Reason: fmt.Sprintf("target shape %q is not defined", target)}
	}
	if !s.Is(base) {
		return nil, &ConfigurationError{Base: base, Reason: fmt.Sprintf("target shape %q does not extend %q", target, base)}
	}
	return s, nil
}

// Validate reports every configuration problem that would make a decode fail:
// bases without fallback and rules or fallbacks naming undefined or unrelated
// shapes. It returns nil or Issues.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var iss Issues
	bases := make([]string, 0, len(r.entries))
	for b := range r.entries {
		bases = append(bases, b)
	}
	sort.Strings(bases)
	for _, b := range bases {
		e := r.entries[b]
		if e.fallback == "" {
			iss = AppendIssues(iss, newIssue(CodeConfiguration, "/"+b, "no fallback shape registered"))
		} else if _, err := r.targetLocked(b, e.fallback); err != nil {
			iss = AppendIssues(iss, newIssue(CodeConfiguration, "/"+b+"/fallback", err.(*ConfigurationError).Reason))
		}
		for i, rule := range e.rules {
			if _, err := r.targetLocked(b, rule.Target()); err != nil {
				iss = AppendIssues(iss, newIssue(CodeConfiguration, fmt.Sprintf("/%s/rules/%d", b, i), err.(*ConfigurationError).Reason))
			}
		}
	}
	if len(iss) == 0 {
		return nil
	}
	return iss
}

// DefineShape defines a shape on the Default registry.
func DefineShape(s Shape) error { return Default.DefineShape(s) }

// Register appends a rule on the Default registry.
func Register(base string, rule Rule) error { return Default.Register(base, rule) }

// SetFallback sets a fallback on the Default registry.
func SetFallback(base, shape string) error { return Default.SetFallback(base, shape) }
