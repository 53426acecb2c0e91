package polyjson

import "slices"

// Tag identifies the shape a decoded value actually holds. It is the shape's
// name.
type Tag string

// Shape is a named record of string fields. A shape that Extends another
// inherits all of the parent's fields, in order, before its own.
type Shape struct {
	Name    string
	Extends string
	Fields  []string
	// Validate maps field names to go-playground/validator tags. It is only
	// consulted by decoders running with DecodeOpt.Strict.
	Validate map[string]string

	parent *Shape
	all    []string
	index  map[string]int
	checks map[string]string
}

// Tag returns the shape name as a Tag.
func (s *Shape) Tag() Tag { return Tag(s.Name) }

// Parent returns the extended shape, or nil for a base shape.
func (s *Shape) Parent() *Shape { return s.parent }

// Root returns the base shape at the top of the Extends chain.
func (s *Shape) Root() *Shape {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// AllFields returns every field of the shape, inherited ones first.
func (s *Shape) AllFields() []string { return slices.Clone(s.all) }

// HasField reports whether name is one of the shape's fields.
func (s *Shape) HasField(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Is reports whether the shape is name or extends it, directly or not.
func (s *Shape) Is(name string) bool {
	for c := s; c != nil; c = c.parent {
		if c.Name == name {
			return true
		}
	}
	return false
}

// link resolves the inherited field list against an already defined parent.
func (s *Shape) link(parent *Shape) {
	s.parent = parent
	s.all = nil
	s.checks = map[string]string{}
	if parent != nil {
		s.all = append(s.all, parent.all...)
		for k, v := range parent.checks {
			s.checks[k] = v
		}
	}
	for _, f := range s.Fields {
		if !slices.Contains(s.all, f) {
			s.all = append(s.all, f)
		}
	}
	for k, v := range s.Validate {
		s.checks[k] = v
	}
	s.index = make(map[string]int, len(s.all))
	for i, f := range s.all {
		s.index[f] = i
	}
}

func sameDefinition(a, b Shape) bool {
	return a.Name == b.Name && a.Extends == b.Extends && slices.Equal(a.Fields, b.Fields)
}
