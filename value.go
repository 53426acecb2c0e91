package polyjson

import (
	"bytes"

	j "github.com/goccy/go-json"
)

// Value is a decoded object: the shape it was resolved to and one string per
// field of that shape. Each Value is created by a single decode call and owned
// by its caller; values never share storage.
type Value struct {
	shape  *Shape
	fields []string
}

// NewValue returns a Value of shape s with every field empty.
func NewValue(s *Shape) *Value {
	return &Value{shape: s, fields: make([]string, len(s.all))}
}

// Shape returns the shape the value holds.
func (v *Value) Shape() *Shape { return v.shape }

// Tag returns the name of the shape the value holds.
func (v *Value) Tag() Tag { return v.shape.Tag() }

// Get returns the value of field and whether the shape declares it.
func (v *Value) Get(field string) (string, bool) {
	i, ok := v.shape.index[field]
	if !ok {
		return "", false
	}
	return v.fields[i], true
}

// Field returns the value of field, or "" when the shape does not declare it.
func (v *Value) Field(field string) string {
	s, _ := v.Get(field)
	return s
}

// Set assigns field and reports whether the shape declares it.
func (v *Value) Set(field, s string) bool {
	i, ok := v.shape.index[field]
	if !ok {
		return false
	}
	v.fields[i] = s
	return true
}

// Map returns a copy of the fields keyed by name.
func (v *Value) Map() map[string]string {
	m := make(map[string]string, len(v.fields))
	for i, f := range v.shape.all {
		m[f] = v.fields[i]
	}
	return m
}

// MarshalJSON encodes the fields as an object in shape field order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range v.shape.all {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := j.Marshal(f)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		s, err := j.Marshal(v.fields[i])
		if err != nil {
			return nil, err
		}
		b.Write(s)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
