package myapi

import (
	polyjson "github.com/reoring/polyjson"
)

// Field names shared by both shape families.
const (
	FieldBaseProp1    = "BaseProp1"
	FieldBaseProp2    = "BaseProp2"
	FieldBaseProp3    = "BaseProp3"
	FieldDerivedPropA = "DerivedPropA"
)

// Base is the capability set every record offers.
type Base interface {
	BaseProp1() string
	BaseProp2() string
	BaseProp3() string
	SetBaseProp1(string)
	SetBaseProp2(string)
	SetBaseProp3(string)
	// Kind is the shape the record actually holds.
	Kind() Kind
	Value() *polyjson.Value
}

// Derived is the capability set of the extended shapes.
type Derived interface {
	Base
	DerivedPropA() string
	SetDerivedPropA(string)
}

// Record exposes a decoded value through Base. Setters write through to the
// value, so every Record and DerivedRecord over it observes the change.
type Record struct {
	v    *polyjson.Value
	kind Kind
}

// NewRecord wraps v. It fails when v's shape is not one this package knows.
func NewRecord(v *polyjson.Value) (*Record, error) {
	k, err := KindOf(v.Tag())
	if err != nil {
		return nil, err
	}
	return &Record{v: v, kind: k}, nil
}

func (r *Record) BaseProp1() string     { return r.v.Field(FieldBaseProp1) }
func (r *Record) BaseProp2() string     { return r.v.Field(FieldBaseProp2) }
func (r *Record) BaseProp3() string     { return r.v.Field(FieldBaseProp3) }
func (r *Record) SetBaseProp1(s string) { r.v.Set(FieldBaseProp1, s) }
func (r *Record) SetBaseProp2(s string) { r.v.Set(FieldBaseProp2, s) }
func (r *Record) SetBaseProp3(s string) { r.v.Set(FieldBaseProp3, s) }

// Kind returns the shape the record holds.
func (r *Record) Kind() Kind { return r.kind }

// Value returns the underlying decoded value.
func (r *Record) Value() *polyjson.Value { return r.v }

// MarshalJSON encodes the fields of the held shape.
func (r *Record) MarshalJSON() ([]byte, error) { return r.v.MarshalJSON() }

// DerivedRecord is a Record whose value holds an extended shape.
type DerivedRecord struct {
	*Record
}

func (d DerivedRecord) DerivedPropA() string     { return d.v.Field(FieldDerivedPropA) }
func (d DerivedRecord) SetDerivedPropA(s string) { d.v.Set(FieldDerivedPropA, s) }

// AsDerived narrows b to the variant of its shape family. It returns a
// *polyjson.NarrowingError when b holds a base shape.
func AsDerived(b Base) (Derived, error) {
	want := ShapeDerived
	if root := b.Value().Shape().Root().Name; root == ShapeMyType {
		want = ShapeMyTypeVariant
	}
	if _, err := polyjson.Narrow(b.Value(), want); err != nil {
		return nil, err
	}
	switch r := b.(type) {
	case *Record:
		return DerivedRecord{r}, nil
	case DerivedRecord:
		return r, nil
	}
	rec, err := NewRecord(b.Value())
	if err != nil {
		return nil, err
	}
	return DerivedRecord{rec}, nil
}

// Wrap returns v as a Base. Values holding an extended shape are wrapped as
// DerivedRecord, so they also satisfy Derived; base-shaped values do not.
func Wrap(v *polyjson.Value) (Base, error) {
	r, err := NewRecord(v)
	if err != nil {
		return nil, err
	}
	if r.kind.Variant() {
		return DerivedRecord{r}, nil
	}
	return r, nil
}

// Records wraps each value with Wrap.
func Records(vals []*polyjson.Value) ([]Base, error) {
	out := make([]Base, 0, len(vals))
	for _, v := range vals {
		b, err := Wrap(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
