package myapi

import (
	"fmt"
	"strconv"

	polyjson "github.com/reoring/polyjson"
)

// Kind enumerates the shapes this API returns.
type Kind int

const (
	KindBase Kind = iota
	KindDerived
	KindMyType
	KindMyTypeVariant
)

// Shape names, which are also the decoded values' tags.
const (
	ShapeBase          = "Base"
	ShapeDerived       = "Derived"
	ShapeMyType        = "MyType"
	ShapeMyTypeVariant = "MyTypeVariant"
)

var kindNames = [...]string{ShapeBase, ShapeDerived, ShapeMyType, ShapeMyTypeVariant}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind maps a shape name to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("myapi: unknown kind %q", s)
}

// KindOf returns the Kind of a decoded value's tag.
func KindOf(t polyjson.Tag) (Kind, error) { return ParseKind(string(t)) }

// Variant reports whether k is one of the extended shapes.
func (k Kind) Variant() bool { return k == KindDerived || k == KindMyTypeVariant }

// MarshalText encodes the kind as its shape name.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("myapi: invalid kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText accepts a shape name.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
