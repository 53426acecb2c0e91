package polyjson

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Rule is a discrimination rule: when it matches a JSON object, the object is
// decoded as the Target shape.
type Rule interface {
	Match(obj map[string]any) bool
	Target() string
	String() string
}

// PresenceRule matches objects that contain Field, whatever its value.
type PresenceRule struct {
	Field string
	Shape string
}

// Present returns a PresenceRule selecting target when field is present.
func Present(field, target string) PresenceRule { return PresenceRule{Field: field, Shape: target} }

func (r PresenceRule) Match(obj map[string]any) bool {
	_, ok := obj[r.Field]
	return ok
}

func (r PresenceRule) Target() string { return r.Shape }

func (r PresenceRule) String() string {
	return fmt.Sprintf("has(%s) -> %s", r.Field, r.Shape)
}

// ValueRule matches objects whose discriminator Field equals Value. Strings are
// compared exactly. Numbers are compared numerically against Value parsed as a
// number, so an enum may be sent as "Derived" or as its ordinal, and 1, 1.0 and
// 1e0 all match "1" whether the object came from bytes (json.Number) or from
// an encoding/json map (float64).
type ValueRule struct {
	Field string
	Value string
	Shape string
}

// Equals returns a ValueRule selecting target when field equals value.
func Equals(field, value, target string) ValueRule {
	return ValueRule{Field: field, Value: value, Shape: target}
}

func (r ValueRule) Match(obj map[string]any) bool {
	switch v := obj[r.Field].(type) {
	case string:
		return v == r.Value
	case json.Number:
		f, err := v.Float64()
		return err == nil && r.number(f)
	case float64:
		return r.number(v)
	default:
		return false
	}
}

func (r ValueRule) number(f float64) bool {
	want, err := strconv.ParseFloat(r.Value, 64)
	return err == nil && want == f
}

func (r ValueRule) Target() string { return r.Shape }

func (r ValueRule) String() string {
	return fmt.Sprintf("%s == %q -> %s", r.Field, r.Value, r.Shape)
}
