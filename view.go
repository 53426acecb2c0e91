package polyjson

// View presents a Value through the field set of one shape the value holds.
// Views do not copy: Set through any view is visible through every other view
// of the same Value.
type View struct {
	v     *Value
	shape *Shape
}

// AsBase returns the view of v restricted to its base shape. It always
// succeeds.
func AsBase(v *Value) View { return View{v: v, shape: v.shape.Root()} }

// TypeTag returns the shape v actually holds. Callers branch on it before
// narrowing.
func TypeTag(v *Value) Tag { return v.Tag() }

// Narrow returns the view of v as shape. It fails with *NarrowingError unless
// v's shape is shape or extends it.
func Narrow(v *Value, shape string) (View, error) {
	for s := v.shape; s != nil; s = s.parent {
		if s.Name == shape {
			return View{v: v, shape: s}, nil
		}
	}
	return View{}, &NarrowingError{Have: v.Tag(), Want: shape}
}

// Shape returns the shape the view exposes.
func (w View) Shape() *Shape { return w.shape }

// Value returns the underlying value.
func (w View) Value() *Value { return w.v }

// Tag returns the shape the underlying value actually holds, which may be
// richer than the view.
func (w View) Tag() Tag { return w.v.Tag() }

// Get returns field if the view exposes it.
func (w View) Get(field string) (string, bool) {
	if !w.shape.HasField(field) {
		return "", false
	}
	return w.v.Get(field)
}

// Field returns field, or "" when the view does not expose it.
func (w View) Field(field string) string {
	s, _ := w.Get(field)
	return s
}

// Set assigns field on the underlying value if the view exposes it.
func (w View) Set(field, s string) bool {
	if !w.shape.HasField(field) {
		return false
	}
	return w.v.Set(field, s)
}

// Fields lists the fields the view exposes.
func (w View) Fields() []string { return w.shape.AllFields() }
