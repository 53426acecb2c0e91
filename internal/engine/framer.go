package engine

// Framer tracks container nesting for drivers whose underlying decoder does
// not distinguish object keys from string values.
type Framer struct {
	stack []framerFrame
}

type framerFrame struct {
	kind         containerKind
	expectingKey bool
}

// Open pushes a container.
func (f *Framer) Open(object bool) {
	if object {
		f.stack = append(f.stack, framerFrame{kind: kindObject, expectingKey: true})
		return
	}
	f.stack = append(f.stack, framerFrame{kind: kindArray})
}

// Close pops a container; the container itself completes a value in its parent.
func (f *Framer) Close() {
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.Value()
}

// Key reports whether a string token at the current position is an object
// key, and records it as consumed.
func (f *Framer) Key() bool {
	n := len(f.stack)
	if n == 0 || !f.stack[n-1].expectingKey {
		return false
	}
	f.stack[n-1].expectingKey = false
	return true
}

// Value records that a value completed at the current position.
func (f *Framer) Value() {
	if n := len(f.stack); n > 0 && f.stack[n-1].kind == kindObject {
		f.stack[n-1].expectingKey = true
	}
}
