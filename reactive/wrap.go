package reactive

// State wraps v for rt. Objects are map[string]any and arrays are *[]any.
// Wrapping the same raw target twice returns the same proxy and a proxy is
// returned as is. Anything else is returned unchanged, bare []any included:
// a slice header has no identity of its own, so pass a pointer to it.
func State(rt *Runtime, v any) any {
	switch x := v.(type) {
	case *Object, *Array:
		return v
	case map[string]any:
		if x == nil {
			return v
		}
		return rt.object(x)
	case *[]any:
		if x == nil {
			return v
		}
		return rt.array(x)
	}
	return v
}

// NewObject wraps m, creating an empty map when m is nil.
func NewObject(rt *Runtime, m map[string]any) *Object {
	if m == nil {
		m = map[string]any{}
	}
	return rt.object(m)
}

// NewArray wraps s, creating an empty slice when s is nil.
func NewArray(rt *Runtime, s *[]any) *Array {
	if s == nil {
		s = &[]any{}
	}
	return rt.array(s)
}

// IsReactive reports whether v is a proxy. Raw data is never reactive, including
// nested values of a proxy's raw target: those are wrapped when they are read.
func IsReactive(v any) bool {
	switch x := v.(type) {
	case *Object:
		return x != nil
	case *Array:
		return x != nil
	}
	return false
}

// ToRaw returns the raw target behind a proxy, or v itself. It never tracks.
// Mutating the raw target bypasses the scheduler; call Notify afterwards.
func ToRaw(v any) any {
	if IsReactive(v) {
		return v.(Proxy).Raw()
	}
	return v
}

// wrapChild turns a nested container into its proxy. A []any has no stable
// identity of its own so it is boxed and the box is stored back through store.
func (rt *Runtime) wrapChild(v any, store func(box *[]any)) any {
	switch x := v.(type) {
	case map[string]any:
		if x != nil {
			return rt.object(x)
		}
	case *[]any:
		if x != nil {
			return rt.array(x)
		}
	case []any:
		box := &x
		store(box)
		return rt.array(box)
	}
	return v
}
