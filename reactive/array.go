package reactive

import (
	"fmt"
	"strconv"
)

// Array is the reactive wrapper of a *[]any. Elements are keyed by their
// decimal index and the length by LengthKey.
type Array struct {
	rt  *Runtime
	id  uint64
	raw *[]any
}

func (a *Array) isProxy() {}

func (a *Array) Runtime() *Runtime { return a.rt }
func (a *Array) ID() uint64        { return a.id }
func (a *Array) Raw() any          { return a.raw }

// Get returns element i, wrapped like Object.Get, or nil when i is out of range.
func (a *Array) Get(i int) any {
	a.rt.track(a.id, strconv.Itoa(i))
	s := *a.raw
	if i < 0 || i >= len(s) {
		return nil
	}
	return a.rt.wrapChild(s[i], func(box *[]any) {
		s[i] = box
	})
}

// Len returns the length and subscribes to it.
func (a *Array) Len() int {
	a.rt.track(a.id, LengthKey)
	return len(*a.raw)
}

// Set stores v at i. Setting past the end grows the array, filling the gap
// with nil, and triggers the length plus any new index that already has a
// subscriber. A negative index panics.
func (a *Array) Set(i int, v any) {
	if i < 0 {
		panic(fmt.Sprintf("reactive: negative array index %d", i))
	}
	v = ToRaw(v)
	s := *a.raw
	if i < len(s) {
		if a.rt.opts.equal(s[i], v) {
			a.rt.counters.skippedWrites.Add(1)
			return
		}
		s[i] = v
		a.rt.trigger(a.id, strconv.Itoa(i))
		return
	}

	// reads past the end subscribe too, so only those indices need a trigger
	var keys []string
	for _, key := range a.rt.registry.keys(a.id) {
		if j, ok := parseIndex(key); ok && j >= len(s) && j <= i {
			keys = append(keys, key)
		}
	}
	s = append(s, make([]any, i-len(s)+1)...)
	s[i] = v
	*a.raw = s
	a.rt.trigger(a.id, append(keys, LengthKey)...)
}

// Push appends vs and triggers the new indices and the length.
func (a *Array) Push(vs ...any) {
	if len(vs) == 0 {
		return
	}
	s := *a.raw
	keys := make([]string, 0, len(vs)+1)
	for _, v := range vs {
		keys = append(keys, strconv.Itoa(len(s)))
		s = append(s, ToRaw(v))
	}
	*a.raw = s
	a.rt.trigger(a.id, append(keys, LengthKey)...)
}

// Pop removes and returns the last raw element, or nil when the array is empty.
func (a *Array) Pop() any {
	s := *a.raw
	if len(s) == 0 {
		return nil
	}
	last := len(s) - 1
	v := s[last]
	s[last] = nil
	*a.raw = s[:last]
	a.rt.trigger(a.id, strconv.Itoa(last), LengthKey)
	return v
}

// Each calls fn for every element until it returns false. It subscribes to the
// length and to every element it visits.
func (a *Array) Each(fn func(i int, v any) bool) {
	n := a.Len()
	for i := 0; i < n; i++ {
		if !fn(i, a.Get(i)) {
			return
		}
	}
}

// Values returns every element, wrapped, subscribing like Each.
func (a *Array) Values() []any {
	out := make([]any, 0, len(*a.raw))
	a.Each(func(_ int, v any) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Index reads element i and asserts its type.
func Index[T any](a *Array, i int) (T, bool) {
	v, ok := a.Get(i).(T)
	return v, ok
}
