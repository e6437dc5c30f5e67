package reactive

import (
	"maps"
	"slices"
)

// Object is the reactive wrapper of a map[string]any.
// Reads made while an effect runs subscribe it; writes trigger subscribers.
type Object struct {
	rt  *Runtime
	id  uint64
	raw map[string]any
}

func (o *Object) isProxy() {}

func (o *Object) Runtime() *Runtime { return o.rt }
func (o *Object) ID() uint64        { return o.id }
func (o *Object) Raw() any          { return o.raw }

// Get returns the value at key. Nested objects and arrays come back wrapped,
// and the same child proxy is returned on every read.
func (o *Object) Get(key string) any {
	o.rt.track(o.id, key)
	return o.rt.wrapChild(o.raw[key], func(box *[]any) {
		o.raw[key] = box
	})
}

// Has reports whether key is present. It subscribes to key.
func (o *Object) Has(key string) bool {
	o.rt.track(o.id, key)
	_, ok := o.raw[key]
	return ok
}

// Set stores v at key. Proxies are stored as their raw target. Writing a value
// equal to the current one does nothing; otherwise subscribers of key run, and
// subscribers of the key set run too when key is new.
func (o *Object) Set(key string, v any) {
	v = ToRaw(v)
	old, had := o.raw[key]
	if had && o.rt.opts.equal(old, v) {
		o.rt.counters.skippedWrites.Add(1)
		return
	}
	o.raw[key] = v
	if had {
		o.rt.trigger(o.id, key)
		return
	}
	o.rt.trigger(o.id, key, iterateKey)
}

// Delete removes key, triggering subscribers of key and of the key set.
func (o *Object) Delete(key string) {
	if _, ok := o.raw[key]; !ok {
		return
	}
	delete(o.raw, key)
	o.rt.trigger(o.id, key, iterateKey)
}

// Keys returns the keys in sorted order. It subscribes to additions and removals,
// not to value changes.
func (o *Object) Keys() []string {
	o.rt.track(o.id, iterateKey)
	return slices.Sorted(maps.Keys(o.raw))
}

// Len subscribes like Keys.
func (o *Object) Len() int {
	o.rt.track(o.id, iterateKey)
	return len(o.raw)
}

// Object returns the child object at key, or nil if the value is not an object.
func (o *Object) Object(key string) *Object {
	child, _ := o.Get(key).(*Object)
	return child
}

// Array returns the child array at key, or nil if the value is not an array.
func (o *Object) Array(key string) *Array {
	child, _ := o.Get(key).(*Array)
	return child
}

// Field reads key and asserts its type.
func Field[T any](o *Object, key string) (T, bool) {
	v, ok := o.Get(key).(T)
	return v, ok
}
