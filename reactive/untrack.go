package reactive

// Untrack runs fn without recording dependencies. The suppression is dynamic:
// it covers every read made while fn is on the stack, however deep. Writes made
// inside fn still trigger as usual, which is how an effect can write a derived
// property without subscribing to its own output.
func Untrack[T any](rt *Runtime, fn func() T) T {
	rt.pushFrame(nil)
	defer rt.popFrame()
	return fn()
}

// Untracked is Untrack for functions without a result.
func (rt *Runtime) Untracked(fn func()) {
	rt.pushFrame(nil)
	defer rt.popFrame()
	fn()
}

// Peek reads key of o without subscribing.
func Peek(o *Object, key string) any {
	return Untrack(o.rt, func() any {
		return o.Get(key)
	})
}
