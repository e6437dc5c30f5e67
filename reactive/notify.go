package reactive

// Notify triggers keys of p as if they had been written. With no keys it
// triggers every key of p that currently has a subscriber, and each affected
// effect runs once. It pairs with ToRaw: mutate the raw target in bulk, then
// Notify to bring effects up to date in a single pass.
func Notify(p Proxy, keys ...string) {
	if !IsReactive(p) {
		return
	}
	rt := p.Runtime()
	if len(keys) == 0 {
		keys = rt.registry.keys(p.ID())
		if len(keys) == 0 {
			return
		}
	}
	rt.trigger(p.ID(), keys...)
}
