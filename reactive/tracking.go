package reactive

// activeEffect is the effect reads should subscribe, or nil when nothing
// is running or the top frame is untracked.
func (rt *Runtime) activeEffect() *EffectRunner {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

func (rt *Runtime) pushFrame(e *EffectRunner) {
	rt.stack = append(rt.stack, e)
}

func (rt *Runtime) popFrame() {
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// track records that the active effect read key of target.
func (rt *Runtime) track(target uint64, key string) {
	e := rt.activeEffect()
	if e == nil || e.disposed {
		return
	}
	d := dep{target: target, key: key}
	if !e.deps.Add(d) {
		return
	}
	rt.registry.add(d, e)
}

// trigger schedules every effect subscribed to any of keys of target.
// An effect subscribed to several of the keys is scheduled once.
func (rt *Runtime) trigger(target uint64, keys ...string) {
	rt.counters.triggers.Add(1)

	hit := newEffectSet()
	for _, key := range keys {
		for _, e := range rt.registry.subscribers(dep{target: target, key: key}) {
			hit.add(e)
		}
	}
	if hit.len() == 0 {
		return
	}
	rt.log.Trace().
		Uint64("target", target).
		Strs("keys", keys).
		Int("effects", hit.len()).
		Msg("trigger")
	rt.schedule(hit.order)
}
