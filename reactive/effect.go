package reactive

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// EffectRunner is a re-runnable unit of work. Every run recomputes the set of
// properties it depends on, so an effect that reads different properties on
// different branches only reacts to the ones it read last time.
type EffectRunner struct {
	rt   *Runtime
	id   uint64
	name string
	fn   ErrFn

	// deps mirrors the registry edges that point at this effect
	deps mapset.Set[dep]

	// effects created while this one was running, disposed before it runs again
	parent   *EffectRunner
	children []*EffectRunner

	running  bool
	disposed bool
	runs     int

	// runs within the settle loop numbered settleGen
	settleGen  uint64
	settleRuns int
}

// EffectOption configures a single effect.
type EffectOption func(*EffectRunner)

// WithName labels an effect in logs, errors and graph dumps.
func WithName(name string) EffectOption {
	return func(e *EffectRunner) {
		e.name = name
	}
}

// Effect runs fn now, recording every reactive read it makes, and again each time
// one of those reads changes. The error of the first run is returned as is; the
// effect stays live even when that run fails.
//
// Effects created inside another effect's body belong to it and are disposed
// before the outer effect runs again. Created inside Untrack they are detached.
func Effect(rt *Runtime, fn ErrFn, opts ...EffectOption) (*EffectRunner, error) {
	e := &EffectRunner{
		rt:   rt,
		id:   rt.newID(),
		fn:   fn,
		deps: mapset.NewThreadUnsafeSet[dep](),
	}
	for _, opt := range opts {
		opt(e)
	}

	if parent := rt.activeEffect(); parent != nil {
		e.parent = parent
		parent.children = append(parent.children, e)
	}
	rt.effects.Add(e)
	rt.counters.effects.Store(int64(rt.effects.Cardinality()))

	err := rt.execute(e)
	rt.settleIfIdle()
	return e, err
}

// Dispose unsubscribes the effect from everything and marks it dead.
// A dead effect is never queued or run again. Disposing an effect from inside
// its own body takes effect when the body returns.
func (e *EffectRunner) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true

	rt := e.rt
	rt.effects.Remove(e)
	rt.counters.effects.Store(int64(rt.effects.Cardinality()))
	rt.pending.remove(e)
	rt.deferred.remove(e)

	e.disposeChildren()
	if !e.running {
		rt.unsubscribe(e)
	}
}

// Disposed reports whether Dispose was called.
func (e *EffectRunner) Disposed() bool {
	return e.disposed
}

// Runs is how many times the effect body has been executed.
func (e *EffectRunner) Runs() int {
	return e.runs
}

// Deps is the number of properties the effect read during its last run.
func (e *EffectRunner) Deps() int {
	return e.deps.Cardinality()
}

func (e *EffectRunner) String() string {
	if e == nil {
		return "effect(nil)"
	}
	if e.name != "" {
		return e.name
	}
	return fmt.Sprintf("effect#%d", e.id)
}

func (e *EffectRunner) disposeChildren() {
	children := e.children
	e.children = nil
	for _, child := range children {
		child.Dispose()
	}
}

// execute is the re-run procedure: drop the old edges, push a frame,
// run the body, pop the frame. Frames are popped even if the body panics.
func (rt *Runtime) execute(e *EffectRunner) error {
	if e.disposed || e.running {
		return nil
	}

	e.disposeChildren()
	rt.unsubscribe(e)

	e.running = true
	rt.runDepth++
	rt.pushFrame(e)
	defer func() {
		rt.popFrame()
		rt.runDepth--
		e.running = false
		if e.disposed {
			rt.unsubscribe(e)
		}
	}()

	e.runs++
	rt.counters.runs.Add(1)
	return e.fn()
}

func (rt *Runtime) unsubscribe(e *EffectRunner) {
	e.deps.Each(func(d dep) bool {
		rt.registry.remove(d, e)
		return false
	})
	e.deps.Clear()
}
