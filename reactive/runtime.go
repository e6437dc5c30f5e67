package reactive

import (
	"reflect"
	"sync/atomic"
	"unsafe"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"
)

// Runtime is one reactive universe: the identity cache, the dependency registry,
// the tracking stack and the scheduler all live here, so independent runtimes
// never observe each other.
//
// A Runtime must only be used from a single goroutine. Reads made from other
// goroutines, including ones started inside an effect body, are not tracked.
type Runtime struct {
	opts options
	log  zerolog.Logger

	lastID uint64

	// identity cache, raw pointer -> proxy and proxy id -> proxy
	proxies map[unsafe.Pointer]Proxy
	byID    map[uint64]Proxy

	registry registry

	// tracking stack, a nil frame is an untrack sentinel
	stack []*EffectRunner

	effects    mapset.Set[*EffectRunner]
	pauseDepth int
	runDepth   int
	settling   bool
	settleGen  uint64
	pending    *effectSet
	deferred   *effectSet

	counters counters
}

// Stats is a point-in-time view of a runtime. It is safe to read from any goroutine.
type Stats struct {
	Targets    int
	Effects    int
	PauseDepth int
	Pending    int

	Triggers      uint64
	Runs          uint64
	SkippedWrites uint64
	Flushes       uint64
}

type counters struct {
	targets    atomic.Int64
	effects    atomic.Int64
	pauseDepth atomic.Int64
	pending    atomic.Int64

	triggers      atomic.Uint64
	runs          atomic.Uint64
	skippedWrites atomic.Uint64
	flushes       atomic.Uint64
}

// New creates an empty runtime.
func New(opts ...Option) *Runtime {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{
		opts:     o,
		log:      o.logger,
		proxies:  map[unsafe.Pointer]Proxy{},
		byID:     map[uint64]Proxy{},
		registry: newRegistry(),
		effects:  mapset.NewThreadUnsafeSet[*EffectRunner](),
		pending:  newEffectSet(),
		deferred: newEffectSet(),
	}
	rt.pending.gauge = &rt.counters.pending
	return rt
}

func (rt *Runtime) newID() uint64 {
	rt.lastID++
	return rt.lastID
}

// Stats reports counters and gauges for the runtime.
func (rt *Runtime) Stats() Stats {
	c := &rt.counters
	return Stats{
		Targets:       int(c.targets.Load()),
		Effects:       int(c.effects.Load()),
		PauseDepth:    int(c.pauseDepth.Load()),
		Pending:       int(c.pending.Load()),
		Triggers:      c.triggers.Load(),
		Runs:          c.runs.Load(),
		SkippedWrites: c.skippedWrites.Load(),
		Flushes:       c.flushes.Load(),
	}
}

func (rt *Runtime) object(m map[string]any) *Object {
	k := reflect.ValueOf(m).UnsafePointer()
	if p, ok := rt.proxies[k]; ok {
		return p.(*Object)
	}
	o := &Object{rt: rt, id: rt.newID(), raw: m}
	rt.remember(k, o)
	return o
}

func (rt *Runtime) array(s *[]any) *Array {
	k := unsafe.Pointer(s)
	if p, ok := rt.proxies[k]; ok {
		return p.(*Array)
	}
	a := &Array{rt: rt, id: rt.newID(), raw: s}
	rt.remember(k, a)
	return a
}

func (rt *Runtime) remember(k unsafe.Pointer, p Proxy) {
	rt.proxies[k] = p
	rt.byID[p.ID()] = p
	rt.counters.targets.Store(int64(len(rt.byID)))
}

// Release drops p from the identity cache and the dependency registry.
// Effects that read p stop being triggered by it; wrapping the same raw
// target again yields a new proxy.
func (rt *Runtime) Release(p Proxy) {
	if p == nil || p.Runtime() != rt {
		return
	}
	id := p.ID()
	if _, ok := rt.byID[id]; !ok {
		return
	}
	delete(rt.byID, id)
	delete(rt.proxies, rawPointer(p))
	for key, subs := range rt.registry.drop(id) {
		for _, e := range subs.order {
			e.deps.Remove(dep{target: id, key: key})
		}
	}
	rt.counters.targets.Store(int64(len(rt.byID)))
}

// Reset disposes every effect and forgets every target. Pause depth returns to zero
// and queued effects are dropped.
func (rt *Runtime) Reset() {
	for _, e := range rt.effects.ToSlice() {
		e.Dispose()
	}
	rt.proxies = map[unsafe.Pointer]Proxy{}
	rt.byID = map[uint64]Proxy{}
	rt.registry = newRegistry()
	rt.stack = nil
	rt.pauseDepth = 0
	rt.runDepth = 0
	rt.settling = false
	rt.pending.drain()
	rt.deferred.drain()

	rt.counters.targets.Store(0)
	rt.counters.effects.Store(0)
	rt.counters.pauseDepth.Store(0)
}

func rawPointer(p Proxy) unsafe.Pointer {
	switch x := p.(type) {
	case *Object:
		return reflect.ValueOf(x.raw).UnsafePointer()
	case *Array:
		return unsafe.Pointer(x.raw)
	}
	return nil
}
