package reactive

import (
	"slices"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"
)

// effectSet is a set of effects that remembers insertion order.
// Subscribers run in the order they were discovered, so membership alone is not enough.
type effectSet struct {
	order   []*EffectRunner
	members mapset.Set[*EffectRunner]

	// gauge mirrors len(order) for readers on other goroutines, may be nil
	gauge *atomic.Int64
}

func newEffectSet() *effectSet {
	return &effectSet{members: mapset.NewThreadUnsafeSet[*EffectRunner]()}
}

func (s *effectSet) add(e *EffectRunner) bool {
	if !s.members.Add(e) {
		return false
	}
	s.order = append(s.order, e)
	s.sync()
	return true
}

func (s *effectSet) remove(e *EffectRunner) bool {
	if !s.members.Contains(e) {
		return false
	}
	s.members.Remove(e)
	if i := slices.Index(s.order, e); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.sync()
	return true
}

func (s *effectSet) len() int {
	return len(s.order)
}

func (s *effectSet) snapshot() []*EffectRunner {
	return slices.Clone(s.order)
}

// drain empties the set and returns what it held, in order.
func (s *effectSet) drain() []*EffectRunner {
	out := s.order
	s.order = nil
	s.members.Clear()
	s.sync()
	return out
}

func (s *effectSet) sync() {
	if s.gauge != nil {
		s.gauge.Store(int64(len(s.order)))
	}
}

// registry is the target -> key -> subscribers index.
type registry struct {
	targets map[uint64]map[string]*effectSet
}

func newRegistry() registry {
	return registry{targets: map[uint64]map[string]*effectSet{}}
}

func (r *registry) add(d dep, e *EffectRunner) {
	keys, ok := r.targets[d.target]
	if !ok {
		keys = map[string]*effectSet{}
		r.targets[d.target] = keys
	}
	subs, ok := keys[d.key]
	if !ok {
		subs = newEffectSet()
		keys[d.key] = subs
	}
	subs.add(e)
}

func (r *registry) remove(d dep, e *EffectRunner) {
	keys, ok := r.targets[d.target]
	if !ok {
		return
	}
	subs, ok := keys[d.key]
	if !ok {
		return
	}
	subs.remove(e)
	if subs.len() == 0 {
		delete(keys, d.key)
	}
	if len(keys) == 0 {
		delete(r.targets, d.target)
	}
}

// subscribers returns a snapshot so effects may subscribe or unsubscribe while it is walked.
func (r *registry) subscribers(d dep) []*EffectRunner {
	subs, ok := r.targets[d.target][d.key]
	if !ok {
		return nil
	}
	return subs.snapshot()
}

// keys returns every key of target that has at least one subscriber, sorted.
func (r *registry) keys(target uint64) []string {
	keys := r.targets[target]
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (r *registry) targetIDs() []uint64 {
	out := make([]uint64, 0, len(r.targets))
	for id := range r.targets {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// drop forgets target entirely and returns the buckets it had.
func (r *registry) drop(target uint64) map[string]*effectSet {
	keys := r.targets[target]
	delete(r.targets, target)
	return keys
}
