package reactive

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ComputeFn derives a property value from other reactive reads.
type ComputeFn func() (any, error)

// Computed defines key on obj as a derived property. fn is run as an effect and
// its result is written to obj through Set, so readers of key are triggered
// whenever the result changes. Dispose the returned effect to stop deriving.
func Computed(obj *Object, key string, fn ComputeFn, opts ...EffectOption) (*EffectRunner, error) {
	opts = append([]EffectOption{WithName("computed:" + key)}, opts...)
	return Effect(obj.rt, func() error {
		v, err := fn()
		if err != nil {
			return fmt.Errorf("computing %q: %w", key, err)
		}
		obj.Set(key, v)
		return nil
	}, opts...)
}

// ComputedMap defines several derived properties on obj, in key order.
func ComputedMap(obj *Object, defs map[string]ComputeFn) ([]*EffectRunner, error) {
	var errs []error
	runners := make([]*EffectRunner, 0, len(defs))
	for _, key := range slices.Sorted(maps.Keys(defs)) {
		e, err := Computed(obj, key, defs[key])
		runners = append(runners, e)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return runners, errors.Join(errs...)
}
