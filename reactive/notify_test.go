package reactive_test

import (
	"testing"

	"github.com/delaneyj/reactivestate/reactive"
	"github.com/stretchr/testify/assert"
)

// bulk raw mutation followed by a single notify
func TestNotifyAfterRawMutation(t *testing.T) {
	rt := newRuntime(t)
	a := reactive.NewArray(rt, nil)
	n := 0
	runs := counted(t, rt, func() { n = a.Len() })

	raw := reactive.ToRaw(a).(*[]any)
	for i := range 100 {
		*raw = append(*raw, i)
	}
	assert.Equal(t, 1, *runs)
	assert.Zero(t, n)

	reactive.Notify(a, reactive.LengthKey)
	assert.Equal(t, 2, *runs)
	assert.Equal(t, 100, n)
}

// notify without keys hits every subscribed key, each effect once
func TestNotifyAllKeys(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"a": 1, "b": 2})
	ra := counted(t, rt, func() { s.Get("a") })
	rb := counted(t, rt, func() { s.Get("b") })
	both := counted(t, rt, func() {
		s.Get("a")
		s.Get("b")
	})

	raw := reactive.ToRaw(s).(map[string]any)
	raw["a"], raw["b"] = 10, 20
	reactive.Notify(s)

	assert.Equal(t, 2, *ra)
	assert.Equal(t, 2, *rb)
	assert.Equal(t, 2, *both)
}

// notify on something without subscribers does nothing
func TestNotifyNoop(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, nil)
	before := rt.Stats().Triggers

	reactive.Notify(s)
	reactive.Notify(nil)
	assert.Equal(t, before, rt.Stats().Triggers)

	runs := counted(t, rt, func() { s.Get("x") })
	reactive.Notify(s, "y")
	assert.Equal(t, 1, *runs)
}
