package reactive_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/reactivestate/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dependencies follow the branch taken on the latest run
func TestEffectDynamicDeps(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"flag": true, "a": 1, "b": 2})
	runs := 0
	var got any
	e, err := reactive.Effect(rt, func() error {
		runs++
		if s.Get("flag").(bool) {
			got = s.Get("a")
		} else {
			got = s.Get("b")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 2, e.Deps())

	s.Set("b", 3)
	assert.Equal(t, 1, runs)

	s.Set("flag", false)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 3, got)

	s.Set("a", 5)
	assert.Equal(t, 2, runs)

	s.Set("b", 4)
	assert.Equal(t, 3, runs)
	assert.Equal(t, 4, got)
	assert.Equal(t, 3, e.Runs())
}

// disposed effects never run again and leave no edges behind
func TestEffectDispose(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"x": 0})
	runs := 0
	e, err := reactive.Effect(rt, func() error {
		runs++
		s.Get("x")
		return nil
	})
	require.NoError(t, err)

	e.Dispose()
	e.Dispose()
	s.Set("x", 1)
	assert.Equal(t, 1, runs)
	assert.True(t, e.Disposed())
	assert.Zero(t, e.Deps())
	assert.Empty(t, rt.Graph())
	assert.Zero(t, rt.Stats().Effects)
}

// an effect can dispose itself from its own body
func TestEffectDisposeSelf(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"x": 0})
	runs := 0
	var e *reactive.EffectRunner
	e, err := reactive.Effect(rt, func() error {
		runs++
		s.Get("x")
		if runs == 2 {
			e.Dispose()
		}
		return nil
	})
	require.NoError(t, err)

	s.Set("x", 1)
	assert.Equal(t, 2, runs)
	assert.Zero(t, e.Deps())

	s.Set("x", 2)
	assert.Equal(t, 2, runs)
}

// writes an effect makes to its own dependencies do not re-enter it
func TestEffectNoSelfReentry(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"count": 0})
	runs := 0
	_, err := reactive.Effect(rt, func() error {
		runs++
		if c := s.Get("count").(int); c < 5 {
			s.Set("count", c+1)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, reactive.Peek(s, "count"))

	s.Set("count", 3)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 4, reactive.Peek(s, "count"))
}

// effects triggered from another effect run after it, never inside it
func TestEffectTriggeredDuringRunIsDeferred(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"a": 0, "b": 0})
	var order []string
	var seen any

	_, err := reactive.Effect(rt, func() error {
		order = append(order, "writer:start")
		s.Set("b", s.Get("a"))
		order = append(order, "writer:end")
		return nil
	})
	require.NoError(t, err)
	_, err = reactive.Effect(rt, func() error {
		order = append(order, "reader")
		seen = s.Get("b")
		return nil
	})
	require.NoError(t, err)

	order = nil
	s.Set("a", 1)
	assert.Equal(t, []string{"writer:start", "writer:end", "reader"}, order)
	assert.Equal(t, 1, seen)
}

// inner effects belong to the outer one and are replaced when it re-runs
func TestEffectChildren(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"outer": 0, "inner": 0})
	outerRuns, innerRuns := 0, 0
	var inner *reactive.EffectRunner

	_, err := reactive.Effect(rt, func() error {
		outerRuns++
		s.Get("outer")
		e, err := reactive.Effect(rt, func() error {
			innerRuns++
			s.Get("inner")
			return nil
		})
		inner = e
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, innerRuns)
	first := inner

	s.Set("inner", 1)
	assert.Equal(t, 1, outerRuns)
	assert.Equal(t, 2, innerRuns)

	s.Set("outer", 1)
	assert.Equal(t, 2, outerRuns)
	assert.Equal(t, 3, innerRuns)
	assert.True(t, first.Disposed())
	assert.NotSame(t, first, inner)

	s.Set("inner", 2)
	assert.Equal(t, 4, innerRuns)
	assert.Equal(t, 2, rt.Stats().Effects)
}

// effects created under Untrack outlive the effect that created them
func TestEffectDetachedChild(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"outer": 0})
	var child *reactive.EffectRunner

	_, err := reactive.Effect(rt, func() error {
		s.Get("outer")
		if child == nil {
			rt.Untracked(func() {
				child, _ = reactive.Effect(rt, func() error { return nil })
			})
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, child)

	s.Set("outer", 1)
	assert.False(t, child.Disposed())
}

// the first run's error is returned and the effect stays live
func TestEffectInitialError(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"x": 0})
	boom := errors.New("boom")
	runs := 0

	e, err := reactive.Effect(rt, func() error {
		runs++
		if s.Get("x") == 0 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, e)
	assert.Equal(t, 1, e.Deps())

	s.Set("x", 1)
	assert.Equal(t, 2, runs)
}

// errors from re-runs reach the error handler wrapped with the effect
func TestEffectRerunErrorHandler(t *testing.T) {
	var got []error
	var from *reactive.EffectRunner
	rt := reactive.New(reactive.WithErrorHandler(func(f *reactive.EffectRunner, err error) {
		from = f
		got = append(got, err)
	}))
	s := reactive.NewObject(rt, map[string]any{"x": 0})
	boom := errors.New("boom")

	e, err := reactive.Effect(rt, func() error {
		if s.Get("x") != 0 {
			return boom
		}
		return nil
	}, reactive.WithName("failing"))
	require.NoError(t, err)

	s.Set("x", 1)
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0], boom)
	var ee *reactive.EffectError
	require.ErrorAs(t, got[0], &ee)
	assert.Same(t, e, ee.Effect)
	assert.Same(t, e, from)
	assert.Equal(t, "failing: boom", got[0].Error())
}

// a panicking body does not leave a tracking frame behind
func TestEffectPanicRestoresStack(t *testing.T) {
	rt := newRuntime(t)
	s := reactive.NewObject(rt, map[string]any{"x": 0, "y": 0})

	assert.Panics(t, func() {
		_, _ = reactive.Effect(rt, func() error {
			s.Get("x")
			panic("boom")
		})
	})

	s.Get("y")
	assert.NotContains(t, rt.Graph(), `"y"`)
	assert.Contains(t, rt.Graph(), `"x"`)

	runs := 0
	_, err := reactive.Effect(rt, func() error {
		runs++
		s.Get("y")
		return nil
	})
	require.NoError(t, err)
	s.Set("y", 1)
	assert.Equal(t, 2, runs)
}
