package reactive_test

import (
	"math"
	"testing"

	"github.com/delaneyj/reactivestate/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameValue(t *testing.T) {
	m := map[string]any{}
	s := []any{1, 2}
	p := &struct{}{}
	fn := func() {}

	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"nils", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"same map", m, m, true},
		{"distinct maps", map[string]any{}, map[string]any{}, false},
		{"same slice", s, s, true},
		{"shorter view", s, s[:1], false},
		{"same pointer", p, p, true},
		{"funcs", fn, fn, false},
		{"structs", struct{ A int }{1}, struct{ A int }{1}, true},
		{"nan", math.NaN(), math.NaN(), false},
		{"strings", "a", "a", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reactive.SameValue(tc.a, tc.b))
		})
	}
}

// a custom equality changes what counts as a no-op write
func TestWithEqual(t *testing.T) {
	rt := newRuntime(t, reactive.WithEqual(func(a, b any) bool { return true }))
	s := reactive.NewObject(rt, map[string]any{"x": 0})
	runs := counted(t, rt, func() { s.Get("x") })

	s.Set("x", 1)
	assert.Equal(t, 1, *runs)
	assert.Equal(t, 0, reactive.Peek(s, "x"))

	// new keys always trigger
	keys := counted(t, rt, func() { s.Keys() })
	s.Set("y", 1)
	assert.Equal(t, 2, *keys)
	require.True(t, s.Has("y"))
}
