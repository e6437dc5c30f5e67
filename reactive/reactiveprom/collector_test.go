package reactiveprom_test

import (
	"testing"

	"github.com/delaneyj/reactivestate/reactive"
	"github.com/delaneyj/reactivestate/reactive/reactiveprom"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.Metric {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.Metric, len(mfs))
	for _, mf := range mfs {
		require.Len(t, mf.GetMetric(), 1)
		out[mf.GetName()] = mf.GetMetric()[0]
	}
	return out
}

func TestCollector(t *testing.T) {
	rt := reactive.New()
	s := reactive.NewObject(rt, map[string]any{"x": 0})
	_, err := reactive.Effect(rt, func() error {
		s.Get("x")
		return nil
	})
	require.NoError(t, err)
	s.Set("x", 1)
	s.Set("x", 1)

	rt.Pause()
	s.Set("x", 2)

	reg := prometheus.NewRegistry()
	reg.MustRegister(reactiveprom.NewCollector(rt))

	m := gather(t, reg)
	assert.Len(t, m, 8)
	assert.Equal(t, 1.0, m["reactive_targets"].GetGauge().GetValue())
	assert.Equal(t, 1.0, m["reactive_effects"].GetGauge().GetValue())
	assert.Equal(t, 1.0, m["reactive_pause_depth"].GetGauge().GetValue())
	assert.Equal(t, 1.0, m["reactive_pending_effects"].GetGauge().GetValue())
	assert.Equal(t, 2.0, m["reactive_triggers_total"].GetCounter().GetValue())
	assert.Equal(t, 2.0, m["reactive_effect_runs_total"].GetCounter().GetValue())
	assert.Equal(t, 1.0, m["reactive_skipped_writes_total"].GetCounter().GetValue())
	assert.Zero(t, m["reactive_flushes_total"].GetCounter().GetValue())

	require.NoError(t, rt.Resume(true))
	m = gather(t, reg)
	assert.Zero(t, m["reactive_pending_effects"].GetGauge().GetValue())
	assert.Equal(t, 1.0, m["reactive_flushes_total"].GetCounter().GetValue())
	assert.Equal(t, 3.0, m["reactive_effect_runs_total"].GetCounter().GetValue())
}

func TestCollectorOptions(t *testing.T) {
	rt := reactive.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(reactiveprom.NewCollector(rt,
		reactiveprom.WithNamespace("app"),
		reactiveprom.WithSubsystem("state"),
		reactiveprom.WithConstLabels(prometheus.Labels{"runtime": "main"}),
	))

	m := gather(t, reg)
	require.Contains(t, m, "app_state_effects")
	labels := m["app_state_effects"].GetLabel()
	require.Len(t, labels, 1)
	assert.Equal(t, "runtime", labels[0].GetName())
	assert.Equal(t, "main", labels[0].GetValue())
}
