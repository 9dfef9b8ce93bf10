package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/volley-mixer/models"
	"github.com/Dosada05/volley-mixer/pairing"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counterValue(f *dto.MetricFamily) float64 {
	var total float64
	for _, m := range f.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}

func TestObserveDraw(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	draw := &pairing.Draw{
		Byes:            []models.Player{{ID: 1}},
		PartnerCost:     2,
		OppositionCost:  3,
		SameGenderTeams: 1,
	}
	r.ObserveDraw("preview", draw, time.Millisecond)
	r.ObserveDraw("commit", draw, time.Millisecond)
	r.ResultRecorded()
	r.DrawFailed("insufficient_players")

	families := gather(t, reg)
	assert.Equal(t, 2.0, counterValue(families["volley_rounds_draws_total"]))
	assert.Equal(t, 2.0, counterValue(families["volley_rounds_partner_repeats_total"]))
	assert.Equal(t, 3.0, counterValue(families["volley_rounds_opposition_repeats_total"]))
	assert.Equal(t, 1.0, counterValue(families["volley_rounds_byes_total"]))
	assert.Equal(t, 1.0, counterValue(families["volley_matches_results_total"]))
	assert.Equal(t, 1.0, counterValue(families["volley_rounds_draw_failures_total"]))
	assert.Equal(t, uint64(2), families["volley_rounds_draw_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveDraw("commit", &pairing.Draw{}, time.Second)
		r.DrawFailed("x")
		r.ResultRecorded()
		r.ClientConnected()
		r.ClientDisconnected()
	})
}
