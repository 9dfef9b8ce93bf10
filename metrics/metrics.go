// Package metrics exposes Prometheus instrumentation for round generation
// and result recording. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dosada05/volley-mixer/pairing"
)

const namespace = "volley"

type Recorder struct {
	draws             *prometheus.CounterVec
	drawFailures      *prometheus.CounterVec
	drawLatency       prometheus.Histogram
	partnerRepeats    prometheus.Counter
	oppositionRepeats prometheus.Counter
	sameGenderTeams   prometheus.Counter
	byes              prometheus.Counter
	results           prometheus.Counter
	wsClients         prometheus.Gauge
}

// New registers the collectors on reg (prometheus.DefaultRegisterer if nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "draws_total",
			Help:      "Rounds drawn by mode (preview, commit).",
		}, []string{"mode"}),
		drawFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "draw_failures_total",
			Help:      "Failed draws by reason.",
		}, []string{"reason"}),
		drawLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "draw_duration_seconds",
			Help:      "Time spent in the pairing engine per draw.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		partnerRepeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "partner_repeats_total",
			Help:      "Repeated partnerships in committed rounds.",
		}),
		oppositionRepeats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "opposition_repeats_total",
			Help:      "Repeated player oppositions in committed rounds.",
		}),
		sameGenderTeams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "same_gender_teams_total",
			Help:      "Teams that could not be mixed in committed rounds.",
		}),
		byes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rounds",
			Name:      "byes_total",
			Help:      "Players sitting out in committed rounds.",
		}),
		results: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matches",
			Name:      "results_total",
			Help:      "Match winners recorded.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "clients",
			Help:      "Connected live-update clients.",
		}),
	}

	reg.MustRegister(
		r.draws, r.drawFailures, r.drawLatency,
		r.partnerRepeats, r.oppositionRepeats, r.sameGenderTeams, r.byes,
		r.results, r.wsClients,
	)
	return r
}

// ObserveDraw records a successful draw. Quality counters only move on commit.
func (r *Recorder) ObserveDraw(mode string, d *pairing.Draw, elapsed time.Duration) {
	if r == nil || d == nil {
		return
	}
	r.draws.WithLabelValues(mode).Inc()
	r.drawLatency.Observe(elapsed.Seconds())
	if mode != "commit" {
		return
	}
	r.partnerRepeats.Add(float64(d.PartnerCost))
	r.oppositionRepeats.Add(float64(d.OppositionCost))
	r.sameGenderTeams.Add(float64(d.SameGenderTeams))
	r.byes.Add(float64(len(d.Byes)))
}

func (r *Recorder) DrawFailed(reason string) {
	if r == nil {
		return
	}
	r.drawFailures.WithLabelValues(reason).Inc()
}

func (r *Recorder) ResultRecorded() {
	if r == nil {
		return
	}
	r.results.Inc()
}

func (r *Recorder) ClientConnected() {
	if r == nil {
		return
	}
	r.wsClients.Inc()
}

func (r *Recorder) ClientDisconnected() {
	if r == nil {
		return
	}
	r.wsClients.Dec()
}
