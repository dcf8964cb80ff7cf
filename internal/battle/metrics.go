package battle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks battle engine counters. A nil *Metrics is valid and
// records nothing, which keeps test construction light.
type Metrics struct {
	battlesStarted prometheus.Counter
	battlesEnded   prometheus.Counter
	directHits     prometheus.Counter
	answersCorrect prometheus.Counter
	answersMissed  prometheus.Counter
	queueDepth     prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		battlesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "meteor_battles_started_total",
			Help: "Rooms created and started.",
		}),
		battlesEnded: factory.NewCounter(prometheus.CounterOpts{
			Name: "meteor_battles_ended_total",
			Help: "Rooms that reached the ended phase.",
		}),
		directHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "meteor_direct_hits_total",
			Help: "Meteor countdowns that reached zero on a target.",
		}),
		answersCorrect: factory.NewCounter(prometheus.CounterOpts{
			Name: "meteor_answers_correct_total",
			Help: "Answers that returned a meteor.",
		}),
		answersMissed: factory.NewCounter(prometheus.CounterOpts{
			Name: "meteor_answers_missed_total",
			Help: "Answers that matched no eligible meteor.",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "meteor_matchmaking_queue_depth",
			Help: "Players currently waiting for an opponent.",
		}),
	}
}

func (m *Metrics) battleStarted() {
	if m == nil {
		return
	}
	m.battlesStarted.Inc()
}

func (m *Metrics) battleEnded() {
	if m == nil {
		return
	}
	m.battlesEnded.Inc()
}

func (m *Metrics) directHit() {
	if m == nil {
		return
	}
	m.directHits.Inc()
}

func (m *Metrics) answerCorrect() {
	if m == nil {
		return
	}
	m.answersCorrect.Inc()
}

func (m *Metrics) answerMissed() {
	if m == nil {
		return
	}
	m.answersMissed.Inc()
}

// QueueDepth records the current matchmaking queue size.
func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
