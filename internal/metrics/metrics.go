package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for photo analysis.
// Tracks analyses by outcome and time spent in the vision model.
type Metrics struct {
	Analyses         *prometheus.CounterVec
	Recommendations  *prometheus.CounterVec
	ClassifyDuration prometheus.Histogram
	PracticeRounds   *prometheus.CounterVec
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blackjack_analyses_total",
			Help: "Total number of photo analyses by outcome",
		}, []string{"outcome"}),
		Recommendations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blackjack_recommendations_total",
			Help: "Recommendations given by action",
		}, []string{"action"}),
		ClassifyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "blackjack_classify_duration_seconds",
			Help:    "Duration of vision model calls",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		}),
		PracticeRounds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blackjack_practice_rounds_total",
			Help: "Finished practice rounds by result",
		}, []string{"result"}),
	}
}

// IncrementAnalysis records a finished analysis. outcome is "ok",
// "no_cards", "invalid_image" or "error".
func (m *Metrics) IncrementAnalysis(outcome string) {
	m.Analyses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRecommendation(action string) {
	m.Recommendations.WithLabelValues(action).Inc()
}

// ObserveClassify records the duration of a vision call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveClassify(start time.Time) {
	m.ClassifyDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementPracticeRound(result string) {
	m.PracticeRounds.WithLabelValues(result).Inc()
}
