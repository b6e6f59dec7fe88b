package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "coffee"
	subsystem = "client"
)

// Metrics counts session activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Refreshes       *prometheus.CounterVec
	Submissions     *prometheus.CounterVec
	NetworkSwitches *prometheus.CounterVec
	MemosDelivered  prometheus.Counter
	ConfirmSeconds  prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refresh_total",
			Help:      "Read model refreshes by result",
		}, []string{"result"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submission_total",
			Help:      "Donation submissions by outcome",
		}, []string{"outcome"}),
		NetworkSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "network_switch_total",
			Help:      "Wallet network reconciliation attempts by result",
		}, []string{"result"}),
		MemosDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "memo_events_total",
			Help:      "NewMemo events delivered by the live listener",
		}),
		ConfirmSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "confirmation_seconds",
			Help:      "Time from broadcast to inclusion of donation transactions",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
	}
	reg.MustRegister(m.Refreshes, m.Submissions, m.NetworkSwitches, m.MemosDelivered, m.ConfirmSeconds)
	return m
}

func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveNetworkSwitch(res string) {
	if m == nil {
		return
	}
	m.NetworkSwitches.WithLabelValues(res).Inc()
}

func (m *Metrics) ObserveMemo() {
	if m == nil {
		return
	}
	m.MemosDelivered.Inc()
}

func (m *Metrics) ObserveConfirmation(seconds float64) {
	if m == nil {
		return
	}
	m.ConfirmSeconds.Observe(seconds)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
