package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ai_feed"

// Metrics holds the Prometheus collectors for the feed monitor.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FramesReceived   prometheus.Counter
	FramesMalformed  prometheus.Counter
	ConnectionOpens  prometheus.Counter
	DialFailures     prometheus.Counter
	ReconnectsQueued prometheus.Counter
	SnapshotFailures prometheus.Counter
	SinkErrors       *prometheus.CounterVec
	HistoryLength    prometheus.Gauge
	ConnectionState  prometheus.Gauge
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Feed frames received from the upstream socket.",
		}),
		FramesMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_malformed_total",
			Help:      "Feed frames discarded because they could not be parsed.",
		}),
		ConnectionOpens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_opens_total",
			Help:      "Successful feed connection handshakes.",
		}),
		DialFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dial_failures_total",
			Help:      "Feed connection attempts that failed before opening.",
		}),
		ReconnectsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_scheduled_total",
			Help:      "Reconnect attempts scheduled through backoff.",
		}),
		SnapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_snapshot_failures_total",
			Help:      "Risk snapshot fetches that fell back to the default snapshot.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Errors republishing feed events, by sink.",
		}, []string{"sink"}),
		HistoryLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_length",
			Help:      "Events currently held in the history buffer.",
		}),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "Feed connection state (0 idle, 1 connecting, 2 open, 3 backoff, 4 terminated).",
		}),
	}

	reg.MustRegister(
		m.FramesReceived,
		m.FramesMalformed,
		m.ConnectionOpens,
		m.DialFailures,
		m.ReconnectsQueued,
		m.SnapshotFailures,
		m.SinkErrors,
		m.HistoryLength,
		m.ConnectionState,
	)
	return m
}

func (m *Metrics) FrameReceived() {
	if m != nil {
		m.FramesReceived.Inc()
	}
}

func (m *Metrics) FrameMalformed() {
	if m != nil {
		m.FramesMalformed.Inc()
	}
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.ConnectionOpens.Inc()
	}
}

func (m *Metrics) DialFailed() {
	if m != nil {
		m.DialFailures.Inc()
	}
}

func (m *Metrics) ReconnectScheduled() {
	if m != nil {
		m.ReconnectsQueued.Inc()
	}
}

func (m *Metrics) SnapshotFailed() {
	if m != nil {
		m.SnapshotFailures.Inc()
	}
}

func (m *Metrics) SinkFailed(sink string) {
	if m != nil {
		m.SinkErrors.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) SetHistoryLength(n int) {
	if m != nil {
		m.HistoryLength.Set(float64(n))
	}
}

func (m *Metrics) SetConnectionState(state int) {
	if m != nil {
		m.ConnectionState.Set(float64(state))
	}
}
