package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts connection and frame activity of a Manager.
type Metrics struct {
	ConnectAttempts prometheus.Counter
	ConnectFailures prometheus.Counter
	Retries         prometheus.Counter
	FramesSent      *prometheus.CounterVec
	FramesDropped   *prometheus.CounterVec
	FramesReceived  *prometheus.CounterVec
	MalformedFrames prometheus.Counter
	Connected       prometheus.Gauge
}

// NewMetrics registers the session metrics with reg. A nil reg uses a private
// registry, so the metrics are collected but not exported.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	const ns, sub = "mmcode", "session"

	return &Metrics{
		ConnectAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "connect_attempts_total",
			Help: "Connection attempts started.",
		}),
		ConnectFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "connect_failures_total",
			Help: "Transport errors that scheduled a retry.",
		}),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "retries_total",
			Help: "Retry timers that fired and restarted the session.",
		}),
		FramesSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "frames_sent_total",
			Help: "Frames written to the connection.",
		}, []string{"type"}),
		FramesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "frames_dropped_total",
			Help: "Frames discarded because the session was not connected.",
		}, []string{"type"}),
		FramesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "frames_received_total",
			Help: "Inbound frames by type.",
		}, []string{"type"}),
		MalformedFrames: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "malformed_frames_total",
			Help: "Inbound frames that could not be decoded.",
		}),
		Connected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub,
			Name: "connected",
			Help: "1 while a session is connected.",
		}),
	}
}
