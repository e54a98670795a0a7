package netmq

import "github.com/prometheus/client_golang/prometheus"

// relayMetrics exports the relay counters to Prometheus. Enabled with
// WithMetrics; the zero proxy carries none so the hot path stays free of
// collector lookups when unused.
type relayMetrics struct {
	frames          *prometheus.CounterVec
	messages        *prometheus.CounterVec
	bytes           *prometheus.CounterVec
	transportErrors prometheus.Counter
}

func newRelayMetrics(reg prometheus.Registerer) *relayMetrics {
	m := &relayMetrics{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netmq",
			Subsystem: "relay",
			Name:      "frames_total",
			Help:      "Frames forwarded by the proxy, by direction.",
		}, []string{"direction"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netmq",
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Complete messages forwarded by the proxy, by direction.",
		}, []string{"direction"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netmq",
			Subsystem: "relay",
			Name:      "bytes_total",
			Help:      "Payload bytes forwarded by the proxy, by direction.",
		}, []string{"direction"}),
		transportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmq",
			Subsystem: "relay",
			Name:      "transport_errors_total",
			Help:      "Relay invocations abandoned due to a transport failure.",
		}),
	}
	reg.MustRegister(m.frames, m.messages, m.bytes, m.transportErrors)
	return m
}

func (m *relayMetrics) countFrame(dir Direction, nbytes int, endOfMessage bool) {
	lbl := dir.String()
	m.frames.WithLabelValues(lbl).Inc()
	m.bytes.WithLabelValues(lbl).Add(float64(nbytes))
	if endOfMessage {
		m.messages.WithLabelValues(lbl).Inc()
	}
}
