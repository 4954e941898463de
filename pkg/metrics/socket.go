package metrics

import "github.com/prometheus/client_golang/prometheus"

// SocketMetrics tracks the notification websocket.
type SocketMetrics struct {
	connected  prometheus.Gauge
	reconnects prometheus.Counter
	events     *prometheus.CounterVec
}

func NewSocketMetrics(reg prometheus.Registerer) *SocketMetrics {
	if reg == nil {
		return &SocketMetrics{}
	}
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pressing_ws_connected",
		Help: "1 while the notification socket is connected.",
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pressing_ws_reconnect_attempts_total",
		Help: "Scheduled reconnect attempts of the notification socket.",
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pressing_ws_events_total",
		Help: "Dispatched socket events by name.",
	}, []string{"event"})
	reg.MustRegister(connected, reconnects, events)
	return &SocketMetrics{
		connected:  connected,
		reconnects: reconnects,
		events:     events,
	}
}

func (m *SocketMetrics) SetConnected(connected bool) {
	if m == nil || m.connected == nil {
		return
	}
	if connected {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

func (m *SocketMetrics) IncReconnect() {
	if m == nil || m.reconnects == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *SocketMetrics) IncEvent(event string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(event)).Inc()
}
