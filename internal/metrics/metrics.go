// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/nodelink/internal/events"
	"github.com/tamzrod/nodelink/internal/node"
	"github.com/tamzrod/nodelink/internal/rpc"
	"github.com/tamzrod/nodelink/internal/status"
)

// Metrics holds the nodelink collectors. It implements node.Observer.
type Metrics struct {
	linkState     prometheus.Gauge
	linkStatus    prometheus.Gauge
	rpcCalls      *prometheus.CounterVec
	rpcLatency    *prometheus.HistogramVec
	telemetry     *prometheus.CounterVec
	reconnects    prometheus.Counter
	events        *prometheus.CounterVec
	eventsDropped prometheus.Counter
}

var _ node.Observer = (*Metrics)(nil)

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		linkState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nodelink_link_state",
			Help: "Connection state machine position (0 disconnected, 1 handshaking, 2 streaming).",
		}),
		linkStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nodelink_link_status",
			Help: "Link quality tier (0 good, 1 faulty, 2 not connected).",
		}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nodelink_rpc_calls_total",
			Help: "RPC calls by method and result.",
		}, []string{"method", "result"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nodelink_rpc_latency_seconds",
			Help:    "RPC round trip latency.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method"}),
		telemetry: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nodelink_telemetry_records_total",
			Help: "Telemetry records by validation result.",
		}, []string{"result"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodelink_reconnects_total",
			Help: "Sessions opened against the node.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nodelink_events_total",
			Help: "Events delivered by name.",
		}, []string{"name"}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodelink_events_dropped_total",
			Help: "Events lost to full subscriber buffers.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.linkState, m.linkStatus, m.rpcCalls, m.rpcLatency,
		m.telemetry, m.reconnects, m.events, m.eventsDropped,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Link starts down until the first tick says otherwise.
	m.linkStatus.Set(float64(status.NotConnected))
	return m, nil
}

// ---- node.Observer ----

func (m *Metrics) ObserveRPC(method string, d time.Duration, err error) {
	m.rpcCalls.WithLabelValues(method, result(err)).Inc()
	m.rpcLatency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveState(s node.State) {
	m.linkState.Set(float64(s))
}

func (m *Metrics) ObserveTelemetry(accepted bool) {
	if accepted {
		m.telemetry.WithLabelValues("accepted").Inc()
		return
	}
	m.telemetry.WithLabelValues("rejected").Inc()
}

func (m *Metrics) ObserveReconnect() {
	m.reconnects.Inc()
}

// ---- status / events ----

func (m *Metrics) SetLinkStatus(s status.Status) {
	m.linkStatus.Set(float64(s))
}

// CountEvent is fed from an events.Bus subscription.
func (m *Metrics) CountEvent(e events.Event) {
	m.events.WithLabelValues(string(e.Name)).Inc()
}

// DropEvent is installed as events.Bus.OnDrop.
func (m *Metrics) DropEvent(events.Event) {
	m.eventsDropped.Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case rpc.IsProtocol(err):
		return "protocol_error"
	default:
		return "transport_error"
	}
}
