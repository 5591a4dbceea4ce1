// Package metrics exposes server counters to Prometheus.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Severity labels for builtin faults.
const (
	SeverityScript  = "script"
	SeverityProcess = "process"
)

// Metrics holds the server's Prometheus collectors. All methods are safe on
// a nil receiver so callers can run without metrics.
type Metrics struct {
	registry  *prometheus.Registry
	startTime time.Time

	// Sample, if set, is called before each scrape to refresh gauges that
	// mirror server state.
	Sample func(m *Metrics)

	builtinCalls      *prometheus.CounterVec
	builtinFaults     *prometheus.CounterVec
	reliableBytes     prometheus.Counter
	reliableOverflows prometheus.Counter
	dynamicStrings    prometheus.Gauge
	demoBytes         prometheus.Counter
	clientsConnected  prometheus.Gauge
	uptimeSeconds     prometheus.Gauge
	memoryHeapBytes   prometheus.Gauge
	goroutines        prometheus.Gauge
}

// New creates the collectors on a private registry.
func New(startTime time.Time) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		startTime: startTime,
		builtinCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qwsv_builtin_calls_total",
			Help: "Builtin invocations by builtin name.",
		}, []string{"builtin"}),
		builtinFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qwsv_builtin_faults_total",
			Help: "Builtin faults by severity.",
		}, []string{"severity"}),
		reliableBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qwsv_reliable_bytes_total",
			Help: "Bytes accepted into client reliable streams.",
		}),
		reliableOverflows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qwsv_reliable_overflows_total",
			Help: "Writes rejected because a client reliable stream was full.",
		}),
		dynamicStrings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qwsv_dynamic_strings",
			Help: "Dynamic progs strings currently allocated.",
		}),
		demoBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qwsv_demo_bytes_total",
			Help: "Payload bytes written to session recordings.",
		}),
		clientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qwsv_clients_connected",
			Help: "Number of connected clients.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qwsv_uptime_seconds",
			Help: "Server uptime in seconds.",
		}),
		memoryHeapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qwsv_memory_heap_bytes",
			Help: "Go heap memory allocated in bytes.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qwsv_goroutines",
			Help: "Number of active goroutines.",
		}),
	}

	m.registry.MustRegister(
		m.builtinCalls,
		m.builtinFaults,
		m.reliableBytes,
		m.reliableOverflows,
		m.dynamicStrings,
		m.demoBytes,
		m.clientsConnected,
		m.uptimeSeconds,
		m.memoryHeapBytes,
		m.goroutines,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) BuiltinCall(name string) {
	if m != nil {
		m.builtinCalls.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) BuiltinFault(severity string) {
	if m != nil {
		m.builtinFaults.WithLabelValues(severity).Inc()
	}
}

func (m *Metrics) ReliableBytes(n int) {
	if m != nil {
		m.reliableBytes.Add(float64(n))
	}
}

func (m *Metrics) ReliableOverflow() {
	if m != nil {
		m.reliableOverflows.Inc()
	}
}

func (m *Metrics) DemoBytes(n int) {
	if m != nil {
		m.demoBytes.Add(float64(n))
	}
}

func (m *Metrics) SetDynamicStrings(n int) {
	if m != nil {
		m.dynamicStrings.Set(float64(n))
	}
}

func (m *Metrics) SetClientsConnected(n int) {
	if m != nil {
		m.clientsConnected.Set(float64(n))
	}
}

// Update refreshes the process gauges and runs Sample.
func (m *Metrics) Update() {
	if m == nil {
		return
	}
	if m.Sample != nil {
		m.Sample(m)
	}
	m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.memoryHeapBytes.Set(float64(mem.HeapAlloc))
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// Handler returns an http.Handler that updates metrics before serving them.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		inner.ServeHTTP(w, r)
	})
}
