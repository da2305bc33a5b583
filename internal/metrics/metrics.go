package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pairindex"

// Metrics holds the service collectors on a private registry.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry       *prometheus.Registry
	nodeReads      *prometheus.CounterVec
	fetchedRecords prometheus.Counter
	storedRecords  prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		nodeReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_storage_reads_total",
			Help:      "Storage slot reads issued against the node, by slot and result.",
		}, []string{"slot", "result"}),
		fetchedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_records_total",
			Help:      "Token records decoded from pool storage.",
		}),
		storedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stored_records_total",
			Help:      "Token records committed to the store.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.nodeReads,
		m.fetchedRecords,
		m.storedRecords,
		m.httpRequests,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveNodeRead(slot int64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.nodeReads.WithLabelValues(strconv.FormatInt(slot, 10), result).Inc()
}

func (m *Metrics) AddFetched(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fetchedRecords.Add(float64(n))
}

func (m *Metrics) AddStored(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.storedRecords.Add(float64(n))
}

func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
