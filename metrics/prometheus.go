package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/n0rdy/queuewatch/queues"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var connectionStates = []string{"disconnected", "connecting", "live"}

type PrometheusMetricsService struct {
	registry *prometheus.Registry

	queueDepth               *prometheus.GaugeVec
	queueConsumers           *prometheus.GaugeVec
	queueProcessed           *prometheus.GaugeVec
	queueCritical            *prometheus.GaugeVec
	connectionState          *prometheus.GaugeVec
	fetchesTotal             *prometheus.CounterVec
	fetchDuration            *prometheus.HistogramVec
	addressPersistFailsTotal prometheus.Counter
}

func newPrometheusMetricsService() *PrometheusMetricsService {
	srv := &PrometheusMetricsService{
		// own registry, so that several services can coexist in one process (tests)
		registry: prometheus.NewRegistry(),

		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queuewatch_queue_depth",
				Help: "Messages not yet acknowledged, as of the last successful fetch",
			},
			[]string{"queue_name", "queue_type"},
		),

		queueConsumers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queuewatch_queue_consumers",
				Help: "Consumers attached to the queue, as of the last successful fetch",
			},
			[]string{"queue_name", "queue_type"},
		),

		// a gauge and not a counter: the value is the broker's cumulative count, copied verbatim.
		queueProcessed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queuewatch_queue_processed",
				Help: "Cumulative acknowledged messages as reported by the broker",
			},
			[]string{"queue_name", "queue_type"},
		),

		queueCritical: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queuewatch_queue_critical",
				Help: "1 if the queue is classified as critical (dead-letter queue or backlog above threshold), 0 otherwise",
			},
			[]string{"queue_name", "queue_type"},
		),

		connectionState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queuewatch_connection_state",
				Help: "1 for the current connection state, 0 for the others",
			},
			[]string{"state"},
		),

		// kind is connect or refresh, outcome is success, discarded or a fetch failure kind.
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queuewatch_fetches_total",
				Help: "Total number of fetches against the broker by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "queuewatch_fetch_duration_seconds",
				Help:    "Duration of fetches against the broker",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		addressPersistFailsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "queuewatch_address_persist_failures_total",
				Help: "Total number of failed writes of the last used server address",
			},
		),
	}

	srv.registry.MustRegister(srv.queueDepth)
	srv.registry.MustRegister(srv.queueConsumers)
	srv.registry.MustRegister(srv.queueProcessed)
	srv.registry.MustRegister(srv.queueCritical)
	srv.registry.MustRegister(srv.connectionState)
	srv.registry.MustRegister(srv.fetchesTotal)
	srv.registry.MustRegister(srv.fetchDuration)
	srv.registry.MustRegister(srv.addressPersistFailsTotal)

	return srv
}

// Handler serves the registry in the Prometheus exposition format.
func (pms *PrometheusMetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(pms.registry, promhttp.HandlerOpts{})
}

func (pms *PrometheusMetricsService) SetQueueDepth(queueName string, depth int64) {
	pms.queueDepth.WithLabelValues(queueName, pms.queueType(queueName)).Set(float64(depth))
}

func (pms *PrometheusMetricsService) SetQueueConsumers(queueName string, consumers int64) {
	pms.queueConsumers.WithLabelValues(queueName, pms.queueType(queueName)).Set(float64(consumers))
}

func (pms *PrometheusMetricsService) SetQueueProcessed(queueName string, processed int64) {
	pms.queueProcessed.WithLabelValues(queueName, pms.queueType(queueName)).Set(float64(processed))
}

func (pms *PrometheusMetricsService) SetQueueCritical(queueName string, critical bool) {
	value := 0.0
	if critical {
		value = 1.0
	}
	pms.queueCritical.WithLabelValues(queueName, pms.queueType(queueName)).Set(value)
}

// ResetQueues drops every per-queue series, so queues deleted on the broker disappear with the next batch.
func (pms *PrometheusMetricsService) ResetQueues() {
	pms.queueDepth.Reset()
	pms.queueConsumers.Reset()
	pms.queueProcessed.Reset()
	pms.queueCritical.Reset()
}

func (pms *PrometheusMetricsService) SetConnectionState(state string) {
	for _, s := range connectionStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		pms.connectionState.WithLabelValues(s).Set(value)
	}
}

func (pms *PrometheusMetricsService) IncFetchesTotal(kind string, outcome string) {
	pms.fetchesTotal.WithLabelValues(kind, outcome).Inc()
}

func (pms *PrometheusMetricsService) ObserveFetchDuration(kind string, duration time.Duration) {
	pms.fetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (pms *PrometheusMetricsService) IncAddressPersistFailuresTotal() {
	pms.addressPersistFailsTotal.Inc()
}

func (pms *PrometheusMetricsService) queueType(queueName string) string {
	if strings.Contains(queueName, queues.DeadLetterMarker) {
		return DlqQueueType
	}
	return RegularQueueType
}
