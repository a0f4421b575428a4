package metrics

import "time"

const (
	RegularQueueType = "regular"
	DlqQueueType     = "dlq"
)

type Service interface {
	SetQueueDepth(queueName string, depth int64)
	SetQueueConsumers(queueName string, consumers int64)
	SetQueueProcessed(queueName string, processed int64)
	SetQueueCritical(queueName string, critical bool)
	ResetQueues()
	SetConnectionState(state string)
	IncFetchesTotal(kind string, outcome string)
	ObserveFetchDuration(kind string, duration time.Duration)
	IncAddressPersistFailuresTotal()
}

func NewMetricsService(metricsEnabled bool) Service {
	if metricsEnabled {
		return newPrometheusMetricsService()
	}
	return newNoopMetricsService()
}
