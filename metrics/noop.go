package metrics

import "time"

type NoopMetricsService struct {
}

func newNoopMetricsService() *NoopMetricsService {
	return &NoopMetricsService{}
}

func (nms *NoopMetricsService) SetQueueDepth(queueName string, depth int64) {
	// no-op
}

func (nms *NoopMetricsService) SetQueueConsumers(queueName string, consumers int64) {
	// no-op
}

func (nms *NoopMetricsService) SetQueueProcessed(queueName string, processed int64) {
	// no-op
}

func (nms *NoopMetricsService) SetQueueCritical(queueName string, critical bool) {
	// no-op
}

func (nms *NoopMetricsService) ResetQueues() {
	// no-op
}

func (nms *NoopMetricsService) SetConnectionState(state string) {
	// no-op
}

func (nms *NoopMetricsService) IncFetchesTotal(kind string, outcome string) {
	// no-op
}

func (nms *NoopMetricsService) ObserveFetchDuration(kind string, duration time.Duration) {
	// no-op
}

func (nms *NoopMetricsService) IncAddressPersistFailuresTotal() {
	// no-op
}
