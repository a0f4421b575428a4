package services

import (
	"context"
)

// Pinger is implemented by every address store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type MonitoringService struct {
	store Pinger
}

func NewMonitoringService(store Pinger) *MonitoringService {
	return &MonitoringService{
		store: store,
	}
}

// IsHealthy reports the health of the process itself. The broker being unreachable is not a failure here.
func (ms *MonitoringService) IsHealthy(ctx context.Context) bool {
	err := ms.store.Ping(ctx)
	return err == nil
}
