package ui

import (
	"testing"
	"time"

	"github.com/n0rdy/queuewatch/queues"
	"github.com/n0rdy/queuewatch/services"
)

func TestNewDashboardData(t *testing.T) {
	fetchedAt := time.Date(2025, 3, 1, 8, 5, 9, 0, time.UTC)

	view := services.View{
		State:   services.Live,
		Address: "10.0.0.1:8080",
		Batch: queues.NewBatch([]queues.Snapshot{
			{Name: "orders", Pending: 50},
			{Name: "payments", Pending: 51},
		}, fetchedAt),
		Notification:    &services.Notification{Id: "n1", Message: "could not reach server"},
		RefreshInterval: 2 * time.Second,
	}

	data := newDashboardData(view, 500)

	if !data.Live || data.Connecting || data.State != "live" {
		t.Fatalf("unexpected state flags: %+v", data)
	}
	if data.TotalQueues != 2 || data.CriticalQueues != 1 {
		t.Fatalf("unexpected totals: %d/%d", data.TotalQueues, data.CriticalQueues)
	}
	if data.Queues[0].Critical || !data.Queues[1].Critical {
		t.Fatalf("expected only payments to be critical: %+v", data.Queues)
	}
	if data.FetchedAt != "08:05:09" || data.RefreshIntervalMs != 2000 || data.AddressDebounceMs != 500 {
		t.Fatalf("unexpected formatting: %+v", data)
	}
	if data.Notification == nil || data.Notification.Id != "n1" {
		t.Fatalf("unexpected notification: %+v", data.Notification)
	}
}

func TestNewDashboardData_NoBatch(t *testing.T) {
	data := newDashboardData(services.View{State: services.Disconnected}, 500)

	if data.Queues != nil || data.TotalQueues != 0 || data.FetchedAt != "" {
		t.Fatalf("expected an empty dashboard, got %+v", data)
	}
}
