package ui

import (
	"github.com/n0rdy/queuewatch/queues"
	"github.com/n0rdy/queuewatch/services"
)

const fetchedAtLayout = "15:04:05"

type TemplateData struct {
	Title       string
	Error       string
	CSRFToken   string
	AuthEnabled bool
	// Dashboard specific data
	State             string
	Live              bool
	Connecting        bool
	Address           string
	FetchedAt         string
	Notification      *NotificationData
	Queues            []QueueCard
	TotalQueues       int
	CriticalQueues    int
	RefreshIntervalMs int64
	AddressDebounceMs int64
}

type QueueCard struct {
	Name      string
	Pending   int64
	Processed int64
	Consumers int64
	Critical  bool
}

type NotificationData struct {
	Id      string
	Message string
}

func newDashboardData(view services.View, addressDebounceMs int64) TemplateData {
	data := TemplateData{
		Title:             "Dashboard",
		State:             view.State.String(),
		Live:              view.State == services.Live,
		Connecting:        view.State == services.Connecting,
		Address:           view.Address,
		TotalQueues:       view.Batch.Len(),
		CriticalQueues:    view.Batch.CriticalCount(),
		RefreshIntervalMs: view.RefreshInterval.Milliseconds(),
		AddressDebounceMs: addressDebounceMs,
	}

	if view.Batch != nil {
		data.FetchedAt = view.Batch.FetchedAt.Format(fetchedAtLayout)
		data.Queues = make([]QueueCard, 0, len(view.Batch.Queues))
		for _, s := range view.Batch.Queues {
			data.Queues = append(data.Queues, QueueCard{
				Name:      s.Name,
				Pending:   s.Pending,
				Processed: s.Processed,
				Consumers: s.Consumers,
				Critical:  queues.Classify(s) == queues.Critical,
			})
		}
	}

	if view.Notification != nil {
		data.Notification = &NotificationData{
			Id:      view.Notification.Id,
			Message: view.Notification.Message,
		}
	}
	return data
}
