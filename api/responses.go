package api

import (
	"github.com/n0rdy/queuewatch/common"
	"github.com/n0rdy/queuewatch/queues"
	"github.com/n0rdy/queuewatch/services"
)

func toConnectionResponse(view services.View) common.ConnectionResponse {
	resp := common.ConnectionResponse{
		State:           view.State.String(),
		Address:         view.Address,
		RefreshInterval: view.RefreshInterval.Milliseconds(),
		Queues:          make([]common.QueueStatsResponse, 0, view.Batch.Len()),
	}

	if view.Batch != nil {
		fetchedAt := view.Batch.FetchedAt.UnixMilli()
		resp.FetchedAt = &fetchedAt

		for _, s := range view.Batch.Queues {
			resp.Queues = append(resp.Queues, common.QueueStatsResponse{
				Name:      s.Name,
				Pending:   s.Pending,
				Consumers: s.Consumers,
				Processed: s.Processed,
				Published: s.Published,
				Critical:  queues.Classify(s) == queues.Critical,
			})
		}
	}

	if view.Notification != nil {
		resp.Notification = &common.NotificationResponse{
			Id:       view.Notification.Id,
			Kind:     view.Notification.Kind,
			Message:  view.Notification.Message,
			RaisedAt: view.Notification.RaisedAt.UnixMilli(),
		}
	}
	return resp
}
