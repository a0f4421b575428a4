package common

// QueueResponse is the wire shape of one element of a `/queues` response.
// The bridge writes it, the broker client reads the same shape.
type QueueResponse struct {
	Name         string                `json:"name"`
	Messages     int64                 `json:"messages"`
	Consumers    int64                 `json:"consumers"`
	MessageStats *MessageStatsResponse `json:"message_stats,omitempty"`
}

type MessageStatsResponse struct {
	Ack     int64 `json:"ack"`
	Publish int64 `json:"publish"`
}

type ConnectionResponse struct {
	State           string                `json:"state"`
	Address         string                `json:"address"`
	RefreshInterval int64                 `json:"refreshIntervalMs"`
	FetchedAt       *int64                `json:"fetchedAt,omitempty"`
	Queues          []QueueStatsResponse  `json:"queues"`
	Notification    *NotificationResponse `json:"notification,omitempty"`
}

type QueueStatsResponse struct {
	Name      string `json:"name"`
	Pending   int64  `json:"pending"`
	Consumers int64  `json:"consumers"`
	Processed int64  `json:"processed"`
	Published int64  `json:"published"`
	Critical  bool   `json:"critical"`
}

type NotificationResponse struct {
	Id       string `json:"id"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	RaisedAt int64  `json:"raisedAt"`
}

type AddressRequest struct {
	Address string `json:"address"`
}

type ErrorResponse struct {
	Code string `json:"code,omitempty"`
}
