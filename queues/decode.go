package queues

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotAnArray = errors.New("response is not a JSON array")

// wireQueue uses pointers so that missing required fields can be told apart from zero values.
type wireQueue struct {
	Name         *string       `json:"name"`
	Messages     *int64        `json:"messages"`
	Consumers    *int64        `json:"consumers"`
	MessageStats *wireMsgStats `json:"message_stats"`
}

type wireMsgStats struct {
	Ack     *int64 `json:"ack"`
	Publish *int64 `json:"publish"`
}

// Decode parses a `/queues` response body.
// Any element that is missing name, messages or consumers, or carries a negative count, fails the whole body.
func Decode(body []byte) ([]Snapshot, error) {
	var wire []*wireQueue
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, ErrNotAnArray
	}

	snapshots := make([]Snapshot, 0, len(wire))
	for i, w := range wire {
		s, err := w.toSnapshot()
		if err != nil {
			return nil, fmt.Errorf("queue #%d: %w", i, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

func (w *wireQueue) toSnapshot() (Snapshot, error) {
	if w == nil {
		return Snapshot{}, errors.New("null element")
	}
	if w.Name == nil || *w.Name == "" {
		return Snapshot{}, errors.New("missing name")
	}
	if w.Messages == nil {
		return Snapshot{}, fmt.Errorf("queue %q: missing messages", *w.Name)
	}
	if w.Consumers == nil {
		return Snapshot{}, fmt.Errorf("queue %q: missing consumers", *w.Name)
	}

	s := Snapshot{
		Name:      *w.Name,
		Pending:   *w.Messages,
		Consumers: *w.Consumers,
	}
	if w.MessageStats != nil {
		if w.MessageStats.Ack != nil {
			s.Processed = *w.MessageStats.Ack
		}
		if w.MessageStats.Publish != nil {
			s.Published = *w.MessageStats.Publish
		}
	}

	if s.Pending < 0 || s.Consumers < 0 || s.Processed < 0 || s.Published < 0 {
		return Snapshot{}, fmt.Errorf("queue %q: negative count", s.Name)
	}
	return s, nil
}
