package queues

import "time"

// Snapshot is one queue's state as reported by the broker at fetch time.
type Snapshot struct {
	Name      string
	Pending   int64 // messages not yet acknowledged
	Consumers int64
	Processed int64 // cumulative acks, 0 when the broker reports no message stats
	Published int64
}

// Batch is the full result of one successful fetch.
// It is never mutated after construction: a newer fetch replaces it whole.
type Batch struct {
	Queues    []Snapshot
	FetchedAt time.Time
}

func NewBatch(snapshots []Snapshot, fetchedAt time.Time) *Batch {
	return &Batch{
		Queues:    snapshots,
		FetchedAt: fetchedAt,
	}
}

// Len is nil-safe so renderers can ask before the first successful fetch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Queues)
}

func (b *Batch) CriticalCount() int {
	if b == nil {
		return 0
	}

	count := 0
	for _, s := range b.Queues {
		if Classify(s) == Critical {
			count++
		}
	}
	return count
}
