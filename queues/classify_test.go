package queues

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     Severity
	}{
		{"quiet queue", Snapshot{Name: "orders", Pending: 5, Consumers: 2}, Normal},
		{"empty queue", Snapshot{Name: "orders"}, Normal},
		{"at threshold", Snapshot{Name: "orders", Pending: 50}, Normal},
		{"above threshold", Snapshot{Name: "orders", Pending: 51}, Critical},
		{"dead letter suffix", Snapshot{Name: "orders.dlq", Pending: 1}, Critical},
		{"dead letter infix, empty", Snapshot{Name: "payments-dlq-retry"}, Critical},
		{"dead letter and backlog", Snapshot{Name: "dlq", Pending: 1000}, Critical},
		{"marker is case sensitive", Snapshot{Name: "orders.DLQ", Pending: 1}, Normal},
		{"processed count is ignored", Snapshot{Name: "orders", Processed: 10_000}, Normal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.snapshot); got != tt.want {
				t.Fatalf("Classify(%+v) = %s, want %s", tt.snapshot, got, tt.want)
			}
		})
	}
}

func TestBatch_CriticalCount(t *testing.T) {
	b := NewBatch([]Snapshot{
		{Name: "orders", Pending: 1},
		{Name: "orders.dlq"},
		{Name: "emails", Pending: 99},
	}, zeroTime)

	if got := b.CriticalCount(); got != 2 {
		t.Fatalf("expected 2 critical queues, got %d", got)
	}

	var empty *Batch
	if empty.Len() != 0 || empty.CriticalCount() != 0 {
		t.Fatalf("nil batch should report zero queues")
	}
}
