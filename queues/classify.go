package queues

import "strings"

const (
	DeadLetterMarker         = "dlq"
	CriticalPendingThreshold = 50
)

type Severity int

const (
	Normal Severity = iota
	Critical
)

func (s Severity) String() string {
	if s == Critical {
		return "critical"
	}
	return "normal"
}

// Classify marks dead-letter queues and queues with a backlog above the threshold as critical.
func Classify(s Snapshot) Severity {
	if strings.Contains(s.Name, DeadLetterMarker) || s.Pending > CriticalPendingThreshold {
		return Critical
	}
	return Normal
}
