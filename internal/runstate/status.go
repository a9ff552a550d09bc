package runstate

import "fmt"

// Status is the closed set of stage states.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// ParseStatus validates raw against the known stage states.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusDone, StatusFailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown stage status %q", raw)
	}
}

// RunStatus tracks a run's lifecycle.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
)

// NoChapter is the chapter index recorded for run-level stages.
const NoChapter = -1
