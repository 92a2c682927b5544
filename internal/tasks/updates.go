package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Completed lookups so far
	Total   int    // Total lookups in the batch
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data (the failing error for LookupFailed)
}

// Operation phase enumeration
type Phase int

const (
	LookupStarted Phase = iota
	LookupCompleted
	LookupFailed
)

func (p Phase) String() string {
	switch p {
	case LookupStarted:
		return "lookup_started"
	case LookupCompleted:
		return "lookup_completed"
	case LookupFailed:
		return "lookup_failed"
	default:
		return ""
	}
}

func lookupStartedUpdate(total int, resourceType string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupStarted,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up %d %s...", total, resourceType),
	}
}

func lookupCompletedUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupCompleted,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %s", id),
	}
}

func lookupFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed %s: %v", id, err),
		Data:    err,
	}
}
