package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Lookup Phase = iota
	Link
	Done
)

func (p Phase) String() string {
	switch p {
	case Lookup:
		return "lookup"
	case Link:
		return "link"
	case Done:
		return "done"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func lookupUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Lookup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking up: %s...", step, total, title),
	}
}

func linkedUpdate(step, total int, res TitleResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Link,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, res.Title, res.Outcome),
		Data:    res,
	}
}

func failedUpdate(step, total int, res TitleResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Link,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Title, res.Error),
		Data:    res,
	}
}

func doneUpdate(result *ImportResult) ProgressUpdate {
	added := result.Counts[OutcomeCreated] + result.Counts[OutcomeLinked]
	return ProgressUpdate{
		Phase:   Done,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Imported %d of %d titles", added, result.Total),
		Data:    result,
	}
}
