package pipeline

import (
	"fmt"
	"strings"
)

// DispatchMode decides what happens to a job right after creation or retry.
type DispatchMode string

const (
	// DispatchImmediate processes the job synchronously in the calling request.
	DispatchImmediate DispatchMode = "immediate"
	// DispatchQueued publishes the job to the async queue for a worker to drain.
	DispatchQueued DispatchMode = "queued"
	// DispatchManual leaves the job PENDING until an operator processes it.
	DispatchManual DispatchMode = "manual"
)

func ParseDispatchMode(raw string) (DispatchMode, error) {
	mode := DispatchMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case DispatchImmediate, DispatchQueued, DispatchManual:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDispatchMode, raw)
	}
}

// DispatchPolicy is handed to the pipeline service at construction so tests
// can exercise every mode without touching ambient process state.
type DispatchPolicy struct {
	Mode DispatchMode
}
