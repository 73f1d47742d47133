package pipeline

import (
	"fmt"
	"strings"
)

// JobStatus is the persisted lifecycle state of one generation attempt.
type JobStatus string

const (
	StatusPending   JobStatus = "PENDING"
	StatusRunning   JobStatus = "RUNNING"
	StatusCompleted JobStatus = "COMPLETED"
	StatusFailed    JobStatus = "FAILED"
	StatusCancelled JobStatus = "CANCELLED"
)

// Terminal reports whether the status ends a run. A FAILED or CANCELLED job
// can still be re-armed through retry, which is a separate transition class.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

func ParseJobStatus(raw string) (JobStatus, error) {
	status := JobStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// CanRetry guards the retry reset. Retrying a RUNNING job would race the
// in-flight run; every other state, terminal or not, may be re-armed.
func CanRetry(s JobStatus) error {
	if s == StatusRunning {
		return ErrRetryRunningJob
	}
	return nil
}

// CanCancel guards cancellation: only PENDING and RUNNING jobs carry intent
// that can still be withdrawn.
func CanCancel(s JobStatus) error {
	if s.Terminal() {
		return ErrCancelTerminalJob
	}
	return nil
}

// CanApprove guards the operator override. FAILED runs may be force-marked
// COMPLETED; a CANCELLED job must be retried instead, and approving a job
// that already completed is a no-op handled by the caller.
func CanApprove(s JobStatus) error {
	if s == StatusCancelled {
		return ErrApproveCancelledJob
	}
	return nil
}

// NormalizeIntent upper-cases the free-form job intent (CREATE, UPDATE,
// SUMMARY, QUALITY by convention; other values pass through normalized).
func NormalizeIntent(raw string) (string, error) {
	intent := strings.ToUpper(strings.TrimSpace(raw))
	if intent == "" {
		return "", ErrIntentRequired
	}
	return intent, nil
}
