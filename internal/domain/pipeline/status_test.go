package pipeline

import (
	"errors"
	"testing"
)

func TestParseJobStatusNormalizes(t *testing.T) {
	status, err := ParseJobStatus(" running ")
	if err != nil {
		t.Fatalf("ParseJobStatus() error = %v", err)
	}
	if status != StatusRunning {
		t.Fatalf("ParseJobStatus() = %q", status)
	}

	if _, err := ParseJobStatus("SLEEPING"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("ParseJobStatus() error = %v, want ErrInvalidStatus", err)
	}
}

func TestTerminalStates(t *testing.T) {
	for _, status := range []JobStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if !status.Terminal() {
			t.Fatalf("Terminal() = false for %s", status)
		}
	}
	for _, status := range []JobStatus{StatusPending, StatusRunning} {
		if status.Terminal() {
			t.Fatalf("Terminal() = true for %s", status)
		}
	}
}

func TestCanRetryRejectsRunningOnly(t *testing.T) {
	if err := CanRetry(StatusRunning); !errors.Is(err, ErrRetryRunningJob) {
		t.Fatalf("CanRetry(RUNNING) error = %v", err)
	}
	for _, status := range []JobStatus{StatusPending, StatusCompleted, StatusFailed, StatusCancelled} {
		if err := CanRetry(status); err != nil {
			t.Fatalf("CanRetry(%s) error = %v", status, err)
		}
	}
}

func TestCanCancelRejectsTerminal(t *testing.T) {
	for _, status := range []JobStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if err := CanCancel(status); !errors.Is(err, ErrCancelTerminalJob) {
			t.Fatalf("CanCancel(%s) error = %v", status, err)
		}
	}
	for _, status := range []JobStatus{StatusPending, StatusRunning} {
		if err := CanCancel(status); err != nil {
			t.Fatalf("CanCancel(%s) error = %v", status, err)
		}
	}
}

func TestCanApproveRejectsCancelledOnly(t *testing.T) {
	if err := CanApprove(StatusCancelled); !errors.Is(err, ErrApproveCancelledJob) {
		t.Fatalf("CanApprove(CANCELLED) error = %v", err)
	}
	for _, status := range []JobStatus{StatusPending, StatusRunning, StatusFailed, StatusCompleted} {
		if err := CanApprove(status); err != nil {
			t.Fatalf("CanApprove(%s) error = %v", status, err)
		}
	}
}

func TestNormalizeIntent(t *testing.T) {
	intent, err := NormalizeIntent(" create ")
	if err != nil {
		t.Fatalf("NormalizeIntent() error = %v", err)
	}
	if intent != "CREATE" {
		t.Fatalf("NormalizeIntent() = %q", intent)
	}

	if _, err := NormalizeIntent("   "); !errors.Is(err, ErrIntentRequired) {
		t.Fatalf("NormalizeIntent(blank) error = %v", err)
	}
}

func TestParseJobRef(t *testing.T) {
	jobID, err := ParseJobRef("job#42")
	if err != nil {
		t.Fatalf("ParseJobRef() error = %v", err)
	}
	if jobID != 42 {
		t.Fatalf("ParseJobRef() = %d", jobID)
	}

	if _, err := ParseJobRef(""); !errors.Is(err, ErrJobRefRequired) {
		t.Fatalf("ParseJobRef(empty) error = %v", err)
	}
	for _, ref := range []string{"42", "job#", "job#0", "job#abc", "issue#3"} {
		if _, err := ParseJobRef(ref); !errors.Is(err, ErrInvalidJobRef) {
			t.Fatalf("ParseJobRef(%q) error = %v", ref, err)
		}
	}

	if got := FormatJobRef(7); got != "job#7" {
		t.Fatalf("FormatJobRef() = %q", got)
	}
}

func TestParseDispatchMode(t *testing.T) {
	mode, err := ParseDispatchMode(" Queued ")
	if err != nil {
		t.Fatalf("ParseDispatchMode() error = %v", err)
	}
	if mode != DispatchQueued {
		t.Fatalf("ParseDispatchMode() = %q", mode)
	}

	if _, err := ParseDispatchMode("async"); !errors.Is(err, ErrInvalidDispatchMode) {
		t.Fatalf("ParseDispatchMode(async) error = %v", err)
	}
}

func TestNormalizeSuggestionStatus(t *testing.T) {
	if got := NormalizeSuggestionStatus("applied"); got != SuggestionApplied {
		t.Fatalf("NormalizeSuggestionStatus(applied) = %q", got)
	}
	if got := NormalizeSuggestionStatus("whatever"); got != SuggestionOpen {
		t.Fatalf("NormalizeSuggestionStatus(unknown) = %q", got)
	}
	if SuggestionResolved(SuggestionOpen) {
		t.Fatalf("SuggestionResolved(OPEN) = true")
	}
	if !SuggestionResolved(SuggestionDismissed) {
		t.Fatalf("SuggestionResolved(DISMISSED) = false")
	}
}
