package pipeline

import "strings"

const (
	SuggestionOpen      = "OPEN"
	SuggestionApplied   = "APPLIED"
	SuggestionDismissed = "DISMISSED"
)

// NormalizeSuggestionStatus upper-cases the reviewer-supplied status and
// falls back to OPEN for absent or unknown values.
func NormalizeSuggestionStatus(raw string) string {
	status := strings.ToUpper(strings.TrimSpace(raw))
	switch status {
	case SuggestionOpen, SuggestionApplied, SuggestionDismissed:
		return status
	default:
		return SuggestionOpen
	}
}

// SuggestionResolved reports whether a status is a terminal reviewer decision.
func SuggestionResolved(status string) bool {
	return status == SuggestionApplied || status == SuggestionDismissed
}
