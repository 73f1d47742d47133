package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// Finding categories and severities shared by the draft-scan and
// document-scan rule sets.
const (
	CategoryStructure   = "STRUCTURE"
	CategoryCompliance  = "COMPLIANCE"
	CategoryTerminology = "TERMINOLOGY"
	CategoryStyle       = "STYLE"
	CategoryGovernance  = "GOVERNANCE"

	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// Finding is one rule-derived observation about a draft or document.
// Persistence and replacement of prior findings are the caller's job.
type Finding struct {
	Category string
	Severity string
	Message  string
	Location string
}

var (
	todoMarkerPattern  = regexp.MustCompile(`\bTODO\b`)
	credentialPattern  = regexp.MustCompile(`(?i)\b(password|passwd|secret|api[_-]?key|token)\s*[:=]\s*\S+`)
	placeholderPattern = regexp.MustCompile(`(?i)lorem ipsum|\bplaceholder\b|\btbd\b|\bxxx\b`)
	ownerPattern       = regexp.MustCompile(`(?i)\b(owner|responsible|maintained by)\b`)
)

// ScanDraft inspects a freshly generated draft. Deterministic and
// side-effect-free; findings come back in rule order, then line order.
func ScanDraft(text string) []Finding {
	findings := make([]Finding, 0, 4)

	for _, loc := range matchLines(text, todoMarkerPattern) {
		findings = append(findings, Finding{
			Category: CategoryStructure,
			Severity: SeverityWarning,
			Message:  "draft contains an unresolved TODO marker",
			Location: loc,
		})
	}

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "## context") && !strings.Contains(lower, "## background") {
		findings = append(findings, Finding{
			Category: CategoryCompliance,
			Severity: SeverityInfo,
			Message:  "draft has no context or background section",
		})
	}

	if !strings.Contains(lower, "review") {
		findings = append(findings, Finding{
			Category: CategoryTerminology,
			Severity: SeverityInfo,
			Message:  "draft does not mention a review process",
		})
	}

	return findings
}

// ScanDocument inspects an existing document's plain text (tags already
// stripped by the caller). Same contract as ScanDraft.
func ScanDocument(text string) []Finding {
	findings := make([]Finding, 0, 4)

	for _, loc := range matchLines(text, placeholderPattern) {
		findings = append(findings, Finding{
			Category: CategoryStyle,
			Severity: SeverityWarning,
			Message:  "document contains placeholder filler text",
			Location: loc,
		})
	}

	// Credential-looking literals are security findings and must never be
	// dropped, whatever else the scan produces.
	for _, loc := range matchLines(text, credentialPattern) {
		findings = append(findings, Finding{
			Category: CategoryCompliance,
			Severity: SeverityError,
			Message:  "document contains a credential-like literal",
			Location: loc,
		})
	}

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "review") {
		findings = append(findings, Finding{
			Category: CategoryStructure,
			Severity: SeverityInfo,
			Message:  "document does not mention a review process",
		})
	}

	if !ownerPattern.MatchString(text) {
		findings = append(findings, Finding{
			Category: CategoryGovernance,
			Severity: SeverityInfo,
			Message:  "document names no owner or responsible party",
		})
	}

	return findings
}

// StripTags removes angle-bracket markup so document-scan rules see prose,
// not HTML attributes.
func StripTags(text string) string {
	return tagPattern.ReplaceAllString(text, " ")
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func matchLines(text string, pattern *regexp.Regexp) []string {
	locations := make([]string, 0, 2)
	for i, line := range strings.Split(text, "\n") {
		if pattern.MatchString(line) {
			locations = append(locations, fmt.Sprintf("line %d", i+1))
		}
	}
	return locations
}
