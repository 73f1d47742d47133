package pipeline

import (
	"strings"
	"testing"
)

func findingWith(findings []Finding, category string) (Finding, bool) {
	for _, finding := range findings {
		if finding.Category == category {
			return finding, true
		}
	}
	return Finding{}, false
}

func TestScanDraftFlagsTodoMarkersPerLine(t *testing.T) {
	draft := strings.Join([]string{
		"# Runbook",
		"",
		"## Context",
		"TODO: document the rollback path",
		"All changes go through review.",
		"TODO fill in the escalation contact",
	}, "\n")

	findings := ScanDraft(draft)

	var todoFindings []Finding
	for _, finding := range findings {
		if finding.Category == CategoryStructure {
			todoFindings = append(todoFindings, finding)
		}
	}
	if len(todoFindings) != 2 {
		t.Fatalf("ScanDraft() structure findings = %d, want 2", len(todoFindings))
	}
	if todoFindings[0].Location != "line 4" || todoFindings[1].Location != "line 6" {
		t.Fatalf("ScanDraft() locations = %q, %q", todoFindings[0].Location, todoFindings[1].Location)
	}
	if todoFindings[0].Severity != SeverityWarning {
		t.Fatalf("ScanDraft() severity = %q", todoFindings[0].Severity)
	}
}

func TestScanDraftCleanDraftHasNoFindings(t *testing.T) {
	draft := strings.Join([]string{
		"# Deployment Guide",
		"",
		"## Context",
		"This guide covers the standard deployment flow.",
		"Every change requires a peer review before merge.",
	}, "\n")

	if findings := ScanDraft(draft); len(findings) != 0 {
		t.Fatalf("ScanDraft() findings = %d (%+v), want 0", len(findings), findings)
	}
}

func TestScanDraftMissingSections(t *testing.T) {
	findings := ScanDraft("plain text with no structure")

	if _, ok := findingWith(findings, CategoryCompliance); !ok {
		t.Fatalf("ScanDraft() missing compliance finding: %+v", findings)
	}
	if _, ok := findingWith(findings, CategoryTerminology); !ok {
		t.Fatalf("ScanDraft() missing terminology finding: %+v", findings)
	}
}

func TestScanDocumentFlagsCredentials(t *testing.T) {
	text := strings.Join([]string{
		"# Server Access",
		"Owner: platform team. Reviewed quarterly, see review notes.",
		"password: abc123",
	}, "\n")

	findings := ScanDocument(text)

	finding, ok := findingWith(findings, CategoryCompliance)
	if !ok {
		t.Fatalf("ScanDocument() missing compliance finding: %+v", findings)
	}
	if finding.Severity != SeverityError {
		t.Fatalf("ScanDocument() credential severity = %q", finding.Severity)
	}
	if finding.Location != "line 3" {
		t.Fatalf("ScanDocument() credential location = %q", finding.Location)
	}
}

func TestScanDocumentFlagsPlaceholderText(t *testing.T) {
	findings := ScanDocument("Intro paragraph.\nlorem ipsum dolor sit amet\nTBD")

	var styleLocations []string
	for _, finding := range findings {
		if finding.Category == CategoryStyle {
			styleLocations = append(styleLocations, finding.Location)
		}
	}
	if len(styleLocations) != 2 {
		t.Fatalf("ScanDocument() style findings = %d, want 2", len(styleLocations))
	}
	if styleLocations[0] != "line 2" || styleLocations[1] != "line 3" {
		t.Fatalf("ScanDocument() style locations = %v", styleLocations)
	}
}

func TestScanDocumentGovernanceAndReview(t *testing.T) {
	findings := ScanDocument("just some prose")

	if _, ok := findingWith(findings, CategoryStructure); !ok {
		t.Fatalf("ScanDocument() missing review finding: %+v", findings)
	}
	if _, ok := findingWith(findings, CategoryGovernance); !ok {
		t.Fatalf("ScanDocument() missing governance finding: %+v", findings)
	}

	clean := ScanDocument("Maintained by the infra team. Updated after each review.")
	if len(clean) != 0 {
		t.Fatalf("ScanDocument() clean findings = %+v", clean)
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<p class="intro">Maintained by ops</p>`)
	if strings.Contains(got, "<") || strings.Contains(got, "class=") {
		t.Fatalf("StripTags() = %q", got)
	}
	if !strings.Contains(got, "Maintained by ops") {
		t.Fatalf("StripTags() dropped text: %q", got)
	}
}
