package pipeline

import (
	"strings"
	"time"

	domain "docforge/internal/domain/pipeline"
)

const pipelineActor = "pipeline"

func parseJobRef(jobRef string) (uint64, error) {
	return domain.ParseJobRef(jobRef)
}

func formatJobRef(jobID uint64) string {
	return domain.FormatJobRef(jobID)
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func derefUint64(ptr *uint64) uint64 {
	if ptr == nil {
		return 0
	}
	return *ptr
}

func strPtr(v string) *string {
	return &v
}

func normalizeActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "system"
	}
	return actor
}

func cacheJobStatusKey(jobRef string) string {
	return "job_status:" + jobRef
}
