package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Job refs are the operator-facing handle for jobs ("job#42"). Raw numeric
// ids stay an implementation detail of the store.
func ParseJobRef(jobRef string) (uint64, error) {
	trimmed := strings.TrimSpace(jobRef)
	if trimmed == "" {
		return 0, ErrJobRefRequired
	}
	if !strings.HasPrefix(trimmed, "job#") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidJobRef, jobRef)
	}

	numText := strings.TrimPrefix(trimmed, "job#")
	jobID, err := strconv.ParseUint(numText, 10, 64)
	if err != nil || jobID == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidJobRef, jobRef)
	}
	return jobID, nil
}

func FormatJobRef(jobID uint64) string {
	return fmt.Sprintf("job#%d", jobID)
}
