package ports

import "context"

// DraftContext carries everything the external generator may draw on:
// the job intent, tenant, parsed payload, connector identity and the target
// document title when the job has one.
type DraftContext struct {
	Intent          string
	Tenant          string
	DocumentTitle   string
	ConnectorName   string
	ConnectorSource string
	Payload         map[string]any
	RawPayload      string
}

// DraftGenerator is the single external generation call. Failures propagate
// as errors; there is no sentinel draft value.
type DraftGenerator interface {
	Generate(ctx context.Context, draftCtx DraftContext) (string, error)
}
