package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"docforge/internal/errs"
	"docforge/internal/ports"
)

const systemPrompt = "You are a technical writer for an IT documentation platform. " +
	"Produce a complete markdown draft with a '## Context' section and an explicit review note."

// OpenAIGenerator implements ports.DraftGenerator against the chat
// completions API. Failures propagate; callers persist them on the job.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

var _ ports.DraftGenerator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(apiKey string, model string) (*OpenAIGenerator, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("generator model is required")
	}

	opts := make([]option.RequestOption, 0, 1)
	if strings.TrimSpace(apiKey) != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, draftCtx ports.DraftContext) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(draftCtx)),
		},
	})
	if err != nil {
		return "", errs.Wrap(err, "chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	draft := strings.TrimSpace(completion.Choices[0].Message.Content)
	if draft == "" {
		return "", errors.New("chat completion returned an empty draft")
	}
	return draft, nil
}

// BuildPrompt renders the generation context into the user prompt. Exported
// so tests can pin the prompt surface without a live client.
func BuildPrompt(draftCtx ports.DraftContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Intent: %s\n", draftCtx.Intent)
	if draftCtx.Tenant != "" {
		fmt.Fprintf(&b, "Tenant: %s\n", draftCtx.Tenant)
	}
	if draftCtx.DocumentTitle != "" {
		fmt.Fprintf(&b, "Target document: %s\n", draftCtx.DocumentTitle)
	}
	if draftCtx.ConnectorName != "" {
		fmt.Fprintf(&b, "Source connector: %s\n", draftCtx.ConnectorName)
		if draftCtx.ConnectorSource != "" {
			fmt.Fprintf(&b, "Connector source: %s\n", draftCtx.ConnectorSource)
		}
	}

	if len(draftCtx.Payload) > 0 {
		b.WriteString("Request details:\n")
		for _, key := range sortedKeys(draftCtx.Payload) {
			fmt.Fprintf(&b, "- %s: %v\n", key, draftCtx.Payload[key])
		}
	} else if strings.TrimSpace(draftCtx.RawPayload) != "" {
		fmt.Fprintf(&b, "Request details (raw): %s\n", draftCtx.RawPayload)
	}

	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
