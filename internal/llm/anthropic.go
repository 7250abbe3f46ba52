package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicBackend talks to the Anthropic Messages API.
type anthropicBackend struct {
	client anthropic.Client
}

func newAnthropicBackend(apiKey string) *anthropicBackend {
	return &anthropicBackend{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (b *anthropicBackend) generate(ctx context.Context, model string, req Request) (Response, error) {
	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens(req.MaxTokens, 4096),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.FullPrompt())),
		},
	})
	if err != nil {
		return Response{}, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	var usage *Usage
	if in > 0 || out > 0 {
		usage = &Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}
	}
	return Response{Text: text.String(), Usage: usage}, nil
}
