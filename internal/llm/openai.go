package llm

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIBackend uses Chat Completions.
type openAIBackend struct {
	client openai.Client
}

func newOpenAIBackend(apiKey string) *openAIBackend {
	return &openAIBackend{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

func (b *openAIBackend) generate(ctx context.Context, model string, req Request) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.FullPrompt()),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, err
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	var usage *Usage
	if resp.Usage.TotalTokens > 0 {
		usage = &Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}
	return Response{Text: text, Usage: usage}, nil
}
