package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiBackend talks to the consumer Gemini API.
type geminiBackend struct {
	client *genai.Client
}

func newGeminiBackend(apiKey string) (*geminiBackend, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiBackend{client: client}, nil
}

func (b *geminiBackend) generate(ctx context.Context, model string, req Request) (Response, error) {
	var config *genai.GenerateContentConfig
	if req.MaxTokens > 0 {
		config = &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	}

	resp, err := b.client.Models.GenerateContent(ctx, model, genai.Text(req.FullPrompt()), config)
	if err != nil {
		return Response{}, err
	}
	return Response{Text: resp.Text(), Usage: geminiUsage(resp)}, nil
}

// geminiUsage maps usage metadata only when every count is present.
func geminiUsage(resp *genai.GenerateContentResponse) *Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	md := resp.UsageMetadata
	if md.TotalTokenCount <= 0 || md.PromptTokenCount <= 0 {
		return nil
	}
	return &Usage{
		PromptTokens:     int(md.PromptTokenCount),
		CompletionTokens: int(md.CandidatesTokenCount),
		TotalTokens:      int(md.TotalTokenCount),
	}
}
