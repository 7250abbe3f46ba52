package llm

import (
	"context"
	"fmt"
)

// Config selects and authenticates a backend.
type Config struct {
	Provider string // gemini, anthropic, openai
	APIKey   string
	Model    string
}

// Request is a single completion request.
type Request struct {
	Prompt    string
	Context   string // optional; prepended to Prompt
	MaxTokens int
}

// FullPrompt joins context and prompt the way every backend sends them.
func (r Request) FullPrompt() string {
	if r.Context == "" {
		return r.Prompt
	}
	return r.Context + "\n\n" + r.Prompt
}

// Usage captures token usage if the backend reported all of it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the generated text.
type Response struct {
	Text  string
	Usage *Usage
}

// Completer is the remote text-generation capability.
type Completer interface {
	Initialize(cfg Config) error
	IsInitialized() bool
	Complete(ctx context.Context, req Request) (Response, error)
	Reset()
}

// RemoteError is a backend failure projected to a human-readable message.
type RemoteError struct {
	Message string
	Code    string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Error codes carried by RemoteError.
const (
	CodeNotInitialized = "NOT_INITIALIZED"
	CodeUnknown        = "UNKNOWN_ERROR"
)

func remoteError(provider string, err error) *RemoteError {
	if err == nil {
		return &RemoteError{Message: "An unknown error occurred", Code: CodeUnknown}
	}
	if re, ok := err.(*RemoteError); ok {
		return re
	}
	return &RemoteError{
		Message: fmt.Sprintf("%s API error: %v", provider, err),
		Code:    providerCode(provider),
		Err:     err,
	}
}
