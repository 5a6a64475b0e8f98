package translate

import (
	"context"
	"errors"
	"log/slog"
)

// ---------------------------------------------------------------------------
// Chat-completion collaborator
// ---------------------------------------------------------------------------

// Errors a ChatCompleter returns, possibly wrapped, so the translator can
// classify them.
var (
	ErrUpstreamAuth        = errors.New("provider rejected the credential")
	ErrUpstreamRateLimited = errors.New("provider rate limit exceeded")
)

// ChatRequest is a single chat-completion call.
type ChatRequest struct {
	BaseURL     string
	APIKey      string
	Model       string
	Messages    []Message
	Temperature float64
}

// LogValue implements slog.LogValuer. The credential is omitted.
func (r ChatRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", r.BaseURL),
		slog.String("model", r.Model),
		slog.Int("messages", len(r.Messages)),
		slog.Float64("temperature", r.Temperature),
	)
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int64 `json:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens"`
}

// ChatResponse is the generated text of a completion.
type ChatResponse struct {
	Text  string
	Model string
	Usage Usage
}

// ChatCompleter performs chat completions against an OpenAI-compatible API.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
