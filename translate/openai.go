package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClient is a ChatCompleter backed by the openai-go SDK. The base URL
// and credential travel with each request, so one value serves every
// provider.
type OpenAIClient struct {
	// HTTPClient overrides the SDK's default client when set.
	HTTPClient *http.Client
}

// Complete sends one chat-completion request. The SDK's retries are
// disabled; a failed call is reported to the caller as is.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	opts := []option.RequestOption{
		option.WithBaseURL(req.BaseURL),
		option.WithAPIKey(req.APIKey),
		option.WithMaxRetries(0),
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	client := openai.NewClient(opts...)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("provider returned no choices")
	}

	return &ChatResponse{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// classifyAPIError maps HTTP status failures onto the sentinel errors.
func classifyAPIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUpstreamAuth, apiErr.StatusCode)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", ErrUpstreamRateLimited, apiErr.StatusCode)
	default:
		return fmt.Errorf("provider returned status %d: %s", apiErr.StatusCode, apiErr.Message)
	}
}
