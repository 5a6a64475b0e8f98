// Package translate batch-translates UI strings through an OpenAI-compatible
// chat-completion provider.
//
// A translation is one model call: the source strings are wrapped in a
// prompt with a few-shot exemplar for the target language, the generated
// text is sanitized into a JSON array and the array is checked against the
// source length before it is returned. Failures are *failure.Error values.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/minios-linux/lokitd/failure"
)

const (
	// DefaultTemperature is the sampling temperature when none is configured.
	DefaultTemperature = 0.3
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 120 * time.Second
)

// Request is a translation request as received from a caller.
type Request struct {
	Text           []string `json:"text"`
	APIKey         string   `json:"apiKey"`
	AI             string   `json:"ai"`
	Model          string   `json:"model"`
	TargetLanguage string   `json:"targetLanguage"`
}

// Validate reports the first missing field as failure.InvalidInput.
func (r *Request) Validate() error {
	switch {
	case len(r.Text) == 0:
		return invalid("text", "the %s field must be a non-empty array of strings")
	case strings.TrimSpace(r.TargetLanguage) == "":
		return invalid("targetLanguage", "the %s field is required")
	case strings.TrimSpace(r.AI) == "":
		return invalid("ai", "the %s field is required")
	case strings.TrimSpace(r.Model) == "":
		return invalid("model", "the %s field is required")
	case r.APIKey == "":
		return invalid("apiKey", "the %s field is required")
	}
	return nil
}

func invalid(field, format string) error {
	return failure.New(failure.InvalidInput, "Invalid request").WithDetails(format, field)
}

// Result is a successful translation.
type Result struct {
	// Translations is aligned with Request.Text.
	Translations []string
	// Model is the model that served the request as reported by the provider.
	Model string
	Usage Usage
}

// Translator runs translation requests. A zero Timeout means
// DefaultTimeout; Temperature is sent as is.
type Translator struct {
	Providers   *Providers
	Examples    *Examples
	Chat        ChatCompleter
	Temperature float64
	Timeout     time.Duration
	Logger      *slog.Logger
}

func (t *Translator) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

func (t *Translator) timeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return DefaultTimeout
}

// Translate performs one translation request. The provider is resolved
// before any network call; exactly one call is made and it is never
// retried.
func (t *Translator) Translate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "translate.Translate")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, t.fail(span, err)
	}

	span.SetAttributes(
		attribute.String("ai.provider", req.AI),
		attribute.String("ai.model", req.Model),
		attribute.String("translate.target_language", req.TargetLanguage),
		attribute.Int("translate.sources", len(req.Text)),
	)

	baseURL, err := t.Providers.Resolve(req.AI)
	if err != nil {
		return nil, t.fail(span, err)
	}

	log := t.logger().With(
		"provider", req.AI,
		"model", req.Model,
		"target_language", req.TargetLanguage,
		"sources", len(req.Text),
	)
	if _, ok := t.Examples.Lookup(req.TargetLanguage); !ok {
		log.WarnContext(ctx, "no exemplar registered for target language, using fallback")
	}

	chatReq := ChatRequest{
		BaseURL:     baseURL,
		APIKey:      req.APIKey,
		Model:       req.Model,
		Messages:    BuildPrompt(req.TargetLanguage, req.Text, t.Examples),
		Temperature: t.Temperature,
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout())
	defer cancel()

	start := time.Now()
	resp, err := t.Chat.Complete(callCtx, chatReq)
	elapsed := time.Since(start)
	if err != nil {
		log.WarnContext(ctx, "chat completion failed", "request", chatReq, "duration", elapsed, "error", err)
		return nil, t.fail(span, t.classify(callCtx, err))
	}

	translations, err := decode(req.Text, resp.Text)
	if err != nil {
		log.WarnContext(ctx, "unusable chat completion", "duration", elapsed, "error", err)
		return nil, t.fail(span, err)
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	span.SetAttributes(attribute.Int64("ai.usage.total_tokens", resp.Usage.TotalTokens))
	log.InfoContext(ctx, "translation completed",
		"duration", elapsed,
		"total_tokens", resp.Usage.TotalTokens,
	)

	return &Result{Translations: translations, Model: model, Usage: resp.Usage}, nil
}

// decode sanitizes, parses and validates generated text.
func decode(sources []string, text string) ([]string, error) {
	cleaned, ok := Sanitize(text)
	if !ok {
		return nil, failure.New(failure.UpstreamParseFailure, "Failed to parse the AI response as JSON").
			WithDetails("the response contains no JSON array").
			WithDiagnostics(failure.Diagnostics{RawResponse: text, CleanedResponse: cleaned})
	}

	var candidate any
	if err := json.Unmarshal([]byte(cleaned), &candidate); err != nil {
		return nil, failure.Wrap(failure.UpstreamParseFailure, "Failed to parse the AI response as JSON", err).
			WithDetails("the response is not valid JSON: %s", err.Error()).
			WithDiagnostics(failure.Diagnostics{RawResponse: text, CleanedResponse: cleaned})
	}

	return Validate(sources, candidate)
}

// classify converts a ChatCompleter error into a *failure.Error.
func (t *Translator) classify(callCtx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrUpstreamAuth):
		return failure.Wrap(failure.UpstreamAuthFailure, "Authentication with the AI provider failed", err).
			WithDetails("check the API key for the selected provider")
	case errors.Is(err, ErrUpstreamRateLimited):
		return failure.Wrap(failure.UpstreamRateLimited, "Rate limited by the AI provider", err).
			WithDetails("the provider refused the request, try again later")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return failure.Wrap(failure.UpstreamTimeout, "The AI provider did not respond in time", err).
			WithDetails("no response within %s", t.timeout().String())
	default:
		return failure.Wrap(failure.UpstreamUnknownFailure, "An error occurred while fetching the AI completion.", err).
			WithDetails("%s", err.Error())
	}
}

func (t *Translator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if fe, ok := failure.As(err); ok {
		span.SetAttributes(attribute.String("failure.kind", fe.Kind.String()))
	}
	return err
}
