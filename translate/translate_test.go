package translate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/lokitd/failure"
)

// stubChat is a ChatCompleter returning canned results.
type stubChat struct {
	text  string
	model string
	err   error
	block bool

	calls int
	got   ChatRequest
}

func (s *stubChat) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s.calls++
	s.got = req
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &ChatResponse{
		Text:  s.text,
		Model: s.model,
		Usage: Usage{PromptTokens: 40, CompletionTokens: 8, TotalTokens: 48},
	}, nil
}

func newTranslator(chat ChatCompleter, logOut io.Writer) *Translator {
	if logOut == nil {
		logOut = io.Discard
	}
	return &Translator{
		Providers:   NewProviders(nil),
		Examples:    NewExamples(nil),
		Chat:        chat,
		Temperature: DefaultTemperature,
		Logger:      slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
}

func validRequest() Request {
	return Request{
		Text:           []string{"Hello, '{{0}}'!"},
		APIKey:         "sk-secret-credential",
		AI:             ProviderDeepSeek,
		Model:          "deepseek-chat",
		TargetLanguage: "Japanese",
	}
}

func TestTranslateJapaneseDeepSeek(t *testing.T) {
	chat := &stubChat{text: `["こんにちは、'{{0}}'！"]`, model: "deepseek-chat"}
	tr := newTranslator(chat, nil)

	res, err := tr.Translate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if diff := cmp.Diff([]string{"こんにちは、'{{0}}'！"}, res.Translations); diff != "" {
		t.Fatalf("translations mismatch (-want +got):\n%s", diff)
	}
	if res.Model != "deepseek-chat" || res.Usage.TotalTokens != 48 {
		t.Fatalf("metadata = %q %+v", res.Model, res.Usage)
	}

	if chat.calls != 1 {
		t.Fatalf("Complete called %d times, want 1", chat.calls)
	}
	if chat.got.BaseURL != "https://api.deepseek.com" {
		t.Fatalf("BaseURL = %q", chat.got.BaseURL)
	}
	if chat.got.APIKey != "sk-secret-credential" || chat.got.Model != "deepseek-chat" {
		t.Fatalf("request = %+v", chat.got)
	}
	if chat.got.Temperature != DefaultTemperature {
		t.Fatalf("Temperature = %v", chat.got.Temperature)
	}
	if last := chat.got.Messages[len(chat.got.Messages)-1]; last.Content != `["Hello, '{{0}}'!"]` {
		t.Fatalf("final turn = %s", last.Content)
	}
}

func TestTranslateFallsBackToRequestedModel(t *testing.T) {
	chat := &stubChat{text: `["x"]`}
	res, err := newTranslator(chat, nil).Translate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Model != "deepseek-chat" {
		t.Fatalf("Model = %q", res.Model)
	}
}

func TestTranslateUnsupportedProviderMakesNoCall(t *testing.T) {
	chat := &stubChat{text: `["x"]`}
	req := validRequest()
	req.AI = "Foo"

	_, err := newTranslator(chat, nil).Translate(context.Background(), req)
	fe, ok := failure.As(err)
	if !ok {
		t.Fatalf("error = %v", err)
	}
	if fe.Message != "Unsupported AI provider: Foo" || fe.Status() != 400 {
		t.Fatalf("failure = %q status %d", fe.Message, fe.Status())
	}
	if chat.calls != 0 {
		t.Fatalf("Complete called %d times, want 0", chat.calls)
	}
}

func TestTranslateRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"no text", func(r *Request) { r.Text = nil }, "text"},
		{"empty text", func(r *Request) { r.Text = []string{} }, "text"},
		{"no language", func(r *Request) { r.TargetLanguage = " " }, "targetLanguage"},
		{"no provider", func(r *Request) { r.AI = "" }, "ai"},
		{"no model", func(r *Request) { r.Model = "" }, "model"},
		{"no key", func(r *Request) { r.APIKey = "" }, "apiKey"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chat := &stubChat{text: `["x"]`}
			req := validRequest()
			tc.mutate(&req)

			_, err := newTranslator(chat, nil).Translate(context.Background(), req)
			fe, ok := failure.As(err)
			if !ok || fe.Kind != failure.InvalidInput {
				t.Fatalf("error = %v, want InvalidInput", err)
			}
			if !strings.Contains(fe.Details(), tc.field) {
				t.Fatalf("Details() = %q, want it to name %q", fe.Details(), tc.field)
			}
			if chat.calls != 0 {
				t.Fatalf("Complete called %d times, want 0", chat.calls)
			}
		})
	}
}

func TestTranslateClassifiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		chat     *stubChat
		timeout  time.Duration
		kind     failure.Kind
		status   int
		message  string
		validate func(t *testing.T, fe *failure.Error)
	}{
		{
			name:    "auth",
			chat:    &stubChat{err: errors.Join(errors.New("status 401"), ErrUpstreamAuth)},
			kind:    failure.UpstreamAuthFailure,
			status:  401,
			message: "Authentication with the AI provider failed",
		},
		{
			name:    "rate limit",
			chat:    &stubChat{err: ErrUpstreamRateLimited},
			kind:    failure.UpstreamRateLimited,
			status:  429,
			message: "Rate limited by the AI provider",
		},
		{
			name:    "timeout",
			chat:    &stubChat{block: true},
			timeout: 10 * time.Millisecond,
			kind:    failure.UpstreamTimeout,
			status:  504,
			message: "The AI provider did not respond in time",
		},
		{
			name:    "unknown",
			chat:    &stubChat{err: errors.New("connection refused")},
			kind:    failure.UpstreamUnknownFailure,
			status:  500,
			message: "An error occurred while fetching the AI completion.",
		},
		{
			name:    "no array in response",
			chat:    &stubChat{text: "I cannot help with that."},
			kind:    failure.UpstreamParseFailure,
			status:  500,
			message: "Failed to parse the AI response as JSON",
			validate: func(t *testing.T, fe *failure.Error) {
				if fe.Diagnostics.RawResponse != "I cannot help with that." {
					t.Fatalf("RawResponse = %q", fe.Diagnostics.RawResponse)
				}
			},
		},
		{
			name:    "unbalanced brackets",
			chat:    &stubChat{text: "```json\n[\"a\", \"b\"\n```"},
			kind:    failure.UpstreamParseFailure,
			status:  500,
			message: "Failed to parse the AI response as JSON",
			validate: func(t *testing.T, fe *failure.Error) {
				want := failure.Diagnostics{
					RawResponse:     "```json\n[\"a\", \"b\"\n```",
					CleanedResponse: `["a", "b"`,
				}
				if diff := cmp.Diff(want, fe.Diagnostics); diff != "" {
					t.Fatalf("diagnostics mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:    "broken json",
			chat:    &stubChat{text: "```json\n[\"a\", \"b]\n```"},
			kind:    failure.UpstreamParseFailure,
			status:  500,
			message: "Failed to parse the AI response as JSON",
			validate: func(t *testing.T, fe *failure.Error) {
				if fe.Diagnostics.RawResponse == "" || fe.Diagnostics.CleanedResponse != `["a", "b]` {
					t.Fatalf("diagnostics = %+v", fe.Diagnostics)
				}
			},
		},
		{
			name:    "length mismatch",
			chat:    &stubChat{text: `["a", "b"]`},
			kind:    failure.ValidationFailure,
			status:  500,
			message: "Translation result failed validation",
			validate: func(t *testing.T, fe *failure.Error) {
				if fe.Details() != "expected 1 translations, got 2" {
					t.Fatalf("Details() = %q", fe.Details())
				}
				if diff := cmp.Diff([]any{"a", "b"}, fe.Diagnostics.Translated); len(fe.Diagnostics.Original) != 1 || diff != "" {
					t.Fatalf("diagnostics = %+v", fe.Diagnostics)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTranslator(tc.chat, nil)
			tr.Timeout = tc.timeout

			_, err := tr.Translate(context.Background(), validRequest())
			fe, ok := failure.As(err)
			if !ok {
				t.Fatalf("error = %v, want *failure.Error", err)
			}
			if fe.Kind != tc.kind || fe.Status() != tc.status || fe.Message != tc.message {
				t.Fatalf("failure = kind %v status %d message %q", fe.Kind, fe.Status(), fe.Message)
			}
			if tc.chat.calls != 1 {
				t.Fatalf("Complete called %d times, want exactly 1", tc.chat.calls)
			}
			if tc.validate != nil {
				tc.validate(t, fe)
			}
		})
	}
}

func TestTranslateNeverLogsCredentialOrSources(t *testing.T) {
	var logs bytes.Buffer
	req := validRequest()
	req.Text = []string{"top secret source string"}

	for _, chat := range []*stubChat{
		{text: `["ok"]`},
		{err: errors.New("boom")},
		{text: "not json"},
	} {
		_, _ = newTranslator(chat, &logs).Translate(context.Background(), req)
	}

	out := logs.String()
	if out == "" {
		t.Fatal("expected log output")
	}
	if strings.Contains(out, req.APIKey) {
		t.Fatalf("credential leaked into logs:\n%s", out)
	}
	if strings.Contains(out, req.Text[0]) {
		t.Fatalf("source text leaked into logs:\n%s", out)
	}
}

func TestTranslateWarnsAboutFallbackExemplar(t *testing.T) {
	var logs bytes.Buffer
	req := validRequest()
	req.TargetLanguage = "Klingonese"

	if _, err := newTranslator(&stubChat{text: `["x"]`}, &logs).Translate(context.Background(), req); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(logs.String(), "using fallback") {
		t.Fatalf("missing fallback warning:\n%s", logs.String())
	}
}
