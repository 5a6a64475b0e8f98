package translate

import (
	"github.com/minios-linux/lokitd/failure"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderDeepSeek   = "DeepSeek"
	ProviderOpenAI     = "OpenAI"
	ProviderGroq       = "Groq"
	ProviderOpenRouter = "OpenRouter"
	ProviderOllama     = "Ollama"
)

// ---------------------------------------------------------------------------
// Provider table
// ---------------------------------------------------------------------------

// DefaultProviders returns the built-in provider base URLs. Every provider
// speaks the OpenAI chat-completions protocol.
func DefaultProviders() map[string]string {
	return map[string]string{
		ProviderDeepSeek:   "https://api.deepseek.com",
		ProviderOpenAI:     "https://api.openai.com/v1",
		ProviderGroq:       "https://api.groq.com/openai/v1",
		ProviderOpenRouter: "https://openrouter.ai/api/v1",
		ProviderOllama:     "http://localhost:11434/v1",
	}
}

// Providers maps a provider identifier to its base URL. It is built once at
// startup and only read afterwards, so concurrent lookups need no locking.
type Providers struct {
	byID map[string]string
}

// NewProviders returns the default table with overrides applied on top.
// An override for an existing identifier replaces its URL.
func NewProviders(overrides map[string]string) *Providers {
	byID := DefaultProviders()
	for id, url := range overrides {
		byID[id] = url
	}
	return &Providers{byID: byID}
}

// Resolve returns the base URL for id. Identifiers match exactly; an
// unknown identifier is a failure.UnsupportedProvider.
func (p *Providers) Resolve(id string) (string, error) {
	url, ok := p.byID[id]
	if !ok {
		return "", failure.New(failure.UnsupportedProvider, "Unsupported AI provider: "+id).
			WithDetails("unknown provider %q", id)
	}
	return url, nil
}

// Len returns the number of known providers.
func (p *Providers) Len() int {
	return len(p.byID)
}
