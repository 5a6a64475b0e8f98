package translate

import (
	"strings"

	"github.com/minios-linux/lokitd/langmeta"
)

// Exemplar is a one-word translation pair used in the few-shot turn.
type Exemplar struct {
	Source     string `yaml:"source"`
	Translated string `yaml:"translated"`
}

// FallbackExemplar is used for languages without a registered exemplar.
// Its translated word equals the source word.
var FallbackExemplar = Exemplar{Source: "Hello", Translated: "Hello"}

// DefaultExamples returns the built-in exemplars keyed by English language
// name.
func DefaultExamples() map[string]Exemplar {
	return map[string]Exemplar{
		"Arabic":     {Source: "Hello", Translated: "مرحبا"},
		"Chinese":    {Source: "Hello", Translated: "你好"},
		"Dutch":      {Source: "Hello", Translated: "Hallo"},
		"French":     {Source: "Hello", Translated: "Bonjour"},
		"German":     {Source: "Hello", Translated: "Hallo"},
		"Hindi":      {Source: "Hello", Translated: "नमस्ते"},
		"Indonesian": {Source: "Hello", Translated: "Halo"},
		"Italian":    {Source: "Hello", Translated: "Ciao"},
		"Japanese":   {Source: "Hello", Translated: "こんにちは"},
		"Korean":     {Source: "Hello", Translated: "안녕하세요"},
		"Polish":     {Source: "Hello", Translated: "Cześć"},
		"Portuguese": {Source: "Hello", Translated: "Olá"},
		"Russian":    {Source: "Hello", Translated: "Привет"},
		"Spanish":    {Source: "Hello", Translated: "Hola"},
		"Thai":       {Source: "Hello", Translated: "สวัสดี"},
		"Turkish":    {Source: "Hello", Translated: "Merhaba"},
		"Vietnamese": {Source: "Hello", Translated: "Xin chào"},
	}
}

// Examples is a read-only exemplar table.
type Examples struct {
	byLang map[string]Exemplar
}

// NewExamples returns the built-in exemplars with extra merged on top.
// Keys of extra may be language names or codes.
func NewExamples(extra map[string]Exemplar) *Examples {
	byLang := make(map[string]Exemplar)
	for lang, ex := range DefaultExamples() {
		byLang[strings.ToLower(lang)] = ex
	}
	for lang, ex := range extra {
		byLang[key(lang)] = ex
	}
	return &Examples{byLang: byLang}
}

// Lookup returns the exemplar for lang. ok is false when lang has no
// registered exemplar and FallbackExemplar was returned.
func (e *Examples) Lookup(lang string) (Exemplar, bool) {
	if e != nil {
		if ex, ok := e.byLang[key(lang)]; ok {
			return ex, true
		}
		if ex, ok := e.byLang[strings.ToLower(strings.TrimSpace(lang))]; ok {
			return ex, true
		}
	}
	return FallbackExemplar, false
}

func key(lang string) string {
	return strings.ToLower(langmeta.Resolve(lang).Name)
}
