package translate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildPromptStructure(t *testing.T) {
	sources := []string{"Hello, '{{0}}'!", "Save {name}"}
	msgs := BuildPrompt("Japanese", sources, NewExamples(nil))

	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	roles := []Role{msgs[0].Role, msgs[1].Role, msgs[2].Role, msgs[3].Role}
	if diff := cmp.Diff([]Role{RoleSystem, RoleUser, RoleAssistant, RoleUser}, roles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}

	system := msgs[0].Content
	for _, want := range []string{"Japanese", "JSON array", "{{0}}", "{name}", "%s", "same order"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt does not mention %q", want)
		}
	}
	if strings.Contains(system, "%!") {
		t.Fatalf("system prompt has a formatting error:\n%s", system)
	}

	if got, want := msgs[1].Content, `["Hello, '{{0}}'!","Hello","Hello!"]`; got != want {
		t.Fatalf("example user turn = %s, want %s", got, want)
	}
	if got, want := msgs[2].Content, `["こんにちは, '{{0}}'!","こんにちは","こんにちは!"]`; got != want {
		t.Fatalf("example assistant turn = %s, want %s", got, want)
	}
}

func TestBuildPromptFinalTurnIsSourceJSON(t *testing.T) {
	cases := [][]string{
		{"Hello, '{{0}}'!"},
		{"a", "b", "c"},
		{"quote \" and backslash \\", "tab\tnewline\n", "ünïcödé"},
		{""},
	}
	for _, sources := range cases {
		msgs := BuildPrompt("French", sources, NewExamples(nil))
		want, err := json.Marshal(sources)
		if err != nil {
			t.Fatal(err)
		}
		if got := msgs[len(msgs)-1].Content; got != string(want) {
			t.Fatalf("final turn = %s, want %s", got, want)
		}
	}
}

func TestBuildPromptKeepsMarkupUnescaped(t *testing.T) {
	msgs := BuildPrompt("German", []string{"<b>Bold</b> & more"}, NewExamples(nil))
	if got, want := msgs[3].Content, `["<b>Bold</b> & more"]`; got != want {
		t.Fatalf("final turn = %s, want %s", got, want)
	}
}

func TestBuildPromptIsDeterministicAndExampleIndependentOfSources(t *testing.T) {
	ex := NewExamples(nil)
	a := BuildPrompt("Korean", []string{"one"}, ex)
	b := BuildPrompt("Korean", []string{"one"}, ex)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("prompt not deterministic (-first +second):\n%s", diff)
	}

	c := BuildPrompt("Korean", []string{"two", "three"}, ex)
	if diff := cmp.Diff(a[:3], c[:3]); diff != "" {
		t.Fatalf("system or example turns depend on sources (-one +two):\n%s", diff)
	}

	d := BuildPrompt("Spanish", []string{"one"}, ex)
	if a[2].Content == d[2].Content {
		t.Fatal("example assistant turn should change with the target language")
	}
}

func TestBuildPromptFallbackExemplar(t *testing.T) {
	msgs := BuildPrompt("Klingonese", []string{"x"}, NewExamples(nil))
	if msgs[1].Content != msgs[2].Content {
		t.Fatalf("fallback exemplar should echo the source: %s vs %s", msgs[1].Content, msgs[2].Content)
	}
	if !strings.Contains(msgs[0].Content, "Klingonese") {
		t.Fatal("unknown language name should pass through to the system prompt")
	}
}

func TestExamplesLookup(t *testing.T) {
	ex := NewExamples(map[string]Exemplar{
		"sw":       {Source: "Hello", Translated: "Habari"},
		"Japanese": {Source: "Thanks", Translated: "ありがとう"},
	})

	tests := []struct {
		lang   string
		want   Exemplar
		wantOK bool
	}{
		{"Japanese", Exemplar{"Thanks", "ありがとう"}, true},
		{"ja", Exemplar{"Thanks", "ありがとう"}, true},
		{"german", Exemplar{"Hello", "Hallo"}, true},
		{"zh-CN", Exemplar{"Hello", "你好"}, true},
		{"Swahili", Exemplar{"Hello", "Habari"}, true},
		{"Klingonese", FallbackExemplar, false},
	}
	for _, tc := range tests {
		got, ok := ex.Lookup(tc.lang)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Lookup(%q) = (%v, %v), want (%v, %v)", tc.lang, got, ok, tc.want, tc.wantOK)
		}
	}

	var nilTable *Examples
	if got, ok := nilTable.Lookup("Japanese"); ok || got != FallbackExemplar {
		t.Fatalf("nil table Lookup = (%v, %v)", got, ok)
	}
}

func TestProvidersResolve(t *testing.T) {
	p := NewProviders(map[string]string{
		"Local":          "http://127.0.0.1:8080/v1",
		ProviderDeepSeek: "https://proxy.example.com",
	})

	if got, err := p.Resolve("Local"); err != nil || got != "http://127.0.0.1:8080/v1" {
		t.Fatalf("Resolve(Local) = (%q, %v)", got, err)
	}
	if got, _ := p.Resolve(ProviderDeepSeek); got != "https://proxy.example.com" {
		t.Fatalf("override not applied: %q", got)
	}
	if got, _ := NewProviders(nil).Resolve("DeepSeek"); got != "https://api.deepseek.com" {
		t.Fatalf("default DeepSeek = %q", got)
	}
	if p.Len() != len(DefaultProviders())+1 {
		t.Fatalf("Len() = %d", p.Len())
	}

	for _, id := range []string{"Foo", "deepseek", " DeepSeek"} {
		_, err := p.Resolve(id)
		if err == nil || err.Error() == "" {
			t.Fatalf("Resolve(%q) succeeded, want error", id)
		}
		if !strings.HasPrefix(err.Error(), "Unsupported AI provider: "+id) {
			t.Fatalf("Resolve(%q) error = %q", id, err)
		}
	}
}
