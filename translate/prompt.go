package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minios-linux/lokitd/langmeta"
)

// Role is the author of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    Role
	Content string
}

// ---------------------------------------------------------------------------
// System prompt
// ---------------------------------------------------------------------------

const systemPromptTemplate = `You are a dedicated translation function. You translate user interface strings of a software application into %s.

The input is a JSON array of strings. Translate every element into %s.

Rules:
1. Respond with a JSON array of strings only. Do not add explanations, notes or any other prose. Do not wrap the array in markdown code fences.
2. The output array must have exactly as many elements as the input array, in the same order. Element i of the output is the translation of element i of the input.
3. Preserve placeholders exactly as written and never translate them. This includes {{0}}, {{1}}, {name}, %%s, %%d and %%(name)s.
4. Do not translate technical identifiers such as variable names, file names, URLs, HTML tags or keyboard shortcuts.
5. Keep leading and trailing whitespace, punctuation style and line breaks of each string.`

// exampleTemplates are filled with the exemplar's word to form the
// few-shot turn pair. The first one carries a placeholder.
var exampleTemplates = []string{
	"%s, '{{0}}'!",
	"%s",
	"%s!",
}

// BuildPrompt returns the chat turns asking for sources to be translated
// into lang. The output is byte-identical for the same lang and sources;
// the few-shot pair depends on lang only.
func BuildPrompt(lang string, sources []string, examples *Examples) []Message {
	name := langmeta.Resolve(lang).Name
	if name == "" {
		name = lang
	}
	ex, _ := examples.Lookup(lang)

	return []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(systemPromptTemplate, name, name)},
		{Role: RoleUser, Content: encodeStrings(fillExamples(ex.Source))},
		{Role: RoleAssistant, Content: encodeStrings(fillExamples(ex.Translated))},
		{Role: RoleUser, Content: encodeStrings(sources)},
	}
}

func fillExamples(word string) []string {
	out := make([]string, len(exampleTemplates))
	for i, tmpl := range exampleTemplates {
		out[i] = fmt.Sprintf(tmpl, word)
	}
	return out
}

// encodeStrings serializes ss as a compact JSON array without HTML
// escaping, so markup in UI strings reaches the model as written.
func encodeStrings(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// a []string always encodes
	_ = enc.Encode(ss)
	return strings.TrimSuffix(buf.String(), "\n")
}
