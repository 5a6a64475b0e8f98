package translate

import (
	"encoding/json"

	"github.com/minios-linux/lokitd/failure"
)

const validationMessage = "Translation result failed validation"

// Validate checks that candidate, a decoded JSON value, is an array with one
// element per source string and returns it as strings. Element content is
// not inspected; non-string elements are returned as their compact JSON
// text.
func Validate(sources []string, candidate any) ([]string, error) {
	arr, ok := candidate.([]any)
	if !ok {
		return nil, failure.New(failure.ValidationFailure, validationMessage).
			WithDetails("expected a JSON array, got %s", jsonType(candidate)).
			WithDiagnostics(failure.Diagnostics{Original: sources, Translated: candidate})
	}
	if len(arr) != len(sources) {
		return nil, failure.New(failure.ValidationFailure, validationMessage).
			WithDetails("expected %d translations, got %d", len(sources), len(arr)).
			WithDiagnostics(failure.Diagnostics{Original: sources, Translated: arr})
	}

	out := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			out[i] = s
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, failure.Wrap(failure.ValidationFailure, validationMessage, err).
				WithDetails("element %d cannot be represented as text", i).
				WithDiagnostics(failure.Diagnostics{Original: sources, Translated: arr})
		}
		out[i] = string(b)
	}
	return out, nil
}

// jsonType names the JSON type of a value produced by json.Unmarshal into
// an interface.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	default:
		return "unknown"
	}
}
