package translate

import (
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Response sanitation
// ---------------------------------------------------------------------------

var (
	jsonFenceOpen    = regexp.MustCompile("(?i)^```json[ \t]*")
	genericFenceOpen = regexp.MustCompile("^```")
	fenceClose       = regexp.MustCompile("```$")
)

// Sanitize recovers a JSON array from generated text. It strips markdown
// code fences and any prose around the outermost brackets. ok is false when
// no bracketed span remains; cleaned is then the text with fences stripped
// and surrounding whitespace trimmed.
//
// Sanitize does not repair JSON: unbalanced brackets or stray quotes are
// left for the decoder to reject. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(raw string) (cleaned string, ok bool) {
	s := raw

	jsonTagged := jsonFenceOpen.MatchString(s)
	if jsonTagged {
		s = jsonFenceOpen.ReplaceAllString(s, "")
	}
	s = fenceClose.ReplaceAllString(s, "")
	if !jsonTagged {
		s = genericFenceOpen.ReplaceAllString(s, "")
	}

	s = strings.TrimSpace(s)

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return s, false
	}
	return s[start : end+1], true
}
