// Package langmeta resolves the target-language identifiers callers send
// ("Japanese", "japanese", "ja", "ja_JP") to one canonical English name.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes a language.
type Meta struct {
	// Code is the BCP 47 tag, empty when the language was not recognized.
	Code string
	// Name is the English name used in prompts and exemplar lookups.
	Name string
	// Native is the language's name for itself.
	Native string
}

// Registry contains canonical language metadata keyed by BCP 47 tag.
// Regional variants fall back to their base language in Resolve.
var Registry = map[string]Meta{
	"ar":    {Code: "ar", Name: "Arabic", Native: "العربية"},
	"bg":    {Code: "bg", Name: "Bulgarian", Native: "Български"},
	"cs":    {Code: "cs", Name: "Czech", Native: "Čeština"},
	"da":    {Code: "da", Name: "Danish", Native: "Dansk"},
	"de":    {Code: "de", Name: "German", Native: "Deutsch"},
	"el":    {Code: "el", Name: "Greek", Native: "Ελληνικά"},
	"en":    {Code: "en", Name: "English", Native: "English"},
	"es":    {Code: "es", Name: "Spanish", Native: "Español"},
	"fa":    {Code: "fa", Name: "Persian", Native: "فارسی"},
	"fi":    {Code: "fi", Name: "Finnish", Native: "Suomi"},
	"fr":    {Code: "fr", Name: "French", Native: "Français"},
	"he":    {Code: "he", Name: "Hebrew", Native: "עברית"},
	"hi":    {Code: "hi", Name: "Hindi", Native: "हिन्दी"},
	"hu":    {Code: "hu", Name: "Hungarian", Native: "Magyar"},
	"id":    {Code: "id", Name: "Indonesian", Native: "Bahasa Indonesia"},
	"it":    {Code: "it", Name: "Italian", Native: "Italiano"},
	"ja":    {Code: "ja", Name: "Japanese", Native: "日本語"},
	"ko":    {Code: "ko", Name: "Korean", Native: "한국어"},
	"ms":    {Code: "ms", Name: "Malay", Native: "Bahasa Melayu"},
	"nl":    {Code: "nl", Name: "Dutch", Native: "Nederlands"},
	"no":    {Code: "no", Name: "Norwegian", Native: "Norsk"},
	"pl":    {Code: "pl", Name: "Polish", Native: "Polski"},
	"pt":    {Code: "pt", Name: "Portuguese", Native: "Português"},
	"ro":    {Code: "ro", Name: "Romanian", Native: "Română"},
	"ru":    {Code: "ru", Name: "Russian", Native: "Русский"},
	"sv":    {Code: "sv", Name: "Swedish", Native: "Svenska"},
	"th":    {Code: "th", Name: "Thai", Native: "ไทย"},
	"tr":    {Code: "tr", Name: "Turkish", Native: "Türkçe"},
	"uk":    {Code: "uk", Name: "Ukrainian", Native: "Українська"},
	"vi":    {Code: "vi", Name: "Vietnamese", Native: "Tiếng Việt"},
	"zh":    {Code: "zh", Name: "Chinese", Native: "中文"},
	"zh-CN": {Code: "zh-CN", Name: "Chinese", Native: "简体中文"},
	"zh-TW": {Code: "zh-TW", Name: "Chinese", Native: "繁體中文"},
}

// aliases maps lower-cased names that are not plain English language
// names to registry tags.
var aliases = map[string]string{
	"simplified chinese":  "zh-CN",
	"traditional chinese": "zh-TW",
	"mandarin":            "zh",
	"farsi":               "fa",
}

var byName = func() map[string]string {
	m := make(map[string]string, len(Registry))
	for code, meta := range Registry {
		key := strings.ToLower(meta.Name)
		// Prefer the base tag for names shared by several variants.
		if prev, ok := m[key]; ok && len(prev) < len(code) {
			continue
		}
		m[key] = code
	}
	for alias, code := range aliases {
		m[alias] = code
	}
	return m
}()

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort metadata for a language name or code.
// Unrecognized input is returned as the Name with no Code, so the set of
// accepted languages stays open.
func Resolve(lang string) Meta {
	trimmed := strings.TrimSpace(lang)
	if trimmed == "" {
		return Meta{}
	}
	if code, ok := byName[strings.ToLower(trimmed)]; ok {
		return Registry[code]
	}

	normalized := canonicalize(trimmed)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return Meta{Code: normalized, Name: m.Name, Native: m.Native}
		}
	}

	if tag, err := language.Parse(trimmed); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return Meta{Code: tag.String(), Name: name, Native: display.Self.Name(tag)}
		}
	}

	return Meta{Name: trimmed}
}
