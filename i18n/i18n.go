// Package i18n localizes the human-readable details of lokitd error
// responses.
//
// Translations are gettext catalogs embedded in the binary via //go:embed
// and loaded once by Init. The machine-checkable "error" string of a
// response is never translated; only its "details" are.
//
// Usage:
//
//	i18n.Init("")  // default from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	lang := i18n.Match(r.Header.Get("Accept-Language"))
//	fmt.Println(i18n.Sprintf(lang, "expected %d translations, got %d", 3, 2))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// locales embeds the translation files.
// Directory structure: locales/{lang}/LC_MESSAGES/lokitd.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for lokitd.
const domain = "lokitd"

// supported lists the languages with a catalog. English is the source
// language and has none.
var supported = []language.Tag{
	language.English,
	language.German,
	language.Russian,
}

var matcher = language.NewMatcher(supported)

var (
	catalogs    map[string]*gotext.Locale
	defaultLang = "en"
)

// Init loads every embedded catalog. fallback is the language used when a
// client states no usable preference; if empty, it is detected from the
// environment. Init must be called before serving requests; the loaded
// catalogs are only read afterwards.
func Init(fallback string) {
	if fallback == "" {
		fallback = detectLanguage()
	}
	defaultLang = bestMatch(fallback)

	loaded := make(map[string]*gotext.Locale, len(supported))
	for _, tag := range supported[1:] {
		lang := tag.String()
		l := gotext.NewLocaleFSWithPath(lang, locales, "locales")
		l.AddDomain(domain)
		l.SetDomain(domain)
		loaded[lang] = l
	}
	catalogs = loaded
}

// Match returns the supported language that best fits an Accept-Language
// header value.
func Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return defaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return defaultLang
	}
	return supported[idx].String()
}

// Sprintf formats a message in lang. Messages without a translation, and
// every message before Init, are formatted as written.
func Sprintf(lang, format string, args ...any) string {
	if l, ok := catalogs[lang]; ok {
		return l.Get(format, args...)
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// bestMatch maps a POSIX locale name such as ru_RU to a supported language.
func bestMatch(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "en"
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "en"
	}
	return supported[idx].String()
}

// detectLanguage reads environment variables to determine the process
// locale, following GNU gettext conventions.
func detectLanguage() string {
	// GNU gettext priority: LANGUAGE > LC_ALL > LC_MESSAGES > LANG
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			// Skip "C" and "POSIX", these mean no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
