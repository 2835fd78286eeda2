// Package locale implements the locale routing decision engine: a pure,
// total function that classifies every inbound path and decides whether the
// request is passed through, redirected to a locale-prefixed URL, rewritten
// to its locale-stripped internal path, or bounced to the login page.
package locale

import "strings"

// Locale is a recognized two-letter locale code.
type Locale string

const (
	EN Locale = "en"
	NL Locale = "nl"
)

// Default is the locale used when neither cookie nor Accept-Language
// yields a recognized value.
const Default = EN

// Supported returns the closed set of recognized locales.
func Supported() []Locale {
	return []Locale{EN, NL}
}

// Parse validates a raw locale value case-insensitively.
// Malformed or unrecognized values report ok=false, never an error.
func Parse(raw string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(raw))) {
	case EN:
		return EN, true
	case NL:
		return NL, true
	}
	return "", false
}

func (l Locale) String() string {
	return string(l)
}

// Source identifies where a resolved locale came from, for observability.
type Source string

const (
	SourcePath    Source = "path"
	SourceCookie  Source = "cookie"
	SourceHeader  Source = "header"
	SourceDefault Source = "default"
)

// Resolve determines the target locale for an unprefixed path in strict
// priority order: cookie, then Accept-Language, then the default.
func Resolve(cookieValue, acceptLanguage string) (Locale, Source) {
	if l, ok := Parse(cookieValue); ok {
		return l, SourceCookie
	}
	if l, ok := ParseAcceptLanguage(acceptLanguage); ok {
		return l, SourceHeader
	}
	return Default, SourceDefault
}
