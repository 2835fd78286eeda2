package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw    string
		want   Locale
		wantOK bool
	}{
		{"en", EN, true},
		{"nl", NL, true},
		{"EN", EN, true},
		{" Nl ", NL, true},
		{"", "", false},
		{"fr", "", false},
		{"en-US", "", false},
		{"english", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "Parse(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.raw)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   Locale
		wantOK bool
	}{
		{"empty", "", "", false},
		{"simple", "nl", NL, true},
		{"region subtag", "nl-NL,nl;q=0.9,en;q=0.8", NL, true},
		{"first match wins", "en-GB,nl;q=0.9", EN, true},
		{"skips unrecognized", "fr-FR,fr;q=0.9,nl;q=0.5", NL, true},
		{"quality on first entry", "nl;q=0.4,en;q=0.9", NL, true},
		{"nothing recognized", "fr,de,es", "", false},
		{"garbage", ";;;,,,", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAcceptLanguage(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	t.Run("cookie beats header", func(t *testing.T) {
		l, src := Resolve("nl", "en-US,en")
		assert.Equal(t, NL, l)
		assert.Equal(t, SourceCookie, src)
	})

	t.Run("header when cookie invalid", func(t *testing.T) {
		l, src := Resolve("xx", "nl")
		assert.Equal(t, NL, l)
		assert.Equal(t, SourceHeader, src)
	})

	t.Run("default when nothing valid", func(t *testing.T) {
		l, src := Resolve("", "")
		assert.Equal(t, Default, l)
		assert.Equal(t, SourceDefault, src)
	})
}

func TestSplitPrefix(t *testing.T) {
	tests := []struct {
		path         string
		wantLocale   Locale
		wantInternal string
		wantOK       bool
	}{
		{"/nl", NL, "/", true},
		{"/nl/", NL, "/", true},
		{"/en/pricing", EN, "/pricing", true},
		{"/NL/pricing", NL, "/pricing", true},
		{"/fr/pricing", "", "/fr/pricing", false},
		{"/pricing", "", "/pricing", false},
		{"/", "", "/", false},
		{"/english/pricing", "", "/english/pricing", false},
	}
	for _, tt := range tests {
		l, internal, ok := SplitPrefix(tt.path)
		assert.Equal(t, tt.wantOK, ok, "SplitPrefix(%q)", tt.path)
		assert.Equal(t, tt.wantLocale, l, "SplitPrefix(%q)", tt.path)
		assert.Equal(t, tt.wantInternal, internal, "SplitPrefix(%q)", tt.path)
	}
}
