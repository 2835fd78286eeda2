package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwitchHref(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		target   Locale
		want     string
	}{
		{"replace prefix", "/nl/pricing", "", EN, "/en/pricing"},
		{"prepend when unprefixed", "/pricing", "", NL, "/nl/pricing"},
		{"root", "/", "", NL, "/nl"},
		{"bare locale", "/en", "", NL, "/nl"},
		{"query preserved verbatim", "/nl/bikes/bk_789/edit", "tab=geometry", EN, "/en/bikes/bk_789/edit?tab=geometry"},
		{"query not reencoded", "/en/search", "q=stack%20reach&b=2&a=1", NL, "/nl/search?q=stack%20reach&b=2&a=1"},
		{"same locale is a no-op", "/nl/pricing", "", NL, "/nl/pricing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SwitchHref(tt.path, tt.rawQuery, tt.target))
		})
	}
}

// TestSwitchHref_RoundTrip switches a localized URL away and back again and
// expects the original string to be reproduced exactly.
func TestSwitchHref_RoundTrip(t *testing.T) {
	const path = "/nl/bikes/bk_789/edit"
	const query = "tab=geometry"

	away := SwitchHref(path, query, EN)
	assert.Equal(t, "/en/bikes/bk_789/edit?tab=geometry", away)

	back := SwitchHref("/en/bikes/bk_789/edit", query, NL)
	assert.Equal(t, path+"?"+query, back)
}
