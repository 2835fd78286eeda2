package locale

import "strings"

// ParseAcceptLanguage returns the first recognized locale from an
// Accept-Language header value.
//
// Only the primary language subtag of each entry is considered (the part
// before "-" or ";"); q-weights are ignored and header order is trusted,
// which matches the convention that clients list tags quality-sorted.
// Malformed input reports ok=false, never an error.
func ParseAcceptLanguage(header string) (Locale, bool) {
	if header == "" {
		return "", false
	}
	for _, entry := range strings.Split(header, ",") {
		tag := entry
		if i := strings.IndexByte(tag, ';'); i >= 0 {
			tag = tag[:i]
		}
		if i := strings.IndexByte(tag, '-'); i >= 0 {
			tag = tag[:i]
		}
		if l, ok := Parse(tag); ok {
			return l, true
		}
	}
	return "", false
}
