package locale

import "strings"

// Fixed prefix sets for path classification. Matching rules live here so
// they stay centralized and independently testable instead of being inlined
// in the decision function.
var (
	assetPrefixes = []string{"/static/", "/assets/", "/favicon"}
	apiPrefixes   = []string{"/api", "/healthz", "/metrics"}
)

const protectedPrefix = "/dashboard"

// IsAssetPath reports whether the raw path addresses a static asset:
// anything under an asset prefix or whose final segment carries a file
// extension.
func IsAssetPath(pathname string) bool {
	for _, p := range assetPrefixes {
		if strings.HasPrefix(pathname, p) {
			return true
		}
	}
	last := pathname
	if i := strings.LastIndexByte(pathname, '/'); i >= 0 {
		last = pathname[i+1:]
	}
	return strings.Contains(last, ".")
}

// IsAPIPath reports whether the raw path addresses an API or operational
// endpoint that must never be locale-routed.
func IsAPIPath(pathname string) bool {
	for _, p := range apiPrefixes {
		if pathname == p || strings.HasPrefix(pathname, p+"/") {
			return true
		}
	}
	return false
}

// IsProtectedPath reports whether the locale-stripped internal path requires
// an authenticated session. This predicate is part of the public contract so
// callers can decide lazily whether the auth check is worth performing.
func IsProtectedPath(internalPath string) bool {
	return internalPath == protectedPrefix || strings.HasPrefix(internalPath, protectedPrefix+"/")
}

// RequiresAuthCheck reports whether deciding the raw path will consult the
// authentication status at all. Callers may skip the auth lookup (and pass
// Authenticated=true) whenever this returns false.
func RequiresAuthCheck(pathname string) bool {
	if IsAssetPath(pathname) || IsAPIPath(pathname) {
		return false
	}
	_, internal, ok := SplitPrefix(pathname)
	if !ok {
		return false
	}
	return IsProtectedPath(internal)
}

// SplitPrefix inspects the first path segment. If it is a recognized locale
// code the path is explicitly localized: the locale and the remainder (the
// internal path, "/" when empty) are returned with ok=true.
func SplitPrefix(pathname string) (Locale, string, bool) {
	if !strings.HasPrefix(pathname, "/") {
		return "", pathname, false
	}
	rest := pathname[1:]
	seg := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		seg = rest[:i]
	}
	l, ok := Parse(seg)
	if !ok {
		return "", pathname, false
	}
	internal := strings.TrimPrefix(rest, seg)
	if internal == "" {
		internal = "/"
	}
	return l, internal, true
}
