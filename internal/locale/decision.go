package locale

// Context is the per-request input to the decision engine. It carries no
// I/O handles: the caller resolves cookie, header, and auth state up front.
type Context struct {
	// Pathname is the raw request path, always starting with "/".
	Pathname string
	// CookieValue is the previously persisted locale preference, raw.
	CookieValue string
	// AcceptLanguage is the raw Accept-Language header value.
	AcceptLanguage string
	// Authenticated is the pre-resolved auth status. It is only consulted
	// for protected internal paths; callers may pass true for all other
	// paths (see RequiresAuthCheck).
	Authenticated bool
}

// Kind discriminates routing decisions. Using a proper enum keeps
// downstream handling exhaustive instead of comparing strings.
type Kind int

const (
	// KindBypass passes the request through unmodified.
	KindBypass Kind = iota
	// KindRedirect sends the browser to a canonical locale-prefixed URL.
	KindRedirect
	// KindAuthRedirect sends an unauthenticated browser to the login page,
	// preserving locale.
	KindAuthRedirect
	// KindRewrite serves the locale-stripped internal path while the
	// browser-visible URL keeps its prefix.
	KindRewrite
)

func (k Kind) String() string {
	switch k {
	case KindBypass:
		return "bypass"
	case KindRedirect:
		return "redirect"
	case KindAuthRedirect:
		return "auth_redirect"
	case KindRewrite:
		return "rewrite"
	}
	return "unknown"
}

// Decision is the single outcome produced per request.
//
// Pathname is locale-prefixed for KindRedirect/KindAuthRedirect and
// locale-stripped for KindRewrite; Locale is the value to persist in the
// locale cookie. Both are empty for KindBypass.
type Decision struct {
	Kind     Kind
	Pathname string
	Locale   Locale
	Source   Source
}

// Decide classifies the request and produces exactly one routing decision.
// It is pure and total: same input, same output, and no input makes it fail.
func Decide(c Context) Decision {
	// Asset and API paths short-circuit everything else.
	if IsAssetPath(c.Pathname) || IsAPIPath(c.Pathname) {
		return Decision{Kind: KindBypass}
	}

	if l, internal, ok := SplitPrefix(c.Pathname); ok {
		if IsProtectedPath(internal) && !c.Authenticated {
			return Decision{
				Kind:     KindAuthRedirect,
				Pathname: "/" + l.String() + "/login",
				Locale:   l,
				Source:   SourcePath,
			}
		}
		// Rewrite refreshes the cookie to the browsing locale even when it
		// already matches; the operation is idempotent.
		return Decision{Kind: KindRewrite, Pathname: internal, Locale: l, Source: SourcePath}
	}

	// Unprefixed paths are always redirected so every browser-visible URL
	// for real content carries a locale prefix.
	l, source := Resolve(c.CookieValue, c.AcceptLanguage)
	target := "/" + l.String()
	if c.Pathname != "/" {
		target += c.Pathname
	}
	return Decision{Kind: KindRedirect, Pathname: target, Locale: l, Source: source}
}
