// Package middleware applies locale routing decisions at the HTTP edge,
// before any handler executes.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"velofit/internal/locale"
	"velofit/internal/platform/metrics"
)

const (
	// CookieName is the locale preference cookie.
	CookieName = "velofit_locale"
	// LocaleHeader carries the resolved locale to downstream rendering so
	// handlers never re-parse the path. Set only on rewrites.
	LocaleHeader = "X-Velofit-Locale"

	cookieMaxAge = int(365 * 24 * time.Hour / time.Second)
)

// AuthChecker resolves whether the request carries an authenticated session.
// The check may be expensive (store round trip), so the middleware only
// invokes it for protected paths.
type AuthChecker interface {
	Authenticated(r *http.Request) bool
}

// AuthCheckerFunc adapts a function to the AuthChecker interface.
type AuthCheckerFunc func(r *http.Request) bool

func (f AuthCheckerFunc) Authenticated(r *http.Request) bool {
	return f(r)
}

// Middleware routes every inbound request through the locale decision engine.
type Middleware struct {
	auth    AuthChecker
	logger  *slog.Logger
	metrics *metrics.Metrics
	secure  bool
}

// Option configures the Middleware.
type Option func(*Middleware)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mx
	}
}

// WithSecureCookies marks locale cookies Secure (production).
func WithSecureCookies(secure bool) Option {
	return func(m *Middleware) {
		m.secure = secure
	}
}

// New constructs the locale routing middleware.
func New(auth AuthChecker, opts ...Option) *Middleware {
	m := &Middleware{
		auth:   auth,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler wraps next with locale routing.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The auth check costs a store round trip; skip it whenever the
		// decision cannot depend on it.
		authenticated := true
		if locale.RequiresAuthCheck(r.URL.Path) {
			authenticated = m.auth.Authenticated(r)
		}

		d := locale.Decide(locale.Context{
			Pathname:       r.URL.Path,
			CookieValue:    m.cookieValue(r),
			AcceptLanguage: r.Header.Get("Accept-Language"),
			Authenticated:  authenticated,
		})

		if m.metrics != nil {
			m.metrics.RecordDecision(d.Kind.String())
			if d.Kind != locale.KindBypass {
				m.metrics.LocaleResolved.WithLabelValues(d.Locale.String(), string(d.Source)).Inc()
			}
		}

		switch d.Kind {
		case locale.KindBypass:
			next.ServeHTTP(w, r)

		case locale.KindRedirect, locale.KindAuthRedirect:
			m.setCookie(w, d.Locale)
			http.Redirect(w, r, d.Pathname, http.StatusTemporaryRedirect)

		case locale.KindRewrite:
			m.setCookie(w, d.Locale)
			r.URL.Path = d.Pathname
			r.Header.Set(LocaleHeader, d.Locale.String())
			next.ServeHTTP(w, r)
		}
	})
}

func (m *Middleware) cookieValue(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *Middleware) setCookie(w http.ResponseWriter, l locale.Locale) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    l.String(),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}
