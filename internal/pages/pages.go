// Package pages serves the localized site shell. Handlers receive the
// internal (locale-stripped) path from the routing middleware and read the
// resolved locale from the X-Velofit-Locale header instead of re-parsing
// the URL.
package pages

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"velofit/internal/locale"
	"velofit/internal/locale/middleware"
	httpjson "velofit/internal/transport/http/json"
	"velofit/internal/transport/http/shared"
	dErrors "velofit/pkg/domain-errors"
)

var titles = map[locale.Locale]map[string]string{
	locale.EN: {
		"/":          "velofit — dial in your ride",
		"/pricing":   "Pricing",
		"/login":     "Sign in",
		"/dashboard": "Your bikes",
	},
	locale.NL: {
		"/":          "velofit — zit perfect op je fiets",
		"/pricing":   "Prijzen",
		"/login":     "Inloggen",
		"/dashboard": "Jouw fietsen",
	},
}

// Handler renders the page shells.
type Handler struct{}

// New constructs the pages handler.
func New() *Handler {
	return &Handler{}
}

// Register mounts the internal page routes. The locale middleware has
// already rewritten /{locale}/... to these paths.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.page("/"))
	r.Get("/pricing", h.page("/pricing"))
	r.Get("/login", h.page("/login"))
	r.Get("/dashboard", h.page("/dashboard"))
	r.Get("/dashboard/*", h.page("/dashboard"))
	r.Get("/api/locale/switch", h.handleSwitchHref)
}

func requestLocale(r *http.Request) locale.Locale {
	if l, ok := locale.Parse(r.Header.Get(middleware.LocaleHeader)); ok {
		return l
	}
	return locale.Default
}

func (h *Handler) page(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := requestLocale(r)
		title := titles[l][key]

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Language", l.String())
		fmt.Fprintf(w, "<!doctype html><html lang=%q><head><title>%s</title></head><body><h1>%s</h1></body></html>",
			l.String(), title, title)
	}
}

type switchHrefResponse struct {
	Href   string `json:"href"`
	Locale string `json:"locale"`
}

// handleSwitchHref builds the href for the language switcher: the current
// pathname re-targeted at the requested locale, query preserved.
func (h *Handler) handleSwitchHref(w http.ResponseWriter, r *http.Request) {
	target, ok := locale.Parse(r.URL.Query().Get("target"))
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown target locale"))
		return
	}
	pathname := r.URL.Query().Get("path")
	if pathname == "" {
		pathname = "/"
	}

	href := locale.SwitchHref(pathname, r.URL.Query().Get("query"), target)
	httpjson.WriteJSON(w, http.StatusOK, switchHrefResponse{Href: href, Locale: target.String()})
}
