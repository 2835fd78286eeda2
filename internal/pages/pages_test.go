package pages

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velofit/internal/locale/middleware"
)

func router() http.Handler {
	r := chi.NewRouter()
	New().Register(r)
	return r
}

func TestPage_RendersResolvedLocale(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		localeHdr  string
		wantLang   string
		wantInBody string
	}{
		{"dutch home", "/", "nl", "nl", "zit perfect"},
		{"english home", "/", "en", "en", "dial in"},
		{"missing header falls back", "/pricing", "", "en", "Pricing"},
		{"dashboard subpage", "/dashboard/bikes", "nl", "nl", "Jouw fietsen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.localeHdr != "" {
				req.Header.Set(middleware.LocaleHeader, tt.localeHdr)
			}
			router().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantLang, rec.Header().Get("Content-Language"))
			assert.Contains(t, rec.Body.String(), tt.wantInBody)
		})
	}
}

func TestSwitchHref(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		want   string
	}{
		{
			name:   "prefixed path retargeted",
			query:  "target=nl&path=/en/pricing",
			status: http.StatusOK,
			want:   `"href":"/nl/pricing"`,
		},
		{
			name:   "query preserved",
			query:  "target=en&path=/nl&query=ref=footer",
			status: http.StatusOK,
			want:   `"href":"/en?ref=footer"`,
		},
		{
			name:   "empty path defaults to root",
			query:  "target=nl",
			status: http.StatusOK,
			want:   `"href":"/nl"`,
		},
		{
			name:   "unknown target rejected",
			query:  "target=de&path=/en",
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/locale/switch?"+tt.query, nil)
			router().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.want != "" {
				assert.Contains(t, rec.Body.String(), tt.want)
			}
		})
	}
}
