// Package handler is the thin HTTP layer for the sign-in flow. It delegates
// to the verification and session services without embedding business logic.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authservice "velofit/internal/auth/service"
	httpjson "velofit/internal/transport/http/json"
	"velofit/internal/transport/http/shared"
	dErrors "velofit/pkg/domain-errors"
)

// Verifier issues and redeems verification codes.
type Verifier interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
}

// Handler exposes the sign-in endpoints.
type Handler struct {
	verifier Verifier
	sessions *authservice.Service
	logger   *slog.Logger
	secure   bool
}

// New constructs the auth handler. secure marks session cookies Secure.
func New(verifier Verifier, sessions *authservice.Service, logger *slog.Logger, secure bool) *Handler {
	return &Handler{
		verifier: verifier,
		sessions: sessions,
		logger:   logger,
		secure:   secure,
	}
}

// Register mounts auth routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/request-code", h.handleRequestCode)
	r.Post("/api/auth/verify", h.handleVerify)
	r.Post("/api/auth/logout", h.handleLogout)
	r.Get("/api/auth/me", h.handleMe)
}

type requestCodeRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	var req requestCodeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.verifier.RequestCode(r.Context(), req.Email); err != nil {
		shared.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyResponse struct {
	Email             string    `json:"email"`
	DeviceDisplayName string    `json:"device_display_name"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.verifier.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		shared.WriteError(w, err)
		return
	}

	signed, session, err := h.sessions.Login(r.Context(), req.Email, r.UserAgent())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authservice.SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secure,
	})
	httpjson.WriteJSON(w, http.StatusOK, verifyResponse{
		Email:             session.Email,
		DeviceDisplayName: session.DeviceDisplayName,
		ExpiresAt:         session.ExpiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(authservice.SessionCookie); err == nil && c.Value != "" {
		if err := h.sessions.Logout(r.Context(), c.Value); err != nil {
			shared.WriteError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authservice.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secure,
	})
	httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.SessionFromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, verifyResponse{
		Email:             session.Email,
		DeviceDisplayName: session.DeviceDisplayName,
		ExpiresAt:         session.ExpiresAt,
	})
}

// RequireSession guards API routes: it resolves the session and stores the
// rider email in the request context, or rejects with 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.sessions.SessionFromRequest(r)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionEmailKey{}, session.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type sessionEmailKey struct{}

// SessionEmail retrieves the authenticated rider's email from the context.
func SessionEmail(ctx context.Context) string {
	if email, ok := ctx.Value(sessionEmailKey{}).(string); ok {
		return email
	}
	return ""
}
