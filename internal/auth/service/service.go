// Package service manages rider sessions: establishing one after a
// verification code is redeemed, resolving one from a request cookie, and
// revoking one on logout.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"velofit/internal/auth/device"
	"velofit/internal/auth/models"
	"velofit/internal/auth/token"
	"velofit/internal/platform/metrics"
	"velofit/internal/sentinel"
	dErrors "velofit/pkg/domain-errors"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "velofit_session"

// SessionStore persists sessions.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service owns the session lifecycle.
type Service struct {
	sessions SessionStore
	signer   *token.Signer
	ttl      time.Duration
	clock    func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSessionTTL overrides the default 30-day session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New creates the session service.
func New(sessions SessionStore, signer *token.Signer, opts ...Option) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if signer == nil {
		return nil, errors.New("token signer is required")
	}

	svc := &Service{
		sessions: sessions,
		signer:   signer,
		ttl:      30 * 24 * time.Hour,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login establishes a session for a verified email and returns the signed
// token for the session cookie.
func (s *Service) Login(ctx context.Context, email, userAgent string) (string, *models.Session, error) {
	session, err := models.NewSession(email, device.ParseUserAgent(userAgent), s.clock(), s.ttl)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}

	signed, err := s.signer.Mint(session)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint session token")
	}

	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}
	s.logger.InfoContext(ctx, "session established", "email", email, "session_id", session.ID)
	return signed, session, nil
}

// Resolve verifies a raw session token and loads the live session.
func (s *Service) Resolve(ctx context.Context, rawToken string) (*models.Session, error) {
	id, err := s.signer.Parse(rawToken)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session token")
	}

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session.IsExpired(s.clock()) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}
	return session, nil
}

// Logout revokes the session carried by the token. Unknown or invalid
// tokens are not an error: logout is idempotent.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	id, err := s.signer.Parse(rawToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	return nil
}

// Authenticated implements the locale middleware's auth check: it reports
// whether the request carries a live session. Failures are never surfaced;
// a broken cookie is simply an unauthenticated request.
func (s *Service) Authenticated(r *http.Request) bool {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return false
	}
	_, err = s.Resolve(r.Context(), c.Value)
	return err == nil
}

// SessionFromRequest loads the live session from the request cookie.
func (s *Service) SessionFromRequest(r *http.Request) (*models.Session, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no session cookie")
	}
	return s.Resolve(r.Context(), c.Value)
}
