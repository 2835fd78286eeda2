// Package service implements the verification-code sign-in flow: issuing
// codes (gated by the durable rate limiter) and redeeming them.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"velofit/internal/auth/email"
	"velofit/internal/platform/metrics"
	"velofit/internal/sentinel"
	"velofit/internal/verification/models"
	"velofit/internal/verification/sender"
	dErrors "velofit/pkg/domain-errors"
)

const codeDigits = 6

// CodeStore persists issued codes.
type CodeStore interface {
	Insert(ctx context.Context, c *models.Code) error
	FindActive(ctx context.Context, email string, now time.Time) (*models.Code, error)
	MarkConsumed(ctx context.Context, id uuid.UUID) error
}

// Limiter gates code issuance per normalized email.
type Limiter interface {
	Consume(ctx context.Context, subject string) error
}

// Service issues and redeems verification codes.
type Service struct {
	codes   CodeStore
	limiter Limiter
	sender  sender.Sender
	clock   func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
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

// New creates the verification service.
func New(codes CodeStore, limiter Limiter, snd sender.Sender, opts ...Option) (*Service, error) {
	if codes == nil {
		return nil, errors.New("code store is required")
	}
	if limiter == nil {
		return nil, errors.New("limiter is required")
	}
	if snd == nil {
		return nil, errors.New("sender is required")
	}

	svc := &Service{
		codes:   codes,
		limiter: limiter,
		sender:  snd,
		clock:   time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RequestCode issues a fresh code for the address and dispatches it.
//
// The limiter consume happens before any state is written: a throttled
// address costs nothing. Store or dispatch failure aborts the operation
// and propagates to the caller.
func (s *Service) RequestCode(ctx context.Context, rawEmail string) error {
	addr := email.Normalize(rawEmail)
	if !email.IsValid(addr) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid email address")
	}

	if err := s.limiter.Consume(ctx, addr); err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash code")
	}

	rec, err := models.NewCode(addr, hash, s.clock())
	if err != nil {
		return err
	}
	if err := s.codes.Insert(ctx, rec); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store code")
	}
	if err := s.sender.SendCode(ctx, addr, code); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to dispatch code")
	}

	if s.metrics != nil {
		s.metrics.CodesIssued.Inc()
	}
	s.logger.InfoContext(ctx, "verification code issued", "email", addr)
	return nil
}

// VerifyCode redeems a code for the address. Codes are single use; a
// successful verification consumes the stored record.
func (s *Service) VerifyCode(ctx context.Context, rawEmail, code string) error {
	addr := email.Normalize(rawEmail)

	rec, err := s.codes.FindActive(ctx, addr, s.clock())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordVerify("no_active_code")
			return dErrors.New(dErrors.CodeUnauthorized, "invalid or expired code")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load code")
	}

	if bcrypt.CompareHashAndPassword(rec.CodeHash, []byte(code)) != nil {
		s.recordVerify("mismatch")
		return dErrors.New(dErrors.CodeUnauthorized, "invalid or expired code")
	}

	if err := s.codes.MarkConsumed(ctx, rec.ID); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.recordVerify("already_used")
			return dErrors.New(dErrors.CodeUnauthorized, "invalid or expired code")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume code")
	}

	s.recordVerify("ok")
	return nil
}

func (s *Service) recordVerify(result string) {
	if s.metrics != nil {
		s.metrics.CodesVerified.WithLabelValues(result).Inc()
	}
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for range codeDigits {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
