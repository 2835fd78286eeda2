// Package sender dispatches verification codes to riders.
package sender

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"velofit/internal/platform/config"
)

// Sender delivers a verification code to an email address.
// Delivery failures surface to the caller; the send action aborts on them.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}

// SMTPSender delivers codes over SMTP.
type SMTPSender struct {
	cfg config.SMTP
}

// NewSMTP constructs an SMTP-backed sender.
func NewSMTP(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendCode(_ context.Context, email, code string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your velofit sign-in code\r\n\r\nYour sign-in code is %s. It expires in 10 minutes.\r\n",
		s.cfg.From, email, code,
	)
	addr := s.cfg.Host + ":" + s.cfg.Port
	if err := smtp.SendMail(addr, nil, s.cfg.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

// LogSender writes codes to the log instead of mailing them. Development only.
type LogSender struct {
	logger *slog.Logger
}

// NewLog constructs a logging sender.
func NewLog(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendCode(ctx context.Context, email, code string) error {
	s.logger.InfoContext(ctx, "verification code issued (dev sender)", "email", email, "code", code)
	return nil
}
