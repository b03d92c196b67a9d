// Package mailer delivers transactional email through Resend, SMTP or the
// process log.
package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/config"
)

// SendTimeout bounds a single delivery attempt. There are no retries.
const SendTimeout = 10 * time.Second

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

func New(cfg config.MailConfig, log *zap.Logger) (Sender, error) {
	switch cfg.Backend {
	case config.MailBackendResend:
		return NewResendSender(cfg.ResendAPIKey, cfg.From, cfg.ResendEndpoint), nil
	case config.MailBackendSMTP:
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From), nil
	case config.MailBackendLog, "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Backend)
	}
}

// LogSender records that a message was due without delivering it. Bodies
// carry codes and reset links, so they are never written out.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("mailer")}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email not delivered, log backend",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Text)+len(msg.HTML)),
	)
	return nil
}
