package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	"go.uber.org/zap"
)

// SMTP sends the delivery email with the download link directly over the
// configured transport.
type SMTP struct {
	cfg  config.EmailConfig
	log  *zap.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewFromConfig(cfg config.Config, log *zap.Logger) *SMTP {
	return &SMTP{
		cfg:  cfg.Email,
		log:  log.Named("collab.email"),
		send: smtp.SendMail,
	}
}

func (s *SMTP) Name() string { return "transactional_email" }

func (s *SMTP) Configured() bool { return s.cfg.Configured() }

func (s *SMTP) Deliver(ctx context.Context, payment domain.ConfirmedPayment) error {
	msg, err := buildMessage(s.cfg, payment)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	done := make(chan error, 1)
	go func() {
		done <- s.send(addr, auth, s.cfg.From, []string{payment.Email}, msg)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
