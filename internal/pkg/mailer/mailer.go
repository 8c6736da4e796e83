// Package mailer sends transactional email through a configurable driver.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"evea/internal/config"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the driver named by MAIL_DRIVER.
func New(cfg config.MailConfig, log *zap.Logger) (Mailer, error) {
	switch cfg.Driver {
	case "", "console":
		return NewConsoleMailer(log), nil
	case "smtp":
		return NewSMTPMailer(cfg)
	case "sendgrid":
		return NewSendGridMailer(cfg)
	}
	return nil, fmt.Errorf("mailer: unknown driver %q", cfg.Driver)
}
