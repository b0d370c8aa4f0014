package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

var _ ports.Mailer = (*SMTPMailer)(nil)

// SMTPConfig holds the relay settings. Username and Password enable PLAIN auth.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer delivers messages through an SMTP relay using STARTTLS.
type SMTPMailer struct {
	host string
	opts []gomail.Option
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp mailer: host is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(timeout),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	return &SMTPMailer{host: cfg.Host, opts: opts}, nil
}

// Send dials the relay for each message.
func (m *SMTPMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	out, err := buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.host, m.opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(msg domain.MailMessage) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return out, nil
}
