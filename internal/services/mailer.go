package services

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"study-gen/internal/models"
)

// Mailer hands a finished message to a mail transport.
type Mailer interface {
	Send(ctx context.Context, msg models.MailMessage) error
}

// SMTPConfig holds the SMTP account used by SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer delivers messages through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg models.MailMessage) error {
	out, err := buildMailMsg(msg)
	if err != nil {
		return err
	}

	client, err := m.newClient()
	if err != nil {
		return &DeliveryError{Message: "mail transport is misconfigured", Err: err}
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return &DeliveryError{Message: "the mail server rejected the message", Err: err}
	}
	return nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	return mail.NewClient(m.cfg.Host, m.clientOptions()...)
}

// clientOptions keeps the configured port as is: port 465 gets implicit TLS,
// any other port requires STARTTLS.
func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	return opts
}

func buildMailMsg(msg models.MailMessage) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return nil, &DeliveryError{Message: "invalid sender address", Err: err}
	}
	if err := out.To(msg.To...); err != nil {
		return nil, &DeliveryError{Message: "invalid recipient address", Err: err}
	}
	if len(msg.Bcc) > 0 {
		if err := out.Bcc(msg.Bcc...); err != nil {
			return nil, &DeliveryError{Message: "invalid monitor address", Err: err}
		}
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetMessageID()

	out.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	return out, nil
}

// describeMail summarizes a message for logs without the body.
func describeMail(msg models.MailMessage) string {
	return fmt.Sprintf("to=%v bcc=%d subject=%q", msg.To, len(msg.Bcc), msg.Subject)
}
