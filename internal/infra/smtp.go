package infra

import (
	"fmt"
	"net/smtp"

	"github.com/YousofDev/Invoice-Tracker/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending invoices with PDF attachments.
type Mailer struct {
	host     string
	port     int
	user     string
	from     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		from:     from,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendInvoice emails an invoice PDF to the client.
func (m *Mailer) SendInvoice(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
