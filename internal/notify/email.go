// Package notify sends guest emails over SMTP.
package notify

import (
    "errors"
    "strings"

    "gopkg.in/gomail.v2"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
    Host string
    Port int
    User string
    Pass string
    From string
}

// EmailSender delivers plain text mail through an SMTP relay.
type EmailSender struct {
    from string
    send func(m *gomail.Message) error
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
    d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
    return &EmailSender{
        from: cfg.From,
        send: func(m *gomail.Message) error { return d.DialAndSend(m) },
    }
}

// SendEmail sends one message.  Callers treat failures as non-fatal.
func (s *EmailSender) SendEmail(to, subject, body string) error {
    to = strings.TrimSpace(to)
    if to == "" {
        return errors.New("notify: empty recipient")
    }
    m := gomail.NewMessage()
    m.SetHeader("From", s.from)
    m.SetHeader("To", to)
    m.SetHeader("Subject", subject)
    m.SetBody("text/plain", body)
    return s.send(m)
}
