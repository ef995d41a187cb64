// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"errors"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type IEmailService interface {
	SendWelcome(toEmail, fullName, role string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	loginURL    string
}

// NewEmailService returns a mailer. With an empty host every send returns ErrNotConfigured.
func NewEmailService(host string, port int, username, password, senderName, clientURL string) IEmailService {
	s := &emailService{
		senderEmail: username,
		senderName:  senderName,
		loginURL:    clientURL + "/",
	}
	if host != "" {
		s.dialer = gomail.NewDialer(host, port, username, password)
	}
	return s
}

func (s *emailService) SendWelcome(toEmail, fullName, role string) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	m := s.welcomeMessage(toEmail, fullName, role)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send welcome mail to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) welcomeMessage(toEmail, fullName, role string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your case portal account")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s</h2>
			<p>An administrator created a <strong>%s</strong> account for you on the case portal.</p>
			<p>Sign in with this e-mail address at <a href="%s">%s</a>.</p>
			<p>Your administrator will share your initial password separately.</p>
		</div>
	`, html.EscapeString(fullName), html.EscapeString(role), s.loginURL, s.loginURL)

	m.SetBody("text/html", body)
	return m
}
