package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"gopkg.in/gomail.v2"
)

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Config holds SMTP connection details.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// Dialer is the part of gomail.Dialer used to deliver messages.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers messages over SMTP.
type SMTPMailer struct {
	dialer      Dialer
	fromAddress string
	fromName    string
}

// NewSMTPMailer creates a new SMTPMailer backed by a gomail dialer.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	return NewSMTPMailerWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.FromAddress, cfg.FromName)
}

// NewSMTPMailerWithDialer creates a new SMTPMailer sending through dialer.
func NewSMTPMailerWithDialer(dialer Dialer, fromAddress, fromName string) *SMTPMailer {
	return &SMTPMailer{
		dialer:      dialer,
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

// Deliver sends msg immediately.
func (m *SMTPMailer) Deliver(msg Message) error {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.fromAddress, m.fromName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	log.Printf("Email %q sent to %s", msg.Subject, msg.To)
	return nil
}

// Send delivers msg synchronously.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	return m.Deliver(msg)
}

// VerificationSubject is the subject line of verification emails.
const VerificationSubject = "Verify your email"

var verificationTemplate = template.Must(template.New("verification").Parse(`<html>
<head>
  <style>
    .email-container { width: 800px; margin: 0 auto; }
    h1 { font-size: 24px; }
    p { font-size: 16px; }
    a { font-size: 18px; color: #007bff; }
  </style>
</head>
<body>
  <div class="email-container">
    <h1>Verify your email</h1>
    <p>Hi {{.Username}}!</p>
    <p>Please click the link below or copy and paste it into your web browser to verify your email address and complete your registration:</p>
    <a href="{{.Link}}">{{.Link}}</a>
    <p>Thanks for signing up! We're excited to have you as part of TaskRoom.</p>
    <p>Best regards,</p>
    <p>The TaskRoom Team</p>
  </div>
</body>
</html>
`))

// VerificationEmailHTML renders the verification email body linking to
// <origin>/verifyEmail/<token>.
func VerificationEmailHTML(username, token, origin string) (string, error) {
	var buf bytes.Buffer
	err := verificationTemplate.Execute(&buf, struct {
		Username string
		Link     string
	}{
		Username: username,
		Link:     origin + "/verifyEmail/" + token,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render verification email: %w", err)
	}
	return buf.String(), nil
}
