package mailer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"taskroom/pkg/mailer"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestVerificationEmailHTML(t *testing.T) {
	body, err := mailer.VerificationEmailHTML("alice", "abc.def.ghi", "http://localhost:3000")
	require.NoError(t, err)
	assert.Contains(t, body, "Hi alice!")
	assert.Contains(t, body, `href="http://localhost:3000/verifyEmail/abc.def.ghi"`)
}

func TestVerificationEmailHTML_EscapesUsername(t *testing.T) {
	body, err := mailer.VerificationEmailHTML("<b>bob</b>", "t", "http://x")
	require.NoError(t, err)
	assert.NotContains(t, body, "<b>bob</b>")
}

func TestSMTPMailer_Deliver(t *testing.T) {
	dialer := &fakeDialer{}
	m := mailer.NewSMTPMailerWithDialer(dialer, "noreply@taskroom.dev", "TaskRoom")

	err := m.Deliver(mailer.Message{To: "alice@example.com", Subject: mailer.VerificationSubject, HTML: "<p>hi</p>"})
	require.NoError(t, err)
	require.Len(t, dialer.sent, 1)
	assert.Equal(t, []string{"alice@example.com"}, dialer.sent[0].GetHeader("To"))
	assert.Equal(t, []string{mailer.VerificationSubject}, dialer.sent[0].GetHeader("Subject"))
	assert.Contains(t, dialer.sent[0].GetHeader("From")[0], "noreply@taskroom.dev")
}

func TestSMTPMailer_DeliverError(t *testing.T) {
	m := mailer.NewSMTPMailerWithDialer(&fakeDialer{err: errors.New("connection refused")}, "noreply@taskroom.dev", "TaskRoom")

	err := m.Deliver(mailer.Message{To: "alice@example.com"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "alice@example.com")
}
