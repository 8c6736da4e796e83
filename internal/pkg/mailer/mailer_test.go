package mailer

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evea/internal/config"
)

func TestNew_Drivers(t *testing.T) {
	m, err := New(config.MailConfig{Driver: "console"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleMailer{}, m)

	m, err = New(config.MailConfig{Driver: "sendgrid", SendGridAPIKey: "SG.x", From: "Evea <no-reply@evea.in>"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendGridMailer{}, m)

	_, err = New(config.MailConfig{Driver: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestSMTPMailer_BuildsMultipartMessage(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{SMTPHost: "smtp.local", SMTPPort: 2525, From: "Evea <no-reply@evea.in>"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotBody string
	)
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		assert.Equal(t, "no-reply@evea.in", from)
		return nil
	}

	msg, err := WelcomeEmail("a@x.com", "Asha", true)
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), msg))

	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	assert.Contains(t, gotBody, "multipart/alternative")
	assert.Contains(t, gotBody, "text/html")
	assert.Contains(t, gotBody, "Continue your vendor registration")
}

func TestTemplates(t *testing.T) {
	msg, err := CredentialsEmail("v@x.com", "Ravi", "Acme Events", "Tmp#Pass1234", "https://evea.in/vendor/login")
	require.NoError(t, err)
	assert.Equal(t, "Your Evea vendor account is approved", msg.Subject)
	assert.Contains(t, msg.Text, "Tmp#Pass1234")
	assert.Contains(t, msg.HTML, "Acme Events")

	msg, err = RejectionEmail("v@x.com", "Ravi", "Acme <Events>", "Documents are not legible")
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "Acme &lt;Events&gt;")
	assert.True(t, strings.HasPrefix(msg.Text, "Hi Ravi"))

	msg, err = StatusEmail("v@x.com", "Ravi", "Your listing was suspended", "Contact support.")
	require.NoError(t, err)
	assert.Equal(t, "Your listing was suspended", msg.Subject)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.FailNext(1, assert.AnError)

	assert.ErrorIs(t, r.Send(context.Background(), Message{To: "a@x.com"}), assert.AnError)
	assert.NoError(t, r.Send(context.Background(), Message{To: "a@x.com"}))
	assert.Len(t, r.To("a@x.com"), 1)
}
