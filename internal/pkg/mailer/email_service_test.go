package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWelcomeWithoutHost(t *testing.T) {
	svc := NewEmailService("", 587, "noreply@firm.test", "", "Case Portal", "http://portal.test")
	assert.ErrorIs(t, svc.SendWelcome("a@firm.test", "A", "client"), ErrNotConfigured)
}

func TestWelcomeMessage(t *testing.T) {
	svc := NewEmailService("smtp.firm.test", 587, "noreply@firm.test", "pw", "Case Portal", "http://portal.test").(*emailService)

	m := svc.welcomeMessage("jane@firm.test", "Jane <Doe>", "staff")

	assert.Equal(t, []string{"jane@firm.test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your case portal account"}, m.GetHeader("Subject"))

	from := m.GetHeader("From")
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "noreply@firm.test")

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<Doe>")
}
