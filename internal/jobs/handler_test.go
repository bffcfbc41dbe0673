package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bday/internal/mail"
)

type fakeSender struct {
	err  error
	sent []mail.Email
}

func (f *fakeSender) Send(_ context.Context, e mail.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func TestBirthdaySenderSendsGreeting(t *testing.T) {
	sender := &fakeSender{}
	h := &BirthdaySender{Mailer: sender}

	err := h.Run(t.Context(), Job{Email: "ana@example.com", RecipientName: "Ana"})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ana@example.com", sender.sent[0].To)
	assert.Equal(t, "Happy Birthday!", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "Ana")
	assert.Contains(t, sender.sent[0].Text, "Ana")
}

func TestBirthdaySenderPropagatesDeliveryError(t *testing.T) {
	cause := errors.New("connection refused")
	h := &BirthdaySender{Mailer: &fakeSender{err: cause}}

	err := h.Run(t.Context(), Job{Email: "ana@example.com", RecipientName: "Ana"})
	require.ErrorIs(t, err, cause)
}
