package jobs

import (
	"context"
	"fmt"

	"bday/internal/mail"
)

// Handler executes one claimed job of its kind. Run reports delivery failure
// via error; the scheduler owns all store writes.
type Handler interface {
	Kind() Kind
	Run(ctx context.Context, job Job) error
}

// BirthdaySender sends the birthday greeting for a claimed job. One outbound
// attempt per execution.
type BirthdaySender struct {
	Mailer mail.Sender
}

func (h *BirthdaySender) Kind() Kind { return KindBirthdaySend }

func (h *BirthdaySender) Run(ctx context.Context, job Job) error {
	email, err := mail.Birthday(job.Email, job.RecipientName)
	if err != nil {
		return err
	}
	if err := h.Mailer.Send(ctx, email); err != nil {
		return fmt.Errorf("send birthday email to %s: %w", job.Email, err)
	}
	return nil
}
