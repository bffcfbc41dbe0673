package mail

import "context"

// Email is a prepared message ready for delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers emails. Implementations may block on network I/O and may
// fail; callers own the retry policy.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
