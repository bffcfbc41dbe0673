package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

// Service is the in-process surface the user CRUD layer calls to create and
// cancel recurring birthday jobs.
type Service struct {
	Store Store
	Now   func() time.Time // defaults to time.Now, overridable in tests
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Schedule inserts a self-renewing annual job anchored to the birthday's
// month/day, first firing at the next 09:00 local occurrence. Callers that
// replace an existing job must Cancel first; Schedule never deduplicates.
func (s *Service) Schedule(ctx context.Context, email, name string, birthday time.Time, timezone string) (*Job, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, timezone)
	}

	job := &Job{
		Kind:          KindBirthdaySend,
		Email:         email,
		RecipientName: name,
		BirthMonth:    int(birthday.Month()),
		BirthDay:      birthday.Day(),
		Timezone:      timezone,
		NextRunAt:     NextOccurrence(birthday.Month(), birthday.Day(), loc, s.now()),
	}
	if err := s.Store.Insert(ctx, job); err != nil {
		return nil, fmt.Errorf("insert birthday job for %s: %w", email, err)
	}
	return job, nil
}

// Cancel removes every birthday job correlated with email. A miss is not an
// error; the removed set is simply empty.
func (s *Service) Cancel(ctx context.Context, email string) ([]Job, error) {
	removed, err := s.Store.RemoveMatching(ctx, KindBirthdaySend, email)
	if err != nil {
		return nil, fmt.Errorf("remove birthday jobs for %s: %w", email, err)
	}
	return removed, nil
}
