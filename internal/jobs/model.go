package jobs

import "time"

// Kind identifies a job variant. Dispatch is keyed on this type; exactly one
// kind exists today.
type Kind string

const KindBirthdaySend Kind = "BIRTHDAY_SEND"

// Outcome of the most recent execution, informational.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

type Job struct {
	ID   uint64 `gorm:"primaryKey"`
	Kind Kind   `gorm:"type:text;not null;index"`

	// Email is the correlation key: cancellation removes every job of a
	// kind carrying this address.
	Email         string `gorm:"type:text;not null;index"`
	RecipientName string `gorm:"type:text;not null"`

	// Anchor month/day the recurrence is tied to. Feb 29 is a legal anchor
	// and is kept as-is; non-leap years resolve it at computation time.
	BirthMonth int    `gorm:"not null"`
	BirthDay   int    `gorm:"not null"`
	Timezone   string `gorm:"type:text;not null;default:'UTC'"`

	NextRunAt time.Time `gorm:"index;not null"`

	LockedAt *time.Time `gorm:"type:timestamptz"`
	LockedBy *string    `gorm:"type:text"`

	LastOutcome string `gorm:"type:text;not null;default:''"`
	Failures    int    `gorm:"not null;default:0"` // consecutive delivery failures

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
