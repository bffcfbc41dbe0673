package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable job collection the scheduler drains. All mutation of
// job state goes through its atomic operations; no component holds job state
// in memory across ticks.
type Store interface {
	Insert(ctx context.Context, job *Job) error

	// FindDue returns unlocked jobs with next_run_at <= before, ordered by
	// next_run_at ascending, at most limit records.
	FindDue(ctx context.Context, before time.Time, limit int) ([]Job, error)

	// Claim sets locked_at/locked_by iff the job is currently unlocked.
	// Returns false when another worker got there first.
	Claim(ctx context.Context, id uint64, instance string) (bool, error)

	// Reschedule clears the lock and writes the next run time, outcome and
	// failure counter. Idempotent.
	Reschedule(ctx context.Context, id uint64, nextRunAt time.Time, outcome string, failures int) error

	// RemoveMatching deletes every job of the given kind whose correlation
	// email matches, returning the removed records. A miss returns an empty
	// slice, not an error.
	RemoveMatching(ctx context.Context, kind Kind, email string) ([]Job, error)

	// ReleaseExpired clears locks taken before olderThan so that jobs
	// orphaned by a crashed worker become claimable again.
	ReleaseExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// GormStore implements Store on a postgres jobs table.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Insert(ctx context.Context, job *Job) error {
	return s.DB.WithContext(ctx).Create(job).Error
}

func (s *GormStore) FindDue(ctx context.Context, before time.Time, limit int) ([]Job, error) {
	var due []Job
	err := s.DB.WithContext(ctx).
		Where("next_run_at <= ? AND locked_at IS NULL", before).
		Order("next_run_at asc").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}

// Claim relies on the conditional update being atomic: two racing claimers
// hit the same row but only one sees locked_at still null.
func (s *GormStore) Claim(ctx context.Context, id uint64, instance string) (bool, error) {
	res := s.DB.WithContext(ctx).Exec(`
update jobs
set locked_at=now(), locked_by=?, updated_at=now()
where id=? and locked_at is null
`, instance, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) Reschedule(ctx context.Context, id uint64, nextRunAt time.Time, outcome string, failures int) error {
	return s.DB.WithContext(ctx).Exec(`
update jobs
set next_run_at=?, last_outcome=?, failures=?, locked_at=null, locked_by=null, updated_at=now()
where id=?
`, nextRunAt, outcome, failures, id).Error
}

func (s *GormStore) RemoveMatching(ctx context.Context, kind Kind, email string) ([]Job, error) {
	var removed []Job
	err := s.DB.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("kind=? AND email=?", kind, email).
		Delete(&removed).Error
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *GormStore) ReleaseExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Exec(`
update jobs
set locked_at=null, locked_by=null, updated_at=now()
where locked_at is not null and locked_at < ?
`, olderThan)
	return res.RowsAffected, res.Error
}
