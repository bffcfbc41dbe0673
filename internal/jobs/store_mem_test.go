package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store with the same atomicity guarantees as the
// postgres implementation, for exercising the scheduler without a database.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	jobs   map[uint64]*Job

	findDueErr    error
	rescheduleErr error

	// now, when set, replaces time.Now so lock timestamps line up with the
	// fake clock the scheduler tests inject.
	now func() time.Time
}

func (m *memStore) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[uint64]*Job)}
}

func (m *memStore) Insert(_ context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = m.nextID
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memStore) FindDue(_ context.Context, before time.Time, limit int) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findDueErr != nil {
		return nil, m.findDueErr
	}
	var due []Job
	for _, j := range m.jobs {
		if j.LockedAt == nil && !j.NextRunAt.After(before) {
			due = append(due, *j)
		}
	}
	sort.Slice(due, func(i, k int) bool { return due[i].NextRunAt.Before(due[k].NextRunAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *memStore) Claim(_ context.Context, id uint64, instance string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.LockedAt != nil {
		return false, nil
	}
	now := m.clock()
	j.LockedAt = &now
	j.LockedBy = &instance
	return true, nil
}

func (m *memStore) Reschedule(_ context.Context, id uint64, nextRunAt time.Time, outcome string, failures int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rescheduleErr != nil {
		return m.rescheduleErr
	}
	j, ok := m.jobs[id]
	if !ok {
		return nil
	}
	j.NextRunAt = nextRunAt
	j.LastOutcome = outcome
	j.Failures = failures
	j.LockedAt = nil
	j.LockedBy = nil
	return nil
}

func (m *memStore) RemoveMatching(_ context.Context, kind Kind, email string) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := []Job{}
	for id, j := range m.jobs {
		if j.Kind == kind && j.Email == email {
			removed = append(removed, *j)
			delete(m.jobs, id)
		}
	}
	return removed, nil
}

func (m *memStore) ReleaseExpired(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, j := range m.jobs {
		if j.LockedAt != nil && j.LockedAt.Before(olderThan) {
			j.LockedAt = nil
			j.LockedBy = nil
			n++
		}
	}
	return n, nil
}

func (m *memStore) get(id uint64) Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.jobs[id]
}
