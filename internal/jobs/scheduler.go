package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

type SchedulerConfig struct {
	// PollInterval is how often the loop checks for due jobs. 30 minutes is
	// enough for a 09:00-local trigger; shorter only reduces latency.
	PollInterval time.Duration

	// MaxConcurrency caps in-flight handler executions.
	MaxConcurrency int

	// RetryBackoff is the delay before retrying a failed send.
	RetryBackoff time.Duration

	// RetryLimit, when positive, gives up on the current occurrence after
	// that many consecutive failures and advances to the next year. Zero
	// retries forever.
	RetryLimit int

	// LockTTL releases locks older than this so jobs orphaned by a crashed
	// worker become claimable again.
	LockTTL time.Duration
}

// Scheduler is the polling loop that claims due jobs, dispatches their
// handlers under a concurrency cap, and writes back each outcome.
type Scheduler struct {
	store    Store
	handlers map[Kind]Handler
	cfg      SchedulerConfig
	log      zerolog.Logger

	instance string
	sem      *semaphore.Weighted
	now      func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewScheduler(store Store, cfg SchedulerConfig, log zerolog.Logger, handlers ...Handler) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Minute
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 20
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 5 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 3 * cfg.PollInterval
	}

	byKind := make(map[Kind]Handler, len(handlers))
	for _, h := range handlers {
		byKind[h.Kind()] = h
	}

	return &Scheduler{
		store:    store,
		handlers: byKind,
		cfg:      cfg,
		log:      log,
		instance: "scheduler-" + uuid.NewString(),
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		now:      time.Now,
	}
}

// Start launches the polling loop. A stopped scheduler can be started again.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(stopCh)
	s.log.Info().
		Str("instance", s.instance).
		Dur("poll_interval", s.cfg.PollInterval).
		Int("max_concurrency", s.cfg.MaxConcurrency).
		Msg("scheduler started")
}

// Stop halts polling and waits for in-flight executions to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh := s.stopCh
	s.mu.Unlock()

	close(stopCh)
	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run(stopCh <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(context.Background())
		case <-stopCh:
			return
		}
	}
}

// RunOnce executes a single claim-and-dispatch cycle and waits for every job
// it dispatched to finish. For tests and manual triggers.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.tick(ctx).Wait()
}

// tick claims due jobs and dispatches them. The returned WaitGroup tracks the
// executions dispatched by this cycle only; the loop does not wait on it, so
// ticks may overlap. Claim atomicity keeps that safe.
func (s *Scheduler) tick(ctx context.Context) *sync.WaitGroup {
	inFlight := &sync.WaitGroup{}
	now := s.now()

	if n, err := s.store.ReleaseExpired(ctx, now.Add(-s.cfg.LockTTL)); err != nil {
		s.log.Error().Err(err).Msg("release expired locks")
	} else if n > 0 {
		s.log.Warn().Int64("jobs", n).Msg("released expired job locks")
	}

	due, err := s.store.FindDue(ctx, now, s.cfg.MaxConcurrency)
	if err != nil {
		// Abandon the tick; the next interval retries.
		s.log.Error().Err(err).Msg("find due jobs")
		return inFlight
	}

	for _, job := range due {
		claimed, err := s.store.Claim(ctx, job.ID, s.instance)
		if err != nil {
			s.log.Error().Err(err).Uint64("job", job.ID).Msg("claim job")
			continue
		}
		if !claimed {
			// Another worker got there first.
			continue
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			// Context gone; the lock TTL sweep recovers the claim.
			return inFlight
		}
		inFlight.Add(1)
		s.wg.Add(1)
		go func(j Job) {
			defer s.wg.Done()
			defer inFlight.Done()
			defer s.sem.Release(1)
			s.execute(ctx, j)
		}(job)
	}
	return inFlight
}

// execute runs one claimed job and writes its outcome back to the store.
// Errors never propagate; the loop must survive any single bad job.
func (s *Scheduler) execute(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			// Job stays locked until the TTL sweep releases it.
			s.log.Error().Uint64("job", job.ID).Any("panic", r).Msg("handler panicked")
		}
	}()

	handler, ok := s.handlers[job.Kind]
	if !ok {
		s.log.Error().Uint64("job", job.ID).Str("kind", string(job.Kind)).Msg("no handler registered for job kind")
		return
	}

	start := s.now()
	if err := handler.Run(ctx, job); err != nil {
		s.retry(ctx, job, err)
		return
	}

	loc, err := time.LoadLocation(job.Timezone)
	if err != nil {
		// Timezone was validated at schedule time; a bad stored zone still
		// must not stall the job.
		loc = time.UTC
	}
	next := NextOccurrence(time.Month(job.BirthMonth), job.BirthDay, loc, s.now())
	if err := s.store.Reschedule(ctx, job.ID, next, OutcomeSuccess, 0); err != nil {
		s.log.Error().Err(err).Uint64("job", job.ID).Msg("reschedule after success, job stays locked")
		return
	}
	s.log.Info().
		Uint64("job", job.ID).
		Str("email", job.Email).
		Time("next_run_at", next).
		Dur("took", s.now().Sub(start)).
		Msg("job completed")
}

func (s *Scheduler) retry(ctx context.Context, job Job, cause error) {
	failures := job.Failures + 1

	if s.cfg.RetryLimit > 0 && failures >= s.cfg.RetryLimit {
		// Give up on this occurrence and move on to next year.
		loc, err := time.LoadLocation(job.Timezone)
		if err != nil {
			loc = time.UTC
		}
		next := NextOccurrence(time.Month(job.BirthMonth), job.BirthDay, loc, s.now())
		if err := s.store.Reschedule(ctx, job.ID, next, OutcomeFailure, 0); err != nil {
			s.log.Error().Err(err).Uint64("job", job.ID).Msg("reschedule after retry limit, job stays locked")
			return
		}
		s.log.Warn().
			Err(cause).
			Uint64("job", job.ID).
			Int("failures", failures).
			Time("next_run_at", next).
			Msg("retry limit reached, skipping occurrence")
		return
	}

	next := s.now().Add(s.cfg.RetryBackoff)
	if err := s.store.Reschedule(ctx, job.ID, next, OutcomeFailure, failures); err != nil {
		s.log.Error().Err(err).Uint64("job", job.ID).Msg("reschedule after failure, job stays locked")
		return
	}
	s.log.Error().
		Err(cause).
		Uint64("job", job.ID).
		Str("email", job.Email).
		Int("failures", failures).
		Time("next_run_at", next).
		Msg("job failed, retry scheduled")
}
