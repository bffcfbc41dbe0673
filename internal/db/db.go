package db

import (
	"fmt"
	"time"

	"bday/internal/jobs"
	"bday/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxConnectAttempts = 5
	connectRetryDelay  = 5 * time.Second
)

// Connect dials postgres, retrying failed attempts with a fixed delay. The
// attempt count travels as an argument rather than shared state.
func Connect(dsn string) (*gorm.DB, error) {
	return connect(dsn, 1)
}

func connect(dsn string, attempt int) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err == nil {
		return gdb, nil
	}
	if attempt >= maxConnectAttempts {
		return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempt, err)
	}
	time.Sleep(connectRetryDelay)
	return connect(dsn, attempt+1)
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&user.User{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Partial index for the due-job scan: the scheduler only ever looks at
	// unlocked rows.
	stmts := []string{
		`create index if not exists idx_jobs_due on jobs(next_run_at) where locked_at is null;`,
		`create index if not exists idx_jobs_cancel on jobs(kind, email);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
