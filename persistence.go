package resumekit

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Persistence owns the database handle. It is constructed explicitly and
// injected, never reached through package-level state; Connect is idempotent
// and pings with retry so a cold store does not fail the boot race.
type Persistence struct {
	dsn         string
	db          *bun.DB
	logger      Logger
	pingRetries int
	pingBackoff time.Duration
}

// PersistenceOption mutates a Persistence before Connect.
type PersistenceOption func(*Persistence)

// WithPersistenceLogger overrides the default logger.
func WithPersistenceLogger(logger Logger) PersistenceOption {
	return func(p *Persistence) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPingRetries sets how often Connect retries the initial ping.
func WithPingRetries(retries int, backoff time.Duration) PersistenceOption {
	return func(p *Persistence) {
		p.pingRetries = retries
		p.pingBackoff = backoff
	}
}

// NewPersistence creates an unconnected Persistence for the given DSN.
func NewPersistence(dsn string, opts ...PersistenceOption) *Persistence {
	p := &Persistence{
		dsn:         dsn,
		logger:      defLogger{},
		pingRetries: 3,
		pingBackoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Connect opens the database, verifies connectivity and ensures the schema.
// Calling it on an already connected Persistence is a no-op.
func (p *Persistence) Connect(ctx context.Context) error {
	if p.db != nil {
		return nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, p.dsn)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := p.pingWithRetry(ctx, db); err != nil {
		db.Close()
		return err
	}

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return err
	}

	p.db = db
	p.logger.Info("database connected: %s", p.dsn)
	return nil
}

func (p *Persistence) pingWithRetry(ctx context.Context, db *bun.DB) error {
	var err error
	for attempt := 0; attempt <= p.pingRetries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		p.logger.Warn("database ping failed (attempt %d): %s", attempt+1, err)

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled while connecting to database")
		case <-time.After(p.pingBackoff):
		}
	}
	return errors.Wrap(err, errors.CategoryInternal, "database unreachable")
}

func createSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Account)(nil),
		(*Order)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create schema")
		}
	}
	return nil
}

// DB returns the connected handle. It panics when called before Connect,
// which is a wiring bug, not a runtime condition.
func (p *Persistence) DB() *bun.DB {
	if p.db == nil {
		panic("resumekit: Persistence.DB called before Connect")
	}
	return p.db
}

// Close releases the database handle. Safe to call when never connected.
func (p *Persistence) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
