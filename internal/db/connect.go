package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"task_api/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrClosed = errors.New("db: handle closed")

// ConnectTimeout bounds a single connection attempt.
const ConnectTimeout = 5 * time.Second

// Handle owns the connection pool. The pool is created on the first call to
// Pool and reused afterwards; a failed attempt leaves the handle empty so the
// next call tries again. Concurrent callers share one in-flight attempt and
// stop waiting when their own context ends.
type Handle struct {
	dsn string

	mu         sync.Mutex
	pool       *pgxpool.Pool
	connecting *connectAttempt
	closed     bool
}

type connectAttempt struct {
	done chan struct{}
	pool *pgxpool.Pool
	err  error
}

func NewHandle(dsn string) *Handle {
	return &Handle{dsn: dsn}
}

// Pool connects if needed and returns the shared pool. The mutex is never
// held across network I/O.
func (h *Handle) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	if h.pool != nil {
		pool := h.pool
		h.mu.Unlock()
		return pool, nil
	}
	if a := h.connecting; a != nil {
		h.mu.Unlock()
		select {
		case <-a.done:
			return a.pool, a.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	a := &connectAttempt{done: make(chan struct{})}
	h.connecting = a
	h.mu.Unlock()

	pool, err := h.connect(ctx)

	h.mu.Lock()
	h.connecting = nil
	switch {
	case err != nil:
	case h.closed:
		pool.Close()
		pool, err = nil, ErrClosed
	default:
		h.pool = pool
		logger.Info("database connected")
	}
	a.pool, a.err = pool, err
	h.mu.Unlock()
	close(a.done)
	return pool, err
}

func (h *Handle) connect(ctx context.Context) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, h.dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Ping reports whether the database is reachable, connecting first if the
// handle has not been used yet.
func (h *Handle) Ping(ctx context.Context) error {
	pool, err := h.Pool(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close releases the pool. Safe to call more than once.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pool != nil {
		h.pool.Close()
		h.pool = nil
	}
	h.closed = true
}

// Exec, Query and QueryRow let repositories hold the Handle itself: every
// operation connects first if no pool exists yet.

func (h *Handle) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	pool, err := h.Pool(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return pool.Exec(ctx, sql, args...)
}

func (h *Handle) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	pool, err := h.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return pool.Query(ctx, sql, args...)
}

func (h *Handle) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	pool, err := h.Pool(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return pool.QueryRow(ctx, sql, args...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
