package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// CodeLocker serializes consolidation runs per legal code using PostgreSQL
// session-scoped advisory locks. Lock keys are derived from the code ID, so
// workers consolidating different codes never block each other.
type CodeLocker struct {
	pool *pgxpool.Pool
}

// NewCodeLocker creates a new CodeLocker.
func NewCodeLocker(pool *pgxpool.Pool) *CodeLocker {
	return &CodeLocker{pool: pool}
}

// CodeLock is a held advisory lock. Session-scoped locks live on a single
// connection, so the lock pins one pooled connection until Unlock.
type CodeLock struct {
	conn *pgxpool.Conn
	key  int64
}

// Lock attempts to take the advisory lock for codeID without waiting.
// Returns domain.ErrLockUnavailable when another session holds the lock.
func (l *CodeLocker) Lock(ctx context.Context, codeID string) (*CodeLock, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	key := lockKey(codeID)

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&locked); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, fmt.Errorf("code %s: %w", codeID, domain.ErrLockUnavailable)
	}

	return &CodeLock{conn: conn, key: key}, nil
}

// Unlock releases the advisory lock and returns the connection to the pool.
// The handle must not be reused afterwards.
func (c *CodeLock) Unlock(ctx context.Context) error {
	defer c.conn.Release()

	if _, err := c.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", c.key); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	return nil
}

// lockKey maps a code ID onto the bigint advisory lock keyspace via FNV-1a.
func lockKey(codeID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(codeID))
	return int64(h.Sum64())
}
