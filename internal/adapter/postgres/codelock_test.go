package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres"
	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres/testhelper"
	"github.com/kodekslab/kodeks-backend/internal/domain"
)

func TestCodeLocker_Exclusive(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	locker := postgres.NewCodeLocker(pool)
	ctx := context.Background()

	lock, err := locker.Lock(ctx, "LOCK_EXCLUSIVE")
	if err != nil {
		t.Fatalf("first Lock returned error: %v", err)
	}

	// A second session must not obtain the same lock.
	_, err = locker.Lock(ctx, "LOCK_EXCLUSIVE")
	if !errors.Is(err, domain.ErrLockUnavailable) {
		t.Fatalf("second Lock: expected ErrLockUnavailable, got: %v", err)
	}

	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock returned error: %v", err)
	}

	// After unlock, the lock is available again.
	relock, err := locker.Lock(ctx, "LOCK_EXCLUSIVE")
	if err != nil {
		t.Fatalf("re-Lock after Unlock returned error: %v", err)
	}
	if err := relock.Unlock(ctx); err != nil {
		t.Fatalf("re-Unlock returned error: %v", err)
	}
}

func TestCodeLocker_DifferentCodesDoNotBlock(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	locker := postgres.NewCodeLocker(pool)
	ctx := context.Background()

	lockA, err := locker.Lock(ctx, "LOCK_CODE_A")
	if err != nil {
		t.Fatalf("Lock A returned error: %v", err)
	}
	defer func() { _ = lockA.Unlock(ctx) }()

	lockB, err := locker.Lock(ctx, "LOCK_CODE_B")
	if err != nil {
		t.Fatalf("Lock B returned error: %v", err)
	}
	defer func() { _ = lockB.Unlock(ctx) }()
}
