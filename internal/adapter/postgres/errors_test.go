package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	got := MapError(nil, "legal_code", "GK_RF")
	if got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := MapError(pgx.ErrNoRows, "legal_code", "GK_RF")

	if got == nil {
		t.Fatal("MapError(ErrNoRows) = nil, want error")
	}
	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := "legal_code GK_RF: not found"; got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_WrappedNoRows(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("scan row: %w", pgx.ErrNoRows)
	got := MapError(wrapped, "article_version", "93.1")

	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(wrapped ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
}

func TestMapError_UniqueViolation(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	got := MapError(pgErr, "amendment_application", "2024-FZ-100")

	if !errors.Is(got, domain.ErrAlreadyExists) {
		t.Errorf("MapError(23505) does not wrap domain.ErrAlreadyExists: %v", got)
	}
}

func TestMapError_VersionDedupConstraint(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key",
		ConstraintName: constraintVersionDedup,
	}
	got := MapError(pgErr, "article_version", "93")

	if !errors.Is(got, domain.ErrDuplicateVersion) {
		t.Errorf("MapError(23505 on %s) does not wrap domain.ErrDuplicateVersion: %v",
			constraintVersionDedup, got)
	}
	if errors.Is(got, domain.ErrAlreadyExists) {
		t.Error("version dedup violation should not wrap domain.ErrAlreadyExists")
	}
}

func TestMapError_ApplicationRefConstraint(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key",
		ConstraintName: constraintApplicationRef,
	}
	got := MapError(pgErr, "amendment_application", "2024-FZ-100")

	if !errors.Is(got, domain.ErrAlreadyExists) {
		t.Errorf("MapError(23505 on %s) does not wrap domain.ErrAlreadyExists: %v",
			constraintApplicationRef, got)
	}
}

func TestMapError_ForeignKeyViolation(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23503", Message: "foreign key violation"}
	got := MapError(pgErr, "article_version", "93")

	if !errors.Is(got, domain.ErrCodeNotFound) {
		t.Errorf("MapError(23503) does not wrap domain.ErrCodeNotFound: %v", got)
	}
}

func TestMapError_CheckViolation(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23514", Message: "check constraint"}
	got := MapError(pgErr, "amendment_application", "2024-FZ-100")

	if !errors.Is(got, domain.ErrValidation) {
		t.Errorf("MapError(23514) does not wrap domain.ErrValidation: %v", got)
	}
}

func TestMapError_ContextDeadlineExceeded(t *testing.T) {
	t.Parallel()

	got := MapError(context.DeadlineExceeded, "legal_code", "GK_RF")

	if !errors.Is(got, context.DeadlineExceeded) {
		t.Errorf("MapError(DeadlineExceeded) does not wrap context.DeadlineExceeded: %v", got)
	}
	// Must NOT be mapped to a domain error
	if errors.Is(got, domain.ErrNotFound) {
		t.Error("MapError(DeadlineExceeded) should not wrap domain.ErrNotFound")
	}
}

func TestMapError_ContextCanceled(t *testing.T) {
	t.Parallel()

	got := MapError(context.Canceled, "legal_code", "GK_RF")

	if !errors.Is(got, context.Canceled) {
		t.Errorf("MapError(Canceled) does not wrap context.Canceled: %v", got)
	}
	// Must NOT be mapped to a domain error
	if errors.Is(got, domain.ErrNotFound) {
		t.Error("MapError(Canceled) should not wrap domain.ErrNotFound")
	}
}

func TestMapError_UnknownError(t *testing.T) {
	t.Parallel()

	original := errors.New("something unexpected")
	got := MapError(original, "legal_code", "GK_RF")

	if !errors.Is(got, original) {
		t.Errorf("MapError(unknown) does not wrap original error: %v", got)
	}
	if want := "legal_code GK_RF: something unexpected"; got.Error() != want {
		t.Errorf("MapError(unknown).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_UnknownPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	got := MapError(pgErr, "legal_code", "GK_RF")

	// Unknown PG codes should pass through, not be mapped to domain errors
	var unwrapped *pgconn.PgError
	if !errors.As(got, &unwrapped) {
		t.Errorf("MapError(unknown PgError) does not wrap *pgconn.PgError: %v", got)
	}
	if errors.Is(got, domain.ErrNotFound) || errors.Is(got, domain.ErrAlreadyExists) || errors.Is(got, domain.ErrValidation) {
		t.Error("MapError(unknown PgError) should not map to a domain error")
	}
}

func TestMapError_WrappedPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	wrapped := fmt.Errorf("insert row: %w", pgErr)
	got := MapError(wrapped, "amendment_application", "2024-FZ-100")

	if !errors.Is(got, domain.ErrAlreadyExists) {
		t.Errorf("MapError(wrapped 23505) does not wrap domain.ErrAlreadyExists: %v", got)
	}
}

func TestMapError_EntityAndIDInMessage(t *testing.T) {
	t.Parallel()

	got := MapError(pgx.ErrNoRows, "amendment_application", "2024-FZ-100")

	wantPrefix := "amendment_application 2024-FZ-100:"
	if len(got.Error()) < len(wantPrefix) || got.Error()[:len(wantPrefix)] != wantPrefix {
		t.Errorf("MapError message should start with %q, got %q", wantPrefix, got.Error())
	}
}
