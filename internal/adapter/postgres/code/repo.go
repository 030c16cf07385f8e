// Package code implements the legal code registry repository using PostgreSQL.
package code

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres"
	"github.com/kodekslab/kodeks-backend/internal/domain"
)

const table = "legal_codes"

var columns = []string{
	"id", "name", "publication_ref", "status", "amendments_applied",
	"last_consolidated_at", "created_at", "updated_at",
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func returning() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// Repo provides legal code persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new legal code repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type codeRow struct {
	ID                 string     `db:"id"`
	Name               string     `db:"name"`
	PublicationRef     string     `db:"publication_ref"`
	Status             string     `db:"status"`
	AmendmentsApplied  int        `db:"amendments_applied"`
	LastConsolidatedAt *time.Time `db:"last_consolidated_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func (r codeRow) toDomain() domain.LegalCode {
	return domain.LegalCode{
		ID:                 r.ID,
		Name:               r.Name,
		PublicationRef:     r.PublicationRef,
		Status:             domain.ConsolidationStatus(r.Status),
		AmendmentsApplied:  r.AmendmentsApplied,
		LastConsolidatedAt: r.LastConsolidatedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// Create registers a new legal code and returns the persisted record.
func (r *Repo) Create(ctx context.Context, code domain.LegalCode) (domain.LegalCode, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Insert(table).
		Columns(columns...).
		Values(code.ID, code.Name, code.PublicationRef, string(code.Status), code.AmendmentsApplied,
			code.LastConsolidatedAt, code.CreatedAt, code.UpdatedAt).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return domain.LegalCode{}, fmt.Errorf("build insert legal_code: %w", err)
	}

	var row codeRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return domain.LegalCode{}, postgres.MapError(err, "legal_code", code.ID)
	}
	return row.toDomain(), nil
}

// Get returns a legal code by ID. A missing code maps to domain.ErrCodeNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domain.LegalCode, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.LegalCode{}, fmt.Errorf("build select legal_code: %w", err)
	}

	var row codeRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LegalCode{}, fmt.Errorf("legal_code %s: %w", id, domain.ErrCodeNotFound)
		}
		return domain.LegalCode{}, postgres.MapError(err, "legal_code", id)
	}
	return row.toDomain(), nil
}

// List returns all registered legal codes ordered by ID.
func (r *Repo) List(ctx context.Context) ([]domain.LegalCode, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list legal_codes: %w", err)
	}

	var rows []codeRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "legal_code", "all")
	}

	codes := make([]domain.LegalCode, len(rows))
	for i, row := range rows {
		codes[i] = row.toDomain()
	}
	return codes, nil
}

// SetStatus updates the consolidation status of a code.
func (r *Repo) SetStatus(ctx context.Context, id string, status domain.ConsolidationStatus, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update(table).
		Set("status", string(status)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update legal_code status: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "legal_code", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("legal_code %s: %w", id, domain.ErrCodeNotFound)
	}
	return nil
}

// RecordRun increments the applied amendment counter after a consolidation
// run, stamps last_consolidated_at, and moves the code to the given status.
func (r *Repo) RecordRun(ctx context.Context, id string, status domain.ConsolidationStatus, at time.Time) (domain.LegalCode, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update(table).
		Set("status", string(status)).
		Set("amendments_applied", squirrel.Expr("amendments_applied + 1")).
		Set("last_consolidated_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return domain.LegalCode{}, fmt.Errorf("build update legal_code run: %w", err)
	}

	var row codeRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LegalCode{}, fmt.Errorf("legal_code %s: %w", id, domain.ErrCodeNotFound)
		}
		return domain.LegalCode{}, postgres.MapError(err, "legal_code", id)
	}
	return row.toDomain(), nil
}
