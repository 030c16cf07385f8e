// Package application implements the amendment application repository using
// PostgreSQL. One row exists per (code, amendment ref); sealed rows are the
// immutable provenance of a consolidation run.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres"
	"github.com/kodekslab/kodeks-backend/internal/domain"
)

const table = "amendment_applications"

var columns = []string{
	"id", "code_id", "amendment_ref", "classification", "effective_date",
	"sequence_no", "instruction_hash", "status", "added_articles",
	"modified_articles", "repealed_articles", "conflicts", "notes",
	"error_detail", "applied_at", "created_at", "updated_at",
}

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func returning() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// Repo provides amendment application persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new amendment application repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type applicationRow struct {
	ID               uuid.UUID  `db:"id"`
	CodeID           string     `db:"code_id"`
	AmendmentRef     string     `db:"amendment_ref"`
	Classification   string     `db:"classification"`
	EffectiveDate    time.Time  `db:"effective_date"`
	SequenceNo       int64      `db:"sequence_no"`
	InstructionHash  string     `db:"instruction_hash"`
	Status           string     `db:"status"`
	AddedArticles    []string   `db:"added_articles"`
	ModifiedArticles []string   `db:"modified_articles"`
	RepealedArticles []string   `db:"repealed_articles"`
	Conflicts        []byte     `db:"conflicts"`
	Notes            []byte     `db:"notes"`
	ErrorDetail      *string    `db:"error_detail"`
	AppliedAt        *time.Time `db:"applied_at"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (r applicationRow) toDomain() (domain.AmendmentApplication, error) {
	var conflicts []domain.ConflictRecord
	if len(r.Conflicts) > 0 {
		if err := json.Unmarshal(r.Conflicts, &conflicts); err != nil {
			return domain.AmendmentApplication{}, fmt.Errorf("amendment_application %s: unmarshal conflicts: %w", r.AmendmentRef, err)
		}
	}

	var notes []domain.ConflictNote
	if len(r.Notes) > 0 {
		if err := json.Unmarshal(r.Notes, &notes); err != nil {
			return domain.AmendmentApplication{}, fmt.Errorf("amendment_application %s: unmarshal notes: %w", r.AmendmentRef, err)
		}
	}

	return domain.AmendmentApplication{
		ID:               r.ID,
		CodeID:           r.CodeID,
		AmendmentRef:     r.AmendmentRef,
		Classification:   domain.AmendmentClass(r.Classification),
		EffectiveDate:    r.EffectiveDate,
		SequenceNo:       r.SequenceNo,
		InstructionHash:  r.InstructionHash,
		Status:           domain.ApplicationStatus(r.Status),
		AddedArticles:    r.AddedArticles,
		ModifiedArticles: r.ModifiedArticles,
		RepealedArticles: r.RepealedArticles,
		Conflicts:        conflicts,
		Notes:            notes,
		ErrorDetail:      r.ErrorDetail,
		AppliedAt:        r.AppliedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

// Create inserts a PENDING application marker. Article lists and conflict
// lists start empty via column defaults. A second marker for the same
// (code, ref) maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, app domain.AmendmentApplication) (domain.AmendmentApplication, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Insert(table).
		Columns("id", "code_id", "amendment_ref", "classification", "effective_date",
			"sequence_no", "instruction_hash", "status", "created_at", "updated_at").
		Values(app.ID, app.CodeID, app.AmendmentRef, string(app.Classification), app.EffectiveDate,
			app.SequenceNo, app.InstructionHash, string(app.Status), app.CreatedAt, app.UpdatedAt).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return domain.AmendmentApplication{}, fmt.Errorf("build insert amendment_application: %w", err)
	}

	var row applicationRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return domain.AmendmentApplication{}, postgres.MapError(err, "amendment_application", app.AmendmentRef)
	}
	return row.toDomain()
}

// GetByRef returns the application record for one amendment against one code.
func (r *Repo) GetByRef(ctx context.Context, codeID, amendmentRef string) (domain.AmendmentApplication, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"code_id": codeID, "amendment_ref": amendmentRef}).
		ToSql()
	if err != nil {
		return domain.AmendmentApplication{}, fmt.Errorf("build select amendment_application: %w", err)
	}

	var row applicationRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return domain.AmendmentApplication{}, postgres.MapError(err, "amendment_application", amendmentRef)
	}
	return row.toDomain()
}

// Reopen resets a PENDING or FAILED application to PENDING with the identity
// of the batch being reprocessed. Sealed rows are never reopened; attempting
// to maps to domain.ErrNotFound.
func (r *Repo) Reopen(ctx context.Context, app domain.AmendmentApplication) (domain.AmendmentApplication, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update(table).
		Set("classification", string(app.Classification)).
		Set("effective_date", app.EffectiveDate).
		Set("sequence_no", app.SequenceNo).
		Set("instruction_hash", app.InstructionHash).
		Set("status", string(domain.ApplicationPending)).
		Set("error_detail", nil).
		Set("updated_at", app.UpdatedAt).
		Where(squirrel.Eq{
			"id":     app.ID,
			"status": []string{string(domain.ApplicationPending), string(domain.ApplicationFailed)},
		}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return domain.AmendmentApplication{}, fmt.Errorf("build reopen amendment_application: %w", err)
	}

	var row applicationRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AmendmentApplication{}, fmt.Errorf("amendment_application %s: %w", app.AmendmentRef, domain.ErrNotFound)
		}
		return domain.AmendmentApplication{}, postgres.MapError(err, "amendment_application", app.AmendmentRef)
	}
	return row.toDomain()
}

// Seal records the terminal outcome of a run: status, touched articles,
// conflicts, notes, and the applied_at stamp. Only a PENDING row can be
// sealed; anything else maps to domain.ErrNotFound.
func (r *Repo) Seal(ctx context.Context, app domain.AmendmentApplication) (domain.AmendmentApplication, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	conflictsJSON, err := marshalConflicts(app.Conflicts)
	if err != nil {
		return domain.AmendmentApplication{}, fmt.Errorf("amendment_application %s: marshal conflicts: %w", app.AmendmentRef, err)
	}
	notesJSON, err := marshalNotes(app.Notes)
	if err != nil {
		return domain.AmendmentApplication{}, fmt.Errorf("amendment_application %s: marshal notes: %w", app.AmendmentRef, err)
	}

	sql, args, err := builder.
		Update(table).
		Set("status", string(app.Status)).
		Set("added_articles", orEmpty(app.AddedArticles)).
		Set("modified_articles", orEmpty(app.ModifiedArticles)).
		Set("repealed_articles", orEmpty(app.RepealedArticles)).
		Set("conflicts", conflictsJSON).
		Set("notes", notesJSON).
		Set("error_detail", nil).
		Set("applied_at", app.AppliedAt).
		Set("updated_at", app.UpdatedAt).
		Where(squirrel.Eq{"id": app.ID, "status": string(domain.ApplicationPending)}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return domain.AmendmentApplication{}, fmt.Errorf("build seal amendment_application: %w", err)
	}

	var row applicationRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AmendmentApplication{}, fmt.Errorf("amendment_application %s: %w", app.AmendmentRef, domain.ErrNotFound)
		}
		return domain.AmendmentApplication{}, postgres.MapError(err, "amendment_application", app.AmendmentRef)
	}
	return row.toDomain()
}

// MarkFailed records an infrastructure failure on a PENDING run. FAILED is
// not a sealed status; a later retry reopens and reprocesses the row.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, detail string, at time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update(table).
		Set("status", string(domain.ApplicationFailed)).
		Set("error_detail", detail).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": string(domain.ApplicationPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build fail amendment_application: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "amendment_application", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("amendment_application %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByCode returns all applications against a code in application order:
// effective date, then sequence number, then ref.
func (r *Repo) ListByCode(ctx context.Context, codeID string) ([]domain.AmendmentApplication, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"code_id": codeID}).
		OrderBy("effective_date ASC", "sequence_no ASC", "amendment_ref ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list amendment_applications: %w", err)
	}

	var rows []applicationRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "amendment_application", codeID)
	}

	apps := make([]domain.AmendmentApplication, len(rows))
	for i, row := range rows {
		app, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		apps[i] = app
	}
	return apps, nil
}

// CountUnsealed returns how many applications of a code are still PENDING or
// FAILED. Zero means every known amendment has reached a sealed outcome.
func (r *Repo) CountUnsealed(ctx context.Context, codeID string) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{
			"code_id": codeID,
			"status":  []string{string(domain.ApplicationPending), string(domain.ApplicationFailed)},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count unsealed: %w", err)
	}

	var count int
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "amendment_application", codeID)
	}
	return count, nil
}

func marshalConflicts(conflicts []domain.ConflictRecord) ([]byte, error) {
	if conflicts == nil {
		conflicts = []domain.ConflictRecord{}
	}
	return json.Marshal(conflicts)
}

func marshalNotes(notes []domain.ConflictNote) ([]byte, error) {
	if notes == nil {
		notes = []domain.ConflictNote{}
	}
	return json.Marshal(notes)
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
