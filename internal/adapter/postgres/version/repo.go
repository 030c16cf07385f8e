// Package version implements the article version repository using PostgreSQL.
// Versions are append-only; the only mutable column is the is_current flag,
// which is recomputed per article after every consolidation run.
package version

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres"
	"github.com/kodekslab/kodeks-backend/internal/domain"
)

const table = "article_versions"

var columns = []string{
	"id", "code_id", "article_number", "effective_date", "text", "title",
	"amendment_ref", "sequence_no", "content_hash", "is_current", "is_repealed",
	"repeal_date", "created_at",
}

// timelineOrder matches the deterministic ordering the domain timeline uses,
// so repo output can be consumed without re-sorting.
const timelineOrder = "effective_date ASC, sequence_no ASC, amendment_ref ASC NULLS FIRST, created_at ASC"

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func returning() string {
	return "RETURNING " + strings.Join(columns, ", ")
}

// Repo provides article version persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new article version repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type versionRow struct {
	ID            uuid.UUID  `db:"id"`
	CodeID        string     `db:"code_id"`
	ArticleNumber string     `db:"article_number"`
	EffectiveDate time.Time  `db:"effective_date"`
	Text          string     `db:"text"`
	Title         *string    `db:"title"`
	AmendmentRef  *string    `db:"amendment_ref"`
	SequenceNo    int64      `db:"sequence_no"`
	ContentHash   string     `db:"content_hash"`
	IsCurrent     bool       `db:"is_current"`
	IsRepealed    bool       `db:"is_repealed"`
	RepealDate    *time.Time `db:"repeal_date"`
	CreatedAt     time.Time  `db:"created_at"`
}

func (r versionRow) toDomain() domain.ArticleVersion {
	return domain.ArticleVersion{
		ID:            r.ID,
		CodeID:        r.CodeID,
		ArticleNumber: r.ArticleNumber,
		EffectiveDate: r.EffectiveDate,
		Text:          r.Text,
		Title:         r.Title,
		AmendmentRef:  r.AmendmentRef,
		SequenceNo:    r.SequenceNo,
		ContentHash:   r.ContentHash,
		IsCurrent:     r.IsCurrent,
		IsRepealed:    r.IsRepealed,
		RepealDate:    r.RepealDate,
		CreatedAt:     r.CreatedAt,
	}
}

func toDomainList(rows []versionRow) []domain.ArticleVersion {
	versions := make([]domain.ArticleVersion, len(rows))
	for i, row := range rows {
		versions[i] = row.toDomain()
	}
	return versions
}

// Insert appends a new article version and returns the persisted record.
// A duplicate (code, article, effective date, content hash) maps to
// domain.ErrDuplicateVersion.
func (r *Repo) Insert(ctx context.Context, v domain.ArticleVersion) (domain.ArticleVersion, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Insert(table).
		Columns(columns...).
		Values(v.ID, v.CodeID, v.ArticleNumber, v.EffectiveDate, v.Text, v.Title,
			v.AmendmentRef, v.SequenceNo, v.ContentHash, v.IsCurrent, v.IsRepealed,
			v.RepealDate, v.CreatedAt).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return domain.ArticleVersion{}, fmt.Errorf("build insert article_version: %w", err)
	}

	var row versionRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return domain.ArticleVersion{}, postgres.MapError(err, "article_version", v.ArticleNumber)
	}
	return row.toDomain(), nil
}

// ListByArticle returns the full timeline of one article in timeline order.
func (r *Repo) ListByArticle(ctx context.Context, codeID, articleNumber string) ([]domain.ArticleVersion, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"code_id": codeID, "article_number": articleNumber}).
		OrderBy(timelineOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list article_versions: %w", err)
	}

	var rows []versionRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "article_version", articleNumber)
	}
	return toDomainList(rows), nil
}

// ListByArticles bulk-loads the timelines of several articles in one query.
// Used by the consolidation engine to load every touched article up front.
func (r *Repo) ListByArticles(ctx context.Context, codeID string, articleNumbers []string) ([]domain.ArticleVersion, error) {
	if len(articleNumbers) == 0 {
		return []domain.ArticleVersion{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"code_id": codeID, "article_number": articleNumbers}).
		OrderBy("article_number ASC, " + timelineOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list article_versions: %w", err)
	}

	var rows []versionRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "article_version", codeID)
	}
	return toDomainList(rows), nil
}

// ListByCode returns every version of every article in a code, grouped by
// article in timeline order. Used for full structure snapshots.
func (r *Repo) ListByCode(ctx context.Context, codeID string) ([]domain.ArticleVersion, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"code_id": codeID}).
		OrderBy("article_number ASC, " + timelineOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list article_versions: %w", err)
	}

	var rows []versionRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "article_version", codeID)
	}
	return toDomainList(rows), nil
}

// ListCurrentByCode returns the current version of every live article in a
// code. Repealed articles carry no current version and are absent.
func (r *Repo) ListCurrentByCode(ctx context.Context, codeID string) ([]domain.ArticleVersion, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"code_id": codeID, "is_current": true}).
		OrderBy("article_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list current article_versions: %w", err)
	}

	var rows []versionRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "article_version", codeID)
	}
	return toDomainList(rows), nil
}

// SetCurrent flags exactly one version of an article as current, clearing the
// flag on all its siblings in the same statement. A nil currentID clears the
// flag on every version, which is the state of a repealed article.
func (r *Repo) SetCurrent(ctx context.Context, codeID, articleNumber string, currentID *uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update(table).
		Set("is_current", squirrel.Expr("(id IS NOT DISTINCT FROM ?)", currentID)).
		Where(squirrel.Eq{"code_id": codeID, "article_number": articleNumber}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update article_version current: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "article_version", articleNumber)
	}
	return nil
}

// CountArticles returns the number of distinct articles a code has versions
// for, including repealed articles.
func (r *Repo) CountArticles(ctx context.Context, codeID string) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select("COUNT(DISTINCT article_number)").
		From(table).
		Where(squirrel.Eq{"code_id": codeID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count articles: %w", err)
	}

	var count int
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "article_version", codeID)
	}
	return count, nil
}
