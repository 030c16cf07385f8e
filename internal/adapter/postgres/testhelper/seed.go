package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCode registers a legal code with status NOT_STARTED and zero applied
// amendments. Returns the filled domain.LegalCode.
func SeedCode(t *testing.T, pool *pgxpool.Pool) domain.LegalCode {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	code := domain.LegalCode{
		ID:             "CODE-" + suffix,
		Name:           "Test Code " + suffix,
		PublicationRef: "pub-" + suffix,
		Status:         domain.ConsolidationNotStarted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO legal_codes (id, name, publication_ref, status, amendments_applied, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		code.ID, code.Name, code.PublicationRef, string(code.Status), code.AmendmentsApplied, code.CreatedAt, code.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCode insert legal_code: %v", err)
	}

	return code
}

// SeedVersion inserts an article version row. Zero-value fields are defaulted:
// ID gets a random UUID, ContentHash the hash of Text, CreatedAt the current
// time. CodeID, ArticleNumber, and EffectiveDate must be set by the caller.
func SeedVersion(t *testing.T, pool *pgxpool.Pool, v domain.ArticleVersion) domain.ArticleVersion {
	t.Helper()
	ctx := context.Background()

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.ContentHash == "" {
		v.ContentHash = domain.HashText(v.Text)
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO article_versions (id, code_id, article_number, effective_date, text, title, amendment_ref,
		                               sequence_no, content_hash, is_current, is_repealed, repeal_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		v.ID, v.CodeID, v.ArticleNumber, v.EffectiveDate, v.Text, v.Title, v.AmendmentRef,
		v.SequenceNo, v.ContentHash, v.IsCurrent, v.IsRepealed, v.RepealDate, v.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedVersion insert article_version: %v", err)
	}

	return v
}

// SeedApplication inserts an amendment application row. Zero-value fields are
// defaulted: ID gets a random UUID, Status PENDING, Classification
// MODIFICATION, article lists and conflict lists empty, timestamps now.
func SeedApplication(t *testing.T, pool *pgxpool.Pool, app domain.AmendmentApplication) domain.AmendmentApplication {
	t.Helper()
	ctx := context.Background()

	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = domain.ApplicationPending
	}
	if app.Classification == "" {
		app.Classification = domain.AmendmentClassModification
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}
	if app.AddedArticles == nil {
		app.AddedArticles = []string{}
	}
	if app.ModifiedArticles == nil {
		app.ModifiedArticles = []string{}
	}
	if app.RepealedArticles == nil {
		app.RepealedArticles = []string{}
	}
	if app.Conflicts == nil {
		app.Conflicts = []domain.ConflictRecord{}
	}
	if app.Notes == nil {
		app.Notes = []domain.ConflictNote{}
	}

	conflictsJSON, err := json.Marshal(app.Conflicts)
	if err != nil {
		t.Fatalf("testhelper: SeedApplication marshal conflicts: %v", err)
	}
	notesJSON, err := json.Marshal(app.Notes)
	if err != nil {
		t.Fatalf("testhelper: SeedApplication marshal notes: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO amendment_applications (id, code_id, amendment_ref, classification, effective_date, sequence_no,
		                                     instruction_hash, status, added_articles, modified_articles, repealed_articles,
		                                     conflicts, notes, error_detail, applied_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		app.ID, app.CodeID, app.AmendmentRef, string(app.Classification), app.EffectiveDate, app.SequenceNo,
		app.InstructionHash, string(app.Status), app.AddedArticles, app.ModifiedArticles, app.RepealedArticles,
		conflictsJSON, notesJSON, app.ErrorDetail, app.AppliedAt, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedApplication insert amendment_application: %v", err)
	}

	return app
}
