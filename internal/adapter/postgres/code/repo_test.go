package code_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres/code"
	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres/testhelper"
	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// newRepo sets up a test DB and returns a ready Repo + pool.
func newRepo(t *testing.T) (*code.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return code.New(pool), pool
}

// buildCode creates a domain.LegalCode with a unique ID for testing.
func buildCode() domain.LegalCode {
	suffix := uuid.New().String()[:8]
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.LegalCode{
		ID:             "CR-" + suffix,
		Name:           "Civil Code " + suffix,
		PublicationRef: "SZ-1994-32-3301",
		Status:         domain.ConsolidationNotStarted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestRepo_Create_HappyPath(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	input := buildCode()

	got, err := repo.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if got.ID != input.ID {
		t.Errorf("ID mismatch: got %s, want %s", got.ID, input.ID)
	}
	if got.Name != input.Name {
		t.Errorf("Name mismatch: got %s, want %s", got.Name, input.Name)
	}
	if got.PublicationRef != input.PublicationRef {
		t.Errorf("PublicationRef mismatch: got %s, want %s", got.PublicationRef, input.PublicationRef)
	}
	if got.Status != domain.ConsolidationNotStarted {
		t.Errorf("Status mismatch: got %s, want %s", got.Status, domain.ConsolidationNotStarted)
	}
	if got.AmendmentsApplied != 0 {
		t.Errorf("AmendmentsApplied should start at 0, got %d", got.AmendmentsApplied)
	}
	if got.LastConsolidatedAt != nil {
		t.Errorf("LastConsolidatedAt should start nil, got %v", got.LastConsolidatedAt)
	}
}

func TestRepo_Create_DuplicateID(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	input := buildCode()
	if _, err := repo.Create(ctx, input); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := repo.Create(ctx, input)
	assertIsDomainError(t, err, domain.ErrAlreadyExists)
}

// ---------------------------------------------------------------------------
// Get tests
// ---------------------------------------------------------------------------

func TestRepo_Get_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedCode(t, pool)

	got, err := repo.Get(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("ID mismatch: got %s, want %s", got.ID, seeded.ID)
	}
	if got.Name != seeded.Name {
		t.Errorf("Name mismatch: got %s, want %s", got.Name, seeded.Name)
	}
}

func TestRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "NO_SUCH_CODE")
	assertIsDomainError(t, err, domain.ErrCodeNotFound)
}

// ---------------------------------------------------------------------------
// List tests
// ---------------------------------------------------------------------------

func TestRepo_List_ContainsCreated(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	a := testhelper.SeedCode(t, pool)
	b := testhelper.SeedCode(t, pool)

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}

	found := map[string]bool{}
	for _, c := range got {
		found[c.ID] = true
	}
	if !found[a.ID] || !found[b.ID] {
		t.Errorf("List missing seeded codes %s / %s", a.ID, b.ID)
	}

	// Verify ascending ID order.
	for i := 1; i < len(got); i++ {
		if got[i].ID < got[i-1].ID {
			t.Errorf("List not ordered by ID: %s before %s", got[i-1].ID, got[i].ID)
		}
	}
}

// ---------------------------------------------------------------------------
// SetStatus tests
// ---------------------------------------------------------------------------

func TestRepo_SetStatus_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedCode(t, pool)
	at := time.Now().UTC().Truncate(time.Microsecond)

	if err := repo.SetStatus(ctx, seeded.ID, domain.ConsolidationInProgress, at); err != nil {
		t.Fatalf("SetStatus: unexpected error: %v", err)
	}

	got, err := repo.Get(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("Get after SetStatus: %v", err)
	}
	if got.Status != domain.ConsolidationInProgress {
		t.Errorf("Status mismatch: got %s, want %s", got.Status, domain.ConsolidationInProgress)
	}
}

func TestRepo_SetStatus_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	err := repo.SetStatus(ctx, "NO_SUCH_CODE", domain.ConsolidationInProgress, time.Now().UTC())
	assertIsDomainError(t, err, domain.ErrCodeNotFound)
}

// ---------------------------------------------------------------------------
// RecordRun tests
// ---------------------------------------------------------------------------

func TestRepo_RecordRun_IncrementsCounter(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedCode(t, pool)
	at := time.Now().UTC().Truncate(time.Microsecond)

	first, err := repo.RecordRun(ctx, seeded.ID, domain.ConsolidationInProgress, at)
	if err != nil {
		t.Fatalf("RecordRun[1]: unexpected error: %v", err)
	}
	if first.AmendmentsApplied != 1 {
		t.Errorf("AmendmentsApplied after first run: got %d, want 1", first.AmendmentsApplied)
	}
	if first.Status != domain.ConsolidationInProgress {
		t.Errorf("Status after first run: got %s, want %s", first.Status, domain.ConsolidationInProgress)
	}
	if first.LastConsolidatedAt == nil || !first.LastConsolidatedAt.Equal(at) {
		t.Errorf("LastConsolidatedAt mismatch: got %v, want %s", first.LastConsolidatedAt, at)
	}

	second, err := repo.RecordRun(ctx, seeded.ID, domain.ConsolidationDone, at.Add(time.Second))
	if err != nil {
		t.Fatalf("RecordRun[2]: unexpected error: %v", err)
	}
	if second.AmendmentsApplied != 2 {
		t.Errorf("AmendmentsApplied after second run: got %d, want 2", second.AmendmentsApplied)
	}
	if second.Status != domain.ConsolidationDone {
		t.Errorf("Status after second run: got %s, want %s", second.Status, domain.ConsolidationDone)
	}
}

func TestRepo_RecordRun_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.RecordRun(ctx, "NO_SUCH_CODE", domain.ConsolidationDone, time.Now().UTC())
	assertIsDomainError(t, err, domain.ErrCodeNotFound)
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func assertIsDomainError(t *testing.T, err error, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected error wrapping %v, got: %v", target, err)
	}
}
