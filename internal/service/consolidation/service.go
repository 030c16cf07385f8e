// Package consolidation implements the amendment application engine. It folds
// normalized amendment batches into per-article version timelines, keeping the
// consolidated text of a legal code deterministic no matter the order in which
// amendments arrive.
package consolidation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type codeRepo interface {
	Get(ctx context.Context, id string) (domain.LegalCode, error)
	SetStatus(ctx context.Context, id string, status domain.ConsolidationStatus, at time.Time) error
	RecordRun(ctx context.Context, id string, status domain.ConsolidationStatus, at time.Time) (domain.LegalCode, error)
}

type versionRepo interface {
	Insert(ctx context.Context, v domain.ArticleVersion) (domain.ArticleVersion, error)
	ListByArticles(ctx context.Context, codeID string, articleNumbers []string) ([]domain.ArticleVersion, error)
	SetCurrent(ctx context.Context, codeID, articleNumber string, currentID *uuid.UUID) error
}

type applicationRepo interface {
	Create(ctx context.Context, app domain.AmendmentApplication) (domain.AmendmentApplication, error)
	GetByRef(ctx context.Context, codeID, amendmentRef string) (domain.AmendmentApplication, error)
	Reopen(ctx context.Context, app domain.AmendmentApplication) (domain.AmendmentApplication, error)
	Seal(ctx context.Context, app domain.AmendmentApplication) (domain.AmendmentApplication, error)
	MarkFailed(ctx context.Context, id uuid.UUID, detail string, at time.Time) error
	CountUnsealed(ctx context.Context, codeID string) (int, error)
}

type txManager interface {
	RunInRepeatableRead(ctx context.Context, fn func(ctx context.Context) error) error
}

// Unlocker releases a held per-code consolidation lock.
type Unlocker interface {
	Unlock(ctx context.Context) error
}

type codeLocker interface {
	Lock(ctx context.Context, codeID string) (Unlocker, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the consolidation business logic.
type Service struct {
	log          *slog.Logger
	codes        codeRepo
	versions     versionRepo
	applications applicationRepo
	tx           txManager
	locker       codeLocker

	// now is swapped in tests to pin timestamps.
	now func() time.Time
}

// NewService creates a new Consolidation service.
func NewService(
	logger *slog.Logger,
	codes codeRepo,
	versions versionRepo,
	applications applicationRepo,
	tx txManager,
	locker codeLocker,
) *Service {
	return &Service{
		log:          logger.With("service", "consolidation"),
		codes:        codes,
		versions:     versions,
		applications: applications,
		tx:           tx,
		locker:       locker,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
