// Package tempquery implements the temporal query layer: read-only
// projections over consolidated article timelines. Every answer is derived
// from committed state; nothing here mutates timelines.
package tempquery

import (
	"context"
	"log/slog"
	"time"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type codeRepo interface {
	Get(ctx context.Context, id string) (domain.LegalCode, error)
	List(ctx context.Context) ([]domain.LegalCode, error)
}

type versionRepo interface {
	ListByArticle(ctx context.Context, codeID, articleNumber string) ([]domain.ArticleVersion, error)
	ListByCode(ctx context.Context, codeID string) ([]domain.ArticleVersion, error)
	ListCurrentByCode(ctx context.Context, codeID string) ([]domain.ArticleVersion, error)
	CountArticles(ctx context.Context, codeID string) (int, error)
}

type applicationRepo interface {
	CountUnsealed(ctx context.Context, codeID string) (int, error)
	ListByCode(ctx context.Context, codeID string) ([]domain.AmendmentApplication, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the temporal query business logic.
type Service struct {
	log          *slog.Logger
	codes        codeRepo
	versions     versionRepo
	applications applicationRepo

	// now is swapped in tests to pin the evaluation instant.
	now func() time.Time
}

// NewService creates a new temporal query service.
func NewService(
	logger *slog.Logger,
	codes codeRepo,
	versions versionRepo,
	applications applicationRepo,
) *Service {
	return &Service{
		log:          logger.With("service", "tempquery"),
		codes:        codes,
		versions:     versions,
		applications: applications,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
