package tempquery

import (
	"context"
	"fmt"
	"time"

	"github.com/kodekslab/kodeks-backend/internal/domain"
	"github.com/kodekslab/kodeks-backend/pkg/artnum"
)

// ---------------------------------------------------------------------------
// 2. VersionAt
// ---------------------------------------------------------------------------

// Lookup is the answer to a point-in-time article query. The three outcomes
// stay distinct: a version in force, an article that did not exist yet, and
// an article that stood repealed on that date.
type Lookup struct {
	Outcome domain.LookupOutcome
	// Version is the governing version for FOUND, or the repeal marker for
	// REPEALED (so callers can report the repeal date and the amendment
	// responsible). Nil for NOT_YET_IN_FORCE.
	Version *domain.ArticleVersion
	AsOf    time.Time
}

// VersionAt resolves what an article said on a given date. An article with
// no versions at all resolves to NOT_YET_IN_FORCE; only an unknown code is
// an error.
func (s *Service) VersionAt(ctx context.Context, codeID, articleNumber string, at time.Time) (Lookup, error) {
	if !artnum.Valid(articleNumber) {
		return Lookup{}, domain.NewValidationError("article_number", fmt.Sprintf("invalid article number %q", articleNumber))
	}

	if _, err := s.codes.Get(ctx, codeID); err != nil {
		return Lookup{}, fmt.Errorf("load code: %w", err)
	}

	versions, err := s.versions.ListByArticle(ctx, codeID, articleNumber)
	if err != nil {
		return Lookup{}, fmt.Errorf("list versions: %w", err)
	}

	tl := domain.TimelineFromVersions(codeID, articleNumber, versions)
	v, outcome := tl.VersionAsOf(at)
	return Lookup{Outcome: outcome, Version: v, AsOf: domain.DateOf(at)}, nil
}
