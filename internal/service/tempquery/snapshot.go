package tempquery

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kodekslab/kodeks-backend/internal/domain"
	"github.com/kodekslab/kodeks-backend/pkg/artnum"
)

// ---------------------------------------------------------------------------
// 6. Snapshot
// ---------------------------------------------------------------------------

// Snapshot is the consolidated text of a code as committed by the last
// consolidation run: the stored current version of every live article.
type Snapshot struct {
	Code     domain.LegalCode
	Articles []domain.ArticleVersion

	// TotalArticles counts every article the code has versions for,
	// repealed ones included; len(Articles) counts only those in force.
	TotalArticles int
}

// Snapshot returns the code's committed consolidated text. Unlike Structure
// it trusts the stored current flags, so the answer reflects the state the
// engine sealed rather than a rederivation at the evaluation instant.
func (s *Service) Snapshot(ctx context.Context, codeID string) (Snapshot, error) {
	code, err := s.codes.Get(ctx, codeID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load code: %w", err)
	}

	var (
		current []domain.ArticleVersion
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.versions.ListCurrentByCode(gctx, codeID)
		if err != nil {
			return fmt.Errorf("list current versions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.versions.CountArticles(gctx, codeID)
		if err != nil {
			return fmt.Errorf("count articles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	sort.Slice(current, func(i, j int) bool {
		return artnum.Less(current[i].ArticleNumber, current[j].ArticleNumber)
	})
	return Snapshot{Code: code, Articles: current, TotalArticles: total}, nil
}
