package tempquery

import (
	"context"
	"fmt"

	"github.com/kodekslab/kodeks-backend/internal/domain"
	"github.com/kodekslab/kodeks-backend/pkg/artnum"
)

// ---------------------------------------------------------------------------
// 3. Chain
// ---------------------------------------------------------------------------

// ChainLink is one step in an article's amendment history.
type ChainLink struct {
	Version domain.ArticleVersion
	// AmendmentRef names the amendment that produced the version, or
	// "original" for the pre-amendment text.
	AmendmentRef string
	SequenceNo   int64
}

// Chain returns an article's full version history, oldest first, in the
// exact order the engine applies: effective date, sequence number, amendment
// ref, insertion instant. An article with no versions is ErrNotFound.
func (s *Service) Chain(ctx context.Context, codeID, articleNumber string) ([]ChainLink, error) {
	if !artnum.Valid(articleNumber) {
		return nil, domain.NewValidationError("article_number", fmt.Sprintf("invalid article number %q", articleNumber))
	}

	if _, err := s.codes.Get(ctx, codeID); err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}

	versions, err := s.versions.ListByArticle(ctx, codeID, articleNumber)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("article %s of code %s: %w", articleNumber, codeID, domain.ErrNotFound)
	}

	tl := domain.TimelineFromVersions(codeID, articleNumber, versions)
	chain := make([]ChainLink, 0, tl.Len())
	for _, v := range tl.Versions() {
		chain = append(chain, ChainLink{
			Version:      v,
			AmendmentRef: v.Ref(),
			SequenceNo:   v.SequenceNo,
		})
	}
	return chain, nil
}
