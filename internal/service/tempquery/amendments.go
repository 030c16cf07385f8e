package tempquery

import (
	"context"
	"fmt"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// 5. Amendments
// ---------------------------------------------------------------------------

// Amendments returns a code's full application log in application order:
// effective date, then sequence number, then ref. The log is the provenance
// of the consolidated state, including conflicted and failed runs.
func (s *Service) Amendments(ctx context.Context, codeID string) ([]domain.AmendmentApplication, error) {
	if _, err := s.codes.Get(ctx, codeID); err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}

	apps, err := s.applications.ListByCode(ctx, codeID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}
