package tempquery

import (
	"context"
	"fmt"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// 4. Codes
// ---------------------------------------------------------------------------

// Codes lists every registered legal code.
func (s *Service) Codes(ctx context.Context) ([]domain.LegalCode, error) {
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	return codes, nil
}
