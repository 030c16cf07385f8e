// Package ingest decodes normalized amendment batch files into domain types.
// The wire contract uses lowercase instruction kinds and YYYY-MM-DD dates;
// both are normalized during mapping, and every decoded batch has passed
// domain validation before it leaves this package.
package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// Decode parses one batch document from raw JSON and maps it onto the
// domain type.
func Decode(data []byte) (domain.AmendmentBatch, error) {
	var doc BatchDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.AmendmentBatch{}, fmt.Errorf("unmarshal batch: %w", err)
	}
	return Map(doc)
}

// Map converts a decoded document to a validated domain.AmendmentBatch.
func Map(doc BatchDocument) (domain.AmendmentBatch, error) {
	batch := domain.AmendmentBatch{
		AmendmentRef: strings.TrimSpace(doc.AmendmentRef),
		CodeID:       strings.TrimSpace(doc.CodeID),
		SequenceNo:   doc.SequenceNo,
	}

	if doc.EffectiveDate != "" {
		d, err := time.Parse(time.DateOnly, doc.EffectiveDate)
		if err != nil {
			return domain.AmendmentBatch{}, fmt.Errorf("effective_date %q: want YYYY-MM-DD", doc.EffectiveDate)
		}
		batch.EffectiveDate = d
	}

	for _, ins := range doc.Instructions {
		batch.Instructions = append(batch.Instructions, domain.Instruction{
			Kind:          domain.InstructionKind(strings.ToUpper(strings.TrimSpace(ins.Kind))),
			ArticleNumber: strings.TrimSpace(ins.ArticleNumber),
			Text:          ins.Text,
			Title:         ins.Title,
		})
	}

	if err := batch.Validate(); err != nil {
		return domain.AmendmentBatch{}, err
	}
	return batch, nil
}
