package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// ScanResult holds directory scan statistics.
type ScanResult struct {
	FilesSeen int
	Decoded   int
	Malformed int
}

// ReadDir decodes every *.json batch file under dir, in file-name order.
// Malformed files are logged and counted, never abort the scan: one broken
// delivery must not hold up every other amendment in the drop.
func ReadDir(dir string, log *slog.Logger) ([]domain.AmendmentBatch, ScanResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, ScanResult{}, fmt.Errorf("glob input dir: %w", err)
	}

	var (
		result  ScanResult
		batches []domain.AmendmentBatch
	)
	for _, path := range files {
		result.FilesSeen++

		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("read batch file", slog.String("path", path), slog.String("error", err.Error()))
			result.Malformed++
			continue
		}

		batch, err := Decode(data)
		if err != nil {
			log.Error("skip malformed batch file", slog.String("path", path), slog.String("error", err.Error()))
			result.Malformed++
			continue
		}

		batches = append(batches, batch)
		result.Decoded++
	}
	return batches, result, nil
}
