// Package consolidator orchestrates a directory consolidation run: decode
// normalized amendment batches, register codes the database does not know
// yet, and drive the engine code by code. Different codes consolidate in
// parallel; batches of one code always run in sequence-number order.
package consolidator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kodekslab/kodeks-backend/internal/config"
	"github.com/kodekslab/kodeks-backend/internal/domain"
	"github.com/kodekslab/kodeks-backend/internal/ingest"
)

// Engine applies one amendment batch against its code.
type Engine interface {
	Apply(ctx context.Context, batch domain.AmendmentBatch) (domain.AmendmentApplication, error)
}

// CodeRegistry resolves and registers the codes named by incoming batches.
type CodeRegistry interface {
	Get(ctx context.Context, id string) (domain.LegalCode, error)
	Create(ctx context.Context, code domain.LegalCode) (domain.LegalCode, error)
}

// Result holds consolidation run statistics.
type Result struct {
	FilesSeen  int
	Malformed  int
	Codes      int
	Registered int
	Applied    int
	Partial    int
	Conflicted int
	Failed     int
}

// Run consolidates every batch file under cfg.InputDir. A batch that fails
// on infrastructure is counted and logged, never fatal: the engine's
// idempotency makes a rerun safe.
func Run(ctx context.Context, cfg config.ConsolidationConfig, engine Engine, codes CodeRegistry, log *slog.Logger) (Result, error) {
	batches, scan, err := ingest.ReadDir(cfg.InputDir, log)
	if err != nil {
		return Result{}, err
	}
	result := Result{FilesSeen: scan.FilesSeen, Malformed: scan.Malformed}
	if len(batches) == 0 {
		log.Info("no batches to consolidate", slog.String("dir", cfg.InputDir))
		return result, nil
	}

	groups := groupByCode(batches)
	codeIDs := make([]string, 0, len(groups))
	for id := range groups {
		codeIDs = append(codeIDs, id)
	}
	sort.Strings(codeIDs)
	result.Codes = len(codeIDs)

	for _, id := range codeIDs {
		created, err := ensureRegistered(ctx, codes, id)
		if err != nil {
			return result, fmt.Errorf("register code %s: %w", id, err)
		}
		if created {
			result.Registered++
			log.Info("auto-registered code", slog.String("code_id", id))
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, codeID := range codeIDs {
		group := groups[codeID]
		g.Go(func() error {
			for _, batch := range group {
				if err := gctx.Err(); err != nil {
					return err
				}
				app, err := applyOne(gctx, cfg, engine, batch, log)

				mu.Lock()
				switch {
				case err != nil:
					result.Failed++
				case app.Status == domain.ApplicationPartial:
					result.Partial++
				case app.Status == domain.ApplicationConflict:
					result.Conflicted++
				default:
					result.Applied++
				}
				mu.Unlock()

				if err != nil {
					log.Error("amendment failed",
						slog.String("code_id", batch.CodeID),
						slog.String("amendment_ref", batch.AmendmentRef),
						slog.String("error", err.Error()),
					)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	log.Info("consolidation run complete",
		slog.Int("files", result.FilesSeen),
		slog.Int("malformed", result.Malformed),
		slog.Int("codes", result.Codes),
		slog.Int("applied", result.Applied),
		slog.Int("partial", result.Partial),
		slog.Int("conflict", result.Conflicted),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// groupByCode buckets batches per code and orders each bucket by sequence
// number, the order the upstream normalizer assigned.
func groupByCode(batches []domain.AmendmentBatch) map[string][]domain.AmendmentBatch {
	groups := make(map[string][]domain.AmendmentBatch)
	for _, b := range batches {
		groups[b.CodeID] = append(groups[b.CodeID], b)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SequenceNo < group[j].SequenceNo
		})
	}
	return groups
}

// ensureRegistered creates the code when no row exists yet. Auto-registration
// knows nothing beyond the identifier, so the ID doubles as the name until an
// explicit registration replaces it.
func ensureRegistered(ctx context.Context, codes CodeRegistry, id string) (bool, error) {
	_, err := codes.Get(ctx, id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrCodeNotFound) {
		return false, err
	}

	now := time.Now().UTC()
	_, err = codes.Create(ctx, domain.LegalCode{
		ID:        id,
		Name:      id,
		Status:    domain.ConsolidationNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// applyOne drives a single batch through the engine, retrying when the
// code's consolidation lock is held by another worker process.
func applyOne(ctx context.Context, cfg config.ConsolidationConfig, engine Engine, batch domain.AmendmentBatch, log *slog.Logger) (domain.AmendmentApplication, error) {
	for attempt := 0; ; attempt++ {
		runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
		app, err := engine.Apply(runCtx, batch)
		cancel()

		if !errors.Is(err, domain.ErrLockUnavailable) || attempt >= cfg.LockRetries {
			return app, err
		}

		log.Warn("code locked elsewhere, retrying",
			slog.String("code_id", batch.CodeID),
			slog.String("amendment_ref", batch.AmendmentRef),
			slog.Int("attempt", attempt+1),
		)
		select {
		case <-ctx.Done():
			return domain.AmendmentApplication{}, ctx.Err()
		case <-time.After(cfg.LockRetryDelay):
		}
	}
}
