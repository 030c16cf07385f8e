package consolidation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// 1. Apply
// ---------------------------------------------------------------------------

// Apply folds one amendment batch into the target code's article timelines
// and seals a provenance record for the run.
//
// The operation is idempotent per (code, amendment ref): a batch that was
// already sealed returns its stored outcome unchanged, and re-using a ref
// with a different instruction set is rejected with ErrAmendmentAltered.
// Conflicting instructions never block the rest of the batch; they are
// recorded on the application and the remainder applies.
func (s *Service) Apply(ctx context.Context, batch domain.AmendmentBatch) (domain.AmendmentApplication, error) {
	if err := batch.Validate(); err != nil {
		return domain.AmendmentApplication{}, err
	}

	log := s.log.With("code_id", batch.CodeID, "amendment_ref", batch.AmendmentRef)

	if _, err := s.codes.Get(ctx, batch.CodeID); err != nil {
		return domain.AmendmentApplication{}, fmt.Errorf("load code: %w", err)
	}

	// One writer per code. Timelines are read, extended, and re-flagged as a
	// unit; a second consolidator on the same code would race the recompute.
	lock, err := s.locker.Lock(ctx, batch.CodeID)
	if err != nil {
		return domain.AmendmentApplication{}, err
	}
	defer func() {
		if uerr := lock.Unlock(context.WithoutCancel(ctx)); uerr != nil {
			log.Warn("failed to release code lock", "error", uerr)
		}
	}()

	app, reused, err := s.openApplication(ctx, batch)
	if err != nil {
		return domain.AmendmentApplication{}, err
	}
	if reused {
		log.Info("amendment already sealed, returning stored outcome", "status", string(app.Status))
		return app, nil
	}

	if err := s.codes.SetStatus(ctx, batch.CodeID, domain.ConsolidationInProgress, s.now()); err != nil {
		return domain.AmendmentApplication{}, s.fail(ctx, log, app.ID, fmt.Errorf("mark code in progress: %w", err))
	}

	p, err := s.buildPlan(ctx, batch)
	if err != nil {
		return domain.AmendmentApplication{}, s.fail(ctx, log, app.ID, err)
	}

	sealed, err := s.commit(ctx, app, p)
	if err != nil {
		return domain.AmendmentApplication{}, s.fail(ctx, log, app.ID, err)
	}

	log.Info("amendment sealed",
		"status", string(sealed.Status),
		"added", len(sealed.AddedArticles),
		"modified", len(sealed.ModifiedArticles),
		"repealed", len(sealed.RepealedArticles),
		"conflicts", len(sealed.Conflicts),
	)
	return sealed, nil
}

// openApplication resolves the provenance row for the batch. A sealed row
// with the same instruction hash is returned as-is (reused=true); a sealed
// row with a different hash is a hard error. A PENDING row (crashed run) or
// FAILED row (infrastructure error) is reopened under the current batch
// identity. When no row exists a fresh PENDING marker is created. The marker
// commits before any timeline work, so a crash mid-run leaves a retryable
// PENDING row behind rather than nothing.
func (s *Service) openApplication(ctx context.Context, batch domain.AmendmentBatch) (domain.AmendmentApplication, bool, error) {
	hash := batch.InstructionSetHash()
	now := s.now()

	existing, err := s.applications.GetByRef(ctx, batch.CodeID, batch.AmendmentRef)
	switch {
	case err == nil && existing.Status.IsSealed():
		if existing.InstructionHash == hash {
			return existing, true, nil
		}
		return domain.AmendmentApplication{}, false,
			fmt.Errorf("amendment %s on code %s: %w", batch.AmendmentRef, batch.CodeID, domain.ErrAmendmentAltered)

	case err == nil:
		existing.Classification = batch.Classification()
		existing.EffectiveDate = domain.DateOf(batch.EffectiveDate)
		existing.SequenceNo = batch.SequenceNo
		existing.InstructionHash = hash
		existing.UpdatedAt = now

		reopened, reopenErr := s.applications.Reopen(ctx, existing)
		if reopenErr != nil {
			return domain.AmendmentApplication{}, false, fmt.Errorf("reopen application: %w", reopenErr)
		}
		return reopened, false, nil

	case errors.Is(err, domain.ErrNotFound):
		created, createErr := s.applications.Create(ctx, domain.AmendmentApplication{
			ID:              uuid.New(),
			CodeID:          batch.CodeID,
			AmendmentRef:    batch.AmendmentRef,
			Classification:  batch.Classification(),
			EffectiveDate:   domain.DateOf(batch.EffectiveDate),
			SequenceNo:      batch.SequenceNo,
			InstructionHash: hash,
			Status:          domain.ApplicationPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if createErr != nil {
			return domain.AmendmentApplication{}, false, fmt.Errorf("create application: %w", createErr)
		}
		return created, false, nil

	default:
		return domain.AmendmentApplication{}, false, fmt.Errorf("load application: %w", err)
	}
}

// commit persists the plan atomically: new versions, recomputed current
// flags, the sealed provenance row, and the code counters land in one
// repeatable-read transaction.
func (s *Service) commit(ctx context.Context, app domain.AmendmentApplication, p *plan) (domain.AmendmentApplication, error) {
	now := s.now()

	app.Status = p.status()
	app.AddedArticles = p.added
	app.ModifiedArticles = p.modified
	app.RepealedArticles = p.repealed
	app.Conflicts = p.conflicts
	app.Notes = p.notes
	app.AppliedAt = &now
	app.UpdatedAt = now

	var sealed domain.AmendmentApplication
	txErr := s.tx.RunInRepeatableRead(ctx, func(txCtx context.Context) error {
		for _, v := range p.inserts {
			if _, err := s.versions.Insert(txCtx, v); err != nil {
				// An identical version landed through a competing amendment;
				// the text state is already what the instruction asked for.
				if errors.Is(err, domain.ErrDuplicateVersion) {
					continue
				}
				return fmt.Errorf("insert version for article %s: %w", v.ArticleNumber, err)
			}
		}

		for _, art := range p.touched {
			var currentID *uuid.UUID
			if current := p.timelines[art].Recompute(now); current != nil {
				currentID = &current.ID
			}
			if err := s.versions.SetCurrent(txCtx, app.CodeID, art, currentID); err != nil {
				return fmt.Errorf("set current version for article %s: %w", art, err)
			}
		}

		var sealErr error
		sealed, sealErr = s.applications.Seal(txCtx, app)
		if sealErr != nil {
			return fmt.Errorf("seal application: %w", sealErr)
		}

		unsealed, countErr := s.applications.CountUnsealed(txCtx, app.CodeID)
		if countErr != nil {
			return fmt.Errorf("count unsealed applications: %w", countErr)
		}
		status := domain.ConsolidationInProgress
		if unsealed == 0 {
			status = domain.ConsolidationDone
		}
		if _, runErr := s.codes.RecordRun(txCtx, app.CodeID, status, now); runErr != nil {
			return fmt.Errorf("record run on code: %w", runErr)
		}
		return nil
	})
	if txErr != nil {
		return domain.AmendmentApplication{}, txErr
	}
	return sealed, nil
}

// fail marks the application FAILED so the batch stays retryable, then
// returns the original cause. The mark is best-effort: the Seal guard on
// status means a late failure mark can never overwrite a sealed outcome.
func (s *Service) fail(ctx context.Context, log *slog.Logger, appID uuid.UUID, cause error) error {
	// The run's context may already be dead; the failure mark should still land.
	markCtx := context.WithoutCancel(ctx)
	if err := s.applications.MarkFailed(markCtx, appID, cause.Error(), s.now()); err != nil {
		log.Error("failed to mark application as failed", "error", err, "cause", cause)
		return cause
	}
	log.Warn("amendment application failed", "error", cause)
	return cause
}
