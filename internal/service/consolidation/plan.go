package consolidation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kodekslab/kodeks-backend/internal/domain"
)

// plan is the worked-out effect of one batch before anything is written:
// which versions to insert, which articles changed, and which instructions
// ended in conflict instead.
type plan struct {
	// timelines holds the in-memory timeline per touched article, already
	// extended with the planned versions.
	timelines map[string]*domain.Timeline

	// touched lists articles whose timeline changed, in batch order. Only
	// these need their current flag recomputed.
	touched []string

	inserts []domain.ArticleVersion

	added    []string
	modified []string
	repealed []string

	conflicts []domain.ConflictRecord
	notes     []domain.ConflictNote
}

// status derives the sealed outcome: every instruction applied, none did, or
// a mix of both.
func (p *plan) status() domain.ApplicationStatus {
	applied := len(p.added) + len(p.modified) + len(p.repealed)
	switch {
	case len(p.conflicts) == 0:
		return domain.ApplicationApplied
	case applied == 0:
		return domain.ApplicationConflict
	default:
		return domain.ApplicationPartial
	}
}

func (p *plan) count(ins domain.Instruction) {
	switch ins.Kind {
	case domain.InstructionAdd:
		p.added = append(p.added, ins.ArticleNumber)
	case domain.InstructionModify:
		p.modified = append(p.modified, ins.ArticleNumber)
	case domain.InstructionRepeal:
		p.repealed = append(p.repealed, ins.ArticleNumber)
	}
	p.touched = append(p.touched, ins.ArticleNumber)
}

// buildPlan loads the timelines of every article the batch touches and
// checks each instruction against them. Instructions that cannot apply
// become conflict records; the rest become planned versions.
func (s *Service) buildPlan(ctx context.Context, batch domain.AmendmentBatch) (*plan, error) {
	articles := make([]string, 0, len(batch.Instructions))
	perArticle := make(map[string][]domain.Instruction, len(batch.Instructions))
	for _, ins := range batch.Instructions {
		if _, ok := perArticle[ins.ArticleNumber]; !ok {
			articles = append(articles, ins.ArticleNumber)
		}
		perArticle[ins.ArticleNumber] = append(perArticle[ins.ArticleNumber], ins)
	}

	stored, err := s.versions.ListByArticles(ctx, batch.CodeID, articles)
	if err != nil {
		return nil, fmt.Errorf("load timelines: %w", err)
	}
	byArticle := make(map[string][]domain.ArticleVersion, len(articles))
	for _, v := range stored {
		byArticle[v.ArticleNumber] = append(byArticle[v.ArticleNumber], v)
	}

	p := &plan{timelines: make(map[string]*domain.Timeline, len(articles))}
	for _, art := range articles {
		p.timelines[art] = domain.TimelineFromVersions(batch.CodeID, art, byArticle[art])
	}

	for _, art := range articles {
		group := perArticle[art]

		// An amendment that issues several instructions for one article
		// contradicts itself. None of them apply; each is recorded so the
		// provenance shows every skipped instruction.
		if len(group) > 1 {
			kinds := kindList(group)
			for _, ins := range group {
				p.conflicts = append(p.conflicts, domain.ConflictRecord{
					ArticleNumber: art,
					Reason:        domain.ConflictContradictory,
					Detail:        fmt.Sprintf("%s not applied: the amendment issues %d instructions (%s) for this article", ins.Kind, len(group), kinds),
				})
			}
			continue
		}

		if err := s.planInstruction(p, batch, group[0]); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// planInstruction decides the fate of a single instruction: a conflict
// record, an idempotent no-op against an already-present version, or a new
// planned version.
func (s *Service) planInstruction(p *plan, batch domain.AmendmentBatch, ins domain.Instruction) error {
	tl := p.timelines[ins.ArticleNumber]
	date := domain.DateOf(batch.EffectiveDate)

	switch ins.Kind {
	case domain.InstructionAdd:
		if live := tl.LiveAt(date); live != nil {
			p.conflicts = append(p.conflicts, domain.ConflictRecord{
				ArticleNumber: ins.ArticleNumber,
				Reason:        domain.ConflictArticleExists,
				CompetingRefs: []string{live.Ref()},
				Detail:        fmt.Sprintf("version from %s is in force on %s", live.Ref(), date.Format(time.DateOnly)),
			})
			return nil
		}

	case domain.InstructionModify, domain.InstructionRepeal:
		if tl.LiveAt(date) == nil {
			detail := "no version in force on " + date.Format(time.DateOnly)
			if v, outcome := tl.VersionAsOf(date); outcome == domain.LookupRepealed {
				detail = fmt.Sprintf("article repealed by %s as of %s", v.Ref(), domain.DateOf(*v.RepealDate).Format(time.DateOnly))
			}
			p.conflicts = append(p.conflicts, domain.ConflictRecord{
				ArticleNumber: ins.ArticleNumber,
				Reason:        domain.ConflictArticleNotFound,
				Detail:        detail,
			})
			return nil
		}
	}

	// Competing amendments may land on the same article with the same
	// effective date. That is legal; sequence numbers decide the governing
	// version. Record the coincidence for review.
	var competing []string
	for _, other := range tl.Versions() {
		if domain.DateOf(other.EffectiveDate).Equal(date) && other.Ref() != batch.AmendmentRef {
			competing = append(competing, other.Ref())
		}
	}
	if len(competing) > 0 {
		p.notes = append(p.notes, domain.ConflictNote{
			ArticleNumber: ins.ArticleNumber,
			Message:       "another amendment touches this article on the same effective date; the higher sequence number governs",
			CompetingRefs: competing,
		})
	}

	v := s.buildVersion(batch, ins)
	if err := tl.Insert(v); err != nil {
		// The timeline already holds this exact text on this date. The state
		// the instruction asks for is achieved; count it, insert nothing.
		if errors.Is(err, domain.ErrDuplicateVersion) {
			p.count(ins)
			return nil
		}
		return fmt.Errorf("plan version for article %s: %w", ins.ArticleNumber, err)
	}

	p.inserts = append(p.inserts, v)
	p.count(ins)
	return nil
}

// buildVersion materializes an instruction as a timeline version.
func (s *Service) buildVersion(batch domain.AmendmentBatch, ins domain.Instruction) domain.ArticleVersion {
	now := s.now()
	date := domain.DateOf(batch.EffectiveDate)

	if ins.Kind == domain.InstructionRepeal {
		return domain.NewRepealMarker(batch.CodeID, ins.ArticleNumber, batch.AmendmentRef, date, batch.SequenceNo, now)
	}

	ref := batch.AmendmentRef
	return domain.ArticleVersion{
		ID:            uuid.New(),
		CodeID:        batch.CodeID,
		ArticleNumber: ins.ArticleNumber,
		EffectiveDate: date,
		Text:          domain.CanonicalText(ins.Text),
		Title:         ins.Title,
		AmendmentRef:  &ref,
		SequenceNo:    batch.SequenceNo,
		ContentHash:   domain.HashText(ins.Text),
		CreatedAt:     now,
	}
}

func kindList(group []domain.Instruction) string {
	kinds := make([]string, len(group))
	for i, ins := range group {
		kinds[i] = ins.Kind.String()
	}
	return strings.Join(kinds, ", ")
}
