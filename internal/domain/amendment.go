package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kodekslab/kodeks-backend/pkg/artnum"
)

// Instruction is one operation inside an amendment: add, modify, or repeal
// a single article.
type Instruction struct {
	Kind          InstructionKind
	ArticleNumber string
	Text          string
	Title         *string
}

// AmendmentBatch is a normalized amendment as delivered by the upstream
// parsing pipeline: one amending document, one target code, one effective
// date, an ordered list of instructions.
type AmendmentBatch struct {
	AmendmentRef  string
	CodeID        string
	EffectiveDate time.Time
	SequenceNo    int64
	Instructions  []Instruction
}

// Classification derives the amendment class from its instruction kinds.
// A batch with a single kind maps to that kind's class; anything else is MIXED.
func (b AmendmentBatch) Classification() AmendmentClass {
	var hasAdd, hasModify, hasRepeal bool
	for _, ins := range b.Instructions {
		switch ins.Kind {
		case InstructionAdd:
			hasAdd = true
		case InstructionModify:
			hasModify = true
		case InstructionRepeal:
			hasRepeal = true
		}
	}

	switch {
	case hasAdd && !hasModify && !hasRepeal:
		return AmendmentClassAddition
	case hasModify && !hasAdd && !hasRepeal:
		return AmendmentClassModification
	case hasRepeal && !hasAdd && !hasModify:
		return AmendmentClassRepeal
	}
	return AmendmentClassMixed
}

// InstructionSetHash returns a stable hex SHA-256 over the batch identity and
// its instructions in order. Re-submitting a batch yields the same hash; any
// change to the instruction set changes it. Used for idempotency checks.
func (b AmendmentBatch) InstructionSetHash() string {
	var sb strings.Builder
	sb.WriteString(b.AmendmentRef)
	sb.WriteByte('\n')
	sb.WriteString(b.CodeID)
	sb.WriteByte('\n')
	sb.WriteString(b.EffectiveDate.UTC().Format(time.DateOnly))
	sb.WriteByte('\n')
	sb.WriteString(strconv.FormatInt(b.SequenceNo, 10))

	for _, ins := range b.Instructions {
		sb.WriteByte('\n')
		sb.WriteString(ins.Kind.String())
		sb.WriteByte('|')
		sb.WriteString(ins.ArticleNumber)
		sb.WriteByte('|')
		sb.WriteString(HashText(ins.Text))
		if ins.Title != nil {
			sb.WriteByte('|')
			sb.WriteString(*ins.Title)
		}
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Validate checks the structural validity of the batch: identity fields
// present, every instruction well-formed. It does not consult timelines;
// semantic conflicts are detected during application.
func (b AmendmentBatch) Validate() error {
	var errs []FieldError

	if strings.TrimSpace(b.AmendmentRef) == "" {
		errs = append(errs, FieldError{Field: "amendment_ref", Message: "required"})
	}
	if strings.TrimSpace(b.CodeID) == "" {
		errs = append(errs, FieldError{Field: "code_id", Message: "required"})
	}
	if b.EffectiveDate.IsZero() {
		errs = append(errs, FieldError{Field: "effective_date", Message: "required"})
	}
	if b.SequenceNo < 0 {
		errs = append(errs, FieldError{Field: "sequence_no", Message: "must be >= 0"})
	}
	if len(b.Instructions) == 0 {
		errs = append(errs, FieldError{Field: "instructions", Message: "at least one required"})
	}

	for i, ins := range b.Instructions {
		field := fmt.Sprintf("instructions[%d]", i)

		if !ins.Kind.IsValid() {
			errs = append(errs, FieldError{Field: field + ".kind", Message: fmt.Sprintf("unknown kind %q", ins.Kind)})
		}
		if !artnum.Valid(ins.ArticleNumber) {
			errs = append(errs, FieldError{Field: field + ".article_number", Message: fmt.Sprintf("invalid article number %q", ins.ArticleNumber)})
		}

		switch ins.Kind {
		case InstructionAdd, InstructionModify:
			if CanonicalText(ins.Text) == "" {
				errs = append(errs, FieldError{Field: field + ".text", Message: "required"})
			}
		case InstructionRepeal:
			if CanonicalText(ins.Text) != "" {
				errs = append(errs, FieldError{Field: field + ".text", Message: "must be empty for repeal"})
			}
		}
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// ConflictRecord isolates one instruction the engine could not apply.
// Conflicts never block other instructions of the same batch, nor other
// amendments.
type ConflictRecord struct {
	ArticleNumber string         `json:"article_number"`
	Reason        ConflictReason `json:"reason"`
	CompetingRefs []string       `json:"competing_refs,omitempty"`
	Detail        string         `json:"detail,omitempty"`
}

// ConflictNote is a non-blocking observation from a run, such as two
// amendments landing on the same article with the same effective date.
type ConflictNote struct {
	ArticleNumber string   `json:"article_number"`
	Message       string   `json:"message"`
	CompetingRefs []string `json:"competing_refs,omitempty"`
}

// AmendmentApplication is the provenance record of one amendment run against
// one code: what classification it had, which articles it touched, and how
// it ended. One row exists per (code, amendment ref); sealed rows are never
// rewritten.
type AmendmentApplication struct {
	ID               uuid.UUID
	CodeID           string
	AmendmentRef     string
	Classification   AmendmentClass
	EffectiveDate    time.Time
	SequenceNo       int64
	InstructionHash  string
	Status           ApplicationStatus
	AddedArticles    []string
	ModifiedArticles []string
	RepealedArticles []string
	Conflicts        []ConflictRecord
	Notes            []ConflictNote
	ErrorDetail      *string
	AppliedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TouchedArticles returns all article numbers the run changed, in natural
// article order.
func (a *AmendmentApplication) TouchedArticles() []string {
	out := make([]string, 0, len(a.AddedArticles)+len(a.ModifiedArticles)+len(a.RepealedArticles))
	out = append(out, a.AddedArticles...)
	out = append(out, a.ModifiedArticles...)
	out = append(out, a.RepealedArticles...)
	artnum.Sort(out)
	return out
}
