package domain

// ConsolidationStatus tracks how far a legal code's consolidation has progressed.
type ConsolidationStatus string

const (
	ConsolidationNotStarted ConsolidationStatus = "NOT_STARTED"
	ConsolidationInProgress ConsolidationStatus = "IN_PROGRESS"
	ConsolidationDone       ConsolidationStatus = "CONSOLIDATED"
)

func (s ConsolidationStatus) String() string { return string(s) }

func (s ConsolidationStatus) IsValid() bool {
	switch s {
	case ConsolidationNotStarted, ConsolidationInProgress, ConsolidationDone:
		return true
	}
	return false
}

// InstructionKind is the operation an amendment instruction performs on an article.
type InstructionKind string

const (
	InstructionAdd    InstructionKind = "ADD"
	InstructionModify InstructionKind = "MODIFY"
	InstructionRepeal InstructionKind = "REPEAL"
)

func (k InstructionKind) String() string { return string(k) }

func (k InstructionKind) IsValid() bool {
	switch k {
	case InstructionAdd, InstructionModify, InstructionRepeal:
		return true
	}
	return false
}

// AmendmentClass is the overall classification of an amendment, derived from
// the kinds of its instructions.
type AmendmentClass string

const (
	AmendmentClassAddition     AmendmentClass = "ADDITION"
	AmendmentClassModification AmendmentClass = "MODIFICATION"
	AmendmentClassRepeal       AmendmentClass = "REPEAL"
	AmendmentClassMixed        AmendmentClass = "MIXED"
)

func (c AmendmentClass) String() string { return string(c) }

func (c AmendmentClass) IsValid() bool {
	switch c {
	case AmendmentClassAddition, AmendmentClassModification, AmendmentClassRepeal, AmendmentClassMixed:
		return true
	}
	return false
}

// ApplicationStatus is the lifecycle state of an amendment application.
//
// PENDING marks an in-flight run; a crash leaves the row PENDING and a retry
// reprocesses it. APPLIED, PARTIAL, and CONFLICT are sealed outcomes. FAILED
// records an infrastructure error and never blocks a retry.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApplied  ApplicationStatus = "APPLIED"
	ApplicationPartial  ApplicationStatus = "PARTIAL"
	ApplicationConflict ApplicationStatus = "CONFLICT"
	ApplicationFailed   ApplicationStatus = "FAILED"
)

func (s ApplicationStatus) String() string { return string(s) }

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationApplied, ApplicationPartial, ApplicationConflict, ApplicationFailed:
		return true
	}
	return false
}

// IsSealed reports whether the status is a terminal outcome. Sealed
// applications are never reprocessed; their stored result is returned as-is.
func (s ApplicationStatus) IsSealed() bool {
	switch s {
	case ApplicationApplied, ApplicationPartial, ApplicationConflict:
		return true
	}
	return false
}

// ConflictReason explains why an instruction could not be applied.
type ConflictReason string

const (
	ConflictArticleExists   ConflictReason = "ARTICLE_ALREADY_EXISTS"
	ConflictArticleNotFound ConflictReason = "ARTICLE_NOT_FOUND"
	ConflictContradictory   ConflictReason = "CONTRADICTORY_INSTRUCTIONS"
)

func (r ConflictReason) String() string { return string(r) }

func (r ConflictReason) IsValid() bool {
	switch r {
	case ConflictArticleExists, ConflictArticleNotFound, ConflictContradictory:
		return true
	}
	return false
}

// LookupOutcome is the result kind of a point-in-time article lookup.
// A lookup never collapses "not yet in force" and "repealed" into one answer.
type LookupOutcome string

const (
	LookupFound         LookupOutcome = "FOUND"
	LookupNotYetInForce LookupOutcome = "NOT_YET_IN_FORCE"
	LookupRepealed      LookupOutcome = "REPEALED"
)

func (o LookupOutcome) String() string { return string(o) }

func (o LookupOutcome) IsValid() bool {
	switch o {
	case LookupFound, LookupNotYetInForce, LookupRepealed:
		return true
	}
	return false
}
