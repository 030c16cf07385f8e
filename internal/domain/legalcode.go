package domain

import "time"

// LegalCode is a registered legal code whose amendments this system
// consolidates. The engine only mutates the consolidation counters; identity
// fields are set at registration.
type LegalCode struct {
	ID                 string
	Name               string
	PublicationRef     string
	Status             ConsolidationStatus
	AmendmentsApplied  int
	LastConsolidatedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
