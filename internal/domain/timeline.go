package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateOf truncates an instant to its UTC calendar date. Effective dates are
// stored and compared at date precision only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// Timeline is the ordered version history of one article within one code.
// Order is total and deterministic: effective date, then sequence number,
// then amendment ref (the original, with no ref, sorts first), then
// insertion instant. Because order depends only on version attributes, a
// fixed set of amendments converges to the same timeline regardless of the
// order they were processed in.
type Timeline struct {
	CodeID        string
	ArticleNumber string

	versions []ArticleVersion
}

// NewTimeline creates an empty timeline for an article.
func NewTimeline(codeID, articleNumber string) *Timeline {
	return &Timeline{CodeID: codeID, ArticleNumber: articleNumber}
}

// TimelineFromVersions builds a timeline from stored versions, restoring the
// canonical order.
func TimelineFromVersions(codeID, articleNumber string, versions []ArticleVersion) *Timeline {
	t := &Timeline{
		CodeID:        codeID,
		ArticleNumber: articleNumber,
		versions:      slices.Clone(versions),
	}
	slices.SortStableFunc(t.versions, CompareVersions)
	return t
}

// CompareVersions is the canonical timeline ordering.
func CompareVersions(a, b ArticleVersion) int {
	if c := DateOf(a.EffectiveDate).Compare(DateOf(b.EffectiveDate)); c != 0 {
		return c
	}
	if a.SequenceNo != b.SequenceNo {
		if a.SequenceNo < b.SequenceNo {
			return -1
		}
		return 1
	}
	if c := strings.Compare(refKey(a), refKey(b)); c != 0 {
		return c
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// refKey orders the original (nil ref) before any amendment.
func refKey(v ArticleVersion) string {
	if v.AmendmentRef == nil {
		return ""
	}
	return *v.AmendmentRef
}

// Len returns the number of versions in the timeline.
func (t *Timeline) Len() int { return len(t.versions) }

// IsEmpty reports whether the article has no versions at all.
func (t *Timeline) IsEmpty() bool { return len(t.versions) == 0 }

// Versions returns the versions in canonical order. The slice is shared;
// callers must not reorder it.
func (t *Timeline) Versions() []ArticleVersion { return t.versions }

// Insert adds a version, keeping canonical order. A version with the same
// effective date and content hash as an existing one is rejected with
// ErrDuplicateVersion; callers treat that as an idempotent no-op.
func (t *Timeline) Insert(v ArticleVersion) error {
	if v.CodeID != t.CodeID || v.ArticleNumber != t.ArticleNumber {
		return NewValidationError("article_number", "version belongs to a different timeline")
	}

	for i := range t.versions {
		if sameDate(t.versions[i].EffectiveDate, v.EffectiveDate) && t.versions[i].ContentHash == v.ContentHash {
			return fmt.Errorf("%s article %s as of %s: %w",
				t.CodeID, t.ArticleNumber, DateOf(v.EffectiveDate).Format(time.DateOnly), ErrDuplicateVersion)
		}
	}

	t.versions = append(t.versions, v)
	slices.SortStableFunc(t.versions, CompareVersions)
	return nil
}

// latestAsOf returns the index of the last version whose effective date is
// on or before at, or -1 when none is in force yet.
func (t *Timeline) latestAsOf(at time.Time) int {
	date := DateOf(at)
	for i := len(t.versions) - 1; i >= 0; i-- {
		if !DateOf(t.versions[i].EffectiveDate).After(date) {
			return i
		}
	}
	return -1
}

// Recompute reevaluates the single-current invariant against the full
// version set as of at. It clears every is_current flag and sets it on the
// latest in-force version, unless that version is a repeal marker. Returns
// the now-current version, or nil when the article is not in force.
func (t *Timeline) Recompute(at time.Time) *ArticleVersion {
	for i := range t.versions {
		t.versions[i].IsCurrent = false
	}

	idx := t.latestAsOf(at)
	if idx < 0 || t.versions[idx].IsRepealed {
		return nil
	}

	t.versions[idx].IsCurrent = true
	return &t.versions[idx]
}

// Current returns the version flagged current, or nil.
func (t *Timeline) Current() *ArticleVersion {
	for i := range t.versions {
		if t.versions[i].IsCurrent {
			return &t.versions[i]
		}
	}
	return nil
}

// VersionAsOf resolves the article's text at a point in time. The three
// outcomes are distinct: FOUND returns the governing version,
// NOT_YET_IN_FORCE means no version existed on that date, and REPEALED
// returns the repeal marker so callers can report the repeal date and the
// amendment responsible.
func (t *Timeline) VersionAsOf(at time.Time) (*ArticleVersion, LookupOutcome) {
	idx := t.latestAsOf(at)
	if idx < 0 {
		return nil, LookupNotYetInForce
	}

	v := &t.versions[idx]
	if v.IsRepealed {
		return v, LookupRepealed
	}
	return v, LookupFound
}

// LiveAt returns the version in force at the given date, or nil when the
// article does not exist yet or stands repealed.
func (t *Timeline) LiveAt(at time.Time) *ArticleVersion {
	v, outcome := t.VersionAsOf(at)
	if outcome != LookupFound {
		return nil
	}
	return v
}

// Validate checks timeline invariants: canonical order, no duplicate
// (effective date, content hash) pairs, at most one current version.
func (t *Timeline) Validate() error {
	seen := make(map[string]struct{}, len(t.versions))
	currents := 0

	for i := range t.versions {
		v := &t.versions[i]

		if i > 0 && CompareVersions(t.versions[i-1], *v) > 0 {
			return fmt.Errorf("timeline %s article %s: versions out of order at index %d", t.CodeID, t.ArticleNumber, i)
		}

		key := DateOf(v.EffectiveDate).Format(time.DateOnly) + "|" + v.ContentHash
		if _, dup := seen[key]; dup {
			return fmt.Errorf("timeline %s article %s: %w at %s", t.CodeID, t.ArticleNumber, ErrDuplicateVersion, key)
		}
		seen[key] = struct{}{}

		if v.IsCurrent {
			currents++
		}
	}

	if currents > 1 {
		return fmt.Errorf("timeline %s article %s: %d versions flagged current", t.CodeID, t.ArticleNumber, currents)
	}
	return nil
}
