package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArticleVersion is one immutable entry in an article's version timeline.
// Versions are only ever appended; the single mutable aspect is the
// is_current flag, recomputed whenever the timeline changes.
//
// The original pre-amendment text has a nil AmendmentRef and SequenceNo 0.
// A repeal is itself a version: an empty-text marker with IsRepealed set and
// RepealDate equal to its effective date.
type ArticleVersion struct {
	ID            uuid.UUID
	CodeID        string
	ArticleNumber string
	EffectiveDate time.Time
	Text          string
	Title         *string
	AmendmentRef  *string
	SequenceNo    int64
	ContentHash   string
	IsCurrent     bool
	IsRepealed    bool
	RepealDate    *time.Time
	CreatedAt     time.Time
}

// NewRepealMarker builds the empty-text version that records an article's
// repeal as of the given date.
func NewRepealMarker(codeID, articleNumber, amendmentRef string, date time.Time, sequenceNo int64, createdAt time.Time) ArticleVersion {
	d := date
	ref := amendmentRef
	return ArticleVersion{
		ID:            uuid.New(),
		CodeID:        codeID,
		ArticleNumber: articleNumber,
		EffectiveDate: date,
		Text:          "",
		AmendmentRef:  &ref,
		SequenceNo:    sequenceNo,
		ContentHash:   HashText(""),
		IsRepealed:    true,
		RepealDate:    &d,
		CreatedAt:     createdAt,
	}
}

// InForceAt reports whether the version's effective date has been reached.
func (v *ArticleVersion) InForceAt(at time.Time) bool {
	return !v.EffectiveDate.After(at)
}

// Ref returns the amendment reference, or "original" for the pre-amendment text.
func (v *ArticleVersion) Ref() string {
	if v.AmendmentRef == nil {
		return "original"
	}
	return *v.AmendmentRef
}
