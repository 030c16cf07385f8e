package ingest

// BatchDocument is the top-level JSON document delivered by the upstream
// normalizer. One file per amendment: <input-dir>/<amendment_ref>.json.
type BatchDocument struct {
	AmendmentRef  string                `json:"amendment_ref"`
	CodeID        string                `json:"code_id"`
	EffectiveDate string                `json:"effective_date"`
	SequenceNo    int64                 `json:"sequence_no"`
	Instructions  []InstructionDocument `json:"instructions"`
}

// InstructionDocument is one instruction within a batch document.
// Text is required for add and modify, forbidden for repeal.
type InstructionDocument struct {
	Kind          string  `json:"kind"`
	ArticleNumber string  `json:"article_number"`
	Title         *string `json:"title,omitempty"`
	Text          string  `json:"text,omitempty"`
}
