package domain

import (
	"errors"
	"testing"
)

func testBatch() AmendmentBatch {
	return AmendmentBatch{
		AmendmentRef:  "2024-FZ-100",
		CodeID:        "GK_RF",
		EffectiveDate: date("2024-09-01"),
		SequenceNo:    7,
		Instructions: []Instruction{
			{Kind: InstructionModify, ArticleNumber: "93", Text: "new wording of article 93"},
			{Kind: InstructionAdd, ArticleNumber: "93.1", Text: "inserted article"},
		},
	}
}

func TestAmendmentBatch_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kinds []InstructionKind
		want  AmendmentClass
	}{
		{"pure addition", []InstructionKind{InstructionAdd, InstructionAdd}, AmendmentClassAddition},
		{"pure modification", []InstructionKind{InstructionModify}, AmendmentClassModification},
		{"pure repeal", []InstructionKind{InstructionRepeal}, AmendmentClassRepeal},
		{"add and modify", []InstructionKind{InstructionAdd, InstructionModify}, AmendmentClassMixed},
		{"all three", []InstructionKind{InstructionAdd, InstructionModify, InstructionRepeal}, AmendmentClassMixed},
		{"empty", nil, AmendmentClassMixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := AmendmentBatch{}
			for _, k := range tt.kinds {
				ins := Instruction{Kind: k, ArticleNumber: "1"}
				if k != InstructionRepeal {
					ins.Text = "text"
				}
				b.Instructions = append(b.Instructions, ins)
			}
			if got := b.Classification(); got != tt.want {
				t.Errorf("Classification() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAmendmentBatch_InstructionSetHash_Stable(t *testing.T) {
	t.Parallel()

	b := testBatch()
	if b.InstructionSetHash() != b.InstructionSetHash() {
		t.Fatal("hash not stable across calls")
	}

	same := testBatch()
	if b.InstructionSetHash() != same.InstructionSetHash() {
		t.Fatal("identical batches hashed differently")
	}
}

func TestAmendmentBatch_InstructionSetHash_SensitiveToContent(t *testing.T) {
	t.Parallel()

	base := testBatch()

	edited := testBatch()
	edited.Instructions[0].Text = "different wording"
	if base.InstructionSetHash() == edited.InstructionSetHash() {
		t.Error("hash ignored instruction text change")
	}

	reordered := testBatch()
	reordered.Instructions[0], reordered.Instructions[1] = reordered.Instructions[1], reordered.Instructions[0]
	if base.InstructionSetHash() == reordered.InstructionSetHash() {
		t.Error("hash ignored instruction order change")
	}

	redated := testBatch()
	redated.EffectiveDate = date("2024-10-01")
	if base.InstructionSetHash() == redated.InstructionSetHash() {
		t.Error("hash ignored effective date change")
	}
}

func TestAmendmentBatch_InstructionSetHash_WhitespaceInsensitive(t *testing.T) {
	t.Parallel()

	a := testBatch()
	b := testBatch()
	b.Instructions[0].Text = a.Instructions[0].Text + "   \r\n"
	if a.InstructionSetHash() != b.InstructionSetHash() {
		t.Error("hash distinguished texts equal after canonicalization")
	}
}

func TestAmendmentBatch_Validate_OK(t *testing.T) {
	t.Parallel()

	if err := testBatch().Validate(); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}

	repeal := AmendmentBatch{
		AmendmentRef:  "2024-FZ-400",
		CodeID:        "GK_RF",
		EffectiveDate: date("2024-09-01"),
		Instructions:  []Instruction{{Kind: InstructionRepeal, ArticleNumber: "50"}},
	}
	if err := repeal.Validate(); err != nil {
		t.Fatalf("valid repeal batch rejected: %v", err)
	}
}

func TestAmendmentBatch_Validate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*AmendmentBatch)
	}{
		{"missing ref", func(b *AmendmentBatch) { b.AmendmentRef = "  " }},
		{"missing code", func(b *AmendmentBatch) { b.CodeID = "" }},
		{"zero date", func(b *AmendmentBatch) { b.EffectiveDate = date("0001-01-01") }},
		{"negative sequence", func(b *AmendmentBatch) { b.SequenceNo = -1 }},
		{"no instructions", func(b *AmendmentBatch) { b.Instructions = nil }},
		{"bad kind", func(b *AmendmentBatch) { b.Instructions[0].Kind = "RENUMBER" }},
		{"bad article number", func(b *AmendmentBatch) { b.Instructions[0].ArticleNumber = "article one" }},
		{"empty text on modify", func(b *AmendmentBatch) { b.Instructions[0].Text = "  \n" }},
		{"text on repeal", func(b *AmendmentBatch) {
			b.Instructions[0] = Instruction{Kind: InstructionRepeal, ArticleNumber: "93", Text: "leftover"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := testBatch()
			tt.mutate(&b)
			err := b.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAmendmentApplication_TouchedArticles(t *testing.T) {
	t.Parallel()

	app := AmendmentApplication{
		AddedArticles:    []string{"93.10"},
		ModifiedArticles: []string{"93", "12"},
		RepealedArticles: []string{"93.2"},
	}

	got := app.TouchedArticles()
	want := []string{"12", "93", "93.2", "93.10"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}
