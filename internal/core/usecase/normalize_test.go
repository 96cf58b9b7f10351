package usecase

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
)

var normNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestNormalizeOneEntryPerColumnInOrder(t *testing.T) {
	cols := testColumns("a", "b", "c")
	raw := []domain.RawExtraction{
		{ColumnID: "c", Value: "third", Confidence: 0.5},
		{ColumnID: "a", Value: "first", Confidence: 0.9},
	}
	got := normalizeResults(cols, raw, domain.Provenance{Method: domain.MethodMultimodal}, normNow)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ColumnID != want {
			t.Fatalf("order = %v, want requested order", got)
		}
	}
	if got[1].Value.Value != "" || got[1].Value.Confidence != 0 {
		t.Fatalf("missing column b = %+v, want empty confidence-0", got[1].Value)
	}
}

func TestNormalizeClampsConfidence(t *testing.T) {
	cols := testColumns("a", "b", "c")
	raw := []domain.RawExtraction{
		{ColumnID: "a", Value: "x", Confidence: 1.7},
		{ColumnID: "b", Value: "y", Confidence: -0.4},
		{ColumnID: "c", Value: "z", Confidence: math.NaN()},
	}
	got := normalizeResults(cols, raw, domain.Provenance{}, normNow)
	if got[0].Value.Confidence != 1 {
		t.Fatalf("confidence = %v, want clamped 1", got[0].Value.Confidence)
	}
	if got[1].Value.Confidence != 0 {
		t.Fatalf("confidence = %v, want clamped 0", got[1].Value.Confidence)
	}
	if got[2].Value.Confidence != 0 {
		t.Fatalf("NaN confidence = %v, want 0", got[2].Value.Confidence)
	}
}

func TestNormalizeDuplicateAnswersFirstWins(t *testing.T) {
	cols := testColumns("a")
	raw := []domain.RawExtraction{
		{ColumnID: "a", Value: "keep", Confidence: 0.6},
		{ColumnID: "a", Value: "drop", Confidence: 0.9},
	}
	got := normalizeResults(cols, raw, domain.Provenance{}, normNow)
	if got[0].Value.Value != "keep" {
		t.Fatalf("value = %q, want first answer", got[0].Value.Value)
	}
}

func TestFailureResultsCarryDiagnostic(t *testing.T) {
	cols := testColumns("a", "b")
	err := domain.WrapError(domain.ErrInsufficientText, "pdf text", errors.New("12 chars"))
	got := failureResults(cols, err, domain.Provenance{Method: domain.MethodTextGrounded}, normNow)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.Value.Confidence != 0 {
			t.Fatalf("confidence = %v, want 0", r.Value.Confidence)
		}
		if r.Value.Value == "" {
			t.Fatal("diagnostic value is empty")
		}
	}
}
