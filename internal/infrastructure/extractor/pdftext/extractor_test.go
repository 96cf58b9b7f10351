package pdftext

import (
	"context"
	"strings"
	"testing"

	"github.com/docgrid/docgrid/internal/core/domain"
)

func TestExtractTextEmptyBytes(t *testing.T) {
	_, err := New(0).ExtractText(context.Background(), nil)
	if !domain.IsKind(err, domain.ErrInvalidFormat) {
		t.Fatalf("error = %v, want invalid format", err)
	}
}

func TestExtractTextNonPDFBytes(t *testing.T) {
	_, err := New(0).ExtractText(context.Background(), []byte("<html>not a pdf</html>"))
	if !domain.IsKind(err, domain.ErrInvalidFormat) {
		t.Fatalf("error = %v, want invalid format", err)
	}
}

func TestFinalizeTextBelowMinimumIsInsufficient(t *testing.T) {
	_, err := finalizeText("short scan artifact", 3, 1000)
	if !domain.IsKind(err, domain.ErrInsufficientText) {
		t.Fatalf("error = %v, want insufficient text", err)
	}
	if !strings.Contains(err.Error(), "insufficient") {
		t.Fatalf("error %q should mention insufficient text", err)
	}
}

func TestFinalizeTextTruncatesToBoundedPrefix(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got, err := finalizeText(long, 2, 120)
	if err != nil {
		t.Fatalf("finalizeText() error = %v", err)
	}
	if !got.Truncated {
		t.Fatal("Truncated not flagged")
	}
	if len(got.Text) != 120 {
		t.Fatalf("len = %d, want 120", len(got.Text))
	}
	if got.Pages != 2 {
		t.Fatalf("Pages = %d", got.Pages)
	}
}

func TestFinalizeTextKeepsShortEnoughText(t *testing.T) {
	text := strings.Repeat("a", 80)
	got, err := finalizeText(text, 1, 1000)
	if err != nil {
		t.Fatalf("finalizeText() error = %v", err)
	}
	if got.Truncated || got.Text != text {
		t.Fatalf("got = %+v", got)
	}
}
