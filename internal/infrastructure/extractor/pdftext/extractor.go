package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docgrid/docgrid/internal/core/domain"
)

const (
	// minTextLen separates digital PDFs from scans: below it the document
	// structurally carries no usable embedded text.
	minTextLen = 50

	// defaultMaxChars bounds the prefix handed to the inference service.
	defaultMaxChars = 20000
)

// Extractor converts PDF bytes into bounded plain text.
type Extractor struct {
	maxChars int
}

func New(maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Extractor{maxChars: maxChars}
}

func (e *Extractor) ExtractText(ctx context.Context, data []byte) (domain.DocumentText, error) {
	if err := ctx.Err(); err != nil {
		return domain.DocumentText{}, err
	}
	if len(data) == 0 {
		return domain.DocumentText{}, domain.WrapError(domain.ErrInvalidFormat, "pdf text", errors.New("empty document"))
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.DocumentText{}, domain.WrapError(domain.ErrInvalidFormat, "pdf text", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return domain.DocumentText{}, domain.WrapError(domain.ErrInvalidFormat, "pdf text", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return domain.DocumentText{}, domain.WrapError(domain.ErrInvalidFormat, "pdf text", err)
	}

	return finalizeText(string(raw), reader.NumPage(), e.maxChars)
}

// finalizeText applies the structural minimum and the bounded-prefix
// truncation. Split out so the policy is testable without PDF fixtures.
func finalizeText(text string, pages, maxChars int) (domain.DocumentText, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minTextLen {
		return domain.DocumentText{}, domain.WrapError(domain.ErrInsufficientText, "pdf text",
			fmt.Errorf("%d of %d required characters across %d pages", len(trimmed), minTextLen, pages))
	}

	out := domain.DocumentText{Text: trimmed, Pages: pages}
	if len(trimmed) > maxChars {
		out.Text = trimmed[:maxChars]
		out.Truncated = true
	}
	return out, nil
}
