package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/docgrid/docgrid/internal/core/domain"
	"github.com/docgrid/docgrid/internal/core/ports"
)

const multimodalInstructions = `You are a document field extractor. You will receive a document and a list of field definitions. Read the document carefully and extract a value for every field. Respond with a single JSON object of the form {"extractions":[{"columnId":"...","value":"...","confidence":0.0}]}. Include every requested columnId exactly once. Confidence is your own certainty between 0 and 1; use 0 when the document does not contain the field. Do not include any text outside the JSON object.`

const textInstructions = `You are a document field extractor. You will receive the plain text content of a document and a list of field definitions. The text may be truncated; extract what is present. Respond with a single JSON object of the form {"extractions":[{"columnId":"...","value":"...","confidence":0.0}]}. Include every requested columnId exactly once. Confidence is your own certainty between 0 and 1; use 0 when the text does not contain the field. Do not include any text outside the JSON object.`

const rawURLInstructions = `You are a document field extractor. Fetch and read the document at the given URL, then extract a value for the single field described. Respond with a single JSON object of the form {"extractions":[{"columnId":"...","value":"...","confidence":0.0}]}. Confidence is your own certainty between 0 and 1. Do not include any text outside the JSON object.`

// strategyInput bundles everything a strategy may need. blob is nil when the
// download failed; strategies that need bytes surface blobErr themselves so
// the chain can treat it as a strategy failure rather than a request failure.
type strategyInput struct {
	doc     *domain.Document
	kind    domain.FileKind
	blob    *domain.Blob
	blobErr error
	columns []domain.Column
}

type strategy interface {
	method() string
	run(ctx context.Context, in strategyInput) ([]domain.RawExtraction, error)
}

func (in strategyInput) requireBlob() (*domain.Blob, error) {
	if in.blob != nil {
		return in.blob, nil
	}
	if in.blobErr != nil {
		return nil, in.blobErr
	}
	return nil, domain.WrapError(domain.ErrFetch, "load document bytes", errors.New("no document bytes available"))
}

// multimodalStrategy sends the document's visual form plus all column
// prompts in one call. Default for images and unknown types.
type multimodalStrategy struct {
	svc ports.InferenceService
}

func (s *multimodalStrategy) method() string { return domain.MethodMultimodal }

func (s *multimodalStrategy) run(ctx context.Context, in strategyInput) ([]domain.RawExtraction, error) {
	blob, err := in.requireBlob()
	if err != nil {
		return nil, err
	}
	return s.svc.ExtractFields(ctx, domain.InferenceRequest{
		Instructions: multimodalInstructions,
		Columns:      in.columns,
		Kind:         domain.ContentImage,
		ImageData:    blob.Data,
		ImageMime:    blob.ContentType,
	})
}

// textStrategy grounds extraction on the PDF's embedded text. Default for
// PDFs; also the threshold fallback for the image path.
type textStrategy struct {
	svc       ports.InferenceService
	extractor ports.TextExtractor
}

func (s *textStrategy) method() string { return domain.MethodTextGrounded }

func (s *textStrategy) run(ctx context.Context, in strategyInput) ([]domain.RawExtraction, error) {
	blob, err := in.requireBlob()
	if err != nil {
		return nil, err
	}
	text, err := s.extractor.ExtractText(ctx, blob.Data)
	if err != nil {
		return nil, err
	}
	return s.svc.ExtractFields(ctx, domain.InferenceRequest{
		Instructions:  textInstructions,
		Columns:       in.columns,
		Kind:          domain.ContentText,
		Text:          text.Text,
		TextTruncated: text.Truncated,
	})
}

// rawURLStrategy asks the service to reason over the document by reference,
// one call per column. Used only when the multimodal strategy throws.
type rawURLStrategy struct {
	svc ports.InferenceService
}

func (s *rawURLStrategy) method() string { return domain.MethodRawURL }

func (s *rawURLStrategy) run(ctx context.Context, in strategyInput) ([]domain.RawExtraction, error) {
	if in.doc.StorageURL == "" {
		return nil, domain.WrapError(domain.ErrFetch, "raw url extraction", errors.New("document has no storage url"))
	}

	var out []domain.RawExtraction
	var lastErr error
	for _, col := range in.columns {
		raw, err := s.svc.ExtractFields(ctx, domain.InferenceRequest{
			Instructions: rawURLInstructions,
			Columns:      []domain.Column{col},
			Kind:         domain.ContentURL,
			DocumentURL:  in.doc.StorageURL,
		})
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, raw...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("raw url extraction: %w", lastErr)
	}
	return out, nil
}
