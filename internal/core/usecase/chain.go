package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
	"github.com/docgrid/docgrid/internal/core/ports"
)

// strategyChain routes a document to its primary strategy and applies the
// fallback policy: a thrown strategy never aborts the request, and a primary
// that answers fewer than half of the requested columns gets a text-grounded
// second opinion merged into its empty slots.
type strategyChain struct {
	multimodal strategy
	text       strategy
	rawURL     strategy
	model      domain.ModelInfo
	now        func() time.Time
}

func newStrategyChain(svc ports.InferenceService, extractor ports.TextExtractor, now func() time.Time) *strategyChain {
	return &strategyChain{
		multimodal: &multimodalStrategy{svc: svc},
		text:       &textStrategy{svc: svc, extractor: extractor},
		rawURL:     &rawURLStrategy{svc: svc},
		model:      svc.Model(),
		now:        now,
	}
}

type chainOutcome struct {
	results  []domain.ColumnResult
	primary  string
	fallback string
}

// run never returns an error: every requested column comes back exactly
// once, worst case as a confidence-0 diagnostic.
func (c *strategyChain) run(ctx context.Context, in strategyInput) chainOutcome {
	switch in.kind {
	case domain.KindPDF:
		return c.runPDF(ctx, in)
	default:
		return c.runImage(ctx, in)
	}
}

// runPDF has no secondary: a scanned PDF legitimately yields per-column
// insufficient-text diagnostics rather than a speculative retry.
func (c *strategyChain) runPDF(ctx context.Context, in strategyInput) chainOutcome {
	outcome := chainOutcome{primary: c.text.method()}
	raw, err := c.text.run(ctx, in)
	if err != nil {
		slog.Warn("strategy_failed",
			"document_id", in.doc.ID,
			"strategy", c.text.method(),
			"error", err,
		)
		outcome.results = failureResults(in.columns, err, c.provenance(c.text.method()), c.now())
		return outcome
	}
	outcome.results = normalizeResults(in.columns, raw, c.provenance(c.text.method()), c.now())
	return outcome
}

func (c *strategyChain) runImage(ctx context.Context, in strategyInput) chainOutcome {
	outcome := chainOutcome{primary: c.multimodal.method()}

	raw, err := c.multimodal.run(ctx, in)
	if err != nil {
		slog.Warn("strategy_failed",
			"document_id", in.doc.ID,
			"strategy", c.multimodal.method(),
			"error", err,
		)
		outcome.results = failureResults(in.columns, err, c.provenance(c.multimodal.method()), c.now())
		outcome.fallback = c.rawURL.method()
		c.mergeSecondary(ctx, &outcome, c.rawURL, in)
	} else {
		outcome.results = normalizeResults(in.columns, raw, c.provenance(c.multimodal.method()), c.now())
	}

	// Below half the columns answered counts as a weak read even without an
	// error; merge a text-grounded pass into the empty slots.
	if countSuccesses(outcome.results)*2 < len(in.columns) {
		outcome.fallback = c.text.method()
		c.mergeSecondary(ctx, &outcome, c.text, in)
	}
	return outcome
}

// mergeSecondary runs a secondary strategy and overwrites zero-confidence
// slots with its non-zero answers. A failing secondary changes nothing.
func (c *strategyChain) mergeSecondary(ctx context.Context, outcome *chainOutcome, s strategy, in strategyInput) {
	raw, err := s.run(ctx, in)
	if err != nil {
		slog.Warn("fallback_strategy_failed",
			"document_id", in.doc.ID,
			"strategy", s.method(),
			"error", err,
		)
		return
	}
	secondary := normalizeResults(in.columns, raw, c.provenance(s.method()), c.now())
	for i := range outcome.results {
		if outcome.results[i].Value.Confidence > 0 {
			continue
		}
		if secondary[i].Value.Confidence > 0 {
			outcome.results[i] = secondary[i]
		}
	}
}

func (c *strategyChain) provenance(method string) domain.Provenance {
	return domain.Provenance{
		Method:  method,
		Model:   c.model.Model,
		Version: c.model.Version,
	}
}
