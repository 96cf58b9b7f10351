package usecase

import (
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
)

// normalizeResults guarantees exactly one entry per requested column, in
// requested order. Raw confidence is clamped to [0,1]; columns the service
// did not answer become confidence-0 entries. This function never fails:
// whatever the upstream produced, the caller gets a full result set.
func normalizeResults(columns []domain.Column, raw []domain.RawExtraction, prov domain.Provenance, now time.Time) []domain.ColumnResult {
	byColumn := make(map[string]domain.RawExtraction, len(raw))
	for _, r := range raw {
		if _, ok := byColumn[r.ColumnID]; ok {
			continue // first answer wins on duplicates
		}
		byColumn[r.ColumnID] = r
	}

	out := make([]domain.ColumnResult, 0, len(columns))
	for _, col := range columns {
		r := byColumn[col.ID]
		out = append(out, domain.ColumnResult{
			ColumnID: col.ID,
			Value: domain.ExtractedValue{
				Value:       r.Value,
				Type:        col.Type,
				Confidence:  clampConfidence(r.Confidence),
				ExtractedAt: now,
				Provenance:  prov,
			},
		})
	}
	return out
}

// failureResults converts a strategy-boundary error into confidence-0
// entries carrying a diagnostic value string, one per requested column.
func failureResults(columns []domain.Column, err error, prov domain.Provenance, now time.Time) []domain.ColumnResult {
	diagnostic := "extraction failed"
	if err != nil {
		diagnostic = "extraction failed: " + err.Error()
	}
	out := make([]domain.ColumnResult, 0, len(columns))
	for _, col := range columns {
		out = append(out, domain.ColumnResult{
			ColumnID: col.ID,
			Value: domain.ExtractedValue{
				Value:       diagnostic,
				Type:        col.Type,
				Confidence:  0,
				ExtractedAt: now,
				Provenance:  prov,
			},
		})
	}
	return out
}

func clampConfidence(c float64) float64 {
	if c < 0 || c != c { // NaN guards to zero
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func countSuccesses(results []domain.ColumnResult) int {
	n := 0
	for _, r := range results {
		if r.Value.Confidence > 0 {
			n++
		}
	}
	return n
}
