package usecase

import (
	"context"
	"testing"

	"github.com/docgrid/docgrid/internal/core/domain"
)

func memberDoc(id string, columnID string, value string, confidence float64) *domain.Document {
	return &domain.Document{
		ID: id,
		Extracted: map[string]domain.ExtractedValue{
			columnID: {Value: value, Confidence: confidence, Provenance: domain.Provenance{Method: domain.MethodMultimodal, Model: "stub-model"}},
		},
	}
}

func TestAggregateOrderBeatsConfidence(t *testing.T) {
	// A has confidence 0, B 0.9, C 0.4: the first usable value wins, so the
	// aggregate is B's even though C is also usable.
	coll := &domain.Collection{ID: "coll-1", DocumentIDs: []string{"A", "B", "C"}}
	docs := map[string]*domain.Document{
		"A": memberDoc("A", "x", "zero", 0),
		"B": memberDoc("B", "x", "from B", 0.9),
		"C": memberDoc("C", "x", "from C", 0.4),
	}

	agg := aggregateColumn(coll, docs, domain.Column{ID: "x", Type: "string"}, normNow)
	if agg.Value != "from B" {
		t.Fatalf("aggregate = %q, want first confident member", agg.Value)
	}
	if len(agg.ContributorIDs) != 2 || agg.ContributorIDs[0] != "B" || agg.ContributorIDs[1] != "C" {
		t.Fatalf("contributors = %v, want [B C]", agg.ContributorIDs)
	}
	if agg.Provenance.Method != domain.MethodAggregation {
		t.Fatalf("method = %q", agg.Provenance.Method)
	}
}

func TestAggregateOrderPrefersLowerConfidenceEarlierMember(t *testing.T) {
	coll := &domain.Collection{ID: "coll-1", DocumentIDs: []string{"A", "B"}}
	docs := map[string]*domain.Document{
		"A": memberDoc("A", "x", "early low", 0.3),
		"B": memberDoc("B", "x", "late high", 0.95),
	}
	agg := aggregateColumn(coll, docs, domain.Column{ID: "x"}, normNow)
	if agg.Value != "early low" || agg.Confidence != 0.3 {
		t.Fatalf("aggregate = %+v, document order must break ties, not confidence", agg.ExtractedValue)
	}
}

func TestAggregateExcludesHiddenMembers(t *testing.T) {
	coll := &domain.Collection{
		ID:          "coll-1",
		DocumentIDs: []string{"A", "B"},
		Settings:    domain.CollectionSettings{HiddenDocumentIDs: []string{"B"}},
	}
	docs := map[string]*domain.Document{
		"A": memberDoc("A", "x", "zero", 0),
		"B": memberDoc("B", "x", "hidden but confident", 0.9),
	}
	agg := aggregateColumn(coll, docs, domain.Column{ID: "x"}, normNow)
	if len(agg.ContributorIDs) != 0 {
		t.Fatalf("contributors = %v, hiding the sole contributor must leave none", agg.ContributorIDs)
	}
	if agg.Value != "" || agg.Confidence != 0 {
		t.Fatalf("aggregate = %+v, want empty", agg.ExtractedValue)
	}
}

func TestAggregateRespectsAggregationOrder(t *testing.T) {
	coll := &domain.Collection{
		ID:          "coll-1",
		DocumentIDs: []string{"A", "B"},
		Settings:    domain.CollectionSettings{AggregationOrder: []string{"B", "A"}},
	}
	docs := map[string]*domain.Document{
		"A": memberDoc("A", "x", "from A", 0.8),
		"B": memberDoc("B", "x", "from B", 0.5),
	}
	agg := aggregateColumn(coll, docs, domain.Column{ID: "x"}, normNow)
	if agg.Value != "from B" {
		t.Fatalf("aggregate = %q, want aggregation-order winner", agg.Value)
	}
}

func TestRefreshSavesAggregatesAndRecomputesStats(t *testing.T) {
	coll := &domain.Collection{ID: "coll-1", DocumentIDs: []string{"A"}}
	collections := newCollectionRepoFake(coll)
	docs := newDocRepoFake(memberDoc("A", "x", "from A", 0.8))

	agg := NewAggregator(collections, docs)
	out, err := agg.Refresh(context.Background(), "coll-1", testColumns("x"), normNow)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if out["x"].Value != "from A" {
		t.Fatalf("refreshed aggregate = %+v", out["x"])
	}
	if collections.aggregates["x"].Value != "from A" {
		t.Fatal("aggregate not persisted")
	}
	if collections.statsRecomputes != 1 {
		t.Fatalf("stats recomputed %d times, want 1", collections.statsRecomputes)
	}
}
