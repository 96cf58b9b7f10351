package usecase

import (
	"context"
	"sync"

	"github.com/docgrid/docgrid/internal/core/domain"
)

type docRepoFake struct {
	mu         sync.Mutex
	docs       map[string]*domain.Document
	getErr     error
	setErr     error
	setCalls   int
	removedCol string
}

func newDocRepoFake(docs ...*domain.Document) *docRepoFake {
	f := &docRepoFake{docs: make(map[string]*domain.Document)}
	for _, d := range docs {
		if d.Extracted == nil {
			d.Extracted = make(map[string]domain.ExtractedValue)
		}
		f.docs[d.ID] = d
	}
	return f
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return d, nil
}

func (f *docRepoFake) ListByIDs(_ context.Context, ids []string) ([]*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := f.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *docRepoFake) SetExtractedValue(_ context.Context, documentID, columnID string, value domain.ExtractedValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls++
	if d, ok := f.docs[documentID]; ok {
		d.Extracted[columnID] = value
	}
	return nil
}

func (f *docRepoFake) UpdateProcessing(_ context.Context, documentID string, processing domain.Processing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.docs[documentID]; ok {
		d.Processing = processing
	}
	return nil
}

func (f *docRepoFake) RemoveColumnValues(_ context.Context, _, columnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedCol = columnID
	for _, d := range f.docs {
		delete(d.Extracted, columnID)
	}
	return nil
}

type collectionRepoFake struct {
	mu              sync.Mutex
	coll            *domain.Collection
	aggregates      map[string]domain.AggregatedValue
	statsRecomputes int
	removedCol      string
}

func newCollectionRepoFake(coll *domain.Collection) *collectionRepoFake {
	return &collectionRepoFake{coll: coll, aggregates: make(map[string]domain.AggregatedValue)}
}

func (f *collectionRepoFake) GetByID(_ context.Context, id string) (*domain.Collection, error) {
	if f.coll == nil || f.coll.ID != id {
		return nil, domain.ErrCollectionNotFound
	}
	return f.coll, nil
}

func (f *collectionRepoFake) SaveAggregate(_ context.Context, _, columnID string, value domain.AggregatedValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aggregates[columnID] = value
	return nil
}

func (f *collectionRepoFake) RemoveAggregate(_ context.Context, _, columnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.aggregates, columnID)
	return nil
}

func (f *collectionRepoFake) RecomputeStats(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsRecomputes++
	return nil
}

func (f *collectionRepoFake) RemoveColumnAggregates(_ context.Context, _, columnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedCol = columnID
	delete(f.aggregates, columnID)
	return nil
}

type columnRepoFake struct {
	cols    []domain.Column
	deleted []string
}

func (f *columnRepoFake) GetByIDs(_ context.Context, ids []string) ([]domain.Column, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []domain.Column
	for _, c := range f.cols {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *columnRepoFake) ListByProject(context.Context, string) ([]domain.Column, error) {
	return f.cols, nil
}

func (f *columnRepoFake) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type auditFake struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (f *auditFake) Append(_ context.Context, entry domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *auditFake) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fetcherFake struct {
	blob *domain.Blob
	err  error
}

func (f *fetcherFake) Fetch(context.Context, string, domain.FileKind) (*domain.Blob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.blob, nil
}

type textExtractorFake struct {
	text domain.DocumentText
	err  error
}

func (f *textExtractorFake) ExtractText(context.Context, []byte) (domain.DocumentText, error) {
	if f.err != nil {
		return domain.DocumentText{}, f.err
	}
	return f.text, nil
}

// inferenceFake scripts responses by content kind and records every call.
type inferenceFake struct {
	mu      sync.Mutex
	calls   []domain.InferenceRequest
	respond func(req domain.InferenceRequest) ([]domain.RawExtraction, error)
}

func (f *inferenceFake) ExtractFields(_ context.Context, req domain.InferenceRequest) ([]domain.RawExtraction, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.respond == nil {
		return nil, nil
	}
	return f.respond(req)
}

func (f *inferenceFake) Model() domain.ModelInfo {
	return domain.ModelInfo{Model: "stub-model", Version: "2026-01"}
}

func (f *inferenceFake) callKinds() []domain.ContentKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ContentKind, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Kind)
	}
	return out
}

func testColumns(ids ...string) []domain.Column {
	cols := make([]domain.Column, 0, len(ids))
	for _, id := range ids {
		cols = append(cols, domain.Column{ID: id, ProjectID: "p-1", Name: "col " + id, Prompt: "extract " + id, Type: "string"})
	}
	return cols
}
