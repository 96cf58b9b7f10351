package domain

import "time"

// ExtractionRequest targets either one document or one collection. With a
// collection target, ColumnIDs narrows the run to a subset of the project's
// columns; empty means all of them.
type ExtractionRequest struct {
	DocumentID     string   `json:"document_id,omitempty"`
	CollectionID   string   `json:"collection_id,omitempty"`
	ColumnIDs      []string `json:"column_ids,omitempty"`
	ForceReextract bool     `json:"force_reextract,omitempty"`
	Actor          string   `json:"actor,omitempty"`
}

// ColumnResult is one normalized entry of an extraction report.
type ColumnResult struct {
	ColumnID string         `json:"column_id"`
	Value    ExtractedValue `json:"value"`
}

// ExtractionReport always carries exactly one entry per requested column.
// SuccessCount counts entries with confidence above zero; a run that found
// nothing is still a successful run with SuccessCount 0.
type ExtractionReport struct {
	PerColumn    []ColumnResult `json:"per_column"`
	SuccessCount int            `json:"success_count"`
	TotalColumns int            `json:"total_columns"`
}

// Blob is a fetched document body.
type Blob struct {
	Data        []byte
	ContentType string
}

// DocumentText is the text-extractor output. Truncated flags that Text is a
// bounded prefix of the embedded text.
type DocumentText struct {
	Text      string
	Pages     int
	Truncated bool
}

// RawExtraction is an un-normalized per-column answer from the inference
// service. Confidence may be missing or out of range here; the normalizer
// owns clamping.
type RawExtraction struct {
	ColumnID   string  `json:"columnId"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ContentKind discriminates InferenceRequest payloads.
type ContentKind string

const (
	ContentImage ContentKind = "image"
	ContentText  ContentKind = "text"
	ContentURL   ContentKind = "url"
)

// InferenceRequest is the wire-level input contract of the external AI
// service: system instructions, the column prompts, and exactly one content
// reference.
type InferenceRequest struct {
	Instructions string
	Columns      []Column
	Kind         ContentKind

	ImageData []byte
	ImageMime string

	Text          string
	TextTruncated bool

	DocumentURL string
}

// ExtractionJob is the queued form of an ExtractionRequest, consumed by the
// worker binary.
type ExtractionJob struct {
	Request     ExtractionRequest `json:"request"`
	RequestedAt time.Time         `json:"requested_at"`
}

// AuditEntry records a pipeline transition, manual edit, or cascade.
type AuditEntry struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
