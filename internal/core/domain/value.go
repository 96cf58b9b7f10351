package domain

import "time"

// Provenance records how a value was produced.
type Provenance struct {
	Method  string `json:"method"`
	Model   string `json:"model,omitempty"`
	Version string `json:"version,omitempty"`
	Actor   string `json:"actor,omitempty"`
}

// ExtractedValue is one column's value on one document. At most one exists
// per (document, column); re-extraction overwrites, it never versions.
type ExtractedValue struct {
	Value       string     `json:"value"`
	Type        string     `json:"type,omitempty"`
	Confidence  float64    `json:"confidence"`
	ExtractedAt time.Time  `json:"extracted_at"`
	Provenance  Provenance `json:"provenance"`
}

// Column is a named, prompted field definition shared by all documents in a
// project. The id is the immutable identity; renames touch Name only.
type Column struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Prompt    string `json:"prompt"`
	Type      string `json:"type"`
	ModelHint string `json:"model_hint,omitempty"`
}

// ModelInfo identifies the inference model a pipeline run is attributed to.
type ModelInfo struct {
	Model   string
	Version string
}

const (
	MethodMultimodal   = "direct-multimodal"
	MethodTextGrounded = "text-grounded"
	MethodRawURL       = "raw-url"
	MethodManual       = "manual"
	MethodAggregation  = "aggregation"
)
