package domain

import "time"

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
	StatusCancelled  ProcessingStatus = "cancelled"
)

type ProcessingError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Processing tracks one document's extraction lifecycle. Progress is
// caller-reported and advisory only.
type Processing struct {
	Status      ProcessingStatus `json:"status"`
	Progress    int              `json:"progress"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Error       *ProcessingError `json:"error,omitempty"`
	RetryCount  int              `json:"retry_count"`
}

type Document struct {
	ID           string                    `json:"id"`
	ProjectID    string                    `json:"project_id"`
	CollectionID string                    `json:"collection_id,omitempty"`
	Name         string                    `json:"name"`
	StorageURL   string                    `json:"storage_url"`
	MimeType     string                    `json:"mime_type"`
	SizeBytes    int64                     `json:"size_bytes"`
	Processing   Processing                `json:"processing"`
	Extracted    map[string]ExtractedValue `json:"extracted_data"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// Value returns the stored extraction for a column, if any.
func (d *Document) Value(columnID string) (ExtractedValue, bool) {
	v, ok := d.Extracted[columnID]
	return v, ok
}
