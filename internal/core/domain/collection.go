package domain

import "time"

type CollectionSettings struct {
	HiddenDocumentIDs []string `json:"hidden_document_ids,omitempty"`
	AggregationOrder  []string `json:"aggregation_order,omitempty"`
}

type CollectionStats struct {
	DocumentCount int       `json:"document_count"`
	TotalSize     int64     `json:"total_size"`
	LastModified  time.Time `json:"last_modified"`
}

// AggregatedValue is a collection-level value derived from member documents.
// It is never independently authored: it changes only in response to member
// extraction or an explicit override.
type AggregatedValue struct {
	ExtractedValue
	ContributorIDs []string `json:"contributor_ids"`
}

type Collection struct {
	ID          string                     `json:"id"`
	ProjectID   string                     `json:"project_id"`
	DocumentIDs []string                   `json:"document_ids"`
	Settings    CollectionSettings         `json:"settings"`
	Extracted   map[string]AggregatedValue `json:"extracted_data"`
	Stats       CollectionStats            `json:"stats"`
}

// VisibleMemberOrder returns member ids in aggregation order with hidden
// documents removed. Members absent from the configured order keep their
// membership position after the ordered ones.
func (c *Collection) VisibleMemberOrder() []string {
	hidden := make(map[string]struct{}, len(c.Settings.HiddenDocumentIDs))
	for _, id := range c.Settings.HiddenDocumentIDs {
		hidden[id] = struct{}{}
	}
	member := make(map[string]struct{}, len(c.DocumentIDs))
	for _, id := range c.DocumentIDs {
		member[id] = struct{}{}
	}

	out := make([]string, 0, len(c.DocumentIDs))
	seen := make(map[string]struct{}, len(c.DocumentIDs))
	for _, id := range c.Settings.AggregationOrder {
		if _, ok := member[id]; !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := hidden[id]; ok {
			continue
		}
		out = append(out, id)
	}
	for _, id := range c.DocumentIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := hidden[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
