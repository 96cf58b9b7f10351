package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
	"github.com/docgrid/docgrid/internal/core/ports"
	"github.com/docgrid/docgrid/internal/observability/metrics"
)

type Router struct {
	extractor ports.ExtractionService
	editor    ports.ValueEditor
	admin     ports.ColumnAdmin
	docs      ports.DocumentRepository
	colls     ports.CollectionRepository
	queue     ports.MessageQueue
	metrics   *metrics.HTTPServerMetrics
	service   string
}

func NewRouter(
	extractor ports.ExtractionService,
	editor ports.ValueEditor,
	admin ports.ColumnAdmin,
	docs ports.DocumentRepository,
	colls ports.CollectionRepository,
	queue ports.MessageQueue,
	httpMetrics *metrics.HTTPServerMetrics,
	service string,
) *Router {
	return &Router{
		extractor: extractor,
		editor:    editor,
		admin:     admin,
		docs:      docs,
		colls:     colls,
		queue:     queue,
		metrics:   httpMetrics,
		service:   service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/extract", rt.extract)
	mux.HandleFunc("/v1/extract/async", rt.extractAsync)
	mux.HandleFunc("/v1/documents/", rt.documentRoutes)
	mux.HandleFunc("/v1/collections/", rt.getCollection)
	mux.HandleFunc("/v1/columns/", rt.deleteColumn)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type extractPayload struct {
	DocumentID     string   `json:"document_id"`
	CollectionID   string   `json:"collection_id"`
	ColumnIDs      []string `json:"column_ids"`
	ForceReextract bool     `json:"force_reextract"`
}

func decodeExtractRequest(r *http.Request) (domain.ExtractionRequest, error) {
	var payload extractPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return domain.ExtractionRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode extract request", err)
	}
	if payload.DocumentID == "" && payload.CollectionID == "" {
		return domain.ExtractionRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode extract request",
			errInvalidTarget)
	}
	return domain.ExtractionRequest{
		DocumentID:     payload.DocumentID,
		CollectionID:   payload.CollectionID,
		ColumnIDs:      payload.ColumnIDs,
		ForceReextract: payload.ForceReextract,
		Actor:          actorFromRequest(r),
	}, nil
}

func (rt *Router) extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !requireEdit(w, r) {
		return
	}

	req, err := decodeExtractRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	start := time.Now()
	if rt.metrics != nil {
		rt.metrics.Pipeline().StartExtraction()
	}

	var report *domain.ExtractionReport
	if req.CollectionID != "" && req.DocumentID == "" {
		report, err = rt.extractor.ExtractCollection(r.Context(), req)
	} else {
		report, err = rt.extractor.ExtractDocument(r.Context(), req)
	}

	if rt.metrics != nil {
		successCount := 0
		if report != nil {
			successCount = report.SuccessCount
		}
		rt.metrics.Pipeline().FinishExtraction(rt.service, "", time.Since(start), successCount, err)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) extractAsync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !requireEdit(w, r) {
		return
	}

	req, err := decodeExtractRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	job := domain.ExtractionJob{Request: req, RequestedAt: time.Now().UTC()}
	if err := rt.queue.PublishExtractionJob(r.Context(), job); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// documentRoutes serves GET /v1/documents/{id} and
// PUT /v1/documents/{id}/values/{columnId}.
func (rt *Router) documentRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		rt.getDocument(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "values":
		rt.setManualValue(w, r, parts[0], parts[2])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) setManualValue(w http.ResponseWriter, r *http.Request, documentID, columnID string) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !requireEdit(w, r) {
		return
	}

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	value, err := rt.editor.SetManualValue(r.Context(), documentID, columnID, payload.Value, actorFromRequest(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (rt *Router) getCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/collections/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "collection id is required")
		return
	}

	coll, err := rt.colls.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coll)
}

func (rt *Router) deleteColumn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !requireEdit(w, r) {
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/columns/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "column id is required")
		return
	}

	if err := rt.admin.DeleteColumn(r.Context(), id, actorFromRequest(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, mapErrorToHTTPStatus(err), err.Error())
}
