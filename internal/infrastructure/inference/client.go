package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/docgrid/docgrid/internal/core/domain"
	"github.com/docgrid/docgrid/internal/infrastructure/resilience"
)

// Client talks to the external AI inference service. The service is a black
// box with one contract: instructions + column prompts + a content reference
// in, a JSON extractions array out. Anything else it answers is a strategy
// failure upstream.
type Client struct {
	transport *transport
	model     string
	version   string
	timeout   time.Duration
	limiter   *rate.Limiter
	executor  *resilience.Executor
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Version     string
	CallTimeout time.Duration
	RatePerSec  float64
	Executor    *resilience.Executor
}

func New(cfg Config) *Client {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return &Client{
		transport: newTransport(strings.TrimRight(cfg.BaseURL, "/"), cfg.APIKey, timeout),
		model:     cfg.Model,
		version:   cfg.Version,
		timeout:   timeout,
		limiter:   limiter,
		executor:  cfg.Executor,
	}
}

func (c *Client) Model() domain.ModelInfo {
	return domain.ModelInfo{Model: c.model, Version: c.version}
}

type columnPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

type contentPayload struct {
	Type      string `json:"type"`
	Data      string `json:"data,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	Text      string `json:"text,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	URL       string `json:"url,omitempty"`
}

type extractPayload struct {
	Model        string          `json:"model"`
	Instructions string          `json:"instructions"`
	Columns      []columnPayload `json:"columns"`
	Content      contentPayload  `json:"content"`
}

type extractResponse struct {
	Extractions []domain.RawExtraction `json:"extractions"`
}

func (c *Client) ExtractFields(ctx context.Context, req domain.InferenceRequest) ([]domain.RawExtraction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, err
	}

	var response extractResponse
	call := func(callCtx context.Context) error {
		callCtx, cancel := context.WithTimeout(callCtx, c.timeout)
		defer cancel()
		return c.transport.postJSON(callCtx, "/v1/extract", payload, &response)
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "inference.extract", call, classifyInferenceError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, translateCallError(err)
	}

	for _, e := range response.Extractions {
		if e.ColumnID == "" {
			return nil, domain.WrapError(domain.ErrServiceResponse, "inference extract",
				fmt.Errorf("extraction entry without columnId"))
		}
	}
	return response.Extractions, nil
}

func (c *Client) buildPayload(req domain.InferenceRequest) (extractPayload, error) {
	payload := extractPayload{
		Model:        c.model,
		Instructions: req.Instructions,
		Columns:      make([]columnPayload, 0, len(req.Columns)),
	}
	for _, col := range req.Columns {
		payload.Columns = append(payload.Columns, columnPayload{
			ID:     col.ID,
			Name:   col.Name,
			Prompt: col.Prompt,
			Type:   col.Type,
		})
	}

	switch req.Kind {
	case domain.ContentImage:
		payload.Content = contentPayload{
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(req.ImageData),
			MimeType: req.ImageMime,
		}
	case domain.ContentText:
		payload.Content = contentPayload{
			Type:      "text",
			Text:      req.Text,
			Truncated: req.TextTruncated,
		}
	case domain.ContentURL:
		payload.Content = contentPayload{
			Type: "document_url",
			URL:  req.DocumentURL,
		}
	default:
		return extractPayload{}, domain.WrapError(domain.ErrInvalidInput, "inference extract",
			fmt.Errorf("unsupported content kind %q", req.Kind))
	}
	return payload, nil
}
