package httpblob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docgrid/docgrid/internal/core/domain"
)

const defaultMaxBytes = 64 << 20 // storage objects beyond this are not documents

var pdfMagic = []byte("%PDF-")

// Fetcher downloads document bytes from blob storage over HTTP. It exists
// to guard the pipeline against storage misconfiguration: a signed URL that
// answers with an HTML error page must fail here, not inside a strategy.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

func New(options Options) *Fetcher {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = "docgrid-fetcher/1.0"
	}
	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string, expected domain.FileKind) (*domain.Blob, error) {
	if url == "" {
		return nil, domain.WrapError(domain.ErrFetch, "fetch blob", errors.New("empty url"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrFetch, "fetch blob", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrFetch, "fetch blob", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.WrapError(domain.ErrFetch, "fetch blob", fmt.Errorf("storage status %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, domain.WrapError(domain.ErrFetch, "read blob body", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, domain.WrapError(domain.ErrFetch, "read blob body", fmt.Errorf("blob exceeds %d bytes", f.maxBytes))
	}

	if expected == domain.KindPDF && !bytes.HasPrefix(data, pdfMagic) {
		return nil, domain.WrapError(domain.ErrInvalidFormat, "validate blob",
			fmt.Errorf("expected pdf signature, got %d bytes of %q", len(data), sniffPrefix(data)))
	}

	return &domain.Blob{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

func sniffPrefix(data []byte) string {
	if len(data) > 12 {
		data = data[:12]
	}
	return string(data)
}
