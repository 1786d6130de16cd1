package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillsenselab/menustream/errors"
)

// httpProcessor calls a stage collaborator over HTTP. The collaborator
// receives the item as JSON and answers with a Result body; semantic
// failures come back in-band, transport failures as errors.
type httpProcessor struct {
	name     string
	endpoint string
	client   *http.Client
}

// NewHTTP creates a processor that POSTs items to the given endpoint.
func NewHTTP(name, endpoint string, timeout time.Duration) Processor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpProcessor{
		name:     name,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Processor.
func (p *httpProcessor) Name() string { return p.name }

// IsAvailable implements Processor.
func (p *httpProcessor) IsAvailable(_ context.Context) bool {
	return p.endpoint != ""
}

// Process implements Processor.
func (p *httpProcessor) Process(ctx context.Context, item Item) (Result, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return Result{}, errors.Serialization(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request for %s: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, errors.ExternalServiceError(p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, errors.ExternalServiceError(p.name,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, errors.ExternalServiceError(p.name, fmt.Errorf("decode response: %w", err))
	}
	return res, nil
}

// httpExtractor calls the whole-menu OCR collaborator over HTTP. The
// image travels base64-encoded; the collaborator answers with the
// recognized item list.
type httpExtractor struct {
	name     string
	endpoint string
	client   *http.Client
}

// NewHTTPExtractor creates an extractor that POSTs menu images to the
// given endpoint.
func NewHTTPExtractor(name, endpoint string, timeout time.Duration) Extractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpExtractor{
		name:     name,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Extractor.
func (e *httpExtractor) Name() string { return e.name }

// IsAvailable implements Extractor.
func (e *httpExtractor) IsAvailable(_ context.Context) bool {
	return e.endpoint != ""
}

// Extract implements Extractor.
func (e *httpExtractor) Extract(ctx context.Context, image []byte) ([]Item, error) {
	body, err := json.Marshal(map[string]string{
		"image_data": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, errors.Serialization(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", e.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError(e.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.ExternalServiceError(e.name,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var out struct {
		Items []Item `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.ExternalServiceError(e.name, fmt.Errorf("decode response: %w", err))
	}
	return out.Items, nil
}
