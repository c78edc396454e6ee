package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"
)

// ErrUnavailable indicates the embedding server could not produce a vector.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder generates vector embeddings for text.
type Embedder interface {
	// EmbedDocument embeds a strategy text for storage.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	// EmbedQuery embeds a retrieval query.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

const (
	defaultEndpoint     = "http://localhost:11434"
	defaultModel        = "nomic-embed-text"
	defaultMaxRetries   = 3
	defaultInitialDelay = 500 * time.Millisecond
)

// OllamaClient embeds text through an Ollama /api/embed endpoint.
// nomic-embed-text expects asymmetric task prefixes, which are added here.
type OllamaClient struct {
	endpoint     string
	model        string
	maxRetries   int
	initialDelay time.Duration
	http         *http.Client
}

type Option func(*OllamaClient)

func WithEndpoint(url string) Option {
	return func(c *OllamaClient) { c.endpoint = url }
}

func WithModel(model string) Option {
	return func(c *OllamaClient) { c.model = model }
}

// WithRetries sets the attempt budget and the first backoff delay.
func WithRetries(maxRetries int, initialDelay time.Duration) Option {
	return func(c *OllamaClient) {
		c.maxRetries = maxRetries
		c.initialDelay = initialDelay
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *OllamaClient) { c.http.Timeout = d }
}

// NewOllamaClient creates an embedding client with defaults for a local Ollama.
func NewOllamaClient(opts ...Option) *OllamaClient {
	c := &OllamaClient{
		endpoint:     defaultEndpoint,
		model:        defaultModel,
		maxRetries:   defaultMaxRetries,
		initialDelay: defaultInitialDelay,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (c *OllamaClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, "search_document: "+text)
}

func (c *OllamaClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return c.embed(ctx, "search_query: "+query)
}

func (c *OllamaClient) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}

		vec, retry, err := c.do(ctx, body)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// do performs one request and reports whether a failure is worth retrying.
func (c *OllamaClient) do(ctx context.Context, body []byte) ([]float32, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("creating embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr *net.OpError
		return nil, errors.As(err, &netErr) && ctx.Err() == nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("embed server returned %d: %s", resp.StatusCode, string(data))
	}

	var out embedResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(out.Embeddings) == 0 || len(out.Embeddings[0]) == 0 {
		return nil, false, fmt.Errorf("no embeddings returned")
	}
	return out.Embeddings[0], false, nil
}
