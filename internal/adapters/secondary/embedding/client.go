package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"carwiseiq/internal/config"
	ports "carwiseiq/internal/core/ports/output"
)

type client struct {
	baseURL string
	client  *http.Client
	enabled bool
}

// NewClient talks to the CNN backbone inference sidecar over HTTP. The
// sidecar holds the backbone weights in memory; this client only ships
// image bytes and receives embeddings.
func NewClient(cfg *config.EmbeddingConfig) ports.EmbeddingClient {
	if !cfg.Enabled {
		return &client{enabled: false}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &client{
		baseURL: cfg.URL,
		enabled: true,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *client) IsAvailable() bool {
	if !c.enabled {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type embedRequest struct {
	Image string `json:"image"` // base64
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (c *client) Embed(ctx context.Context, image []byte) ([]float64, error) {
	if !c.enabled {
		return nil, fmt.Errorf("embedding backbone disabled")
	}

	body, err := json.Marshal(embedRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call embedding backbone: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding backbone returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embedding backbone returned empty embedding")
	}
	return out.Embedding, nil
}
