package ports

import "context"

// EmbeddingClient runs the shared CNN backbone over a single image and
// returns its raw embedding. The backbone is loaded once by the serving
// sidecar and shared read-only across concurrent requests.
type EmbeddingClient interface {
	Embed(ctx context.Context, image []byte) ([]float64, error)
	IsAvailable() bool
}
