package embedding

import "context"

// Provider defines the interface for generating text embeddings
type Provider interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the width of the vectors this provider produces.
	Dimension() int
}
