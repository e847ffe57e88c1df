package vector

import "context"

// Match is one retrieved reference example, ranked by similarity to the
// query image.
type Match struct {
	Status      string
	Description string
	Score       float32
}

// ReferenceStore is the persistent, similarity-searchable index of labeled
// reference images.
type ReferenceStore interface {
	// Add embeds the image at imagePath and stores it with its label and
	// description under a generated unique id. Duplicates are permitted.
	Add(ctx context.Context, imagePath, status, description string) (string, error)

	// Query embeds the image at imagePath and returns the top matches in
	// ranked order. An empty index yields an empty slice, not an error.
	Query(ctx context.Context, imagePath string) ([]Match, error)

	// Count returns the number of stored reference records.
	Count(ctx context.Context) (int64, error)

	// Close releases the underlying connection.
	Close() error
}

// StoreConfig holds configuration shared by store implementations.
type StoreConfig struct {
	// Embedding dimension (must match the embedding model).
	EmbeddingDim int

	// Name of the vector index.
	IndexName string

	// Key prefix for stored records.
	KeyPrefix string
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		EmbeddingDim: 512,
		IndexName:    "bims-examples",
		KeyPrefix:    "ref:",
	}
}
