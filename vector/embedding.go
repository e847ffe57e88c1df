package vector

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/sirupsen/logrus"
)

// InputKind distinguishes the two things the encoder accepts.
type InputKind int

const (
	// KindText embeds the literal text of the value.
	KindText InputKind = iota
	// KindImage embeds the visual content of the image file the value
	// points at.
	KindImage
)

// Input is a tagged embedding input: either a reference to an image file
// or a plain text string.
type Input struct {
	Kind  InputKind
	Value string
}

// ImageRef builds an input referencing an image file on disk.
func ImageRef(path string) Input {
	return Input{Kind: KindImage, Value: path}
}

// TextRef builds a plain text input.
func TextRef(text string) Input {
	return Input{Kind: KindText, Value: text}
}

// EmbeddingService converts images and text into fixed-length vectors via
// an OpenAI-compatible embedding server running a CLIP-family model. Image
// inputs travel as base64 data URIs; the server embeds them in the same
// vector space as text.
//
// Construct one per process and share it: the remote model is loaded once
// on the server side and the client here is stateless and safe for
// concurrent use.
type EmbeddingService struct {
	embedder embedding.Embedder
	dim      int
}

// NewEmbeddingService wraps an embedder. dim must match the model's output
// dimension.
func NewEmbeddingService(embedder embedding.Embedder, dim int) *EmbeddingService {
	return &EmbeddingService{
		embedder: embedder,
		dim:      dim,
	}
}

// EmbedInputs generates one vector per input, order-preserving.
//
// An image input whose file cannot be read falls back to embedding its
// path as literal text. The index stores image paths as documents, and a
// query must not hard-fail just because a referenced file has since been
// deleted.
func (s *EmbeddingService) EmbedInputs(ctx context.Context, inputs []Input) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("inputs cannot be empty")
	}

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = s.resolve(in)
	}

	vectors, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(vectors))
	}

	result := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("empty embedding returned for input %d", i)
		}
		result[i] = make([]float32, len(vec))
		for j, v := range vec {
			result[i][j] = float32(v)
		}
	}

	return result, nil
}

// EmbedInput generates the vector for a single input.
func (s *EmbeddingService) EmbedInput(ctx context.Context, in Input) ([]float32, error) {
	vectors, err := s.EmbedInputs(ctx, []Input{in})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimension returns the embedding dimension.
func (s *EmbeddingService) Dimension() int {
	return s.dim
}

// resolve turns a tagged input into the wire string the embedding server
// expects.
func (s *EmbeddingService) resolve(in Input) string {
	if in.Kind != KindImage {
		return in.Value
	}

	data, err := os.ReadFile(in.Value)
	if err != nil {
		logrus.WithError(err).WithField("path", in.Value).
			Warn("image not readable, embedding path as text")
		return in.Value
	}

	mime := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
