package vector

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder records what it was asked to embed and returns fixed-size
// vectors.
type stubEmbedder struct {
	inputs [][]string
	dim    int
	err    error
}

func (s *stubEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	s.inputs = append(s.inputs, texts)
	if s.err != nil {
		return nil, s.err
	}

	vectors := make([][]float64, len(texts))
	for i := range texts {
		vec := make([]float64, s.dim)
		for j := range vec {
			vec[j] = float64(i + 1)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func writeTestJPEG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)

	path := filepath.Join(t.TempDir(), "ref.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
	return path
}

func TestEmbedInputsImageBecomesDataURI(t *testing.T) {
	stub := &stubEmbedder{dim: 8}
	svc := NewEmbeddingService(stub, 8)

	path := writeTestJPEG(t)
	vectors, err := svc.EmbedInputs(context.Background(), []Input{ImageRef(path)})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	require.Len(t, vectors[0], 8)

	require.Len(t, stub.inputs, 1)
	sent := stub.inputs[0][0]
	assert.True(t, strings.HasPrefix(sent, "data:image/jpeg;base64,"), "got %q", sent[:32])
}

func TestEmbedInputsMissingImageFallsBackToText(t *testing.T) {
	stub := &stubEmbedder{dim: 4}
	svc := NewEmbeddingService(stub, 4)

	missing := filepath.Join(t.TempDir(), "gone.jpg")
	_, err := svc.EmbedInputs(context.Background(), []Input{ImageRef(missing)})
	require.NoError(t, err)

	// The unreadable path is embedded as literal text instead of failing.
	assert.Equal(t, missing, stub.inputs[0][0])
}

func TestEmbedInputsOrderPreserving(t *testing.T) {
	stub := &stubEmbedder{dim: 2}
	svc := NewEmbeddingService(stub, 2)

	vectors, err := svc.EmbedInputs(context.Background(), []Input{
		TextRef("first"),
		TextRef("second"),
		TextRef("third"),
	})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// The stub encodes input position into the vector values.
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
	assert.Equal(t, float32(3), vectors[2][0])

	assert.Equal(t, []string{"first", "second", "third"}, stub.inputs[0])
}

func TestEmbedInputsEmpty(t *testing.T) {
	svc := NewEmbeddingService(&stubEmbedder{dim: 2}, 2)

	_, err := svc.EmbedInputs(context.Background(), nil)
	require.Error(t, err)
}

func TestEmbedInput(t *testing.T) {
	svc := NewEmbeddingService(&stubEmbedder{dim: 3}, 3)

	vec, err := svc.EmbedInput(context.Background(), TextRef("lobby"))
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}
