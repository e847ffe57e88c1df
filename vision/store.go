package vision

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// jpegQuality matches the encoding quality used for every persisted image.
const jpegQuality = 85

// Store writes images into a flat directory of JPEG files. Filenames embed
// a random UUID, so concurrent saves never collide and existing files are
// never overwritten.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory must already exist;
// config.Load creates it at boot.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save encodes img as JPEG under a generated "{prefix}_{token}.jpg" name
// and returns the path it was written to.
func (s *Store) Save(img image.Image, prefix string) (string, error) {
	id := uuid.New()
	name := fmt.Sprintf("%s_%s.jpg", prefix, hex.EncodeToString(id[:]))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	return path, nil
}
