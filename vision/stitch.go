package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registered decoders for the upload formats we accept.
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// maxGridImages is the number of slots in the 2x2 composite grid. Inputs
// beyond this are silently dropped.
const maxGridImages = 4

// ErrNoImages is returned when a request carries no decodable images.
var ErrNoImages = errors.New("no images provided")

// Decode decodes raw uploaded payloads into in-memory images. Any payload
// that fails to decode fails the whole batch; a bad upload is a client
// fault, not something to paper over.
func Decode(payloads [][]byte) ([]image.Image, error) {
	if len(payloads) == 0 {
		return nil, ErrNoImages
	}

	images := make([]image.Image, 0, len(payloads))
	for i, payload := range payloads {
		img, _, err := image.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %d: %w", i+1, err)
		}
		images = append(images, img)
	}

	return images, nil
}

// Stitch merges up to four images into a single 2x2 grid composite.
//
// A single image is returned untouched so the common one-photo case keeps
// its full resolution. With more than one image, every input is resized to
// the first image's dimensions and pasted into the grid in submission
// order: top-left, top-right, bottom-left, bottom-right. Slots without an
// image stay background-filled. The transform is pure and deterministic;
// identical inputs always produce an identical composite.
func Stitch(images []image.Image) (image.Image, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if len(images) == 1 {
		return images[0], nil
	}
	if len(images) > maxGridImages {
		images = images[:maxGridImages]
	}

	w := images[0].Bounds().Dx()
	h := images[0].Bounds().Dy()

	grid := image.NewRGBA(image.Rect(0, 0, 2*w, 2*h))
	slots := [maxGridImages]image.Point{{0, 0}, {w, 0}, {0, h}, {w, h}}

	for i, img := range images {
		dst := image.Rect(slots[i].X, slots[i].Y, slots[i].X+w, slots[i].Y+h)
		xdraw.ApproxBiLinear.Scale(grid, dst, img, img.Bounds(), xdraw.Src, nil)
	}

	return grid, nil
}
