package inspection

import (
	"context"
	"errors"
	"image"

	"github.com/sirupsen/logrus"

	"bims-inspector/pubsub"
	"bims-inspector/vector"
	"bims-inspector/vision"
)

// ImageStore persists images into the durable image store.
type ImageStore interface {
	Save(img image.Image, prefix string) (string, error)
}

// Analyzer produces a verdict for a persisted composite image.
type Analyzer interface {
	Analyze(ctx context.Context, imagePath, contextText string) (*Result, error)
}

// Service runs the inspection pipeline: stitch, persist, retrieve
// reference context, analyze, and hand the audit record off. One Service
// is shared by all requests; each call is independent and strictly
// sequential internally.
type Service struct {
	store    ImageStore
	index    vector.ReferenceStore
	analyzer Analyzer
	records  pubsub.Publisher[Record]
	log      *logrus.Entry
}

// NewService wires the pipeline components together.
func NewService(store ImageStore, index vector.ReferenceStore, analyzer Analyzer, records pubsub.Publisher[Record]) *Service {
	return &Service{
		store:    store,
		index:    index,
		analyzer: analyzer,
		records:  records,
		log:      logrus.WithField("component", "inspection"),
	}
}

// Evaluate judges the cleanliness of a facility from 1-4 raw image
// payloads. On success the audit record has already been handed to the
// persistence sink; a sink failure never affects the returned verdict.
func (s *Service) Evaluate(ctx context.Context, payloads [][]byte) (*Result, error) {
	images, err := vision.Decode(payloads)
	if err != nil {
		return nil, badInput(err)
	}

	composite, err := vision.Stitch(images)
	if err != nil {
		return nil, badInput(err)
	}

	path, err := s.store.Save(composite, "eval")
	if err != nil {
		return nil, err
	}

	// Reference context is an enrichment, not a correctness requirement:
	// a failed lookup degrades to an empty context instead of aborting
	// the request.
	matches, err := s.index.Query(ctx, path)
	if err != nil {
		s.log.WithError(err).Warn("reference lookup failed, continuing without context")
		matches = nil
	}

	result, err := s.analyzer.Analyze(ctx, path, FormatContext(matches))
	if err != nil {
		return nil, err
	}

	s.records.Publish(pubsub.CreatedEvent, NewRecord(path, *result))

	return result, nil
}

// IndexReference persists a labeled example image and adds it to the
// reference index. The returned identifier is the stored image's path.
func (s *Service) IndexReference(ctx context.Context, payload []byte, status Status, description string) (string, error) {
	if !status.Valid() {
		return "", badInput(errors.New("status must be Clean or Dirty"))
	}

	images, err := vision.Decode([][]byte{payload})
	if err != nil {
		return "", badInput(err)
	}

	path, err := s.store.Save(images[0], "ref_"+string(status))
	if err != nil {
		return "", err
	}

	if _, err := s.index.Add(ctx, path, string(status), description); err != nil {
		return "", err
	}

	s.log.WithField("path", path).Info("reference image indexed")
	return path, nil
}
