// Package dataset persists inspection audit records for the offline
// verification and fine-tuning workflow. The writer is the fire-and-forget
// sink of the pipeline: it consumes records from the broker and its
// failures never reach the caller that produced the verdict.
package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"bims-inspector/inspection"
	"bims-inspector/pubsub"
)

// Writer writes one JSON document per inspection into the dataset
// directory, named after the composite image's base identifier.
type Writer struct {
	dir    string
	events pubsub.Subscriber[inspection.Record]
	log    *logrus.Entry
}

// NewWriter creates a writer storing records under dir.
func NewWriter(dir string, events pubsub.Subscriber[inspection.Record]) *Writer {
	return &Writer{
		dir:    dir,
		events: events,
		log:    logrus.WithField("component", "dataset"),
	}
}

// Run consumes record events until ctx is done or the broker shuts down.
// Call it on its own goroutine.
func (w *Writer) Run(ctx context.Context) {
	for event := range w.events.Subscribe(ctx) {
		if event.Type != pubsub.CreatedEvent {
			continue
		}
		w.write(event.Payload)
	}
}

func (w *Writer) write(record inspection.Record) {
	id := strings.TrimSuffix(filepath.Base(record.ImagePath), ".jpg")
	path := filepath.Join(w.dir, id+"_label.json")

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		w.log.WithError(err).Error("failed to marshal dataset record")
		return
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.log.WithError(err).WithField("path", path).Error("failed to write dataset record")
		return
	}

	w.log.WithField("path", path).Debug("dataset record written")
}
