package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"bims-inspector/inspection"
)

// List loads every dataset record stored under dir. Corrupt files are
// skipped with a warning; a half-broken dataset should not block the rest.
func List(dir string) ([]inspection.Record, error) {
	names, err := doublestar.Glob(os.DirFS(dir), "*_label.json")
	if err != nil {
		return nil, fmt.Errorf("failed to scan dataset directory: %w", err)
	}

	records := make([]inspection.Record, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			logrus.WithError(err).WithField("path", path).Warn("skipping unreadable dataset record")
			continue
		}

		var record inspection.Record
		if err := json.Unmarshal(data, &record); err != nil {
			logrus.WithError(err).WithField("path", path).Warn("skipping corrupt dataset record")
			continue
		}

		records = append(records, record)
	}

	return records, nil
}

// CountPending returns how many records still await human verification.
func CountPending(dir string) (int, error) {
	records, err := List(dir)
	if err != nil {
		return 0, err
	}

	pending := 0
	for _, record := range records {
		if !record.Verified {
			pending++
		}
	}
	return pending, nil
}
