package inspection

import "time"

// Record is the persistable audit trail of one inspection, written aside
// for later verification and fine-tuning. It is created once after a
// successful verdict; only the out-of-scope verification workflow flips
// Verified later.
type Record struct {
	ImagePath string `json:"image_path"`
	Timestamp string `json:"timestamp"`
	AIOutput  Result `json:"ai_output"`
	Verified  bool   `json:"verified"`
}

// NewRecord assembles a record for the given composite image and verdict,
// stamped with the current UTC time.
func NewRecord(imagePath string, result Result) Record {
	return Record{
		ImagePath: imagePath,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		AIOutput:  result,
		Verified:  false,
	}
}
