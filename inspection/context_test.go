package inspection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bims-inspector/vector"
)

func TestFormatContext(t *testing.T) {
	matches := []vector.Match{
		{Status: "Clean", Description: "empty lobby", Score: 0.91},
		{Status: "Dirty", Description: "coffee spill", Score: 0.75},
	}

	text := FormatContext(matches)
	assert.Contains(t, text, "Reference Examples found in database:")
	assert.Contains(t, text, "- Example 1: Status=Clean, Note=empty lobby")
	assert.Contains(t, text, "- Example 2: Status=Dirty, Note=coffee spill")
}

func TestFormatContextEmpty(t *testing.T) {
	text := FormatContext(nil)
	assert.Contains(t, text, "No reference images found.")
}
