package inspection

import (
	"fmt"
	"strings"

	"bims-inspector/vector"
)

const (
	contextHeader = "Reference Examples found in database:\n"
	noReferences  = "No reference images found."
)

// FormatContext renders retrieved reference matches into the text block
// handed to the model. An empty result set renders as an explicit "no
// reference found" message rather than an empty string, so the model knows
// the lookup happened.
func FormatContext(matches []vector.Match) string {
	if len(matches) == 0 {
		return contextHeader + noReferences
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	for i, m := range matches {
		fmt.Fprintf(&sb, "- Example %d: Status=%s, Note=%s\n", i+1, m.Status, m.Description)
	}
	return sb.String()
}
