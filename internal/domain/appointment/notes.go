package appointment

import (
	"strings"
	"time"
)

const noteTimeLayout = "2006-01-02 15:04"

// AppendNote adds a timestamped entry after the existing notes, separated by a
// blank line. Existing entries are kept verbatim.
func AppendNote(existing, text string, at time.Time) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return existing, ErrInvalidNote
	}

	entry := "[" + at.Format(noteTimeLayout) + "] " + text
	if existing == "" {
		return entry, nil
	}
	return existing + "\n\n" + entry, nil
}
