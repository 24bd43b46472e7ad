// Package viml renders the identity graph for one video as a WebVTT caption
// track carrying VIML identity tags, suitable for embedding as a subtitle
// stream alongside the original footage.
package viml

import (
	"fmt"
	"strings"
)

// Entry is one linked occurrence in timestamp order.
type Entry struct {
	Timestamp  float64
	Method     string
	Confidence float64
	PersonID   int64
	Name       string
}

// GenerateVTT renders entries as WebVTT. Each cue runs until the next entry
// starts, or two seconds for the last one. Entries must be sorted by
// timestamp.
func GenerateVTT(entries []Entry) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")

	for i, entry := range entries {
		end := entry.Timestamp + 2.0
		if i+1 < len(entries) {
			end = entries[i+1].Timestamp
		}

		tag := fmt.Sprintf(`<id person_id="%d" name="%s" conf="%.0f" method="%s">`,
			entry.PersonID, entry.Name, entry.Confidence, entry.Method)

		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatVTTTime(entry.Timestamp), formatVTTTime(end))
		fmt.Fprintf(&b, "[%s] %s detected. %s\n\n", strings.ToUpper(entry.Method), entry.Name, tag)
	}

	return b.String()
}

// formatVTTTime converts seconds to the WebVTT timestamp format HH:MM:SS.sss.
func formatVTTTime(seconds float64) string {
	millis := int((seconds - float64(int(seconds))) * 1000)
	total := int(seconds)
	mins, secs := total/60, total%60
	hours, mins := mins/60, mins%60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, mins, secs, millis)
}
