package detect

import (
	"regexp"
	"strconv"
	"strings"
)

// ocrLinePattern matches the ffmpeg ocr filter's stderr report lines, e.g.
// [Parsed_ocr_1 @ ...] t: 15.250 s -> text: 'JANE DOE' conf: 95.87
var ocrLinePattern = regexp.MustCompile(`t:\s*([\d.]+)\s*s\s*->\s*text:\s*'(.*?)'`)

// ParseOCROutput extracts the timestamped text hits from ffmpeg ocr filter
// output. Hits whose text is empty after trimming are dropped; the original
// (untrimmed) text is preserved on the event.
func ParseOCROutput(output string) []OCREvent {
	matches := ocrLinePattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return nil
	}

	events := make([]OCREvent, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m[2]) == "" {
			continue
		}
		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		events = append(events, OCREvent{Timestamp: ts, Text: m[2]})
	}
	return events
}
