package export

import (
	"fmt"
	"math"
	"strings"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Negative input clamps to zero.
func FormatTimestamp(seconds float64) string {
	totalMs := int64(math.Round(math.Max(seconds, 0) * 1000))
	hours := totalMs / 3_600_000
	totalMs %= 3_600_000
	minutes := totalMs / 60_000
	totalMs %= 60_000
	secs := totalMs / 1000
	millis := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// SRT renders the transcript as numbered subtitle cues.
func SRT(doc Document) string {
	var b strings.Builder
	for i, seg := range doc.Segments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, FormatTimestamp(seg.Start), FormatTimestamp(seg.End), strings.TrimSpace(seg.Text))
	}
	if b.Len() == 0 {
		return "\n"
	}
	return b.String()
}
