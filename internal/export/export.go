// Package export renders a meeting into the supported document formats.
// The text renderers are pure; WriteDocx is the only one touching disk.
package export

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/store"
)

// Supported export formats, in the order ExportAll produces them.
const (
	FormatMarkdown = "md"
	FormatSRT      = "srt"
	FormatJSON     = "json"
	FormatDocx     = "docx"
)

// Formats lists every supported format.
func Formats() []string {
	return []string{FormatMarkdown, FormatSRT, FormatJSON, FormatDocx}
}

// IsSupported reports whether format is one of Formats.
func IsSupported(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// Document is everything a renderer needs. Summary is the latest one, if any.
type Document struct {
	Meeting  store.Meeting
	Segments []store.Segment
	Summary  *store.Summary
}

// Markdown renders the meeting header, latest summary and transcript.
func Markdown(doc Document) string {
	m := doc.Meeting
	var b strings.Builder
	fmt.Fprintf(&b, "# Minutes transcript export: meeting %d\n\n", m.ID)
	fmt.Fprintf(&b, "- Created at: %s\n", m.CreatedAt)
	fmt.Fprintf(&b, "- Source file: `%s`\n", m.SourcePath)
	fmt.Fprintf(&b, "- Language: `%s`\n", m.Language)
	fmt.Fprintf(&b, "- ASR model: `%s`\n", m.ModelName)
	fmt.Fprintf(&b, "- Duration: `%.2fs`\n\n", m.DurationSeconds)

	if doc.Summary != nil {
		b.WriteString("## Summary\n\n")
		b.WriteString(strings.TrimSpace(doc.Summary.Text))
		b.WriteString("\n\n")
	}

	b.WriteString("## Transcript\n\n")
	for _, seg := range doc.Segments {
		fmt.Fprintf(&b, "- [%.2fs -> %.2fs] %s\n", seg.Start, seg.End, seg.Text)
	}
	return b.String()
}
