package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Calibri"
	fontSize  = 11
	textColor = "000000"
	metaColor = "555555"
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// WriteDocx writes the meeting as a Word document: header, the latest summary
// (markdown rendered to styled runs) and the timestamped transcript.
func WriteDocx(doc Document, outputPath string) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	m := doc.Meeting
	addStyledRun(d.AddParagraph(""), fmt.Sprintf("Meeting %d", m.ID), true, 16, textColor)
	for _, line := range []string{
		"Created at: " + m.CreatedAt,
		"Source file: " + m.SourcePath,
		"Language: " + m.Language,
		"ASR model: " + m.ModelName,
		fmt.Sprintf("Duration: %.2fs", m.DurationSeconds),
	} {
		addStyledRun(d.AddParagraph(""), line, false, fontSize, metaColor)
	}

	if doc.Summary != nil {
		addStyledRun(d.AddParagraph(""), "Summary", true, 14, textColor)
		writeMarkdown(d, doc.Summary.Text)
	}

	addStyledRun(d.AddParagraph(""), "Transcript", true, 14, textColor)
	for _, seg := range doc.Segments {
		p := d.AddParagraph("")
		p.AddText(fmt.Sprintf("[%s] ", FormatTimestamp(seg.Start))).Font(fontName).Size(fontSize).Color(metaColor).Bold(true)
		p.AddText(seg.Text).Font(fontName).Size(fontSize).Color(textColor)
	}

	if err := d.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// writeMarkdown appends headings, bullets and paragraphs with **bold** runs.
func writeMarkdown(d *docx.RootDoc, markdown string) {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(d.AddParagraph(""), m[2], true, headingSize(len(m[1])), textColor)
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(d.AddParagraph(""), "• "+m[1])
			continue
		}
		if reNumbered.MatchString(trimmed) {
			addRichText(d.AddParagraph(""), trimmed)
			continue
		}
		addRichText(d.AddParagraph(""), trimmed)
	}
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	case 3:
		return 12
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64, color string) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color(color)
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color(textColor)
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color(textColor).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
