package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/export"
)

// Export renders one format into <exports_dir>/meeting_<id>/meeting_<id>.<ext>
// and records it in the export log.
func (p *implProcessor) Export(ctx context.Context, meetingID int64, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if !export.IsSupported(format) {
		return "", apperr.Validation("export format", format, export.Formats())
	}

	doc, err := p.document(ctx, meetingID)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(p.cfg.Paths.ExportsDir, fmt.Sprintf("meeting_%d", meetingID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	outputPath := filepath.Join(dir, fmt.Sprintf("meeting_%d.%s", meetingID, format))

	switch format {
	case export.FormatMarkdown:
		err = writeFile(outputPath, export.Markdown(doc))
	case export.FormatSRT:
		err = writeFile(outputPath, export.SRT(doc))
	case export.FormatJSON:
		var content string
		if content, err = export.JSON(doc); err == nil {
			err = writeFile(outputPath, content)
		}
	case export.FormatDocx:
		err = export.WriteDocx(doc, outputPath)
	}
	if err != nil {
		return "", fmt.Errorf("write %s export: %w", format, err)
	}

	if _, err := p.store.AddExport(ctx, meetingID, format, outputPath); err != nil {
		return "", err
	}
	p.logger.Info(ctx, "Exported %s: %s", format, outputPath)
	return outputPath, nil
}

// ExportAll produces every supported format.
func (p *implProcessor) ExportAll(ctx context.Context, meetingID int64) (map[string]string, error) {
	paths := make(map[string]string, len(export.Formats()))
	for _, format := range export.Formats() {
		path, err := p.Export(ctx, meetingID, format)
		if err != nil {
			return nil, err
		}
		paths[format] = path
	}
	return paths, nil
}

func (p *implProcessor) document(ctx context.Context, meetingID int64) (export.Document, error) {
	meeting, err := p.store.Meeting(ctx, meetingID)
	if err != nil {
		return export.Document{}, err
	}
	if meeting == nil {
		return export.Document{}, apperr.Precondition("meeting not found: %d", meetingID)
	}
	segments, err := p.store.Segments(ctx, meetingID)
	if err != nil {
		return export.Document{}, err
	}
	summary, err := p.store.LatestSummary(ctx, meetingID)
	if err != nil {
		return export.Document{}, err
	}
	return export.Document{Meeting: *meeting, Segments: segments, Summary: summary}, nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
