package summarizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/store"
)

// LoadTranscript reads a transcript file. For .json files holding a
// "segments" array the segment texts are joined by newlines; anything else is
// returned verbatim.
func LoadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	raw := string(data)
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return raw, nil
	}

	var payload struct {
		Segments []struct {
			Text string `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Segments == nil {
		return raw, nil
	}

	texts := make([]string, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// SegmentsText renders stored segments one per line with their time range.
func SegmentsText(segments []store.Segment) string {
	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = fmt.Sprintf("[%.2f-%.2f] %s", seg.Start, seg.End, seg.Text)
	}
	return strings.Join(lines, "\n")
}
