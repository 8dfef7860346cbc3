package export

import (
	"bytes"
	"encoding/json"
	"strings"
)

type jsonMeeting struct {
	ID              int64   `json:"id"`
	CreatedAt       string  `json:"created_at"`
	SourcePath      string  `json:"source_path"`
	Language        string  `json:"language"`
	ModelName       string  `json:"model_name"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type jsonSegment struct {
	ID    int64   `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type jsonSummary struct {
	ID           int64   `json:"id"`
	TemplateName string  `json:"template_name"`
	Method       string  `json:"method"`
	LLMModel     *string `json:"llm_model"`
	Text         string  `json:"text"`
}

type jsonPayload struct {
	Meeting  jsonMeeting   `json:"meeting"`
	Segments []jsonSegment `json:"segments"`
	Summary  *jsonSummary  `json:"summary"`
}

// JSON renders the meeting, its segments and the latest summary (null when
// absent) as indented JSON.
func JSON(doc Document) (string, error) {
	m := doc.Meeting
	payload := jsonPayload{
		Meeting: jsonMeeting{
			ID:              m.ID,
			CreatedAt:       m.CreatedAt,
			SourcePath:      m.SourcePath,
			Language:        m.Language,
			ModelName:       m.ModelName,
			DurationSeconds: m.DurationSeconds,
		},
		Segments: make([]jsonSegment, 0, len(doc.Segments)),
	}
	for _, seg := range doc.Segments {
		payload.Segments = append(payload.Segments, jsonSegment{ID: seg.ID, Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	if s := doc.Summary; s != nil {
		sum := &jsonSummary{ID: s.ID, TemplateName: s.TemplateName, Method: s.Method, Text: s.Text}
		if s.LLMModel != "" {
			model := s.LLMModel
			sum.LLMModel = &model
		}
		payload.Summary = sum
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
