// Package asr defines the transcription backend capability and its local
// engine variants. A backend initializes its engine lazily on first use by
// trying an ordered list of (target, precision) candidates.
package asr

import (
	"context"
	"sort"
	"strings"
)

// Segment is one timestamped line of recognized text, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is a backend's full output for one call. An empty Language means
// the engine reported none and the caller asked for auto-detection.
type Result struct {
	Segments []Segment
	Language string
	Backend  string
}

// Backend transcribes one audio file per call.
//
// Implementations cache their engine handle after the first call and are not
// safe for concurrent use.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, audioPath, language string) (Result, error)
	// Active returns the candidate that initialized the engine, if any.
	Active() (Candidate, bool)
}

// Factory builds a backend for a resolved local model path.
type Factory func(modelPath string) (Backend, error)

// NormalizeLanguage maps "" and "auto" to "" (auto-detect) and lower-cases
// everything else.
func NormalizeLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "auto" {
		return ""
	}
	return lang
}

// sanitizeSegments trims text, drops empty lines, clamps End up to Start and
// orders by Start.
func sanitizeSegments(raw []Segment) []Segment {
	out := make([]Segment, 0, len(raw))
	for _, s := range raw {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if s.End < s.Start {
			s.End = s.Start
		}
		out = append(out, Segment{Start: s.Start, End: s.End, Text: text})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}
