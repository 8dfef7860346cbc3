// Package audio wraps the external conversion tool and the voice-activity detectors.
package audio

import (
	"context"

	"github.com/nguyentantai21042004/minutes/internal/chunking"
)

// Converter produces normalized mono 16 kHz waveforms.
type Converter interface {
	// Convert normalizes the whole input file into outputPath.
	Convert(ctx context.Context, inputPath, outputPath string) error
	// Extract writes the [start, end) second range of inputPath to outputPath.
	Extract(ctx context.Context, inputPath, outputPath string, start, end float64) error
	// Version reports the tool version line, or an error when it cannot run.
	Version(ctx context.Context) (string, error)
	// Command is the resolved executable.
	Command() string
}

// VAD reports the time ranges of a waveform that likely contain speech.
// Results are not required to be sorted.
type VAD interface {
	Detect(ctx context.Context, wavPath string) ([]chunking.TimeSpan, error)
}

// SampleRange is a raw detector result in samples at a fixed sampling rate.
type SampleRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// SamplesToSpans converts sample ranges into second-based spans.
func SamplesToSpans(ranges []SampleRange, samplingRate int) []chunking.TimeSpan {
	spans := make([]chunking.TimeSpan, 0, len(ranges))
	rate := float64(samplingRate)
	for _, r := range ranges {
		start := float64(r.Start) / rate
		end := float64(r.End) / rate
		if end < start {
			end = start
		}
		spans = append(spans, chunking.TimeSpan{Start: start, End: end})
	}
	return spans
}
