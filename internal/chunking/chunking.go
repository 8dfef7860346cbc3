// Package chunking turns raw speech intervals into transcription-sized windows.
package chunking

import "sort"

// TimeSpan is a range of audio in seconds. End is never before Start.
type TimeSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the span length in seconds.
func (s TimeSpan) Duration() float64 {
	return s.End - s.Start
}

// Options controls how speech spans are merged and split.
type Options struct {
	MaxGap      float64
	MinDuration float64
	MaxDuration float64
}

// DefaultOptions returns the chunking parameters used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxGap:      0.75,
		MinDuration: 0.4,
		MaxDuration: 30.0,
	}
}

// MergeSpeechSpans joins spans separated by at most maxGap seconds and drops
// merged spans shorter than minDuration. The gap is measured from the running
// merged end, not from the last raw span.
func MergeSpeechSpans(spans []TimeSpan, maxGap, minDuration float64) []TimeSpan {
	if len(spans) == 0 {
		return nil
	}

	ordered := append([]TimeSpan(nil), spans...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var merged []TimeSpan
	current := ordered[0]
	for _, next := range ordered[1:] {
		if next.Start <= current.End+maxGap {
			if next.End > current.End {
				current.End = next.End
			}
			continue
		}
		if current.Duration() >= minDuration {
			merged = append(merged, current)
		}
		current = next
	}

	if current.Duration() >= minDuration {
		merged = append(merged, current)
	}
	return merged
}

// SplitLongSpans tiles every span into consecutive windows of maxDuration,
// the last window taking the remainder. A non-positive maxDuration leaves
// the spans untouched.
func SplitLongSpans(spans []TimeSpan, maxDuration float64) []TimeSpan {
	if maxDuration <= 0 {
		return append([]TimeSpan(nil), spans...)
	}

	var out []TimeSpan
	for _, span := range spans {
		start := span.Start
		for start < span.End {
			end := start + maxDuration
			if end > span.End {
				end = span.End
			}
			out = append(out, TimeSpan{Start: start, End: end})
			start = end
		}
	}
	return out
}

// BuildChunksFromVAD merges raw VAD spans and splits the result into bounded chunks.
func BuildChunksFromVAD(spans []TimeSpan, opts Options) []TimeSpan {
	merged := MergeSpeechSpans(spans, opts.MaxGap, opts.MinDuration)
	return SplitLongSpans(merged, opts.MaxDuration)
}
