package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nguyentantai21042004/minutes/internal/asr"
	"github.com/nguyentantai21042004/minutes/internal/chunking"
)

// transcription is the stitched output of every backend call of a run.
type transcription struct {
	segments []asr.Segment
	language string
}

// backend returns the cached backend for a model, creating it on first use.
func (p *implProcessor) backend(modelPath string) (asr.Backend, error) {
	if b, ok := p.backends[modelPath]; ok {
		return b, nil
	}
	b, err := p.newBackend(modelPath)
	if err != nil {
		return nil, err
	}
	p.backends[modelPath] = b
	return b, nil
}

// transcribeChunks calls the backend once per chunk, in order, shifting every
// segment by its chunk offset. Without chunks the whole waveform is one call.
// Any failure aborts the run.
func (p *implProcessor) transcribeChunks(ctx context.Context, backend asr.Backend, wavPath, workDir string, chunks []chunking.TimeSpan, language string) (transcription, error) {
	var out transcription

	if len(chunks) == 0 {
		res, err := backend.Transcribe(ctx, wavPath, language)
		if err != nil {
			return transcription{}, err
		}
		out.add(res, 0)
		return out.sorted(), nil
	}

	for i, chunk := range chunks {
		chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%04d.wav", i))
		if err := p.converter.Extract(ctx, wavPath, chunkPath, chunk.Start, chunk.End); err != nil {
			return transcription{}, err
		}

		p.logger.Info(ctx, "[%d/%d] Transcribing chunk %.2fs -> %.2fs", i+1, len(chunks), chunk.Start, chunk.End)
		res, err := backend.Transcribe(ctx, chunkPath, language)
		if err != nil {
			return transcription{}, fmt.Errorf("chunk %d (%.2fs -> %.2fs): %w", i+1, chunk.Start, chunk.End, err)
		}
		out.add(res, chunk.Start)
	}
	return out.sorted(), nil
}

// add appends a call's segments shifted to absolute time and keeps the first
// reported language.
func (t *transcription) add(res asr.Result, offset float64) {
	t.segments = append(t.segments, stitch(res.Segments, offset)...)
	if t.language == "" && res.Language != "" {
		t.language = res.Language
	}
}

func (t transcription) sorted() transcription {
	sort.SliceStable(t.segments, func(i, j int) bool {
		return t.segments[i].Start < t.segments[j].Start
	})
	return t
}

// stitch translates chunk-local segments to the absolute timeline.
func stitch(segments []asr.Segment, offset float64) []asr.Segment {
	out := make([]asr.Segment, len(segments))
	for i, s := range segments {
		out[i] = asr.Segment{Start: s.Start + offset, End: s.End + offset, Text: s.Text}
	}
	return out
}

// duration is the largest segment end, or 0.
func duration(segments []asr.Segment) float64 {
	var longest float64
	for _, s := range segments {
		if s.End > longest {
			longest = s.End
		}
	}
	return longest
}
