package processor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nguyentantai21042004/minutes/internal/chunking"
)

// normalizeAudio converts the input into a mono 16 kHz waveform inside the workspace.
func (p *implProcessor) normalizeAudio(ctx context.Context, inputPath, workDir string) (string, error) {
	wavPath := filepath.Join(workDir, "input_16k.wav")

	p.logger.Info(ctx, "Converting audio: %s", inputPath)
	if err := p.converter.Convert(ctx, inputPath, wavPath); err != nil {
		return "", err
	}

	p.logger.Debug(ctx, "Normalized waveform: %s", wavPath)
	return wavPath, nil
}

// planChunks runs VAD over the waveform and returns the bounded chunks to
// transcribe. No chunks means the whole file is transcribed in one call.
func (p *implProcessor) planChunks(ctx context.Context, wavPath string) ([]chunking.TimeSpan, error) {
	spans, err := p.vad.Detect(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("voice activity detection: %w", err)
	}

	chunks := chunking.BuildChunksFromVAD(spans, chunking.Options{
		MaxGap:      *p.cfg.VAD.MaxGap,
		MinDuration: *p.cfg.VAD.MinDuration,
		MaxDuration: p.cfg.VAD.MaxDuration,
	})
	p.logger.Info(ctx, "VAD found %d speech spans, %d chunks", len(spans), len(chunks))
	return chunks, nil
}
