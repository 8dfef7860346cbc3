package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/chunking"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/internal/store"
)

const unknownLanguage = "unknown"

// Transcribe orchestrates the entire transcription pipeline. Nothing is
// persisted unless every backend call succeeds.
func (p *implProcessor) Transcribe(ctx context.Context, inputPath string, opts TranscribeOptions) (Outcome, error) {
	if !p.guard.tryAcquire() {
		return Outcome{}, apperr.Busy()
	}
	defer p.guard.release()

	startTime := time.Now()
	runID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	ctx = logger.WithRunID(ctx, runID)

	if info, err := os.Stat(inputPath); err != nil || info.IsDir() {
		return Outcome{}, apperr.Precondition("input file not found: %s", inputPath)
	}

	model := strings.ToLower(strings.TrimSpace(opts.Model))
	if model == "" {
		model = p.cfg.ASR.Model
	}
	language := opts.Language
	if language == "" {
		language = p.cfg.ASR.Language
	}

	modelPath, err := p.cfg.ResolveModelPath(model)
	if err != nil {
		return Outcome{}, err
	}
	backend, err := p.backend(modelPath)
	if err != nil {
		return Outcome{}, err
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting transcription: %s (model %s, language %s, vad %t)", inputPath, model, language, opts.UseVAD)
	p.logger.Info(ctx, "========================================")

	var result transcription
	err = p.withWorkspace(ctx, runID, func(workDir string) error {
		wavPath, err := p.normalizeAudio(ctx, inputPath, workDir)
		if err != nil {
			return err
		}

		var chunks []chunking.TimeSpan
		if opts.UseVAD {
			if chunks, err = p.planChunks(ctx, wavPath); err != nil {
				return err
			}
			if len(chunks) == 0 {
				p.logger.Warn(ctx, "VAD produced no chunks, transcribing the whole file")
			}
		}

		result, err = p.transcribeChunks(ctx, backend, wavPath, workDir, chunks, language)
		return err
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("transcribe %s: %w", inputPath, err)
	}

	detected := result.language
	if detected == "" {
		detected = unknownLanguage
	}

	newSegments := make([]store.NewSegment, len(result.segments))
	for i, s := range result.segments {
		newSegments[i] = store.NewSegment{Start: s.Start, End: s.End, Text: s.Text}
	}
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		absInput = inputPath
	}

	meeting, err := p.store.CreateMeeting(ctx, store.NewMeeting{
		SourcePath:      absInput,
		Language:        detected,
		ModelName:       fmt.Sprintf("%s:%s", backend.Name(), model),
		DurationSeconds: duration(result.segments),
	}, newSegments)
	if err != nil {
		return Outcome{}, fmt.Errorf("save meeting: %w", err)
	}

	paths, err := p.ExportAll(ctx, meeting.ID)
	if err != nil {
		return Outcome{}, fmt.Errorf("export meeting %d: %w", meeting.ID, err)
	}

	outcome := Outcome{
		Meeting:      meeting,
		Language:     detected,
		SegmentCount: len(newSegments),
		ExportPaths:  paths,
	}
	if active, ok := backend.Active(); ok {
		outcome.Engine = active.String()
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Transcription completed successfully!")
	p.logger.Info(ctx, "Meeting: %d (%d segments, language %s, engine %s)", meeting.ID, outcome.SegmentCount, detected, outcome.Engine)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return outcome, nil
}

// Process transcribes a file with the configured model, language and VAD setting.
func (p *implProcessor) Process(ctx context.Context, inputPath string) error {
	outcome, err := p.Transcribe(ctx, inputPath, TranscribeOptions{
		Model:    p.cfg.ASR.Model,
		Language: p.cfg.ASR.Language,
		UseVAD:   p.cfg.VAD.Enabled,
	})
	if err != nil {
		return err
	}
	p.logger.Info(ctx, "Stored %s as meeting %d", filepath.Base(inputPath), outcome.Meeting.ID)
	return nil
}
