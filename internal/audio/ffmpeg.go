package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
)

// SampleRate is the rate every normalized waveform is written at.
const SampleRate = 16000

type ffmpegConverter struct {
	command  string
	executor executor.Executor
	logger   logger.Logger
}

// NewFFmpeg creates a Converter backed by ffmpeg. An empty path resolves the
// executable from the project-local candidates, then PATH.
func NewFFmpeg(path string, exec executor.Executor, log logger.Logger) Converter {
	return &ffmpegConverter{
		command:  ResolveFFmpegCommand(path),
		executor: exec,
		logger:   log,
	}
}

func executableName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// ProjectFFmpegCandidates lists the project-local locations checked before PATH.
func ProjectFFmpegCandidates() []string {
	name := executableName()
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return []string{
		filepath.Join(cwd, "tools", "ffmpeg", "bin", name),
		filepath.Join(cwd, "ffmpeg", "bin", name),
		filepath.Join(cwd, "bin", name),
	}
}

// ResolveFFmpegCommand picks the configured path, a project-local binary, or
// the bare executable name.
func ResolveFFmpegCommand(path string) string {
	if path != "" {
		if strings.HasPrefix(path, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[2:])
			}
		}
		return path
	}
	for _, candidate := range ProjectFFmpegCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return executableName()
}

func (f *ffmpegConverter) Command() string {
	return f.command
}

func (f *ffmpegConverter) run(ctx context.Context, args ...string) error {
	full := append([]string{"-hide_banner", "-loglevel", "error"}, args...)
	if _, err := f.executor.Execute(ctx, f.command, full...); err != nil {
		if errors.Is(err, executor.ErrNotFound) {
			err = fmt.Errorf("%w (install ffmpeg, place it under ./tools/ffmpeg/bin/, or set MINUTES_FFMPEG_PATH)", err)
		}
		return apperr.ExternalTool(f.command, err)
	}
	return nil
}

// Convert decodes any input to mono 16 kHz WAV.
func (f *ffmpegConverter) Convert(ctx context.Context, inputPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f.logger.Debug(ctx, "Converting %s -> %s", inputPath, outputPath)
	return f.run(ctx,
		"-y",
		"-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprint(SampleRate),
		"-vn",
		outputPath,
	)
}

// Extract cuts a sub-range out of an already normalized waveform.
func (f *ffmpegConverter) Extract(ctx context.Context, inputPath, outputPath string, start, end float64) error {
	if end <= start {
		return apperr.Validation("chunk range", fmt.Sprintf("%.3f-%.3f", start, end), []string{"end > start"})
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	return f.run(ctx,
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-to", fmt.Sprintf("%.3f", end),
		"-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprint(SampleRate),
		outputPath,
	)
}

// Version returns the first line of `ffmpeg -version` with the command used.
func (f *ffmpegConverter) Version(ctx context.Context) (string, error) {
	out, err := f.executor.Execute(ctx, f.command, "-version")
	if err != nil {
		return "", apperr.ExternalTool(f.command, err)
	}
	line := "ffmpeg detected"
	if first, _, _ := strings.Cut(out, "\n"); strings.TrimSpace(first) != "" {
		line = strings.TrimSpace(first)
	}
	return fmt.Sprintf("%s (command: %s)", line, f.command), nil
}
