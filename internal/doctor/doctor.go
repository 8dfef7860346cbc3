// Package doctor checks the local prerequisites of the pipeline.
package doctor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/asr"
	"github.com/nguyentantai21042004/minutes/internal/audio"
	"github.com/nguyentantai21042004/minutes/internal/config"
	"github.com/nguyentantai21042004/minutes/internal/store"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
)

// Status of a single check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one diagnostic line.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Deps are the collaborators the checks probe.
type Deps struct {
	Converter audio.Converter
	Executor  executor.Executor
	// Healthy probes the faster-whisper sidecar; defaults to asr.Healthy.
	Healthy func(ctx context.Context, url string) bool
}

// Run executes every check in a fixed order.
func Run(ctx context.Context, cfg *config.Config, deps Deps) []Check {
	if deps.Healthy == nil {
		deps.Healthy = asr.Healthy
	}

	checks := []Check{checkFFmpeg(ctx, cfg, deps.Converter)}
	checks = append(checks, checkCompute(ctx, cfg, deps))
	checks = append(checks, checkDatabase(cfg))
	checks = append(checks, checkModels(cfg)...)
	checks = append(checks, checkLLM(cfg))
	if vad := checkVAD(cfg, deps.Executor); vad != nil {
		checks = append(checks, *vad)
	}
	return checks
}

// Failed reports whether any check failed.
func Failed(checks []Check) bool {
	for _, c := range checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

func checkFFmpeg(ctx context.Context, cfg *config.Config, conv audio.Converter) Check {
	if cfg.FFmpeg.Path != "" {
		if _, err := os.Stat(conv.Command()); err != nil {
			return Check{"ffmpeg", StatusFail, fmt.Sprintf("Configured ffmpeg.path does not exist: %s", conv.Command())}
		}
	}

	version, err := conv.Version(ctx)
	if err == nil {
		return Check{"ffmpeg", StatusOK, version}
	}
	return Check{"ffmpeg", StatusFail, fmt.Sprintf(
		"ffmpeg not found. Tried command '%s'. Install ffmpeg on PATH, place it in the project (candidates: %s), or set ffmpeg.path.",
		conv.Command(), strings.Join(audio.ProjectFFmpegCandidates(), ", "),
	)}
}

func checkCompute(ctx context.Context, cfg *config.Config, deps Deps) Check {
	gpu := ""
	if path, err := deps.Executor.LookPath("nvidia-smi"); err == nil {
		gpu = fmt.Sprintf("nvidia-smi found at %s", path)
	}

	switch cfg.ASR.Backend {
	case config.BackendFasterWhisper:
		if !deps.Healthy(ctx, cfg.ASR.SidecarURL) {
			return Check{"Compute engine", StatusWarn, fmt.Sprintf("faster-whisper sidecar not reachable at %s", cfg.ASR.SidecarURL)}
		}
	case config.BackendWhisperCpp:
		if _, err := deps.Executor.LookPath(cfg.ASR.BinaryPath); err != nil {
			return Check{"Compute engine", StatusWarn, fmt.Sprintf("whisper.cpp binary not found: %s", cfg.ASR.BinaryPath)}
		}
	}

	if gpu == "" {
		return Check{"Compute engine", StatusWarn, fmt.Sprintf("%s ready; no GPU detected, CPU fallback expected.", cfg.ASR.Backend)}
	}
	return Check{"Compute engine", StatusOK, fmt.Sprintf("%s ready; %s, auto mode can use the GPU.", cfg.ASR.Backend, gpu)}
}

func checkDatabase(cfg *config.Config) Check {
	path := cfg.DBPath()
	if err := cfg.EnsureDirs(); err != nil {
		return Check{"Database", StatusFail, fmt.Sprintf("Cannot initialize SQLite at %s: %v", path, err)}
	}
	s, err := store.Open(path)
	if err != nil {
		return Check{"Database", StatusFail, fmt.Sprintf("Cannot initialize SQLite at %s: %v", path, err)}
	}
	defer s.Close()
	return Check{"Database", StatusOK, fmt.Sprintf("SQLite with FTS5 writable at %s", path)}
}

func checkModels(cfg *config.Config) []Check {
	names := config.ModelNames()
	sort.Strings(names)

	checks := make([]Check, 0, len(names))
	for _, alias := range names {
		name := fmt.Sprintf("ASR model (%s)", alias)
		path, err := cfg.ModelPath(alias)
		if err != nil {
			checks = append(checks, Check{name, StatusFail, err.Error()})
			continue
		}
		if _, err := os.Stat(path); err != nil {
			checks = append(checks, Check{name, StatusWarn, fmt.Sprintf("Missing: %s (manual download required; no auto-download).", path)})
			continue
		}
		checks = append(checks, Check{name, StatusOK, "Found: " + path})
	}
	return checks
}

func checkLLM(cfg *config.Config) Check {
	if cfg.LLM.APIKey == "" || cfg.LLM.Model == "" {
		return Check{"LLM model", StatusWarn, "llm.api_key or llm.model not set. Summarization will use the extractive fallback."}
	}
	return Check{"LLM model", StatusOK, fmt.Sprintf("Gemini model %s configured", cfg.LLM.Model)}
}

func checkVAD(cfg *config.Config, exec executor.Executor) *Check {
	if !cfg.VAD.Enabled || cfg.VAD.Engine != "command" {
		return nil
	}
	fields := strings.Fields(cfg.VAD.Command)
	if len(fields) == 0 {
		return &Check{"VAD command", StatusFail, "vad.command is empty"}
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return &Check{"VAD command", StatusFail, fmt.Sprintf("Not found: %s", fields[0])}
	}
	return &Check{"VAD command", StatusOK, "Found: " + path}
}
