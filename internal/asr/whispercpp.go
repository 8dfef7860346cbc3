package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/audio"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
)

// WhisperCppName identifies results of the whisper.cpp backend.
const WhisperCppName = "whisper-cpp"

// WhisperCppConfig configures the whisper.cpp CLI backend. Precision selects
// the model file ggml-<precision>.bin inside ModelDir.
type WhisperCppConfig struct {
	BinaryPath string
	ModelDir   string
	Device     string
	Precision  string
	Threads    int
	BeamSize   int
}

type whisperCppHandle struct {
	modelFile string
	gpu       bool
}

type whisperCppBackend struct {
	cfg        WhisperCppConfig
	executor   executor.Executor
	candidates []Candidate
	engine     engine[whisperCppHandle]
	logger     logger.Logger
}

// NewWhisperCpp creates the whisper.cpp backend. The model is verified with a
// short warm-up run on the first Transcribe call.
func NewWhisperCpp(cfg WhisperCppConfig, exec executor.Executor, log logger.Logger) Backend {
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	if cfg.BeamSize <= 0 {
		cfg.BeamSize = 5
	}
	return &whisperCppBackend{
		cfg:        cfg,
		executor:   exec,
		candidates: BuildCandidates(cfg.Device, cfg.Precision, "gpu", Candidate{Target: "cpu", Precision: cfg.Precision}),
		engine:     engine[whisperCppHandle]{backend: WhisperCppName},
		logger:     log,
	}
}

func (b *whisperCppBackend) Name() string { return WhisperCppName }

func (b *whisperCppBackend) Active() (Candidate, bool) { return b.engine.activeCandidate() }

// ModelFile returns the model file used for a precision.
func ModelFile(modelDir, precision string) string {
	return filepath.Join(modelDir, "ggml-"+precision+".bin")
}

func (b *whisperCppBackend) load(ctx context.Context, c Candidate) (whisperCppHandle, error) {
	h := whisperCppHandle{
		modelFile: ModelFile(b.cfg.ModelDir, c.Precision),
		gpu:       c.Target != "cpu",
	}
	if _, err := os.Stat(h.modelFile); err != nil {
		return whisperCppHandle{}, fmt.Errorf("model file: %w", err)
	}

	dir, err := os.MkdirTemp("", "whisper-warmup-*")
	if err != nil {
		return whisperCppHandle{}, fmt.Errorf("create warm-up dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wav := filepath.Join(dir, "silence.wav")
	if err := audio.WriteSilentWAV(wav, 0.5); err != nil {
		return whisperCppHandle{}, err
	}

	args := []string{"-m", h.modelFile, "-f", wav, "-np", "-nt"}
	if !h.gpu {
		args = append(args, "-ng")
	}
	if _, err := b.executor.Execute(ctx, b.cfg.BinaryPath, args...); err != nil {
		return whisperCppHandle{}, fmt.Errorf("warm-up: %w", err)
	}

	b.logger.Info(ctx, "whisper.cpp model ready on %s: %s", c, h.modelFile)
	return h, nil
}

type whisperCppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper.cpp with JSON output next to the input file.
func (b *whisperCppBackend) Transcribe(ctx context.Context, audioPath, language string) (Result, error) {
	h, err := b.engine.ensure(ctx, b.candidates, b.load)
	if err != nil {
		return Result{}, err
	}

	lang := NormalizeLanguage(language)
	langArg := lang
	if langArg == "" {
		langArg = "auto"
	}

	// whisper.cpp appends .json to the output prefix
	prefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".whisper"
	args := []string{
		"-m", h.modelFile,
		"-f", audioPath,
		"-oj",
		"-of", prefix,
		"-l", langArg,
		"-t", strconv.Itoa(b.cfg.Threads),
		"-bs", strconv.Itoa(b.cfg.BeamSize),
		"-np",
	}
	if !h.gpu {
		args = append(args, "-ng")
	}

	if _, err := b.executor.Execute(ctx, b.cfg.BinaryPath, args...); err != nil {
		return Result{}, fmt.Errorf("whisper.cpp transcribe: %w", err)
	}

	jsonPath := prefix + ".json"
	defer os.Remove(jsonPath)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper.cpp output: %w", err)
	}
	return parseWhisperCppOutput(data, lang)
}

func parseWhisperCppOutput(data []byte, requested string) (Result, error) {
	var out whisperCppOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, fmt.Errorf("decode whisper.cpp output: %w", err)
	}

	raw := make([]Segment, 0, len(out.Transcription))
	for _, t := range out.Transcription {
		raw = append(raw, Segment{
			Start: float64(t.Offsets.From) / 1000,
			End:   float64(t.Offsets.To) / 1000,
			Text:  t.Text,
		})
	}

	detected := strings.ToLower(strings.TrimSpace(out.Result.Language))
	if detected == "" {
		detected = requested
	}
	return Result{
		Segments: sanitizeSegments(raw),
		Language: detected,
		Backend:  WhisperCppName,
	}, nil
}
