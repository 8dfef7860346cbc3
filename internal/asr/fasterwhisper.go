package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes/internal/logger"
)

// FasterWhisperName identifies results of the faster-whisper sidecar backend.
const FasterWhisperName = "faster-whisper"

// FasterWhisperConfig configures the sidecar backend.
type FasterWhisperConfig struct {
	URL         string
	ModelPath   string
	Device      string
	ComputeType string
	BeamSize    int
}

// fasterWhisperBackend talks to a local faster-whisper HTTP sidecar. The
// engine handle is the id the sidecar returns for a loaded model.
type fasterWhisperBackend struct {
	cfg        FasterWhisperConfig
	client     *http.Client
	candidates []Candidate
	engine     engine[string]
	logger     logger.Logger
}

// NewFasterWhisper creates the sidecar backend. The model is loaded on the
// first Transcribe call.
func NewFasterWhisper(cfg FasterWhisperConfig, log logger.Logger) Backend {
	if cfg.BeamSize <= 0 {
		cfg.BeamSize = 5
	}
	return &fasterWhisperBackend{
		cfg:        cfg,
		client:     &http.Client{},
		candidates: BuildCandidates(cfg.Device, cfg.ComputeType, "cuda", Candidate{Target: "cpu", Precision: "int8"}),
		engine:     engine[string]{backend: FasterWhisperName},
		logger:     log,
	}
}

func (b *fasterWhisperBackend) Name() string { return FasterWhisperName }

func (b *fasterWhisperBackend) Active() (Candidate, bool) { return b.engine.activeCandidate() }

type loadRequest struct {
	ModelPath   string `json:"model_path"`
	Device      string `json:"device"`
	ComputeType string `json:"compute_type"`
}

type loadResponse struct {
	Handle string `json:"handle"`
}

type sidecarResponse struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

func (b *fasterWhisperBackend) load(ctx context.Context, c Candidate) (string, error) {
	body, err := json.Marshal(loadRequest{ModelPath: b.cfg.ModelPath, Device: c.Target, ComputeType: c.Precision})
	if err != nil {
		return "", fmt.Errorf("encode load request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(b.cfg.URL, "/")+"/load", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sidecar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sidecar load (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var lr loadResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("decode load response: %w", err)
	}
	if lr.Handle == "" {
		return "", fmt.Errorf("sidecar returned an empty model handle")
	}

	b.logger.Info(ctx, "faster-whisper model loaded on %s", c)
	return lr.Handle, nil
}

// Transcribe uploads the waveform to the sidecar and returns sanitized segments.
func (b *fasterWhisperBackend) Transcribe(ctx context.Context, audioPath, language string) (Result, error) {
	handle, err := b.engine.ensure(ctx, b.candidates, b.load)
	if err != nil {
		return Result{}, err
	}

	lang := NormalizeLanguage(language)
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("read audio file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return Result{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return Result{}, fmt.Errorf("write audio data: %w", err)
	}
	fields := [][2]string{{"handle", handle}, {"beam_size", strconv.Itoa(b.cfg.BeamSize)}}
	if lang != "" {
		fields = append(fields, [2]string{"language", lang})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return Result{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(b.cfg.URL, "/")+"/transcribe", &buf)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("faster-whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("faster-whisper error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var sr sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Result{}, fmt.Errorf("decode faster-whisper response: %w", err)
	}

	detected := strings.ToLower(strings.TrimSpace(sr.Language))
	if detected == "" {
		detected = lang
	}
	return Result{
		Segments: sanitizeSegments(sr.Segments),
		Language: detected,
		Backend:  FasterWhisperName,
	}, nil
}

// HealthTimeout bounds a sidecar health probe.
const HealthTimeout = 3 * time.Second

// Healthy reports whether the sidecar answers its health endpoint within
// HealthTimeout.
func Healthy(ctx context.Context, url string) bool {
	return healthy(ctx, url, HealthTimeout)
}

func healthy(ctx context.Context, url string, timeout time.Duration) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(url, "/")+"/health", nil)
	if err != nil {
		return false
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
