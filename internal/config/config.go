package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nguyentantai21042004/minutes/internal/apperr"
)

// Backend names accepted by asr.backend.
const (
	BackendFasterWhisper = "faster-whisper"
	BackendWhisperCpp    = "whisper-cpp"
)

// ModelAliases maps user-facing model names to their directory names under models_dir.
var ModelAliases = map[string]string{
	"small":  "small",
	"medium": "medium",
	"large":  "large-v3",
}

// Config is constructed once per process entry and passed down explicitly.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	ASR     ASRConfig     `yaml:"asr"`
	VAD     VADConfig     `yaml:"vad"`
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	LLM     LLMConfig     `yaml:"llm"`
	Logging LoggingConfig `yaml:"logging"`
}

type PathsConfig struct {
	DataDir    string `yaml:"data_dir"`
	ModelsDir  string `yaml:"models_dir"`
	ExportsDir string `yaml:"exports_dir"`
	TempDir    string `yaml:"temp_dir"`
	PromptsDir string `yaml:"prompts_dir"`
	Inbox      string `yaml:"inbox"`
	DBFilename string `yaml:"db_filename"`
}

type ASRConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=faster-whisper whisper-cpp"`
	Model       string `yaml:"model" validate:"oneof=small medium large"`
	Language    string `yaml:"language"`
	Device      string `yaml:"device" validate:"oneof=auto cpu cuda metal"`
	ComputeType string `yaml:"compute_type"`
	SidecarURL  string `yaml:"sidecar_url"`
	BinaryPath  string `yaml:"binary_path"`
	Threads     int    `yaml:"threads" validate:"gte=0"`
	BeamSize    int    `yaml:"beam_size" validate:"gte=0"`
}

type VADConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Engine       string  `yaml:"engine" validate:"oneof=energy command"`
	Command      string  `yaml:"command"`
	Threshold    float64 `yaml:"threshold"`
	SamplingRate int     `yaml:"sampling_rate" validate:"gt=0"`
	// MaxGap and MinDuration are pointers so an explicit 0 is kept.
	MaxGap      *float64 `yaml:"max_gap" validate:"gte=0"`
	MinDuration *float64 `yaml:"min_duration" validate:"gte=0"`
	MaxDuration float64  `yaml:"max_duration" validate:"gt=0"`
}

type FFmpegConfig struct {
	Path string `yaml:"path"`
}

type LLMConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Validate fills defaults and rejects unsupported option values.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		c.Paths.DataDir = filepath.Join(home, ".minutes")
	}
	if c.Paths.ModelsDir == "" {
		c.Paths.ModelsDir = "models"
	}
	if c.Paths.ExportsDir == "" {
		c.Paths.ExportsDir = filepath.Join(c.Paths.DataDir, "exports")
	}
	if c.Paths.TempDir == "" {
		c.Paths.TempDir = filepath.Join(c.Paths.DataDir, "tmp")
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = filepath.Join(c.Paths.DataDir, "inbox")
	}
	if c.Paths.PromptsDir == "" {
		c.Paths.PromptsDir = filepath.Join("docs", "prompts")
	}
	if c.Paths.DBFilename == "" {
		c.Paths.DBFilename = "minutes.db"
	}

	c.ASR.Backend = strings.ToLower(strings.TrimSpace(c.ASR.Backend))
	c.ASR.Model = strings.ToLower(strings.TrimSpace(c.ASR.Model))
	c.ASR.Device = strings.ToLower(strings.TrimSpace(c.ASR.Device))

	if c.ASR.Backend == "" {
		c.ASR.Backend = BackendFasterWhisper
	}
	if c.ASR.Model == "" {
		c.ASR.Model = "small"
	}
	if c.ASR.Language == "" {
		c.ASR.Language = "auto"
	}
	if c.ASR.Device == "" {
		c.ASR.Device = "auto"
	}
	if c.ASR.ComputeType == "" {
		if c.ASR.Backend == BackendWhisperCpp {
			c.ASR.ComputeType = "f16"
		} else {
			c.ASR.ComputeType = "int8"
		}
	}
	if c.ASR.SidecarURL == "" {
		c.ASR.SidecarURL = "http://localhost:8387"
	}
	if c.ASR.BinaryPath == "" {
		c.ASR.BinaryPath = "whisper-cli"
	}
	if c.ASR.Threads == 0 {
		c.ASR.Threads = 4
	}
	if c.ASR.BeamSize == 0 {
		c.ASR.BeamSize = 5
	}

	if c.VAD.Engine == "" {
		c.VAD.Engine = "energy"
	}
	if c.VAD.Threshold == 0 {
		c.VAD.Threshold = 0.02
	}
	if c.VAD.SamplingRate == 0 {
		c.VAD.SamplingRate = 16000
	}
	if c.VAD.MaxGap == nil {
		c.VAD.MaxGap = float64Ptr(0.75)
	}
	if c.VAD.MinDuration == nil {
		c.VAD.MinDuration = float64Ptr(0.4)
	}
	if c.VAD.MaxDuration == 0 {
		c.VAD.MaxDuration = 30
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if err := validate.Struct(c); err != nil {
		return toValidationError(err)
	}
	if c.VAD.Engine == "command" && strings.TrimSpace(c.VAD.Command) == "" {
		return apperr.Validation("vad.command", c.VAD.Command, []string{"a VAD command line when vad.engine is command"})
	}
	return nil
}

// DBPath returns the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.Paths.DataDir, c.Paths.DBFilename)
}

// ModelNames returns the supported model aliases.
func ModelNames() []string {
	names := make([]string, 0, len(ModelAliases))
	for name := range ModelAliases {
		names = append(names, name)
	}
	return names
}

// ModelPath maps a model alias to its directory for the configured backend.
// It does not check that the directory exists.
func (c *Config) ModelPath(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	dir, ok := ModelAliases[key]
	if !ok {
		return "", apperr.Validation("model", name, ModelNames())
	}
	return filepath.Join(c.Paths.ModelsDir, c.ASR.Backend, dir), nil
}

// ResolveModelPath returns the local artifact path for a model alias.
// Models are provisioned out of band; a missing path is a precondition failure.
func (c *Config) ResolveModelPath(name string) (string, error) {
	path, err := c.ModelPath(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", apperr.Precondition("model path not found: %s (models are never downloaded automatically; place them there and rerun)", path)
	}
	return path, nil
}

// EnsureDirs creates the data, export and temp directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ExportsDir, c.Paths.TempDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func float64Ptr(v float64) *float64 { return &v }

var validate = validator.New(validator.WithRequiredStructEnabled())

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Namespace())
	field = strings.TrimPrefix(field, "config.")
	value := fmt.Sprintf("%v", fe.Value())
	if fe.Tag() == "oneof" {
		return apperr.Validation(field, value, strings.Fields(fe.Param()))
	}
	return apperr.Validation(field, value, []string{fe.Tag() + "=" + fe.Param()})
}
