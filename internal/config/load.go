package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MINUTES_"

// Load builds the configuration: .env file, YAML file (optional when path is
// empty), MINUTES_* environment overrides, then Validate. Call it once at
// process entry and pass the result down.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"DATA_DIR":       &cfg.Paths.DataDir,
		"MODELS_DIR":     &cfg.Paths.ModelsDir,
		"EXPORTS_DIR":    &cfg.Paths.ExportsDir,
		"TEMP_DIR":       &cfg.Paths.TempDir,
		"PROMPTS_DIR":    &cfg.Paths.PromptsDir,
		"INBOX":          &cfg.Paths.Inbox,
		"DB_FILENAME":    &cfg.Paths.DBFilename,
		"ASR_BACKEND":    &cfg.ASR.Backend,
		"ASR_MODEL":      &cfg.ASR.Model,
		"LANGUAGE":       &cfg.ASR.Language,
		"DEVICE":         &cfg.ASR.Device,
		"COMPUTE_TYPE":   &cfg.ASR.ComputeType,
		"SIDECAR_URL":    &cfg.ASR.SidecarURL,
		"WHISPER_BINARY": &cfg.ASR.BinaryPath,
		"VAD_ENGINE":     &cfg.VAD.Engine,
		"VAD_COMMAND":    &cfg.VAD.Command,
		"FFMPEG_PATH":    &cfg.FFmpeg.Path,
		"LLM_MODEL":      &cfg.LLM.Model,
		"LLM_API_KEY":    &cfg.LLM.APIKey,
		"LOG_LEVEL":      &cfg.Logging.Level,
		"LOG_FORMAT":     &cfg.Logging.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvPrefix + "VAD"); ok {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %sVAD: %w", EnvPrefix, err)
		}
		cfg.VAD.Enabled = enabled
	}
	if v, ok := lookup(EnvPrefix + "THREADS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %sTHREADS: %w", EnvPrefix, err)
		}
		cfg.ASR.Threads = n
	}
	return nil
}
