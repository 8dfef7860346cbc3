package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		kind    apperr.Kind
	}{
		{
			name:    "defaults",
			config:  Config{Paths: PathsConfig{DataDir: "data"}},
			wantErr: false,
		},
		{
			name: "whisper-cpp backend",
			config: Config{
				Paths: PathsConfig{DataDir: "data"},
				ASR:   ASRConfig{Backend: "Whisper-CPP", Device: "metal"},
			},
			wantErr: false,
		},
		{
			name: "unsupported backend",
			config: Config{
				Paths: PathsConfig{DataDir: "data"},
				ASR:   ASRConfig{Backend: "onnx"},
			},
			wantErr: true,
			kind:    apperr.KindValidation,
		},
		{
			name: "unsupported device",
			config: Config{
				Paths: PathsConfig{DataDir: "data"},
				ASR:   ASRConfig{Device: "tpu"},
			},
			wantErr: true,
			kind:    apperr.KindValidation,
		},
		{
			name: "command vad without command",
			config: Config{
				Paths: PathsConfig{DataDir: "data"},
				VAD:   VADConfig{Engine: "command"},
			},
			wantErr: true,
			kind:    apperr.KindValidation,
		},
		{
			name: "negative vad gap",
			config: Config{
				Paths: PathsConfig{DataDir: "data"},
				VAD:   VADConfig{MaxGap: float64Ptr(-1)},
			},
			wantErr: true,
			kind:    apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.kind != "" && !apperr.IsKind(err, tt.kind) {
				t.Errorf("Validate() error kind = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{Paths: PathsConfig{DataDir: "data"}}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.ASR.Backend != BackendFasterWhisper {
		t.Errorf("Backend = %v, want %v", cfg.ASR.Backend, BackendFasterWhisper)
	}
	if cfg.ASR.ComputeType != "int8" {
		t.Errorf("ComputeType = %v, want int8", cfg.ASR.ComputeType)
	}
	if cfg.VAD.MaxDuration != 30 || *cfg.VAD.MaxGap != 0.75 || *cfg.VAD.MinDuration != 0.4 {
		t.Errorf("unexpected VAD defaults: %+v", cfg.VAD)
	}
	if cfg.DBPath() != filepath.Join("data", "minutes.db") {
		t.Errorf("DBPath = %v", cfg.DBPath())
	}
	if cfg.Paths.ExportsDir != filepath.Join("data", "exports") {
		t.Errorf("ExportsDir = %v", cfg.Paths.ExportsDir)
	}
}

func TestLoadKeepsExplicitZeroVADValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
paths:
  data_dir: "data"
vad:
  max_gap: 0
  min_duration: 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg.VAD.MaxGap != 0 || *cfg.VAD.MinDuration != 0 {
		t.Errorf("max_gap = %v, min_duration = %v, want both 0", *cfg.VAD.MaxGap, *cfg.VAD.MinDuration)
	}
}

func TestValidationErrorListsAllowed(t *testing.T) {
	cfg := Config{Paths: PathsConfig{DataDir: "data"}, ASR: ASRConfig{Backend: "onnx"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"asr.backend", "faster-whisper", "whisper-cpp"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestResolveModelPath(t *testing.T) {
	models := t.TempDir()
	cfg := Config{Paths: PathsConfig{DataDir: "data", ModelsDir: models}}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if _, err := cfg.ResolveModelPath("huge"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("unknown alias error = %v, want validation", err)
	}

	if _, err := cfg.ResolveModelPath("large"); !apperr.IsKind(err, apperr.KindPrecondition) {
		t.Errorf("missing model error = %v, want precondition", err)
	}

	want := filepath.Join(models, BackendFasterWhisper, "large-v3")
	if err := os.MkdirAll(want, 0755); err != nil {
		t.Fatal(err)
	}
	got, err := cfg.ResolveModelPath(" Large ")
	if err != nil {
		t.Fatalf("ResolveModelPath() error = %v", err)
	}
	if got != want {
		t.Errorf("ResolveModelPath() = %v, want %v", got, want)
	}
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
paths:
  data_dir: "data"
  models_dir: "models"

asr:
  backend: "whisper-cpp"
  model: "medium"
  language: "cs"

vad:
  enabled: true
  max_duration: 20

logging:
  level: "debug"
  format: "json"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test loading
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ASR.Backend != BackendWhisperCpp {
		t.Errorf("Backend = %v, want %v", cfg.ASR.Backend, BackendWhisperCpp)
	}
	if cfg.ASR.ComputeType != "f16" {
		t.Errorf("ComputeType = %v, want f16", cfg.ASR.ComputeType)
	}
	if !cfg.VAD.Enabled || cfg.VAD.MaxDuration != 20 {
		t.Errorf("VAD = %+v", cfg.VAD)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MINUTES_ASR_BACKEND": "whisper-cpp",
		"MINUTES_VAD":         "true",
		"MINUTES_THREADS":     "8",
		"MINUTES_LLM_API_KEY": " secret ",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := &Config{}
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.ASR.Backend != "whisper-cpp" || !cfg.VAD.Enabled || cfg.ASR.Threads != 8 || cfg.LLM.APIKey != "secret" {
		t.Errorf("applyEnv() = %+v", cfg)
	}

	env["MINUTES_VAD"] = "maybe"
	if err := applyEnv(&Config{}, lookup); err == nil {
		t.Error("applyEnv() should reject a non-boolean MINUTES_VAD")
	}
}
