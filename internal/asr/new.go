package asr

import (
	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/config"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
)

// Names lists the registered backend variants.
func Names() []string {
	return []string{FasterWhisperName, WhisperCppName}
}

// NewFactory returns a Factory for the variant selected by asr.backend. The
// choice is fixed here; callers never switch variants per call.
func NewFactory(cfg config.ASRConfig, exec executor.Executor, log logger.Logger) (Factory, error) {
	switch cfg.Backend {
	case FasterWhisperName:
		return func(modelPath string) (Backend, error) {
			return NewFasterWhisper(FasterWhisperConfig{
				URL:         cfg.SidecarURL,
				ModelPath:   modelPath,
				Device:      cfg.Device,
				ComputeType: cfg.ComputeType,
				BeamSize:    cfg.BeamSize,
			}, log), nil
		}, nil
	case WhisperCppName:
		return func(modelPath string) (Backend, error) {
			return NewWhisperCpp(WhisperCppConfig{
				BinaryPath: cfg.BinaryPath,
				ModelDir:   modelPath,
				Device:     cfg.Device,
				Precision:  cfg.ComputeType,
				Threads:    cfg.Threads,
				BeamSize:   cfg.BeamSize,
			}, exec, log), nil
		}, nil
	default:
		return nil, apperr.Validation("asr.backend", cfg.Backend, Names())
	}
}
