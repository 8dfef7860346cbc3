package processor

import (
	"github.com/nguyentantai21042004/minutes/internal/asr"
	"github.com/nguyentantai21042004/minutes/internal/audio"
	"github.com/nguyentantai21042004/minutes/internal/config"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/internal/store"
	"github.com/nguyentantai21042004/minutes/internal/summarizer"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
)

// Deps are the collaborators a Processor drives. Doctor only needs
// Converter, Executor and Logger.
type Deps struct {
	Converter  audio.Converter
	VAD        audio.VAD
	NewBackend asr.Factory
	Store      *store.Store
	Summarizer summarizer.Summarizer
	Executor   executor.Executor
	Logger     logger.Logger
}

type implProcessor struct {
	cfg        *config.Config
	converter  audio.Converter
	vad        audio.VAD
	newBackend asr.Factory
	store      *store.Store
	summarizer summarizer.Summarizer
	executor   executor.Executor
	logger     logger.Logger

	// one pipeline run at a time
	guard *semaphore
	// backends by model path; only touched while guard is held
	backends map[string]asr.Backend
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps) Processor {
	return &implProcessor{
		cfg:        cfg,
		converter:  deps.Converter,
		vad:        deps.VAD,
		newBackend: deps.NewBackend,
		store:      deps.Store,
		summarizer: deps.Summarizer,
		executor:   deps.Executor,
		logger:     deps.Logger,
		guard:      newSemaphore(1),
		backends:   make(map[string]asr.Backend),
	}
}
