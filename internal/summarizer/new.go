package summarizer

import (
	"github.com/nguyentantai21042004/minutes/internal/logger"
)

// Options configures the summarizer.
type Options struct {
	APIKey     string
	Model      string
	PromptsDir string
}

type implSummarizer struct {
	generator  generator
	model      string
	promptsDir string
	logger     logger.Logger
}

// New creates a Summarizer. Gemini is used only when both an API key and a
// model are set.
func New(opts Options, log logger.Logger) Summarizer {
	s := &implSummarizer{
		model:      opts.Model,
		promptsDir: opts.PromptsDir,
		logger:     log,
	}
	if opts.APIKey != "" && opts.Model != "" {
		s.generator = &geminiGenerator{apiKey: opts.APIKey}
	}
	return s
}
