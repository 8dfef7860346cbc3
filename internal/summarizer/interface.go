package summarizer

import "context"

// Summary methods reported in Result.Method.
const (
	MethodGemini     = "gemini"
	MethodExtractive = "extractive"
)

// Result is a produced summary. LLMModel is empty for the extractive method.
type Result struct {
	Text         string
	Method       string
	TemplateName string
	LLMModel     string
}

// Summarizer turns transcript text into a summary shaped by a prompt template.
// Without a configured generative model it degrades to an extractive summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, templateName string) (Result, error)
}
