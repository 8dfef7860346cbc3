package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// maxPromptChars bounds the transcript tail sent to the model, in characters.
const maxPromptChars = 18000

type generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Summarize renders the template prompt and calls Gemini, or builds an
// extractive summary when no model is configured.
func (s *implSummarizer) Summarize(ctx context.Context, transcript, templateName string) (Result, error) {
	name := strings.ToLower(strings.TrimSpace(templateName))
	if name == "" {
		name = DefaultTemplate
	}
	template, err := LoadTemplate(s.promptsDir, name)
	if err != nil {
		return Result{}, err
	}

	if s.generator == nil {
		s.logger.Debug(ctx, "No LLM configured, using extractive summary")
		return Result{
			Text:         ExtractiveSummary(transcript, defaultMaxSentences),
			Method:       MethodExtractive,
			TemplateName: name,
		}, nil
	}

	prompt := buildPrompt(template, transcript)
	s.logger.Info(ctx, "Summarizing with %s (template %s)", s.model, name)
	text, err := s.generator.Generate(ctx, s.model, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("gemini summary: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = "LLM returned an empty summary."
	}
	return Result{
		Text:         text,
		Method:       MethodGemini,
		TemplateName: name,
		LLMModel:     s.model,
	}, nil
}

func buildPrompt(template, transcript string) string {
	if runes := []rune(transcript); len(runes) > maxPromptChars {
		transcript = string(runes[len(runes)-maxPromptChars:])
	}
	return fmt.Sprintf("%s\n\nTranscript:\n%s\n\nWrite the requested summary now.\n", template, transcript)
}

type geminiGenerator struct {
	apiKey string
}

// Generate sends one prompt to Gemini and concatenates the text parts of the
// first candidate.
func (g *geminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		return text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
