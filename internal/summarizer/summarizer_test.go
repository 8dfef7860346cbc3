package summarizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/internal/store"
)

type fakeGenerator struct {
	prompt string
	model  string
	text   string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	f.model = model
	f.prompt = prompt
	return f.text, f.err
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First point. Second one!  Is it third? trailing")
	want := []string{"First point.", "Second one!", "Is it third?", "trailing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitSentences() = %q, want %q", got, want)
	}
}

func TestExtractiveSummary(t *testing.T) {
	transcript := "The budget review covered the budget for hiring. " +
		"Lunch was fine. " +
		"We will send the budget numbers tomorrow. " +
		"Next step is a hiring plan."

	got := ExtractiveSummary(transcript, 2)
	want := strings.Join([]string{
		"Summary (extractive):",
		"",
		"- The budget review covered the budget for hiring.",
		"- We will send the budget numbers tomorrow.",
		"",
		"Likely action items:",
		"- We will send the budget numbers tomorrow.",
		"- Next step is a hiring plan.",
	}, "\n")
	if got != want {
		t.Errorf("ExtractiveSummary() =\n%s\nwant\n%s", got, want)
	}
}

func TestExtractiveSummaryEmpty(t *testing.T) {
	if got := ExtractiveSummary("   ", 6); got != "No transcript content was available." {
		t.Errorf("ExtractiveSummary() = %q", got)
	}
}

func TestSummarizeWithoutModelIsExtractive(t *testing.T) {
	s := New(Options{}, logger.Nop())
	res, err := s.Summarize(context.Background(), "We will ship it.", "")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if res.Method != MethodExtractive || res.TemplateName != "general" || res.LLMModel != "" {
		t.Errorf("Summarize() = %+v", res)
	}
}

func TestSummarizeUnknownTemplate(t *testing.T) {
	s := New(Options{}, logger.Nop())
	_, err := s.Summarize(context.Background(), "text", "legal")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("Summarize() error = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "engineering, general, sales") {
		t.Errorf("error %q does not list templates", err)
	}
}

func TestSummarizeWithGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "  ## Decisions\n- ship  "}
	s := &implSummarizer{generator: gen, model: "gemini-2.5-flash", logger: logger.Nop()}

	transcript := strings.Repeat("x", maxPromptChars) + "TAIL"
	res, err := s.Summarize(context.Background(), transcript, "Sales")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if res.Method != MethodGemini || res.LLMModel != "gemini-2.5-flash" || res.TemplateName != "sales" {
		t.Errorf("Summarize() = %+v", res)
	}
	if res.Text != "## Decisions\n- ship" {
		t.Errorf("Text = %q", res.Text)
	}
	if !strings.HasPrefix(gen.prompt, fallbackPrompts["sales"]) || !strings.Contains(gen.prompt, "TAIL") {
		t.Error("prompt does not contain the template and the transcript tail")
	}
	if strings.Count(gen.prompt, "x") > maxPromptChars {
		t.Error("transcript was not clipped")
	}
}

func TestBuildPromptClipsByCharacter(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		wantTail   string
	}{
		{"ascii", strings.Repeat("a", maxPromptChars) + "x", strings.Repeat("a", maxPromptChars-1) + "x"},
		{"two-byte runes", strings.Repeat("č", maxPromptChars) + "x", strings.Repeat("č", maxPromptChars-1) + "x"},
		{"short", "dobrý den", "dobrý den"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := buildPrompt("T", tt.transcript)
			if !utf8.ValidString(prompt) {
				t.Fatal("prompt is not valid UTF-8")
			}
			if !strings.Contains(prompt, "Transcript:\n"+tt.wantTail+"\n") {
				t.Errorf("prompt does not end with the last %d characters", utf8.RuneCountInString(tt.wantTail))
			}
		})
	}
}

func TestSummarizeGeneratorError(t *testing.T) {
	s := &implSummarizer{generator: &fakeGenerator{err: errors.New("quota")}, model: "m", logger: logger.Nop()}
	if _, err := s.Summarize(context.Background(), "text", "general"); err == nil {
		t.Error("Summarize() error = nil, want generator error")
	}
}

func TestLoadTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "summary_engineering.md"), []byte("custom"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadTemplate(dir, "engineering")
	if err != nil || got != "custom" {
		t.Errorf("LoadTemplate() = %q, %v, want custom", got, err)
	}
	got, err = LoadTemplate(dir, "general")
	if err != nil || got != fallbackPrompts["general"] {
		t.Errorf("LoadTemplate() = %q, %v, want built-in", got, err)
	}
}

func TestLoadTranscript(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "meeting.json")
	os.WriteFile(jsonPath, []byte(`{"segments":[{"text":" hello "},{"text":""},{"text":"world"}]}`), 0644)
	txtPath := filepath.Join(dir, "notes.txt")
	os.WriteFile(txtPath, []byte("raw text"), 0644)
	badPath := filepath.Join(dir, "broken.json")
	os.WriteFile(badPath, []byte("{not json"), 0644)

	tests := []struct {
		path string
		want string
	}{
		{jsonPath, "hello\nworld"},
		{txtPath, "raw text"},
		{badPath, "{not json"},
	}
	for _, tt := range tests {
		got, err := LoadTranscript(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("LoadTranscript(%s) = %q, %v, want %q", filepath.Base(tt.path), got, err, tt.want)
		}
	}
}

func TestSegmentsText(t *testing.T) {
	got := SegmentsText([]store.Segment{{Start: 0, End: 1.5, Text: "hi"}, {Start: 2, End: 3, Text: "there"}})
	if got != "[0.00-1.50] hi\n[2.00-3.00] there" {
		t.Errorf("SegmentsText() = %q", got)
	}
}
