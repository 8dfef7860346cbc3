package summarizer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
)

// DefaultTemplate is used when no template name is given.
const DefaultTemplate = "general"

var fallbackPrompts = map[string]string{
	"general":     "Summarize this meeting with objective, key points, decisions, action items, and open questions.",
	"sales":       "Summarize this sales call with context, pain points, objections, commitments, and next steps.",
	"engineering": "Summarize this engineering meeting with technical decisions, blockers, risks, and owner TODOs.",
}

// Templates returns the known template names, sorted.
func Templates() []string {
	names := make([]string, 0, len(fallbackPrompts))
	for name := range fallbackPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadTemplate returns <promptsDir>/summary_<name>.md when present, else the
// built-in prompt for name.
func LoadTemplate(promptsDir, name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	fallback, ok := fallbackPrompts[key]
	if !ok {
		return "", apperr.Validation("template", name, Templates())
	}

	if promptsDir != "" {
		data, err := os.ReadFile(filepath.Join(promptsDir, "summary_"+key+".md"))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read prompt template: %w", err)
		}
	}
	return fallback, nil
}
