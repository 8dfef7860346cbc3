package summarizer

import (
	"regexp"
	"sort"
	"strings"
)

const (
	defaultMaxSentences = 6
	maxActionItems      = 4
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]\s+`)
	wordPattern   = regexp.MustCompile(`[A-Za-z0-9_]+`)

	stopwords = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "for": {}, "of": {},
		"in": {}, "on": {}, "with": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
		"it": {}, "that": {}, "this": {}, "we": {}, "they": {}, "you": {}, "i": {},
	}

	actionMarkers = []string{"action", "todo", "next step", "will "}
)

// splitSentences splits after terminal punctuation followed by whitespace,
// keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceSplit.FindAllStringIndex(text, -1) {
		out = appendTrimmed(out, text[last:loc[0]+1])
		last = loc[1]
	}
	return appendTrimmed(out, text[last:])
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

func tokenize(text string) []string {
	words := wordPattern.FindAllString(text, -1)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// ExtractiveSummary picks the maxSentences highest scoring sentences by mean
// word frequency, in transcript order, and lists sentences that look like
// action items.
func ExtractiveSummary(transcript string, maxSentences int) string {
	sentences := splitSentences(transcript)
	if len(sentences) == 0 {
		return "No transcript content was available."
	}

	freq := make(map[string]int)
	for _, tok := range tokenize(transcript) {
		if _, stop := stopwords[tok]; stop || len(tok) < 3 {
			continue
		}
		freq[tok]++
	}

	type scored struct {
		score float64
		index int
	}
	var ranked []scored
	for i, sentence := range sentences {
		tokens := tokenize(sentence)
		if len(tokens) == 0 {
			continue
		}
		total := 0
		for _, tok := range tokens {
			total += freq[tok]
		}
		ranked = append(ranked, scored{score: float64(total) / float64(len(tokens)), index: i})
	}

	var top []int
	if len(ranked) == 0 {
		for i := 0; i < len(sentences) && i < maxSentences; i++ {
			top = append(top, i)
		}
	} else {
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		if len(ranked) > maxSentences {
			ranked = ranked[:maxSentences]
		}
		for _, r := range ranked {
			top = append(top, r.index)
		}
		sort.Ints(top)
	}

	var actions []string
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, marker := range actionMarkers {
			if strings.Contains(lower, marker) {
				actions = append(actions, sentence)
				break
			}
		}
		if len(actions) == maxActionItems {
			break
		}
	}

	lines := []string{"Summary (extractive):", ""}
	for _, i := range top {
		lines = append(lines, "- "+sentences[i])
	}
	if len(actions) > 0 {
		lines = append(lines, "", "Likely action items:")
		for _, a := range actions {
			lines = append(lines, "- "+a)
		}
	}
	return strings.Join(lines, "\n")
}
