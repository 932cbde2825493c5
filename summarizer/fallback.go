package summarizer

import (
	"regexp"
	"strings"

	"news-terminal/extract"
)

const (
	extractiveModel = "extractive"

	maxFallbackTitle   = 50
	maxFallbackSummary = 200
	fallbackSentences  = 3
)

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Extractive builds a Summary from the article text alone, for when no
// language model is reachable. Sentiment stays neutral.
func Extractive(title, content string) *Summary {
	sentences := splitSentences(content)

	if title == "" && len(sentences) > 0 {
		title = truncateTo(sentences[0], maxFallbackTitle)
	}

	n := min(fallbackSentences, len(sentences))
	summary := truncateTo(strings.Join(sentences[:n], " "), maxFallbackSummary)

	keywords := extract.Keywords(content, 5)
	if keywords == nil {
		keywords = []string{}
	}

	return &Summary{
		Title:    title,
		Summary:  summary,
		Keywords: keywords,
		Model:    extractiveModel,
	}
}

func emptySummary(title string) *Summary {
	return &Summary{
		Title:    title,
		Summary:  "No content available",
		Keywords: []string{},
		Model:    extractiveModel,
	}
}

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func truncateTo(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
