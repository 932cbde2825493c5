package extract

import (
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,15}\b`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"by": {}, "about": {}, "as": {}, "into": {}, "like": {},
	"through": {}, "after": {}, "over": {}, "between": {}, "out": {},
	"of": {}, "during": {}, "without": {}, "before": {}, "under": {},
	"around": {}, "among": {},
}

// Keywords returns the n most frequent words in text, most frequent
// first and alphabetical within equal counts.
func Keywords(text string, n int) []string {
	counts := make(map[string]int)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, skip := stopWords[word]; skip {
			continue
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return words
}
