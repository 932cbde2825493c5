package extract

import (
	"regexp"
	"strings"
)

// noisePatterns match boilerplate that readability extraction tends to
// leave behind: share buttons, reading-time badges, legal footers.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Share on \w+`),
	regexp.MustCompile(`(?i)Copyright ©.*?reserved`),
	regexp.MustCompile(`(?i)\d+ (?:min|minute|hour)s? read`),
	regexp.MustCompile(`(?i)Follow us on \w+`),
	regexp.MustCompile(`(?i)Click to share`),
	regexp.MustCompile(`(?i)Terms of (?:Use|Service)`),
	regexp.MustCompile(`(?i)Privacy Policy`),
	regexp.MustCompile(`(?i)Cookie Policy`),
	regexp.MustCompile(`(?i)All Rights Reserved`),
	regexp.MustCompile(`(?i)Advertisement`),
}

var spaceRun = regexp.MustCompile(`\s+`)

// Clean strips boilerplate phrases from extracted text and keeps only
// lines long enough, or punctuated enough, to be article prose.
func Clean(text string) string {
	for _, p := range noisePatterns {
		text = p.ReplaceAllString(text, "")
	}

	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if len(line) > 40 || strings.HasSuffix(line, ".") {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
