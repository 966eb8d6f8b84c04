package summary

import (
	"regexp"
	"strings"
)

const (
	defaultMaxSentences = 8
	// Sentences at or under this length are treated as noise.
	minSentenceLen = 20
	// Raw-text truncation length when no sentences survive filtering.
	rawTruncateLen = 500

	noContentMessage = "No content available to summarize."
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`([.!?])\s+`)
)

// Local is the deterministic extractive summarizer: normalize whitespace,
// split into sentences at terminal punctuation, drop short sentences, keep
// the first maxSentences survivors. Same input always yields same output.
func Local(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = defaultMaxSentences
	}

	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return noContentMessage
	}

	sentences := splitSentences(text)

	var kept []string
	for _, s := range sentences {
		if len(s) > minSentenceLen {
			kept = append(kept, s)
			if len(kept) == maxSentences {
				break
			}
		}
	}
	if len(kept) == 0 {
		if r := []rune(text); len(r) > rawTruncateLen {
			return string(r[:rawTruncateLen]) + "..."
		}
		return text
	}
	return strings.Join(kept, " ")
}

// splitSentences breaks text at sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceRe.ReplaceAllString(text, "$1\x00")
	return strings.Split(marked, "\x00")
}
