package factcheck

import (
	"regexp"
	"strings"
)

var (
	fakeIndicators = [...]string{"false", "fake", "hoax", "conspiracy", "clickbait", "misleading", "rumor"}
	realIndicators = [...]string{"verified", "confirmed", "official", "research", "study", "evidence", "proven"}

	fakePatterns = compileWholeWord(fakeIndicators[:])
	realPatterns = compileWholeWord(realIndicators[:])
)

// FakeIndicators returns a copy of the words associated with false content.
func FakeIndicators() []string {
	return append([]string(nil), fakeIndicators[:]...)
}

// RealIndicators returns a copy of the words associated with credible content.
func RealIndicators() []string {
	return append([]string(nil), realIndicators[:]...)
}

func compileWholeWord(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return out
}

// countWholeWords sums whole-word hits of every pattern in lowered text.
func countWholeWords(lowered string, patterns []*regexp.Regexp) int {
	total := 0
	for _, re := range patterns {
		total += len(re.FindAllStringIndex(lowered, -1))
	}
	return total
}

// containedKeywords returns, in table order, the words that occur anywhere in
// lowered text. This is a plain substring test, so "proven" also matches
// "unproven"; scoring uses whole words instead.
func containedKeywords(lowered string, words []string) []string {
	out := make([]string, 0, len(words))
	for _, word := range words {
		if strings.Contains(lowered, word) {
			out = append(out, word)
		}
	}
	return out
}
