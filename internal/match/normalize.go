package match

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/OneOfOne/xxhash"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	tokenSplitter = regexp.MustCompile(`[^a-z0-9]+`)
)

const previewRunes = 160

// ClaimProfile captures the normalization output for a piece of content
// submitted for checking.
type ClaimProfile struct {
	Original    string
	Normalized  string
	Title       string
	Source      string
	Tokens      []string
	Preview     string
	Fingerprint string
}

// NormalizeClaim lower-cases and collapses whitespace so equivalent
// submissions share a fingerprint.
func NormalizeClaim(text, title, source string) ClaimProfile {
	normalized := collapse(text)
	normTitle := collapse(title)
	normSource := collapse(source)

	profile := ClaimProfile{
		Original:   text,
		Normalized: normalized,
		Title:      normTitle,
		Source:     normSource,
		Tokens:     tokenize(normalized),
		Preview:    Preview(text),
	}
	profile.Fingerprint = fingerprint(normalized, normTitle, normSource)
	return profile
}

// Preview shortens text for listings without splitting a rune.
func Preview(text string) string {
	trimmed := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if utf8.RuneCountInString(trimmed) <= previewRunes {
		return trimmed
	}
	runes := []rune(trimmed)
	return strings.TrimSpace(string(runes[:previewRunes])) + "…"
}

func collapse(in string) string {
	lower := strings.ToLower(strings.TrimSpace(in))
	return whitespaceRun.ReplaceAllString(lower, " ")
}

func tokenize(normalized string) []string {
	parts := tokenSplitter.Split(normalized, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func fingerprint(parts ...string) string {
	h := xxhash.New64()
	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.WriteString(p)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
