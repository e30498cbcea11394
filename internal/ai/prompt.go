package ai

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripMarkup = bluemonday.StrictPolicy()

// plainText removes any markup pasted along with an article and restores
// the entities the sanitizer escapes.
func plainText(in string) string {
	return strings.TrimSpace(html.UnescapeString(stripMarkup.Sanitize(in)))
}

const factCheckSystem = `You are an expert fact-checker. Analyze the supplied content and decide whether it contains accurate information.
Reply with a single JSON object and nothing else:
{
  "classification": "true|false|misleading|unverified",
  "confidence": number between 0 and 100,
  "explanation": "detailed reasoning for the classification",
  "keywords": {
    "factual": ["phrases that are accurate or well supported"],
    "questionable": ["phrases that are dubious or unsupported"]
  }
}`

func buildFactCheckPrompt(title, source, text string) string {
	title = plainText(title)
	if title == "" {
		title = "Untitled"
	}
	source = plainText(source)
	if source == "" {
		source = "Unknown"
	}
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "Title: %s\n", title)
	fmt.Fprintf(builder, "Source: %s\n", source)
	fmt.Fprintf(builder, "Content: %s\n", plainText(text))
	return builder.String()
}

// normalizeJSONBlock strips code fences and surrounding chatter from a model
// reply, leaving the outermost JSON object.
func normalizeJSONBlock(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.IndexRune(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if strings.HasSuffix(trimmed, "```") {
			trimmed = trimmed[:len(trimmed)-3]
		}
	}
	trimmed = strings.TrimSpace(trimmed)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return trimmed
}
