package ai

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

const chatSystem = `You are Aria Factbot, the assistant of the Vachan news and fact-checking platform.
Answer directly and clearly. When users paste an article or a claim, summarize it and point out:
- the main claims and arguments
- potential bias or misleading framing
- sources and credibility indicators
- key facts and statistics
- an overall assessment of reliability
Break complex topics into understandable parts and offer balanced perspectives on controversial subjects.
If you are unsure or your knowledge may be out of date, say so plainly.`

// maxChatHistory bounds how many trailing turns are forwarded to the model.
const maxChatHistory = 20

var (
	ErrNoMessages     = errors.New("no messages provided")
	assistantPrefix   = regexp.MustCompile(`(?i)^assistant:\s*`)
	excessiveNewlines = regexp.MustCompile(`\n{3,}`)
)

// Chatbot answers conversational questions about news and claims.
type Chatbot struct {
	gen     Generator
	timeout time.Duration
}

// NewChatbot wraps a generator. A nil generator yields a disabled chatbot.
func NewChatbot(gen Generator, timeout time.Duration) *Chatbot {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Chatbot{gen: gen, timeout: timeout}
}

func (b *Chatbot) Enabled() bool {
	return b != nil && b.gen != nil
}

func (b *Chatbot) Model() string {
	if !b.Enabled() {
		return ""
	}
	return b.gen.Model()
}

// Reply generates the assistant's next turn.
func (b *Chatbot) Reply(ctx context.Context, history []Message) (string, error) {
	turns := cleanHistory(history)
	if len(turns) == 0 || turns[len(turns)-1].Role != RoleUser {
		return "", ErrNoMessages
	}
	if !b.Enabled() {
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	text, err := b.gen.Generate(ctx, Prompt{
		System:      chatSystem,
		Messages:    turns,
		Temperature: 0.7,
		TopP:        0.95,
		MaxTokens:   4096,
	})
	if err != nil {
		return "", err
	}
	return tidyReply(text), nil
}

func cleanHistory(history []Message) []Message {
	out := make([]Message, 0, len(history))
	for _, msg := range history {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := RoleUser
		if strings.EqualFold(string(msg.Role), string(RoleAssistant)) || strings.EqualFold(string(msg.Role), "model") {
			role = RoleAssistant
		}
		out = append(out, Message{Role: role, Content: content})
	}
	if len(out) > maxChatHistory {
		out = out[len(out)-maxChatHistory:]
	}
	return out
}

func tidyReply(text string) string {
	text = strings.TrimSpace(text)
	text = assistantPrefix.ReplaceAllString(text, "")
	text = excessiveNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
