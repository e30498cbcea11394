package ai

import (
	"context"
	"errors"
	"time"

	"vachan/backend/internal/factcheck"
)

// Provider names a remote model backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Config holds remote model configuration parameters.
type Config struct {
	Provider      Provider
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
}

var ErrDisabled = errors.New("ai model disabled")

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Prompt is a provider-neutral generation request.
type Prompt struct {
	System      string
	Messages    []Message
	Temperature float32
	TopP        float32
	MaxTokens   int
	JSON        bool
}

// Generator produces raw text from a remote model.
type Generator interface {
	Model() string
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Checker classifies content with a remote model.
type Checker interface {
	Enabled() bool
	Model() string
	Check(ctx context.Context, req factcheck.Request) (factcheck.Report, error)
}

// verdictPayload is the JSON object the model is asked to return.
type verdictPayload struct {
	Classification string   `json:"classification"`
	Confidence     *float64 `json:"confidence"`
	Explanation    string   `json:"explanation"`
	Keywords       struct {
		Factual      []string `json:"factual"`
		Questionable []string `json:"questionable"`
	} `json:"keywords"`
}
