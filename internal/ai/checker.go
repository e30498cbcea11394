package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"vachan/backend/internal/factcheck"
)

const defaultTimeout = 30 * time.Second

// ModelChecker implements Checker on top of a Generator.
type ModelChecker struct {
	gen     Generator
	timeout time.Duration
	now     func() time.Time
}

// NewModelChecker wraps a generator. A nil generator yields a disabled checker.
func NewModelChecker(gen Generator, timeout time.Duration) *ModelChecker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ModelChecker{gen: gen, timeout: timeout, now: time.Now}
}

// Enabled reports whether the checker can make outbound calls.
func (c *ModelChecker) Enabled() bool {
	return c != nil && c.gen != nil
}

func (c *ModelChecker) Model() string {
	if !c.Enabled() {
		return ""
	}
	return c.gen.Model()
}

// Check asks the remote model for a verdict and validates its reply.
func (c *ModelChecker) Check(ctx context.Context, req factcheck.Request) (factcheck.Report, error) {
	if !c.Enabled() {
		return factcheck.Report{}, ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.gen.Generate(ctx, Prompt{
		System:      factCheckSystem,
		Messages:    []Message{{Role: RoleUser, Content: buildFactCheckPrompt(req.Title, req.Source, req.Text)}},
		Temperature: 0.2,
		TopP:        0.8,
		MaxTokens:   1024,
		JSON:        true,
	})
	if err != nil {
		return factcheck.Report{}, err
	}

	report, err := parseReport(raw)
	if err != nil {
		return factcheck.Report{}, err
	}
	report.ModelUsed = c.gen.Model()
	report.AnalysisTime = c.now().UTC()
	return report, nil
}

func parseReport(raw string) (factcheck.Report, error) {
	content := normalizeJSONBlock(raw)
	if content == "" {
		return factcheck.Report{}, errors.New("model returned empty verdict")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return factcheck.Report{}, fmt.Errorf("parse model verdict: %w", err)
	}

	label, ok := factcheck.ParseLabel(payload.Classification)
	if !ok {
		return factcheck.Report{}, fmt.Errorf("model classification %q not recognised", payload.Classification)
	}
	if payload.Confidence == nil {
		return factcheck.Report{}, errors.New("model confidence missing")
	}
	explanation := strings.TrimSpace(payload.Explanation)
	if explanation == "" {
		return factcheck.Report{}, errors.New("model explanation missing")
	}

	return factcheck.Report{
		Classification: label,
		Confidence:     clampPercent(*payload.Confidence),
		Explanation:    explanation,
		Keywords: factcheck.Keywords{
			Factual:      cleanList(payload.Keywords.Factual),
			Questionable: cleanList(payload.Keywords.Questionable),
		},
	}, nil
}

func clampPercent(value float64) int {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return int(math.Round(value))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
