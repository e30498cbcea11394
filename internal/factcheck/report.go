package factcheck

import (
	"errors"
	"strings"
	"time"
)

// Label is the verdict assigned to a piece of content.
type Label string

const (
	LabelTrue       Label = "true"
	LabelFalse      Label = "false"
	LabelMisleading Label = "misleading"
	LabelUnverified Label = "unverified"
)

// Labels lists every verdict in display order.
func Labels() []Label {
	return []Label{LabelTrue, LabelFalse, LabelMisleading, LabelUnverified}
}

// ParseLabel accepts a label in any case and reports whether it is known.
func ParseLabel(value string) (Label, bool) {
	switch Label(strings.ToLower(strings.TrimSpace(value))) {
	case LabelTrue:
		return LabelTrue, true
	case LabelFalse:
		return LabelFalse, true
	case LabelMisleading:
		return LabelMisleading, true
	case LabelUnverified:
		return LabelUnverified, true
	default:
		return "", false
	}
}

// ErrNoText is returned when a request carries nothing to check.
var ErrNoText = errors.New("no text provided for fact-checking")

// Request is the input to both the remote and the heuristic checker.
type Request struct {
	Text   string `json:"text"`
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate rejects requests without text. Whitespace-only text is accepted
// and scores as maximally uncertain.
func (r Request) Validate() error {
	if r.Text == "" {
		return ErrNoText
	}
	return nil
}

// Keywords holds the supporting evidence surfaced with a verdict.
type Keywords struct {
	Factual      []string `json:"factual"`
	Questionable []string `json:"questionable"`
}

// Report is the verdict returned for one fact-check invocation.
type Report struct {
	Classification Label     `json:"classification"`
	Confidence     int       `json:"confidence"`
	Explanation    string    `json:"explanation"`
	Keywords       Keywords  `json:"keywords"`
	ModelUsed      string    `json:"modelUsed"`
	AnalysisTime   time.Time `json:"analysisTime"`
}

// IsFallback reports whether the report came from the heuristic path.
func (r Report) IsFallback() bool {
	return r.ModelUsed == FallbackModel
}
