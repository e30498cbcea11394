package factcheck

import (
	"strings"
	"time"
)

// FallbackModel tags reports produced by the keyword heuristic.
const FallbackModel = "Fallback Simulation"

// Fallback is the local heuristic checker used when the remote model is
// unavailable or returns something unusable.
type Fallback struct {
	scorer *Scorer
	now    func() time.Time
}

// NewFallback wires a fallback checker around the supplied random source.
func NewFallback(rng RandomSource) *Fallback {
	return &Fallback{
		scorer: NewScorer(rng),
		now:    time.Now,
	}
}

// Check scores the request text and assembles a report. Title and source are
// accepted for parity with the remote path but do not affect the verdict.
func (f *Fallback) Check(req Request) Report {
	score := f.scorer.Score(req.Text)
	verdict := Classify(score)

	lowered := strings.ToLower(req.Text)
	return Report{
		Classification: verdict.Label,
		Confidence:     verdict.Confidence,
		Explanation:    Explain(verdict.Label),
		Keywords: Keywords{
			Factual:      containedKeywords(lowered, realIndicators[:]),
			Questionable: containedKeywords(lowered, fakeIndicators[:]),
		},
		ModelUsed:    FallbackModel,
		AnalysisTime: f.now().UTC(),
	}
}
