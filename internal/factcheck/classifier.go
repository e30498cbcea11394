package factcheck

import "math"

const (
	// UnverifiedBelow is the confidence under which no verdict is given.
	UnverifiedBelow = 60.0
	// MisleadingBelow is the confidence under which a true/false verdict is
	// softened to misleading.
	MisleadingBelow = 75.0
	// TieConfidence is reported when neither side wins.
	TieConfidence = 50
)

// Verdict is the classifier output.
type Verdict struct {
	Label      Label `json:"classification"`
	Confidence int   `json:"confidence"`
}

// Classify maps a pair of confidences to a label. It is total and
// deterministic over its inputs.
func Classify(score ScoreResult) Verdict {
	var (
		label     Label
		candidate float64
	)
	switch {
	case score.FakeConfidence > score.RealConfidence:
		label, candidate = LabelFalse, score.FakeConfidence
	case score.RealConfidence > score.FakeConfidence:
		label, candidate = LabelTrue, score.RealConfidence
	default:
		return Verdict{Label: LabelUnverified, Confidence: TieConfidence}
	}

	if candidate < UnverifiedBelow {
		label = LabelUnverified
	} else if candidate < MisleadingBelow {
		label = LabelMisleading
	}

	return Verdict{Label: label, Confidence: roundPercent(candidate)}
}

func roundPercent(value float64) int {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return int(math.Floor(value + 0.5))
}
