package factcheck

import (
	"math/rand/v2"
	"strings"
)

// NoiseRange bounds the random value added to each raw score: [0, NoiseRange).
const NoiseRange = 2.0

// RandomSource yields uniformly distributed values in [0, 1).
type RandomSource interface {
	Float64() float64
}

type processRandom struct{}

func (processRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom is the process-wide generator. It is safe for concurrent use.
var DefaultRandom RandomSource = processRandom{}

// ScoreResult holds the two competing confidences, each in [0, 100].
type ScoreResult struct {
	FakeConfidence float64 `json:"fake_confidence"`
	RealConfidence float64 `json:"real_confidence"`
}

// Scorer turns free text into fake/real confidences.
type Scorer struct {
	rng RandomSource
}

// NewScorer constructs a scorer. A nil source falls back to DefaultRandom.
func NewScorer(rng RandomSource) *Scorer {
	if rng == nil {
		rng = DefaultRandom
	}
	return &Scorer{rng: rng}
}

// Score counts whole-word indicator hits and perturbs both counts with noise
// before normalizing them against each other. The noise simulates model
// uncertainty and is part of the observable behaviour.
func (s *Scorer) Score(text string) ScoreResult {
	if strings.TrimSpace(text) == "" {
		return ScoreResult{FakeConfidence: 50, RealConfidence: 50}
	}

	lowered := strings.ToLower(text)
	fakeScore := float64(countWholeWords(lowered, fakePatterns))
	realScore := float64(countWholeWords(lowered, realPatterns))

	fakeScore += s.noise()
	realScore += s.noise()

	total := fakeScore + realScore
	if total <= 0 {
		return ScoreResult{FakeConfidence: 50, RealConfidence: 50}
	}
	return ScoreResult{
		FakeConfidence: fakeScore / total * 100,
		RealConfidence: realScore / total * 100,
	}
}

func (s *Scorer) noise() float64 {
	v := s.rng.Float64()
	if v < 0 || v >= 1 {
		v = 0
	}
	return v * NoiseRange
}
