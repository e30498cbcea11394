package factcheck

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

type constRandom float64

func (c constRandom) Float64() float64 { return float64(c) }

type countingRandom struct {
	value float64
	calls int
}

func (c *countingRandom) Float64() float64 {
	c.calls++
	return c.value
}

type seqRandom struct {
	values []float64
	next   int
}

func (s *seqRandom) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func TestScoreBlankInput(t *testing.T) {
	for _, text := range []string{"", " ", "\n\t  "} {
		rng := &countingRandom{value: 0.7}
		got := NewScorer(rng).Score(text)
		if got.FakeConfidence != 50 || got.RealConfidence != 50 {
			t.Fatalf("%q: expected 50/50 got %v", text, got)
		}
		if rng.calls != 0 {
			t.Fatalf("%q: noise consumed %d times", text, rng.calls)
		}
		if v := Classify(got); v.Label != LabelUnverified || v.Confidence != 50 {
			t.Fatalf("%q: expected unverified/50 got %+v", text, v)
		}
	}
}

func TestScoreWholeWordCounts(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantFake float64
		wantReal float64
	}{
		{"no hits", "The sky is blue.", 50, 50},
		{"one real", "It was confirmed.", 0, 100},
		{"case insensitive", "HOAX hoax Hoax", 100, 0},
		{"mixed", "a rumor backed by evidence and research", 100.0 / 3, 200.0 / 3},
		{"substrings ignored", "unproven falsehoods and hoaxes", 50, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NewScorer(constRandom(0)).Score(tc.text)
			if !closeTo(got.FakeConfidence, tc.wantFake) || !closeTo(got.RealConfidence, tc.wantReal) {
				t.Fatalf("expected %.2f/%.2f got %.2f/%.2f", tc.wantFake, tc.wantReal, got.FakeConfidence, got.RealConfidence)
			}
		})
	}
}

func TestScoreAddsIndependentNoise(t *testing.T) {
	rng := &seqRandom{values: []float64{0.5, 0}}
	got := NewScorer(rng).Score("nothing to see")
	// fake gets 1.0, real gets 0.0
	if !closeTo(got.FakeConfidence, 100) || !closeTo(got.RealConfidence, 0) {
		t.Fatalf("unexpected confidences %+v", got)
	}
	if rng.next != 2 {
		t.Fatalf("expected two noise draws, got %d", rng.next)
	}
}

func TestRealOnlyNeverFalse(t *testing.T) {
	texts := []string{
		"It was confirmed.",
		"Officials said the study is official.",
		"proven by evidence",
	}
	for _, text := range texts {
		for _, noise := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
			score := NewScorer(constRandom(noise)).Score(text)
			if score.RealConfidence <= score.FakeConfidence {
				t.Fatalf("%q noise %.3f: real %.2f not above fake %.2f", text, noise, score.RealConfidence, score.FakeConfidence)
			}
			if v := Classify(score); v.Label == LabelFalse {
				t.Fatalf("%q noise %.3f: classified false", text, noise)
			}
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		score ScoreResult
		want  Verdict
	}{
		{"tie", ScoreResult{50, 50}, Verdict{LabelUnverified, 50}},
		{"tie at zero", ScoreResult{0, 0}, Verdict{LabelUnverified, 50}},
		{"weak real", ScoreResult{45, 55}, Verdict{LabelUnverified, 55}},
		{"rounds to sixty but below", ScoreResult{40.4, 59.6}, Verdict{LabelUnverified, 60}},
		{"exactly sixty real", ScoreResult{40, 60}, Verdict{LabelMisleading, 60}},
		{"exactly sixty fake", ScoreResult{60, 40}, Verdict{LabelMisleading, 60}},
		{"just under seventy five", ScoreResult{25.1, 74.9}, Verdict{LabelMisleading, 75}},
		{"exactly seventy five real", ScoreResult{25, 75}, Verdict{LabelTrue, 75}},
		{"exactly seventy five fake", ScoreResult{75, 25}, Verdict{LabelFalse, 75}},
		{"strong fake", ScoreResult{91.6, 8.4}, Verdict{LabelFalse, 92}},
		{"certain real", ScoreResult{0, 100}, Verdict{LabelTrue, 100}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.score)
			if got != tc.want {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
			if again := Classify(tc.score); again != got {
				t.Fatalf("classification not stable: %+v then %+v", got, again)
			}
		})
	}
}

func TestExplainIsStable(t *testing.T) {
	seen := make(map[string]Label)
	for _, label := range Labels() {
		first := Explain(label)
		if first == "" {
			t.Fatalf("empty explanation for %s", label)
		}
		if prev, dup := seen[first]; dup {
			t.Fatalf("%s shares an explanation with %s", label, prev)
		}
		seen[first] = label
	}
	for i := len(Labels()) - 1; i >= 0; i-- {
		label := Labels()[i]
		if got := Explain(label); seen[got] != label {
			t.Fatalf("explanation for %s changed between calls", label)
		}
	}
	if Explain("bogus") != Explain(LabelUnverified) {
		t.Fatalf("unknown label should use the unverified explanation")
	}
}

func TestFallbackScenarios(t *testing.T) {
	fixed := time.Date(2025, 3, 7, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name             string
		text             string
		label            Label
		minConfidence    int
		exactConfidence  int
		wantFactual      []string
		wantQuestionable []string
	}{
		{
			name:          "strong real signal",
			text:          "This has been confirmed and verified by official research and study.",
			label:         LabelTrue,
			minConfidence: 60,
			wantFactual:   []string{"verified", "confirmed", "official", "research", "study"},
		},
		{
			name:             "strong fake signal",
			text:             "This is a total hoax and conspiracy, clearly fake and misleading clickbait.",
			label:            LabelFalse,
			minConfidence:    60,
			wantQuestionable: []string{"fake", "hoax", "conspiracy", "clickbait", "misleading"},
		},
		{
			name:            "no signal",
			text:            "The sky is blue.",
			label:           LabelUnverified,
			exactConfidence: 50,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFallback(constRandom(0.5))
			fb.now = func() time.Time { return fixed }

			report := fb.Check(Request{Text: tc.text, Title: "ignored", Source: "ignored"})
			if report.Classification != tc.label {
				t.Fatalf("expected %s got %s (%d)", tc.label, report.Classification, report.Confidence)
			}
			if tc.minConfidence > 0 && report.Confidence < tc.minConfidence {
				t.Fatalf("expected confidence >= %d got %d", tc.minConfidence, report.Confidence)
			}
			if tc.exactConfidence > 0 && report.Confidence != tc.exactConfidence {
				t.Fatalf("expected confidence %d got %d", tc.exactConfidence, report.Confidence)
			}
			if report.ModelUsed != FallbackModel || !report.IsFallback() {
				t.Fatalf("unexpected model tag %q", report.ModelUsed)
			}
			if !report.AnalysisTime.Equal(fixed) {
				t.Fatalf("unexpected analysis time %v", report.AnalysisTime)
			}
			if report.Explanation != Explain(tc.label) {
				t.Fatalf("explanation does not match label")
			}
			assertWords(t, "factual", report.Keywords.Factual, tc.wantFactual)
			assertWords(t, "questionable", report.Keywords.Questionable, tc.wantQuestionable)
		})
	}
}

func TestFallbackIgnoresTitleAndSource(t *testing.T) {
	fb := NewFallback(constRandom(0.3))
	plain := fb.Check(Request{Text: "A rumor"})
	dressed := fb.Check(Request{Text: "A rumor", Title: "verified official study", Source: "confirmed research"})
	if plain.Classification != dressed.Classification || plain.Confidence != dressed.Confidence {
		t.Fatalf("title/source changed verdict: %+v vs %+v", plain, dressed)
	}
	if len(dressed.Keywords.Factual) != 0 {
		t.Fatalf("title/source leaked into keywords: %v", dressed.Keywords.Factual)
	}
}

// Reported keywords use substring matching while scoring uses whole words.
// The two disagree on inflected or compound words; this pins the current
// behaviour until one rule is chosen.
func TestKeywordReportingUsesSubstrings(t *testing.T) {
	fb := NewFallback(constRandom(0.5))
	report := fb.Check(Request{Text: "The claim remains unproven and the falsehood spread."})

	assertWords(t, "factual", report.Keywords.Factual, []string{"proven"})
	assertWords(t, "questionable", report.Keywords.Questionable, []string{"false"})

	// Neither word counts toward the score, so the verdict is a tie.
	if report.Classification != LabelUnverified || report.Confidence != 50 {
		t.Fatalf("expected unverified/50 got %s/%d", report.Classification, report.Confidence)
	}
}

func TestIndicatorTablesAreCopies(t *testing.T) {
	words := FakeIndicators()
	words[0] = "mutated"
	if FakeIndicators()[0] != "false" {
		t.Fatalf("fake indicator table was mutated")
	}
	realWords := RealIndicators()
	realWords[0] = "mutated"
	if RealIndicators()[0] != "verified" {
		t.Fatalf("real indicator table was mutated")
	}
}

func TestRequestValidate(t *testing.T) {
	if err := (Request{}).Validate(); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText got %v", err)
	}
	if err := (Request{Text: "  "}).Validate(); err != nil {
		t.Fatalf("whitespace text should be accepted, got %v", err)
	}
}

func TestParseLabel(t *testing.T) {
	tests := map[string]Label{"TRUE": LabelTrue, " false ": LabelFalse, "Misleading": LabelMisleading, "unverified": LabelUnverified}
	for in, want := range tests {
		got, ok := ParseLabel(in)
		if !ok || got != want {
			t.Fatalf("%q: expected %s got %s (%v)", in, want, got, ok)
		}
	}
	if _, ok := ParseLabel("mostly true"); ok {
		t.Fatalf("unexpected label accepted")
	}
}

func assertWords(t *testing.T, name string, got, want []string) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s keywords must not be nil", name)
	}
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("%s keywords: expected %v got %v", name, want, got)
	}
}

func closeTo(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
