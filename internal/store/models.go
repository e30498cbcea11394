package store

import (
	"encoding/json"
	"strings"
	"time"

	"vachan/backend/internal/factcheck"
)

// FactCheck is one completed fact-check kept for the history and stats views.
type FactCheck struct {
	ID               string `gorm:"primaryKey;size:36"`
	Fingerprint      string `gorm:"size:32;index"`
	TextPreview      string `gorm:"size:512"`
	Title            string `gorm:"size:512"`
	Source           string `gorm:"size:256"`
	Classification   string `gorm:"size:16;index"`
	Confidence       int
	Explanation      string `gorm:"type:text"`
	FactualJSON      string `gorm:"type:text"`
	QuestionableJSON string `gorm:"type:text"`
	ModelUsed        string `gorm:"size:64;index"`
	Fallback         bool   `gorm:"index"`
	ProcessingTimeMs int64
	AnalysisTime     time.Time `gorm:"index"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

// SetKeywords stores both keyword lists as JSON.
func (f *FactCheck) SetKeywords(k factcheck.Keywords) {
	f.FactualJSON = encodeList(k.Factual)
	f.QuestionableJSON = encodeList(k.Questionable)
}

// Keywords decodes the stored keyword lists.
func (f *FactCheck) Keywords() factcheck.Keywords {
	return factcheck.Keywords{
		Factual:      decodeList(f.FactualJSON),
		Questionable: decodeList(f.QuestionableJSON),
	}
}

// Report rebuilds the verdict as it was returned to the caller.
func (f *FactCheck) Report() factcheck.Report {
	label, ok := factcheck.ParseLabel(f.Classification)
	if !ok {
		label = factcheck.LabelUnverified
	}
	return factcheck.Report{
		Classification: label,
		Confidence:     f.Confidence,
		Explanation:    f.Explanation,
		Keywords:       f.Keywords(),
		ModelUsed:      f.ModelUsed,
		AnalysisTime:   f.AnalysisTime,
	}
}

// NewFactCheck builds a history row from a report.
func NewFactCheck(report factcheck.Report, fingerprint, preview, title, source string, processingMs int64) *FactCheck {
	row := &FactCheck{
		Fingerprint:      fingerprint,
		TextPreview:      preview,
		Title:            strings.TrimSpace(title),
		Source:           strings.TrimSpace(source),
		Classification:   string(report.Classification),
		Confidence:       report.Confidence,
		Explanation:      report.Explanation,
		ModelUsed:        report.ModelUsed,
		Fallback:         report.IsFallback(),
		ProcessingTimeMs: processingMs,
		AnalysisTime:     report.AnalysisTime,
	}
	row.SetKeywords(report.Keywords)
	return row
}

func encodeList(items []string) string {
	if items == nil {
		return "[]"
	}
	payload, _ := json.Marshal(items)
	return string(payload)
}

func decodeList(raw string) []string {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
