package api

import (
	"math"
	"time"

	"vachan/backend/internal/ai"
	"vachan/backend/internal/factcheck"
	"vachan/backend/internal/news"
	"vachan/backend/internal/store"
)

// FactCheckDTO is the API representation of a stored fact check.
type FactCheckDTO struct {
	ID               string             `json:"id"`
	TextPreview      string             `json:"textPreview"`
	Title            string             `json:"title,omitempty"`
	Source           string             `json:"source,omitempty"`
	Classification   factcheck.Label    `json:"classification"`
	Confidence       int                `json:"confidence"`
	Explanation      string             `json:"explanation"`
	Keywords         factcheck.Keywords `json:"keywords"`
	ModelUsed        string             `json:"modelUsed"`
	Fallback         bool               `json:"fallback"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
	AnalysisTime     time.Time          `json:"analysisTime"`
}

// FactCheckFromModel converts a history row.
func FactCheckFromModel(row store.FactCheck) FactCheckDTO {
	report := row.Report()
	return FactCheckDTO{
		ID:               row.ID,
		TextPreview:      row.TextPreview,
		Title:            row.Title,
		Source:           row.Source,
		Classification:   report.Classification,
		Confidence:       report.Confidence,
		Explanation:      report.Explanation,
		Keywords:         report.Keywords,
		ModelUsed:        report.ModelUsed,
		Fallback:         row.Fallback,
		ProcessingTimeMs: row.ProcessingTimeMs,
		AnalysisTime:     report.AnalysisTime,
	}
}

// RecentResponse lists stored fact checks newest first.
type RecentResponse struct {
	Items []FactCheckDTO `json:"items"`
	Total int64          `json:"total"`
}

// StatsDTO summarizes the stored history.
type StatsDTO struct {
	Total             int64            `json:"total"`
	ByClassification  map[string]int64 `json:"byClassification"`
	FallbackCount     int64            `json:"fallbackCount"`
	AverageConfidence float64          `json:"averageConfidence"`
}

// StatsFromModel fills every label so clients can render zero counts.
func StatsFromModel(stats store.Stats) StatsDTO {
	counts := make(map[string]int64, len(factcheck.Labels()))
	for _, label := range factcheck.Labels() {
		counts[string(label)] = 0
	}
	for label, n := range stats.ByClassification {
		counts[label] = n
	}
	return StatsDTO{
		Total:             stats.Total,
		ByClassification:  counts,
		FallbackCount:     stats.FallbackCount,
		AverageConfidence: math.Round(stats.AverageConfidence*10) / 10,
	}
}

// ChatRequest carries the conversation so far.
type ChatRequest struct {
	Messages []ai.Message `json:"messages"`
}

// ChatMetadata describes how a chat reply was produced.
type ChatMetadata struct {
	ModelUsed        string `json:"modelUsed"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Response string       `json:"response"`
	Metadata ChatMetadata `json:"metadata"`
}

// NewsResponse lists sample articles.
type NewsResponse struct {
	Items []news.Article `json:"items"`
	Total int            `json:"total"`
}

// TrendingResponse lists the most common hashtags in the feed.
type TrendingResponse struct {
	Topics []news.Topic `json:"topics"`
}

// ConfigResponse exposes the active checking setup.
type ConfigResponse struct {
	PrimaryEnabled bool              `json:"primaryEnabled"`
	PrimaryModel   string            `json:"primaryModel,omitempty"`
	FallbackModel  string            `json:"fallbackModel"`
	ChatEnabled    bool              `json:"chatEnabled"`
	Thresholds     ThresholdsDTO     `json:"thresholds"`
	Indicators     IndicatorsDTO     `json:"indicators"`
	Labels         []factcheck.Label `json:"labels"`
}

// ThresholdsDTO mirrors the classifier cut-offs.
type ThresholdsDTO struct {
	UnverifiedBelow float64 `json:"unverifiedBelow"`
	MisleadingBelow float64 `json:"misleadingBelow"`
	NoiseRange      float64 `json:"noiseRange"`
}

// IndicatorsDTO lists the heuristic keyword tables.
type IndicatorsDTO struct {
	Fake []string `json:"fake"`
	Real []string `json:"real"`
}
