// Package scoring evaluates generated proposal text against the job analysis
// and selected template. Scoring is pure: the same inputs always produce the
// same QualityScore, and nothing here touches the network, the clock, or the
// database. The pipeline re-scores after every recorded edit with the same
// function it used at generation time.
package scoring

import (
	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/templates"
)

// AIRisk labels how likely the text is to trip AI-content detection.
type AIRisk string

// AI detection risk levels.
const (
	RiskLow    AIRisk = "low"
	RiskMedium AIRisk = "medium"
	RiskHigh   AIRisk = "high"
)

// Category is the human-facing quality band for an aggregate score.
type Category string

// Quality categories, keyed off the aggregate score.
const (
	CategoryExcellent Category = "excellent"
	CategoryGreat     Category = "great"
	CategoryGood      Category = "good"
	CategoryFair      Category = "fair"
	CategoryNeedsWork Category = "needs_work"
)

// QualityScore is the full evaluation of one proposal text. The numeric
// sub-scores are in [0,10]; Aggregate is their mean.
type QualityScore struct {
	Personalization float64  `json:"personalization"`
	Hook            float64  `json:"hook"`
	Structure       float64  `json:"structure"`
	AIRisk          AIRisk   `json:"ai_risk"`
	Aggregate       float64  `json:"aggregate"`
	Category        Category `json:"category"`
}

// Score evaluates proposal text against the analysis it was generated from
// and the template that shaped it.
func Score(text string, analysis analyzer.JobAnalysis, template templates.Template) QualityScore {
	p := scorePersonalization(text, analysis)
	h := scoreHook(text, template)
	s := scoreStructure(text, template)

	agg := (p + h + s) / 3

	return QualityScore{
		Personalization: p,
		Hook:            h,
		Structure:       s,
		AIRisk:          assessRisk(text),
		Aggregate:       agg,
		Category:        Categorize(agg),
	}
}

// Categorize maps an aggregate score onto its quality band.
func Categorize(aggregate float64) Category {
	switch {
	case aggregate >= 9.0:
		return CategoryExcellent
	case aggregate >= 8.0:
		return CategoryGreat
	case aggregate >= 7.0:
		return CategoryGood
	case aggregate >= 6.0:
		return CategoryFair
	default:
		return CategoryNeedsWork
	}
}
