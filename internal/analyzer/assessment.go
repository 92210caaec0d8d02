package analyzer

import (
	"strings"

	"github.com/quillworks/quill/pkg/textstat"
)

// Rule weights for the opportunity assessment. The score starts at a
// neutral base and moves with explicit signals; it is a heuristic reading
// of the posting, not a prediction of outcome.
const (
	assessmentBase = 50

	budgetStatedBonus     = 20
	budgetNegotiableBonus = 5
	historyProvenBonus    = 20
	newClientPenalty      = 10
	vaguenessPenalty      = 25
)

var vagueMarkers = []string{
	"asap", "urgent", "easy job", "simple task", "quick job",
	"ninja", "rockstar", "guru", "unlimited revisions", "exposure",
	"will pay later", "tbd",
}

// assess applies the rule table over budget, client-history, and vagueness
// signals. Flags name each rule that fired so the caller can show why.
func assess(analysis *JobAnalysis, jobPostText string) Assessment {
	score := assessmentBase
	flags := []string{}
	lower := strings.ToLower(jobPostText)

	switch budgetKind(analysis.BudgetSignal) {
	case "stated":
		score += budgetStatedBonus
	case "negotiable":
		score += budgetNegotiableBonus
	default:
		score -= newClientPenalty
		flags = append(flags, "no budget stated")
	}

	history := strings.ToLower(analysis.ClientHistory)
	switch {
	case strings.Contains(history, "new"):
		score -= newClientPenalty
		flags = append(flags, "new client")
	case history != "" && history != "none":
		score += historyProvenBonus
	}

	if vague(lower, analysis) {
		score -= vaguenessPenalty
		flags = append(flags, "vague posting")
	}

	for _, marker := range vagueMarkers {
		if strings.Contains(lower, marker) {
			flags = append(flags, "red flag: "+marker)
			score -= 5
		}
	}

	score = int(textstat.Clamp(float64(score), 0, 100))

	return Assessment{
		Score:      score,
		Flags:      flags,
		Confidence: analysis.Confidence,
	}
}

func budgetKind(signal string) string {
	s := strings.ToLower(signal)
	switch {
	case s == "" || s == "none":
		return "none"
	case strings.Contains(s, "negotiable"):
		return "negotiable"
	default:
		return "stated"
	}
}

// vague reports whether the posting lacks concrete, extractable asks
// relative to its length.
func vague(lowerText string, analysis *JobAnalysis) bool {
	if len(analysis.Requirements) == 0 {
		return true
	}
	words := len(textstat.Words(lowerText))
	return words > 50 && len(analysis.Requirements) == 1
}
