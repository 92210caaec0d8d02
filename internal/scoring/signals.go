package scoring

import (
	"strings"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/templates"
	"github.com/quillworks/quill/pkg/textstat"
)

// Ideal proposal length band in words. Scores fall off smoothly outside it
// rather than cliffing at the boundary.
const (
	idealWordsLow  = 150
	idealWordsHigh = 250
	wordsPerPoint  = 15
)

// scorePersonalization measures how much of the extracted job signal the
// proposal actually references, and how evenly those references spread
// across paragraphs. A proposal that front-loads every reference into the
// opening reads as templated.
func scorePersonalization(text string, analysis analyzer.JobAnalysis) float64 {
	terms := signalTerms(analysis)
	if len(terms) == 0 {
		// Degraded analysis gives nothing to reference; score neutral
		// rather than punishing the proposal for the posting's vagueness.
		return 5
	}

	lower := strings.ToLower(text)
	var refs int
	for _, term := range terms {
		if referencesTerm(lower, term) {
			refs++
		}
	}

	paragraphs := textstat.Paragraphs(text)
	var covered int
	for _, p := range paragraphs {
		lp := strings.ToLower(p)
		for _, term := range terms {
			if referencesTerm(lp, term) {
				covered++
				break
			}
		}
	}

	coverage := 0.0
	if len(paragraphs) > 0 {
		coverage = float64(covered) / float64(len(paragraphs))
	}

	return textstat.Clamp(textstat.Clamp(1.5*float64(refs), 0, 8)+2*coverage, 0, 10)
}

// scoreHook measures whether the opening follows the template's hook
// formula. The first sentence carries most of the weight; a hook buried
// mid-paragraph scores lower, and a long opening paragraph dilutes it.
func scoreHook(text string, template templates.Template) float64 {
	paragraphs := textstat.Paragraphs(text)
	if len(paragraphs) == 0 {
		return 0
	}

	opening := strings.ToLower(paragraphs[0])
	sentences := textstat.Sentences(paragraphs[0])
	firstSentence := ""
	if len(sentences) > 0 {
		firstSentence = strings.ToLower(sentences[0])
	}

	score := 3.0
	switch {
	case matchesAny(firstSentence, template.OpeningMarkers):
		score = 9
	case matchesAny(opening, template.OpeningMarkers):
		score = 7
	}

	// Punchy openings land better.
	if len(textstat.Words(paragraphs[0])) <= 60 {
		score++
	}

	return textstat.Clamp(score, 0, 10)
}

// scoreStructure measures length against the ideal word band and paragraph
// count against the skeleton the template prescribed.
func scoreStructure(text string, template templates.Template) float64 {
	words := len(textstat.Words(text))
	paragraphs := len(textstat.Paragraphs(text))

	wordScore := 10.0
	switch {
	case words < idealWordsLow:
		wordScore -= float64(idealWordsLow-words) / wordsPerPoint
	case words > idealWordsHigh:
		wordScore -= float64(words-idealWordsHigh) / wordsPerPoint
	}
	wordScore = textstat.Clamp(wordScore, 0, 10)

	diff := paragraphs - template.Paragraphs
	if diff < 0 {
		diff = -diff
	}

	var paraScore float64
	switch {
	case diff == 0:
		paraScore = 10
	case diff == 1 && paragraphs >= templates.MinParagraphs && paragraphs <= templates.MaxParagraphs:
		paraScore = 8
	default:
		paraScore = textstat.Clamp(10-3*float64(diff), 0, 10)
	}

	return (wordScore + paraScore) / 2
}

// Burstiness and lexical-diversity thresholds for AI detection risk.
// Uniform sentence lengths and a narrow vocabulary are the two strongest
// surface signals detectors key on.
const (
	varianceUniform = 3.0
	varianceFlat    = 8.0
	ttrNarrow       = 0.35
	ttrModest       = 0.5
)

func assessRisk(text string) AIRisk {
	variance := textstat.SentenceLengthVariance(text)
	ttr := textstat.TypeTokenRatio(text)

	var points int
	switch {
	case variance < varianceUniform:
		points += 2
	case variance < varianceFlat:
		points++
	}
	switch {
	case ttr < ttrNarrow:
		points += 2
	case ttr < ttrModest:
		points++
	}

	switch {
	case points >= 3:
		return RiskHigh
	case points >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

// signalTerms flattens the analysis into the set of phrases worth
// referencing in a proposal.
func signalTerms(analysis analyzer.JobAnalysis) []string {
	var terms []string
	for _, r := range analysis.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			terms = append(terms, strings.ToLower(r))
		}
	}
	for _, p := range analysis.PainPoints {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, strings.ToLower(p))
		}
	}
	return terms
}

// matchesAny reports whether lowered text contains any of the markers.
func matchesAny(lower string, markers []string) bool {
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// referencesTerm reports whether lowered text references the term, either
// verbatim or through a majority of its significant words.
func referencesTerm(lower, term string) bool {
	if strings.Contains(lower, term) {
		return true
	}

	var significant, matched int
	for _, w := range strings.Fields(term) {
		if len(w) < 4 {
			continue
		}
		significant++
		if strings.Contains(lower, w) {
			matched++
		}
	}

	return significant > 0 && matched*2 >= significant+1
}
