package editlearn

import (
	"strings"

	"github.com/quillworks/quill/pkg/textstat"
)

// Marker tables for edit classification. A span touching any of these is a
// structural edit; everything else is a cosmetic word swap.
var (
	greetingMarkers = []string{
		"hi", "hello", "hey", "dear", "greetings", "good morning",
		"good afternoon", "to whom it may concern",
	}

	formalMarkers = []string{
		"sincerely", "regards", "furthermore", "moreover", "therefore",
		"consequently", "pursuant", "accordingly", "i would be delighted",
		"per your", "kindly",
	}

	casualMarkers = []string{
		"gonna", "wanna", "yeah", "honestly", "btw", "stuff",
		"no worries", "sounds good", "pretty much", "super", "awesome",
	}
)

// Classify tags a set of change spans as structural or cosmetic.
// Greeting, formality, and tone changes are structural; so is any span
// that rewrites more than a few words at once, since wholesale rewording
// changes voice rather than vocabulary.
func Classify(spans []ChangeSpan) Classification {
	for _, span := range spans {
		if isStructural(span) {
			return ClassificationStructural
		}
	}
	return ClassificationCosmetic
}

const structuralSpanWords = 6

func isStructural(span ChangeSpan) bool {
	removed := strings.ToLower(span.Removed)
	added := strings.ToLower(span.Added)

	for _, markers := range [][]string{greetingMarkers, formalMarkers, casualMarkers} {
		for _, m := range markers {
			if containsWord(removed, m) != containsWord(added, m) {
				return true
			}
		}
	}

	if len(strings.Fields(removed)) >= structuralSpanWords ||
		len(strings.Fields(added)) >= structuralSpanWords {
		return true
	}

	return false
}

func containsWord(text, marker string) bool {
	if text == "" {
		return false
	}
	if strings.Contains(marker, " ") {
		return strings.Contains(text, marker)
	}
	for _, w := range strings.Fields(text) {
		if strings.Trim(w, ".,!?;:'\"") == marker {
			return true
		}
	}
	return false
}

// FormalityDirection reads the net formality movement of a span set:
// positive when formal markers were added or casual markers removed,
// negative for the reverse, zero when mixed or absent.
func FormalityDirection(spans []ChangeSpan) int {
	direction := 0
	for _, span := range spans {
		removed := strings.ToLower(span.Removed)
		added := strings.ToLower(span.Added)

		for _, m := range formalMarkers {
			if containsWord(added, m) && !containsWord(removed, m) {
				direction++
			}
			if containsWord(removed, m) && !containsWord(added, m) {
				direction--
			}
		}
		for _, m := range casualMarkers {
			if containsWord(added, m) && !containsWord(removed, m) {
				direction--
			}
			if containsWord(removed, m) && !containsWord(added, m) {
				direction++
			}
		}
	}

	switch {
	case direction > 0:
		return 1
	case direction < 0:
		return -1
	default:
		return 0
	}
}

// A fragment is a complete sentence short enough to lack a full clause.
const fragmentSentenceWords = 4

// FragmentDirection reports whether the edits add (+1) or strip (-1)
// sentence fragments, zero when neither dominates. Only punctuated
// sentences count; a bare word swap is never a fragment.
func FragmentDirection(spans []ChangeSpan) int {
	direction := 0
	for _, span := range spans {
		direction += countFragments(span.Added) - countFragments(span.Removed)
	}

	switch {
	case direction > 0:
		return 1
	case direction < 0:
		return -1
	default:
		return 0
	}
}

func countFragments(text string) int {
	n := 0
	for _, s := range textstat.Sentences(text) {
		if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
			continue
		}
		if words := len(strings.Fields(s)); words > 0 && words <= fragmentSentenceWords {
			n++
		}
	}
	return n
}

// CasualAsideDirection reports whether the edits add (+1) or strip (-1)
// casual asides, zero when neither dominates.
func CasualAsideDirection(spans []ChangeSpan) int {
	direction := 0
	for _, span := range spans {
		removed := strings.ToLower(span.Removed)
		added := strings.ToLower(span.Added)
		for _, m := range casualMarkers {
			if containsWord(added, m) && !containsWord(removed, m) {
				direction++
			}
			if containsWord(removed, m) && !containsWord(added, m) {
				direction--
			}
		}
	}

	switch {
	case direction > 0:
		return 1
	case direction < 0:
		return -1
	default:
		return 0
	}
}
