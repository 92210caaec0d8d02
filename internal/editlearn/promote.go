package editlearn

import (
	"sort"
	"strings"
)

// Promotion tuning. A pattern must recur across minConsistent records of
// the same classification before it touches the profile; recency weighting
// means an evolving style overtakes a stale average.
const (
	formalityStep  = 0.5
	minPhraseWords = 2
	maxPhraseWords = 4
)

// Promote distills a consistent profile delta from the given edit records.
// Records are treated oldest-first; each older record's weight decays by
// the given factor relative to the next newer one. A pattern observed in
// fewer than minConsistent distinct records never promotes.
func Promote(records []EditRecord, minConsistent int, decay float64) *ProfileDelta {
	delta := &ProfileDelta{}
	if len(records) < minConsistent {
		return delta
	}

	sorted := make([]EditRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	promoteFormality(delta, sorted, minConsistent, decay)
	promoteFragments(delta, sorted, minConsistent)
	promoteAsides(delta, sorted, minConsistent)
	promotePhrases(delta, sorted, minConsistent)

	return delta
}

func recordWeight(index, total int, decay float64) float64 {
	weight := 1.0
	for i := total - 1; i > index; i-- {
		weight *= decay
	}
	return weight
}

func promoteFormality(delta *ProfileDelta, records []EditRecord, minConsistent int, decay float64) {
	var weighted float64
	matching := 0

	for i, rec := range records {
		if rec.Classification != ClassificationStructural {
			continue
		}
		dir := FormalityDirection(rec.Spans)
		if dir == 0 {
			continue
		}
		matching++
		weighted += float64(dir) * recordWeight(i, len(records), decay)
	}

	if matching >= minConsistent {
		if weighted > 0 {
			delta.FormalityShift = formalityStep
		} else if weighted < 0 {
			delta.FormalityShift = -formalityStep
		}
	}
}

func promoteFragments(delta *ProfileDelta, records []EditRecord, minConsistent int) {
	adds, strips := 0, 0
	for _, rec := range records {
		switch FragmentDirection(rec.Spans) {
		case 1:
			adds++
		case -1:
			strips++
		}
	}

	if adds >= minConsistent && adds > strips {
		enabled := true
		delta.Fragments = &enabled
	}
	if strips >= minConsistent && strips > adds {
		disabled := false
		delta.Fragments = &disabled
	}
}

func promoteAsides(delta *ProfileDelta, records []EditRecord, minConsistent int) {
	adds, strips := 0, 0
	for _, rec := range records {
		switch CasualAsideDirection(rec.Spans) {
		case 1:
			adds++
		case -1:
			strips++
		}
	}

	if adds >= minConsistent && adds > strips {
		enabled := true
		delta.CasualAsides = &enabled
	}
	if strips >= minConsistent && strips > adds {
		disabled := false
		delta.CasualAsides = &disabled
	}
}

// promotePhrases surfaces short phrases the user keeps introducing.
// A phrase counts once per record; it promotes when seen in at least
// minConsistent distinct records.
func promotePhrases(delta *ProfileDelta, records []EditRecord, minConsistent int) {
	counts := make(map[string]int)

	for _, rec := range records {
		seen := make(map[string]struct{})
		for _, span := range rec.Spans {
			for _, phrase := range candidatePhrases(span.Added) {
				if _, dup := seen[phrase]; dup {
					continue
				}
				seen[phrase] = struct{}{}
				counts[phrase]++
			}
		}
	}

	for phrase, n := range counts {
		if n >= minConsistent {
			if delta.Phrases == nil {
				delta.Phrases = make(map[string]int)
			}
			delta.Phrases[phrase] = n
		}
	}
}

func candidatePhrases(added string) []string {
	words := strings.Fields(strings.ToLower(added))
	for i, w := range words {
		words[i] = strings.Trim(w, ".,!?;:'\"")
	}

	var phrases []string
	for size := minPhraseWords; size <= maxPhraseWords; size++ {
		for i := 0; i+size <= len(words); i++ {
			phrases = append(phrases, strings.Join(words[i:i+size], " "))
		}
	}
	return phrases
}
