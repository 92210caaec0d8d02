package templates

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/profile"
)

// baseHooks maps each job type to the hooks that historically convert for
// that kind of work. Every set has at least two entries so selection always
// has a tie to break.
var baseHooks = map[analyzer.JobType][]Hook{
	analyzer.JobTypeWebDevelopment:    {HookPainPoint, HookOutcome, HookCredential},
	analyzer.JobTypeMobileDevelopment: {HookPainPoint, HookOutcome, HookCredential},
	analyzer.JobTypeDesign:            {HookOutcome, HookQuestion, HookCredential},
	analyzer.JobTypeWriting:           {HookQuestion, HookMutualGround, HookCredential},
	analyzer.JobTypeData:              {HookOutcome, HookCredential, HookPainPoint},
	analyzer.JobTypeMarketing:         {HookOutcome, HookQuestion, HookPainPoint},
	analyzer.JobTypeOther:             {HookQuestion, HookPainPoint, HookMutualGround},
}

// wideningHooks are added to the candidate set once the voice profile has
// enough history to carry less conventional openings.
var wideningHooks = []Hook{HookMutualGround, HookQuestion}

// Selector picks a template for a job analysis. Safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a selector seeded for non-deterministic tie-breaks.
// Tests pass a fixed seed to make selection reproducible.
func NewSelector(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// Candidates returns the hook set eligible for a job type at a given
// profile stage. Mature and learning profiles widen the set.
func Candidates(jobType analyzer.JobType, stage profile.Stage) []Hook {
	base, ok := baseHooks[jobType]
	if !ok {
		base = baseHooks[analyzer.JobTypeOther]
	}

	hooks := make([]Hook, len(base))
	copy(hooks, base)

	if stage == profile.StageLearning || stage == profile.StageMature {
		for _, w := range wideningHooks {
			if !containsHook(hooks, w) {
				hooks = append(hooks, w)
			}
		}
	}
	return hooks
}

// Select picks a template for the analysis. When several candidates remain
// after the rules apply, the tie is broken at random so back-to-back
// proposals for similar postings vary in shape.
func (s *Selector) Select(analysis analyzer.JobAnalysis, stage profile.Stage) Template {
	hooks := Candidates(analysis.JobType, stage)

	s.mu.Lock()
	hook := hooks[s.rng.Intn(len(hooks))]
	paragraphs := MinParagraphs + s.rng.Intn(MaxParagraphs-MinParagraphs+1)
	s.mu.Unlock()

	// Dense postings earn the longer skeletons; thin ones cap at four
	// paragraphs so the proposal never outweighs the job post.
	if len(analysis.Requirements) < 2 && paragraphs > 4 {
		paragraphs = 4
	}
	if len(analysis.Requirements) >= 4 && paragraphs < 4 {
		paragraphs = 4
	}

	t, _ := Get(TemplateID(fmt.Sprintf("%s-%d", hook, paragraphs)))
	return t
}

func containsHook(hooks []Hook, h Hook) bool {
	for _, c := range hooks {
		if c == h {
			return true
		}
	}
	return false
}
