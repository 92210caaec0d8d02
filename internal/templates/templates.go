// Package templates holds the fixed catalog of hook formulas and proposal
// skeletons, plus the selection policy that pairs a job posting with an
// opening strategy. Selection is rule-based on job type with a randomized
// tie-break so repeated proposals never share a structural fingerprint.
package templates

import (
	"errors"
	"fmt"
	"net/http"
)

// Hook identifies an opening-paragraph formula.
type Hook string

// The five hook formulas. The enumeration is fixed.
const (
	HookQuestion     Hook = "question"
	HookPainPoint    Hook = "pain_point"
	HookCredential   Hook = "credential"
	HookOutcome      Hook = "outcome"
	HookMutualGround Hook = "mutual_ground"
)

// TemplateID identifies one catalog entry: a hook paired with a paragraph
// count, e.g. "pain_point-4".
type TemplateID string

// Template is one entry in the fixed catalog. OpeningMarkers are the
// surface patterns the quality scorer matches the first sentences against.
type Template struct {
	ID             TemplateID `json:"id"`
	Hook           Hook       `json:"hook"`
	Paragraphs     int        `json:"paragraphs"`
	Instruction    string     `json:"instruction"`
	OpeningMarkers []string   `json:"opening_markers"`
}

// Skeleton paragraph-count bounds. Every template uses 3 to 5 paragraphs.
const (
	MinParagraphs = 3
	MaxParagraphs = 5
)

// ErrUnknownTemplate indicates a template id outside the catalog.
var ErrUnknownTemplate = errors.New("unknown template")

var hookInstructions = map[Hook]string{
	HookQuestion: "Open with a pointed question about the client's goal " +
		"that shows you read the posting, then answer it with your approach.",
	HookPainPoint: "Open by naming the client's stated pain point in their " +
		"own vocabulary and what resolving it would change for them.",
	HookCredential: "Open with your single most relevant credential or " +
		"past result for this exact kind of work. One sentence, specific.",
	HookOutcome: "Open by describing the finished outcome the client will " +
		"have, concretely, as if it already shipped.",
	HookMutualGround: "Open with a genuine point of connection to the " +
		"client's domain or product before talking about yourself.",
}

var hookMarkers = map[Hook][]string{
	HookQuestion:     {"?"},
	HookPainPoint:    {"you mention", "you're dealing", "sounds like", "struggling", "frustrat", "stuck"},
	HookCredential:   {"i've", "i have", "years", "recently", "last", "built", "shipped", "delivered"},
	HookOutcome:      {"imagine", "picture", "you'll have", "you will have", "end result", "when this is done", "walks away"},
	HookMutualGround: {"i noticed", "i've followed", "as someone", "i also", "like you"},
}

func buildCatalog() []Template {
	hooks := []Hook{HookQuestion, HookPainPoint, HookCredential, HookOutcome, HookMutualGround}

	var catalog []Template
	for _, h := range hooks {
		for p := MinParagraphs; p <= MaxParagraphs; p++ {
			catalog = append(catalog, Template{
				ID:             TemplateID(fmt.Sprintf("%s-%d", h, p)),
				Hook:           h,
				Paragraphs:     p,
				Instruction:    hookInstructions[h],
				OpeningMarkers: hookMarkers[h],
			})
		}
	}
	return catalog
}

var catalog = buildCatalog()

var catalogByID = func() map[TemplateID]Template {
	m := make(map[TemplateID]Template, len(catalog))
	for _, t := range catalog {
		m[t.ID] = t
	}
	return m
}()

// All returns the full template catalog.
func All() []Template {
	return catalog
}

// Get returns the template for an id.
func Get(id TemplateID) (Template, error) {
	t, ok := catalogByID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return t, nil
}

// MapHTTPStatus maps template domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownTemplate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
