package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/provider"
	"github.com/quillworks/quill/pkg/formatting"
)

// Default input length bounds in characters.
const (
	DefaultMinLength = 80
	DefaultMaxLength = 10000
)

// completer is the slice of the provider gateway the analyzer needs.
type completer interface {
	Complete(ctx context.Context, req provider.Request) (*provider.Completion, error)
	ActualCost(tier provider.Tier, c *provider.Completion) ledger.CostMicros
}

// Analyzer validates and structures job posting text.
type Analyzer struct {
	gateway   completer
	logger    *slog.Logger
	minLength int
	maxLength int
}

// New creates an Analyzer over the given gateway.
func New(gateway completer, minLength, maxLength int, logger *slog.Logger) *Analyzer {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	return &Analyzer{
		gateway:   gateway,
		logger:    logger.With("system", "analyzer"),
		minLength: minLength,
		maxLength: maxLength,
	}
}

// Analyze structures the given job posting and returns the actual extraction
// cost (zero on a cache hit). Input outside the length bounds returns
// ErrTooShort or ErrTooLong. Extraction parse failures degrade to a
// low-confidence analysis with empty extracted fields; only provider
// failures surface as errors.
func (a *Analyzer) Analyze(ctx context.Context, jobPostText string) (*JobAnalysis, ledger.CostMicros, error) {
	if len(jobPostText) < a.minLength {
		return nil, 0, fmt.Errorf("%w: %d chars, need at least %d", ErrTooShort, len(jobPostText), a.minLength)
	}
	if len(jobPostText) > a.maxLength {
		return nil, 0, fmt.Errorf("%w: %d chars, limit %d", ErrTooLong, len(jobPostText), a.maxLength)
	}

	prompt := extractionPrompt(jobPostText)

	completion, err := a.gateway.Complete(ctx, provider.Request{
		Tier:     provider.TierExtraction,
		Prompt:   prompt,
		CacheKey: provider.CacheKey("job-extraction", jobPostText),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("extraction call: %w", err)
	}

	cost := a.gateway.ActualCost(provider.TierExtraction, completion)

	parsed, err := formatting.Parse[extractionResponse](completion.Text)
	if err != nil {
		a.logger.Warn("extraction parse failed, degrading to low confidence", "error", err)
		analysis := degradedAnalysis()
		return &analysis, cost, nil
	}

	analysis := JobAnalysis{
		Requirements:  parsed.Requirements,
		PainPoints:    parsed.PainPoints,
		BudgetSignal:  parsed.BudgetSignal,
		ClientHistory: parsed.ClientHistory,
		JobType:       parsed.JobType,
		Confidence:    assessConfidence(jobPostText, parsed),
	}
	if analysis.JobType == "" {
		analysis.JobType = JobTypeOther
	}
	analysis.Assessment = assess(&analysis, jobPostText)

	a.logger.Info(
		"job post analyzed",
		"job_type", analysis.JobType,
		"requirements", len(analysis.Requirements),
		"confidence", analysis.Confidence,
		"cached", completion.Cached,
	)

	return &analysis, cost, nil
}

// EstimatePrompt returns the extraction prompt for the given input so the
// orchestrator can include it in a cost estimate before dispatch.
func (a *Analyzer) EstimatePrompt(jobPostText string) string {
	return extractionPrompt(jobPostText)
}

func degradedAnalysis() JobAnalysis {
	analysis := JobAnalysis{
		Requirements:  []string{},
		PainPoints:    []string{},
		BudgetSignal:  "none",
		ClientHistory: "none",
		JobType:       JobTypeOther,
		Confidence:    ConfidenceLow,
	}
	analysis.Assessment = Assessment{
		Score:      0,
		Flags:      []string{"extraction unavailable"},
		Confidence: ConfidenceLow,
	}
	return analysis
}

// assessConfidence labels the analysis high only when the input was long
// enough to carry real signal and extraction found concrete requirements.
func assessConfidence(jobPostText string, parsed extractionResponse) Confidence {
	if len(jobPostText) >= 400 && len(parsed.Requirements) >= 2 {
		return ConfidenceHigh
	}
	return ConfidenceLow
}
