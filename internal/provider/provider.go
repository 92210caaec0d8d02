// Package provider implements the text-completion gateway. It exposes a
// uniform two-tier contract over interchangeable backends: an extraction
// tier tuned for latency and cost, and a generation tier tuned for quality.
package provider

import (
	"context"

	"github.com/quillworks/quill/internal/ledger"
)

// Tier identifies which completion backend a request targets.
type Tier string

// The two supported tiers. There are intentionally no others.
const (
	TierExtraction Tier = "extraction"
	TierGeneration Tier = "generation"
)

// Request carries a single completion request against a tier.
type Request struct {
	Tier      Tier
	Prompt    string
	MaxTokens int

	// CacheKey enables extraction-tier response caching when non-empty.
	// Generation-tier requests ignore it; generated text must vary.
	CacheKey string
}

// Completion is a provider response with observed token usage.
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	Cached       bool
}

// TierSettings configures one tier of a backend client.
type TierSettings struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	InputPricePer1K  ledger.CostMicros
	OutputPricePer1K ledger.CostMicros
}

// Client is a single-tier completion backend. Implementations must honor
// context cancellation by aborting the underlying network call.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (*Completion, error)
}

// estimateTokens approximates token count from character length. Four
// characters per token tracks English prose closely enough for budgeting.
func estimateTokens(text string) int64 {
	return int64(len(text)+3) / 4
}

// EstimateCost predicts the cost of a completion before dispatch, assuming
// the full output budget is consumed.
func (s TierSettings) EstimateCost(prompt string, maxTokens int) ledger.CostMicros {
	if maxTokens <= 0 {
		maxTokens = s.MaxTokens
	}

	in := estimateTokens(prompt)
	out := int64(maxTokens)

	return ledger.CostMicros(in)*s.InputPricePer1K/1000 +
		ledger.CostMicros(out)*s.OutputPricePer1K/1000
}

// ActualCost prices a completed response from observed token usage.
func (s TierSettings) ActualCost(c *Completion) ledger.CostMicros {
	if c == nil || c.Cached {
		return 0
	}
	return ledger.CostMicros(c.InputTokens)*s.InputPricePer1K/1000 +
		ledger.CostMicros(c.OutputTokens)*s.OutputPricePer1K/1000
}
