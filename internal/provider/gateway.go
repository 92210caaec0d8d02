package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillworks/quill/internal/ledger"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 250 * time.Millisecond
	backoffFactor      = 4
)

// Gateway routes completion requests to tier backends with bounded retry,
// exponential backoff, and extraction-tier response caching.
type Gateway struct {
	tiers       map[Tier]tierBackend
	cache       Cache
	cacheTTL    time.Duration
	maxAttempts int
	backoffBase time.Duration
	logger      *slog.Logger
}

type tierBackend struct {
	client   Client
	settings TierSettings
}

// GatewayOption customizes gateway construction.
type GatewayOption func(*Gateway)

// WithCache sets the extraction-tier response cache.
func WithCache(cache Cache, ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.cache = cache
		g.cacheTTL = ttl
	}
}

// WithRetry overrides the retry bound and backoff base.
func WithRetry(maxAttempts int, backoffBase time.Duration) GatewayOption {
	return func(g *Gateway) {
		if maxAttempts > 0 {
			g.maxAttempts = maxAttempts
		}
		if backoffBase > 0 {
			g.backoffBase = backoffBase
		}
	}
}

// NewGateway creates a gateway over the two tier backends.
func NewGateway(
	extraction, generation Client,
	extractionSettings, generationSettings TierSettings,
	logger *slog.Logger,
	opts ...GatewayOption,
) *Gateway {
	g := &Gateway{
		tiers: map[Tier]tierBackend{
			TierExtraction: {client: extraction, settings: extractionSettings},
			TierGeneration: {client: generation, settings: generationSettings},
		},
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		logger:      logger.With("system", "provider"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// EstimateCost predicts the cost of a request before dispatch.
func (g *Gateway) EstimateCost(tier Tier, prompt string, maxTokens int) (ledger.CostMicros, error) {
	backend, ok := g.tiers[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}
	return backend.settings.EstimateCost(prompt, maxTokens), nil
}

// ActualCost prices a completed response for the given tier.
func (g *Gateway) ActualCost(tier Tier, c *Completion) ledger.CostMicros {
	backend, ok := g.tiers[tier]
	if !ok {
		return 0
	}
	return backend.settings.ActualCost(c)
}

// Complete dispatches a request to its tier backend. Transient failures are
// retried up to the attempt bound with exponential backoff; fatal failures
// and context cancellation surface immediately. Extraction-tier responses
// are cached by request key; the generation tier is never cached.
func (g *Gateway) Complete(ctx context.Context, req Request) (*Completion, error) {
	backend, ok := g.tiers[req.Tier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTier, req.Tier)
	}

	cacheable := req.Tier == TierExtraction && req.CacheKey != "" && g.cache != nil
	if cacheable {
		if text, ok := g.cacheGet(ctx, req.CacheKey); ok {
			g.logger.Debug("extraction cache hit", "key", req.CacheKey)
			return &Completion{Text: text, Cached: true}, nil
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = backend.settings.MaxTokens
	}

	completion, err := g.completeWithRetry(ctx, backend.client, req, maxTokens)
	if err != nil {
		return nil, err
	}

	if cacheable {
		g.cachePut(ctx, req.CacheKey, completion.Text)
	}

	return completion, nil
}

func (g *Gateway) completeWithRetry(
	ctx context.Context,
	client Client,
	req Request,
	maxTokens int,
) (*Completion, error) {
	var lastErr error
	backoff := g.backoffBase

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt > 1 {
			g.logger.Info(
				"retrying provider call",
				"tier", req.Tier,
				"attempt", attempt,
				"backoff", backoff,
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= backoffFactor
		}

		completion, err := client.Complete(ctx, req.Prompt, maxTokens)
		if err == nil {
			if completion == nil || completion.Text == "" {
				return nil, ErrEmptyCompletion
			}
			return completion, nil
		}

		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("provider retries exhausted after %d attempts: %w", g.maxAttempts, lastErr)
}

func (g *Gateway) cacheGet(ctx context.Context, key string) (string, bool) {
	text, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("cache read failed", "key", key, "error", err)
		return "", false
	}
	return text, ok
}

func (g *Gateway) cachePut(ctx context.Context, key, text string) {
	if err := g.cache.Set(ctx, key, text, g.cacheTTL); err != nil {
		g.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
