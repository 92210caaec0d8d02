package proposals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/editlearn"
	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/profile"
	"github.com/quillworks/quill/internal/provider"
	"github.com/quillworks/quill/internal/scoring"
	"github.com/quillworks/quill/internal/templates"
	"github.com/quillworks/quill/pkg/pagination"
)

// How many batch pipelines run concurrently, and how many recent edit
// records feed each learning pass.
const (
	batchConcurrency = 4
	learningWindow   = 20
)

// generator is the slice of the provider gateway the orchestrator needs.
type generator interface {
	Complete(ctx context.Context, req provider.Request) (*provider.Completion, error)
	EstimateCost(tier provider.Tier, prompt string, maxTokens int) (ledger.CostMicros, error)
	ActualCost(tier provider.Tier, c *provider.Completion) ledger.CostMicros
}

// jobAnalyzer is the slice of the analyzer the orchestrator needs.
type jobAnalyzer interface {
	Analyze(ctx context.Context, jobPostText string) (*analyzer.JobAnalysis, ledger.CostMicros, error)
	EstimatePrompt(jobPostText string) string
}

// voiceProfiles is the slice of the profile manager the orchestrator needs.
type voiceProfiles interface {
	Snapshot(ctx context.Context, userID string) (*profile.VoiceProfile, error)
	CompleteGeneration(ctx context.Context, userID string) (*profile.VoiceProfile, error)
	ApplyEdits(ctx context.Context, userID string, records []editlearn.EditRecord) (*profile.VoiceProfile, error)
}

// Orchestrator runs the generation pipeline and implements System.
type Orchestrator struct {
	store      Store
	ledger     ledger.System
	gateway    generator
	analyzer   jobAnalyzer
	selector   *templates.Selector
	profiles   voiceProfiles
	logger     *slog.Logger
	pagination pagination.Config

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewOrchestrator creates the proposal orchestrator over its collaborators.
func NewOrchestrator(
	store Store,
	led ledger.System,
	gateway generator,
	jobs jobAnalyzer,
	selector *templates.Selector,
	profiles voiceProfiles,
	logger *slog.Logger,
	pageConfig pagination.Config,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		ledger:     led,
		gateway:    gateway,
		analyzer:   jobs,
		selector:   selector,
		profiles:   profiles,
		logger:     logger.With("system", "proposals"),
		pagination: pageConfig,
		inflight:   make(map[string]struct{}),
	}
}

// Handler returns the HTTP handler for proposal endpoints.
func (o *Orchestrator) Handler() *Handler {
	return NewHandler(o, o.logger, o.pagination)
}

// Generate runs the full pipeline for one job posting. A session admits at
// most one in-flight generation; concurrent requests for the same session
// fail fast with ErrAlreadyInProgress. When the ceiling cannot cover the
// generation tier and the caller opted into degradation, the pipeline
// re-reserves against the cheaper extraction tier and composes there
// instead. Every failure or cancellation after budget reservation rolls
// the reservation back.
func (o *Orchestrator) Generate(ctx context.Context, cmd GenerateCommand) (*Proposal, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	if !o.acquire(cmd.SessionID) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInProgress, cmd.SessionID)
	}
	defer o.release(cmd.SessionID)

	composeTier := provider.TierGeneration
	reservation, err := o.reserve(ctx, cmd.JobPost, composeTier)
	if err != nil {
		if !cmd.AllowDegraded || !errors.Is(err, ledger.ErrBudgetExceeded) {
			return nil, err
		}

		o.logger.Warn("budget too tight for generation tier, degrading", "session_id", cmd.SessionID)
		composeTier = provider.TierExtraction
		reservation, err = o.reserve(ctx, cmd.JobPost, composeTier)
		if err != nil {
			return nil, err
		}
	}

	proposal, err := o.run(ctx, cmd, reservation, composeTier)
	if err != nil {
		reservation.Rollback()
		return nil, err
	}

	return proposal, nil
}

// GenerateBatch runs up to MaxBatchSize postings through independent
// pipelines. Per-posting failures land in that posting's result; they never
// abort the rest of the batch.
func (o *Orchestrator) GenerateBatch(ctx context.Context, cmd BatchCommand) ([]BatchResult, error) {
	if cmd.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if len(cmd.JobPosts) == 0 {
		return nil, fmt.Errorf("%w: job_posts is empty", ErrInvalidRequest)
	}
	if len(cmd.JobPosts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d postings, limit %d", ErrBatchTooLarge, len(cmd.JobPosts), MaxBatchSize)
	}

	results := make([]BatchResult, len(cmd.JobPosts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, post := range cmd.JobPosts {
		g.Go(func() error {
			proposal, err := o.Generate(gctx, GenerateCommand{
				UserID:        cmd.UserID,
				SessionID:     uuid.NewString(),
				JobPost:       post,
				AllowDegraded: cmd.AllowDegraded,
			})
			if err != nil {
				results[i] = BatchResult{Error: err.Error(), Code: CodeFor(err)}
				return nil
			}
			results[i] = BatchResult{Proposal: proposal}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// List returns a paginated list of proposals.
func (o *Orchestrator) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Proposal], error) {
	return o.store.List(ctx, page, filters)
}

// Find returns a single proposal by id.
func (o *Orchestrator) Find(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return o.store.Find(ctx, id)
}

// Detail returns a proposal together with its edit history.
func (o *Orchestrator) Detail(ctx context.Context, id uuid.UUID) (*ProposalDetail, error) {
	p, err := o.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	edits, err := o.store.Edits(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ProposalDetail{Proposal: *p, Edits: edits}, nil
}

// Delete removes a proposal and its edit history.
func (o *Orchestrator) Delete(ctx context.Context, id uuid.UUID) error {
	return o.store.Delete(ctx, id)
}

// RecordEdit stores one user edit against a proposal: the change is
// diffed and classified, the proposal re-scored against its original
// analysis and template, and the user's recent edit history handed to the
// profile manager for learning.
func (o *Orchestrator) RecordEdit(ctx context.Context, id uuid.UUID, cmd EditCommand) (*EditResult, error) {
	if cmd.EditedText == "" {
		return nil, fmt.Errorf("%w: edited_text is required", ErrInvalidRequest)
	}

	p, err := o.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	spans := editlearn.Diff(p.CurrentText, cmd.EditedText)
	if len(spans) == 0 {
		return &EditResult{Proposal: p}, nil
	}

	record := editlearn.EditRecord{
		ID:             uuid.New(),
		ProposalID:     p.ID,
		Classification: editlearn.Classify(spans),
		Spans:          spans,
		CreatedAt:      time.Now().UTC(),
	}

	template, err := templates.Get(p.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("re-score: %w", err)
	}

	p.CurrentText = cmd.EditedText
	p.Score = scoring.Score(cmd.EditedText, p.Analysis, template)
	p.UpdatedAt = record.CreatedAt

	if err := o.store.SaveEdit(ctx, p, record); err != nil {
		return nil, err
	}

	o.learn(ctx, p.UserID)

	o.logger.Info(
		"edit recorded",
		"proposal_id", p.ID,
		"classification", record.Classification,
		"spans", len(record.Spans),
		"category", p.Score.Category,
	)

	return &EditResult{Record: record, Proposal: p}, nil
}

// reserve estimates both pipeline calls and claims them against the ledger
// in one reservation. The generation prompt does not exist yet, so the job
// posting itself stands in as the prompt-length proxy; composeTier is the
// tier the composition call will be priced against.
func (o *Orchestrator) reserve(
	ctx context.Context,
	jobPost string,
	composeTier provider.Tier,
) (*ledger.Reservation, error) {
	extraction, err := o.gateway.EstimateCost(provider.TierExtraction, o.analyzer.EstimatePrompt(jobPost), 0)
	if err != nil {
		return nil, fmt.Errorf("estimate extraction: %w", err)
	}

	generation, err := o.gateway.EstimateCost(composeTier, jobPost, 0)
	if err != nil {
		return nil, fmt.Errorf("estimate generation: %w", err)
	}

	return o.ledger.Reserve(ctx, extraction+generation)
}

// run executes the reserved pipeline: analyze, select, generate, score,
// persist, then settle the reservation with actual spend. composeTier is
// the tier the reservation was priced against.
func (o *Orchestrator) run(
	ctx context.Context,
	cmd GenerateCommand,
	reservation *ledger.Reservation,
	composeTier provider.Tier,
) (*Proposal, error) {
	analysis, extractionCost, err := o.analyzer.Analyze(ctx, cmd.JobPost)
	if err != nil {
		return nil, err
	}

	voice, err := o.profiles.Snapshot(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("load voice profile: %w", err)
	}

	template := o.selector.Select(*analysis, voice.Maturity)
	prompt := generationPrompt(cmd.JobPost, analysis, template, voice)

	completion, tier, err := o.complete(ctx, prompt, composeTier, cmd.AllowDegraded)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cost := extractionCost + o.gateway.ActualCost(tier, completion)

	p := &Proposal{
		ID:             uuid.New(),
		UserID:         cmd.UserID,
		SessionID:      cmd.SessionID,
		JobPost:        cmd.JobPost,
		GeneratedText:  completion.Text,
		CurrentText:    completion.Text,
		Analysis:       *analysis,
		TemplateID:     template.ID,
		ProfileVersion: voice.Version,
		Score:          scoring.Score(completion.Text, *analysis, template),
		Cost:           cost,
		Degraded:       tier == provider.TierExtraction,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := o.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("persist proposal: %w", err)
	}

	if err := reservation.Commit(ctx, cost); err != nil {
		o.logger.Warn("spend commit failed after persist", "proposal_id", p.ID, "error", err)
	}

	if _, err := o.profiles.CompleteGeneration(ctx, cmd.UserID); err != nil {
		o.logger.Warn("profile generation count update failed", "user_id", cmd.UserID, "error", err)
	}

	o.logger.Info(
		"proposal generated",
		"proposal_id", p.ID,
		"template", p.TemplateID,
		"category", p.Score.Category,
		"cost", cost.Dollars(),
		"degraded", p.Degraded,
	)

	return p, nil
}

// complete composes against the given tier, falling back to the extraction
// tier when the caller opted in and the failure was transient. The tier
// actually used is returned for pricing.
func (o *Orchestrator) complete(
	ctx context.Context,
	prompt string,
	tier provider.Tier,
	allowDegraded bool,
) (*provider.Completion, provider.Tier, error) {
	completion, err := o.gateway.Complete(ctx, provider.Request{
		Tier:   tier,
		Prompt: prompt,
	})
	if err == nil {
		return completion, tier, nil
	}

	if tier == provider.TierExtraction || !allowDegraded || !provider.IsTransient(err) {
		return nil, "", err
	}

	o.logger.Warn("generation tier unavailable, degrading to extraction tier", "error", err)

	completion, fallbackErr := o.gateway.Complete(ctx, provider.Request{
		Tier:   provider.TierExtraction,
		Prompt: prompt,
	})
	if fallbackErr != nil {
		return nil, "", err
	}

	return completion, provider.TierExtraction, nil
}

// learn feeds the user's recent edit history to the profile manager.
// Learning is advisory; failures are logged, never surfaced to the editor.
func (o *Orchestrator) learn(ctx context.Context, userID string) {
	records, err := o.store.EditsForUser(ctx, userID, learningWindow)
	if err != nil {
		o.logger.Warn("loading edit history failed", "user_id", userID, "error", err)
		return
	}

	if _, err := o.profiles.ApplyEdits(ctx, userID, records); err != nil {
		o.logger.Warn("profile learning failed", "user_id", userID, "error", err)
	}
}

func (o *Orchestrator) acquire(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.inflight[sessionID]; ok {
		return false
	}
	o.inflight[sessionID] = struct{}{}
	return true
}

func (o *Orchestrator) release(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, sessionID)
}

func (c GenerateCommand) validate() error {
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	if c.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}
	if c.JobPost == "" {
		return fmt.Errorf("%w: job_post is required", ErrInvalidRequest)
	}
	return nil
}
