package proposals_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/editlearn"
	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/profile"
	"github.com/quillworks/quill/internal/proposals"
	"github.com/quillworks/quill/internal/provider"
	"github.com/quillworks/quill/internal/templates"
	"github.com/quillworks/quill/pkg/pagination"
)

type fakeStore struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]*proposals.Proposal
	edits     []editlearn.EditRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{proposals: make(map[uuid.UUID]*proposals.Proposal)}
}

func (s *fakeStore) Insert(_ context.Context, p *proposals.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.proposals[p.ID] = &clone
	return nil
}

func (s *fakeStore) Find(_ context.Context, id uuid.UUID) (*proposals.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, proposals.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *fakeStore) List(
	_ context.Context,
	page pagination.PageRequest,
	_ proposals.Filters,
) (*pagination.PageResult[proposals.Proposal], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []proposals.Proposal
	for _, p := range s.proposals {
		items = append(items, *p)
	}
	result := pagination.NewPageResult(items, len(items), page.Page, page.PageSize)
	return &result, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[id]; !ok {
		return proposals.ErrNotFound
	}
	delete(s.proposals, id)
	return nil
}

func (s *fakeStore) SaveEdit(_ context.Context, p *proposals.Proposal, record editlearn.EditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.proposals[p.ID] = &clone
	s.edits = append(s.edits, record)
	return nil
}

func (s *fakeStore) Edits(_ context.Context, proposalID uuid.UUID) ([]editlearn.EditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []editlearn.EditRecord
	for _, record := range s.edits {
		if record.ProposalID == proposalID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *fakeStore) EditsForUser(_ context.Context, _ string, limit int) ([]editlearn.EditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.edits
	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	out := make([]editlearn.EditRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.proposals)
}

type ledgerStore struct {
	mu      sync.Mutex
	periods map[string]ledger.CostMicros
}

func (s *ledgerStore) LoadPeriod(_ context.Context, period string) (ledger.CostMicros, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.periods[period], nil
}

func (s *ledgerStore) AddSpend(_ context.Context, period string, delta ledger.CostMicros) (ledger.CostMicros, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[period] += delta
	return s.periods[period], nil
}

type profileStore struct {
	mu       sync.Mutex
	profiles map[string]*profile.VoiceProfile
}

func (s *profileStore) Load(_ context.Context, userID string) (*profile.VoiceProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *profileStore) Save(_ context.Context, p *profile.VoiceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.profiles[p.UserID] = &clone
	return nil
}

const extractionJSON = `{
	"requirements": ["build react dashboard", "integrate stripe"],
	"pain_points": ["current site is slow"],
	"budget_signal": "$5,000 fixed",
	"client_history": "12 hires, $40k spent",
	"job_type": "web_development"
}`

const generatedText = "Is your React dashboard still slowing down every time your dataset grows? I have untangled exactly this kind of performance problem before.\n\n" +
	"On the data side I would start with your schema and query plans, since most dashboards that crawl are paying for unindexed aggregations.\n\n" +
	"For the stripe integration you described, I would wrap the billing endpoints behind a thin service layer with a single place to handle failures.\n\n" +
	"I can have the first measurable improvement in front of you within a week. Happy to walk through my approach on a short call."

var samplePosting = strings.Repeat(
	"We need an experienced developer to rebuild our React dashboard and integrate Stripe billing. ", 5)

type harness struct {
	orch       *proposals.Orchestrator
	store      *fakeStore
	ledger     ledger.System
	profiles   profile.System
	extraction *provider.MockClient
	generation *provider.MockClient
}

func extractionClient() *provider.MockClient {
	return &provider.MockClient{
		CompleteFn: func(_ context.Context, _ string, _ int) (*provider.Completion, error) {
			return &provider.Completion{Text: extractionJSON, InputTokens: 200, OutputTokens: 80}, nil
		},
	}
}

func generationClient() *provider.MockClient {
	return &provider.MockClient{
		CompleteFn: func(_ context.Context, _ string, _ int) (*provider.Completion, error) {
			return &provider.Completion{Text: generatedText, InputTokens: 300, OutputTokens: 100}, nil
		},
	}
}

func newHarness(ceiling ledger.CostMicros, extraction, generation *provider.MockClient) *harness {
	settings := provider.TierSettings{
		Model:            "test-model",
		MaxTokens:        64,
		InputPricePer1K:  1000,
		OutputPricePer1K: 2000,
	}
	return newHarnessSettings(ceiling, settings, settings, extraction, generation)
}

func newHarnessSettings(
	ceiling ledger.CostMicros,
	extractionSettings, generationSettings provider.TierSettings,
	extraction, generation *provider.MockClient,
) *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gateway := provider.NewGateway(
		extraction, generation,
		extractionSettings, generationSettings,
		logger,
		provider.WithRetry(1, time.Millisecond),
	)

	store := newFakeStore()
	led := ledger.New(&ledgerStore{periods: make(map[string]ledger.CostMicros)}, ceiling, logger)
	profiles := profile.NewManager(&profileStore{profiles: make(map[string]*profile.VoiceProfile)}, 3, 0.7, logger)
	jobs := analyzer.New(gateway, 0, 0, logger)

	orch := proposals.NewOrchestrator(
		store, led, gateway, jobs,
		templates.NewSelector(1),
		profiles, logger,
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)

	return &harness{
		orch:       orch,
		store:      store,
		ledger:     led,
		profiles:   profiles,
		extraction: extraction,
		generation: generation,
	}
}

func generateCmd() proposals.GenerateCommand {
	return proposals.GenerateCommand{
		UserID:    "alex",
		SessionID: uuid.NewString(),
		JobPost:   samplePosting,
	}
}

func TestGenerate(t *testing.T) {
	h := newHarness(1_000_000, extractionClient(), generationClient())
	ctx := context.Background()

	p, err := h.orch.Generate(ctx, generateCmd())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if p.GeneratedText != generatedText {
		t.Error("generated text does not match the completion")
	}
	if p.CurrentText != p.GeneratedText {
		t.Error("current text should start equal to generated text")
	}
	if p.Degraded {
		t.Error("proposal should not be degraded")
	}
	if _, err := templates.Get(p.TemplateID); err != nil {
		t.Errorf("template id %s not in catalog", p.TemplateID)
	}
	if p.Score.Category == "" {
		t.Error("proposal was not scored")
	}

	// Extraction cost 200+160, generation cost 300+200.
	if want := ledger.CostMicros(860); p.Cost != want {
		t.Errorf("cost: got %d, want %d", p.Cost, want)
	}

	status := h.ledger.Status(ctx)
	if status.Committed != p.Cost {
		t.Errorf("committed: got %d, want %d", status.Committed, p.Cost)
	}
	if status.Reserved != 0 {
		t.Errorf("reserved: got %d, want 0", status.Reserved)
	}

	if h.store.count() != 1 {
		t.Errorf("stored proposals: got %d, want 1", h.store.count())
	}

	voice, err := h.profiles.Snapshot(ctx, "alex")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if voice.GenerationCount != 1 {
		t.Errorf("generation count: got %d, want 1", voice.GenerationCount)
	}
}

func TestGenerateValidation(t *testing.T) {
	h := newHarness(1_000_000, extractionClient(), generationClient())
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  proposals.GenerateCommand
	}{
		{"missing user", proposals.GenerateCommand{SessionID: "s", JobPost: samplePosting}},
		{"missing session", proposals.GenerateCommand{UserID: "u", JobPost: samplePosting}},
		{"missing job post", proposals.GenerateCommand{UserID: "u", SessionID: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.orch.Generate(ctx, tt.cmd); !errors.Is(err, proposals.ErrInvalidRequest) {
				t.Errorf("error: got %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestGenerateSessionConflict(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once

	generation := &provider.MockClient{
		CompleteFn: func(_ context.Context, _ string, _ int) (*provider.Completion, error) {
			once.Do(func() { close(started) })
			<-proceed
			return &provider.Completion{Text: generatedText, InputTokens: 300, OutputTokens: 100}, nil
		},
	}
	h := newHarness(1_000_000, extractionClient(), generation)
	ctx := context.Background()

	cmd := generateCmd()

	done := make(chan error, 1)
	go func() {
		_, err := h.orch.Generate(ctx, cmd)
		done <- err
	}()

	<-started

	_, err := h.orch.Generate(ctx, cmd)
	if !errors.Is(err, proposals.ErrAlreadyInProgress) {
		t.Errorf("concurrent error: got %v, want ErrAlreadyInProgress", err)
	}
	if proposals.CodeFor(err) != proposals.CodeAlreadyInProgress {
		t.Errorf("code: got %s", proposals.CodeFor(err))
	}

	close(proceed)
	if err := <-done; err != nil {
		t.Fatalf("first generate failed: %v", err)
	}

	// Session slot freed after completion.
	if _, err := h.orch.Generate(ctx, cmd); err != nil {
		t.Errorf("reuse after completion failed: %v", err)
	}
}

func TestGenerateBudgetExceeded(t *testing.T) {
	h := newHarness(10, extractionClient(), generationClient())

	_, err := h.orch.Generate(context.Background(), generateCmd())
	if !errors.Is(err, ledger.ErrBudgetExceeded) {
		t.Fatalf("error: got %v, want ErrBudgetExceeded", err)
	}
	if proposals.CodeFor(err) != proposals.CodeBudgetExceeded {
		t.Errorf("code: got %s", proposals.CodeFor(err))
	}
	if len(h.extraction.Calls) != 0 {
		t.Errorf("extraction calls: got %d, want 0 before reservation", len(h.extraction.Calls))
	}
}

func TestGenerateBudgetDegradesToCheapTier(t *testing.T) {
	// The generation tier alone estimates past the ceiling, but both
	// pipeline calls fit on the extraction tier.
	cheap := provider.TierSettings{
		Model:            "cheap-model",
		MaxTokens:        64,
		InputPricePer1K:  1000,
		OutputPricePer1K: 2000,
	}
	expensive := provider.TierSettings{
		Model:            "premium-model",
		MaxTokens:        64,
		InputPricePer1K:  1000,
		OutputPricePer1K: 1_000_000,
	}
	h := newHarnessSettings(5_000, cheap, expensive, extractionClient(), generationClient())
	ctx := context.Background()

	cmd := generateCmd()
	cmd.AllowDegraded = true

	p, err := h.orch.Generate(ctx, cmd)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !p.Degraded {
		t.Error("proposal should be marked degraded")
	}
	if len(h.generation.Calls) != 0 {
		t.Errorf("generation calls: got %d, want 0", len(h.generation.Calls))
	}
	// Analysis plus composition, both on the cheap tier.
	if len(h.extraction.Calls) != 2 {
		t.Errorf("extraction calls: got %d, want 2", len(h.extraction.Calls))
	}

	status := h.ledger.Status(ctx)
	if status.Reserved != 0 {
		t.Errorf("reserved: got %d, want 0", status.Reserved)
	}
	if status.Committed != p.Cost {
		t.Errorf("committed: got %d, want %d", status.Committed, p.Cost)
	}

	// Opted-out callers still get the typed error.
	h2 := newHarnessSettings(5_000, cheap, expensive, extractionClient(), generationClient())
	if _, err := h2.orch.Generate(ctx, generateCmd()); !errors.Is(err, ledger.ErrBudgetExceeded) {
		t.Errorf("error: got %v, want ErrBudgetExceeded", err)
	}
}

func TestGenerateRollsBackOnFailure(t *testing.T) {
	generation := &provider.MockClient{
		CompleteFn: func(_ context.Context, _ string, _ int) (*provider.Completion, error) {
			return nil, provider.NewFatal(401, errors.New("bad key"))
		},
	}
	h := newHarness(1_000_000, extractionClient(), generation)
	ctx := context.Background()

	_, err := h.orch.Generate(ctx, generateCmd())
	if err == nil {
		t.Fatal("expected generation failure")
	}
	if proposals.CodeFor(err) != proposals.CodeProviderFatal {
		t.Errorf("code: got %s, want provider_fatal", proposals.CodeFor(err))
	}

	status := h.ledger.Status(ctx)
	if status.Reserved != 0 {
		t.Errorf("reserved after rollback: got %d, want 0", status.Reserved)
	}
	if status.Committed != 0 {
		t.Errorf("committed after rollback: got %d, want 0", status.Committed)
	}
	if h.store.count() != 0 {
		t.Errorf("stored proposals: got %d, want 0", h.store.count())
	}
}

func TestGenerateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// The generation call cancels its own context and waits, as if the
	// user had abandoned the request mid-generation.
	generation := &provider.MockClient{
		CompleteFn: func(callCtx context.Context, _ string, _ int) (*provider.Completion, error) {
			cancel()
			<-callCtx.Done()
			return nil, callCtx.Err()
		},
	}
	h := newHarness(1_000_000, extractionClient(), generation)

	_, err := h.orch.Generate(ctx, generateCmd())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got %v, want context.Canceled", err)
	}

	status := h.ledger.Status(context.Background())
	if status.Reserved != 0 {
		t.Errorf("reserved after cancellation: got %d, want 0", status.Reserved)
	}
	if status.Committed != 0 {
		t.Errorf("committed after cancellation: got %d, want 0", status.Committed)
	}
	if h.store.count() != 0 {
		t.Errorf("stored proposals: got %d, want 0", h.store.count())
	}
}

func TestGenerateDegradedFallback(t *testing.T) {
	generation := &provider.MockClient{
		CompleteFn: func(_ context.Context, _ string, _ int) (*provider.Completion, error) {
			return nil, provider.NewTransient(503, errors.New("overloaded"))
		},
	}

	t.Run("opted in", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generation)

		cmd := generateCmd()
		cmd.AllowDegraded = true

		p, err := h.orch.Generate(context.Background(), cmd)
		if err != nil {
			t.Fatalf("degraded generate failed: %v", err)
		}
		if !p.Degraded {
			t.Error("proposal should be marked degraded")
		}
		// Analysis call plus the fallback completion.
		if len(h.extraction.Calls) != 2 {
			t.Errorf("extraction calls: got %d, want 2", len(h.extraction.Calls))
		}
	})

	t.Run("not opted in", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generation)

		_, err := h.orch.Generate(context.Background(), generateCmd())
		if err == nil {
			t.Fatal("expected transient failure to surface")
		}
		if proposals.CodeFor(err) != proposals.CodeProviderTransient {
			t.Errorf("code: got %s, want provider_transient", proposals.CodeFor(err))
		}
		if h.store.count() != 0 {
			t.Errorf("stored proposals: got %d, want 0", h.store.count())
		}
	})

	t.Run("fatal failures never degrade", func(t *testing.T) {
		fatal := &provider.MockClient{
			CompleteFn: func(_ context.Context, _ string, _ int) (*provider.Completion, error) {
				return nil, provider.NewFatal(400, errors.New("prompt rejected"))
			},
		}
		h := newHarness(1_000_000, extractionClient(), fatal)

		cmd := generateCmd()
		cmd.AllowDegraded = true

		_, err := h.orch.Generate(context.Background(), cmd)
		if proposals.CodeFor(err) != proposals.CodeProviderFatal {
			t.Errorf("code: got %s, want provider_fatal", proposals.CodeFor(err))
		}
	})
}

func TestGenerateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("independent pipelines", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())

		results, err := h.orch.GenerateBatch(ctx, proposals.BatchCommand{
			UserID:   "alex",
			JobPosts: []string{samplePosting, "too short", samplePosting},
		})
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("results: got %d, want 3", len(results))
		}

		if results[0].Proposal == nil || results[2].Proposal == nil {
			t.Error("valid postings should produce proposals")
		}
		if results[1].Proposal != nil {
			t.Error("invalid posting should not produce a proposal")
		}
		if results[1].Code != proposals.CodeTooShort {
			t.Errorf("failure code: got %s, want too_short", results[1].Code)
		}
		if h.store.count() != 2 {
			t.Errorf("stored proposals: got %d, want 2", h.store.count())
		}
	})

	t.Run("missing user", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())
		_, err := h.orch.GenerateBatch(ctx, proposals.BatchCommand{JobPosts: []string{samplePosting}})
		if !errors.Is(err, proposals.ErrInvalidRequest) {
			t.Errorf("error: got %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())
		_, err := h.orch.GenerateBatch(ctx, proposals.BatchCommand{UserID: "alex"})
		if !errors.Is(err, proposals.ErrInvalidRequest) {
			t.Errorf("error: got %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("over the size limit", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())

		posts := make([]string, proposals.MaxBatchSize+1)
		for i := range posts {
			posts[i] = samplePosting
		}
		_, err := h.orch.GenerateBatch(ctx, proposals.BatchCommand{UserID: "alex", JobPosts: posts})
		if !errors.Is(err, proposals.ErrBatchTooLarge) {
			t.Errorf("error: got %v, want ErrBatchTooLarge", err)
		}
	})
}

func TestRecordEdit(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, h *harness) *proposals.Proposal {
		t.Helper()
		p, err := h.orch.Generate(ctx, generateCmd())
		if err != nil {
			t.Fatalf("seed generate failed: %v", err)
		}
		return p
	}

	t.Run("missing text", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())
		p := seed(t, h)

		_, err := h.orch.RecordEdit(ctx, p.ID, proposals.EditCommand{})
		if !errors.Is(err, proposals.ErrInvalidRequest) {
			t.Errorf("error: got %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("unknown proposal", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())

		_, err := h.orch.RecordEdit(ctx, uuid.New(), proposals.EditCommand{EditedText: "x"})
		if !errors.Is(err, proposals.ErrNotFound) {
			t.Errorf("error: got %v, want ErrNotFound", err)
		}
	})

	t.Run("identical text is a no-op", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())
		p := seed(t, h)

		result, err := h.orch.RecordEdit(ctx, p.ID, proposals.EditCommand{EditedText: p.CurrentText})
		if err != nil {
			t.Fatalf("record edit failed: %v", err)
		}
		if result.Record.ID != uuid.Nil {
			t.Error("no-op edit should not create a record")
		}
		if len(h.store.edits) != 0 {
			t.Errorf("stored edits: got %d, want 0", len(h.store.edits))
		}
	})

	t.Run("edit re-scores and persists", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())
		p := seed(t, h)

		edited := strings.Replace(p.CurrentText, "untangled", "solved", 1)
		result, err := h.orch.RecordEdit(ctx, p.ID, proposals.EditCommand{EditedText: edited})
		if err != nil {
			t.Fatalf("record edit failed: %v", err)
		}

		if result.Record.ID == uuid.Nil {
			t.Error("edit should create a record")
		}
		if result.Record.Classification != editlearn.ClassificationCosmetic {
			t.Errorf("classification: got %s, want cosmetic", result.Record.Classification)
		}
		if result.Proposal.CurrentText != edited {
			t.Error("current text not updated")
		}
		if result.Proposal.GeneratedText != p.GeneratedText {
			t.Error("generated text must stay immutable")
		}
		if result.Proposal.Score.Category == "" {
			t.Error("proposal was not re-scored")
		}

		stored, err := h.store.Find(ctx, p.ID)
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if stored.CurrentText != edited {
			t.Error("stored proposal not updated")
		}
		if len(h.store.edits) != 1 {
			t.Errorf("stored edits: got %d, want 1", len(h.store.edits))
		}

		detail, err := h.orch.Detail(ctx, p.ID)
		if err != nil {
			t.Fatalf("detail failed: %v", err)
		}
		if detail.CurrentText != edited {
			t.Error("detail carries stale text")
		}
		if len(detail.Edits) != 1 {
			t.Errorf("detail edits: got %d, want 1", len(detail.Edits))
		}
	})

	t.Run("consistent edits reach the voice profile", func(t *testing.T) {
		h := newHarness(1_000_000, extractionClient(), generationClient())

		// Three separate proposals, each edited to close with the same
		// formal marker.
		for i := 0; i < 3; i++ {
			p := seed(t, h)
			edited := p.CurrentText + "\n\nRegards, Alex."
			if _, err := h.orch.RecordEdit(ctx, p.ID, proposals.EditCommand{EditedText: edited}); err != nil {
				t.Fatalf("edit %d failed: %v", i, err)
			}
		}

		voice, err := h.profiles.Snapshot(ctx, "alex")
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if voice.Formality <= 5 {
			t.Errorf("formality: got %f, want raised above the default", voice.Formality)
		}
	})
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want proposals.ErrorCode
	}{
		{"too short", analyzer.ErrTooShort, proposals.CodeTooShort},
		{"too long", analyzer.ErrTooLong, proposals.CodeTooLong},
		{"budget", ledger.ErrBudgetExceeded, proposals.CodeBudgetExceeded},
		{"in progress", proposals.ErrAlreadyInProgress, proposals.CodeAlreadyInProgress},
		{"not found", proposals.ErrNotFound, proposals.CodeNotFound},
		{"invalid", proposals.ErrInvalidRequest, proposals.CodeInvalidRequest},
		{"batch too large", proposals.ErrBatchTooLarge, proposals.CodeInvalidRequest},
		{"transient provider", provider.NewTransient(503, errors.New("x")), proposals.CodeProviderTransient},
		{"fatal provider", provider.NewFatal(401, errors.New("x")), proposals.CodeProviderFatal},
		{"unknown", errors.New("x"), proposals.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := proposals.CodeFor(tt.err); got != tt.want {
				t.Errorf("code: got %s, want %s", got, tt.want)
			}
		})
	}
}
