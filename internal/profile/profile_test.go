package profile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/editlearn"
	"github.com/quillworks/quill/internal/profile"
)

type memoryStore struct {
	profiles map[string]*profile.VoiceProfile
	saves    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{profiles: make(map[string]*profile.VoiceProfile)}
}

func (s *memoryStore) Load(_ context.Context, userID string) (*profile.VoiceProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *memoryStore) Save(_ context.Context, p *profile.VoiceProfile) error {
	clone := *p
	s.profiles[p.UserID] = &clone
	s.saves++
	return nil
}

func newManager(store profile.Store) *profile.Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return profile.NewManager(store, profile.DefaultMinConsistent, profile.DefaultDecayFactor, logger)
}

func TestStageForCount(t *testing.T) {
	tests := []struct {
		count int
		want  profile.Stage
	}{
		{0, profile.StageCold},
		{1, profile.StageCalibrating},
		{2, profile.StageCalibrating},
		{3, profile.StageLearning},
		{9, profile.StageLearning},
		{10, profile.StageMature},
		{100, profile.StageMature},
	}

	for _, tt := range tests {
		if got := profile.StageForCount(tt.count); got != tt.want {
			t.Errorf("stage for %d: got %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestPromptWeight(t *testing.T) {
	tests := []struct {
		stage profile.Stage
		want  float64
	}{
		{profile.StageCold, 0.1},
		{profile.StageCalibrating, 0.3},
		{profile.StageLearning, 0.6},
		{profile.StageMature, 1.0},
	}

	for _, tt := range tests {
		if got := tt.stage.PromptWeight(); got != tt.want {
			t.Errorf("weight for %s: got %f, want %f", tt.stage, got, tt.want)
		}
	}
}

func TestSnapshotCreatesColdDefault(t *testing.T) {
	store := newMemoryStore()
	m := newManager(store)

	p, err := m.Snapshot(context.Background(), "alex")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if p.Maturity != profile.StageCold {
		t.Errorf("maturity: got %s, want %s", p.Maturity, profile.StageCold)
	}
	if p.Formality != 5 {
		t.Errorf("formality: got %f, want 5", p.Formality)
	}
	if p.Version != 0 {
		t.Errorf("version: got %d, want 0", p.Version)
	}
	if store.saves != 1 {
		t.Errorf("saves: got %d, want 1", store.saves)
	}

	// Second snapshot reads the stored profile instead of recreating it.
	if _, err := m.Snapshot(context.Background(), "alex"); err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves after reread: got %d, want 1", store.saves)
	}
}

func TestSnapshotRejectsEmptyUser(t *testing.T) {
	m := newManager(newMemoryStore())
	if _, err := m.Snapshot(context.Background(), ""); !errors.Is(err, profile.ErrInvalidUserID) {
		t.Errorf("error: got %v, want ErrInvalidUserID", err)
	}
}

func TestCompleteGenerationAdvancesMaturity(t *testing.T) {
	m := newManager(newMemoryStore())
	ctx := context.Background()

	stages := make(map[int]profile.Stage)
	for i := 1; i <= 10; i++ {
		p, err := m.CompleteGeneration(ctx, "alex")
		if err != nil {
			t.Fatalf("generation %d failed: %v", i, err)
		}
		stages[i] = p.Maturity

		if p.GenerationCount != i {
			t.Errorf("generation count after %d: got %d", i, p.GenerationCount)
		}
	}

	if stages[1] != profile.StageCalibrating {
		t.Errorf("after 1: got %s, want calibrating", stages[1])
	}
	if stages[2] != profile.StageCalibrating {
		t.Errorf("after 2: got %s, want calibrating", stages[2])
	}
	if stages[3] != profile.StageLearning {
		t.Errorf("after 3: got %s, want learning", stages[3])
	}
	if stages[10] != profile.StageMature {
		t.Errorf("after 10: got %s, want mature", stages[10])
	}
}

func TestCompleteGenerationRaisesConfidence(t *testing.T) {
	m := newManager(newMemoryStore())
	ctx := context.Background()

	var last float64
	for i := 0; i < 12; i++ {
		p, err := m.CompleteGeneration(ctx, "alex")
		if err != nil {
			t.Fatalf("generation failed: %v", err)
		}
		if p.Confidence < last {
			t.Fatalf("confidence regressed: %f -> %f", last, p.Confidence)
		}
		last = p.Confidence
	}

	if last != 1.0 {
		t.Errorf("confidence after 12 generations: got %f, want 1.0", last)
	}
}

func TestCalibrate(t *testing.T) {
	m := newManager(newMemoryStore())
	ctx := context.Background()

	t.Run("applies provided fields", func(t *testing.T) {
		formality := 8.0
		rhythm := "staccato"
		p, err := m.Calibrate(ctx, "alex", profile.CalibrationCommand{
			Formality: &formality,
			Rhythm:    &rhythm,
		})
		if err != nil {
			t.Fatalf("calibrate failed: %v", err)
		}

		if p.Formality != 8.0 {
			t.Errorf("formality: got %f, want 8.0", p.Formality)
		}
		if p.Rhythm != "staccato" {
			t.Errorf("rhythm: got %s, want staccato", p.Rhythm)
		}
		if p.Version != 1 {
			t.Errorf("version: got %d, want 1", p.Version)
		}
	})

	t.Run("nil fields untouched", func(t *testing.T) {
		imp := profile.Imperfections{Fragments: true}
		p, err := m.Calibrate(ctx, "alex", profile.CalibrationCommand{Imperfection: &imp})
		if err != nil {
			t.Fatalf("calibrate failed: %v", err)
		}

		if p.Formality != 8.0 {
			t.Errorf("formality changed: got %f, want 8.0", p.Formality)
		}
		if !p.Imperfections.Fragments {
			t.Error("fragments not enabled")
		}
	})

	t.Run("rejects out-of-range formality", func(t *testing.T) {
		bad := 11.0
		_, err := m.Calibrate(ctx, "alex", profile.CalibrationCommand{Formality: &bad})
		if !errors.Is(err, profile.ErrInvalidCommand) {
			t.Errorf("error: got %v, want ErrInvalidCommand", err)
		}
	})
}

func editRecords(n int, span editlearn.ChangeSpan) []editlearn.EditRecord {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := make([]editlearn.EditRecord, n)
	for i := range records {
		records[i] = editlearn.EditRecord{
			ID:             uuid.New(),
			ProposalID:     uuid.New(),
			Classification: editlearn.Classify([]editlearn.ChangeSpan{span}),
			Spans:          []editlearn.ChangeSpan{span},
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}
	}
	return records
}

func TestApplyEdits(t *testing.T) {
	ctx := context.Background()

	t.Run("one-off edit never mutates", func(t *testing.T) {
		store := newMemoryStore()
		m := newManager(store)

		records := editRecords(1, editlearn.ChangeSpan{Added: "regards"})
		p, err := m.ApplyEdits(ctx, "alex", records)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		if p.Version != 0 {
			t.Errorf("version: got %d, want 0", p.Version)
		}
		if p.Formality != 5 {
			t.Errorf("formality: got %f, want unchanged 5", p.Formality)
		}
	})

	t.Run("consistent formality edits shift the profile", func(t *testing.T) {
		m := newManager(newMemoryStore())

		records := editRecords(3, editlearn.ChangeSpan{Removed: "thanks", Added: "Sincerely"})
		p, err := m.ApplyEdits(ctx, "alex", records)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		if p.Formality != 5.5 {
			t.Errorf("formality: got %f, want 5.5", p.Formality)
		}
		if p.Version != 1 {
			t.Errorf("version: got %d, want 1", p.Version)
		}
	})

	t.Run("recurring phrases accumulate", func(t *testing.T) {
		m := newManager(newMemoryStore())

		records := editRecords(3, editlearn.ChangeSpan{Added: "happy to walk through it"})
		p, err := m.ApplyEdits(ctx, "alex", records)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		if p.SignaturePhrases["happy to walk"] == 0 {
			t.Errorf("signature phrases: got %v, want happy to walk present", p.SignaturePhrases)
		}
	})
}
