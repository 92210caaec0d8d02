package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quillworks/quill/internal/editlearn"
)

// Learning defaults. A pattern must recur across MinConsistent edit records
// before it mutates the profile; older records decay per DecayFactor.
const (
	DefaultMinConsistent = 3
	DefaultDecayFactor   = 0.7
)

// Store persists voice profiles.
type Store interface {
	Load(ctx context.Context, userID string) (*VoiceProfile, error)
	Save(ctx context.Context, p *VoiceProfile) error
}

// CalibrationCommand carries explicit user calibration input. Nil fields
// are left unchanged.
type CalibrationCommand struct {
	Formality    *float64       `json:"formality,omitempty"`
	Rhythm       *string        `json:"rhythm,omitempty"`
	Imperfection *Imperfections `json:"imperfections,omitempty"`
}

// System is the public contract for profile operations.
type System interface {
	Handler() *Handler

	// Snapshot returns the user's current profile, creating the cold
	// default on first sight. The returned value is a copy.
	Snapshot(ctx context.Context, userID string) (*VoiceProfile, error)

	// CompleteGeneration records a finished generation, advancing
	// maturity and confidence.
	CompleteGeneration(ctx context.Context, userID string) (*VoiceProfile, error)

	// ApplyEdits promotes consistent patterns from the given edit
	// records into the profile. One-off edits never mutate anything.
	ApplyEdits(ctx context.Context, userID string, records []editlearn.EditRecord) (*VoiceProfile, error)

	// Calibrate applies explicit calibration input.
	Calibrate(ctx context.Context, userID string, cmd CalibrationCommand) (*VoiceProfile, error)
}

// Manager is the single writer for voice profiles. All mutation paths for
// one user serialize on a per-user lock; concurrent sessions read
// snapshots and queue their completed proposals one at a time.
type Manager struct {
	store         Store
	logger        *slog.Logger
	minConsistent int
	decay         float64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a profile manager over the given store.
func NewManager(store Store, minConsistent int, decay float64, logger *slog.Logger) *Manager {
	if minConsistent <= 0 {
		minConsistent = DefaultMinConsistent
	}
	if decay <= 0 || decay >= 1 {
		decay = DefaultDecayFactor
	}

	return &Manager{
		store:         store,
		logger:        logger.With("system", "profile"),
		minConsistent: minConsistent,
		decay:         decay,
		locks:         make(map[string]*sync.Mutex),
	}
}

func (m *Manager) Handler() *Handler {
	return NewHandler(m, m.logger)
}

func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

func (m *Manager) Snapshot(ctx context.Context, userID string) (*VoiceProfile, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	p, err := m.store.Load(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	fresh := NewProfile(userID)
	if err := m.store.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	m.logger.Info("profile created", "user", userID)
	return fresh, nil
}

func (m *Manager) CompleteGeneration(ctx context.Context, userID string) (*VoiceProfile, error) {
	return m.mutate(ctx, userID, func(p *VoiceProfile) {
		p.GenerationCount++
		p.advance()
		p.raiseConfidence()
	})
}

func (m *Manager) ApplyEdits(ctx context.Context, userID string, records []editlearn.EditRecord) (*VoiceProfile, error) {
	delta := editlearn.Promote(records, m.minConsistent, m.decay)
	if delta.Empty() {
		return m.Snapshot(ctx, userID)
	}

	return m.mutate(ctx, userID, func(p *VoiceProfile) {
		p.Formality += delta.FormalityShift
		p.clampFormality()

		for phrase, n := range delta.Phrases {
			p.SignaturePhrases[phrase] += n
		}
		if delta.Fragments != nil {
			p.Imperfections.Fragments = *delta.Fragments
		}
		if delta.CasualAsides != nil {
			p.Imperfections.CasualAsides = *delta.CasualAsides
		}

		m.logger.Info(
			"profile updated from edits",
			"user", userID,
			"formality_shift", delta.FormalityShift,
			"phrases", len(delta.Phrases),
		)
	})
}

func (m *Manager) Calibrate(ctx context.Context, userID string, cmd CalibrationCommand) (*VoiceProfile, error) {
	if cmd.Formality != nil && (*cmd.Formality < 0 || *cmd.Formality > 10) {
		return nil, fmt.Errorf("%w: formality must be in [0,10]", ErrInvalidCommand)
	}

	return m.mutate(ctx, userID, func(p *VoiceProfile) {
		if cmd.Formality != nil {
			p.Formality = *cmd.Formality
		}
		if cmd.Rhythm != nil {
			p.Rhythm = *cmd.Rhythm
		}
		if cmd.Imperfection != nil {
			p.Imperfections = *cmd.Imperfection
		}

		m.logger.Info("profile calibrated", "user", userID)
	})
}

// mutate loads, applies, versions, and saves under the user's lock.
func (m *Manager) mutate(ctx context.Context, userID string, apply func(*VoiceProfile)) (*VoiceProfile, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	p, err := m.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply(p)
	p.Version++
	p.UpdatedAt = time.Now().UTC()

	if err := m.store.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	return p, nil
}
