// Package profile implements the per-user voice profile domain: the
// versioned writing-style model, its maturity state machine, and the
// single-writer manager that applies learning and calibration updates.
package profile

import (
	"time"

	"github.com/quillworks/quill/pkg/textstat"
)

// Stage is a profile's maturity state. Stages advance with completed
// generations and never regress.
type Stage string

// Maturity stages in advancement order.
const (
	StageCold        Stage = "cold"
	StageCalibrating Stage = "calibrating"
	StageLearning    Stage = "learning"
	StageMature      Stage = "mature"
)

// Completed-generation thresholds for each stage.
const (
	calibratingAt = 1
	learningAt    = 3
	matureAt      = 10
)

var stageRank = map[Stage]int{
	StageCold:        0,
	StageCalibrating: 1,
	StageLearning:    2,
	StageMature:      3,
}

// StageForCount maps a completed-generation count to its maturity stage.
func StageForCount(n int) Stage {
	switch {
	case n >= matureAt:
		return StageMature
	case n >= learningAt:
		return StageLearning
	case n >= calibratingAt:
		return StageCalibrating
	default:
		return StageCold
	}
}

// PromptWeight returns how strongly profile signal should influence the
// generation prompt at this stage, in [0,1]. Cold profiles stay
// template-dominant; mature profiles dominate the prompt.
func (s Stage) PromptWeight() float64 {
	switch s {
	case StageMature:
		return 1.0
	case StageLearning:
		return 0.6
	case StageCalibrating:
		return 0.3
	default:
		return 0.1
	}
}

// Imperfections are the deliberate-humanity markers a profile may enable.
type Imperfections struct {
	Fragments      bool `json:"fragments"`
	MildRedundancy bool `json:"mild_redundancy"`
	CasualAsides   bool `json:"casual_asides"`
}

// VoiceProfile is the per-user writing-style model. Mutated only by the
// Manager (edit promotion, generation completion, explicit calibration);
// readers get point-in-time snapshots tagged by Version.
type VoiceProfile struct {
	UserID           string         `json:"user_id"`
	Formality        float64        `json:"formality"`
	SignaturePhrases map[string]int `json:"signature_phrases"`
	Rhythm           string         `json:"rhythm"`
	Imperfections    Imperfections  `json:"imperfections"`
	Maturity         Stage          `json:"maturity"`
	GenerationCount  int            `json:"generation_count"`
	Confidence       float64        `json:"confidence"`
	Version          int            `json:"version"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewProfile returns the cold default profile for a user.
func NewProfile(userID string) *VoiceProfile {
	return &VoiceProfile{
		UserID:           userID,
		Formality:        5,
		SignaturePhrases: map[string]int{},
		Rhythm:           "varied",
		Maturity:         StageCold,
		UpdatedAt:        time.Now().UTC(),
	}
}

// advance moves maturity forward for the current generation count.
// Regression is structurally impossible: the new stage is only adopted
// when it ranks above the current one.
func (p *VoiceProfile) advance() {
	next := StageForCount(p.GenerationCount)
	if stageRank[next] > stageRank[p.Maturity] {
		p.Maturity = next
	}
}

// raiseConfidence lifts confidence toward 1.0 as generations accumulate.
// Confidence is monotone: it is never lowered.
func (p *VoiceProfile) raiseConfidence() {
	target := textstat.Clamp(float64(p.GenerationCount)/float64(matureAt), 0, 1)
	if target > p.Confidence {
		p.Confidence = target
	}
}

func (p *VoiceProfile) clampFormality() {
	p.Formality = textstat.Clamp(p.Formality, 0, 10)
}
