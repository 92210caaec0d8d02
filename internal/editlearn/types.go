// Package editlearn implements the edit-learning loop: it diffs user edits
// against generated text, classifies the changes, and distills consistent
// patterns into voice profile deltas. The loop never writes a profile
// itself; promotion is invoked by the profile manager, which is the
// profile's single writer.
package editlearn

import (
	"time"

	"github.com/google/uuid"
)

// Classification tags what kind of change an edit represents.
type Classification string

// Edit classifications. Structural edits change tone, formality, or
// greeting; cosmetic edits are synonym-level word swaps.
const (
	ClassificationStructural Classification = "structural"
	ClassificationCosmetic   Classification = "cosmetic"
)

// ChangeSpan is one contiguous region of changed text.
type ChangeSpan struct {
	Removed string `json:"removed"`
	Added   string `json:"added"`
}

// EditRecord captures one diff between a proposal's generated text and its
// edited text. Records are append-only.
type EditRecord struct {
	ID             uuid.UUID      `json:"id"`
	ProposalID     uuid.UUID      `json:"proposal_id"`
	Classification Classification `json:"classification"`
	Spans          []ChangeSpan   `json:"spans"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ProfileDelta is a promoted set of voice profile changes. Nil pointer
// fields mean "no consistent signal"; only non-nil fields are applied.
type ProfileDelta struct {
	FormalityShift float64        `json:"formality_shift"`
	Phrases        map[string]int `json:"phrases,omitempty"`
	Fragments      *bool          `json:"fragments,omitempty"`
	CasualAsides   *bool          `json:"casual_asides,omitempty"`
}

// Empty reports whether the delta carries no changes at all.
func (d *ProfileDelta) Empty() bool {
	return d.FormalityShift == 0 &&
		len(d.Phrases) == 0 &&
		d.Fragments == nil &&
		d.CasualAsides == nil
}
