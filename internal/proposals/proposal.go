// Package proposals implements the proposal generation domain: the
// orchestrator that runs the analyze-select-generate-score pipeline under
// the cost ledger, the persistence of finished proposals, and edit
// recording with re-scoring.
package proposals

import (
	"time"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/editlearn"
	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/scoring"
	"github.com/quillworks/quill/internal/templates"
)

// Proposal is a generated proposal with its full provenance: the analysis
// it was built from, the template that shaped it, the profile version that
// voiced it, and what it cost. GeneratedText is immutable; CurrentText
// tracks the user's edits.
type Proposal struct {
	ID             uuid.UUID            `json:"id"`
	UserID         string               `json:"user_id"`
	SessionID      string               `json:"session_id"`
	JobPost        string               `json:"job_post"`
	GeneratedText  string               `json:"generated_text"`
	CurrentText    string               `json:"current_text"`
	Analysis       analyzer.JobAnalysis `json:"analysis"`
	TemplateID     templates.TemplateID `json:"template_id"`
	ProfileVersion int                  `json:"profile_version"`
	Score          scoring.QualityScore `json:"score"`
	Cost           ledger.CostMicros    `json:"cost_micros"`
	Degraded       bool                 `json:"degraded"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ProposalDetail is a proposal with its full edit history, oldest edit
// first.
type ProposalDetail struct {
	Proposal
	Edits []editlearn.EditRecord `json:"edits"`
}

// GenerateCommand carries one generation request. AllowDegraded opts into
// falling back to the extraction tier when the generation tier is down.
type GenerateCommand struct {
	UserID        string `json:"user_id"`
	SessionID     string `json:"session_id"`
	JobPost       string `json:"job_post"`
	AllowDegraded bool   `json:"allow_degraded"`
}

// BatchCommand carries up to MaxBatchSize job posts generated for one user.
// Each post runs as its own pipeline with its own session slot.
type BatchCommand struct {
	UserID        string   `json:"user_id"`
	JobPosts      []string `json:"job_posts"`
	AllowDegraded bool     `json:"allow_degraded"`
}

// MaxBatchSize bounds how many postings one batch request may carry.
const MaxBatchSize = 10

// BatchResult reports the outcome of a single posting within a batch.
type BatchResult struct {
	Proposal *Proposal `json:"proposal,omitempty"`
	Error    string    `json:"error,omitempty"`
	Code     ErrorCode `json:"code,omitempty"`
}

// EditCommand records one user edit against a proposal: the full edited
// text as the user saved it.
type EditCommand struct {
	EditedText string `json:"edited_text"`
}

// EditResult is what a recorded edit produces: the classified record and
// the re-scored proposal.
type EditResult struct {
	Record   editlearn.EditRecord `json:"record"`
	Proposal *Proposal            `json:"proposal"`
}
