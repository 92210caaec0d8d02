package proposals

import (
	"context"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/editlearn"
	"github.com/quillworks/quill/pkg/pagination"
)

// System defines the public contract for proposal domain operations.
type System interface {
	Handler() *Handler

	Generate(ctx context.Context, cmd GenerateCommand) (*Proposal, error)
	GenerateBatch(ctx context.Context, cmd BatchCommand) ([]BatchResult, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Proposal], error)

	Find(ctx context.Context, id uuid.UUID) (*Proposal, error)

	// Detail returns a proposal together with its full edit history.
	Detail(ctx context.Context, id uuid.UUID) (*ProposalDetail, error)

	Delete(ctx context.Context, id uuid.UUID) error
	RecordEdit(ctx context.Context, id uuid.UUID, cmd EditCommand) (*EditResult, error)
}

// Store is the persistence contract the orchestrator runs over.
type Store interface {
	Insert(ctx context.Context, p *Proposal) error
	Find(ctx context.Context, id uuid.UUID) (*Proposal, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Proposal], error)

	Delete(ctx context.Context, id uuid.UUID) error

	// Edits returns a proposal's edit records, oldest first.
	Edits(ctx context.Context, proposalID uuid.UUID) ([]editlearn.EditRecord, error)

	// SaveEdit persists an edit record and the proposal's new current text
	// and score in one transaction.
	SaveEdit(ctx context.Context, p *Proposal, record editlearn.EditRecord) error

	// EditsForUser returns the user's most recent edit records across all
	// proposals, newest last, bounded by limit.
	EditsForUser(ctx context.Context, userID string, limit int) ([]editlearn.EditRecord, error)
}
