package proposals

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/editlearn"
	"github.com/quillworks/quill/pkg/pagination"
	"github.com/quillworks/quill/pkg/query"
	"github.com/quillworks/quill/pkg/repository"
)

type store struct {
	db         *sql.DB
	pagination pagination.Config
}

// NewStore creates a PostgreSQL-backed proposal store.
func NewStore(db *sql.DB, pageConfig pagination.Config) Store {
	return &store{db: db, pagination: pageConfig}
}

func (s *store) Insert(ctx context.Context, p *Proposal) error {
	analysis, err := json.Marshal(p.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	score, err := json.Marshal(p.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	q := `
		INSERT INTO proposals(
			id, user_id, session_id, job_post, generated_text, current_text,
			analysis, template_id, profile_version, score, cost_micros,
			degraded, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	args := []any{
		p.ID, p.UserID, p.SessionID, p.JobPost, p.GeneratedText, p.CurrentText,
		analysis, p.TemplateID, p.ProfileVersion, score, p.Cost,
		p.Degraded, p.CreatedAt, p.UpdatedAt,
	}

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		_, execErr := tx.ExecContext(ctx, q, args...)
		return struct{}{}, execErr
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, s.db, q, args, scanProposal)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Proposal], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "JobPost", "CurrentText")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count proposals: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanProposal)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if _, execErr := tx.ExecContext(
			ctx,
			"DELETE FROM edit_records WHERE proposal_id = $1",
			id,
		); execErr != nil {
			return struct{}{}, execErr
		}

		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM proposals WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

// SaveEdit persists the edit record and the proposal's updated text and
// score in one transaction so history and state never diverge.
func (s *store) SaveEdit(ctx context.Context, p *Proposal, record editlearn.EditRecord) error {
	spans, err := json.Marshal(record.Spans)
	if err != nil {
		return fmt.Errorf("marshal spans: %w", err)
	}
	score, err := json.Marshal(p.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		if _, execErr := tx.ExecContext(
			ctx,
			`INSERT INTO edit_records(id, proposal_id, user_id, classification, spans, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			record.ID, record.ProposalID, p.UserID, record.Classification, spans, record.CreatedAt,
		); execErr != nil {
			return struct{}{}, execErr
		}

		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			`UPDATE proposals SET current_text = $2, score = $3, updated_at = $4 WHERE id = $1`,
			p.ID, p.CurrentText, score, p.UpdatedAt,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return nil
}

func (s *store) Edits(ctx context.Context, proposalID uuid.UUID) ([]editlearn.EditRecord, error) {
	q := `
		SELECT e.id, e.proposal_id, e.classification, e.spans, e.created_at
		FROM edit_records e
		WHERE e.proposal_id = $1
		ORDER BY e.created_at ASC`

	records, err := repository.QueryMany(ctx, s.db, q, []any{proposalID}, scanEditRecord)
	if err != nil {
		return nil, fmt.Errorf("query proposal edits: %w", err)
	}

	return records, nil
}

func (s *store) EditsForUser(ctx context.Context, userID string, limit int) ([]editlearn.EditRecord, error) {
	q := `
		SELECT e.id, e.proposal_id, e.classification, e.spans, e.created_at
		FROM edit_records e
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2`

	records, err := repository.QueryMany(ctx, s.db, q, []any{userID, limit}, scanEditRecord)
	if err != nil {
		return nil, fmt.Errorf("query edit records: %w", err)
	}

	// Newest-first from the index; learning weights by recency with newest
	// last, so reverse.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

func scanEditRecord(s repository.Scanner) (editlearn.EditRecord, error) {
	var r editlearn.EditRecord
	var spans []byte

	err := s.Scan(&r.ID, &r.ProposalID, &r.Classification, &spans, &r.CreatedAt)
	if err != nil {
		return r, err
	}

	if err := json.Unmarshal(spans, &r.Spans); err != nil {
		return r, fmt.Errorf("unmarshal spans: %w", err)
	}

	return r, nil
}
