package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/quillworks/quill/pkg/repository"
)

type store struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed profile store.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

const profileColumns = `user_id, formality, signature_phrases, rhythm,
	fragments, mild_redundancy, casual_asides,
	maturity, generation_count, confidence, version, updated_at`

func (s *store) Load(ctx context.Context, userID string) (*VoiceProfile, error) {
	q := fmt.Sprintf("SELECT %s FROM voice_profiles WHERE user_id = $1", profileColumns)

	p, err := repository.QueryOne(ctx, s.db, q, []any{userID}, scanProfile)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (s *store) Save(ctx context.Context, p *VoiceProfile) error {
	phrases, err := json.Marshal(p.SignaturePhrases)
	if err != nil {
		return fmt.Errorf("marshal phrases: %w", err)
	}

	q := `
		INSERT INTO voice_profiles(
			user_id, formality, signature_phrases, rhythm,
			fragments, mild_redundancy, casual_asides,
			maturity, generation_count, confidence, version, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			formality = $2, signature_phrases = $3, rhythm = $4,
			fragments = $5, mild_redundancy = $6, casual_asides = $7,
			maturity = $8, generation_count = $9, confidence = $10,
			version = $11, updated_at = $12`

	args := []any{
		p.UserID, p.Formality, phrases, p.Rhythm,
		p.Imperfections.Fragments, p.Imperfections.MildRedundancy, p.Imperfections.CasualAsides,
		p.Maturity, p.GenerationCount, p.Confidence, p.Version, p.UpdatedAt,
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

func scanProfile(s repository.Scanner) (VoiceProfile, error) {
	var p VoiceProfile
	var phrases []byte

	err := s.Scan(
		&p.UserID,
		&p.Formality,
		&phrases,
		&p.Rhythm,
		&p.Imperfections.Fragments,
		&p.Imperfections.MildRedundancy,
		&p.Imperfections.CasualAsides,
		&p.Maturity,
		&p.GenerationCount,
		&p.Confidence,
		&p.Version,
		&p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(phrases, &p.SignaturePhrases); err != nil {
		return p, fmt.Errorf("unmarshal phrases: %w", err)
	}
	if p.SignaturePhrases == nil {
		p.SignaturePhrases = map[string]int{}
	}

	return p, nil
}
