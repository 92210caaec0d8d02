package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quillworks/quill/pkg/repository"
)

type store struct {
	db *sql.DB
}

// NewStore creates a PostgreSQL-backed ledger store.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) LoadPeriod(ctx context.Context, period string) (CostMicros, error) {
	var committed int64
	err := s.db.QueryRowContext(
		ctx,
		"SELECT committed_micros FROM ledger_periods WHERE period = $1",
		period,
	).Scan(&committed)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return CostMicros(committed), nil
}

func (s *store) AddSpend(ctx context.Context, period string, delta CostMicros) (CostMicros, error) {
	q := `
		INSERT INTO ledger_periods(period, committed_micros)
		VALUES ($1, $2)
		ON CONFLICT (period)
		DO UPDATE SET committed_micros = ledger_periods.committed_micros + $2,
		              updated_at = now()
		RETURNING committed_micros`

	total, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int64, error) {
		var t int64
		err := tx.QueryRowContext(ctx, q, period, int64(delta)).Scan(&t)
		return t, err
	})
	if err != nil {
		return 0, err
	}

	return CostMicros(total), nil
}
