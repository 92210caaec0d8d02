// Package ledger implements the spending ledger that gates every provider
// call. Spend accumulates against a hard ceiling within a rolling calendar
// period; reservations are serialized so concurrent generation tasks can
// never overcommit the budget.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// CostMicros is a monetary amount in millionths of a dollar. Integer math
// keeps concurrent accumulation exact.
type CostMicros int64

// Dollars returns the amount formatted as a dollar string.
func (c CostMicros) Dollars() string {
	return fmt.Sprintf("$%.4f", float64(c)/1e6)
}

// Status is a point-in-time snapshot of ledger state.
type Status struct {
	Period    string     `json:"period"`
	Ceiling   CostMicros `json:"ceiling_micros"`
	Committed CostMicros `json:"committed_micros"`
	Reserved  CostMicros `json:"reserved_micros"`
	Remaining CostMicros `json:"remaining_micros"`
}

// Store persists committed spend per period.
type Store interface {
	// LoadPeriod returns the committed spend for a period, zero if absent.
	LoadPeriod(ctx context.Context, period string) (CostMicros, error)
	// AddSpend atomically adds delta to a period's committed spend and
	// returns the new total.
	AddSpend(ctx context.Context, period string, delta CostMicros) (CostMicros, error)
}

// System is the public contract for ledger operations.
type System interface {
	// Reserve claims estimated spend against the ceiling. The returned
	// reservation must be settled with exactly one Commit or Rollback.
	Reserve(ctx context.Context, estimated CostMicros) (*Reservation, error)
	Status(ctx context.Context) Status
	Handler() *Handler
}

type ledger struct {
	mu        sync.Mutex
	store     Store
	logger    *slog.Logger
	ceiling   CostMicros
	period    string
	committed CostMicros
	reserved  CostMicros
	loaded    bool
	now       func() time.Time
}

// New creates a ledger system with the given ceiling and backing store.
func New(store Store, ceiling CostMicros, logger *slog.Logger) System {
	return &ledger{
		store:   store,
		logger:  logger.With("system", "ledger"),
		ceiling: ceiling,
		now:     time.Now,
	}
}

func (l *ledger) Handler() *Handler {
	return NewHandler(l, l.logger)
}

func (l *ledger) Reserve(ctx context.Context, estimated CostMicros) (*Reservation, error) {
	if estimated < 0 {
		return nil, fmt.Errorf("%w: negative estimate", ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.refresh(ctx); err != nil {
		return nil, fmt.Errorf("load ledger period: %w", err)
	}

	if l.committed+l.reserved+estimated > l.ceiling {
		return nil, fmt.Errorf(
			"%w: committed %s + reserved %s + estimate %s exceeds ceiling %s",
			ErrBudgetExceeded,
			l.committed.Dollars(), l.reserved.Dollars(),
			estimated.Dollars(), l.ceiling.Dollars(),
		)
	}

	l.reserved += estimated

	return &Reservation{ledger: l, amount: estimated}, nil
}

func (l *ledger) Status(ctx context.Context) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.refresh(ctx); err != nil {
		l.logger.Warn("ledger refresh failed", "error", err)
	}

	remaining := l.ceiling - l.committed - l.reserved
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		Period:    l.period,
		Ceiling:   l.ceiling,
		Committed: l.committed,
		Reserved:  l.reserved,
		Remaining: remaining,
	}
}

// refresh loads committed spend for the current period, resetting in-memory
// counters when the calendar period rolls over. Caller must hold l.mu.
func (l *ledger) refresh(ctx context.Context) error {
	period := l.now().UTC().Format("2006-01")
	if l.loaded && period == l.period {
		return nil
	}

	committed, err := l.store.LoadPeriod(ctx, period)
	if err != nil {
		return err
	}

	if l.period != "" && l.period != period {
		l.logger.Info("ledger period rolled", "from", l.period, "to", period)
	}

	l.period = period
	l.committed = committed
	l.reserved = 0
	l.loaded = true

	return nil
}

func (l *ledger) commit(ctx context.Context, reserved, actual CostMicros) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reserved -= reserved

	total, err := l.store.AddSpend(ctx, l.period, actual)
	if err != nil {
		// In-memory committed still advances so the ceiling holds even
		// when persistence lags; the period reload reconciles later.
		l.committed += actual
		return fmt.Errorf("persist spend: %w", err)
	}

	l.committed = total

	l.logger.Info(
		"spend committed",
		"period", l.period,
		"actual", actual.Dollars(),
		"total", total.Dollars(),
	)

	return nil
}

func (l *ledger) release(reserved CostMicros) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reserved -= reserved
}

// Reservation is a claim against the ledger awaiting settlement.
type Reservation struct {
	mu      sync.Mutex
	ledger  *ledger
	amount  CostMicros
	settled bool
}

// Amount returns the reserved estimate.
func (r *Reservation) Amount() CostMicros {
	return r.amount
}

// Commit settles the reservation with the actual cost incurred.
func (r *Reservation) Commit(ctx context.Context, actual CostMicros) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settled {
		return ErrAlreadySettled
	}
	r.settled = true

	return r.ledger.commit(ctx, r.amount, actual)
}

// Rollback releases the reservation without committing spend.
// Safe to call after Commit; settled reservations are left alone.
func (r *Reservation) Rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settled {
		return
	}
	r.settled = true

	r.ledger.release(r.amount)
}
