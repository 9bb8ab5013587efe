package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/ledger"
)

// RunRepository is a ledger.Store backed by the runs table.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the runs
// migration applied.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts r.
//
// Postcondition: Returns ledger.ErrDuplicateRun if r.RunID is already stored.
func (r *RunRepository) Save(ctx context.Context, rec ledger.Record) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO runs (run_id, outcome, round, gold, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.RunID, string(rec.Outcome), rec.Round, rec.Gold, rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ledger.ErrDuplicateRun
		}
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Best returns up to limit runs in ledger rank order.
//
// Precondition: limit must be >= 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *RunRepository) Best(ctx context.Context, limit int) ([]ledger.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT run_id, outcome, round, gold, started_at, ended_at
		FROM runs
		ORDER BY gold DESC, round DESC, ended_at ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	out := make([]ledger.Record, 0)
	for rows.Next() {
		var (
			rec     ledger.Record
			outcome string
		)
		if err := rows.Scan(&rec.RunID, &outcome, &rec.Round, &rec.Gold, &rec.StartedAt, &rec.EndedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		rec.Outcome = event.Outcome(outcome)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Outcomes counts stored runs by outcome.
func (r *RunRepository) Outcomes(ctx context.Context) (map[event.Outcome]int, error) {
	rows, err := r.db.Query(ctx, `SELECT outcome, COUNT(*) FROM runs GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("counting outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[event.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		counts[event.Outcome(outcome)] = n
	}
	return counts, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// SQLSTATE 23505 is unique_violation.
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
