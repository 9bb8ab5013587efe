// Package ledger records finished runs and ranks them.
package ledger

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/event"
)

// ErrDuplicateRun is returned when saving a run id that is already recorded.
var ErrDuplicateRun = errors.New("ledger: run already recorded")

// Record is one finished run.
type Record struct {
	RunID     uuid.UUID
	Outcome   event.Outcome
	Round     int
	Gold      int
	StartedAt time.Time
	EndedAt   time.Time
}

// FromSummary converts a run summary into a Record.
func FromSummary(s event.RunSummary) Record {
	return Record{
		RunID:     s.RunID,
		Outcome:   s.Outcome,
		Round:     s.Round,
		Gold:      s.Gold,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
}

// Duration returns how long the run lasted.
func (r Record) Duration() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

// Store persists Records.
type Store interface {
	// Save records r, or returns ErrDuplicateRun.
	Save(ctx context.Context, r Record) error
	// Best returns up to limit records ordered by gold, then round, both
	// descending, then earliest finish.
	Best(ctx context.Context, limit int) ([]Record, error)
	// Outcomes counts records by outcome.
	Outcomes(ctx context.Context) (map[event.Outcome]int, error)
}

// Less reports whether a ranks above b.
func Less(a, b Record) bool {
	if a.Gold != b.Gold {
		return a.Gold > b.Gold
	}
	if a.Round != b.Round {
		return a.Round > b.Round
	}
	return a.EndedAt.Before(b.EndedAt)
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	ids     map[uuid.UUID]bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[uuid.UUID]bool)}
}

func (m *MemoryStore) Save(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids[r.RunID] {
		return ErrDuplicateRun
	}
	m.ids[r.RunID] = true
	m.records = append(m.records, r)
	return nil
}

func (m *MemoryStore) Best(_ context.Context, limit int) ([]Record, error) {
	m.mu.Lock()
	out := slices.Clone(m.records)
	m.mu.Unlock()
	slices.SortStableFunc(out, func(a, b Record) int {
		switch {
		case Less(a, b):
			return -1
		case Less(b, a):
			return 1
		}
		return 0
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Outcomes(_ context.Context) (map[event.Outcome]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[event.Outcome]int)
	for _, r := range m.records {
		counts[r.Outcome]++
	}
	return counts, nil
}

// Recorder is a Listener that saves every finished run to a Store.
// Abandoned runs are skipped.
type Recorder struct {
	event.Funcs
	store   Store
	timeout time.Duration
	logger  *zap.Logger
}

// NewRecorder creates a Recorder. Saves that fail are logged at warn.
//
// Precondition: store and logger must be non-nil; timeout > 0.
func NewRecorder(store Store, timeout time.Duration, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, timeout: timeout, logger: logger}
}

// OnRunEnded saves s.
func (r *Recorder) OnRunEnded(s event.RunSummary) {
	if s.Outcome == event.OutcomeAbandoned {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Save(ctx, FromSummary(s)); err != nil {
		r.logger.Warn("run not recorded", zap.Stringer("run_id", s.RunID), zap.Error(err))
		return
	}
	r.logger.Debug("run recorded", zap.Stringer("run_id", s.RunID), zap.String("outcome", string(s.Outcome)))
}
