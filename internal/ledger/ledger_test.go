package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/ledger"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func rec(gold, round int, ended time.Duration) ledger.Record {
	return ledger.Record{
		RunID:     uuid.New(),
		Outcome:   event.OutcomeAttrition,
		Round:     round,
		Gold:      gold,
		StartedAt: t0,
		EndedAt:   t0.Add(ended),
	}
}

func TestMemoryStore_BestOrdering(t *testing.T) {
	ctx := context.Background()
	s := ledger.NewMemoryStore()
	a := rec(10, 3, time.Minute)
	b := rec(10, 5, 2*time.Minute)
	c := rec(20, 1, 3*time.Minute)
	d := rec(10, 5, time.Minute)
	for _, r := range []ledger.Record{a, b, c, d} {
		require.NoError(t, s.Save(ctx, r))
	}

	best, err := s.Best(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Record{c, d, b}, best)
}

func TestMemoryStore_DuplicateRun(t *testing.T) {
	ctx := context.Background()
	s := ledger.NewMemoryStore()
	r := rec(1, 1, time.Second)
	require.NoError(t, s.Save(ctx, r))
	assert.ErrorIs(t, s.Save(ctx, r), ledger.ErrDuplicateRun)
}

func TestMemoryStore_Outcomes(t *testing.T) {
	ctx := context.Background()
	s := ledger.NewMemoryStore()
	r := rec(1, 1, time.Second)
	v := rec(9, 9, time.Second)
	v.Outcome = event.OutcomeDragonVictory
	require.NoError(t, s.Save(ctx, r))
	require.NoError(t, s.Save(ctx, v))

	counts, err := s.Outcomes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[event.Outcome]int{event.OutcomeAttrition: 1, event.OutcomeDragonVictory: 1}, counts)
}

func TestRecord_Duration(t *testing.T) {
	assert.Equal(t, 90*time.Second, rec(0, 1, 90*time.Second).Duration())
}

func TestRecorder_SavesAndSkipsAbandoned(t *testing.T) {
	s := ledger.NewMemoryStore()
	var l event.Listener = ledger.NewRecorder(s, time.Second, zap.NewNop())

	l.OnRunEnded(event.RunSummary{RunID: uuid.New(), Outcome: event.OutcomeAbandoned})
	l.OnRunEnded(event.RunSummary{RunID: uuid.New(), Outcome: event.OutcomeGaveUp, Round: 4, Gold: 7})
	l.OnGoldChanged(3)

	best, err := s.Best(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, best, 1)
	assert.Equal(t, event.OutcomeGaveUp, best[0].Outcome)
	assert.Equal(t, 7, best[0].Gold)
}

type failingStore struct{ ledger.Store }

func (failingStore) Save(context.Context, ledger.Record) error { return errors.New("disk full") }

func TestRecorder_LogsSaveFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := ledger.NewRecorder(failingStore{}, time.Second, zap.New(core))
	r.OnRunEnded(event.RunSummary{RunID: uuid.New(), Outcome: event.OutcomeAttrition})

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "run not recorded", warns[0].Message)
}

func TestProperty_BestIsSortedAndBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		s := ledger.NewMemoryStore()
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		for i := 0; i < n; i++ {
			r := rec(rapid.IntRange(0, 50).Draw(rt, "gold"), rapid.IntRange(1, 20).Draw(rt, "round"),
				time.Duration(rapid.IntRange(0, 1000).Draw(rt, "ended"))*time.Second)
			_ = s.Save(ctx, r)
		}
		limit := rapid.IntRange(0, 40).Draw(rt, "limit")
		best, _ := s.Best(ctx, limit)
		if len(best) != min(n, limit) {
			rt.Fatalf("got %d records, want %d", len(best), min(n, limit))
		}
		for i := 1; i < len(best); i++ {
			if ledger.Less(best[i], best[i-1]) {
				rt.Fatalf("record %d ranks above record %d", i, i-1)
			}
		}
	})
}
