package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/ledger"
	"github.com/cory-johannsen/sunduk/internal/storage/postgres"
	"github.com/cory-johannsen/sunduk/internal/testutil"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func record(outcome event.Outcome, round, gold int, endOffset time.Duration) ledger.Record {
	return ledger.Record{
		RunID:     uuid.New(),
		Outcome:   outcome,
		Round:     round,
		Gold:      gold,
		StartedAt: t0,
		EndedAt:   t0.Add(endOffset),
	}
}

// Container-backed tests share one database; each asserts on its own rows.
func TestRunRepository(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewRunRepository(pool)
	ctx := context.Background()

	t.Run("Save rejects duplicate run ids", func(t *testing.T) {
		r := record(event.OutcomeAttrition, 2, 1, time.Minute)
		require.NoError(t, repo.Save(ctx, r))
		assert.ErrorIs(t, repo.Save(ctx, r), ledger.ErrDuplicateRun)
	})

	t.Run("Best ranks by gold, round, then earliest finish", func(t *testing.T) {
		top := record(event.OutcomeDragonVictory, 6, 500, 10*time.Minute)
		tieEarly := record(event.OutcomeGaveUp, 4, 400, 2*time.Minute)
		tieLate := record(event.OutcomeGaveUp, 4, 400, 3*time.Minute)
		deeper := record(event.OutcomeDragonDefeat, 9, 400, 30*time.Minute)
		for _, r := range []ledger.Record{tieLate, top, tieEarly, deeper} {
			require.NoError(t, repo.Save(ctx, r))
		}

		got, err := repo.Best(ctx, 4)
		require.NoError(t, err)
		require.Len(t, got, 4)
		ids := []uuid.UUID{got[0].RunID, got[1].RunID, got[2].RunID, got[3].RunID}
		assert.Equal(t, []uuid.UUID{top.RunID, deeper.RunID, tieEarly.RunID, tieLate.RunID}, ids)
		assert.Equal(t, event.OutcomeDragonVictory, got[0].Outcome)
		assert.True(t, got[0].StartedAt.Equal(t0))
		assert.Equal(t, 10*time.Minute, got[0].Duration())
	})

	t.Run("Best with zero limit is empty", func(t *testing.T) {
		got, err := repo.Best(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Outcomes counts every stored run", func(t *testing.T) {
		counts, err := repo.Outcomes(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[event.Outcome]int{
			event.OutcomeAttrition:     1,
			event.OutcomeDragonVictory: 1,
			event.OutcomeDragonDefeat:  1,
			event.OutcomeGaveUp:        2,
		}, counts)
	})
}

func TestRunRepository_ServesRecorder(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewRunRepository(pool)
	rec := ledger.NewRecorder(repo, 5*time.Second, zap.NewNop())

	id := uuid.New()
	rec.OnRunEnded(event.RunSummary{
		RunID: id, Outcome: event.OutcomeAttrition, Round: 3, Gold: 3,
		StartedAt: t0, EndedAt: t0.Add(time.Minute),
	})
	rec.OnRunEnded(event.RunSummary{
		RunID: uuid.New(), Outcome: event.OutcomeAbandoned, Round: 1,
		StartedAt: t0, EndedAt: t0.Add(time.Second),
	})

	got, err := repo.Best(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].RunID)
}

func TestMigrate_RoundTrip(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)

	res, err := postgres.Migrate(pc.DSN(), postgres.Up, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.Version)
	assert.False(t, res.Dirty)

	res, err = postgres.Migrate(pc.DSN(), postgres.Up, 0)
	require.NoError(t, err)
	assert.True(t, res.NoChange)

	_, err = postgres.Migrate(pc.DSN(), postgres.Down, 0)
	require.NoError(t, err)
	_, err = pc.RawPool.Exec(context.Background(), `SELECT 1 FROM runs`)
	assert.Error(t, err)

	_, err = postgres.Migrate(pc.DSN(), "sideways", 0)
	assert.Error(t, err)
}
