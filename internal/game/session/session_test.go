package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/combat"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/resurrection"
	"github.com/cory-johannsen/sunduk/internal/game/round"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
	"github.com/cory-johannsen/sunduk/internal/game/tavern"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type selection struct {
	id       uuid.UUID
	selected bool
}

type recorder struct {
	states   []state.GameState
	clicks   []uuid.UUID
	selected []selection
	toasts   []string
	runs     []event.RunSummary
	cleared  []int
}

func (r *recorder) listener() event.Listener {
	return event.Funcs{
		StateChanged:       func(_, next state.GameState) { r.states = append(r.states, next) },
		CardClicked:        func(id uuid.UUID) { r.clicks = append(r.clicks, id) },
		AdventurerSelected: func(id uuid.UUID, sel bool) { r.selected = append(r.selected, selection{id, sel}) },
		Toast:              func(msg string, _ time.Duration) { r.toasts = append(r.toasts, msg) },
		RunEnded:           func(s event.RunSummary) { r.runs = append(r.runs, s) },
		RoundCleared:       func(n int, _ string) { r.cleared = append(r.cleared, n) },
	}
}

// newSession scripts the source: the first seven values pick the starting
// hand, the rest feed the dungeon and later draws.
func newSession(t testing.TB, values ...int) (*Session, *recorder) {
	t.Helper()
	ticks := 0
	clock := func() time.Time {
		ticks++
		return t0.Add(time.Duration(ticks) * time.Minute)
	}
	s := New(DefaultConfig(), card.MustBuiltin(), dice.NewFixedSource(values...), zap.NewNop(), WithClock(clock))
	rec := &recorder{}
	s.Subscribe(rec.listener())
	return s, rec
}

func place(t testing.TB, s *Session, id string, z *table.Zone) *table.Instance {
	t.Helper()
	d, err := s.Library().Lookup(id)
	require.NoError(t, err)
	inst, err := s.table.Place(d, z, -1)
	require.NoError(t, err)
	return inst
}

func TestNew_StartsAtMainMenu(t *testing.T) {
	s, _ := newSession(t)
	assert.Equal(t, state.MainMenu, s.State())
	assert.Equal(t, uuid.Nil, s.Snapshot().RunID)
}

func TestStartRun_DealsHandAndRow(t *testing.T) {
	s, rec := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	d := s.StartRun()

	v := s.Snapshot()
	assert.Equal(t, round.ActionInProgress, d.Action)
	assert.Equal(t, state.EnemyBattle, v.State)
	assert.Len(t, v.Adventurers, 7)
	require.Len(t, v.Dungeon, 1)
	assert.Equal(t, "goblin_basic", v.Dungeon[0].Def.ID)
	assert.NotEqual(t, uuid.Nil, v.RunID)
	assert.Equal(t, []state.GameState{state.RunInit, state.DealHand, state.EnemyBattle}, rec.states)
}

func TestSelectCard_TogglesAdventurer(t *testing.T) {
	s, rec := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	v := s.Snapshot()
	a, b := v.Adventurers[0].ID, v.Adventurers[1].ID

	require.NoError(t, s.SelectCard(a))
	require.NoError(t, s.SelectCard(b))
	require.NoError(t, s.SelectCard(b))

	assert.Equal(t, []selection{{a, true}, {a, false}, {b, true}, {b, false}}, rec.selected)
	assert.Equal(t, []uuid.UUID{a, b, b}, rec.clicks)
	assert.Nil(t, s.selection.Selected())
}

func TestSelectCard_UnknownCardStillClicks(t *testing.T) {
	s, rec := newSession(t, 0)
	s.StartRun()
	id := uuid.New()
	assert.ErrorIs(t, s.SelectCard(id), ErrUnknownCard)
	assert.Equal(t, []uuid.UUID{id}, rec.clicks)
}

func TestSelectCard_DungeonAttacksWithSelection(t *testing.T) {
	s, rec := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	v := s.Snapshot()
	goblin := v.Dungeon[0].ID

	assert.ErrorIs(t, s.SelectCard(goblin), ErrNoAttacker)

	attacker := v.Adventurers[0].ID
	require.NoError(t, s.SelectCard(attacker))
	require.NoError(t, s.SelectCard(goblin))

	v = s.Snapshot()
	assert.Empty(t, v.Dungeon)
	assert.Len(t, v.Adventurers, 6)
	assert.Equal(t, []table.Fallen{{ID: "warrior_basic", Class: card.ClassWarrior}}, v.Graveyard)
	assert.True(t, v.RoundCleared)
	assert.Nil(t, s.selection.Selected())
	assert.Equal(t, selection{attacker, false}, rec.selected[len(rec.selected)-1])
	assert.Equal(t, []int{1}, rec.cleared)
}

func TestAttack_ChestLockedToasts(t *testing.T) {
	s, rec := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	chest := place(t, s, "chest_basic", s.table.Dungeon)
	attacker := s.table.Adventurers.At(0)

	_, err := s.Attack(attacker.ID, chest.ID)
	assert.ErrorIs(t, err, combat.ErrChestLocked)
	assert.Equal(t, []string{ToastChestLocked}, rec.toasts)
	assert.Equal(t, 2, s.table.Dungeon.Len())
	assert.Equal(t, 7, s.table.Adventurers.Len())
}

func TestReroll_ScrollFlow(t *testing.T) {
	// scroll, six warriors, a goblin; the replacement draw picks a skeleton.
	s, rec := newSession(t, 5, 0, 0, 0, 0, 0, 0, 0, 1)
	s.StartRun()
	v := s.Snapshot()
	scroll := v.Adventurers[0]
	require.True(t, scroll.Def.IsScroll())
	goblin := v.Dungeon[0].ID

	require.NoError(t, s.SelectCard(scroll.ID))
	assert.True(t, s.Snapshot().RerollActive)

	require.NoError(t, s.SelectCard(goblin))
	assert.True(t, s.Snapshot().Dungeon[0].Marked)

	_, err := s.Attack(v.Adventurers[1].ID, goblin)
	assert.Error(t, err, "attacks are refused in reroll mode")

	reps, err := s.CommitReroll()
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, 0, reps[0].Index)
	assert.Equal(t, "skeleton_basic", reps[0].New.ID)

	v = s.Snapshot()
	assert.False(t, v.RerollActive)
	assert.Len(t, v.Adventurers, 6)
	assert.Equal(t, "skeleton_basic", v.Dungeon[0].Def.ID)
	assert.Equal(t, []table.Fallen{{ID: "scroll_reroll", Class: card.ClassScroll}}, v.Graveyard)
	assert.Nil(t, s.selection.Selected())
	assert.Equal(t, selection{scroll.ID, false}, rec.selected[len(rec.selected)-1])
}

func TestReroll_DeselectScrollExits(t *testing.T) {
	s, _ := newSession(t, 5, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	scroll := s.table.Adventurers.At(0)

	require.NoError(t, s.SelectCard(scroll.ID))
	require.NoError(t, s.SelectCard(s.table.Dungeon.At(0).ID))
	require.NoError(t, s.SelectCard(scroll.ID))

	v := s.Snapshot()
	assert.False(t, v.RerollActive)
	assert.False(t, v.Dungeon[0].Marked)
}

func TestResurrection_BlocksSelectionUntilClosed(t *testing.T) {
	s, _ := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	potion := place(t, s, "potion_basic", s.table.Dungeon)
	place(t, s, "potion_basic", s.table.Dungeon)
	goblin := s.table.Dungeon.At(0)

	_, err := s.Attack(s.table.Adventurers.At(0).ID, goblin.ID)
	require.NoError(t, err)
	res, err := s.Attack(s.table.Adventurers.At(0).ID, potion.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PotionsConsumed)
	assert.Equal(t, 2, res.ResurrectionCredits)

	assert.ErrorIs(t, s.SelectCard(s.table.Adventurers.At(0).ID), resurrection.ErrInProgress)
	_, err = s.AdvanceRound()
	assert.ErrorIs(t, err, resurrection.ErrInProgress)

	closed, err := s.PickResurrectionClass(card.ClassMage)
	require.NoError(t, err)
	assert.False(t, closed)
	closed, err = s.PickResurrectionClass(card.ClassWarrior)
	require.NoError(t, err)
	assert.True(t, closed)

	v := s.Snapshot()
	assert.False(t, v.ResurrectionOpen)
	require.Len(t, v.Adventurers, 7)
	assert.Equal(t, "mage_basic", v.Adventurers[5].Def.ID)
	assert.Equal(t, "warrior_basic", v.Adventurers[6].Def.ID)
	assert.Empty(t, v.Graveyard)
	assert.True(t, v.RoundCleared)
}

func TestAdvanceRound_PaysGold(t *testing.T) {
	s, _ := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	_, err := s.AdvanceRound()
	assert.ErrorIs(t, err, round.ErrRoundNotCleared)

	_, err = s.Attack(s.table.Adventurers.At(0).ID, s.table.Dungeon.At(0).ID)
	require.NoError(t, err)
	_, err = s.AdvanceRound()
	require.NoError(t, err)

	v := s.Snapshot()
	assert.Equal(t, 1, v.Gold)
	assert.Equal(t, 2, v.Round)
	assert.Len(t, v.Dungeon, 2)
}

func TestRunEnded_Attrition(t *testing.T) {
	s, rec := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	runID := s.Snapshot().RunID
	s.table.Adventurers.Clear()
	last := place(t, s, "thief_basic", s.table.Adventurers)
	place(t, s, "goblin_basic", s.table.Dungeon)

	_, err := s.Attack(last.ID, s.table.Dungeon.At(0).ID)
	require.NoError(t, err)

	assert.Equal(t, state.Tavern, s.State())
	require.Len(t, rec.runs, 1)
	assert.Equal(t, event.RunSummary{
		RunID:     runID,
		Outcome:   event.OutcomeAttrition,
		Round:     1,
		Gold:      0,
		StartedAt: t0.Add(time.Minute),
		EndedAt:   t0.Add(2 * time.Minute),
	}, rec.runs[0])
	assert.Equal(t, uuid.Nil, s.Snapshot().RunID)
}

func TestStartRun_AbandonsActiveRun(t *testing.T) {
	s, rec := newSession(t, 0)
	s.StartRun()
	first := s.Snapshot().RunID
	s.StartRun()

	require.Len(t, rec.runs, 1)
	assert.Equal(t, first, rec.runs[0].RunID)
	assert.Equal(t, event.OutcomeAbandoned, rec.runs[0].Outcome)
	assert.NotEqual(t, first, s.Snapshot().RunID)
}

func TestStartRun_FromDragonBattleResets(t *testing.T) {
	s, _ := newSession(t, 0, 0, 0, 0, 0, 0, 0, 0)
	s.StartRun()
	for range 3 {
		place(t, s, "dragon_basic", s.table.Dragons)
	}
	s.rounds.Reevaluate()
	require.Equal(t, state.DragonBattle, s.State())

	s.StartRun()
	v := s.Snapshot()
	assert.Equal(t, state.EnemyBattle, v.State)
	assert.Empty(t, v.Dragons)
	assert.Equal(t, 0, v.DragonCount)
	assert.Equal(t, 1, v.Round)
}

func TestGiveUp(t *testing.T) {
	s, rec := newSession(t, 0)
	assert.ErrorIs(t, s.GiveUp(), round.ErrNotInBattle)

	s.StartRun()
	require.NoError(t, s.GiveUp())
	assert.Equal(t, state.Tavern, s.State())
	assert.Empty(t, rec.toasts)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, event.OutcomeGaveUp, rec.runs[0].Outcome)
}

func TestTavern_HireAndFight(t *testing.T) {
	s, _ := newSession(t, 1)
	_, err := s.HireHeroes()
	assert.ErrorIs(t, err, ErrNotInTavern)

	require.NoError(t, s.EnterTavern())
	_, err = s.Fight()
	assert.ErrorIs(t, err, tavern.ErrNoHires)

	hired, err := s.HireHeroes()
	require.NoError(t, err)
	require.Len(t, hired, 7)

	d, err := s.Fight()
	require.NoError(t, err)
	assert.Equal(t, round.ActionInProgress, d.Action)

	v := s.Snapshot()
	assert.Equal(t, state.EnemyBattle, v.State)
	assert.Empty(t, v.Hire)
	require.Len(t, v.Adventurers, 7)
	for i, c := range v.Adventurers {
		assert.Equal(t, hired[i].ID, c.ID)
	}
	assert.Equal(t, "skeleton_basic", v.Dungeon[0].Def.ID)
	assert.NotEqual(t, uuid.Nil, v.RunID)
}

func TestEnterTavern_RefusedInBattle(t *testing.T) {
	s, _ := newSession(t, 0)
	s.StartRun()
	assert.ErrorIs(t, s.EnterTavern(), ErrBattleInProgress)
}

func TestPause_BlocksCommands(t *testing.T) {
	s, _ := newSession(t, 0)
	s.StartRun()
	require.True(t, s.Pause())

	assert.ErrorIs(t, s.SelectCard(s.table.Adventurers.At(0).ID), ErrPaused)
	_, err := s.AdvanceRound()
	assert.ErrorIs(t, err, ErrPaused)

	require.True(t, s.Resume())
	assert.Equal(t, state.EnemyBattle, s.State())
}

func TestGoToMainMenu_Abandons(t *testing.T) {
	s, rec := newSession(t, 0)
	s.StartRun()
	s.GoToMainMenu()
	assert.Equal(t, state.MainMenu, s.State())
	require.Len(t, rec.runs, 1)
	assert.Equal(t, event.OutcomeAbandoned, rec.runs[0].Outcome)
	assert.Empty(t, s.Snapshot().Adventurers)
}

func TestProperty_RandomPlayKeepsInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := New(DefaultConfig(), card.MustBuiltin(),
			dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), zap.NewNop())
		s.StartRun()
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			v := s.Snapshot()
			switch rapid.IntRange(0, 5).Draw(rt, "cmd") {
			case 0, 1, 2:
				all := append(append([]CardView{}, v.Adventurers...), v.Dungeon...)
				if len(all) > 0 {
					_ = s.SelectCard(rapid.SampledFrom(all).Draw(rt, "card").ID)
				}
			case 3:
				_, _ = s.AdvanceRound()
			case 4:
				_, _ = s.CommitReroll()
			case 5:
				_, _ = s.PickResurrectionClass(rapid.SampledFrom(card.AllClasses).Draw(rt, "class"))
			}

			v = s.Snapshot()
			if v.DragonCount != len(v.Dragons) {
				rt.Fatalf("dragon counter %d, zone holds %d", v.DragonCount, len(v.Dragons))
			}
			if v.State == state.EnemyBattle && !v.ResurrectionOpen {
				enemy := false
				for _, c := range v.Dungeon {
					enemy = enemy || c.Def.IsOrdinaryEnemy()
				}
				if enemy == v.RoundCleared {
					rt.Fatalf("round cleared=%v with active enemy=%v", v.RoundCleared, enemy)
				}
			}
			if sel := s.selection.Selected(); sel != nil && sel.Zone() != s.table.Adventurers {
				rt.Fatalf("selection %s is off the adventurer row", sel.Def.ID)
			}
			if !v.State.IsBattle() {
				s.StartRun()
			}
		}
	})
}
