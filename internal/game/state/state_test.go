package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sunduk/internal/game/state"
)

type transition struct{ prev, next state.GameState }

func newRecorded() (*state.Machine, *[]transition) {
	var seen []transition
	m := state.NewMachine(func(prev, next state.GameState) {
		seen = append(seen, transition{prev, next})
	}, zap.NewNop())
	return m, &seen
}

func TestMachine_StartsInBoot(t *testing.T) {
	m, _ := newRecorded()
	assert.Equal(t, state.Boot, m.Current())
}

func TestMachine_ChangeSameStateIsNoop(t *testing.T) {
	m, seen := newRecorded()
	assert.True(t, m.Change(state.Tavern))
	assert.False(t, m.Change(state.Tavern))
	assert.Equal(t, []transition{{state.Boot, state.Tavern}}, *seen)
}

func TestMachine_PauseResume(t *testing.T) {
	m, seen := newRecorded()
	m.Change(state.DragonBattle)

	assert.True(t, m.Pause())
	assert.False(t, m.Pause())
	assert.Equal(t, state.Pause, m.Current())

	assert.True(t, m.Resume())
	assert.False(t, m.Resume())
	assert.Equal(t, state.DragonBattle, m.Current())
	assert.Len(t, *seen, 3)
}

func TestGameState_IsBattle(t *testing.T) {
	assert.True(t, state.EnemyBattle.IsBattle())
	assert.True(t, state.DragonBattle.IsBattle())
	assert.False(t, state.Tavern.IsBattle())
	assert.Equal(t, "dragon_battle", state.DragonBattle.String())
	assert.Equal(t, "state(99)", state.GameState(99).String())
}

func TestGameState_EveryStateIsNamed(t *testing.T) {
	want := []string{"boot", "main_menu", "tavern", "run_init", "deal_hand", "enemy_battle", "dragon_battle", "pause"}
	var got []string
	for s := state.Boot; s <= state.Pause; s++ {
		got = append(got, s.String())
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "state(8)", (state.Pause + 1).String())
}

func TestProperty_ObserverSeesOnlyRealTransitions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m, seen := newRecorded()
		changes := 0
		for _, s := range rapid.SliceOf(rapid.IntRange(int(state.Boot), int(state.Pause))).Draw(rt, "states") {
			if m.Change(state.GameState(s)) {
				changes++
			}
		}
		if len(*seen) != changes {
			rt.Fatalf("observer saw %d transitions, machine reported %d", len(*seen), changes)
		}
		for _, tr := range *seen {
			if tr.prev == tr.next {
				rt.Fatalf("self-transition %v reported", tr.prev)
			}
		}
	})
}
