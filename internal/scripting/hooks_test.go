package scripting_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/scripting"
)

const recorderScript = `
seen = {}
function on_state_changed(prev, next) table.insert(seen, "state:" .. prev .. ">" .. next) end
function on_round_started(n) table.insert(seen, "start:" .. n) end
function on_round_cleared(n, reason) table.insert(seen, "clear:" .. n .. ":" .. reason) end
function on_gold_changed(total) table.insert(seen, "gold:" .. total) end
function on_dragon_count_changed(c) table.insert(seen, "dragons:" .. c) end
function on_run_ended(s)
	table.insert(seen, "end:" .. s.outcome .. ":" .. s.round .. ":" .. s.gold)
	if s.outcome == "dragon_victory" then engine.toast("Legend!") end
end
function dump() return table.concat(seen, ",") end
`

func TestHooks_ForwardsNotifications(t *testing.T) {
	e, _ := newTestEngine(t, 0)
	require.NoError(t, e.LoadString("rec.lua", recorderScript))
	var toasts []string
	e.Toast = func(msg string) { toasts = append(toasts, msg) }

	var l event.Listener = scripting.NewHooks(e)
	l.OnStateChanged(state.MainMenu, state.EnemyBattle)
	l.OnRoundStarted(2)
	l.OnRoundCleared(2, "chest")
	l.OnGoldChanged(5)
	l.OnDragonCountChanged(1)
	l.OnCardClicked(uuid.New())
	l.OnRunEnded(event.RunSummary{RunID: uuid.New(), Outcome: event.OutcomeDragonVictory, Round: 9, Gold: 30})

	assert.Equal(t,
		lua.LString("state:main_menu>enemy_battle,start:2,clear:2:chest,gold:5,dragons:1,end:dragon_victory:9:30"),
		e.CallHook("dump"))
	assert.Equal(t, []string{"Legend!"}, toasts)
}

func TestHooks_NoScriptsIsSilent(t *testing.T) {
	e, logs := newTestEngine(t, 0)
	l := scripting.NewHooks(e)
	l.OnRoundStarted(1)
	l.OnRunEnded(event.RunSummary{Outcome: event.OutcomeAttrition})
	assert.Zero(t, logs.Len())
}
