package scripting

import (
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/state"
)

// Hook names a script may define.
const (
	HookStateChanged       = "on_state_changed"
	HookRoundStarted       = "on_round_started"
	HookRoundCleared       = "on_round_cleared"
	HookGoldChanged        = "on_gold_changed"
	HookDragonCountChanged = "on_dragon_count_changed"
	HookRunEnded           = "on_run_ended"
)

// Hooks forwards engine notifications to an Engine's on_* functions.
// Card clicks, selections and toasts are not forwarded.
type Hooks struct {
	engine *Engine
}

var _ event.Listener = (*Hooks)(nil)

// NewHooks returns a Listener bound to e.
func NewHooks(e *Engine) *Hooks { return &Hooks{engine: e} }

func (h *Hooks) OnStateChanged(prev, next state.GameState) {
	h.engine.CallHook(HookStateChanged, lua.LString(prev.String()), lua.LString(next.String()))
}

func (h *Hooks) OnCardClicked(uuid.UUID) {}

func (h *Hooks) OnAdventurerSelected(uuid.UUID, bool) {}

func (h *Hooks) OnRoundStarted(round int) {
	h.engine.CallHook(HookRoundStarted, lua.LNumber(round))
}

func (h *Hooks) OnRoundCleared(round int, reason string) {
	h.engine.CallHook(HookRoundCleared, lua.LNumber(round), lua.LString(reason))
}

func (h *Hooks) OnGoldChanged(total int) {
	h.engine.CallHook(HookGoldChanged, lua.LNumber(total))
}

func (h *Hooks) OnDragonCountChanged(count int) {
	h.engine.CallHook(HookDragonCountChanged, lua.LNumber(count))
}

func (h *Hooks) OnToast(string, time.Duration) {}

// OnRunEnded passes the summary as a table with run_id, outcome, round and gold.
func (h *Hooks) OnRunEnded(s event.RunSummary) {
	h.engine.mu.Lock()
	t := h.engine.L.NewTable()
	h.engine.mu.Unlock()
	t.RawSetString("run_id", lua.LString(s.RunID.String()))
	t.RawSetString("outcome", lua.LString(string(s.Outcome)))
	t.RawSetString("round", lua.LNumber(s.Round))
	t.RawSetString("gold", lua.LNumber(s.Gold))
	h.engine.CallHook(HookRunEnded, t)
}
