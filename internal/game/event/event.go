// Package event defines the notifications the engine publishes and a bus
// that fans them out to subscribers.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/sunduk/internal/game/state"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeAttrition     Outcome = "attrition"
	OutcomeDragonVictory Outcome = "dragon_victory"
	OutcomeDragonDefeat  Outcome = "dragon_defeat"
	OutcomeGaveUp        Outcome = "gave_up"
	// OutcomeAbandoned marks a run replaced by a new one before it ended.
	OutcomeAbandoned Outcome = "abandoned"
)

// RunSummary describes a finished run.
type RunSummary struct {
	RunID     uuid.UUID
	Outcome   Outcome
	Round     int
	Gold      int
	StartedAt time.Time
	EndedAt   time.Time
}

// Listener receives engine notifications. Calls arrive synchronously on the
// goroutine that issued the command; implementations must not call back into
// the session.
type Listener interface {
	OnStateChanged(prev, next state.GameState)
	OnCardClicked(id uuid.UUID)
	OnAdventurerSelected(id uuid.UUID, selected bool)
	OnRoundStarted(round int)
	OnRoundCleared(round int, reason string)
	OnGoldChanged(total int)
	OnDragonCountChanged(count int)
	OnToast(message string, d time.Duration)
	OnRunEnded(summary RunSummary)
}

// Funcs adapts optional callbacks to Listener. Nil fields are ignored.
type Funcs struct {
	StateChanged       func(prev, next state.GameState)
	CardClicked        func(id uuid.UUID)
	AdventurerSelected func(id uuid.UUID, selected bool)
	RoundStarted       func(round int)
	RoundCleared       func(round int, reason string)
	GoldChanged        func(total int)
	DragonCountChanged func(count int)
	Toast              func(message string, d time.Duration)
	RunEnded           func(summary RunSummary)
}

func (f Funcs) OnStateChanged(prev, next state.GameState) {
	if f.StateChanged != nil {
		f.StateChanged(prev, next)
	}
}

func (f Funcs) OnCardClicked(id uuid.UUID) {
	if f.CardClicked != nil {
		f.CardClicked(id)
	}
}

func (f Funcs) OnAdventurerSelected(id uuid.UUID, selected bool) {
	if f.AdventurerSelected != nil {
		f.AdventurerSelected(id, selected)
	}
}

func (f Funcs) OnRoundStarted(round int) {
	if f.RoundStarted != nil {
		f.RoundStarted(round)
	}
}

func (f Funcs) OnRoundCleared(round int, reason string) {
	if f.RoundCleared != nil {
		f.RoundCleared(round, reason)
	}
}

func (f Funcs) OnGoldChanged(total int) {
	if f.GoldChanged != nil {
		f.GoldChanged(total)
	}
}

func (f Funcs) OnDragonCountChanged(count int) {
	if f.DragonCountChanged != nil {
		f.DragonCountChanged(count)
	}
}

func (f Funcs) OnToast(message string, d time.Duration) {
	if f.Toast != nil {
		f.Toast(message, d)
	}
}

func (f Funcs) OnRunEnded(summary RunSummary) {
	if f.RunEnded != nil {
		f.RunEnded(summary)
	}
}
