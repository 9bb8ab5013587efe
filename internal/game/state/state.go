// Package state defines the top-level game states and the machine that moves
// between them.
package state

import (
	"fmt"

	"go.uber.org/zap"
)

// GameState is a top-level mode of the game.
type GameState int

const (
	Boot GameState = iota
	MainMenu
	Tavern
	RunInit
	DealHand
	EnemyBattle
	DragonBattle
	Pause
)

var names = [...]string{
	Boot:           "boot",
	MainMenu:       "main_menu",
	Tavern:         "tavern",
	RunInit:        "run_init",
	DealHand:       "deal_hand",
	EnemyBattle:    "enemy_battle",
	DragonBattle:   "dragon_battle",
	Pause:          "pause",
}

func (s GameState) String() string {
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsBattle reports whether s is EnemyBattle or DragonBattle.
func (s GameState) IsBattle() bool {
	return s == EnemyBattle || s == DragonBattle
}

// ChangeFunc observes a transition.
type ChangeFunc func(prev, next GameState)

// Machine holds the current game state.
// A Machine is not safe for concurrent use.
type Machine struct {
	current     GameState
	beforePause GameState
	onChange    ChangeFunc
	logger      *zap.Logger
}

// NewMachine returns a machine in the Boot state.
//
// Precondition: logger must be non-nil. onChange may be nil.
func NewMachine(onChange ChangeFunc, logger *zap.Logger) *Machine {
	return &Machine{current: Boot, beforePause: Boot, onChange: onChange, logger: logger}
}

// Current returns the active state.
func (m *Machine) Current() GameState { return m.current }

// Change moves to next.
//
// Postcondition: Returns false and notifies nobody when next equals the
// current state; otherwise the observer sees (prev, next) exactly once.
func (m *Machine) Change(next GameState) bool {
	if next == m.current {
		return false
	}
	prev := m.current
	m.current = next
	m.logger.Info("game state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
	)
	if m.onChange != nil {
		m.onChange(prev, next)
	}
	return true
}

// Pause remembers the current state and enters Pause.
//
// Postcondition: Returns false if already paused.
func (m *Machine) Pause() bool {
	if m.current == Pause {
		return false
	}
	m.beforePause = m.current
	return m.Change(Pause)
}

// Resume returns to the state held before Pause.
//
// Postcondition: Returns false if not paused.
func (m *Machine) Resume() bool {
	if m.current != Pause {
		return false
	}
	return m.Change(m.beforePause)
}
