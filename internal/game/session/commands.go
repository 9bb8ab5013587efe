package session

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/combat"
	"github.com/cory-johannsen/sunduk/internal/game/reroll"
	"github.com/cory-johannsen/sunduk/internal/game/resurrection"
	"github.com/cory-johannsen/sunduk/internal/game/round"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

func (s *Session) guard() error {
	if s.machine.Current() == state.Pause {
		return ErrPaused
	}
	return nil
}

// rejected logs a refused command and toasts the player-facing ones.
func (s *Session) rejected(cmd string, err error) error {
	s.logger.Debug("command rejected", zap.String("command", cmd), zap.Error(err))
	switch {
	case errors.Is(err, combat.ErrChestLocked):
		s.Toast(ToastChestLocked)
	case errors.Is(err, combat.ErrDragonClassUsed):
		s.Toast(ToastDragonClassUsed)
	}
	return err
}

// SelectCard handles a click on a card and routes it by the active mode:
//   - a Scroll toggles reroll mode;
//   - in reroll mode any other card toggles its reroll mark;
//   - an adventurer toggles selection;
//   - a dungeon card is attacked by the selected adventurer.
//
// Every click is reported with OnCardClicked.
func (s *Session) SelectCard(id uuid.UUID) error {
	if err := s.guard(); err != nil {
		return err
	}
	s.bus.OnCardClicked(id)
	inst, ok := s.table.Find(id)
	if !ok {
		return s.rejected("select", ErrUnknownCard)
	}
	if s.res.IsOpen() {
		return s.rejected("select", resurrection.ErrInProgress)
	}
	if !s.machine.Current().IsBattle() {
		return s.rejected("select", ErrNotInBattle)
	}

	inAdventurers := inst.Zone() == s.table.Adventurers
	switch {
	case inAdventurers && inst.Def.IsScroll():
		if s.selection.IsSelected(inst) {
			s.reroll.Exit()
			s.deselect()
			return nil
		}
		if err := s.reroll.Enter(inst); err != nil {
			return s.rejected("select", err)
		}
		s.selectInst(inst)
		return nil

	case s.reroll.Active():
		if _, err := s.reroll.Toggle(inst); err != nil {
			return s.rejected("mark", err)
		}
		return nil

	case inAdventurers:
		if s.selection.IsSelected(inst) {
			s.deselect()
			return nil
		}
		s.selectInst(inst)
		return nil

	case inst.Zone() == s.table.Dungeon:
		sel := s.selection.Selected()
		if sel == nil || sel.Def.IsScroll() {
			return s.rejected("select", ErrNoAttacker)
		}
		_, err := s.Attack(sel.ID, inst.ID)
		return err
	}
	return s.rejected("select", ErrNotSelectable)
}

// Attack resolves attackerID striking targetID.
func (s *Session) Attack(attackerID, targetID uuid.UUID) (combat.Result, error) {
	if err := s.guard(); err != nil {
		return combat.Result{}, err
	}
	res, err := s.combat.Attack(attackerID, targetID)
	if err != nil {
		return res, s.rejected("attack", err)
	}
	s.pruneSelection()
	return res, nil
}

// ToggleRerollSelection marks or unmarks a card for the pending reroll.
//
// Postcondition: marked reports whether the card is now marked.
func (s *Session) ToggleRerollSelection(id uuid.UUID) (marked bool, err error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	inst, ok := s.table.Find(id)
	if !ok {
		return false, s.rejected("mark", ErrUnknownCard)
	}
	marked, err = s.reroll.Toggle(inst)
	if err != nil {
		return false, s.rejected("mark", err)
	}
	return marked, nil
}

// CommitReroll replaces every marked card and spends the scroll.
func (s *Session) CommitReroll() ([]reroll.Replacement, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	reps, err := s.reroll.Commit()
	if err != nil {
		return nil, s.rejected("reroll", err)
	}
	s.pruneSelection()
	return reps, nil
}

// PickResurrectionClass spends one resurrection credit on class c.
//
// Postcondition: closed reports whether the flow finished.
func (s *Session) PickResurrectionClass(c card.Class) (closed bool, err error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	closed, err = s.res.PickClass(c)
	if err != nil {
		return false, s.rejected("resurrect", err)
	}
	s.pruneSelection()
	return closed, nil
}

// AdvanceRound collects the round's gold and deals the next round.
func (s *Session) AdvanceRound() (round.Decision, error) {
	if err := s.guard(); err != nil {
		return round.Decision{}, err
	}
	if s.reroll.Active() {
		return round.Decision{}, s.rejected("next", reroll.ErrActive)
	}
	d, err := s.rounds.AdvanceRound()
	if err != nil {
		return d, s.rejected("next", err)
	}
	s.pruneSelection()
	return d, nil
}

// StartRun abandons any run in progress, resets gold, zones and graveyard,
// and starts round 1 with a fresh starting hand.
func (s *Session) StartRun() round.Decision {
	s.abandon()
	s.resetRun()
	s.beginRun()
	s.machine.Change(state.RunInit)
	s.machine.Change(state.DealHand)
	return s.rounds.StartRound(1, true)
}

// GoToMainMenu abandons any run in progress and returns to the main menu.
func (s *Session) GoToMainMenu() {
	s.abandon()
	s.resetRun()
	s.machine.Change(state.MainMenu)
}

// EnterTavern moves to the Tavern between runs.
func (s *Session) EnterTavern() error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.machine.Current().IsBattle() {
		return s.rejected("tavern", ErrBattleInProgress)
	}
	s.machine.Change(state.Tavern)
	return nil
}

// HireHeroes refills the hire pool.
func (s *Session) HireHeroes() ([]*table.Instance, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if s.machine.Current() != state.Tavern {
		return nil, s.rejected("hire", ErrNotInTavern)
	}
	return s.tavern.Hire(s.cfg.HireCount), nil
}

// Fight starts a run with the hired party instead of a dealt hand.
func (s *Session) Fight() (round.Decision, error) {
	if err := s.guard(); err != nil {
		return round.Decision{}, err
	}
	if s.machine.Current() != state.Tavern {
		return round.Decision{}, s.rejected("fight", ErrNotInTavern)
	}
	if _, err := s.tavern.Fight(); err != nil {
		return round.Decision{}, s.rejected("fight", err)
	}
	s.abandon()
	s.resetRun(s.table.Adventurers)
	s.beginRun()
	s.machine.Change(state.RunInit)
	return s.rounds.StartRound(1, false), nil
}

// GiveUp abandons the current battle for the Tavern.
func (s *Session) GiveUp() error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.rounds.GiveUp(); err != nil {
		return s.rejected("giveup", err)
	}
	return nil
}

// Pause freezes every game command until Resume.
func (s *Session) Pause() bool { return s.machine.Pause() }

// Resume returns to the state held before Pause.
func (s *Session) Resume() bool { return s.machine.Resume() }
