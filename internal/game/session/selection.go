package session

import "github.com/cory-johannsen/sunduk/internal/game/table"

// SelectionState holds the adventurer the player has selected, if any.
type SelectionState struct {
	selected *table.Instance
}

// Selected returns the selected instance, or nil.
func (s *SelectionState) Selected() *table.Instance { return s.selected }

// IsSelected reports whether inst is the selection.
func (s *SelectionState) IsSelected(inst *table.Instance) bool {
	return inst != nil && s.selected == inst
}

// Set selects inst and returns the previous selection.
func (s *SelectionState) Set(inst *table.Instance) (prev *table.Instance) {
	prev, s.selected = s.selected, inst
	return prev
}

// Clear drops the selection and returns what was selected.
func (s *SelectionState) Clear() *table.Instance { return s.Set(nil) }

// selectInst makes inst the selection, notifying subscribers of the change.
func (s *Session) selectInst(inst *table.Instance) {
	if prev := s.selection.Set(inst); prev != nil && prev != inst {
		s.bus.OnAdventurerSelected(prev.ID, false)
	}
	s.bus.OnAdventurerSelected(inst.ID, true)
}

// deselect clears the selection, notifying subscribers if there was one.
func (s *Session) deselect() {
	if prev := s.selection.Clear(); prev != nil {
		s.bus.OnAdventurerSelected(prev.ID, false)
	}
}

// pruneSelection drops a selection whose card left the adventurer zone, and
// a selected Scroll once reroll mode has been forced off.
func (s *Session) pruneSelection() {
	sel := s.selection.Selected()
	if sel == nil {
		return
	}
	if sel.Zone() != s.table.Adventurers || (sel.Def.IsScroll() && !s.reroll.Active()) {
		s.deselect()
	}
}
