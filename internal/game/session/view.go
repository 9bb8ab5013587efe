package session

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

// CardView is a read-only view of one card on the table.
type CardView struct {
	ID       uuid.UUID
	Def      *card.Definition
	Selected bool
	Marked   bool
}

// View is a point-in-time copy of everything a frontend draws.
type View struct {
	State        state.GameState
	Round        int
	RoundCleared bool
	Gold         int
	DragonCount  int

	Adventurers []CardView
	Dungeon     []CardView
	Dragons     []CardView
	Hire        []CardView
	Graveyard   []table.Fallen

	RerollActive          bool
	ResurrectionOpen      bool
	ResurrectionRemaining int
	DragonKills           []card.Class

	// RunID is uuid.Nil between runs.
	RunID uuid.UUID
}

// Snapshot returns the current View.
func (s *Session) Snapshot() View {
	v := View{
		State:                 s.machine.Current(),
		Round:                 s.rounds.CurrentRound(),
		RoundCleared:          s.rounds.RoundCleared(),
		Gold:                  s.gold.Total(),
		DragonCount:           s.dragons.Count(),
		Adventurers:           s.cards(s.table.Adventurers),
		Dungeon:               s.cards(s.table.Dungeon),
		Dragons:               s.cards(s.table.Dragons),
		Hire:                  s.cards(s.table.Hire),
		Graveyard:             s.graveyard.Entries(),
		RerollActive:          s.reroll.Active(),
		ResurrectionOpen:      s.res.IsOpen(),
		ResurrectionRemaining: s.res.Remaining(),
		DragonKills:           s.tracker.Classes(),
	}
	if s.run != nil {
		v.RunID = s.run.id
	}
	return v
}

func (s *Session) cards(z *table.Zone) []CardView {
	out := make([]CardView, 0, z.Len())
	for _, inst := range z.Cards() {
		out = append(out, CardView{
			ID:       inst.ID,
			Def:      inst.Def,
			Selected: s.selection.IsSelected(inst),
			Marked:   s.reroll.IsMarked(inst),
		})
	}
	return out
}

// Find returns the card with id from v's rows, searching adventurers first.
func (v View) Find(id uuid.UUID) (CardView, bool) {
	for _, row := range [][]CardView{v.Adventurers, v.Dungeon, v.Dragons, v.Hire} {
		for _, c := range row {
			if c.ID == id {
				return c, true
			}
		}
	}
	return CardView{}, false
}
