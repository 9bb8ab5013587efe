package table

import (
	"slices"

	"github.com/cory-johannsen/sunduk/internal/game/card"
)

// Fallen is a graveyard entry: the definition id of a consumed adventurer and
// its class.
type Fallen struct {
	ID    string
	Class card.Class
}

// Graveyard is the ordered record of consumed adventurers, newest last.
type Graveyard struct {
	entries []Fallen
}

// NewGraveyard returns an empty graveyard.
func NewGraveyard() *Graveyard { return &Graveyard{} }

// Bury records def as fallen.
//
// Precondition: def must be an adventurer definition.
func (g *Graveyard) Bury(def *card.Definition) {
	g.entries = append(g.entries, Fallen{ID: def.ID, Class: def.Adventurer.Class})
}

// Len returns the number of entries.
func (g *Graveyard) Len() int { return len(g.entries) }

// Entries returns a snapshot, oldest first.
func (g *Graveyard) Entries() []Fallen { return slices.Clone(g.entries) }

// Pop removes and returns the newest entry.
//
// Postcondition: ok is false iff the graveyard was empty.
func (g *Graveyard) Pop() (Fallen, bool) {
	if len(g.entries) == 0 {
		return Fallen{}, false
	}
	last := g.entries[len(g.entries)-1]
	g.entries = g.entries[:len(g.entries)-1]
	return last, true
}

// Clear removes every entry.
func (g *Graveyard) Clear() { g.entries = nil }
