// Package table holds the ordered card zones, the live card instances placed
// in them, and the graveyard of fallen adventurers.
package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/sunduk/internal/game/card"
)

var (
	// ErrRejected is returned when a zone's admission rule refuses a card.
	ErrRejected = errors.New("table: zone rejects card")
	// ErrAlreadyPlaced is returned when inserting an instance that a zone already holds.
	ErrAlreadyPlaced = errors.New("table: instance already placed in a zone")
)

// ZoneID names a zone on the table.
type ZoneID int

const (
	ZoneAdventurers ZoneID = iota
	ZoneDungeon
	ZoneDragons
	ZoneHire
)

func (z ZoneID) String() string {
	switch z {
	case ZoneAdventurers:
		return "adventurers"
	case ZoneDungeon:
		return "dungeon"
	case ZoneDragons:
		return "dragons"
	case ZoneHire:
		return "hire"
	default:
		return fmt.Sprintf("zone(%d)", int(z))
	}
}

// Instance is a live card on the table. Its position is its index within the
// zone that holds it.
type Instance struct {
	ID   uuid.UUID
	Def  *card.Definition
	zone *Zone
}

// NewInstance creates an unplaced instance of def with a fresh id.
//
// Precondition: def must be non-nil.
func NewInstance(def *card.Definition) *Instance {
	return &Instance{ID: uuid.New(), Def: def}
}

// Zone returns the zone holding the instance, or nil if it is unplaced.
func (i *Instance) Zone() *Zone { return i.zone }

// Position returns the index of the instance within its zone, or -1 if unplaced.
func (i *Instance) Position() int {
	if i.zone == nil {
		return -1
	}
	return i.zone.IndexOf(i)
}

// Admit decides whether a definition may enter a zone. A nil Admit accepts all.
type Admit func(def *card.Definition) bool

// Zone is an ordered sequence of instances; insertion order is board order.
type Zone struct {
	id    ZoneID
	admit Admit
	cards []*Instance
}

// NewZone returns an empty zone.
func NewZone(id ZoneID, admit Admit) *Zone {
	return &Zone{id: id, admit: admit}
}

// ID returns the zone identifier.
func (z *Zone) ID() ZoneID { return z.id }

// Len returns the number of instances held.
func (z *Zone) Len() int { return len(z.cards) }

// At returns the instance at position i.
//
// Precondition: 0 <= i < Len().
func (z *Zone) At(i int) *Instance { return z.cards[i] }

// Cards returns a snapshot of the zone's instances in board order.
func (z *Zone) Cards() []*Instance { return slices.Clone(z.cards) }

// IndexOf returns the position of inst, or -1.
func (z *Zone) IndexOf(inst *Instance) int { return slices.Index(z.cards, inst) }

// Find returns the instance with the given id.
func (z *Zone) Find(id uuid.UUID) (*Instance, bool) {
	for _, c := range z.cards {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Count returns the number of instances satisfying pred.
func (z *Zone) Count(pred func(*Instance) bool) int {
	n := 0
	for _, c := range z.cards {
		if pred(c) {
			n++
		}
	}
	return n
}

// Any reports whether at least one instance satisfies pred.
func (z *Zone) Any(pred func(*Instance) bool) bool {
	return slices.ContainsFunc(z.cards, pred)
}

// Insert places inst at position index, clamped to [0, Len()]. A negative
// index appends.
//
// Postcondition: On success inst.Zone() == z. Returns ErrAlreadyPlaced if inst
// is held by any zone, or ErrRejected if the zone's admission rule refuses it.
func (z *Zone) Insert(inst *Instance, index int) error {
	if inst.zone != nil {
		return fmt.Errorf("inserting %s into %s: %w", inst.ID, z.id, ErrAlreadyPlaced)
	}
	if z.admit != nil && !z.admit(inst.Def) {
		return fmt.Errorf("inserting %q into %s: %w", inst.Def.ID, z.id, ErrRejected)
	}
	if index < 0 || index > len(z.cards) {
		index = len(z.cards)
	}
	z.cards = slices.Insert(z.cards, index, inst)
	inst.zone = z
	return nil
}

// Append places inst at the end of the zone.
func (z *Zone) Append(inst *Instance) error {
	return z.Insert(inst, -1)
}

// Remove takes inst out of the zone and returns the position it held.
//
// Postcondition: ok is false and nothing changes if z does not hold inst.
func (z *Zone) Remove(inst *Instance) (index int, ok bool) {
	index = z.IndexOf(inst)
	if index < 0 {
		return -1, false
	}
	z.cards = slices.Delete(z.cards, index, index+1)
	inst.zone = nil
	return index, true
}

// Clear removes and returns every instance.
func (z *Zone) Clear() []*Instance {
	out := z.cards
	for _, c := range out {
		c.zone = nil
	}
	z.cards = nil
	return out
}

// DragonsOnly admits only Dragon-typed dungeon cards.
func DragonsOnly(def *card.Definition) bool { return def.IsDragon() }

// AdventurersOnly admits only adventurer cards.
func AdventurersOnly(def *card.Definition) bool { return def.IsAdventurer() }

// DungeonOnly admits only dungeon cards.
func DungeonOnly(def *card.Definition) bool { return def.IsDungeon() }
