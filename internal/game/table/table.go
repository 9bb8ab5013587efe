package table

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/sunduk/internal/game/card"
)

// Table owns the zones of a session.
type Table struct {
	Adventurers *Zone
	Dungeon     *Zone
	Dragons     *Zone
	Hire        *Zone
}

// New returns a table with empty zones and their admission rules.
func New() *Table {
	return &Table{
		Adventurers: NewZone(ZoneAdventurers, AdventurersOnly),
		Dungeon:     NewZone(ZoneDungeon, DungeonOnly),
		Dragons:     NewZone(ZoneDragons, DragonsOnly),
		Hire:        NewZone(ZoneHire, AdventurersOnly),
	}
}

// Zones returns every zone in a fixed order.
func (t *Table) Zones() []*Zone {
	return []*Zone{t.Adventurers, t.Dungeon, t.Dragons, t.Hire}
}

// Zone returns the zone with the given id, or nil.
func (t *Table) Zone(id ZoneID) *Zone {
	for _, z := range t.Zones() {
		if z.ID() == id {
			return z
		}
	}
	return nil
}

// Find locates an instance anywhere on the table.
func (t *Table) Find(id uuid.UUID) (*Instance, bool) {
	for _, z := range t.Zones() {
		if inst, ok := z.Find(id); ok {
			return inst, true
		}
	}
	return nil, false
}

// Place instantiates def into z at index (negative appends).
//
// Postcondition: Returns the placed instance, or the zone's insert error with
// nothing placed.
func (t *Table) Place(def *card.Definition, z *Zone, index int) (*Instance, error) {
	inst := NewInstance(def)
	if err := z.Insert(inst, index); err != nil {
		return nil, err
	}
	return inst, nil
}

// Destroy removes inst from whatever zone holds it.
//
// Postcondition: inst is unplaced. Returns the zone and position it held, or
// (nil, -1) if it was already unplaced.
func (t *Table) Destroy(inst *Instance) (*Zone, int) {
	z := inst.Zone()
	if z == nil {
		return nil, -1
	}
	idx, _ := z.Remove(inst)
	return z, idx
}

// Move transfers inst to the end of dst.
//
// Postcondition: On error inst stays where it was.
func (t *Table) Move(inst *Instance, dst *Zone) error {
	src := inst.Zone()
	idx := -1
	if src != nil {
		idx, _ = src.Remove(inst)
	}
	if err := dst.Append(inst); err != nil {
		if src != nil {
			_ = src.Insert(inst, idx)
		}
		return err
	}
	return nil
}

// Clear empties every zone.
func (t *Table) Clear() {
	for _, z := range t.Zones() {
		z.Clear()
	}
}
