// Package dealer draws cards from the catalogs and places them on the table.
package dealer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/currency"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

// Dealer instantiates catalog cards into zones. Dragon-typed dungeon cards
// are always redirected to the dragon zone.
type Dealer struct {
	table   *table.Table
	lib     *card.Library
	src     dice.Source
	dragons *currency.DragonCounter
	logger  *zap.Logger
}

// New creates a Dealer.
//
// Precondition: all arguments must be non-nil.
func New(t *table.Table, lib *card.Library, src dice.Source, dragons *currency.DragonCounter, logger *zap.Logger) *Dealer {
	return &Dealer{table: t, lib: lib, src: src, dragons: dragons, logger: logger}
}

// Library returns the catalogs the dealer draws from.
func (d *Dealer) Library() *card.Library { return d.lib }

// Draw returns a uniformly random definition from cat.
//
// Postcondition: ok is false iff cat is empty.
func (d *Dealer) Draw(cat *card.Catalog) (*card.Definition, bool) {
	if cat.Len() == 0 {
		return nil, false
	}
	return cat.At(d.src.Intn(cat.Len())), true
}

// DealInto draws count cards from cat into z, emptying z first when clear is set.
// Duplicates are allowed. Draws from an empty catalog are skipped.
//
// Postcondition: The dragon counter equals the dragon zone's size.
func (d *Dealer) DealInto(z *table.Zone, cat *card.Catalog, count int, clear bool) []*table.Instance {
	if clear {
		z.Clear()
	}
	var placed []*table.Instance
	for i := 0; i < count; i++ {
		def, ok := d.Draw(cat)
		if !ok {
			d.logger.Warn("deal skipped: catalog is empty",
				zap.Stringer("catalog", cat.Kind()),
				zap.Stringer("zone", z.ID()),
			)
			continue
		}
		inst, err := d.PlaceAt(def, z, -1)
		if err != nil {
			d.logger.Warn("deal skipped", zap.String("card", def.ID), zap.Error(err))
			continue
		}
		placed = append(placed, inst)
	}
	d.SyncDragonCount()
	return placed
}

// DealAdventurers deals count random adventurers into the adventurer zone.
func (d *Dealer) DealAdventurers(count int, clear bool) []*table.Instance {
	return d.DealInto(d.table.Adventurers, d.lib.Adventurers, count, clear)
}

// DealDungeon deals count random dungeon cards into the dungeon zone.
func (d *Dealer) DealDungeon(count int, clear bool) []*table.Instance {
	return d.DealInto(d.table.Dungeon, d.lib.Dungeon, count, clear)
}

// Spawn instantiates the definition with the given id at the end of z.
//
// Postcondition: Returns a *card.NotFoundError and mutates nothing when id is
// unknown to both catalogs.
func (d *Dealer) Spawn(id string, z *table.Zone) (*table.Instance, error) {
	def, err := d.lib.Lookup(id)
	if err != nil {
		return nil, fmt.Errorf("spawning into %s: %w", z.ID(), err)
	}
	inst, err := d.PlaceAt(def, z, -1)
	if err != nil {
		return nil, err
	}
	d.SyncDragonCount()
	return inst, nil
}

// PlaceAt instantiates def in z at index; dragons go to the end of the dragon
// zone regardless of z and index. It does not touch the dragon counter.
func (d *Dealer) PlaceAt(def *card.Definition, z *table.Zone, index int) (*table.Instance, error) {
	if def.IsDragon() && z != d.table.Dragons {
		return d.table.Place(def, d.table.Dragons, -1)
	}
	return d.table.Place(def, z, index)
}

// SyncDragonCount sets the dragon counter to the dragon zone's size.
func (d *Dealer) SyncDragonCount() {
	d.dragons.Set(d.table.Dragons.Len())
}
