// Package tavern manages the hire pool adventurers are recruited from
// between runs.
package tavern

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

// ErrNoHires is returned by Fight when the hire zone is empty.
var ErrNoHires = errors.New("tavern: no adventurers hired")

// Dealer deals catalog cards into a zone.
type Dealer interface {
	DealInto(z *table.Zone, cat *card.Catalog, count int, clear bool) []*table.Instance
	Library() *card.Library
}

// Tavern owns the hire zone.
type Tavern struct {
	table  *table.Table
	dealer Dealer
	logger *zap.Logger
}

// New creates a Tavern over t's hire zone.
//
// Precondition: all arguments must be non-nil.
func New(t *table.Table, dealer Dealer, logger *zap.Logger) *Tavern {
	return &Tavern{table: t, dealer: dealer, logger: logger}
}

// Hire replaces the hire pool with count random adventurers.
//
// Postcondition: The hire zone holds at most count cards.
func (tv *Tavern) Hire(count int) []*table.Instance {
	hired := tv.dealer.DealInto(tv.table.Hire, tv.dealer.Library().Adventurers, count, true)
	tv.logger.Info("heroes hired", zap.Int("count", len(hired)))
	return hired
}

// Hired returns the current hire pool in board order.
func (tv *Tavern) Hired() []*table.Instance { return tv.table.Hire.Cards() }

// Fight replaces the adventurer zone with the hire pool.
//
// Precondition: the hire zone must be non-empty.
// Postcondition: On success the hire zone is empty and the adventurer zone
// holds the former hires in order. Returns ErrNoHires with no change otherwise.
func (tv *Tavern) Fight() (int, error) {
	hires := tv.table.Hire.Cards()
	if len(hires) == 0 {
		return 0, ErrNoHires
	}
	tv.table.Adventurers.Clear()
	moved := 0
	for _, inst := range hires {
		if err := tv.table.Move(inst, tv.table.Adventurers); err != nil {
			tv.logger.Warn("hire move failed", zap.String("card", inst.Def.ID), zap.Error(err))
			continue
		}
		moved++
	}
	tv.logger.Info("party assembled", zap.Int("adventurers", moved))
	return moved, nil
}
