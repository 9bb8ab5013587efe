// Package reroll implements the Scroll mechanic: mark cards, then redraw
// each one in place.
package reroll

import (
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

var (
	// ErrActive is returned by other actions while reroll mode is on.
	ErrActive = errors.New("reroll: reroll mode is active")
	// ErrNotActive is returned by Toggle and Commit outside reroll mode.
	ErrNotActive = errors.New("reroll: reroll mode is not active")
	// ErrNotScroll is returned by Enter for anything but a Scroll on the adventurer row.
	ErrNotScroll = errors.New("reroll: only a scroll in play can start a reroll")
	// ErrNotRerollable is returned when marking a Dragon, a Scroll, or a card off the rows.
	ErrNotRerollable = errors.New("reroll: card cannot be rerolled")
	// ErrNothingMarked is returned by Commit with no marks.
	ErrNothingMarked = errors.New("reroll: no cards marked")
)

// Drawer draws replacements and places them on the table.
type Drawer interface {
	Draw(cat *card.Catalog) (*card.Definition, bool)
	PlaceAt(def *card.Definition, z *table.Zone, index int) (*table.Instance, error)
	SyncDragonCount()
	Library() *card.Library
}

// Replacement records one committed swap.
type Replacement struct {
	Zone     table.ZoneID
	Index    int
	Old      *card.Definition
	New      *card.Definition
	Instance *table.Instance
}

// Engine holds reroll-mode state.
type Engine struct {
	table       *table.Table
	drawer      Drawer
	graveyard   *table.Graveyard
	afterCommit func()
	logger      *zap.Logger

	scroll *table.Instance
	marks  []*table.Instance
}

// New creates an inactive Engine.
//
// Precondition: all arguments except afterCommit must be non-nil.
func New(t *table.Table, drawer Drawer, graveyard *table.Graveyard, afterCommit func(), logger *zap.Logger) *Engine {
	return &Engine{table: t, drawer: drawer, graveyard: graveyard, afterCommit: afterCommit, logger: logger}
}

// Active reports whether reroll mode is on.
func (e *Engine) Active() bool { return e.scroll != nil }

// Scroll returns the scroll that opened the mode, or nil.
func (e *Engine) Scroll() *table.Instance { return e.scroll }

// Marked returns the marked instances in mark order.
func (e *Engine) Marked() []*table.Instance { return slices.Clone(e.marks) }

// IsMarked reports whether inst is marked.
func (e *Engine) IsMarked(inst *table.Instance) bool { return slices.Contains(e.marks, inst) }

// Enter turns reroll mode on for scroll, dropping any earlier marks.
//
// Precondition: scroll must be a Scroll in the adventurer zone.
func (e *Engine) Enter(scroll *table.Instance) error {
	if !scroll.Def.IsScroll() || scroll.Zone() != e.table.Adventurers {
		return ErrNotScroll
	}
	e.scroll = scroll
	e.marks = nil
	e.logger.Debug("reroll mode entered", zap.Stringer("scroll", scroll.ID))
	return nil
}

// Exit turns reroll mode off and drops all marks. It is a no-op when inactive.
func (e *Engine) Exit() {
	if e.scroll == nil {
		return
	}
	e.logger.Debug("reroll mode exited", zap.Int("dropped_marks", len(e.marks)))
	e.scroll = nil
	e.marks = nil
}

// Toggle marks or unmarks inst.
//
// Postcondition: marked reports the new membership. On error nothing changes.
func (e *Engine) Toggle(inst *table.Instance) (marked bool, err error) {
	if !e.Active() {
		return false, ErrNotActive
	}
	if !rerollable(e.table, inst) {
		return false, ErrNotRerollable
	}
	if i := slices.Index(e.marks, inst); i >= 0 {
		e.marks = slices.Delete(e.marks, i, i+1)
		return false, nil
	}
	e.marks = append(e.marks, inst)
	return true, nil
}

func rerollable(t *table.Table, inst *table.Instance) bool {
	z := inst.Zone()
	if z != t.Adventurers && z != t.Dungeon {
		return false
	}
	return !inst.Def.IsDragon() && !inst.Def.IsScroll()
}

// Commit replaces every marked card in mark order. Each replacement is
// drawn from the card's own catalog and placed at the index the old card
// held; dragon replacements go to the dragon zone. The scroll is then buried
// and the mode exits.
//
// Postcondition: Returns ErrNotActive or ErrNothingMarked with no change.
func (e *Engine) Commit() ([]Replacement, error) {
	if !e.Active() {
		return nil, ErrNotActive
	}
	if len(e.marks) == 0 {
		return nil, ErrNothingMarked
	}

	lib := e.drawer.Library()
	var out []Replacement
	for _, inst := range e.marks {
		if inst.Zone() == nil {
			continue
		}
		old := inst.Def
		z, idx := e.table.Destroy(inst)
		def, ok := e.drawer.Draw(lib.ForKind(old.Kind))
		if !ok {
			e.logger.Warn("reroll replacement skipped: catalog is empty", zap.String("card", old.ID))
			continue
		}
		placed, err := e.drawer.PlaceAt(def, z, idx)
		if err != nil {
			e.logger.Warn("reroll replacement skipped", zap.String("card", def.ID), zap.Error(err))
			continue
		}
		out = append(out, Replacement{Zone: placed.Zone().ID(), Index: placed.Position(), Old: old, New: def, Instance: placed})
	}

	scroll := e.scroll
	e.graveyard.Bury(scroll.Def)
	e.table.Destroy(scroll)
	e.scroll = nil
	e.marks = nil
	e.drawer.SyncDragonCount()

	e.logger.Info("reroll committed", zap.Int("replaced", len(out)))
	if e.afterCommit != nil {
		e.afterCommit()
	}
	return out, nil
}
