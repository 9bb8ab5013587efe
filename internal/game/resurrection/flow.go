// Package resurrection implements the potion-triggered flow that brings
// fallen adventurers back to the table.
package resurrection

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

var (
	// ErrInProgress is returned by other actions while the flow is open.
	ErrInProgress = errors.New("resurrection: a resurrection is in progress")
	// ErrAlreadyOpen is returned by Open while the flow is open.
	ErrAlreadyOpen = errors.New("resurrection: already open")
	// ErrInvalidCount is returned by Open for a non-positive credit count.
	ErrInvalidCount = errors.New("resurrection: credit count must be positive")
	// ErrNotOpen is returned by PickClass while the flow is closed.
	ErrNotOpen = errors.New("resurrection: not open")
	// ErrNoCredits is returned by PickClass when no credits remain.
	ErrNoCredits = errors.New("resurrection: no credits remain")
	// ErrGraveyardEmpty is returned by PickClass when nobody has fallen.
	ErrGraveyardEmpty = errors.New("resurrection: graveyard is empty")
	// ErrScrollNotAllowed is returned when picking the Scroll class.
	ErrScrollNotAllowed = errors.New("resurrection: scrolls cannot be resurrected")
)

// Spawner places a catalog card into a zone.
type Spawner interface {
	Spawn(id string, z *table.Zone) (*table.Instance, error)
}

// Flow is the resurrection sub-flow. Once opened it runs until every credit
// is spent; it cannot be closed early.
type Flow struct {
	graveyard   *table.Graveyard
	adventurers *card.Catalog
	zone        *table.Zone
	spawner     Spawner
	afterClose  func()
	logger      *zap.Logger

	open      bool
	remaining int
	reserved  []string
}

// New creates a closed Flow that resurrects into zone.
//
// Precondition: all arguments except afterClose must be non-nil.
func New(graveyard *table.Graveyard, adventurers *card.Catalog, zone *table.Zone, spawner Spawner, afterClose func(), logger *zap.Logger) *Flow {
	return &Flow{
		graveyard:   graveyard,
		adventurers: adventurers,
		zone:        zone,
		spawner:     spawner,
		afterClose:  afterClose,
		logger:      logger,
	}
}

// IsOpen reports whether the flow is waiting for class picks.
func (f *Flow) IsOpen() bool { return f.open }

// Remaining returns the number of picks still owed.
func (f *Flow) Remaining() int { return f.remaining }

// Reserved returns the definition ids staged so far.
func (f *Flow) Reserved() []string { return slices.Clone(f.reserved) }

// Open starts the flow with n credits.
//
// Postcondition: On success IsOpen() and Remaining() == n with no staged ids.
func (f *Flow) Open(n int) error {
	if f.open {
		return ErrAlreadyOpen
	}
	if n <= 0 {
		return fmt.Errorf("opening with %d credits: %w", n, ErrInvalidCount)
	}
	f.open = true
	f.remaining = n
	f.reserved = nil
	f.logger.Info("resurrection opened", zap.Int("credits", n))
	return nil
}

// PickClass spends one credit: the newest graveyard entry is consumed and
// the first catalog adventurer of class c is staged. When the last credit is
// spent every staged adventurer is placed and the flow closes.
//
// Postcondition: On error nothing changes. closed reports whether this pick
// closed the flow.
func (f *Flow) PickClass(c card.Class) (closed bool, err error) {
	if !f.open {
		return false, ErrNotOpen
	}
	if f.remaining <= 0 {
		return false, ErrNoCredits
	}
	if f.graveyard.Len() == 0 {
		return false, ErrGraveyardEmpty
	}
	if c == card.ClassScroll {
		return false, ErrScrollNotAllowed
	}
	def, err := f.adventurers.FirstOfClass(c)
	if err != nil {
		return false, fmt.Errorf("resurrecting %s: %w", c, err)
	}

	fallen, _ := f.graveyard.Pop()
	f.reserved = append(f.reserved, def.ID)
	f.remaining--
	f.logger.Debug("resurrection pick",
		zap.Stringer("class", c),
		zap.String("consumed", fallen.ID),
		zap.Int("remaining", f.remaining),
	)

	if f.remaining > 0 {
		return false, nil
	}
	f.close()
	return true, nil
}

func (f *Flow) close() {
	for _, id := range f.reserved {
		if _, err := f.spawner.Spawn(id, f.zone); err != nil {
			f.logger.Warn("resurrection spawn skipped", zap.String("card", id), zap.Error(err))
		}
	}
	f.logger.Info("resurrection closed", zap.Int("placed", len(f.reserved)))
	f.open = false
	f.reserved = nil
	if f.afterClose != nil {
		f.afterClose()
	}
}

// Reset closes the flow without placing anything. Used when a run is torn down.
func (f *Flow) Reset() {
	f.open = false
	f.remaining = 0
	f.reserved = nil
}
