package combat

import (
	"slices"

	"github.com/cory-johannsen/sunduk/internal/game/card"
)

// DragonKillTracker records which adventurer classes have slain a dragon in
// the current dragon battle. Each class may slay at most one.
type DragonKillTracker struct {
	classes map[card.Class]bool
}

// NewDragonKillTracker returns an empty tracker.
func NewDragonKillTracker() *DragonKillTracker {
	return &DragonKillTracker{classes: make(map[card.Class]bool)}
}

// Used reports whether c has already slain a dragon.
func (t *DragonKillTracker) Used(c card.Class) bool { return t.classes[c] }

// Record marks c as having slain a dragon.
func (t *DragonKillTracker) Record(c card.Class) { t.classes[c] = true }

// Clear forgets every recorded class.
func (t *DragonKillTracker) Clear() { clear(t.classes) }

// Classes returns the recorded classes in declaration order.
func (t *DragonKillTracker) Classes() []card.Class {
	var out []card.Class
	for _, c := range card.AllClasses {
		if t.classes[c] {
			out = append(out, c)
		}
	}
	return slices.Clip(out)
}
