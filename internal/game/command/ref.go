package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

// ErrBadRef is returned for a card reference that does not parse or resolve.
var ErrBadRef = errors.New("command: bad card reference")

var refPrefixes = map[byte]table.ZoneID{
	'a': table.ZoneAdventurers,
	'd': table.ZoneDungeon,
	'g': table.ZoneDragons,
	'h': table.ZoneHire,
}

// CardRef names a card by zone and 1-based board position, e.g. "a3" or "d1".
type CardRef struct {
	Zone table.ZoneID
	// Index is 0-based.
	Index int
}

// ParseCardRef parses a reference: a zone letter (a, d, g, h) followed by a
// 1-based position.
func ParseCardRef(s string) (CardRef, error) {
	if len(s) < 2 {
		return CardRef{}, fmt.Errorf("%q: %w", s, ErrBadRef)
	}
	zone, ok := refPrefixes[s[0]]
	if !ok {
		return CardRef{}, fmt.Errorf("%q: unknown zone letter: %w", s, ErrBadRef)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return CardRef{}, fmt.Errorf("%q: position must be a positive number: %w", s, ErrBadRef)
	}
	return CardRef{Zone: zone, Index: n - 1}, nil
}

// Resolve finds the referenced card in v.
func (r CardRef) Resolve(v session.View) (session.CardView, error) {
	var row []session.CardView
	switch r.Zone {
	case table.ZoneAdventurers:
		row = v.Adventurers
	case table.ZoneDungeon:
		row = v.Dungeon
	case table.ZoneDragons:
		row = v.Dragons
	case table.ZoneHire:
		row = v.Hire
	}
	if r.Index < 0 || r.Index >= len(row) {
		return session.CardView{}, fmt.Errorf("%s %d: no such card: %w", r.Zone, r.Index+1, ErrBadRef)
	}
	return row[r.Index], nil
}
