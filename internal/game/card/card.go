// Package card provides card definitions, the adventurer and dungeon
// catalogs, and their YAML loaders.
package card

import (
	"fmt"
	"slices"
	"strings"
)

// Kind distinguishes adventurer cards from dungeon cards.
type Kind int

const (
	KindAdventurer Kind = iota
	KindDungeon
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindAdventurer:
		return "adventurer"
	case KindDungeon:
		return "dungeon"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Class is an adventurer class.
type Class int

const (
	ClassWarrior Class = iota
	ClassCleric
	ClassMage
	ClassThief
	ClassPaladin
	ClassScroll
)

var classNames = map[Class]string{
	ClassWarrior: "warrior",
	ClassCleric:  "cleric",
	ClassMage:    "mage",
	ClassThief:   "thief",
	ClassPaladin: "paladin",
	ClassScroll:  "scroll",
}

// AllClasses lists every class in declaration order.
var AllClasses = []Class{ClassWarrior, ClassCleric, ClassMage, ClassThief, ClassPaladin, ClassScroll}

func (c Class) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// ParseClass resolves a case-insensitive class name.
//
// Postcondition: Returns the class or an error naming the unknown value.
func ParseClass(s string) (Class, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllClasses {
		if classNames[c] == want {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown adventurer class %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(text []byte) error {
	parsed, err := ParseClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// DungeonType is the type of a dungeon card.
type DungeonType int

const (
	DungeonGoblin DungeonType = iota
	DungeonSkeleton
	DungeonOoze
	DungeonChest
	DungeonPotion
	DungeonDragon
)

var dungeonTypeNames = map[DungeonType]string{
	DungeonGoblin:   "goblin",
	DungeonSkeleton: "skeleton",
	DungeonOoze:     "ooze",
	DungeonChest:    "chest",
	DungeonPotion:   "potion",
	DungeonDragon:   "dragon",
}

// AllDungeonTypes lists every dungeon type in declaration order.
var AllDungeonTypes = []DungeonType{DungeonGoblin, DungeonSkeleton, DungeonOoze, DungeonChest, DungeonPotion, DungeonDragon}

func (t DungeonType) String() string {
	if n, ok := dungeonTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("dungeon(%d)", int(t))
}

// ParseDungeonType resolves a case-insensitive dungeon type name.
func ParseDungeonType(s string) (DungeonType, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllDungeonTypes {
		if dungeonTypeNames[t] == want {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown dungeon type %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DungeonType) UnmarshalText(text []byte) error {
	parsed, err := ParseDungeonType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t DungeonType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// AdventurerEntry is the gameplay payload of an adventurer card.
type AdventurerEntry struct {
	Class Class
	// KillsAllOf lists the dungeon types wiped from the row on a matching hit.
	KillsAllOf      []DungeonType
	Priority        int
	DiscardAfterUse bool
}

// Kills reports whether a hit on t wipes every card of that type.
func (a *AdventurerEntry) Kills(t DungeonType) bool {
	return slices.Contains(a.KillsAllOf, t)
}

// DungeonEntry is the gameplay payload of a dungeon card.
type DungeonEntry struct {
	Type DungeonType
	// InstantEffect cards are never counted as active enemies.
	InstantEffect bool
	Tag           string
	// GroupSize is the typical number of this type dealt together, for display.
	GroupSize int
}

// Definition is an immutable card definition shared by all instances of a card.
// Exactly one of Adventurer or Dungeon is non-nil, matching Kind.
type Definition struct {
	ID          string
	DisplayName string
	Description string
	Kind        Kind
	Adventurer  *AdventurerEntry
	Dungeon     *DungeonEntry
}

// Validate checks the payload matches the kind.
//
// Postcondition: Returns nil iff ID is non-empty and exactly the payload for Kind is set.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("card definition: id must not be empty")
	}
	switch d.Kind {
	case KindAdventurer:
		if d.Adventurer == nil || d.Dungeon != nil {
			return fmt.Errorf("card %q: adventurer definition must carry only an adventurer entry", d.ID)
		}
		if _, ok := classNames[d.Adventurer.Class]; !ok {
			return fmt.Errorf("card %q: invalid class %d", d.ID, int(d.Adventurer.Class))
		}
	case KindDungeon:
		if d.Dungeon == nil || d.Adventurer != nil {
			return fmt.Errorf("card %q: dungeon definition must carry only a dungeon entry", d.ID)
		}
		if _, ok := dungeonTypeNames[d.Dungeon.Type]; !ok {
			return fmt.Errorf("card %q: invalid dungeon type %d", d.ID, int(d.Dungeon.Type))
		}
	default:
		return fmt.Errorf("card %q: invalid kind %d", d.ID, int(d.Kind))
	}
	return nil
}

// IsAdventurer reports whether d is an adventurer card.
func (d *Definition) IsAdventurer() bool { return d.Kind == KindAdventurer && d.Adventurer != nil }

// IsDungeon reports whether d is a dungeon card.
func (d *Definition) IsDungeon() bool { return d.Kind == KindDungeon && d.Dungeon != nil }

// IsScroll reports whether d is a Scroll-class adventurer.
func (d *Definition) IsScroll() bool { return d.IsAdventurer() && d.Adventurer.Class == ClassScroll }

// IsDragon reports whether d is a Dragon dungeon card.
func (d *Definition) IsDragon() bool { return d.IsOfType(DungeonDragon) }

// IsOfType reports whether d is a dungeon card of type t.
func (d *Definition) IsOfType(t DungeonType) bool { return d.IsDungeon() && d.Dungeon.Type == t }

// IsOrdinaryEnemy reports whether d is a dungeon card that blocks clearance in
// a normal battle: not a Chest, Potion or Dragon, and not instant-effect.
func (d *Definition) IsOrdinaryEnemy() bool {
	if !d.IsDungeon() || d.Dungeon.InstantEffect {
		return false
	}
	switch d.Dungeon.Type {
	case DungeonChest, DungeonPotion, DungeonDragon:
		return false
	default:
		return true
	}
}

// Name returns DisplayName, falling back to ID.
func (d *Definition) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}

// NotFoundError reports a card id absent from a catalog.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("card %q not found in %s catalog", e.ID, e.Kind)
}
