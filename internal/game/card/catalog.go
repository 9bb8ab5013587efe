package card

import "fmt"

// Catalog is an ordered, id-indexed set of definitions of a single kind.
// A Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	kind Kind
	defs []*Definition
	byID map[string]*Definition
}

// NewCatalog builds a catalog of the given kind.
//
// Precondition: every def must be non-nil.
// Postcondition: Returns an error if any def fails Validate, has a different
// kind, or repeats an id.
func NewCatalog(kind Kind, defs ...*Definition) (*Catalog, error) {
	c := &Catalog{
		kind: kind,
		defs: make([]*Definition, 0, len(defs)),
		byID: make(map[string]*Definition, len(defs)),
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Kind != kind {
			return nil, fmt.Errorf("card %q: kind %s does not belong in %s catalog", d.ID, d.Kind, kind)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("card %q: duplicate id in %s catalog", d.ID, kind)
		}
		c.byID[d.ID] = d
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// Kind returns the kind held by the catalog.
func (c *Catalog) Kind() Kind { return c.kind }

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// Lookup returns the definition for id.
//
// Postcondition: Returns a *NotFoundError when id is unknown.
func (c *Catalog) Lookup(id string) (*Definition, error) {
	if d, ok := c.byID[id]; ok {
		return d, nil
	}
	return nil, &NotFoundError{Kind: c.kind, ID: id}
}

// At returns the i-th definition in load order.
//
// Precondition: 0 <= i < Len().
func (c *Catalog) At(i int) *Definition { return c.defs[i] }

// Entries returns a copy of the definitions in load order.
func (c *Catalog) Entries() []*Definition {
	out := make([]*Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// FirstOfClass returns the first adventurer definition of class cl in load order.
//
// Postcondition: Returns a *NotFoundError keyed by the class name when absent.
func (c *Catalog) FirstOfClass(cl Class) (*Definition, error) {
	for _, d := range c.defs {
		if d.IsAdventurer() && d.Adventurer.Class == cl {
			return d, nil
		}
	}
	return nil, &NotFoundError{Kind: c.kind, ID: cl.String()}
}

// HasClass reports whether any adventurer of class cl is in the catalog.
func (c *Catalog) HasClass(cl Class) bool {
	_, err := c.FirstOfClass(cl)
	return err == nil
}

// Library pairs the adventurer and dungeon catalogs.
type Library struct {
	Adventurers *Catalog
	Dungeon     *Catalog
}

// ForKind returns the catalog holding cards of kind k.
func (l *Library) ForKind(k Kind) *Catalog {
	if k == KindDungeon {
		return l.Dungeon
	}
	return l.Adventurers
}

// Lookup searches the adventurer catalog first, then the dungeon catalog.
//
// Postcondition: Returns a *NotFoundError when neither catalog holds id.
func (l *Library) Lookup(id string) (*Definition, error) {
	if d, err := l.Adventurers.Lookup(id); err == nil {
		return d, nil
	}
	if d, err := l.Dungeon.Lookup(id); err == nil {
		return d, nil
	}
	return nil, &NotFoundError{Kind: KindAdventurer, ID: id}
}
