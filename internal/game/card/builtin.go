package card

import (
	_ "embed"
	"fmt"
)

//go:embed content/adventurers.yaml
var builtinAdventurers []byte

//go:embed content/dungeon.yaml
var builtinDungeon []byte

// Builtin returns the catalogs shipped with the engine.
//
// Postcondition: Returns a Library with both catalogs populated, or an error if
// the embedded content is malformed.
func Builtin() (*Library, error) {
	adv, err := LoadAdventurersFromBytes(builtinAdventurers)
	if err != nil {
		return nil, fmt.Errorf("loading built-in adventurers: %w", err)
	}
	dun, err := LoadDungeonFromBytes(builtinDungeon)
	if err != nil {
		return nil, fmt.Errorf("loading built-in dungeon: %w", err)
	}
	return &Library{Adventurers: adv, Dungeon: dun}, nil
}

// MustBuiltin is Builtin for callers that cannot recover from broken embedded content.
func MustBuiltin() *Library {
	lib, err := Builtin()
	if err != nil {
		panic(err)
	}
	return lib
}
