package card

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type adventurerRecord struct {
	ID              string        `yaml:"id"`
	DisplayName     string        `yaml:"display_name"`
	Description     string        `yaml:"description"`
	Class           Class         `yaml:"class"`
	Priority        int           `yaml:"priority"`
	DiscardAfterUse *bool         `yaml:"discard_after_use"`
	KillsAllOf      []DungeonType `yaml:"kills_all_of"`
}

type dungeonRecord struct {
	ID            string      `yaml:"id"`
	DisplayName   string      `yaml:"display_name"`
	Description   string      `yaml:"description"`
	Type          DungeonType `yaml:"type"`
	InstantEffect bool        `yaml:"instant_effect"`
	Tag           string      `yaml:"tag"`
	GroupSize     int         `yaml:"group_size"`
}

type catalogFile[T any] struct {
	Cards []T `yaml:"cards"`
}

// LoadAdventurersFromBytes parses an adventurer catalog from YAML.
//
// Precondition: data holds a document with a top-level "cards" list.
// Postcondition: Returns a validated catalog; discard_after_use defaults to true.
func LoadAdventurersFromBytes(data []byte) (*Catalog, error) {
	var f catalogFile[adventurerRecord]
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing adventurer catalog YAML: %w", err)
	}
	defs := make([]*Definition, 0, len(f.Cards))
	for _, r := range f.Cards {
		discard := true
		if r.DiscardAfterUse != nil {
			discard = *r.DiscardAfterUse
		}
		defs = append(defs, &Definition{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			Description: r.Description,
			Kind:        KindAdventurer,
			Adventurer: &AdventurerEntry{
				Class:           r.Class,
				KillsAllOf:      r.KillsAllOf,
				Priority:        r.Priority,
				DiscardAfterUse: discard,
			},
		})
	}
	return NewCatalog(KindAdventurer, defs...)
}

// LoadDungeonFromBytes parses a dungeon catalog from YAML.
//
// Precondition: data holds a document with a top-level "cards" list.
// Postcondition: Returns a validated catalog or an error.
func LoadDungeonFromBytes(data []byte) (*Catalog, error) {
	var f catalogFile[dungeonRecord]
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing dungeon catalog YAML: %w", err)
	}
	defs := make([]*Definition, 0, len(f.Cards))
	for _, r := range f.Cards {
		defs = append(defs, &Definition{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			Description: r.Description,
			Kind:        KindDungeon,
			Dungeon: &DungeonEntry{
				Type:          r.Type,
				InstantEffect: r.InstantEffect,
				Tag:           r.Tag,
				GroupSize:     r.GroupSize,
			},
		})
	}
	return NewCatalog(KindDungeon, defs...)
}

// LoadLibrary reads both catalog files.
//
// Precondition: both paths must name readable YAML files.
// Postcondition: Returns a Library with both catalogs populated, or an error
// naming the file that failed.
func LoadLibrary(adventurersPath, dungeonPath string) (*Library, error) {
	advData, err := os.ReadFile(adventurersPath)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", adventurersPath, err)
	}
	adv, err := LoadAdventurersFromBytes(advData)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", adventurersPath, err)
	}

	dunData, err := os.ReadFile(dungeonPath)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", dungeonPath, err)
	}
	dun, err := LoadDungeonFromBytes(dunData)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", dungeonPath, err)
	}
	return &Library{Adventurers: adv, Dungeon: dun}, nil
}
