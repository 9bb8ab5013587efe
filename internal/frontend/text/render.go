package text

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

// Renderer turns session views and notifications into display text.
// Lines are separated by "\n"; transports convert line endings.
type Renderer struct {
	p Palette
}

// NewRenderer creates a Renderer.
func NewRenderer(p Palette) Renderer { return Renderer{p: p} }

var stateTitles = map[state.GameState]string{
	state.MainMenu:     "Main Menu",
	state.Tavern:       "Tavern",
	state.EnemyBattle:  "Enemy Battle",
	state.DragonBattle: "Dragon Battle",
	state.Pause:        "Paused",
}

func title(s state.GameState) string {
	if t, ok := stateTitles[s]; ok {
		return t
	}
	return s.String()
}

// Board draws v.
//
// Postcondition: Every card on the table appears with its reference label.
func (r Renderer) Board(v session.View) string {
	return strings.TrimSuffix(r.board(v), "\n")
}

func (r Renderer) board(v session.View) string {
	var b strings.Builder
	b.WriteString(r.header(v))
	b.WriteString("\n")

	switch {
	case v.State == state.MainMenu:
		b.WriteString(r.p.Paint(Dim, "Type 'start' for a new run or 'tavern' to hire heroes."))
		b.WriteString("\n")
		return b.String()
	case v.State == state.Tavern:
		r.row(&b, "For hire", table.ZoneHire, v.Hire)
		r.graveyard(&b, v.Graveyard)
		if len(v.Hire) == 0 {
			b.WriteString(r.p.Paint(Dim, "Type 'hire' to see who is looking for work."))
		} else {
			b.WriteString(r.p.Paint(Dim, "Type 'fight' to lead them into the dungeon, or 'hire' again."))
		}
		b.WriteString("\n")
		return b.String()
	}

	r.row(&b, "Dungeon", table.ZoneDungeon, v.Dungeon)
	if len(v.Dragons) > 0 {
		r.row(&b, "Dragons", table.ZoneDragons, v.Dragons)
	}
	r.row(&b, "Party", table.ZoneAdventurers, v.Adventurers)
	r.graveyard(&b, v.Graveyard)
	if len(v.DragonKills) > 0 {
		names := make([]string, 0, len(v.DragonKills))
		for _, c := range v.DragonKills {
			names = append(names, c.String())
		}
		fmt.Fprintf(&b, "%-11s %s\n", "Slayers", r.p.Paint(Magenta, strings.Join(names, ", ")))
	}

	switch {
	case v.ResurrectionOpen:
		b.WriteString(r.p.Paintf(BrightGreen, "%d resurrection(s) pending: resurrect <class>", v.ResurrectionRemaining))
		b.WriteString("\n")
	case v.RerollActive:
		b.WriteString(r.p.Paint(BrightCyan, "Reroll: mark dungeon cards with 'mark dN', then 'reroll'."))
		b.WriteString("\n")
	case v.RoundCleared:
		b.WriteString(r.p.Paint(BrightGreen, "Round cleared. Type 'next' to collect gold and continue."))
		b.WriteString("\n")
	}
	return b.String()
}

func (r Renderer) header(v session.View) string {
	head := r.p.Paintf(BrightYellow, "=== %s ===", title(v.State))
	if !v.State.IsBattle() {
		return head + "  " + r.p.Paintf(Yellow, "Gold %d", v.Gold)
	}
	return fmt.Sprintf("%s  Round %d  %s  %s",
		head, v.Round,
		r.p.Paintf(Yellow, "Gold %d", v.Gold),
		r.p.Paintf(Red, "Dragons %d", v.DragonCount),
	)
}

func (r Renderer) row(b *strings.Builder, label string, zone table.ZoneID, cards []session.CardView) {
	fmt.Fprintf(b, "%-11s ", label)
	if len(cards) == 0 {
		b.WriteString(r.p.Paint(Dim, "(empty)"))
		b.WriteString("\n")
		return
	}
	parts := make([]string, 0, len(cards))
	for i, c := range cards {
		parts = append(parts, r.cardLabel(zoneLetter(zone), i, c))
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n")
}

func (r Renderer) graveyard(b *strings.Builder, fallen []table.Fallen) {
	if len(fallen) == 0 {
		return
	}
	names := make([]string, 0, len(fallen))
	for _, f := range fallen {
		names = append(names, f.Class.String())
	}
	fmt.Fprintf(b, "%-11s %s\n", "Graveyard", r.p.Paint(Dim, strings.Join(names, ", ")))
}

func zoneLetter(z table.ZoneID) string {
	switch z {
	case table.ZoneAdventurers:
		return "a"
	case table.ZoneDungeon:
		return "d"
	case table.ZoneDragons:
		return "g"
	case table.ZoneHire:
		return "h"
	}
	return "?"
}

// cardLabel renders "a1:Warrior"; selected cards get a '*', marked cards a '!'.
func (r Renderer) cardLabel(letter string, i int, c session.CardView) string {
	name := c.Def.Name()
	switch {
	case c.Selected:
		name += "*"
	case c.Marked:
		name += "!"
	}
	text := fmt.Sprintf("%s%d:%s", letter, i+1, name)
	style := cardStyle(c.Def)
	if c.Selected || c.Marked {
		style = Reverse + style
	}
	return r.p.Paint(style, text)
}

func cardStyle(d *card.Definition) string {
	if d.IsAdventurer() {
		if d.IsScroll() {
			return BrightCyan
		}
		return BrightWhite
	}
	switch d.Dungeon.Type {
	case card.DungeonChest:
		return Yellow
	case card.DungeonPotion:
		return Green
	case card.DungeonDragon:
		return BrightRed
	}
	return Red
}

var outcomeText = map[event.Outcome]string{
	event.OutcomeAttrition:     "Your party has been wiped out.",
	event.OutcomeDragonVictory: "The dragons are slain!",
	event.OutcomeDragonDefeat:  "The dragons have devoured your party.",
	event.OutcomeGaveUp:        "You gave up.",
	event.OutcomeAbandoned:     "The run was abandoned.",
}

// Summary describes a finished run.
func (r Renderer) Summary(s event.RunSummary) string {
	style := Yellow
	switch s.Outcome {
	case event.OutcomeDragonVictory:
		style = BrightGreen
	case event.OutcomeAttrition, event.OutcomeDragonDefeat:
		style = BrightRed
	}
	msg, ok := outcomeText[s.Outcome]
	if !ok {
		msg = string(s.Outcome)
	}
	return r.p.Paintf(style, "%s Reached round %d with %d gold.", msg, s.Round, s.Gold)
}

// Toast renders a transient notice.
func (r Renderer) Toast(message string) string {
	return r.p.Paint(Bold+BrightYellow, ">> "+message)
}

// Error renders a rejected command.
func (r Renderer) Error(err error) string {
	return r.p.Paint(Red, err.Error())
}

// Prompt is shown before each input line.
func (r Renderer) Prompt(v session.View) string {
	if v.State.IsBattle() {
		return r.p.Paintf(Cyan, "[r%d %dg]", v.Round, v.Gold) + "> "
	}
	return "> "
}
