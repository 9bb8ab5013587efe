// Package command provides the console command registry, parser, and the
// interpreter that applies commands to a session.
package command

// Categories for organizing commands.
const (
	CategoryBattle = "battle"
	CategoryRun    = "run"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to session operations.
const (
	HandlerLook      = "look"
	HandlerSelect    = "select"
	HandlerAttack    = "attack"
	HandlerMark      = "mark"
	HandlerReroll    = "reroll"
	HandlerResurrect = "resurrect"
	HandlerNext      = "next"
	HandlerStart     = "start"
	HandlerTavern    = "tavern"
	HandlerHire      = "hire"
	HandlerFight     = "fight"
	HandlerGiveUp    = "giveup"
	HandlerMenu      = "menu"
	HandlerPause     = "pause"
	HandlerResume    = "resume"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "<card> <card>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (battle, run, system).
	Category string
	// Handler maps to the session operation.
	Handler string
}

// BuiltinCommands returns all built-in console commands.
func BuiltinCommands() []Command {
	return []Command{
		// Battle commands
		{Name: "select", Aliases: []string{"s", "click"}, Usage: "<card>", Help: "Click a card: select an adventurer, attack with the selection, or mark for reroll", Category: CategoryBattle, Handler: HandlerSelect},
		{Name: "attack", Aliases: []string{"att", "a"}, Usage: "<adventurer> <dungeon>", Help: "Attack a dungeon card with an adventurer", Category: CategoryBattle, Handler: HandlerAttack},
		{Name: "mark", Aliases: []string{"m"}, Usage: "<card>", Help: "Mark or unmark a card for the pending reroll", Category: CategoryBattle, Handler: HandlerMark},
		{Name: "reroll", Aliases: []string{"rr"}, Help: "Redraw every marked card and spend the scroll", Category: CategoryBattle, Handler: HandlerReroll},
		{Name: "resurrect", Aliases: []string{"res"}, Usage: "<class>", Help: "Spend a resurrection credit on a class", Category: CategoryBattle, Handler: HandlerResurrect},
		{Name: "next", Aliases: []string{"n"}, Help: "Collect the round's gold and deal the next round", Category: CategoryBattle, Handler: HandlerNext},
		{Name: "giveup", Aliases: []string{"surrender"}, Help: "Abandon the battle and return to the tavern", Category: CategoryBattle, Handler: HandlerGiveUp},

		// Run commands
		{Name: "start", Aliases: []string{"new"}, Help: "Start a new run with a dealt hand", Category: CategoryRun, Handler: HandlerStart},
		{Name: "tavern", Aliases: []string{"t"}, Help: "Enter the tavern", Category: CategoryRun, Handler: HandlerTavern},
		{Name: "hire", Aliases: []string{"h"}, Help: "Refill the hire pool", Category: CategoryRun, Handler: HandlerHire},
		{Name: "fight", Aliases: []string{"f"}, Help: "Start a run with the hired party", Category: CategoryRun, Handler: HandlerFight},
		{Name: "menu", Help: "Abandon any run and return to the main menu", Category: CategoryRun, Handler: HandlerMenu},

		// System commands
		{Name: "look", Aliases: []string{"l", "board"}, Help: "Show the table", Category: CategorySystem, Handler: HandlerLook},
		{Name: "pause", Help: "Pause the game", Category: CategorySystem, Handler: HandlerPause},
		{Name: "resume", Help: "Resume a paused game", Category: CategorySystem, Handler: HandlerResume},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
