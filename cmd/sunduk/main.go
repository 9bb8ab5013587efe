// Package main provides the sunduk command: a local console, a Telnet server,
// a bot simulator and a run-ledger viewer for the Sunduk card battle engine.
package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every subcommand.
type Globals struct {
	Config string `short:"c" type:"path" env:"SUNDUK_CONFIG" help:"Path to a YAML configuration file. Empty uses built-in defaults."`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play in this terminal"`
	Serve    ServeCmd         `cmd:"" help:"Serve the console to Telnet players"`
	Simulate SimulateCmd      `cmd:"" help:"Play many runs with the built-in bot and report statistics"`
	Runs     RunsCmd          `cmd:"" help:"Show the best recorded runs"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("sunduk"),
		kong.Description("Deck-card battle: hire adventurers, clear the dungeon, slay the dragons."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
