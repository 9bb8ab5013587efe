package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/frontend/text"
	"github.com/cory-johannsen/sunduk/internal/game/command"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/ledger"
)

// PlayCmd runs one game on stdin and stdout.
type PlayCmd struct {
	NoColor bool  `help:"Disable ANSI colours"`
	Seed    int64 `help:"Random seed; overrides game.seed when non-zero"`
}

func (c *PlayCmd) Run(g *Globals) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pool, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	seed := a.cfg.Game.Seed
	if c.Seed != 0 {
		seed = c.Seed
	}
	sess := session.New(a.sessionConfig(), a.lib, dice.New(seed, a.logger.Named("dice")), a.logger.Named("session"))
	detach, err := a.attach(sess, ledger.NewRecorder(store, saveTimeout, a.logger.Named("ledger")))
	if err != nil {
		return err
	}
	defer detach()

	a.logger.Info("console started", zap.Int64("seed", seed))
	console := text.NewConsole(text.NewStreamIO(os.Stdin, os.Stdout), sess, command.DefaultRegistry(), text.NewPalette(!c.NoColor), a.logger.Named("console"))
	return console.Run(ctx)
}
