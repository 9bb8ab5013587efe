package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/config"
	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/ledger"
	"github.com/cory-johannsen/sunduk/internal/observability"
	"github.com/cory-johannsen/sunduk/internal/scripting"
	"github.com/cory-johannsen/sunduk/internal/storage/postgres"
)

const saveTimeout = 5 * time.Second

// app is the state every subcommand starts from.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	lib    *card.Library
}

// load reads the configuration, builds the logger and loads the card library.
//
// Postcondition: On success the caller owns logger and must Sync it.
func (g *Globals) load() (*app, error) {
	start := time.Now()

	var (
		cfg config.Config
		err error
	)
	if g.Config == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(g.Config)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	lib, err := loadLibrary(cfg.Content)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("loading cards: %w", err)
	}
	logger.Info("card library loaded",
		zap.Int("adventurers", lib.ForKind(card.KindAdventurer).Len()),
		zap.Int("dungeon", lib.ForKind(card.KindDungeon).Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &app{cfg: cfg, logger: logger, lib: lib}, nil
}

func loadLibrary(c config.ContentConfig) (*card.Library, error) {
	if c.Adventurers == "" {
		return card.Builtin()
	}
	return card.LoadLibrary(c.Adventurers, c.Dungeon)
}

func (a *app) sessionConfig() session.Config {
	g := a.cfg.Game
	return session.Config{
		StartingAdventurers: g.StartingAdventurers,
		HireCount:           g.HireCount,
		DragonThreshold:     g.DragonThreshold,
		MaxDungeonCards:     g.MaxDungeonCards,
		ToastDuration:       g.ToastDuration,
	}
}

// openLedger returns the run store the configuration selects. pool is nil
// for the in-memory store; otherwise the caller must Close it.
func (a *app) openLedger(ctx context.Context) (store ledger.Store, pool *postgres.Pool, err error) {
	if !a.cfg.Database.Enabled {
		a.logger.Info("run ledger kept in memory")
		return ledger.NewMemoryStore(), nil, nil
	}

	dbStart := time.Now()
	pool, err = postgres.NewPool(ctx, a.cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	a.logger.Info("database connected",
		zap.String("host", a.cfg.Database.Host),
		zap.Int("port", a.cfg.Database.Port),
		zap.String("database", a.cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	return postgres.NewRunRepository(pool.DB()), pool, nil
}

// attach subscribes rec and, when a script directory is configured, a fresh
// Lua engine to sess.
//
// Postcondition: The returned function unsubscribes both and closes the engine.
func (a *app) attach(sess *session.Session, rec *ledger.Recorder) (func(), error) {
	detach := []func(){sess.Subscribe(rec)}
	undo := func() {
		for i := len(detach) - 1; i >= 0; i-- {
			detach[i]()
		}
	}

	if dir := a.cfg.Scripting.Dir; dir != "" {
		eng := scripting.NewEngine(a.cfg.Scripting.InstructionLimit, observability.Component(a.logger, "scripting"))
		if err := eng.LoadDir(dir); err != nil {
			eng.Close()
			undo()
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
		eng.Toast = sess.Toast
		detach = append(detach, eng.Close, sess.Subscribe(scripting.NewHooks(eng)))
	}
	return undo, nil
}
