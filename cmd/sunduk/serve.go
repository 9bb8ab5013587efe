package main

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/frontend/telnet"
	"github.com/cory-johannsen/sunduk/internal/frontend/text"
	"github.com/cory-johannsen/sunduk/internal/game/command"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/ledger"
	"github.com/cory-johannsen/sunduk/internal/server"
)

const (
	healthInterval = 30 * time.Second
	healthTimeout  = 5 * time.Second
)

// ServeCmd accepts Telnet players, one independent session per connection.
type ServeCmd struct {
	Host    string `help:"Override telnet.host"`
	Port    int    `help:"Override telnet.port" default:"-1"`
	NoColor bool   `help:"Disable ANSI colours"`
}

func (c *ServeCmd) Run(g *Globals) error {
	start := time.Now()
	a, err := g.load()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if c.Host != "" {
		a.cfg.Telnet.Host = c.Host
	}
	if c.Port >= 0 {
		a.cfg.Telnet.Port = c.Port
	}

	ctx := context.Background()
	store, pool, err := a.openLedger(ctx)
	if err != nil {
		return err
	}

	rec := ledger.NewRecorder(store, saveTimeout, a.logger.Named("ledger"))
	reg := command.DefaultRegistry()
	palette := text.NewPalette(!c.NoColor)
	var seq atomic.Int64

	handler := telnet.HandlerFunc(func(ctx context.Context, conn *telnet.Conn) error {
		n := seq.Add(1)
		seed := a.cfg.Game.Seed
		if seed != 0 {
			seed += n
		}
		logger := a.logger.With(zap.Int64("player", n), zap.Stringer("remote_addr", conn.RemoteAddr()))

		sess := session.New(a.sessionConfig(), a.lib, dice.New(seed, logger.Named("dice")), logger.Named("session"))
		detach, err := a.attach(sess, rec)
		if err != nil {
			return err
		}
		defer detach()
		return text.NewConsole(conn, sess, reg, palette, logger.Named("console")).Run(ctx)
	})
	acceptor := telnet.NewAcceptor(a.cfg.Telnet, handler, a.logger.Named("telnet"))

	lifecycle := server.NewLifecycle(a.logger)
	if pool != nil {
		defer pool.Close()
		lifecycle.Add("postgres", server.NewTicker(healthInterval, func(ctx context.Context) {
			if err := pool.Health(ctx, healthTimeout); err != nil {
				a.logger.Warn("database health check failed", zap.Error(err))
			}
		}))
	}
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	a.logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", a.cfg.Telnet.Addr()),
		zap.Int("max_sessions", a.cfg.Telnet.MaxSessions),
		zap.Bool("database", pool != nil),
	)
	return lifecycle.Run(ctx)
}
