package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/autoplay"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/ledger"
)

// SimulateCmd plays bot runs in parallel and prints aggregate results.
type SimulateCmd struct {
	Runs     int   `help:"Number of runs to play" default:"1000"`
	Workers  int   `help:"Concurrent runs; 0 uses GOMAXPROCS" default:"0"`
	Seed     int64 `help:"Base seed; run i uses seed+i. 0 uses crypto/rand" default:"0"`
	MaxSteps int   `help:"Abort a run after this many bot actions" default:"10000"`
	Record   bool  `help:"Save every finished run to the ledger"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var onRun func(event.RunSummary)
	if c.Record {
		store, pool, err := a.openLedger(ctx)
		if err != nil {
			return err
		}
		if pool != nil {
			defer pool.Close()
		}
		onRun = ledger.NewRecorder(store, saveTimeout, a.logger.Named("ledger")).OnRunEnded
	}

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	start := time.Now()
	stats, err := autoplay.Simulate(ctx, a.lib, autoplay.SimConfig{
		Runs:     c.Runs,
		Workers:  workers,
		Seed:     c.Seed,
		MaxSteps: c.MaxSteps,
		Session:  a.sessionConfig(),
	}, a.logger.Named("autoplay"), onRun)
	if err != nil {
		return fmt.Errorf("simulating: %w", err)
	}
	a.logger.Debug("simulation elapsed", zap.Duration("elapsed", time.Since(start)))
	return printStats(os.Stdout, stats)
}

func printStats(w io.Writer, s autoplay.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "runs\t%d\n", s.Runs)
	fmt.Fprintf(tw, "mean gold\t%.2f\n", s.MeanGold())
	fmt.Fprintf(tw, "max gold\t%d\n", s.MaxGold)
	fmt.Fprintf(tw, "max round\t%d\n", s.MaxRound)

	outcomes := make([]event.Outcome, 0, len(s.Outcomes))
	for o := range s.Outcomes {
		outcomes = append(outcomes, o)
	}
	slices.Sort(outcomes)
	for _, o := range outcomes {
		n := s.Outcomes[o]
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", o, n, 100*float64(n)/float64(max(1, s.Runs)))
	}
	return tw.Flush()
}
