package autoplay

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/session"
)

// SimConfig describes a batch of bot runs.
type SimConfig struct {
	Runs    int
	Workers int
	// Seed 0 draws from crypto/rand; otherwise run i uses Seed+i.
	Seed     int64
	MaxSteps int
	Session  session.Config
}

// Stats aggregates finished runs.
type Stats struct {
	Runs      int
	Outcomes  map[event.Outcome]int
	TotalGold int
	MaxGold   int
	MaxRound  int
}

// MeanGold returns the average gold per run, or 0 with no runs.
func (s Stats) MeanGold() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.TotalGold) / float64(s.Runs)
}

// Add folds one summary into s.
func (s *Stats) Add(r event.RunSummary) {
	if s.Outcomes == nil {
		s.Outcomes = make(map[event.Outcome]int)
	}
	s.Runs++
	s.Outcomes[r.Outcome]++
	s.TotalGold += r.Gold
	s.MaxGold = max(s.MaxGold, r.Gold)
	s.MaxRound = max(s.MaxRound, r.Round)
}

// Simulate plays cfg.Runs independent sessions on up to cfg.Workers
// goroutines. Each session owns its table and source; only lib is shared.
// onRun, if non-nil, sees every summary in run order after all runs finish.
//
// Precondition: cfg.Runs >= 0 and cfg.Workers >= 1.
// Postcondition: Returns the first run error, with ctx cancelled for the rest.
func Simulate(ctx context.Context, lib *card.Library, cfg SimConfig, logger *zap.Logger, onRun func(event.RunSummary)) (Stats, error) {
	results := make([]event.RunSummary, cfg.Runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))

	for i := 0; i < cfg.Runs; i++ {
		g.Go(func() error {
			src := dice.NewCryptoSource()
			if cfg.Seed != 0 {
				src = dice.NewSeededSource(cfg.Seed + int64(i))
			}
			runLogger := logger.With(zap.Int("sim_run", i))
			sess := session.New(cfg.Session, lib, src, runLogger)
			summary, err := NewBot(sess, src, runLogger, cfg.MaxSteps).PlayRun(ctx)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, r := range results {
		stats.Add(r)
		if onRun != nil {
			onRun(r)
		}
	}
	logger.Info("simulation finished",
		zap.Int("runs", stats.Runs),
		zap.Float64("mean_gold", stats.MeanGold()),
		zap.Int("max_round", stats.MaxRound),
	)
	return stats, nil
}
