package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/ledger"
)

// RunsCmd lists the ledger's best runs and outcome counts.
type RunsCmd struct {
	Limit int `help:"Number of runs to list" default:"10"`
}

func (c *RunsCmd) Run(g *Globals) error {
	a, err := g.load()
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if !a.cfg.Database.Enabled {
		return errors.New("runs are only kept between invocations when database.enabled is true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store, pool, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	best, err := store.Best(ctx, c.Limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	outcomes, err := store.Outcomes(ctx)
	if err != nil {
		return fmt.Errorf("counting outcomes: %w", err)
	}
	return printRuns(os.Stdout, best, outcomes)
}

func printRuns(w io.Writer, best []ledger.Record, outcomes map[event.Outcome]int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tGOLD\tROUND\tOUTCOME\tDURATION\tENDED")
	for i, r := range best {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
			i+1, r.Gold, r.Round, r.Outcome,
			r.Duration().Round(time.Second), r.EndedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(tw)

	keys := make([]event.Outcome, 0, len(outcomes))
	for o := range outcomes {
		keys = append(keys, o)
	}
	slices.Sort(keys)
	for _, o := range keys {
		fmt.Fprintf(tw, "%s\t%d\n", o, outcomes[o])
	}
	return tw.Flush()
}
