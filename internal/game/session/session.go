// Package session wires the rules engine together and exposes the commands a
// frontend issues.
package session

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/combat"
	"github.com/cory-johannsen/sunduk/internal/game/currency"
	"github.com/cory-johannsen/sunduk/internal/game/dealer"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/reroll"
	"github.com/cory-johannsen/sunduk/internal/game/resurrection"
	"github.com/cory-johannsen/sunduk/internal/game/round"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
	"github.com/cory-johannsen/sunduk/internal/game/tavern"
)

var (
	// ErrUnknownCard is returned for an instance id not on the table.
	ErrUnknownCard = errors.New("session: unknown card")
	// ErrNotSelectable is returned when clicking a card that has no action.
	ErrNotSelectable = errors.New("session: card cannot be selected")
	// ErrNoAttacker is returned when clicking a dungeon card with no fighter selected.
	ErrNoAttacker = errors.New("session: select an adventurer first")
	// ErrNotInBattle is returned by battle commands outside a battle.
	ErrNotInBattle = errors.New("session: no battle in progress")
	// ErrBattleInProgress is returned by Tavern commands during a battle.
	ErrBattleInProgress = errors.New("session: a battle is in progress")
	// ErrNotInTavern is returned by HireHeroes and Fight outside the Tavern.
	ErrNotInTavern = errors.New("session: not in the tavern")
	// ErrPaused is returned by every game command while paused.
	ErrPaused = errors.New("session: game is paused")
)

// Player-facing rejection toasts.
const (
	ToastChestLocked     = "The chest is locked while enemies remain"
	ToastDragonClassUsed = "That class has already slain a dragon"
)

// Config holds the session tuning values.
type Config struct {
	StartingAdventurers int
	HireCount           int
	DragonThreshold     int
	MaxDungeonCards     int
	ToastDuration       time.Duration
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	rc := round.DefaultConfig()
	return Config{
		StartingAdventurers: rc.StartingAdventurers,
		HireCount:           7,
		DragonThreshold:     rc.DragonThreshold,
		MaxDungeonCards:     rc.MaxDungeonCards,
		ToastDuration:       rc.ToastDuration,
	}
}

func (c Config) round() round.Config {
	return round.Config{
		StartingAdventurers: c.StartingAdventurers,
		DragonThreshold:     c.DragonThreshold,
		MaxDungeonCards:     c.MaxDungeonCards,
		ToastDuration:       c.ToastDuration,
	}
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// runInfo tracks the run in progress.
type runInfo struct {
	id        uuid.UUID
	startedAt time.Time
}

// Session owns one game: its table, counters, flows and subscribers.
// A Session is not safe for concurrent use; callers serialise commands.
// Independent Sessions share nothing but the read-only card library.
type Session struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	bus       *event.Bus
	machine   *state.Machine
	table     *table.Table
	graveyard *table.Graveyard
	gold      *currency.Gold
	dragons   *currency.DragonCounter
	dealer    *dealer.Dealer
	tracker   *combat.DragonKillTracker
	reroll    *reroll.Engine
	res       *resurrection.Flow
	rounds    *round.Controller
	combat    *combat.Resolver
	tavern    *tavern.Tavern

	selection SelectionState
	run       *runInfo
}

// New builds a Session in the MainMenu state.
//
// Precondition: lib, src and logger must be non-nil.
func New(cfg Config, lib *card.Library, src dice.Source, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		bus:       event.NewBus(),
		table:     table.New(),
		graveyard: table.NewGraveyard(),
		tracker:   combat.NewDragonKillTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.machine = state.NewMachine(s.bus.OnStateChanged, logger.Named("state"))
	s.gold = currency.NewGold(s.bus.OnGoldChanged)
	s.dragons = currency.NewDragonCounter(s.bus.OnDragonCountChanged)
	s.dealer = dealer.New(s.table, lib, src, s.dragons, logger.Named("dealer"))

	// The controller is built last; the flows reach it through this closure.
	reevaluate := func() { s.rounds.Reevaluate() }

	s.reroll = reroll.New(s.table, s.dealer, s.graveyard, reevaluate, logger.Named("reroll"))
	s.res = resurrection.New(s.graveyard, lib.Adventurers, s.table.Adventurers, s.dealer, reevaluate, logger.Named("resurrection"))
	s.rounds = round.New(round.Deps{
		Config:       cfg.round(),
		Machine:      s.machine,
		Table:        s.table,
		Dealer:       s.dealer,
		Gold:         s.gold,
		Tracker:      s.tracker,
		Resurrection: s.res,
		Reroll:       s.reroll,
		Listener:     s.bus,
		EndRun:       s.endRun,
		Logger:       logger.Named("round"),
	})
	s.combat = combat.NewResolver(combat.Deps{
		Table:        s.table,
		Graveyard:    s.graveyard,
		Gold:         s.gold,
		Tracker:      s.tracker,
		Rounds:       s.rounds,
		Reroll:       s.reroll,
		Resurrection: s.res,
		AfterCommit:  reevaluate,
		Logger:       logger.Named("combat"),
	})
	s.tavern = tavern.New(s.table, s.dealer, logger.Named("tavern"))

	s.machine.Change(state.MainMenu)
	return s
}

// Subscribe registers l for every notification and returns its unsubscribe func.
func (s *Session) Subscribe(l event.Listener) func() { return s.bus.Subscribe(l) }

// State returns the current game state.
func (s *Session) State() state.GameState { return s.machine.Current() }

// Library returns the card catalogs the session deals from.
func (s *Session) Library() *card.Library { return s.dealer.Library() }

// Toast broadcasts a message to every subscriber for the configured duration.
func (s *Session) Toast(message string) { s.bus.OnToast(message, s.cfg.ToastDuration) }

func (s *Session) beginRun() {
	s.run = &runInfo{id: uuid.New(), startedAt: s.now()}
	s.logger.Info("run started", zap.Stringer("run_id", s.run.id))
}

// endRun publishes the summary of the run in progress, if any.
func (s *Session) endRun(outcome event.Outcome) {
	s.deselect()
	if s.run == nil {
		return
	}
	summary := event.RunSummary{
		RunID:     s.run.id,
		Outcome:   outcome,
		Round:     s.rounds.CurrentRound(),
		Gold:      s.gold.Total(),
		StartedAt: s.run.startedAt,
		EndedAt:   s.now(),
	}
	s.run = nil
	s.logger.Info("run summary",
		zap.Stringer("run_id", summary.RunID),
		zap.String("outcome", string(outcome)),
		zap.Int("round", summary.Round),
		zap.Int("gold", summary.Gold),
	)
	s.bus.OnRunEnded(summary)
}

// abandon ends a run still in progress as abandoned.
func (s *Session) abandon() {
	if s.run != nil {
		s.endRun(event.OutcomeAbandoned)
	}
}

// resetRun tears down everything a run owns except the zones listed in keep.
func (s *Session) resetRun(keep ...*table.Zone) {
	s.deselect()
	s.reroll.Exit()
	s.res.Reset()
	for _, z := range s.table.Zones() {
		if !slices.Contains(keep, z) {
			z.Clear()
		}
	}
	s.graveyard.Clear()
	s.gold.Reset(0)
	s.dealer.SyncDragonCount()
	s.rounds.Reset()
}

