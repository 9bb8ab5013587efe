// Package round drives round progression: dealing, clearance, the dragon
// battle overlay, and the end of a run.
package round

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/combat"
	"github.com/cory-johannsen/sunduk/internal/game/currency"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/resurrection"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

var (
	// ErrRoundNotCleared is returned by AdvanceRound before the round is cleared.
	ErrRoundNotCleared = errors.New("round: round is not cleared")
	// ErrNotInBattle is returned by GiveUp outside a battle.
	ErrNotInBattle = errors.New("round: no battle in progress")
)

// Toast messages shown when a run ends.
const (
	ToastVictory = "You won!"
	ToastDefeat  = "You lost"
)

// Clearance reasons reported with OnRoundCleared.
const (
	ReasonEmpty           = "empty"
	ReasonSinglePotion    = "single_potion"
	ReasonRoundOnePotions = "round_one_potions"
	ReasonChest           = "chest"
	ReasonNoEnemies       = "no_enemies"
)

// Action is what a re-evaluation did.
type Action int

const (
	// ActionSkipped: not in a battle, or a nested call was dropped.
	ActionSkipped Action = iota
	// ActionSuspended: the resurrection flow is open.
	ActionSuspended
	ActionEnteredDragonBattle
	ActionInProgress
	ActionCleared
	ActionAttrition
	ActionDragonVictory
	ActionDragonDefeat
)

var actionNames = [...]string{
	ActionSkipped:             "skipped",
	ActionSuspended:           "suspended",
	ActionEnteredDragonBattle: "entered_dragon_battle",
	ActionInProgress:          "in_progress",
	ActionCleared:             "cleared",
	ActionAttrition:           "attrition",
	ActionDragonVictory:       "dragon_victory",
	ActionDragonDefeat:        "dragon_defeat",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Decision is the result of Reevaluate.
type Decision struct {
	Action Action
	// Reason is set for ActionCleared.
	Reason string
}

// Dealer is the subset of the dealer the controller uses.
type Dealer interface {
	DealAdventurers(count int, clear bool) []*table.Instance
	DealDungeon(count int, clear bool) []*table.Instance
	SyncDragonCount()
}

// ResurrectionState reports whether the resurrection flow is open.
type ResurrectionState interface {
	IsOpen() bool
}

// RerollMode is turned off when the dragon battle starts.
type RerollMode interface {
	Exit()
}

// Config holds the round tuning values.
type Config struct {
	StartingAdventurers int
	DragonThreshold     int
	MaxDungeonCards     int
	ToastDuration       time.Duration
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		StartingAdventurers: 7,
		DragonThreshold:     3,
		MaxDungeonCards:     7,
		ToastDuration:       3 * time.Second,
	}
}

// Deps carries the Controller's collaborators.
type Deps struct {
	Config       Config
	Machine      *state.Machine
	Table        *table.Table
	Dealer       Dealer
	Gold         *currency.Gold
	Tracker      *combat.DragonKillTracker
	Resurrection ResurrectionState
	Reroll       RerollMode
	Listener     event.Listener
	// EndRun is told how the run ended each time the controller sends the
	// game back to the Tavern.
	EndRun func(outcome event.Outcome)
	Logger *zap.Logger
}

// Controller owns the round counter and the clearance flag.
// A Controller is not safe for concurrent use.
type Controller struct {
	cfg      Config
	machine  *state.Machine
	table    *table.Table
	dealer   Dealer
	gold     *currency.Gold
	tracker  *combat.DragonKillTracker
	res      ResurrectionState
	reroll   RerollMode
	listener event.Listener
	endRun   func(event.Outcome)
	logger   *zap.Logger

	round      int
	cleared    bool
	announced  bool
	evaluating bool
}

// New creates a Controller at round 1.
//
// Precondition: every Deps field except EndRun must be non-nil.
func New(d Deps) *Controller {
	return &Controller{
		cfg:      d.Config,
		machine:  d.Machine,
		table:    d.Table,
		dealer:   d.Dealer,
		gold:     d.Gold,
		tracker:  d.Tracker,
		res:      d.Resurrection,
		reroll:   d.Reroll,
		listener: d.Listener,
		endRun:   d.EndRun,
		logger:   d.Logger,
		round:    1,
	}
}

// CurrentRound returns the round number, always >= 1.
func (c *Controller) CurrentRound() int { return c.round }

// RoundCleared reports whether the current round may be advanced.
func (c *Controller) RoundCleared() bool { return c.cleared }

// State returns the game state.
func (c *Controller) State() state.GameState { return c.machine.Current() }

// DungeonCountForRound returns how many dungeon cards round n deals:
// clamp(n, 1, limit).
func DungeonCountForRound(n, limit int) int {
	return max(1, min(n, limit))
}

// StartRound begins round n (floored at 1). It enters EnemyBattle unless a
// battle is already running, optionally deals a fresh starting hand, deals
// the round's dungeon row, and re-evaluates.
func (c *Controller) StartRound(n int, dealAdventurers bool) Decision {
	c.round = max(1, n)
	if !c.machine.Current().IsBattle() {
		c.machine.Change(state.EnemyBattle)
	}
	if dealAdventurers {
		c.dealer.DealAdventurers(c.cfg.StartingAdventurers, true)
	}
	c.dealer.DealDungeon(DungeonCountForRound(c.round, c.cfg.MaxDungeonCards), true)
	c.cleared = false
	c.announced = false

	c.logger.Info("round started",
		zap.Int("round", c.round),
		zap.Int("dungeon", c.table.Dungeon.Len()),
		zap.Int("dragons", c.table.Dragons.Len()),
	)
	c.listener.OnRoundStarted(c.round)
	return c.Reevaluate()
}

// AdvanceRound pays the round's gold and starts the next round.
//
// Precondition: EnemyBattle with the round cleared and no resurrection pending.
// Postcondition: Gold grows by the pre-call round number.
func (c *Controller) AdvanceRound() (Decision, error) {
	if c.res.IsOpen() {
		return Decision{}, resurrection.ErrInProgress
	}
	if c.machine.Current() != state.EnemyBattle || !c.cleared {
		return Decision{}, ErrRoundNotCleared
	}
	c.gold.Add(c.round)
	return c.StartRound(c.round+1, false), nil
}

// GiveUp abandons the current battle and returns to the Tavern.
//
// Precondition: a battle is in progress and no resurrection is pending.
func (c *Controller) GiveUp() error {
	if c.res.IsOpen() {
		return resurrection.ErrInProgress
	}
	if !c.machine.Current().IsBattle() {
		return ErrNotInBattle
	}
	if c.machine.Current() == state.DragonBattle {
		c.listener.OnToast(ToastDefeat, c.cfg.ToastDuration)
	}
	c.finish(event.OutcomeGaveUp)
	return nil
}

// Reevaluate inspects the table after a mutation and applies whatever
// transition it calls for. It is idempotent and drops nested calls.
func (c *Controller) Reevaluate() Decision {
	if c.evaluating {
		c.logger.Debug("nested re-evaluation dropped")
		return Decision{Action: ActionSkipped}
	}
	c.evaluating = true
	defer func() { c.evaluating = false }()

	st := c.machine.Current()
	if !st.IsBattle() {
		return Decision{Action: ActionSkipped}
	}

	if st != state.DragonBattle && c.table.Dragons.Len() >= c.cfg.DragonThreshold {
		c.enterDragonBattle()
		if !c.table.Adventurers.Any(isFighter) {
			return c.evaluateDragonBattle()
		}
		return Decision{Action: ActionEnteredDragonBattle}
	}

	if c.res.IsOpen() {
		return Decision{Action: ActionSuspended}
	}

	if st == state.DragonBattle {
		return c.evaluateDragonBattle()
	}

	if c.table.Adventurers.Len() == 0 {
		c.logger.Info("adventurers exhausted", zap.Int("round", c.round))
		c.finish(event.OutcomeAttrition)
		return Decision{Action: ActionAttrition}
	}

	if c.table.Dungeon.Any(isOrdinaryEnemy) {
		c.cleared = false
		return Decision{Action: ActionInProgress}
	}

	reason := c.clearanceReason()
	c.cleared = true
	if !c.announced {
		c.announced = true
		c.logger.Info("round cleared", zap.Int("round", c.round), zap.String("reason", reason))
		c.listener.OnRoundCleared(c.round, reason)
	}
	return Decision{Action: ActionCleared, Reason: reason}
}

func isOrdinaryEnemy(inst *table.Instance) bool { return inst.Def.IsOrdinaryEnemy() }

func isDragon(inst *table.Instance) bool { return inst.Def.IsDragon() }

func isFighter(inst *table.Instance) bool { return !inst.Def.IsScroll() }

func isPotionLike(inst *table.Instance) bool {
	return inst.Def.IsOfType(card.DungeonPotion) || inst.Def.Dungeon.InstantEffect
}

// clearanceReason names why a row without active enemies counts as cleared.
func (c *Controller) clearanceReason() string {
	row := c.table.Dungeon
	if row.Len() == 0 {
		return ReasonEmpty
	}
	potions := row.Count(isPotionLike)
	if potions == row.Len() {
		if potions == 1 {
			return ReasonSinglePotion
		}
		if c.round == 1 {
			return ReasonRoundOnePotions
		}
	}
	if row.Any(func(i *table.Instance) bool { return i.Def.IsOfType(card.DungeonChest) }) {
		return ReasonChest
	}
	return ReasonNoEnemies
}

func (c *Controller) enterDragonBattle() {
	c.table.Dungeon.Clear()
	for _, d := range c.table.Dragons.Cards() {
		c.table.Dragons.Remove(d)
		if err := c.table.Dungeon.Append(d); err != nil {
			c.logger.Warn("dragon move failed", zap.String("card", d.Def.ID), zap.Error(err))
		}
	}
	c.tracker.Clear()
	c.cleared = false
	c.reroll.Exit()
	c.dealer.SyncDragonCount()
	c.logger.Info("dragon battle entered",
		zap.Int("round", c.round),
		zap.Int("dragons", c.table.Dungeon.Count(isDragon)),
	)
	c.machine.Change(state.DragonBattle)
}

func (c *Controller) evaluateDragonBattle() Decision {
	if !c.table.Dungeon.Any(isDragon) {
		c.listener.OnToast(ToastVictory, c.cfg.ToastDuration)
		c.finish(event.OutcomeDragonVictory)
		return Decision{Action: ActionDragonVictory}
	}
	if !c.table.Adventurers.Any(isFighter) {
		c.listener.OnToast(ToastDefeat, c.cfg.ToastDuration)
		c.finish(event.OutcomeDragonDefeat)
		return Decision{Action: ActionDragonDefeat}
	}
	return Decision{Action: ActionInProgress}
}

// finish leaves the battle for the Tavern and reports the outcome.
func (c *Controller) finish(outcome event.Outcome) {
	c.cleared = false
	c.tracker.Clear()
	c.reroll.Exit()
	c.logger.Info("run ended", zap.String("outcome", string(outcome)), zap.Int("round", c.round))
	c.machine.Change(state.Tavern)
	if c.endRun != nil {
		c.endRun(outcome)
	}
}

// Reset returns the controller to round 1 with nothing cleared.
func (c *Controller) Reset() {
	c.round = 1
	c.cleared = false
	c.announced = false
	c.tracker.Clear()
}
