// Package combat resolves an adventurer's attack on a dungeon card.
package combat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/currency"
	"github.com/cory-johannsen/sunduk/internal/game/reroll"
	"github.com/cory-johannsen/sunduk/internal/game/resurrection"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

var (
	// ErrNotInBattle is returned outside EnemyBattle and DragonBattle.
	ErrNotInBattle = errors.New("combat: no battle in progress")
	// ErrUnknownCard is returned for an id not on the table.
	ErrUnknownCard = errors.New("combat: unknown card")
	// ErrNotAdventurer is returned when the attacker is not an adventurer in play.
	ErrNotAdventurer = errors.New("combat: attacker is not an adventurer in play")
	// ErrScrollCannotAttack is returned when a Scroll is used as the attacker.
	ErrScrollCannotAttack = errors.New("combat: scrolls cannot attack")
	// ErrTargetNotAttackable is returned when the target is not in the dungeon row.
	ErrTargetNotAttackable = errors.New("combat: target is not in the dungeon row")
	// ErrDragonClassUsed is returned when the attacker's class already slew a dragon this battle.
	ErrDragonClassUsed = errors.New("combat: this class has already slain a dragon")
	// ErrChestLocked is returned when attacking a chest while enemies remain.
	ErrChestLocked = errors.New("combat: chest is locked while enemies remain")
)

// RoundState exposes the round and game state the resolver reads.
type RoundState interface {
	CurrentRound() int
	State() state.GameState
}

// RerollMode reports whether reroll mode is on.
type RerollMode interface {
	Active() bool
}

// Resurrection is the flow a potion opens.
type Resurrection interface {
	IsOpen() bool
	Open(n int) error
}

// Result describes a resolved attack.
type Result struct {
	Attacker *card.Definition
	Target   *card.Definition
	// Destroyed lists every dungeon card removed, target first.
	Destroyed []*card.Definition
	Gold      int
	// PotionsConsumed counts potions destroyed by this attack, target included.
	PotionsConsumed int
	// ResurrectionCredits is the credit count the flow was opened with, or 0.
	ResurrectionCredits int
	DragonSlain         bool
}

// Resolver applies attacks. Every precondition is checked before any mutation.
type Resolver struct {
	table       *table.Table
	graveyard   *table.Graveyard
	gold        *currency.Gold
	tracker     *DragonKillTracker
	rounds      RoundState
	reroll      RerollMode
	res         Resurrection
	afterCommit func()
	logger      *zap.Logger
}

// Deps carries the Resolver's collaborators.
type Deps struct {
	Table        *table.Table
	Graveyard    *table.Graveyard
	Gold         *currency.Gold
	Tracker      *DragonKillTracker
	Rounds       RoundState
	Reroll       RerollMode
	Resurrection Resurrection
	// AfterCommit runs once every mutation of a successful attack is applied.
	AfterCommit func()
	Logger      *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: every Deps field except AfterCommit must be non-nil.
func NewResolver(d Deps) *Resolver {
	return &Resolver{
		table:       d.Table,
		graveyard:   d.Graveyard,
		gold:        d.Gold,
		tracker:     d.Tracker,
		rounds:      d.Rounds,
		reroll:      d.Reroll,
		res:         d.Resurrection,
		afterCommit: d.AfterCommit,
		logger:      d.Logger,
	}
}

// Check validates an attack without applying it.
//
// Postcondition: Returns the attacker and target instances, or a sentinel error.
func (r *Resolver) Check(attackerID, targetID uuid.UUID) (*table.Instance, *table.Instance, error) {
	if r.res.IsOpen() {
		return nil, nil, resurrection.ErrInProgress
	}
	if r.reroll.Active() {
		return nil, nil, reroll.ErrActive
	}
	st := r.rounds.State()
	if !st.IsBattle() {
		return nil, nil, ErrNotInBattle
	}

	attacker, ok := r.table.Adventurers.Find(attackerID)
	if !ok {
		if _, exists := r.table.Find(attackerID); exists {
			return nil, nil, ErrNotAdventurer
		}
		return nil, nil, fmt.Errorf("attacker %s: %w", attackerID, ErrUnknownCard)
	}
	if attacker.Def.IsScroll() {
		return nil, nil, ErrScrollCannotAttack
	}

	target, ok := r.table.Dungeon.Find(targetID)
	if !ok {
		if _, exists := r.table.Find(targetID); exists {
			return nil, nil, ErrTargetNotAttackable
		}
		return nil, nil, fmt.Errorf("target %s: %w", targetID, ErrUnknownCard)
	}

	if target.Def.IsDragon() && st == state.DragonBattle && r.tracker.Used(attacker.Def.Adventurer.Class) {
		return nil, nil, ErrDragonClassUsed
	}
	if target.Def.IsOfType(card.DungeonChest) && r.table.Dungeon.Any(isOrdinaryEnemy) {
		return nil, nil, ErrChestLocked
	}
	return attacker, target, nil
}

func isOrdinaryEnemy(inst *table.Instance) bool { return inst.Def.IsOrdinaryEnemy() }

func isPotion(inst *table.Instance) bool { return inst.Def.IsOfType(card.DungeonPotion) }

// Attack resolves attackerID striking targetID.
//
// Postcondition: On error nothing changes. On success the attacker is buried,
// the target (and every card its class wipes) is destroyed, and AfterCommit
// has run.
func (r *Resolver) Attack(attackerID, targetID uuid.UUID) (Result, error) {
	attacker, target, err := r.Check(attackerID, targetID)
	if err != nil {
		return Result{}, err
	}

	st := r.rounds.State()
	adv := attacker.Def.Adventurer
	tType := target.Def.Dungeon.Type
	res := Result{Attacker: attacker.Def, Target: target.Def}

	potionSweep := false
	switch {
	case tType == card.DungeonPotion:
		r.destroy(target, &res)
		potionSweep = r.table.Dungeon.Any(isPotion)
		if potionSweep {
			for _, inst := range r.table.Dungeon.Cards() {
				if isPotion(inst) {
					r.destroy(inst, &res)
				}
			}
		}
	case tType == card.DungeonChest:
		res.Gold = currency.ChestReward(r.rounds.CurrentRound())
		r.gold.Add(res.Gold)
		r.destroy(target, &res)
	case adv.Kills(tType):
		r.destroy(target, &res)
		for _, inst := range r.table.Dungeon.Cards() {
			if inst.Def.IsOfType(tType) {
				r.destroy(inst, &res)
			}
		}
	default:
		r.destroy(target, &res)
	}

	r.graveyard.Bury(attacker.Def)
	r.table.Destroy(attacker)

	if tType == card.DungeonDragon && st == state.DragonBattle {
		r.tracker.Record(adv.Class)
		res.DragonSlain = true
	}

	// A lone potion is only a kill; the flow needs a second potion on the row.
	if potionSweep {
		credits := min(res.PotionsConsumed, r.graveyard.Len())
		if credits >= 1 {
			if err := r.res.Open(credits); err != nil {
				r.logger.Warn("resurrection not opened", zap.Int("credits", credits), zap.Error(err))
			} else {
				res.ResurrectionCredits = credits
			}
		}
	}

	r.logger.Info("attack resolved",
		zap.String("attacker", attacker.Def.ID),
		zap.String("target", target.Def.ID),
		zap.Int("destroyed", len(res.Destroyed)),
		zap.Int("gold", res.Gold),
		zap.Int("resurrection_credits", res.ResurrectionCredits),
	)

	if r.afterCommit != nil {
		r.afterCommit()
	}
	return res, nil
}

func (r *Resolver) destroy(inst *table.Instance, res *Result) {
	if z, _ := r.table.Destroy(inst); z == nil {
		return
	}
	res.Destroyed = append(res.Destroyed, inst.Def)
	if inst.Def.IsOfType(card.DungeonPotion) {
		res.PotionsConsumed++
	}
}
