// Package autoplay drives a Session without a player: a greedy bot and a
// parallel simulation harness built on it.
package autoplay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/game/state"
)

// ErrStepLimit is returned when a run does not finish within the step budget.
var ErrStepLimit = errors.New("autoplay: step limit reached")

// DefaultMaxSteps bounds a single run.
const DefaultMaxSteps = 2000

// Bot plays a Session greedily: it attacks with whichever adventurer wipes
// the most cards, opens chests while the party is large, drinks potions when
// someone has fallen, and rerolls enemies nobody in the party can sweep.
type Bot struct {
	sess     *session.Session
	src      dice.Source
	logger   *zap.Logger
	maxSteps int
}

// NewBot creates a Bot. maxSteps <= 0 means DefaultMaxSteps.
//
// Precondition: sess, src and logger must be non-nil.
func NewBot(sess *session.Session, src dice.Source, logger *zap.Logger, maxSteps int) *Bot {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Bot{sess: sess, src: src, logger: logger, maxSteps: maxSteps}
}

// PlayRun starts a run and plays it to the end.
//
// Postcondition: Returns the run's summary, ctx's error, or ErrStepLimit.
func (b *Bot) PlayRun(ctx context.Context) (event.RunSummary, error) {
	var (
		summary event.RunSummary
		done    bool
	)
	unsubscribe := b.sess.Subscribe(event.Funcs{RunEnded: func(s event.RunSummary) {
		summary, done = s, true
	}})
	defer unsubscribe()

	b.sess.StartRun()
	for step := 0; step < b.maxSteps; step++ {
		if done {
			return summary, nil
		}
		if err := ctx.Err(); err != nil {
			return event.RunSummary{}, err
		}
		if err := b.Step(); err != nil {
			return event.RunSummary{}, fmt.Errorf("step %d: %w", step, err)
		}
	}
	if done {
		return summary, nil
	}
	return event.RunSummary{}, ErrStepLimit
}

// Step issues one command chosen from the current snapshot.
func (b *Bot) Step() error {
	v := b.sess.Snapshot()
	switch {
	case v.ResurrectionOpen:
		_, err := b.sess.PickResurrectionClass(b.bestClass(v))
		return err
	case v.RerollActive:
		if _, err := b.sess.CommitReroll(); err != nil {
			// Nothing worth marking; back out by clicking the scroll again.
			return b.deselectScroll(v)
		}
		return nil
	case v.State == state.EnemyBattle:
		return b.enemyTurn(v)
	case v.State == state.DragonBattle:
		return b.dragonTurn(v)
	}
	return fmt.Errorf("unexpected state %s", v.State)
}

func (b *Bot) enemyTurn(v session.View) error {
	if !v.RoundCleared {
		if b.tryReroll(v) {
			return nil
		}
		att, tgt, ok := b.bestAttack(v, func(c session.CardView) bool { return c.Def.IsOrdinaryEnemy() })
		if !ok {
			return b.sess.GiveUp()
		}
		return b.strike(v, att, tgt)
	}

	fighters := b.fighters(v, nil)
	isPotion := func(c session.CardView) bool { return c.Def.IsOfType(card.DungeonPotion) }
	// A single potion only costs a fighter; two or more pay out resurrections.
	if len(v.Graveyard) > 0 && len(fighters) > 1 && count(v.Dungeon, isPotion) >= 2 {
		p, _ := first(v.Dungeon, isPotion)
		return b.strike(v, b.pick(fighters), p)
	}
	if len(fighters) > 3 {
		if ch, ok := first(v.Dungeon, func(c session.CardView) bool { return c.Def.IsOfType(card.DungeonChest) }); ok {
			return b.strike(v, b.pick(fighters), ch)
		}
	}
	_, err := b.sess.AdvanceRound()
	return err
}

func (b *Bot) dragonTurn(v session.View) error {
	used := make(map[card.Class]bool, len(v.DragonKills))
	for _, c := range v.DragonKills {
		used[c] = true
	}
	fighters := b.fighters(v, func(c session.CardView) bool { return !used[c.Def.Adventurer.Class] })
	dragon, ok := first(v.Dungeon, func(c session.CardView) bool { return c.Def.IsDragon() })
	if len(fighters) == 0 || !ok {
		b.logger.Debug("no legal dragon attack, giving up")
		return b.sess.GiveUp()
	}
	return b.strike(v, b.pick(fighters), dragon)
}

// strike attacks through the click path: select the adventurer, then click the target.
func (b *Bot) strike(v session.View, attacker, target session.CardView) error {
	if !attacker.Selected {
		if err := b.sess.SelectCard(attacker.ID); err != nil {
			return err
		}
	}
	return b.sess.SelectCard(target.ID)
}

// bestAttack picks the pairing that destroys the most cards; ties are broken at random.
func (b *Bot) bestAttack(v session.View, target func(session.CardView) bool) (session.CardView, session.CardView, bool) {
	type pair struct{ a, t session.CardView }
	var best []pair
	bestScore := 0
	for _, a := range b.fighters(v, nil) {
		for _, t := range v.Dungeon {
			if !target(t) {
				continue
			}
			score := 1
			if a.Def.Adventurer.Kills(t.Def.Dungeon.Type) {
				score = count(v.Dungeon, func(c session.CardView) bool { return c.Def.IsOfType(t.Def.Dungeon.Type) })
			}
			switch {
			case score > bestScore:
				best, bestScore = []pair{{a, t}}, score
			case score == bestScore:
				best = append(best, pair{a, t})
			}
		}
	}
	if len(best) == 0 {
		return session.CardView{}, session.CardView{}, false
	}
	p := dice.Pick(b.src, best)
	return p.a, p.t, true
}

// tryReroll marks every enemy no fighter sweeps and commits, if a scroll is at hand.
func (b *Bot) tryReroll(v session.View) bool {
	scroll, ok := first(v.Adventurers, func(c session.CardView) bool { return c.Def.IsScroll() })
	if !ok {
		return false
	}
	fighters := b.fighters(v, nil)
	var marks []session.CardView
	for _, t := range v.Dungeon {
		if !t.Def.IsOrdinaryEnemy() {
			continue
		}
		if _, sweeps := first(fighters, func(a session.CardView) bool { return a.Def.Adventurer.Kills(t.Def.Dungeon.Type) }); !sweeps {
			marks = append(marks, t)
		}
	}
	if len(marks) == 0 {
		return false
	}
	if err := b.sess.SelectCard(scroll.ID); err != nil {
		return false
	}
	for _, m := range marks {
		if _, err := b.sess.ToggleRerollSelection(m.ID); err != nil {
			b.logger.Debug("mark refused", zap.String("card", m.Def.ID), zap.Error(err))
		}
	}
	if _, err := b.sess.CommitReroll(); err != nil {
		_ = b.deselectScroll(b.sess.Snapshot())
		return false
	}
	b.logger.Debug("bot rerolled", zap.Int("marked", len(marks)))
	return true
}

func (b *Bot) deselectScroll(v session.View) error {
	for _, c := range v.Adventurers {
		if c.Selected && c.Def.IsScroll() {
			return b.sess.SelectCard(c.ID)
		}
	}
	return nil
}

// bestClass picks the class that sweeps the most cards now on the row, or a
// random class when none would.
func (b *Bot) bestClass(v session.View) card.Class {
	lib := b.sess.Library()
	var best []card.Class
	bestScore := -1
	for _, c := range card.AllClasses {
		if c == card.ClassScroll || !lib.Adventurers.HasClass(c) {
			continue
		}
		def, _ := lib.Adventurers.FirstOfClass(c)
		score := count(v.Dungeon, func(cv session.CardView) bool {
			return cv.Def.IsOrdinaryEnemy() && def.Adventurer.Kills(cv.Def.Dungeon.Type)
		})
		switch {
		case score > bestScore:
			best, bestScore = []card.Class{c}, score
		case score == bestScore:
			best = append(best, c)
		}
	}
	if len(best) == 0 {
		return card.ClassWarrior
	}
	return dice.Pick(b.src, best)
}

// fighters returns the non-scroll adventurers that pass keep (nil keeps all).
func (b *Bot) fighters(v session.View, keep func(session.CardView) bool) []session.CardView {
	var out []session.CardView
	for _, c := range v.Adventurers {
		if c.Def.IsScroll() || (keep != nil && !keep(c)) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (b *Bot) pick(cs []session.CardView) session.CardView { return dice.Pick(b.src, cs) }

func first(cs []session.CardView, pred func(session.CardView) bool) (session.CardView, bool) {
	for _, c := range cs {
		if pred(c) {
			return c, true
		}
	}
	return session.CardView{}, false
}

func count(cs []session.CardView, pred func(session.CardView) bool) int {
	n := 0
	for _, c := range cs {
		if pred(c) {
			n++
		}
	}
	return n
}
