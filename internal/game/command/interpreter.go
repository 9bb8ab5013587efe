package command

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/combat"
	"github.com/cory-johannsen/sunduk/internal/game/round"
	"github.com/cory-johannsen/sunduk/internal/game/session"
)

var (
	// ErrUnknownCommand is returned for input no command or alias matches.
	ErrUnknownCommand = errors.New("command: unknown command")
	// ErrUsage is returned when a command gets the wrong arguments.
	ErrUsage = errors.New("command: wrong arguments")
)

// Result is what the console shows after a command.
type Result struct {
	// Message is a line of feedback, possibly empty.
	Message string
	// Board asks the console to redraw the table.
	Board bool
	// Quit ends the console loop.
	Quit bool
}

// Interpreter applies parsed console lines to a Session.
type Interpreter struct {
	reg    *Registry
	sess   *session.Session
	logger *zap.Logger
}

// NewInterpreter creates an Interpreter.
//
// Precondition: all arguments must be non-nil.
func NewInterpreter(reg *Registry, sess *session.Session, logger *zap.Logger) *Interpreter {
	return &Interpreter{reg: reg, sess: sess, logger: logger}
}

// Execute parses and runs one line.
//
// Postcondition: A blank line returns a zero Result and nil error.
func (in *Interpreter) Execute(line string) (Result, error) {
	p := Parse(line)
	if p.Command == "" {
		return Result{}, nil
	}
	cmd, ok := in.reg.Resolve(p.Command)
	if !ok {
		return Result{}, fmt.Errorf("%q: %w", p.Command, ErrUnknownCommand)
	}
	in.logger.Debug("console command", zap.String("command", cmd.Name), zap.Strings("args", p.Args))

	switch cmd.Handler {
	case HandlerLook:
		return Result{Board: true}, nil
	case HandlerHelp:
		return Result{Message: in.reg.HelpText()}, nil
	case HandlerQuit:
		return Result{Quit: true}, nil
	case HandlerSelect:
		return in.selectCard(cmd, p.Args)
	case HandlerAttack:
		return in.attack(cmd, p.Args)
	case HandlerMark:
		return in.mark(cmd, p.Args)
	case HandlerReroll:
		reps, err := in.sess.CommitReroll()
		if err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("Rerolled %d card(s).", len(reps)), Board: true}, nil
	case HandlerResurrect:
		return in.resurrect(cmd, p.Args)
	case HandlerNext:
		d, err := in.sess.AdvanceRound()
		if err != nil {
			return Result{}, err
		}
		return in.decision(d), nil
	case HandlerStart:
		return in.decision(in.sess.StartRun()), nil
	case HandlerTavern:
		if err := in.sess.EnterTavern(); err != nil {
			return Result{}, err
		}
		return Result{Message: "Welcome to the tavern.", Board: true}, nil
	case HandlerHire:
		hired, err := in.sess.HireHeroes()
		if err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("%d adventurers are for hire.", len(hired)), Board: true}, nil
	case HandlerFight:
		d, err := in.sess.Fight()
		if err != nil {
			return Result{}, err
		}
		return in.decision(d), nil
	case HandlerGiveUp:
		if err := in.sess.GiveUp(); err != nil {
			return Result{}, err
		}
		return Result{Message: "You retreat to the tavern.", Board: true}, nil
	case HandlerMenu:
		in.sess.GoToMainMenu()
		return Result{Message: "Main menu.", Board: true}, nil
	case HandlerPause:
		in.sess.Pause()
		return Result{Message: "Paused."}, nil
	case HandlerResume:
		in.sess.Resume()
		return Result{Board: true}, nil
	}
	return Result{}, fmt.Errorf("%q has no handler: %w", cmd.Name, ErrUnknownCommand)
}

func usage(cmd *Command) error {
	return fmt.Errorf("usage: %s %s: %w", cmd.Name, cmd.Usage, ErrUsage)
}

func (in *Interpreter) ref(arg string) (session.CardView, error) {
	r, err := ParseCardRef(arg)
	if err != nil {
		return session.CardView{}, err
	}
	return r.Resolve(in.sess.Snapshot())
}

func (in *Interpreter) selectCard(cmd *Command, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, usage(cmd)
	}
	c, err := in.ref(args[0])
	if err != nil {
		return Result{}, err
	}
	if err := in.sess.SelectCard(c.ID); err != nil {
		return Result{}, err
	}
	return Result{Board: true}, nil
}

func (in *Interpreter) attack(cmd *Command, args []string) (Result, error) {
	if len(args) != 2 {
		return Result{}, usage(cmd)
	}
	a, err := in.ref(args[0])
	if err != nil {
		return Result{}, err
	}
	t, err := in.ref(args[1])
	if err != nil {
		return Result{}, err
	}
	res, err := in.sess.Attack(a.ID, t.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: describeAttack(res), Board: true}, nil
}

func describeAttack(res combat.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s strikes %s", res.Attacker.Name(), res.Target.Name())
	if n := len(res.Destroyed); n > 1 {
		fmt.Fprintf(&b, ", destroying %d cards", n)
	}
	b.WriteString(".")
	if res.Gold > 0 {
		fmt.Fprintf(&b, " +%d gold.", res.Gold)
	}
	if res.DragonSlain {
		b.WriteString(" A dragon falls!")
	}
	if res.ResurrectionCredits > 0 {
		fmt.Fprintf(&b, " %d resurrection(s) available: resurrect <class>.", res.ResurrectionCredits)
	}
	return b.String()
}

func (in *Interpreter) mark(cmd *Command, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, usage(cmd)
	}
	c, err := in.ref(args[0])
	if err != nil {
		return Result{}, err
	}
	marked, err := in.sess.ToggleRerollSelection(c.ID)
	if err != nil {
		return Result{}, err
	}
	verb := "Unmarked"
	if marked {
		verb = "Marked"
	}
	return Result{Message: fmt.Sprintf("%s %s.", verb, c.Def.Name()), Board: true}, nil
}

func (in *Interpreter) resurrect(cmd *Command, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, usage(cmd)
	}
	c, err := card.ParseClass(args[0])
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	closed, err := in.sess.PickResurrectionClass(c)
	if err != nil {
		return Result{}, err
	}
	if closed {
		return Result{Message: "The fallen rise again.", Board: true}, nil
	}
	return Result{Message: fmt.Sprintf("%d resurrection(s) remaining.", in.sess.Snapshot().ResurrectionRemaining)}, nil
}

func (in *Interpreter) decision(d round.Decision) Result {
	v := in.sess.Snapshot()
	switch d.Action {
	case round.ActionEnteredDragonBattle:
		return Result{Message: "The dragons awaken!", Board: true}
	case round.ActionCleared:
		return Result{Message: fmt.Sprintf("Round %d is already clear (%s).", v.Round, d.Reason), Board: true}
	case round.ActionAttrition, round.ActionDragonDefeat, round.ActionDragonVictory:
		return Result{Board: true}
	}
	return Result{Message: fmt.Sprintf("Round %d begins.", v.Round), Board: true}
}
