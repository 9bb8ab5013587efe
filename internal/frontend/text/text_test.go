package text_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sunduk/internal/frontend/text"
	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/command"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/game/state"
)

// scriptIO feeds fixed input lines and records output.
type scriptIO struct {
	in      []string
	out     []string
	prompts int
	failOn  string
}

func (s *scriptIO) ReadLine() (string, error) {
	if len(s.in) == 0 {
		return "", io.EOF
	}
	l := s.in[0]
	s.in = s.in[1:]
	return l, nil
}

func (s *scriptIO) WriteLine(t string) error {
	if s.failOn != "" && strings.Contains(t, s.failOn) {
		return errors.New("connection reset")
	}
	s.out = append(s.out, t)
	return nil
}

func (s *scriptIO) WritePrompt(string) error {
	s.prompts++
	return nil
}

func (s *scriptIO) text() string { return strings.Join(s.out, "\n") }

// allWarriors deals seven warriors and a lone goblin on StartRun.
func allWarriors() *session.Session {
	return session.New(session.DefaultConfig(), card.MustBuiltin(), dice.NewFixedSource(0), zap.NewNop())
}

func newConsole(sess *session.Session, rw text.LineIO) *text.Console {
	return text.NewConsole(rw, sess, command.DefaultRegistry(), text.NewPalette(false), zap.NewNop())
}

func TestPalette(t *testing.T) {
	on := text.NewPalette(true)
	assert.Equal(t, "\033[31mdanger\033[0m", on.Paint(text.Red, "danger"))
	assert.Equal(t, "\033[32mgold: 42\033[0m", on.Paintf(text.Green, "gold: %d", 42))
	assert.Equal(t, "plain", on.Paint("", "plain"))

	off := text.NewPalette(false)
	assert.False(t, off.Enabled())
	assert.Equal(t, "danger", off.Paint(text.Red, "danger"))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "red normal bold", text.StripANSI("\033[31mred\033[0m normal \033[1m\033[32mbold\033[0m"))
	assert.Equal(t, "", text.StripANSI(""))
	assert.Equal(t, "broken \033[31", text.StripANSI("broken \033[31"))
}

// Property: stripping a painted string recovers the text.
func TestPropertyStripANSIInvertsPaint(t *testing.T) {
	styles := []string{text.Red, text.Green, text.BrightYellow, text.Bold, text.Dim, text.Reverse + text.Cyan}
	p := text.NewPalette(true)
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringMatching(`[a-zA-Z0-9 :!*]{0,50}`).Draw(rt, "text")
		style := rapid.SampledFrom(styles).Draw(rt, "style")
		if got := text.StripANSI(p.Paint(style, s)); got != s {
			rt.Fatalf("StripANSI(Paint(%q)) = %q", s, got)
		}
	})
}

func TestBoard_MainMenu(t *testing.T) {
	r := text.NewRenderer(text.NewPalette(false))
	out := r.Board(session.View{State: state.MainMenu, Gold: 4})
	assert.Equal(t, "=== Main Menu ===  Gold 4\nType 'start' for a new run or 'tavern' to hire heroes.", out)
}

func TestBoard_Battle(t *testing.T) {
	sess := allWarriors()
	sess.StartRun()
	v := sess.Snapshot()
	require.NoError(t, sess.SelectCard(v.Adventurers[1].ID))

	out := text.NewRenderer(text.NewPalette(false)).Board(sess.Snapshot())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "=== Enemy Battle ===  Round 1  Gold 0  Dragons 0", lines[0])
	assert.Equal(t, "Dungeon     d1:Goblin", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Party       a1:Warrior  a2:Warrior*  a3:Warrior"), lines[2])
	assert.True(t, strings.HasSuffix(lines[2], "a7:Warrior"), lines[2])
}

func TestBoard_MarksRerollAndResurrection(t *testing.T) {
	lib := card.MustBuiltin()
	goblin, err := lib.Lookup("goblin_basic")
	require.NoError(t, err)
	dragon, err := lib.Lookup("dragon_basic")
	require.NoError(t, err)

	v := session.View{
		State:        state.EnemyBattle,
		Round:        2,
		Dungeon:      []session.CardView{{ID: uuid.New(), Def: goblin, Marked: true}},
		Dragons:      []session.CardView{{ID: uuid.New(), Def: dragon}},
		RerollActive: true,
		DragonKills:  []card.Class{card.ClassMage},
	}
	out := text.NewRenderer(text.NewPalette(false)).Board(v)
	assert.Contains(t, out, "d1:Goblin!")
	assert.Contains(t, out, "g1:Dragon")
	assert.Contains(t, out, "Party       (empty)")
	assert.Contains(t, out, "Slayers     mage")
	assert.Contains(t, out, "Reroll: mark dungeon cards")

	v.ResurrectionOpen = true
	v.ResurrectionRemaining = 2
	out = text.NewRenderer(text.NewPalette(false)).Board(v)
	assert.Contains(t, out, "2 resurrection(s) pending")
	assert.NotContains(t, out, "Reroll:")
}

func TestSummary(t *testing.T) {
	r := text.NewRenderer(text.NewPalette(false))
	assert.Equal(t, "The dragons are slain! Reached round 6 with 21 gold.",
		r.Summary(event.RunSummary{Outcome: event.OutcomeDragonVictory, Round: 6, Gold: 21}))
	assert.Equal(t, "mystery Reached round 1 with 0 gold.",
		r.Summary(event.RunSummary{Outcome: "mystery", Round: 1}))
}

func TestPrompt(t *testing.T) {
	r := text.NewRenderer(text.NewPalette(false))
	assert.Equal(t, "> ", r.Prompt(session.View{State: state.Tavern}))
	assert.Equal(t, "[r3 7g]> ", r.Prompt(session.View{State: state.DragonBattle, Round: 3, Gold: 7}))
}

func TestConsole_PlaysARound(t *testing.T) {
	sess := allWarriors()
	rw := &scriptIO{in: []string{"start", "attack a1 d1", "next", "quit", "look"}}

	require.NoError(t, newConsole(sess, rw).Run(context.Background()))

	out := rw.text()
	assert.Equal(t, text.Banner, rw.out[0])
	assert.Contains(t, out, "Round 1 begins.")
	assert.Contains(t, out, "Warrior strikes Goblin.")
	assert.Contains(t, out, "Round cleared. Type 'next'")
	assert.Contains(t, out, "Round 2 begins.")
	assert.Equal(t, "Farewell.", rw.out[len(rw.out)-1])
	assert.Equal(t, []string{"look"}, rw.in, "input after quit is not read")
	assert.Equal(t, 4, rw.prompts)
	assert.Equal(t, 1, sess.Snapshot().Gold)
}

func TestConsole_ShowsErrors(t *testing.T) {
	rw := &scriptIO{in: []string{"dance", "start", "attack a1 d9", "resurrect bard"}}

	require.NoError(t, newConsole(allWarriors(), rw).Run(context.Background()))

	out := rw.text()
	assert.Contains(t, out, `"dance"`)
	assert.Contains(t, out, "no such card")
	assert.Contains(t, out, "Round 1 begins.")
	assert.Equal(t, 5, rw.prompts)
}

func TestConsole_ChestLockedToast(t *testing.T) {
	// Round two deals a goblin and a chest.
	sess := session.New(session.DefaultConfig(), card.MustBuiltin(), dice.NewFixedSource(0, 0, 0, 0, 0, 0, 0, 0, 0, 3), zap.NewNop())
	sess.StartRun()
	require.NoError(t, sess.SelectCard(sess.Snapshot().Adventurers[0].ID))
	require.NoError(t, sess.SelectCard(sess.Snapshot().Dungeon[0].ID))
	_, err := sess.AdvanceRound()
	require.NoError(t, err)

	rw := &scriptIO{in: []string{"attack a1 d2"}}
	require.NoError(t, newConsole(sess, rw).Run(context.Background()))
	assert.Contains(t, rw.text(), ">> "+session.ToastChestLocked)
}

func TestConsole_ReportsRunEnd(t *testing.T) {
	sess := allWarriors()
	rw := &scriptIO{in: []string{"start", "giveup"}}

	require.NoError(t, newConsole(sess, rw).Run(context.Background()))

	out := rw.text()
	assert.Contains(t, out, "You retreat to the tavern.")
	assert.Contains(t, out, "You gave up. Reached round 1 with 0 gold.")
	assert.Contains(t, out, "=== Tavern ===")
}

func TestConsole_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rw := &scriptIO{in: []string{"start"}}
	err := newConsole(allWarriors(), rw).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"start"}, rw.in)
}

func TestConsole_WriteErrorEndsLoop(t *testing.T) {
	rw := &scriptIO{in: []string{"start", "look"}, failOn: "begins"}
	err := newConsole(allWarriors(), rw).Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"look"}, rw.in)
}

func TestConsole_UnsubscribesOnExit(t *testing.T) {
	sess := allWarriors()
	rw := &scriptIO{}
	require.NoError(t, newConsole(sess, rw).Run(context.Background()))

	var toasts []string
	sess.Subscribe(event.Funcs{Toast: func(m string, _ time.Duration) { toasts = append(toasts, m) }})
	sess.Toast("hello")
	assert.Equal(t, []string{"hello"}, toasts)
	assert.Len(t, rw.out, 2, "only the banner and the first board")
}

func TestStreamIO(t *testing.T) {
	var out strings.Builder
	s := text.NewStreamIO(strings.NewReader("look\nquit\n"), &out)

	l, err := s.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "look", l)
	l, err = s.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "quit", l)
	_, err = s.ReadLine()
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, s.WritePrompt("> "))
	require.NoError(t, s.WriteLine("hi"))
	assert.Equal(t, "> hi\n", out.String())
}
