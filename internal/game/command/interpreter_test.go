package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/card"
	"github.com/cory-johannsen/sunduk/internal/game/dice"
	"github.com/cory-johannsen/sunduk/internal/game/session"
	"github.com/cory-johannsen/sunduk/internal/game/state"
	"github.com/cory-johannsen/sunduk/internal/game/table"
)

// newInterpreter deals seven warriors and one goblin on "start".
func newInterpreter(values ...int) (*Interpreter, *session.Session) {
	if len(values) == 0 {
		values = []int{0}
	}
	sess := session.New(session.DefaultConfig(), card.MustBuiltin(), dice.NewFixedSource(values...), zap.NewNop())
	return NewInterpreter(DefaultRegistry(), sess, zap.NewNop()), sess
}

func TestParseCardRef(t *testing.T) {
	r, err := ParseCardRef("d3")
	require.NoError(t, err)
	assert.Equal(t, CardRef{Zone: table.ZoneDungeon, Index: 2}, r)

	for _, bad := range []string{"", "a", "x1", "a0", "a-1", "dd"} {
		_, err := ParseCardRef(bad)
		assert.ErrorIs(t, err, ErrBadRef, "input %q", bad)
	}
}

func TestCardRef_ResolveOutOfRange(t *testing.T) {
	_, err := CardRef{Zone: table.ZoneAdventurers, Index: 0}.Resolve(session.View{})
	assert.ErrorIs(t, err, ErrBadRef)
}

func TestExecute_BlankAndUnknown(t *testing.T) {
	in, _ := newInterpreter()
	res, err := in.Execute("   ")
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	_, err = in.Execute("dance")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestExecute_StartAttackNext(t *testing.T) {
	in, sess := newInterpreter()

	res, err := in.Execute("start")
	require.NoError(t, err)
	assert.Equal(t, "Round 1 begins.", res.Message)
	assert.Equal(t, state.EnemyBattle, sess.State())

	res, err = in.Execute("attack a1 d1")
	require.NoError(t, err)
	assert.Equal(t, "Warrior strikes Goblin.", res.Message)
	assert.True(t, res.Board)

	res, err = in.Execute("next")
	require.NoError(t, err)
	assert.Equal(t, "Round 2 begins.", res.Message)
	assert.Equal(t, 1, sess.Snapshot().Gold)
}

func TestExecute_UsageErrors(t *testing.T) {
	in, _ := newInterpreter()
	in.Execute("start")

	_, err := in.Execute("attack a1")
	assert.ErrorIs(t, err, ErrUsage)
	_, err = in.Execute("resurrect wizard")
	assert.ErrorIs(t, err, ErrUsage)
	_, err = in.Execute("select z9")
	assert.ErrorIs(t, err, ErrBadRef)
}

func TestExecute_SelectAndMark(t *testing.T) {
	// scroll first, then warriors and a goblin.
	in, sess := newInterpreter(5, 0, 0, 0, 0, 0, 0, 0, 1)
	in.Execute("start")

	_, err := in.Execute("select a1")
	require.NoError(t, err)
	require.True(t, sess.Snapshot().RerollActive)

	res, err := in.Execute("mark d1")
	require.NoError(t, err)
	assert.Equal(t, "Marked Goblin.", res.Message)

	res, err = in.Execute("reroll")
	require.NoError(t, err)
	assert.Equal(t, "Rerolled 1 card(s).", res.Message)
}

func TestExecute_TavernFlow(t *testing.T) {
	in, sess := newInterpreter()
	_, err := in.Execute("tavern")
	require.NoError(t, err)
	res, err := in.Execute("hire")
	require.NoError(t, err)
	assert.Equal(t, "7 adventurers are for hire.", res.Message)

	_, err = in.Execute("fight")
	require.NoError(t, err)
	assert.Equal(t, state.EnemyBattle, sess.State())

	_, err = in.Execute("giveup")
	require.NoError(t, err)
	assert.Equal(t, state.Tavern, sess.State())
}

func TestExecute_Quit(t *testing.T) {
	in, _ := newInterpreter()
	res, err := in.Execute("q")
	require.NoError(t, err)
	assert.True(t, res.Quit)
}
