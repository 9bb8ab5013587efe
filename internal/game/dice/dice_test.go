package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/sunduk/internal/game/dice"
)

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		n := rapid.IntRange(1, 100).Draw(rt, "n")
		a := dice.NewSeededSource(seed)
		b := dice.NewSeededSource(seed)
		for i := 0; i < 20; i++ {
			va, vb := a.Intn(n), b.Intn(n)
			if va != vb {
				rt.Fatalf("draw %d diverged: %d != %d", i, va, vb)
			}
			if va < 0 || va >= n {
				rt.Fatalf("draw %d out of range: %d", i, va)
			}
		}
	})
}

func TestSeededSource_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

func TestFixedSource_CyclesAndReduces(t *testing.T) {
	src := dice.NewFixedSource(1, 7, -1)
	assert.Equal(t, 1, src.Intn(5))
	assert.Equal(t, 2, src.Intn(5))
	assert.Equal(t, 4, src.Intn(5))
	assert.Equal(t, 1, src.Intn(5))

	assert.Equal(t, 0, dice.NewFixedSource().Intn(3))
}

func TestPick(t *testing.T) {
	items := []string{"a", "b", "c"}
	assert.Equal(t, "c", dice.Pick(dice.NewFixedSource(2), items))
}

func TestLoggedSource_LogsEachDraw(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := dice.NewLoggedSource(dice.NewFixedSource(3), zap.New(core))

	v := src.Intn(10)
	assert.Equal(t, 3, v)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.EqualValues(t, 10, fields["n"])
	assert.EqualValues(t, 3, fields["result"])
}

func TestNew_SelectsBySeed(t *testing.T) {
	a := dice.New(42, zap.NewNop())
	b := dice.New(42, zap.NewNop())
	assert.Equal(t, a.Intn(1000), b.Intn(1000))

	c := dice.New(0, zap.NewNop())
	v := c.Intn(4)
	assert.True(t, v >= 0 && v < 4)
}
