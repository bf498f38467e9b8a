package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"feeproof/internal/curve"
)

func TestChallengesAreDeterministic(t *testing.T) {
	seven := curve.ScalarFromUint64(7)
	p := curve.BaseMul(&seven)

	build := func() *Transcript {
		tr := New("test")
		tr.DomainSeparator("unit")
		tr.AppendU64("n", 256)
		tr.AppendPoint("P", &p)
		tr.AppendScalar("s", &seven)
		return tr
	}

	a, b := build(), build()
	ca := a.ChallengeScalar("c")
	cb := b.ChallengeScalar("c")
	require.True(t, ca.Equal(&cb))

	t.Run("chained challenges differ", func(t *testing.T) {
		next := a.ChallengeScalar("c")
		require.False(t, next.Equal(&ca))
	})

	t.Run("order matters", func(t *testing.T) {
		tr := New("test")
		tr.DomainSeparator("unit")
		tr.AppendPoint("P", &p)
		tr.AppendU64("n", 256)
		tr.AppendScalar("s", &seven)
		c := tr.ChallengeScalar("c")
		require.False(t, c.Equal(&ca))
	})

	t.Run("label matters", func(t *testing.T) {
		tr := build()
		c := tr.ChallengeScalar("d")
		require.False(t, c.Equal(&ca))
	})
}

func TestValidateAndAppendPoint(t *testing.T) {
	tr := New("test")
	var id curve.Point
	require.ErrorIs(t, tr.ValidateAndAppendPoint("Y", &id), ErrIdentityPoint)

	g := curve.Generator()
	require.NoError(t, tr.ValidateAndAppendPoint("Y", &g))
}
