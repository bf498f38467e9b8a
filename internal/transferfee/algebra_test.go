package transferfee

import (
	"testing"

	"github.com/stretchr/testify/require"

	"feeproof/internal/encryption"
)

func commit(t *testing.T, v uint64) (encryption.Commitment, encryption.Opening) {
	t.Helper()
	c, o, err := encryption.Commit(v)
	require.NoError(t, err)
	return c, o
}

func TestCombineLoHi(t *testing.T) {
	const amount = 0x0000_beef_cafe_0042
	for _, v := range []Variant{Narrow, Wide} {
		t.Run(v.String(), func(t *testing.T) {
			lo, hi, err := SplitAmount(amount, v.LoBits(), v.HiBits())
			require.NoError(t, err)
			loC, loO := commit(t, lo)
			hiC, hiO := commit(t, hi)

			combined := CombineLoHiCommitments(loC, hiC, v.LoBits())
			opening := CombineLoHiOpenings(loO, hiO, v.LoBits())
			require.True(t, combined.Equal(encryption.CommitWithOpening(amount, &opening)))
		})
	}
}

func TestCombineLoHiCiphertexts(t *testing.T) {
	kp, err := encryption.NewKeypair()
	require.NoError(t, err)

	loCt, _, err := kp.Public.Encrypt(0x1234)
	require.NoError(t, err)
	hiCt, _, err := kp.Public.Encrypt(0x56)
	require.NoError(t, err)

	combined := CombineLoHiCiphertexts(loCt, hiCt, 16)
	got, ok := kp.Secret.DecryptU32(&combined)
	require.True(t, ok)
	require.Equal(t, uint64(0x56_1234), got)
}

func TestDeltaCommitment(t *testing.T) {
	const (
		amount = 123_456
		rate   = 37
	)
	fee, deltaFee, err := CalculateFee(amount, rate)
	require.NoError(t, err)

	lo, hi, err := SplitAmount(amount, 16, 32)
	require.NoError(t, err)
	loC, loO := commit(t, lo)
	hiC, hiO := commit(t, hi)
	feeC, feeO := commit(t, fee)

	delta := DeltaCommitment(loC, hiC, feeC, rate, 16)
	opening := DeltaOpening(loO, hiO, feeO, rate, 16)
	require.True(t, delta.Equal(encryption.CommitWithOpening(deltaFee, &opening)))

	wrong := encryption.CommitWithOpening(deltaFee+1, &opening)
	require.False(t, delta.Equal(wrong))
}
