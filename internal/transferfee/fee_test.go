package transferfee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAmount(t *testing.T) {
	t.Run("narrow", func(t *testing.T) {
		lo, hi, err := SplitAmount(0x1234_5678_9abc, 16, 32)
		require.NoError(t, err)
		require.Equal(t, uint64(0x9abc), lo)
		require.Equal(t, uint64(0x1234_5678), hi)

		amount, ok := combineLimbs(lo, hi, 16)
		require.True(t, ok)
		require.Equal(t, uint64(0x1234_5678_9abc), amount)
	})

	t.Run("wide full range", func(t *testing.T) {
		lo, hi, err := SplitAmount(math.MaxUint64, 32, 32)
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint32), lo)
		require.Equal(t, uint64(math.MaxUint32), hi)
	})

	t.Run("largest narrow amount", func(t *testing.T) {
		lo, hi, err := SplitAmount(1<<48-1, 16, 32)
		require.NoError(t, err)
		require.Equal(t, uint64(1<<16-1), lo)
		require.Equal(t, uint64(1<<32-1), hi)
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := SplitAmount(1<<48, 16, 32)
		require.ErrorIs(t, err, ErrRange)
	})

	t.Run("invalid widths", func(t *testing.T) {
		_, _, err := SplitAmount(1, 0, 32)
		require.ErrorIs(t, err, ErrRange)
		_, _, err = SplitAmount(1, 40, 40)
		require.ErrorIs(t, err, ErrRange)
	})

	t.Run("combine overflow", func(t *testing.T) {
		_, ok := combineLimbs(0, 1<<48, 16)
		require.False(t, ok)
	})
}

func TestCalculateFee(t *testing.T) {
	cases := []struct {
		name      string
		amount    uint64
		rate      uint16
		fee       uint64
		deltaFee  uint64
		wantError error
	}{
		{name: "exact", amount: 100, rate: 400, fee: 4},
		{name: "zero amount", amount: 0, rate: 400},
		{name: "zero rate", amount: 1_000_000, rate: 0},
		{name: "round up", amount: 1, rate: 1, fee: 1, deltaFee: 9999},
		{name: "round up just above", amount: 10_001, rate: 1, fee: 2, deltaFee: 9999},
		{name: "full rate", amount: math.MaxUint64, rate: MaxFeeBasisPoints, fee: math.MaxUint64},
		{name: "overflow", amount: math.MaxUint64, rate: math.MaxUint16, wantError: ErrArithmeticOverflow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, deltaFee, err := CalculateFee(tc.amount, tc.rate)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.fee, fee)
			require.Equal(t, tc.deltaFee, deltaFee)
			require.Less(t, deltaFee, uint64(MaxFeeBasisPoints))
		})
	}
}

func TestClampFee(t *testing.T) {
	require.Equal(t, uint64(3), ClampFee(4, 3))
	require.Equal(t, uint64(3), ClampFee(3, 3))
	require.Equal(t, uint64(2), ClampFee(2, 3))
	require.Equal(t, uint64(0), ClampFee(math.MaxUint64, 0))
	require.Equal(t, uint64(math.MaxUint64-1), ClampFee(math.MaxUint64-1, math.MaxUint64))
}

func TestFeeParametersBytes(t *testing.T) {
	params := FeeParameters{FeeRateBasisPoints: 400, MaximumFee: 1<<40 + 3}
	b := params.Bytes()
	require.Equal(t, []byte{0x90, 0x01}, b[:2])

	decoded, err := FeeParametersFromBytes(b[:])
	require.NoError(t, err)
	require.Equal(t, params, decoded)

	_, err = FeeParametersFromBytes(b[:9])
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestVariant(t *testing.T) {
	require.Equal(t, 16, Narrow.LoBits())
	require.Equal(t, 32, Narrow.HiBits())
	require.Equal(t, uint64(1<<48-1), Narrow.MaxAmount())
	require.Equal(t, uint64(math.MaxUint64), Wide.MaxAmount())

	for _, v := range []Variant{Narrow, Wide} {
		total := 0
		for _, b := range v.rangeBitLengths() {
			total += b
		}
		require.Equal(t, 256, total, v.String())
	}

	v, err := ParseVariant(" Wide ")
	require.NoError(t, err)
	require.Equal(t, Wide, v)
	_, err = ParseVariant("medium")
	require.Error(t, err)
}
