package rangeproof

import (
	"testing"

	"github.com/stretchr/testify/require"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
	"feeproof/internal/transcript"
)

type committed struct {
	commitments []*encryption.Commitment
	openings    []*encryption.Opening
}

func commitAll(t *testing.T, amounts []uint64) committed {
	t.Helper()
	var out committed
	for _, v := range amounts {
		c, o, err := encryption.Commit(v)
		require.NoError(t, err)
		out.commitments = append(out.commitments, &c)
		out.openings = append(out.openings, &o)
	}
	return out
}

func TestRangeProof(t *testing.T) {
	cases := []struct {
		name    string
		amounts []uint64
		bits    []int
	}{
		{"single 64-bit", []uint64{55}, []int{64}},
		{"single 8-bit max", []uint64{255}, []int{8}},
		{"zero values", []uint64{0, 0}, []int{32, 32}},
		{"uneven widths", []uint64{^uint64(0), 1<<32 - 1, 7}, []int{64, 32, 32}},
		{"transfer layout", []uint64{1 << 40, 1<<16 - 1, 0, 1<<32 - 1, 9999, 1}, []int{64, 16, 16, 32, 64, 64}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := commitAll(t, tc.amounts)
			proof, err := New(tc.amounts, tc.bits, c.openings, transcript.New("test"))
			require.NoError(t, err)
			require.NoError(t, proof.Verify(c.commitments, tc.bits, transcript.New("test")))
		})
	}
}

func TestRangeProofRejects(t *testing.T) {
	amounts := []uint64{1000, 3}
	bits := []int{32, 32}
	c := commitAll(t, amounts)
	proof, err := New(amounts, bits, c.openings, transcript.New("test"))
	require.NoError(t, err)

	t.Run("other commitment", func(t *testing.T) {
		other := commitAll(t, []uint64{1000, 4})
		err := proof.Verify(other.commitments, bits, transcript.New("test"))
		require.ErrorIs(t, err, ErrVerification)
	})

	t.Run("other transcript", func(t *testing.T) {
		err := proof.Verify(c.commitments, bits, transcript.New("other"))
		require.ErrorIs(t, err, ErrVerification)
	})

	t.Run("tampered t_x", func(t *testing.T) {
		tampered := *proof
		one := curve.ScalarFromUint64(1)
		tampered.TX.Add(&tampered.TX, &one)
		err := tampered.Verify(c.commitments, bits, transcript.New("test"))
		require.ErrorIs(t, err, ErrVerification)
	})

	t.Run("identity commitment", func(t *testing.T) {
		var id encryption.Commitment
		err := proof.Verify([]*encryption.Commitment{c.commitments[0], &id}, bits, transcript.New("test"))
		require.ErrorIs(t, err, ErrVerification)
	})

	t.Run("wrong round count", func(t *testing.T) {
		short := *proof
		short.IPP.L = short.IPP.L[1:]
		short.IPP.R = short.IPP.R[1:]
		err := short.Verify(c.commitments, bits, transcript.New("test"))
		require.ErrorIs(t, err, ErrVerification)
	})
}

func TestRangeProofProverErrors(t *testing.T) {
	c := commitAll(t, []uint64{1 << 16, 0})

	_, err := New([]uint64{1 << 16, 0}, []int{16, 16}, c.openings, transcript.New("test"))
	require.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = New([]uint64{1, 0}, []int{16, 8}, c.openings, transcript.New("test"))
	require.ErrorIs(t, err, ErrInvalidBitLength)

	_, err = New([]uint64{1}, []int{16, 16}, c.openings, transcript.New("test"))
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = New([]uint64{1, 0}, []int{0, 32}, c.openings, transcript.New("test"))
	require.ErrorIs(t, err, ErrInvalidBitLength)
}

func TestRangeProofBytes(t *testing.T) {
	amounts := []uint64{12, 1<<16 - 1, 0, 9, 10000, 0}
	bits := []int{64, 16, 16, 32, 64, 64}
	c := commitAll(t, amounts)
	proof, err := New(amounts, bits, c.openings, transcript.New("test"))
	require.NoError(t, err)

	b := proof.Bytes()
	require.Len(t, b, Size(256))
	require.Equal(t, 800, Size(256))

	decoded, err := FromBytes(b)
	require.NoError(t, err)
	require.Equal(t, proof, decoded)
	require.NoError(t, decoded.Verify(c.commitments, bits, transcript.New("test")))

	_, err = FromBytes(b[:len(b)-1])
	require.ErrorIs(t, err, curve.ErrInvalidEncoding)
}
