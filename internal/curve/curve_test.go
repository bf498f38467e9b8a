package curve

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointEncoding(t *testing.T) {
	s, err := RandomScalar()
	require.NoError(t, err)
	p := BaseMul(&s)

	t.Run("round trip", func(t *testing.T) {
		enc := EncodePoint(&p)
		got, err := DecodePoint(enc[:])
		require.NoError(t, err)
		require.True(t, got.Equal(&p))
	})

	t.Run("identity round trip", func(t *testing.T) {
		var id Point
		enc := EncodePoint(&id)
		got, err := DecodePoint(enc[:])
		require.NoError(t, err)
		require.True(t, got.IsInfinity())
	})

	t.Run("wrong length", func(t *testing.T) {
		enc := EncodePoint(&p)
		_, err := DecodePoint(enc[:31])
		require.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("zero buffer is not a point", func(t *testing.T) {
		_, err := DecodePoint(make([]byte, PointSize))
		require.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestScalarEncoding(t *testing.T) {
	s, err := RandomScalar()
	require.NoError(t, err)
	enc := EncodeScalar(&s)
	got, err := DecodeScalar(enc[:])
	require.NoError(t, err)
	require.True(t, got.Equal(&s))

	_, err = DecodeScalar(bytes.Repeat([]byte{0xff}, ScalarSize))
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestGroupHelpers(t *testing.T) {
	a := ScalarFromUint64(7)
	b := ScalarFromUint64(5)
	g := Generator()
	h := HashToPoint([]byte("helper test"), []byte("feeproof-test"))

	lhs := LinearCombination2(&g, &a, &h, &b)
	rhs, err := MultiScalarMul([]Point{g, h}, []Scalar{a, b})
	require.NoError(t, err)
	require.True(t, lhs.Equal(&rhs))

	ga := BaseMul(&a)
	gb := BaseMul(&b)
	diff := Sub(&ga, &gb)
	two := ScalarFromUint64(2)
	require.True(t, diff.Equal(ptr(BaseMul(&two))))

	sum := Add(&ga, &gb)
	twelve := ScalarFromUint64(12)
	require.True(t, sum.Equal(ptr(BaseMul(&twelve))))

	_, err = MultiScalarMul([]Point{g}, nil)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSelect(t *testing.T) {
	require.Equal(t, uint64(3), SelectUint64(1, 3, 9))
	require.Equal(t, uint64(9), SelectUint64(0, 3, 9))

	a := ScalarFromUint64(1)
	b := ScalarFromUint64(2)
	sa := SelectScalar(1, &a, &b)
	sb := SelectScalar(0, &a, &b)
	require.True(t, sa.Equal(&a))
	require.True(t, sb.Equal(&b))

	pa := BaseMul(&a)
	pb := BaseMul(&b)
	got := SelectPoint(0, &pa, &pb)
	require.True(t, got.Equal(&pb))
	got = SelectPoint(1, &pa, &pb)
	require.True(t, got.Equal(&pa))
}

func ptr(p Point) *Point { return &p }
