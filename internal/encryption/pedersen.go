// pedersen.go - Pedersen commitments and their openings.

package encryption

import (
	"fmt"

	"feeproof/internal/curve"
)

var (
	pedersenG = curve.Generator()
	pedersenH = curve.HashToPoint([]byte("pedersen-blinding-base"), []byte("FEEPROOF-V1-BN254G1-H"))
)

// G returns the value base of the commitment scheme.
func G() curve.Point { return pedersenG }

// H returns the blinding base of the commitment scheme.
func H() curve.Point { return pedersenH }

// Opening is the blinding scalar of a commitment. It is secret to the prover.
type Opening struct {
	Scalar curve.Scalar
}

// NewOpening samples a fresh random opening.
func NewOpening() (Opening, error) {
	s, err := curve.RandomScalar()
	if err != nil {
		return Opening{}, fmt.Errorf("sample opening: %w", err)
	}
	return Opening{Scalar: s}, nil
}

func (o Opening) Add(other Opening) Opening {
	var r Opening
	r.Scalar.Add(&o.Scalar, &other.Scalar)
	return r
}

func (o Opening) Sub(other Opening) Opening {
	var r Opening
	r.Scalar.Sub(&o.Scalar, &other.Scalar)
	return r
}

func (o Opening) Mul(s *curve.Scalar) Opening {
	var r Opening
	r.Scalar.Mul(&o.Scalar, s)
	return r
}

func (o Opening) MulUint64(v uint64) Opening {
	s := curve.ScalarFromUint64(v)
	return o.Mul(&s)
}

// Zeroize overwrites the opening in place.
func (o *Opening) Zeroize() {
	o.Scalar.SetZero()
}

// Commitment is a Pedersen commitment x·G + r·H.
type Commitment struct {
	Point curve.Point
}

// Commit commits to value under a fresh random opening.
func Commit(value uint64) (Commitment, Opening, error) {
	o, err := NewOpening()
	if err != nil {
		return Commitment{}, Opening{}, err
	}
	return CommitWithOpening(value, &o), o, nil
}

// CommitWithOpening commits to value under the given opening.
func CommitWithOpening(value uint64, o *Opening) Commitment {
	x := curve.ScalarFromUint64(value)
	return CommitScalar(&x, o)
}

// CommitScalar commits to an arbitrary field element.
func CommitScalar(x *curve.Scalar, o *Opening) Commitment {
	return Commitment{Point: curve.LinearCombination2(&pedersenG, x, &pedersenH, &o.Scalar)}
}

// Encode returns the commitment to value with a zero opening, i.e. value·G.
func Encode(value uint64) Commitment {
	x := curve.ScalarFromUint64(value)
	return Commitment{Point: curve.BaseMul(&x)}
}

func (c Commitment) Add(other Commitment) Commitment {
	return Commitment{Point: curve.Add(&c.Point, &other.Point)}
}

func (c Commitment) Sub(other Commitment) Commitment {
	return Commitment{Point: curve.Sub(&c.Point, &other.Point)}
}

func (c Commitment) Mul(s *curve.Scalar) Commitment {
	return Commitment{Point: curve.ScalarMul(&c.Point, s)}
}

func (c Commitment) MulUint64(v uint64) Commitment {
	s := curve.ScalarFromUint64(v)
	return c.Mul(&s)
}

func (c Commitment) Equal(other Commitment) bool {
	return c.Point.Equal(&other.Point)
}

// IsIdentity reports whether c is the group identity.
func (c Commitment) IsIdentity() bool {
	return c.Point.IsInfinity()
}

// Bytes returns the 32-byte compressed encoding of c.
func (c Commitment) Bytes() [curve.PointSize]byte {
	return curve.EncodePoint(&c.Point)
}

// CommitmentFromBytes decodes a 32-byte compressed commitment.
func CommitmentFromBytes(b []byte) (Commitment, error) {
	p, err := curve.DecodePoint(b)
	if err != nil {
		return Commitment{}, fmt.Errorf("decode commitment: %w", err)
	}
	return Commitment{Point: p}, nil
}
