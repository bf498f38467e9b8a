// curve.go - BN254 G1 point and scalar helpers shared by the proof packages.
//
// Points travel as 32-byte compressed encodings and scalars as 32-byte canonical
// big-endian field elements. Every group operation in this module goes through
// gnark-crypto; this file only gives those calls a smaller surface.

package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	PointSize  = bn254.SizeOfG1AffineCompressed
	ScalarSize = fr.Bytes
)

var (
	// ErrInvalidEncoding is returned for wrong-length, off-curve or non-canonical input.
	ErrInvalidEncoding = errors.New("curve: invalid encoding")
	// ErrLengthMismatch is returned when point and scalar vectors differ in size.
	ErrLengthMismatch = errors.New("curve: points and scalars length mismatch")
)

type (
	// Point is an element of the BN254 G1 group in affine form.
	Point = bn254.G1Affine
	// Scalar is an element of the BN254 scalar field.
	Scalar = fr.Element
)

var generator Point

func init() {
	_, _, g1, _ := bn254.Generators()
	generator = g1
}

// Generator returns the standard BN254 G1 generator.
func Generator() Point {
	return generator
}

// ScalarMul returns s·p.
func ScalarMul(p *Point, s *Scalar) Point {
	var r Point
	r.ScalarMultiplication(p, s.BigInt(new(big.Int)))
	return r
}

// BaseMul returns s·G for the standard generator G.
func BaseMul(s *Scalar) Point {
	return ScalarMul(&generator, s)
}

// Add returns a + b.
func Add(a, b *Point) Point {
	var r Point
	r.Add(a, b)
	return r
}

// Sub returns a - b.
func Sub(a, b *Point) Point {
	var n, r Point
	n.Neg(b)
	r.Add(a, &n)
	return r
}

// MultiScalarMul returns Σ scalars[i]·points[i].
func MultiScalarMul(points []Point, scalars []Scalar) (Point, error) {
	if len(points) != len(scalars) {
		return Point{}, ErrLengthMismatch
	}
	var r Point
	if len(points) == 0 {
		return r, nil
	}
	if _, err := r.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return Point{}, fmt.Errorf("curve: multi-scalar multiplication: %w", err)
	}
	return r, nil
}

// LinearCombination2 returns a·p + b·q.
func LinearCombination2(p *Point, a *Scalar, q *Point, b *Scalar) Point {
	var pj, qj bn254.G1Jac
	pj.FromAffine(p)
	qj.FromAffine(q)
	pj.ScalarMultiplication(&pj, a.BigInt(new(big.Int)))
	qj.ScalarMultiplication(&qj, b.BigInt(new(big.Int)))
	pj.AddAssign(&qj)
	var r Point
	r.FromJacobian(&pj)
	return r
}

// HashToPoint maps msg to a G1 point with no known discrete log relative to the generator.
func HashToPoint(msg, dst []byte) Point {
	p, err := bn254.HashToG1(msg, dst)
	if err != nil {
		// only reachable with a domain separation tag longer than 255 bytes
		panic(fmt.Sprintf("curve: hash to G1: %v", err))
	}
	return p
}

// RandomScalar samples a uniformly random scalar from crypto/rand.
func RandomScalar() (Scalar, error) {
	var s Scalar
	if _, err := s.SetRandom(); err != nil {
		return Scalar{}, fmt.Errorf("curve: sample scalar: %w", err)
	}
	return s, nil
}

// ScalarFromUint64 lifts v into the scalar field.
func ScalarFromUint64(v uint64) Scalar {
	var s Scalar
	s.SetUint64(v)
	return s
}

// ScalarFromWideBytes reduces a big-endian byte string of any length modulo the group order.
func ScalarFromWideBytes(b []byte) Scalar {
	var s Scalar
	s.SetBytes(b)
	return s
}

// EncodePoint returns the 32-byte compressed form of p.
func EncodePoint(p *Point) [PointSize]byte {
	return p.Bytes()
}

// DecodePoint parses a compressed point, checking that it lies in G1.
// The point at infinity decodes successfully.
func DecodePoint(b []byte) (Point, error) {
	if len(b) != PointSize {
		return Point{}, fmt.Errorf("%w: point is %d bytes, want %d", ErrInvalidEncoding, len(b), PointSize)
	}
	var p Point
	if _, err := p.SetBytes(b); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}

// EncodeScalar returns the canonical big-endian encoding of s.
func EncodeScalar(s *Scalar) [ScalarSize]byte {
	return s.Bytes()
}

// DecodeScalar parses a canonical scalar, rejecting values at or above the group order.
func DecodeScalar(b []byte) (Scalar, error) {
	if len(b) != ScalarSize {
		return Scalar{}, fmt.Errorf("%w: scalar is %d bytes, want %d", ErrInvalidEncoding, len(b), ScalarSize)
	}
	var s Scalar
	if err := s.SetBytesCanonical(b); err != nil {
		return Scalar{}, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return s, nil
}
