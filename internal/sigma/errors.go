package sigma

import (
	"errors"
	"fmt"

	"feeproof/internal/curve"
	"feeproof/internal/transcript"
)

var (
	ErrEqualityProof = errors.New("sigma: equality proof verification failed")
	ErrValidityProof = errors.New("sigma: validity proof verification failed")
	ErrFeeSigmaProof = errors.New("sigma: fee sigma proof verification failed")
)

// labelledPoint pairs a prover commitment with its transcript label.
type labelledPoint struct {
	label string
	point *curve.Point
}

func appendPoints(t *transcript.Transcript, points ...labelledPoint) {
	for _, lp := range points {
		t.AppendPoint(lp.label, lp.point)
	}
}

func validateAndAppendPoints(t *transcript.Transcript, kind error, points ...labelledPoint) error {
	for _, lp := range points {
		if err := t.ValidateAndAppendPoint(lp.label, lp.point); err != nil {
			return fmt.Errorf("%w: %s: %v", kind, lp.label, err)
		}
	}
	return nil
}

func randomScalars(n int) ([]curve.Scalar, error) {
	out := make([]curve.Scalar, n)
	for i := range out {
		s, err := curve.RandomScalar()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func zeroize(scalars []curve.Scalar) {
	for i := range scalars {
		scalars[i].SetZero()
	}
}

// response returns c·secret + nonce.
func response(c, secret, nonce *curve.Scalar) curve.Scalar {
	var z curve.Scalar
	z.Mul(c, secret)
	z.Add(&z, nonce)
	return z
}

// holds reports whether lhs == c·x + y.
func holds(lhs *curve.Point, c *curve.Scalar, x, y *curve.Point) bool {
	cx := curve.ScalarMul(x, c)
	rhs := curve.Add(&cx, y)
	return lhs.Equal(&rhs)
}
