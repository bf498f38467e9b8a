package rangeproof

import (
	"feeproof/internal/curve"
)

func innerProduct(a, b []curve.Scalar) curve.Scalar {
	var out, tmp curve.Scalar
	for i := range a {
		tmp.Mul(&a[i], &b[i])
		out.Add(&out, &tmp)
	}
	return out
}

// powers returns 1, x, x², ..., x^(n-1).
func powers(x *curve.Scalar, n int) []curve.Scalar {
	out := make([]curve.Scalar, n)
	if n == 0 {
		return out
	}
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], x)
	}
	return out
}

// sumOfPowers returns 1 + x + ... + x^(n-1).
func sumOfPowers(x *curve.Scalar, n int) curve.Scalar {
	var sum, exp curve.Scalar
	exp.SetOne()
	for i := 0; i < n; i++ {
		sum.Add(&sum, &exp)
		exp.Mul(&exp, x)
	}
	return sum
}

func randomVector(n int) ([]curve.Scalar, error) {
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

// maxValue returns 2^n - 1 for 1 <= n <= 64.
func maxValue(n int) uint64 {
	if n == 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}
