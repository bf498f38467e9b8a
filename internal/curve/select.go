package curve

// Constant-time selection over the raw limbs of field elements. choice must be 0 or 1.

// SelectUint64 returns a when choice is 1 and b when choice is 0.
func SelectUint64(choice, a, b uint64) uint64 {
	mask := -choice
	return (a & mask) | (b &^ mask)
}

// SelectScalar returns a when choice is 1 and b when choice is 0.
func SelectScalar(choice uint64, a, b *Scalar) Scalar {
	var r Scalar
	selectLimbs(choice, r[:], a[:], b[:])
	return r
}

// SelectPoint returns a when choice is 1 and b when choice is 0.
func SelectPoint(choice uint64, a, b *Point) Point {
	var r Point
	selectLimbs(choice, r.X[:], a.X[:], b.X[:])
	selectLimbs(choice, r.Y[:], a.Y[:], b.Y[:])
	return r
}

func selectLimbs(choice uint64, dst, a, b []uint64) {
	mask := -choice
	for i := range dst {
		dst[i] = (a[i] & mask) | (b[i] &^ mask)
	}
}
