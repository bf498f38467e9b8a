package transferfee

import (
	"fmt"
	"math/bits"
)

// SplitAmount returns lo and hi with amount = lo + hi<<loBits and lo < 2^loBits.
// It fails with ErrRange when amount needs more than loBits+hiBits bits.
func SplitAmount(amount uint64, loBits, hiBits int) (lo, hi uint64, err error) {
	if loBits <= 0 || hiBits <= 0 || loBits+hiBits > 64 {
		return 0, 0, fmt.Errorf("%w: invalid limb widths %d/%d", ErrRange, loBits, hiBits)
	}
	if total := loBits + hiBits; total < 64 && amount>>uint(total) != 0 {
		return 0, 0, fmt.Errorf("%w: amount needs more than %d bits", ErrRange, total)
	}
	lo = amount & (1<<uint(loBits) - 1)
	hi = amount >> uint(loBits)
	return lo, hi, nil
}

// combineLimbs inverts SplitAmount. ok is false if the result does not fit in 64 bits.
func combineLimbs(lo, hi uint64, loBits int) (amount uint64, ok bool) {
	if hi>>uint(64-loBits) != 0 {
		return 0, false
	}
	sum, carry := bits.Add64(lo, hi<<uint(loBits), 0)
	return sum, carry == 0
}
