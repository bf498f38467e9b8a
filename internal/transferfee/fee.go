// fee.go - Fee computation with exact rounding and a constant-time clamp.

package transferfee

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"

	"feeproof/internal/curve"
)

// FeeParametersSize is the encoded length of FeeParameters.
const FeeParametersSize = 2 + 8

// FeeParameters are the fee settings a transfer is proved against. A rate above
// MaxFeeBasisPoints is not rejected here; callers enforce it.
type FeeParameters struct {
	FeeRateBasisPoints uint16
	MaximumFee         uint64
}

// Bytes encodes the rate and maximum fee little-endian.
func (p FeeParameters) Bytes() [FeeParametersSize]byte {
	var out [FeeParametersSize]byte
	binary.LittleEndian.PutUint16(out[:2], p.FeeRateBasisPoints)
	binary.LittleEndian.PutUint64(out[2:], p.MaximumFee)
	return out
}

// FeeParametersFromBytes decodes the 10-byte layout written by Bytes.
func FeeParametersFromBytes(b []byte) (FeeParameters, error) {
	if len(b) != FeeParametersSize {
		return FeeParameters{}, fmt.Errorf("%w: fee parameters are %d bytes, want %d", ErrMalformedInput, len(b), FeeParametersSize)
	}
	return FeeParameters{
		FeeRateBasisPoints: binary.LittleEndian.Uint16(b[:2]),
		MaximumFee:         binary.LittleEndian.Uint64(b[2:]),
	}, nil
}

var basisPoints = uint256.NewInt(MaxFeeBasisPoints)

// CalculateFee returns fee = ceil(amount*rate/10000) and the rounding remainder
// deltaFee = fee*10000 - amount*rate, which is always below 10000.
func CalculateFee(amount uint64, rateBasisPoints uint16) (fee, deltaFee uint64, err error) {
	numerator, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), uint256.NewInt(uint64(rateBasisPoints)))
	if overflow {
		return 0, 0, fmt.Errorf("%w: amount * rate", ErrArithmeticOverflow)
	}

	quotient := new(uint256.Int).Div(numerator, basisPoints)
	remainder := new(uint256.Int).Mod(numerator, basisPoints)
	if remainder.IsZero() {
		if !quotient.IsUint64() {
			return 0, 0, fmt.Errorf("%w: fee exceeds 64 bits", ErrArithmeticOverflow)
		}
		return quotient.Uint64(), 0, nil
	}

	quotient, overflow = quotient.AddOverflow(quotient, uint256.NewInt(1))
	if overflow || !quotient.IsUint64() {
		return 0, 0, fmt.Errorf("%w: fee exceeds 64 bits", ErrArithmeticOverflow)
	}
	scaled, overflow := new(uint256.Int).MulOverflow(quotient, basisPoints)
	if overflow {
		return 0, 0, fmt.Errorf("%w: fee * 10000", ErrArithmeticOverflow)
	}
	delta, underflow := new(uint256.Int).SubOverflow(scaled, numerator)
	if underflow {
		return 0, 0, fmt.Errorf("%w: fee * 10000 - amount * rate", ErrArithmeticOverflow)
	}
	return quotient.Uint64(), delta.Uint64(), nil
}

// ClampFee returns min(fee, maximumFee) without branching on the comparison.
func ClampFee(fee, maximumFee uint64) uint64 {
	// borrow is 1 exactly when fee > maximumFee
	_, borrow := bits.Sub64(maximumFee, fee, 0)
	return curve.SelectUint64(borrow, maximumFee, fee)
}
