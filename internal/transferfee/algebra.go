// algebra.go - Linear combinations of limb commitments, openings and ciphertexts.
//
// A transfer amount x = lo + hi·2^L is never committed directly. Its commitment
// is recovered as C_hi·2^L + C_lo, which the commitment scheme supports because
// it is additively homomorphic and scales by public scalars.

package transferfee

import (
	"feeproof/internal/encryption"
)

func twoToThe(bits int) uint64 {
	return 1 << uint(bits)
}

// CombineLoHiCommitments returns hi·2^loBits + lo.
func CombineLoHiCommitments(lo, hi encryption.Commitment, loBits int) encryption.Commitment {
	return hi.MulUint64(twoToThe(loBits)).Add(lo)
}

// CombineLoHiOpenings returns hi·2^loBits + lo.
func CombineLoHiOpenings(lo, hi encryption.Opening, loBits int) encryption.Opening {
	return hi.MulUint64(twoToThe(loBits)).Add(lo)
}

// CombineLoHiCiphertexts returns hi·2^loBits + lo.
func CombineLoHiCiphertexts(lo, hi encryption.Ciphertext, loBits int) encryption.Ciphertext {
	return hi.MulUint64(twoToThe(loBits)).Add(lo)
}

// DeltaCommitment returns fee·10000 - (hi·2^loBits + lo)·rate, a commitment to
// fee*10000 - amount*rate.
func DeltaCommitment(lo, hi, fee encryption.Commitment, rateBasisPoints uint16, loBits int) encryption.Commitment {
	amount := CombineLoHiCommitments(lo, hi, loBits)
	return fee.MulUint64(MaxFeeBasisPoints).Sub(amount.MulUint64(uint64(rateBasisPoints)))
}

// DeltaOpening applies the DeltaCommitment formula to openings.
func DeltaOpening(lo, hi, fee encryption.Opening, rateBasisPoints uint16, loBits int) encryption.Opening {
	amount := CombineLoHiOpenings(lo, hi, loBits)
	return fee.MulUint64(MaxFeeBasisPoints).Sub(amount.MulUint64(uint64(rateBasisPoints)))
}
