package transferfee

import "errors"

var (
	// ErrRange is returned when the amount does not fit the limb layout.
	ErrRange = errors.New("transferfee: amount out of range")
	// ErrArithmeticOverflow is returned when the fee does not fit in 64 bits.
	ErrArithmeticOverflow = errors.New("transferfee: arithmetic overflow")
	// ErrInsufficientBalance is returned when the amount exceeds the spendable balance.
	ErrInsufficientBalance = errors.New("transferfee: insufficient balance")
	// ErrDecryptionFailed is returned when a ciphertext cannot be decrypted to a limb.
	ErrDecryptionFailed = errors.New("transferfee: decryption failed")
	// ErrVerificationFailed is returned when any sub-proof is rejected.
	ErrVerificationFailed = errors.New("transferfee: verification failed")
	// ErrMalformedInput is returned when an encoding has the wrong size or an invalid element.
	ErrMalformedInput = errors.New("transferfee: malformed input")
)
