package transferfee

import (
	"fmt"

	"feeproof/internal/encryption"
)

// DecryptAmount recovers the transfer amount with the secret key of role, which
// must be the source, the destination or the auditor.
func (p *Protocol) DecryptAmount(data *TransferWithFeeData, role Role, sk *encryption.SecretKey) (uint64, error) {
	loCt, err := data.LoCiphertext(role)
	if err != nil {
		return 0, err
	}
	hiCt, err := data.HiCiphertext(role)
	if err != nil {
		return 0, err
	}

	lo, ok := sk.DecryptU32(&loCt)
	if !ok {
		return 0, fmt.Errorf("%w: low limb", ErrDecryptionFailed)
	}
	hi, ok := sk.DecryptU32(&hiCt)
	if !ok {
		return 0, fmt.Errorf("%w: high limb", ErrDecryptionFailed)
	}

	amount, ok := combineLimbs(lo, hi, p.variant.layout().loBits)
	if !ok {
		return 0, fmt.Errorf("%w: limbs overflow 64 bits", ErrDecryptionFailed)
	}
	return amount, nil
}

// DecryptFee recovers the applied fee with the secret key of role, which must
// be the destination or the withdraw-withheld authority. Fees of 2^32 or more
// cannot be recovered.
func (p *Protocol) DecryptFee(data *TransferWithFeeData, role Role, sk *encryption.SecretKey) (uint64, error) {
	ct, err := data.FeeCiphertext(role)
	if err != nil {
		return 0, err
	}
	fee, ok := sk.DecryptU32(&ct)
	if !ok {
		return 0, fmt.Errorf("%w: fee", ErrDecryptionFailed)
	}
	return fee, nil
}
