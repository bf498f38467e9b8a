package transferfee

import (
	"fmt"

	"feeproof/internal/encryption"
	"feeproof/internal/rangeproof"
	"feeproof/internal/sigma"
)

// Role names a key holder that can decrypt part of a transfer.
type Role uint8

const (
	RoleSource Role = iota
	RoleDestination
	RoleAuditor
	RoleWithdrawWithheldAuthority
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleDestination:
		return "destination"
	case RoleAuditor:
		return "auditor"
	case RoleWithdrawWithheldAuthority:
		return "withdraw-withheld-authority"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// LimbEncryption is one limb commitment with a decryption handle for each of the
// source, the destination and the auditor, all under the same opening.
type LimbEncryption struct {
	Commitment        encryption.Commitment
	SourceHandle      encryption.DecryptHandle
	DestinationHandle encryption.DecryptHandle
	AuditorHandle     encryption.DecryptHandle
}

func newLimbEncryption(value uint64, keys *TransferWithFeeKeys) (LimbEncryption, encryption.Opening, error) {
	c, handles, o, err := encryption.EncryptGrouped(value, keys.Source, keys.Destination, keys.Auditor)
	if err != nil {
		return LimbEncryption{}, encryption.Opening{}, err
	}
	return LimbEncryption{
		Commitment:        c,
		SourceHandle:      handles[0],
		DestinationHandle: handles[1],
		AuditorHandle:     handles[2],
	}, o, nil
}

// Ciphertext returns the limb as an ElGamal ciphertext for role.
func (l *LimbEncryption) Ciphertext(role Role) (encryption.Ciphertext, error) {
	var h encryption.DecryptHandle
	switch role {
	case RoleSource:
		h = l.SourceHandle
	case RoleDestination:
		h = l.DestinationHandle
	case RoleAuditor:
		h = l.AuditorHandle
	default:
		return encryption.Ciphertext{}, fmt.Errorf("%w: role %s has no handle on the transfer amount", ErrDecryptionFailed, role)
	}
	return encryption.Ciphertext{Commitment: l.Commitment, Handle: h}, nil
}

// FeeEncryption is the applied fee committed once with handles for the
// destination and the withdraw-withheld authority.
type FeeEncryption struct {
	Commitment                      encryption.Commitment
	DestinationHandle               encryption.DecryptHandle
	WithdrawWithheldAuthorityHandle encryption.DecryptHandle
}

func newFeeEncryption(fee uint64, keys *TransferWithFeeKeys) (FeeEncryption, encryption.Opening, error) {
	c, handles, o, err := encryption.EncryptGrouped(fee, keys.Destination, keys.WithdrawWithheldAuthority)
	if err != nil {
		return FeeEncryption{}, encryption.Opening{}, err
	}
	return FeeEncryption{
		Commitment:                      c,
		DestinationHandle:               handles[0],
		WithdrawWithheldAuthorityHandle: handles[1],
	}, o, nil
}

// Ciphertext returns the fee as an ElGamal ciphertext for role.
func (f *FeeEncryption) Ciphertext(role Role) (encryption.Ciphertext, error) {
	switch role {
	case RoleDestination:
		return encryption.Ciphertext{Commitment: f.Commitment, Handle: f.DestinationHandle}, nil
	case RoleWithdrawWithheldAuthority:
		return encryption.Ciphertext{Commitment: f.Commitment, Handle: f.WithdrawWithheldAuthorityHandle}, nil
	default:
		return encryption.Ciphertext{}, fmt.Errorf("%w: role %s has no handle on the fee", ErrDecryptionFailed, role)
	}
}

// TransferWithFeeKeys are the four public keys of a transfer, in layout order.
type TransferWithFeeKeys struct {
	Source                    encryption.Pubkey
	Destination               encryption.Pubkey
	Auditor                   encryption.Pubkey
	WithdrawWithheldAuthority encryption.Pubkey
}

// Proof holds the two prover commitments and the five sub-proofs.
type Proof struct {
	NewSourceCommitment encryption.Commitment
	ClaimedCommitment   encryption.Commitment
	Equality            sigma.CiphertextCommitmentEqualityProof
	AmountValidity      sigma.AggregatedValidityProof
	FeeSigma            sigma.FeeSigmaProof
	FeeValidity         sigma.ValidityProof
	Range               rangeproof.RangeProof
}

// TransferWithFeeData is the complete artifact: everything a verifier needs.
type TransferWithFeeData struct {
	Lo                  LimbEncryption
	Hi                  LimbEncryption
	Keys                TransferWithFeeKeys
	NewSourceCiphertext encryption.Ciphertext
	Fee                 FeeEncryption
	FeeParameters       FeeParameters
	Proof               Proof
}

// LoCiphertext returns the low limb ciphertext for role.
func (d *TransferWithFeeData) LoCiphertext(role Role) (encryption.Ciphertext, error) {
	return d.Lo.Ciphertext(role)
}

// HiCiphertext returns the high limb ciphertext for role.
func (d *TransferWithFeeData) HiCiphertext(role Role) (encryption.Ciphertext, error) {
	return d.Hi.Ciphertext(role)
}

// FeeCiphertext returns the fee ciphertext for role.
func (d *TransferWithFeeData) FeeCiphertext(role Role) (encryption.Ciphertext, error) {
	return d.Fee.Ciphertext(role)
}
