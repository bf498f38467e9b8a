// codec.go - Fixed-size wire layout of transfer artifacts.
//
// Every field is a fixed-size encoding concatenated in declaration order with no
// padding or length prefixes. Points are 32-byte compressed BN254 G1 elements and
// scalars are 32-byte canonical field elements.

package transferfee

import (
	"fmt"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
	"feeproof/internal/rangeproof"
	"feeproof/internal/sigma"
)

const (
	LimbEncryptionSize = 4 * curve.PointSize
	FeeEncryptionSize  = 3 * curve.PointSize
	KeysSize           = 4 * curve.PointSize

	// RangeProofSize covers the 256 aggregated bits of both variants.
	RangeProofSize = 800

	ProofSize = 2*curve.PointSize +
		sigma.EqualityProofSize +
		sigma.AggregatedValidityProofSize +
		sigma.FeeSigmaProofSize +
		sigma.ValidityProofSize +
		RangeProofSize

	TransferWithFeeDataSize = 2*LimbEncryptionSize +
		KeysSize +
		encryption.CiphertextSize +
		FeeEncryptionSize +
		FeeParametersSize +
		ProofSize
)

func malformed(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedInput, what, err)
}

func checkSize(what string, b []byte, want int) error {
	if len(b) != want {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrMalformedInput, what, len(b), want)
	}
	return nil
}

// Bytes encodes commitment, source, destination and auditor handles.
func (l *LimbEncryption) Bytes() [LimbEncryptionSize]byte {
	var out [LimbEncryptionSize]byte
	buf := out[:0]
	buf = curve.AppendPoint(buf, &l.Commitment.Point)
	buf = curve.AppendPoint(buf, &l.SourceHandle.Point)
	buf = curve.AppendPoint(buf, &l.DestinationHandle.Point)
	_ = curve.AppendPoint(buf, &l.AuditorHandle.Point)
	return out
}

func LimbEncryptionFromBytes(b []byte) (LimbEncryption, error) {
	if err := checkSize("limb encryption", b, LimbEncryptionSize); err != nil {
		return LimbEncryption{}, err
	}
	r := curve.NewReader(b)
	l := LimbEncryption{
		Commitment:        encryption.Commitment{Point: r.Point()},
		SourceHandle:      encryption.DecryptHandle{Point: r.Point()},
		DestinationHandle: encryption.DecryptHandle{Point: r.Point()},
		AuditorHandle:     encryption.DecryptHandle{Point: r.Point()},
	}
	if err := r.Finish(); err != nil {
		return LimbEncryption{}, malformed("limb encryption", err)
	}
	return l, nil
}

// Bytes encodes commitment, destination handle and withdraw-withheld authority handle.
func (f *FeeEncryption) Bytes() [FeeEncryptionSize]byte {
	var out [FeeEncryptionSize]byte
	buf := out[:0]
	buf = curve.AppendPoint(buf, &f.Commitment.Point)
	buf = curve.AppendPoint(buf, &f.DestinationHandle.Point)
	_ = curve.AppendPoint(buf, &f.WithdrawWithheldAuthorityHandle.Point)
	return out
}

func FeeEncryptionFromBytes(b []byte) (FeeEncryption, error) {
	if err := checkSize("fee encryption", b, FeeEncryptionSize); err != nil {
		return FeeEncryption{}, err
	}
	r := curve.NewReader(b)
	f := FeeEncryption{
		Commitment:                      encryption.Commitment{Point: r.Point()},
		DestinationHandle:               encryption.DecryptHandle{Point: r.Point()},
		WithdrawWithheldAuthorityHandle: encryption.DecryptHandle{Point: r.Point()},
	}
	if err := r.Finish(); err != nil {
		return FeeEncryption{}, malformed("fee encryption", err)
	}
	return f, nil
}

// Bytes encodes source, destination, auditor and withdraw-withheld authority keys.
func (k *TransferWithFeeKeys) Bytes() [KeysSize]byte {
	var out [KeysSize]byte
	buf := out[:0]
	buf = curve.AppendPoint(buf, &k.Source.Point)
	buf = curve.AppendPoint(buf, &k.Destination.Point)
	buf = curve.AppendPoint(buf, &k.Auditor.Point)
	_ = curve.AppendPoint(buf, &k.WithdrawWithheldAuthority.Point)
	return out
}

func TransferWithFeeKeysFromBytes(b []byte) (TransferWithFeeKeys, error) {
	if err := checkSize("keys", b, KeysSize); err != nil {
		return TransferWithFeeKeys{}, err
	}
	r := curve.NewReader(b)
	k := TransferWithFeeKeys{
		Source:                    encryption.Pubkey{Point: r.Point()},
		Destination:               encryption.Pubkey{Point: r.Point()},
		Auditor:                   encryption.Pubkey{Point: r.Point()},
		WithdrawWithheldAuthority: encryption.Pubkey{Point: r.Point()},
	}
	if err := r.Finish(); err != nil {
		return TransferWithFeeKeys{}, malformed("keys", err)
	}
	return k, nil
}

// Bytes encodes the two commitments followed by the sub-proofs in proof order.
func (p *Proof) Bytes() ([ProofSize]byte, error) {
	var out [ProofSize]byte
	rangeBytes := p.Range.Bytes()
	if len(rangeBytes) != RangeProofSize {
		return out, fmt.Errorf("%w: range proof is %d bytes, want %d", ErrMalformedInput, len(rangeBytes), RangeProofSize)
	}

	equality := p.Equality.Bytes()
	amountValidity := p.AmountValidity.Bytes()
	feeSigma := p.FeeSigma.Bytes()
	feeValidity := p.FeeValidity.Bytes()

	buf := out[:0]
	buf = curve.AppendPoint(buf, &p.NewSourceCommitment.Point)
	buf = curve.AppendPoint(buf, &p.ClaimedCommitment.Point)
	buf = append(buf, equality[:]...)
	buf = append(buf, amountValidity[:]...)
	buf = append(buf, feeSigma[:]...)
	buf = append(buf, feeValidity[:]...)
	_ = append(buf, rangeBytes...)
	return out, nil
}

func ProofFromBytes(b []byte) (*Proof, error) {
	if err := checkSize("proof", b, ProofSize); err != nil {
		return nil, err
	}
	r := curve.NewReader(b)
	p := &Proof{
		NewSourceCommitment: encryption.Commitment{Point: r.Point()},
		ClaimedCommitment:   encryption.Commitment{Point: r.Point()},
	}
	if err := r.Err(); err != nil {
		return nil, malformed("proof commitments", err)
	}

	equality, err := sigma.CiphertextCommitmentEqualityProofFromBytes(r.Next(sigma.EqualityProofSize))
	if err != nil {
		return nil, malformed("equality proof", err)
	}
	amountValidity, err := sigma.AggregatedValidityProofFromBytes(r.Next(sigma.AggregatedValidityProofSize))
	if err != nil {
		return nil, malformed("aggregated validity proof", err)
	}
	feeSigma, err := sigma.FeeSigmaProofFromBytes(r.Next(sigma.FeeSigmaProofSize))
	if err != nil {
		return nil, malformed("fee sigma proof", err)
	}
	feeValidity, err := sigma.ValidityProofFromBytes(r.Next(sigma.ValidityProofSize))
	if err != nil {
		return nil, malformed("fee validity proof", err)
	}
	rp, err := rangeproof.FromBytes(r.Next(RangeProofSize))
	if err != nil {
		return nil, malformed("range proof", err)
	}
	if err := r.Finish(); err != nil {
		return nil, malformed("proof", err)
	}

	p.Equality = *equality
	p.AmountValidity = *amountValidity
	p.FeeSigma = *feeSigma
	p.FeeValidity = *feeValidity
	p.Range = *rp
	return p, nil
}

// MarshalBinary implements encoding.BinaryMarshaler with the fixed layout
// lo, hi, keys, new source ciphertext, fee, fee parameters, proof.
func (d *TransferWithFeeData) MarshalBinary() ([]byte, error) {
	proof, err := d.Proof.Bytes()
	if err != nil {
		return nil, err
	}
	lo := d.Lo.Bytes()
	hi := d.Hi.Bytes()
	keys := d.Keys.Bytes()
	newSource := d.NewSourceCiphertext.Bytes()
	fee := d.Fee.Bytes()
	params := d.FeeParameters.Bytes()

	out := make([]byte, 0, TransferWithFeeDataSize)
	out = append(out, lo[:]...)
	out = append(out, hi[:]...)
	out = append(out, keys[:]...)
	out = append(out, newSource[:]...)
	out = append(out, fee[:]...)
	out = append(out, params[:]...)
	out = append(out, proof[:]...)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. On error d is left unchanged.
func (d *TransferWithFeeData) UnmarshalBinary(b []byte) error {
	if err := checkSize("transfer with fee data", b, TransferWithFeeDataSize); err != nil {
		return err
	}
	off := 0
	next := func(n int) []byte {
		field := b[off : off+n]
		off += n
		return field
	}

	lo, err := LimbEncryptionFromBytes(next(LimbEncryptionSize))
	if err != nil {
		return err
	}
	hi, err := LimbEncryptionFromBytes(next(LimbEncryptionSize))
	if err != nil {
		return err
	}
	keys, err := TransferWithFeeKeysFromBytes(next(KeysSize))
	if err != nil {
		return err
	}
	newSource, err := encryption.CiphertextFromBytes(next(encryption.CiphertextSize))
	if err != nil {
		return malformed("new source ciphertext", err)
	}
	fee, err := FeeEncryptionFromBytes(next(FeeEncryptionSize))
	if err != nil {
		return err
	}
	params, err := FeeParametersFromBytes(next(FeeParametersSize))
	if err != nil {
		return err
	}
	proof, err := ProofFromBytes(next(ProofSize))
	if err != nil {
		return err
	}

	*d = TransferWithFeeData{
		Lo:                  lo,
		Hi:                  hi,
		Keys:                keys,
		NewSourceCiphertext: newSource,
		Fee:                 fee,
		FeeParameters:       params,
		Proof:               *proof,
	}
	return nil
}

// ParseTransferWithFeeData decodes an artifact.
func ParseTransferWithFeeData(b []byte) (*TransferWithFeeData, error) {
	d := new(TransferWithFeeData)
	if err := d.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return d, nil
}
