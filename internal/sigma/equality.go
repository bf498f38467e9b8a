// equality.go - Ciphertext-commitment equality proof.
//
// For a ciphertext (C_eg, D) under P and a commitment C_ped, the prover knows s, x
// and r such that
//
//	s·P = H,   C_eg - s·D = x·G,   C_ped = x·G + r·H.

package sigma

import (
	"fmt"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
	"feeproof/internal/transcript"
)

const EqualityProofSize = 3*curve.PointSize + 3*curve.ScalarSize

// CiphertextCommitmentEqualityProof ties an ElGamal ciphertext to a Pedersen commitment.
type CiphertextCommitmentEqualityProof struct {
	Y0, Y1, Y2 curve.Point
	Zs, Zx, Zr curve.Scalar
}

// NewCiphertextCommitmentEqualityProof proves that ct, encrypted to kp.Public, and the
// commitment under opening both hold amount.
func NewCiphertextCommitmentEqualityProof(
	kp *encryption.Keypair,
	ct *encryption.Ciphertext,
	amount uint64,
	opening *encryption.Opening,
	t *transcript.Transcript,
) (*CiphertextCommitmentEqualityProof, error) {
	t.DomainSeparator("equality-proof")

	nonces, err := randomScalars(3)
	if err != nil {
		return nil, fmt.Errorf("equality proof: %w", err)
	}
	defer zeroize(nonces)
	ys, yx, yr := &nonces[0], &nonces[1], &nonces[2]

	g, h := encryption.G(), encryption.H()
	p := &CiphertextCommitmentEqualityProof{
		Y0: curve.ScalarMul(&kp.Public.Point, ys),
		Y1: curve.LinearCombination2(&g, yx, &ct.Handle.Point, ys),
		Y2: curve.LinearCombination2(&g, yx, &h, yr),
	}
	appendPoints(t,
		labelledPoint{"Y_0", &p.Y0},
		labelledPoint{"Y_1", &p.Y1},
		labelledPoint{"Y_2", &p.Y2},
	)
	c := t.ChallengeScalar("c")

	x := curve.ScalarFromUint64(amount)
	p.Zs = response(&c, &kp.Secret.Scalar, ys)
	p.Zx = response(&c, &x, yx)
	p.Zr = response(&c, &opening.Scalar, yr)
	x.SetZero()

	return p, nil
}

// Verify checks the proof against the public key, ciphertext and commitment.
func (p *CiphertextCommitmentEqualityProof) Verify(
	pk *encryption.Pubkey,
	ct *encryption.Ciphertext,
	commitment *encryption.Commitment,
	t *transcript.Transcript,
) error {
	t.DomainSeparator("equality-proof")

	if pk.IsIdentity() {
		return fmt.Errorf("%w: identity pubkey", ErrEqualityProof)
	}
	if err := validateAndAppendPoints(t, ErrEqualityProof,
		labelledPoint{"Y_0", &p.Y0},
		labelledPoint{"Y_1", &p.Y1},
		labelledPoint{"Y_2", &p.Y2},
	); err != nil {
		return err
	}
	c := t.ChallengeScalar("c")

	g, h := encryption.G(), encryption.H()

	// z_s·P = c·H + Y_0
	lhs := curve.ScalarMul(&pk.Point, &p.Zs)
	if !holds(&lhs, &c, &h, &p.Y0) {
		return fmt.Errorf("%w: secret key relation", ErrEqualityProof)
	}
	// z_x·G + z_s·D = c·C_eg + Y_1
	lhs = curve.LinearCombination2(&g, &p.Zx, &ct.Handle.Point, &p.Zs)
	if !holds(&lhs, &c, &ct.Commitment.Point, &p.Y1) {
		return fmt.Errorf("%w: ciphertext relation", ErrEqualityProof)
	}
	// z_x·G + z_r·H = c·C_ped + Y_2
	lhs = curve.LinearCombination2(&g, &p.Zx, &h, &p.Zr)
	if !holds(&lhs, &c, &commitment.Point, &p.Y2) {
		return fmt.Errorf("%w: commitment relation", ErrEqualityProof)
	}
	return nil
}

// Bytes encodes Y_0, Y_1, Y_2, z_s, z_x, z_r.
func (p *CiphertextCommitmentEqualityProof) Bytes() [EqualityProofSize]byte {
	var out [EqualityProofSize]byte
	buf := out[:0]
	buf = curve.AppendPoint(buf, &p.Y0)
	buf = curve.AppendPoint(buf, &p.Y1)
	buf = curve.AppendPoint(buf, &p.Y2)
	buf = curve.AppendScalar(buf, &p.Zs)
	buf = curve.AppendScalar(buf, &p.Zx)
	_ = curve.AppendScalar(buf, &p.Zr)
	return out
}

// CiphertextCommitmentEqualityProofFromBytes decodes the layout written by Bytes.
func CiphertextCommitmentEqualityProofFromBytes(b []byte) (*CiphertextCommitmentEqualityProof, error) {
	if len(b) != EqualityProofSize {
		return nil, fmt.Errorf("%w: equality proof is %d bytes, want %d", curve.ErrInvalidEncoding, len(b), EqualityProofSize)
	}
	r := curve.NewReader(b)
	p := &CiphertextCommitmentEqualityProof{
		Y0: r.Point(),
		Y1: r.Point(),
		Y2: r.Point(),
		Zs: r.Scalar(),
		Zx: r.Scalar(),
		Zr: r.Scalar(),
	}
	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("decode equality proof: %w", err)
	}
	return p, nil
}
