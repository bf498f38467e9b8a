// validity.go - Grouped validity proofs for a commitment with two decryption handles.
//
// For a commitment C and handles D_1, D_2 under P_1, P_2 the prover knows x and r with
//
//	C = x·G + r·H,   D_1 = r·P_1,   D_2 = r·P_2.

package sigma

import (
	"fmt"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
	"feeproof/internal/transcript"
)

const (
	ValidityProofSize           = 3*curve.PointSize + 2*curve.ScalarSize
	AggregatedValidityProofSize = ValidityProofSize
)

// ValidityProof shows that both handles decrypt the commitment's value.
type ValidityProof struct {
	Y0, Y1, Y2 curve.Point
	Zr, Zx     curve.Scalar
}

// NewValidityProof proves the commitment to amount under opening carries handles for
// first and second.
func NewValidityProof(
	first, second *encryption.Pubkey,
	amount uint64,
	opening *encryption.Opening,
	t *transcript.Transcript,
) (*ValidityProof, error) {
	x := curve.ScalarFromUint64(amount)
	defer x.SetZero()
	return newValidityProof(first, second, &x, &opening.Scalar, t)
}

func newValidityProof(first, second *encryption.Pubkey, x, r *curve.Scalar, t *transcript.Transcript) (*ValidityProof, error) {
	t.DomainSeparator("validity-proof")

	nonces, err := randomScalars(2)
	if err != nil {
		return nil, fmt.Errorf("validity proof: %w", err)
	}
	defer zeroize(nonces)
	yr, yx := &nonces[0], &nonces[1]

	g, h := encryption.G(), encryption.H()
	p := &ValidityProof{
		Y0: curve.LinearCombination2(&h, yr, &g, yx),
		Y1: curve.ScalarMul(&first.Point, yr),
		Y2: curve.ScalarMul(&second.Point, yr),
	}
	appendPoints(t,
		labelledPoint{"Y_0", &p.Y0},
		labelledPoint{"Y_1", &p.Y1},
		labelledPoint{"Y_2", &p.Y2},
	)
	c := t.ChallengeScalar("c")

	p.Zr = response(&c, r, yr)
	p.Zx = response(&c, x, yx)
	return p, nil
}

// Verify checks the proof for commitment with firstHandle under first and
// secondHandle under second. Identity public keys are rejected.
func (p *ValidityProof) Verify(
	commitment *encryption.Commitment,
	first, second *encryption.Pubkey,
	firstHandle, secondHandle *encryption.DecryptHandle,
	t *transcript.Transcript,
) error {
	t.DomainSeparator("validity-proof")

	if first.IsIdentity() || second.IsIdentity() {
		return fmt.Errorf("%w: identity pubkey", ErrValidityProof)
	}
	if err := validateAndAppendPoints(t, ErrValidityProof,
		labelledPoint{"Y_0", &p.Y0},
		labelledPoint{"Y_1", &p.Y1},
		labelledPoint{"Y_2", &p.Y2},
	); err != nil {
		return err
	}
	c := t.ChallengeScalar("c")

	g, h := encryption.G(), encryption.H()

	// z_x·G + z_r·H = c·C + Y_0
	lhs := curve.LinearCombination2(&g, &p.Zx, &h, &p.Zr)
	if !holds(&lhs, &c, &commitment.Point, &p.Y0) {
		return fmt.Errorf("%w: commitment relation", ErrValidityProof)
	}
	// z_r·P_1 = c·D_1 + Y_1
	lhs = curve.ScalarMul(&first.Point, &p.Zr)
	if !holds(&lhs, &c, &firstHandle.Point, &p.Y1) {
		return fmt.Errorf("%w: first handle relation", ErrValidityProof)
	}
	// z_r·P_2 = c·D_2 + Y_2
	lhs = curve.ScalarMul(&second.Point, &p.Zr)
	if !holds(&lhs, &c, &secondHandle.Point, &p.Y2) {
		return fmt.Errorf("%w: second handle relation", ErrValidityProof)
	}
	return nil
}

// Bytes encodes Y_0, Y_1, Y_2, z_r, z_x.
func (p *ValidityProof) Bytes() [ValidityProofSize]byte {
	var out [ValidityProofSize]byte
	buf := out[:0]
	buf = curve.AppendPoint(buf, &p.Y0)
	buf = curve.AppendPoint(buf, &p.Y1)
	buf = curve.AppendPoint(buf, &p.Y2)
	buf = curve.AppendScalar(buf, &p.Zr)
	_ = curve.AppendScalar(buf, &p.Zx)
	return out
}

func ValidityProofFromBytes(b []byte) (*ValidityProof, error) {
	if len(b) != ValidityProofSize {
		return nil, fmt.Errorf("%w: validity proof is %d bytes, want %d", curve.ErrInvalidEncoding, len(b), ValidityProofSize)
	}
	r := curve.NewReader(b)
	p := &ValidityProof{
		Y0: r.Point(),
		Y1: r.Point(),
		Y2: r.Point(),
		Zr: r.Scalar(),
		Zx: r.Scalar(),
	}
	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("decode validity proof: %w", err)
	}
	return p, nil
}

// AggregatedValidityProof proves two grouped encryptions to the same pair of keys
// at once. The lo and hi statements are folded with a transcript challenge t into
// C_lo + t·C_hi and likewise for the handles.
type AggregatedValidityProof struct {
	ValidityProof
}

// NewAggregatedValidityProof proves both (amounts[i], openings[i]) statements.
func NewAggregatedValidityProof(
	first, second *encryption.Pubkey,
	amounts [2]uint64,
	openings [2]*encryption.Opening,
	t *transcript.Transcript,
) (*AggregatedValidityProof, error) {
	t.DomainSeparator("aggregated-validity-proof")
	agg := t.ChallengeScalar("t")

	lo := curve.ScalarFromUint64(amounts[0])
	hi := curve.ScalarFromUint64(amounts[1])
	var x, r curve.Scalar
	x.Mul(&hi, &agg)
	x.Add(&x, &lo)
	r.Mul(&openings[1].Scalar, &agg)
	r.Add(&r, &openings[0].Scalar)
	defer func() {
		lo.SetZero()
		hi.SetZero()
		x.SetZero()
		r.SetZero()
	}()

	inner, err := newValidityProof(first, second, &x, &r, t)
	if err != nil {
		return nil, err
	}
	return &AggregatedValidityProof{ValidityProof: *inner}, nil
}

// Verify checks both statements.
func (p *AggregatedValidityProof) Verify(
	first, second *encryption.Pubkey,
	commitments [2]encryption.Commitment,
	firstHandles, secondHandles [2]encryption.DecryptHandle,
	t *transcript.Transcript,
) error {
	t.DomainSeparator("aggregated-validity-proof")
	agg := t.ChallengeScalar("t")

	commitment := commitments[0].Add(commitments[1].Mul(&agg))
	firstHandle := firstHandles[0].Add(firstHandles[1].Mul(&agg))
	secondHandle := secondHandles[0].Add(secondHandles[1].Mul(&agg))

	return p.ValidityProof.Verify(&commitment, first, second, &firstHandle, &secondHandle, t)
}

func AggregatedValidityProofFromBytes(b []byte) (*AggregatedValidityProof, error) {
	inner, err := ValidityProofFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &AggregatedValidityProof{ValidityProof: *inner}, nil
}
