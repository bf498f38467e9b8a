// fee.go - Fee sigma proof, an OR-proof over two statements about a fee commitment.
//
// Either the fee commitment opens to the maximum fee,
//
//	C_fee - max_fee·G = r_fee·H,
//
// or the delta commitment C_delta = 10000·C_fee - rate·C_amount and the claimed
// commitment C_claimed hold the same value,
//
//	C_delta = x·G + r_delta·H,   C_claimed = x·G + r_claimed·H.
//
// The prover runs the statement it can prove honestly and simulates the other
// with a pre-chosen challenge; the two challenges must sum to the transcript
// challenge. Both branches are always computed and the output is assembled with
// constant-time selection, so timing does not reveal which statement holds.

package sigma

import (
	"fmt"
	"math/bits"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
	"feeproof/internal/transcript"
)

const FeeSigmaProofSize = 3*curve.PointSize + 5*curve.ScalarSize

// FeeSigmaProof is the serialized OR-proof. CMax is the challenge of the
// max-fee branch; the equality branch uses c - CMax.
type FeeSigmaProof struct {
	YMax     curve.Point
	ZMax     curve.Scalar
	CMax     curve.Scalar
	YDelta   curve.Point
	YClaimed curve.Point
	ZX       curve.Scalar
	ZDelta   curve.Scalar
	ZClaimed curve.Scalar
}

// CommittedValue is a prover-side (value, commitment, opening) triple.
type CommittedValue struct {
	Value      uint64
	Commitment *encryption.Commitment
	Opening    *encryption.Opening
}

// NewFeeSigmaProof proves the statement for the applied fee. fee.Value must not
// exceed maxFee; delta.Value and claimed.Value are the rounding remainder.
func NewFeeSigmaProof(fee, delta, claimed CommittedValue, maxFee uint64, t *transcript.Transcript) (*FeeSigmaProof, error) {
	t.DomainSeparator("fee-sigma-proof")

	// below is 1 when fee < maxFee, in which case the equality branch is the real one.
	_, below := bits.Sub64(fee.Value, maxFee, 0)

	nonces, err := randomScalars(10)
	if err != nil {
		return nil, fmt.Errorf("fee sigma proof: %w", err)
	}
	defer zeroize(nonces)
	var (
		// max-fee branch proved honestly, equality branch simulated
		yMax, cEqSim, zXSim, zDeltaSim, zClaimedSim = &nonces[0], &nonces[1], &nonces[2], &nonces[3], &nonces[4]
		// max-fee branch simulated, equality branch proved honestly
		zMaxSim, cMaxSim, yX, yDelta, yClaimed = &nonces[5], &nonces[6], &nonces[7], &nonces[8], &nonces[9]
	)

	g, h := encryption.G(), encryption.H()
	feeOverMax := feeMinusMax(fee.Commitment, maxFee)

	yMaxReal := curve.ScalarMul(&h, yMax)
	yDeltaSim := simulatedCommitment(&g, zXSim, &h, zDeltaSim, cEqSim, &delta.Commitment.Point)
	yClaimedSim := simulatedCommitment(&g, zXSim, &h, zClaimedSim, cEqSim, &claimed.Commitment.Point)

	cMaxTimesX := curve.ScalarMul(&feeOverMax, cMaxSim)
	zMaxH := curve.ScalarMul(&h, zMaxSim)
	yMaxSim := curve.Sub(&zMaxH, &cMaxTimesX)
	yDeltaReal := curve.LinearCombination2(&g, yX, &h, yDelta)
	yClaimedReal := curve.LinearCombination2(&g, yX, &h, yClaimed)

	p := &FeeSigmaProof{
		YMax:     curve.SelectPoint(below, &yMaxSim, &yMaxReal),
		YDelta:   curve.SelectPoint(below, &yDeltaReal, &yDeltaSim),
		YClaimed: curve.SelectPoint(below, &yClaimedReal, &yClaimedSim),
	}
	appendPoints(t,
		labelledPoint{"Y_max_proof", &p.YMax},
		labelledPoint{"Y_delta", &p.YDelta},
		labelledPoint{"Y_claimed", &p.YClaimed},
	)
	c := t.ChallengeScalar("c")

	var cMaxReal, cEqReal curve.Scalar
	cMaxReal.Sub(&c, cEqSim)
	cEqReal.Sub(&c, cMaxSim)

	zMaxReal := response(&cMaxReal, &fee.Opening.Scalar, yMax)
	x := curve.ScalarFromUint64(delta.Value)
	zXReal := response(&cEqReal, &x, yX)
	zDeltaReal := response(&cEqReal, &delta.Opening.Scalar, yDelta)
	zClaimedReal := response(&cEqReal, &claimed.Opening.Scalar, yClaimed)
	x.SetZero()

	p.ZMax = curve.SelectScalar(below, zMaxSim, &zMaxReal)
	p.CMax = curve.SelectScalar(below, cMaxSim, &cMaxReal)
	p.ZX = curve.SelectScalar(below, &zXReal, zXSim)
	p.ZDelta = curve.SelectScalar(below, &zDeltaReal, zDeltaSim)
	p.ZClaimed = curve.SelectScalar(below, &zClaimedReal, zClaimedSim)
	return p, nil
}

// Verify checks the OR-proof for the given commitments and maximum fee.
func (p *FeeSigmaProof) Verify(
	feeCommitment, deltaCommitment, claimedCommitment *encryption.Commitment,
	maxFee uint64,
	t *transcript.Transcript,
) error {
	t.DomainSeparator("fee-sigma-proof")

	if err := validateAndAppendPoints(t, ErrFeeSigmaProof,
		labelledPoint{"Y_max_proof", &p.YMax},
		labelledPoint{"Y_delta", &p.YDelta},
		labelledPoint{"Y_claimed", &p.YClaimed},
	); err != nil {
		return err
	}
	c := t.ChallengeScalar("c")
	var cEq curve.Scalar
	cEq.Sub(&c, &p.CMax)

	g, h := encryption.G(), encryption.H()
	feeOverMax := feeMinusMax(feeCommitment, maxFee)

	// z_max·H = c_max·(C_fee - max_fee·G) + Y_max
	lhs := curve.ScalarMul(&h, &p.ZMax)
	if !holds(&lhs, &p.CMax, &feeOverMax, &p.YMax) {
		return fmt.Errorf("%w: max fee relation", ErrFeeSigmaProof)
	}
	// z_x·G + z_delta·H = c_eq·C_delta + Y_delta
	lhs = curve.LinearCombination2(&g, &p.ZX, &h, &p.ZDelta)
	if !holds(&lhs, &cEq, &deltaCommitment.Point, &p.YDelta) {
		return fmt.Errorf("%w: delta relation", ErrFeeSigmaProof)
	}
	// z_x·G + z_claimed·H = c_eq·C_claimed + Y_claimed
	lhs = curve.LinearCombination2(&g, &p.ZX, &h, &p.ZClaimed)
	if !holds(&lhs, &cEq, &claimedCommitment.Point, &p.YClaimed) {
		return fmt.Errorf("%w: claimed relation", ErrFeeSigmaProof)
	}
	return nil
}

// feeMinusMax returns C_fee - max_fee·G.
func feeMinusMax(feeCommitment *encryption.Commitment, maxFee uint64) curve.Point {
	return feeCommitment.Sub(encryption.Encode(maxFee)).Point
}

// simulatedCommitment returns z_x·G + z_r·H - c·C.
func simulatedCommitment(g *curve.Point, zx *curve.Scalar, h *curve.Point, zr, c *curve.Scalar, commitment *curve.Point) curve.Point {
	lhs := curve.LinearCombination2(g, zx, h, zr)
	cc := curve.ScalarMul(commitment, c)
	return curve.Sub(&lhs, &cc)
}

// Bytes encodes Y_max, z_max, c_max, Y_delta, Y_claimed, z_x, z_delta, z_claimed.
func (p *FeeSigmaProof) Bytes() [FeeSigmaProofSize]byte {
	var out [FeeSigmaProofSize]byte
	buf := out[:0]
	buf = curve.AppendPoint(buf, &p.YMax)
	buf = curve.AppendScalar(buf, &p.ZMax)
	buf = curve.AppendScalar(buf, &p.CMax)
	buf = curve.AppendPoint(buf, &p.YDelta)
	buf = curve.AppendPoint(buf, &p.YClaimed)
	buf = curve.AppendScalar(buf, &p.ZX)
	buf = curve.AppendScalar(buf, &p.ZDelta)
	_ = curve.AppendScalar(buf, &p.ZClaimed)
	return out
}

func FeeSigmaProofFromBytes(b []byte) (*FeeSigmaProof, error) {
	if len(b) != FeeSigmaProofSize {
		return nil, fmt.Errorf("%w: fee sigma proof is %d bytes, want %d", curve.ErrInvalidEncoding, len(b), FeeSigmaProofSize)
	}
	r := curve.NewReader(b)
	p := &FeeSigmaProof{
		YMax:     r.Point(),
		ZMax:     r.Scalar(),
		CMax:     r.Scalar(),
		YDelta:   r.Point(),
		YClaimed: r.Point(),
		ZX:       r.Scalar(),
		ZDelta:   r.Scalar(),
		ZClaimed: r.Scalar(),
	}
	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("decode fee sigma proof: %w", err)
	}
	return p, nil
}
