// range_proof.go - Aggregated Bulletproofs range proof with per-value bit lengths.
//
// A single proof shows that each committed value v_j lies in [0, 2^n_j) where the
// n_j sum to a power of two no larger than GeneratorCapacity. Value j contributes
// bits i in its own window of the aggregated bit vector and is weighted by
// z^(2+j) in the polynomial identity.

package rangeproof

import (
	"errors"
	"fmt"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
	"feeproof/internal/transcript"
)

var (
	ErrInvalidBitLength = errors.New("rangeproof: invalid bit length")
	ErrValueOutOfRange  = errors.New("rangeproof: value out of range")
	ErrLengthMismatch   = errors.New("rangeproof: values, bit lengths and openings differ in count")
	ErrVerification     = errors.New("rangeproof: verification failed")
)

// RangeProof is the aggregated proof.
type RangeProof struct {
	A, S, T1, T2 curve.Point
	TX           curve.Scalar
	TXBlinding   curve.Scalar
	EBlinding    curve.Scalar
	IPP          InnerProductProof
}

// Size returns the encoded length of a proof over totalBits aggregated bits.
func Size(totalBits int) int {
	rounds := 0
	for n := totalBits; n > 1; n /= 2 {
		rounds++
	}
	return 4*curve.PointSize + 3*curve.ScalarSize + 2*rounds*curve.PointSize + 2*curve.ScalarSize
}

func totalBits(bitLengths []int) (int, error) {
	total := 0
	for _, n := range bitLengths {
		if n < 1 || n > 64 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidBitLength, n)
		}
		total += n
	}
	if total == 0 || total&(total-1) != 0 {
		return 0, fmt.Errorf("%w: total %d is not a power of two", ErrInvalidBitLength, total)
	}
	if total > GeneratorCapacity {
		return 0, fmt.Errorf("%w: total %d exceeds generator capacity %d", ErrInvalidBitLength, total, GeneratorCapacity)
	}
	return total, nil
}

// New proves amounts[j] < 2^bitLengths[j] for the commitments
// amounts[j]·G + openings[j]·H.
func New(amounts []uint64, bitLengths []int, openings []*encryption.Opening, t *transcript.Transcript) (*RangeProof, error) {
	m := len(amounts)
	if m == 0 || len(bitLengths) != m || len(openings) != m {
		return nil, ErrLengthMismatch
	}
	nm, err := totalBits(bitLengths)
	if err != nil {
		return nil, err
	}
	for j, v := range amounts {
		if v > maxValue(bitLengths[j]) {
			return nil, fmt.Errorf("%w: value %d does not fit in %d bits", ErrValueOutOfRange, j, bitLengths[j])
		}
	}

	t.DomainSeparator("range-proof")
	t.AppendU64("n", uint64(nm))

	gAll, hAll := generators()
	gVec, hVec := gAll[:nm], hAll[:nm]
	g, h := encryption.G(), encryption.H()

	// bit decomposition a_L and a_R = a_L - 1
	aL := make([]curve.Scalar, nm)
	aR := make([]curve.Scalar, nm)
	var one curve.Scalar
	one.SetOne()
	i := 0
	for j, n := range bitLengths {
		for k := 0; k < n; k++ {
			aL[i].SetUint64((amounts[j] >> uint(k)) & 1)
			aR[i].Sub(&aL[i], &one)
			i++
		}
	}

	blindings, err := randomVector(4)
	if err != nil {
		return nil, fmt.Errorf("range proof: %w", err)
	}
	aBlinding, sBlinding, t1Blinding, t2Blinding := blindings[0], blindings[1], blindings[2], blindings[3]
	sL, err := randomVector(nm)
	if err != nil {
		return nil, fmt.Errorf("range proof: %w", err)
	}
	sR, err := randomVector(nm)
	if err != nil {
		return nil, fmt.Errorf("range proof: %w", err)
	}

	bases := make([]curve.Point, 0, 2*nm+1)
	bases = append(bases, h)
	bases = append(bases, gVec...)
	bases = append(bases, hVec...)

	// A = a_blinding·H + <a_L, G> + <a_R, H>
	aScalars := append(append([]curve.Scalar{aBlinding}, aL...), aR...)
	bigA, err := curve.MultiScalarMul(bases, aScalars)
	if err != nil {
		return nil, err
	}
	// S = s_blinding·H + <s_L, G> + <s_R, H>
	sScalars := append(append([]curve.Scalar{sBlinding}, sL...), sR...)
	bigS, err := curve.MultiScalarMul(bases, sScalars)
	if err != nil {
		return nil, err
	}

	t.AppendPoint("A", &bigA)
	t.AppendPoint("S", &bigS)
	y := t.ChallengeScalar("y")
	z := t.ChallengeScalar("z")

	// l(X) = l0 + l1·X, r(X) = r0 + r1·X
	l0 := make([]curve.Scalar, nm)
	l1 := make([]curve.Scalar, nm)
	r0 := make([]curve.Scalar, nm)
	r1 := make([]curve.Scalar, nm)
	var expY, expZ, tmp curve.Scalar
	expY.SetOne()
	expZ = z
	i = 0
	for _, n := range bitLengths {
		expZ.Mul(&expZ, &z)
		var exp2 curve.Scalar
		exp2.SetOne()
		for k := 0; k < n; k++ {
			l0[i].Sub(&aL[i], &z)
			l1[i] = sL[i]

			tmp.Add(&aR[i], &z)
			r0[i].Mul(&expY, &tmp)
			tmp.Mul(&expZ, &exp2)
			r0[i].Add(&r0[i], &tmp)
			r1[i].Mul(&expY, &sR[i])

			expY.Mul(&expY, &y)
			exp2.Add(&exp2, &exp2)
			i++
		}
	}

	// t(X) = t0 + t1·X + t2·X², with t1 from Karatsuba
	t0 := innerProduct(l0, r0)
	t2 := innerProduct(l1, r1)
	lSum := make([]curve.Scalar, nm)
	rSum := make([]curve.Scalar, nm)
	for i := range lSum {
		lSum[i].Add(&l0[i], &l1[i])
		rSum[i].Add(&r0[i], &r1[i])
	}
	t1 := innerProduct(lSum, rSum)
	t1.Sub(&t1, &t0)
	t1.Sub(&t1, &t2)

	bigT1 := curve.LinearCombination2(&g, &t1, &h, &t1Blinding)
	bigT2 := curve.LinearCombination2(&g, &t2, &h, &t2Blinding)
	t.AppendPoint("T_1", &bigT1)
	t.AppendPoint("T_2", &bigT2)
	x := t.ChallengeScalar("x")

	var xSq curve.Scalar
	xSq.Square(&x)

	// Σ z^(2+j)·γ_j
	var aggOpening curve.Scalar
	expZ = z
	for _, o := range openings {
		expZ.Mul(&expZ, &z)
		tmp.Mul(&expZ, &o.Scalar)
		aggOpening.Add(&aggOpening, &tmp)
	}

	proof := &RangeProof{A: bigA, S: bigS, T1: bigT1, T2: bigT2}
	// t_x = t0 + t1·x + t2·x²
	proof.TX.Mul(&t2, &xSq)
	tmp.Mul(&t1, &x)
	proof.TX.Add(&proof.TX, &tmp)
	proof.TX.Add(&proof.TX, &t0)
	// t_x_blinding = Σ z^(2+j)·γ_j + t1_blinding·x + t2_blinding·x²
	proof.TXBlinding.Mul(&t2Blinding, &xSq)
	tmp.Mul(&t1Blinding, &x)
	proof.TXBlinding.Add(&proof.TXBlinding, &tmp)
	proof.TXBlinding.Add(&proof.TXBlinding, &aggOpening)
	// e_blinding = a_blinding + s_blinding·x
	proof.EBlinding.Mul(&sBlinding, &x)
	proof.EBlinding.Add(&proof.EBlinding, &aBlinding)

	t.AppendScalar("t_x", &proof.TX)
	t.AppendScalar("t_x_blinding", &proof.TXBlinding)
	t.AppendScalar("e_blinding", &proof.EBlinding)

	w := t.ChallengeScalar("w")
	q := curve.BaseMul(&w)
	// the verifier draws c here to batch its two checks
	_ = t.ChallengeScalar("c")

	lVec := make([]curve.Scalar, nm)
	rVec := make([]curve.Scalar, nm)
	for i := range lVec {
		lVec[i].Mul(&l1[i], &x)
		lVec[i].Add(&lVec[i], &l0[i])
		rVec[i].Mul(&r1[i], &x)
		rVec[i].Add(&rVec[i], &r0[i])
	}

	var yInv curve.Scalar
	yInv.Inverse(&y)
	gFactors := powers(&one, nm)
	hFactors := powers(&yInv, nm)

	ipp, err := newInnerProductProof(&q, gFactors, hFactors, gVec, hVec, lVec, rVec, t)
	if err != nil {
		return nil, err
	}
	proof.IPP = *ipp
	return proof, nil
}

// Verify checks that commitments[j] holds a value below 2^bitLengths[j].
func (p *RangeProof) Verify(commitments []*encryption.Commitment, bitLengths []int, t *transcript.Transcript) error {
	m := len(commitments)
	if m == 0 || len(bitLengths) != m {
		return ErrLengthMismatch
	}
	nm, err := totalBits(bitLengths)
	if err != nil {
		return err
	}
	for j, c := range commitments {
		if c.IsIdentity() {
			return fmt.Errorf("%w: commitment %d is the identity", ErrVerification, j)
		}
	}

	t.DomainSeparator("range-proof")
	t.AppendU64("n", uint64(nm))

	if err := t.ValidateAndAppendPoint("A", &p.A); err != nil {
		return fmt.Errorf("%w: A: %v", ErrVerification, err)
	}
	if err := t.ValidateAndAppendPoint("S", &p.S); err != nil {
		return fmt.Errorf("%w: S: %v", ErrVerification, err)
	}
	y := t.ChallengeScalar("y")
	z := t.ChallengeScalar("z")

	if err := t.ValidateAndAppendPoint("T_1", &p.T1); err != nil {
		return fmt.Errorf("%w: T_1: %v", ErrVerification, err)
	}
	if err := t.ValidateAndAppendPoint("T_2", &p.T2); err != nil {
		return fmt.Errorf("%w: T_2: %v", ErrVerification, err)
	}
	x := t.ChallengeScalar("x")

	t.AppendScalar("t_x", &p.TX)
	t.AppendScalar("t_x_blinding", &p.TXBlinding)
	t.AppendScalar("e_blinding", &p.EBlinding)

	w := t.ChallengeScalar("w")
	c := t.ChallengeScalar("c")

	uSq, uInvSq, s, err := p.IPP.verificationScalars(nm, t)
	if err != nil {
		return err
	}

	gAll, hAll := generators()
	g, h := encryption.G(), encryption.H()
	a, b := p.IPP.A, p.IPP.B

	var yInv, xSq, tmp curve.Scalar
	yInv.Inverse(&y)
	xSq.Square(&x)

	// z^(2+j)·2^k for bit k of value j
	zAnd2 := make([]curve.Scalar, 0, nm)
	valueScalars := make([]curve.Scalar, m)
	expZ := z
	for j, n := range bitLengths {
		expZ.Mul(&expZ, &z)
		valueScalars[j].Mul(&c, &expZ)
		var exp2 curve.Scalar
		exp2.SetOne()
		for k := 0; k < n; k++ {
			var v curve.Scalar
			v.Mul(&expZ, &exp2)
			zAnd2 = append(zAnd2, v)
			exp2.Add(&exp2, &exp2)
		}
	}

	points := make([]curve.Point, 0, 4+2*len(uSq)+2+2*nm+m)
	scalars := make([]curve.Scalar, 0, cap(points))

	var one, cx, cxSq curve.Scalar
	one.SetOne()
	cx.Mul(&c, &x)
	cxSq.Mul(&c, &xSq)
	points = append(points, p.A, p.S, p.T1, p.T2)
	scalars = append(scalars, one, x, cx, cxSq)

	points = append(points, p.IPP.L...)
	scalars = append(scalars, uSq...)
	points = append(points, p.IPP.R...)
	scalars = append(scalars, uInvSq...)

	// -e_blinding - c·t_x_blinding on H
	var hScalar curve.Scalar
	hScalar.Mul(&c, &p.TXBlinding)
	hScalar.Add(&hScalar, &p.EBlinding)
	hScalar.Neg(&hScalar)
	// w·(t_x - a·b) + c·(δ(y, z) - t_x) on G
	var gScalar curve.Scalar
	tmp.Mul(&a, &b)
	gScalar.Sub(&p.TX, &tmp)
	gScalar.Mul(&gScalar, &w)
	d := delta(bitLengths, nm, &y, &z)
	tmp.Sub(&d, &p.TX)
	tmp.Mul(&tmp, &c)
	gScalar.Add(&gScalar, &tmp)
	points = append(points, h, g)
	scalars = append(scalars, hScalar, gScalar)

	// G_i: -z - a·s_i
	var minusZ curve.Scalar
	minusZ.Neg(&z)
	for i := 0; i < nm; i++ {
		var gi curve.Scalar
		gi.Mul(&a, &s[i])
		gi.Sub(&minusZ, &gi)
		scalars = append(scalars, gi)
	}
	points = append(points, gAll[:nm]...)

	// H_i: z + y^-i·(z^(2+j)·2^k - b·s_(n-1-i))
	var expYInv curve.Scalar
	expYInv.SetOne()
	for i := 0; i < nm; i++ {
		var hi curve.Scalar
		hi.Mul(&b, &s[nm-1-i])
		hi.Sub(&zAnd2[i], &hi)
		hi.Mul(&hi, &expYInv)
		hi.Add(&hi, &z)
		scalars = append(scalars, hi)
		expYInv.Mul(&expYInv, &yInv)
	}
	points = append(points, hAll[:nm]...)

	for j := range commitments {
		points = append(points, commitments[j].Point)
	}
	scalars = append(scalars, valueScalars...)

	check, err := curve.MultiScalarMul(points, scalars)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if !check.IsInfinity() {
		return ErrVerification
	}
	return nil
}

// delta returns (z - z²)·Σ y^i - Σ_j z^(3+j)·(2^n_j - 1).
func delta(bitLengths []int, nm int, y, z *curve.Scalar) curve.Scalar {
	var zSq, out, tmp curve.Scalar
	zSq.Square(z)
	out.Sub(z, &zSq)
	sumY := sumOfPowers(y, nm)
	out.Mul(&out, &sumY)

	expZ := zSq
	for _, n := range bitLengths {
		expZ.Mul(&expZ, z)
		tmp.SetUint64(maxValue(n))
		tmp.Mul(&tmp, &expZ)
		out.Sub(&out, &tmp)
	}
	return out
}

// Bytes encodes A, S, T_1, T_2, t_x, t_x_blinding, e_blinding, then each
// round's L and R, then a and b.
func (p *RangeProof) Bytes() []byte {
	out := make([]byte, 0, 4*curve.PointSize+5*curve.ScalarSize+2*len(p.IPP.L)*curve.PointSize)
	out = curve.AppendPoint(out, &p.A)
	out = curve.AppendPoint(out, &p.S)
	out = curve.AppendPoint(out, &p.T1)
	out = curve.AppendPoint(out, &p.T2)
	out = curve.AppendScalar(out, &p.TX)
	out = curve.AppendScalar(out, &p.TXBlinding)
	out = curve.AppendScalar(out, &p.EBlinding)
	for i := range p.IPP.L {
		out = curve.AppendPoint(out, &p.IPP.L[i])
		out = curve.AppendPoint(out, &p.IPP.R[i])
	}
	out = curve.AppendScalar(out, &p.IPP.A)
	out = curve.AppendScalar(out, &p.IPP.B)
	return out
}

// FromBytes decodes the layout written by Bytes.
func FromBytes(b []byte) (*RangeProof, error) {
	const fixed = 4*curve.PointSize + 5*curve.ScalarSize
	if len(b) < fixed || (len(b)-fixed)%(2*curve.PointSize) != 0 {
		return nil, fmt.Errorf("%w: range proof length %d", curve.ErrInvalidEncoding, len(b))
	}
	rounds := (len(b) - fixed) / (2 * curve.PointSize)
	if rounds >= 32 {
		return nil, fmt.Errorf("%w: range proof has %d rounds", curve.ErrInvalidEncoding, rounds)
	}

	r := curve.NewReader(b)
	p := &RangeProof{
		A:          r.Point(),
		S:          r.Point(),
		T1:         r.Point(),
		T2:         r.Point(),
		TX:         r.Scalar(),
		TXBlinding: r.Scalar(),
		EBlinding:  r.Scalar(),
	}
	p.IPP.L = make([]curve.Point, rounds)
	p.IPP.R = make([]curve.Point, rounds)
	for i := 0; i < rounds; i++ {
		p.IPP.L[i] = r.Point()
		p.IPP.R[i] = r.Point()
	}
	p.IPP.A = r.Scalar()
	p.IPP.B = r.Scalar()
	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("decode range proof: %w", err)
	}
	return p, nil
}
