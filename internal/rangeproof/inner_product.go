// inner_product.go - Bulletproofs inner-product argument.
//
// Proves knowledge of vectors a, b with
//
//	P = <a, G'> + <b, H'> + <a, b>·Q
//
// where G'_i = g_factors[i]·G_i and H'_i = h_factors[i]·H_i, in log2(n) rounds of
// halving. The verifier side only derives the folding scalars here; the group
// check is merged into the range proof's single multi-scalar multiplication.

package rangeproof

import (
	"fmt"
	"math/bits"

	"feeproof/internal/curve"
	"feeproof/internal/transcript"
)

// InnerProductProof carries one (L, R) pair per round and the final scalars.
type InnerProductProof struct {
	L, R []curve.Point
	A, B curve.Scalar
}

func newInnerProductProof(
	q *curve.Point,
	gFactors, hFactors []curve.Scalar,
	gVec, hVec []curve.Point,
	aVec, bVec []curve.Scalar,
	t *transcript.Transcript,
) (*InnerProductProof, error) {
	n := len(gVec)
	if len(hVec) != n || len(aVec) != n || len(bVec) != n || len(gFactors) != n || len(hFactors) != n {
		return nil, fmt.Errorf("%w: inner product vectors differ in length", ErrInvalidBitLength)
	}
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: inner product size %d is not a power of two", ErrInvalidBitLength, n)
	}

	t.DomainSeparator("inner-product")
	t.AppendU64("n", uint64(n))

	g := append([]curve.Point(nil), gVec...)
	h := append([]curve.Point(nil), hVec...)
	a := append([]curve.Scalar(nil), aVec...)
	b := append([]curve.Scalar(nil), bVec...)

	rounds := bits.TrailingZeros(uint(n))
	proof := &InnerProductProof{
		L: make([]curve.Point, 0, rounds),
		R: make([]curve.Point, 0, rounds),
	}

	// The factors only apply in the first round; afterwards they are folded into g and h.
	first := true
	for n > 1 {
		n /= 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := g[:n], g[n:]
		hL, hR := h[:n], h[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		lPoints := make([]curve.Point, 0, 2*n+1)
		lScalars := make([]curve.Scalar, 0, 2*n+1)
		rPoints := make([]curve.Point, 0, 2*n+1)
		rScalars := make([]curve.Scalar, 0, 2*n+1)
		for i := 0; i < n; i++ {
			sa, sb := aL[i], bR[i]
			ra, rb := aR[i], bL[i]
			if first {
				sa.Mul(&sa, &gFactors[n+i])
				sb.Mul(&sb, &hFactors[i])
				ra.Mul(&ra, &gFactors[i])
				rb.Mul(&rb, &hFactors[n+i])
			}
			lPoints = append(lPoints, gR[i], hL[i])
			lScalars = append(lScalars, sa, sb)
			rPoints = append(rPoints, gL[i], hR[i])
			rScalars = append(rScalars, ra, rb)
		}
		lPoints = append(lPoints, *q)
		lScalars = append(lScalars, cL)
		rPoints = append(rPoints, *q)
		rScalars = append(rScalars, cR)

		lPoint, err := curve.MultiScalarMul(lPoints, lScalars)
		if err != nil {
			return nil, err
		}
		rPoint, err := curve.MultiScalarMul(rPoints, rScalars)
		if err != nil {
			return nil, err
		}
		proof.L = append(proof.L, lPoint)
		proof.R = append(proof.R, rPoint)

		t.AppendPoint("L", &lPoint)
		t.AppendPoint("R", &rPoint)
		u := t.ChallengeScalar("u")
		var uInv curve.Scalar
		uInv.Inverse(&u)

		for i := 0; i < n; i++ {
			var tmp curve.Scalar
			// a_L = u·a_L + u⁻¹·a_R
			aL[i].Mul(&aL[i], &u)
			tmp.Mul(&uInv, &aR[i])
			aL[i].Add(&aL[i], &tmp)
			// b_L = u⁻¹·b_L + u·b_R
			bL[i].Mul(&bL[i], &uInv)
			tmp.Mul(&u, &bR[i])
			bL[i].Add(&bL[i], &tmp)

			gl, gr := uInv, u
			hl, hr := u, uInv
			if first {
				gl.Mul(&gl, &gFactors[i])
				gr.Mul(&gr, &gFactors[n+i])
				hl.Mul(&hl, &hFactors[i])
				hr.Mul(&hr, &hFactors[n+i])
			}
			gL[i] = curve.LinearCombination2(&gL[i], &gl, &gR[i], &gr)
			hL[i] = curve.LinearCombination2(&hL[i], &hl, &hR[i], &hr)
		}

		a, b, g, h = aL, bL, gL, hL
		first = false
	}

	proof.A, proof.B = a[0], b[0]
	return proof, nil
}

// verificationScalars replays the rounds on t and returns u_i², u_i⁻² and the
// vector s with s_i = Π u_j^(±1) chosen by the bits of i.
func (p *InnerProductProof) verificationScalars(n int, t *transcript.Transcript) (uSq, uInvSq, s []curve.Scalar, err error) {
	rounds := len(p.L)
	if rounds >= 32 || len(p.R) != rounds || n != 1<<rounds {
		return nil, nil, nil, fmt.Errorf("%w: inner product has %d rounds for %d bits", ErrVerification, rounds, n)
	}

	t.DomainSeparator("inner-product")
	t.AppendU64("n", uint64(n))

	challenges := make([]curve.Scalar, rounds)
	for i := range challenges {
		if err := t.ValidateAndAppendPoint("L", &p.L[i]); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: L[%d]: %v", ErrVerification, i, err)
		}
		if err := t.ValidateAndAppendPoint("R", &p.R[i]); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: R[%d]: %v", ErrVerification, i, err)
		}
		challenges[i] = t.ChallengeScalar("u")
	}

	uSq = make([]curve.Scalar, rounds)
	uInvSq = make([]curve.Scalar, rounds)
	var allInv curve.Scalar
	allInv.SetOne()
	for i := range challenges {
		var inv curve.Scalar
		inv.Inverse(&challenges[i])
		allInv.Mul(&allInv, &inv)
		uSq[i].Square(&challenges[i])
		uInvSq[i].Square(&inv)
	}

	s = make([]curve.Scalar, n)
	s[0] = allInv
	for i := 1; i < n; i++ {
		lgI := bits.Len(uint(i)) - 1
		k := 1 << lgI
		// u_j for round j pairs with bit (rounds-1-j) of i
		s[i].Mul(&s[i-k], &uSq[rounds-1-lgI])
	}
	return uSq, uInvSq, s, nil
}
