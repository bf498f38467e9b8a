// verifier.go - Verification of transfer-with-fee artifacts.

package transferfee

import (
	"time"

	"feeproof/internal/encryption"
	"feeproof/internal/rangeproof"
	"feeproof/internal/sigma"
	"feeproof/internal/transcript"
)

// statement is one sub-proof check. The five implementations are run in a fixed
// order against one transcript.
type statement interface {
	name() string
	verify(t *transcript.Transcript) error
}

type equalityStatement struct {
	proof      *sigma.CiphertextCommitmentEqualityProof
	source     *encryption.Pubkey
	ciphertext *encryption.Ciphertext
	commitment *encryption.Commitment
}

func (s equalityStatement) name() string { return "equality" }

func (s equalityStatement) verify(t *transcript.Transcript) error {
	return s.proof.Verify(s.source, s.ciphertext, s.commitment, t)
}

type amountValidityStatement struct {
	proof       *sigma.AggregatedValidityProof
	destination *encryption.Pubkey
	auditor     *encryption.Pubkey
	lo, hi      *LimbEncryption
}

func (s amountValidityStatement) name() string { return "aggregated-validity" }

func (s amountValidityStatement) verify(t *transcript.Transcript) error {
	return s.proof.Verify(
		s.destination, s.auditor,
		[2]encryption.Commitment{s.lo.Commitment, s.hi.Commitment},
		[2]encryption.DecryptHandle{s.lo.DestinationHandle, s.hi.DestinationHandle},
		[2]encryption.DecryptHandle{s.lo.AuditorHandle, s.hi.AuditorHandle},
		t,
	)
}

type feeSigmaStatement struct {
	proof   *sigma.FeeSigmaProof
	fee     *encryption.Commitment
	delta   encryption.Commitment
	claimed *encryption.Commitment
	maxFee  uint64
}

func (s feeSigmaStatement) name() string { return "fee-sigma" }

func (s feeSigmaStatement) verify(t *transcript.Transcript) error {
	return s.proof.Verify(s.fee, &s.delta, s.claimed, s.maxFee, t)
}

type feeValidityStatement struct {
	proof       *sigma.ValidityProof
	destination *encryption.Pubkey
	authority   *encryption.Pubkey
	fee         *FeeEncryption
}

func (s feeValidityStatement) name() string { return "fee-validity" }

func (s feeValidityStatement) verify(t *transcript.Transcript) error {
	return s.proof.Verify(&s.fee.Commitment, s.destination, s.authority,
		&s.fee.DestinationHandle, &s.fee.WithdrawWithheldAuthorityHandle, t)
}

type rangeStatement struct {
	proof       *rangeproof.RangeProof
	commitments []*encryption.Commitment
	bitLengths  []int
}

func (s rangeStatement) name() string { return "range" }

func (s rangeStatement) verify(t *transcript.Transcript) error {
	return s.proof.Verify(s.commitments, s.bitLengths, t)
}

// statements lists the sub-proof checks of data in proof order.
func (p *Protocol) statements(data *TransferWithFeeData) []statement {
	layout := p.variant.layout()
	proof := &data.Proof

	delta := DeltaCommitment(data.Lo.Commitment, data.Hi.Commitment, data.Fee.Commitment,
		data.FeeParameters.FeeRateBasisPoints, layout.loBits)

	return []statement{
		equalityStatement{
			proof:      &proof.Equality,
			source:     &data.Keys.Source,
			ciphertext: &data.NewSourceCiphertext,
			commitment: &proof.NewSourceCommitment,
		},
		amountValidityStatement{
			proof:       &proof.AmountValidity,
			destination: &data.Keys.Destination,
			auditor:     &data.Keys.Auditor,
			lo:          &data.Lo,
			hi:          &data.Hi,
		},
		feeSigmaStatement{
			proof:   &proof.FeeSigma,
			fee:     &data.Fee.Commitment,
			delta:   delta,
			claimed: &proof.ClaimedCommitment,
			maxFee:  data.FeeParameters.MaximumFee,
		},
		feeValidityStatement{
			proof:       &proof.FeeValidity,
			destination: &data.Keys.Destination,
			authority:   &data.Keys.WithdrawWithheldAuthority,
			fee:         &data.Fee,
		},
		rangeStatement{
			proof:       &proof.Range,
			commitments: p.rangeCommitments(data),
			bitLengths:  p.variant.rangeBitLengths(),
		},
	}
}

// rangeCommitments mirrors rangeWitness on public data.
func (p *Protocol) rangeCommitments(data *TransferWithFeeData) []*encryption.Commitment {
	maxLo, maxFeeBasisPoints := constantCommitments()
	proof := &data.Proof

	out := []*encryption.Commitment{&proof.NewSourceCommitment, &data.Lo.Commitment}
	if p.variant.layout().negatedLo {
		negLo := maxLo.Sub(data.Lo.Commitment)
		out = append(out, &negLo)
	}
	negClaimed := maxFeeBasisPoints.Sub(proof.ClaimedCommitment)
	return append(out, &data.Hi.Commitment, &proof.ClaimedCommitment, &negClaimed)
}

// Verify checks every sub-proof of data, stopping at the first failure. All
// failures are reported as ErrVerificationFailed.
func (p *Protocol) Verify(data *TransferWithFeeData) error {
	start := time.Now()
	l := componentLogger()

	t := bindTranscript(data.statement())
	appendProofCommitments(t, &data.Proof.NewSourceCommitment, &data.Proof.ClaimedCommitment)

	for _, s := range p.statements(data) {
		if err := s.verify(t); err != nil {
			l.Debug().
				Str("variant", p.variant.String()).
				Str("sub_proof", s.name()).
				Err(err).
				Msg("transfer with fee proof rejected")
			return ErrVerificationFailed
		}
	}

	l.Debug().
		Str("variant", p.variant.String()).
		Dur("elapsed", time.Since(start)).
		Msg("transfer with fee proof verified")
	return nil
}
