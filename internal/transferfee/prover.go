// prover.go - Construction of transfer-with-fee artifacts.

package transferfee

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"feeproof/internal/encryption"
	"feeproof/internal/rangeproof"
	"feeproof/internal/sigma"
)

// Protocol builds, verifies and decrypts transfers for one limb layout.
// A Protocol holds no mutable state and may be shared between goroutines.
type Protocol struct {
	variant Variant
}

// NewProtocol returns a Protocol for the given variant.
func NewProtocol(v Variant) (*Protocol, error) {
	if !v.valid() {
		return nil, fmt.Errorf("transferfee: unknown variant %d", uint8(v))
	}
	return &Protocol{variant: v}, nil
}

// Variant reports the limb layout the protocol was created with.
func (p *Protocol) Variant() Variant {
	return p.variant
}

// TransferRequest carries the prover's inputs.
type TransferRequest struct {
	Amount uint64
	// SpendableBalance is the cleartext value of SourceCiphertext.
	SpendableBalance          uint64
	SourceCiphertext          encryption.Ciphertext
	Source                    *encryption.Keypair
	Destination               encryption.Pubkey
	Auditor                   encryption.Pubkey
	WithdrawWithheldAuthority encryption.Pubkey
	FeeParameters             FeeParameters
}

// witness is everything secret the sub-proofs need.
type witness struct {
	source     *encryption.Keypair
	newBalance uint64
	lo, hi     uint64
	loOpening  encryption.Opening
	hiOpening  encryption.Opening
	appliedFee uint64
	deltaFee   uint64
	feeOpening encryption.Opening
}

func (w *witness) zeroize() {
	w.newBalance, w.lo, w.hi, w.appliedFee, w.deltaFee = 0, 0, 0, 0, 0
	w.loOpening.Zeroize()
	w.hiOpening.Zeroize()
	w.feeOpening.Zeroize()
}

// Prove builds the transfer artifact. No partial artifact is returned on error.
// Steps:
//  1. Split the amount into limbs
//  2. Encrypt both limbs under source, destination and auditor
//  3. Derive the new source ciphertext from the old balance
//  4. Compute the fee and encrypt the clamped fee
//  5. Bind the public statement into the transcript
//  6. Build the five sub-proofs
func (p *Protocol) Prove(req *TransferRequest) (*TransferWithFeeData, error) {
	start := time.Now()
	layout := p.variant.layout()

	// Step 1: split
	lo, hi, err := SplitAmount(req.Amount, layout.loBits, layout.hiBits)
	if err != nil {
		return nil, err
	}
	if req.Source == nil {
		return nil, fmt.Errorf("transferfee: missing source keypair")
	}
	if req.SpendableBalance < req.Amount {
		return nil, ErrInsufficientBalance
	}

	keys := TransferWithFeeKeys{
		Source:                    req.Source.Public,
		Destination:               req.Destination,
		Auditor:                   req.Auditor,
		WithdrawWithheldAuthority: req.WithdrawWithheldAuthority,
	}
	w := &witness{source: req.Source, lo: lo, hi: hi}
	defer w.zeroize()

	// Step 2: the limbs are independent, encrypt them concurrently
	var (
		loEnc, hiEnc LimbEncryption
		g            errgroup.Group
	)
	g.Go(func() error {
		var err error
		loEnc, w.loOpening, err = newLimbEncryption(lo, &keys)
		return err
	})
	g.Go(func() error {
		var err error
		hiEnc, w.hiOpening, err = newLimbEncryption(hi, &keys)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("encrypt transfer amount: %w", err)
	}

	// Step 3: new source balance
	w.newBalance = req.SpendableBalance - req.Amount
	loSource, _ := loEnc.Ciphertext(RoleSource)
	hiSource, _ := hiEnc.Ciphertext(RoleSource)
	newSource := req.SourceCiphertext.Sub(CombineLoHiCiphertexts(loSource, hiSource, layout.loBits))

	// Step 4: fee
	fee, deltaFee, err := CalculateFee(req.Amount, req.FeeParameters.FeeRateBasisPoints)
	if err != nil {
		return nil, err
	}
	w.appliedFee = ClampFee(fee, req.FeeParameters.MaximumFee)
	w.deltaFee = deltaFee
	feeEnc, feeOpening, err := newFeeEncryption(w.appliedFee, &keys)
	if err != nil {
		return nil, fmt.Errorf("encrypt fee: %w", err)
	}
	w.feeOpening = feeOpening

	data := &TransferWithFeeData{
		Lo:                  loEnc,
		Hi:                  hiEnc,
		Keys:                keys,
		NewSourceCiphertext: newSource,
		Fee:                 feeEnc,
		FeeParameters:       req.FeeParameters,
	}

	// Step 5 and 6: transcript and sub-proofs
	proof, err := p.buildProof(data, w)
	if err != nil {
		return nil, err
	}
	data.Proof = *proof

	l := componentLogger()
	l.Debug().
		Str("variant", p.variant.String()).
		Dur("elapsed", time.Since(start)).
		Msg("transfer with fee proof constructed")
	return data, nil
}

func (p *Protocol) buildProof(data *TransferWithFeeData, w *witness) (*Proof, error) {
	layout := p.variant.layout()
	t := bindTranscript(data.statement())

	newSourceCommitment, newSourceOpening, err := encryption.Commit(w.newBalance)
	if err != nil {
		return nil, fmt.Errorf("commit new source balance: %w", err)
	}
	defer newSourceOpening.Zeroize()
	claimedCommitment, claimedOpening, err := encryption.Commit(w.deltaFee)
	if err != nil {
		return nil, fmt.Errorf("commit fee delta: %w", err)
	}
	defer claimedOpening.Zeroize()
	appendProofCommitments(t, &newSourceCommitment, &claimedCommitment)

	equality, err := sigma.NewCiphertextCommitmentEqualityProof(w.source, &data.NewSourceCiphertext, w.newBalance, &newSourceOpening, t)
	if err != nil {
		return nil, err
	}

	amountValidity, err := sigma.NewAggregatedValidityProof(
		&data.Keys.Destination, &data.Keys.Auditor,
		[2]uint64{w.lo, w.hi},
		[2]*encryption.Opening{&w.loOpening, &w.hiOpening},
		t,
	)
	if err != nil {
		return nil, err
	}

	rate := data.FeeParameters.FeeRateBasisPoints
	deltaCommitment := DeltaCommitment(data.Lo.Commitment, data.Hi.Commitment, data.Fee.Commitment, rate, layout.loBits)
	deltaOpening := DeltaOpening(w.loOpening, w.hiOpening, w.feeOpening, rate, layout.loBits)
	defer deltaOpening.Zeroize()
	feeSigma, err := sigma.NewFeeSigmaProof(
		sigma.CommittedValue{Value: w.appliedFee, Commitment: &data.Fee.Commitment, Opening: &w.feeOpening},
		sigma.CommittedValue{Value: w.deltaFee, Commitment: &deltaCommitment, Opening: &deltaOpening},
		sigma.CommittedValue{Value: w.deltaFee, Commitment: &claimedCommitment, Opening: &claimedOpening},
		data.FeeParameters.MaximumFee,
		t,
	)
	if err != nil {
		return nil, err
	}

	feeValidity, err := sigma.NewValidityProof(
		&data.Keys.Destination, &data.Keys.WithdrawWithheldAuthority,
		w.appliedFee, &w.feeOpening,
		t,
	)
	if err != nil {
		return nil, err
	}

	amounts, openings := p.rangeWitness(w, &newSourceOpening, &claimedOpening)
	rp, err := rangeproof.New(amounts, p.variant.rangeBitLengths(), openings, t)
	if err != nil {
		return nil, fmt.Errorf("range proof: %w", err)
	}

	return &Proof{
		NewSourceCommitment: newSourceCommitment,
		ClaimedCommitment:   claimedCommitment,
		Equality:            *equality,
		AmountValidity:      *amountValidity,
		FeeSigma:            *feeSigma,
		FeeValidity:         *feeValidity,
		Range:               *rp,
	}, nil
}

// rangeWitness lists the range proof values and openings in the order of
// rangeBitLengths. The negated terms pair each bounded value with its distance
// to the bound, so the bound is enforced from above as well.
func (p *Protocol) rangeWitness(w *witness, newSourceOpening, claimedOpening *encryption.Opening) ([]uint64, []*encryption.Opening) {
	amounts := []uint64{w.newBalance, w.lo}
	openings := []*encryption.Opening{newSourceOpening, &w.loOpening}

	if p.variant.layout().negatedLo {
		negLo := encryption.Opening{}.Sub(w.loOpening)
		amounts = append(amounts, 1<<narrowLoBits-1-w.lo)
		openings = append(openings, &negLo)
	}

	negClaimed := encryption.Opening{}.Sub(*claimedOpening)
	amounts = append(amounts, w.hi, w.deltaFee, MaxFeeBasisPoints-w.deltaFee)
	openings = append(openings, &w.hiOpening, claimedOpening, &negClaimed)
	return amounts, openings
}
