// binder.go - Binds the public statement of a transfer into a fresh transcript.
//
// Prover and verifier both call bindTranscript before any sub-proof; the append
// order below is part of the proof format.

package transferfee

import (
	"feeproof/internal/encryption"
	"feeproof/internal/transcript"
)

const transcriptLabel = "FeeProof"

// statementView is the public part of a transfer, shared by Prove and Verify.
type statementView struct {
	keys      *TransferWithFeeKeys
	lo, hi    *LimbEncryption
	newSource *encryption.Ciphertext
	fee       *FeeEncryption
	params    *FeeParameters
}

func (d *TransferWithFeeData) statement() statementView {
	return statementView{
		keys:      &d.Keys,
		lo:        &d.Lo,
		hi:        &d.Hi,
		newSource: &d.NewSourceCiphertext,
		fee:       &d.Fee,
		params:    &d.FeeParameters,
	}
}

func bindTranscript(s statementView) *transcript.Transcript {
	t := transcript.New(transcriptLabel)

	t.AppendPubkey("pubkey-source", &s.keys.Source)
	t.AppendPubkey("pubkey-dest", &s.keys.Destination)
	t.AppendPubkey("pubkey-auditor", &s.keys.Auditor)
	t.AppendPubkey("withdraw_withheld_authority_pubkey", &s.keys.WithdrawWithheldAuthority)

	t.AppendCommitment("comm-lo-amount", &s.lo.Commitment)
	t.AppendHandle("handle-lo-source", &s.lo.SourceHandle)
	t.AppendHandle("handle-lo-dest", &s.lo.DestinationHandle)
	t.AppendHandle("handle-lo-auditor", &s.lo.AuditorHandle)

	t.AppendCommitment("comm-hi-amount", &s.hi.Commitment)
	t.AppendHandle("handle-hi-source", &s.hi.SourceHandle)
	t.AppendHandle("handle-hi-dest", &s.hi.DestinationHandle)
	t.AppendHandle("handle-hi-auditor", &s.hi.AuditorHandle)

	t.AppendCiphertext("ctxt-new-source", s.newSource)

	t.AppendCommitment("comm-fee", &s.fee.Commitment)
	t.AppendHandle("fee-dest-handle", &s.fee.DestinationHandle)
	t.AppendHandle("handle-fee-auditor", &s.fee.WithdrawWithheldAuthorityHandle)

	params := s.params.Bytes()
	t.AppendMessage("fee-parameters", params[:])

	return t
}

// appendProofCommitments adds the two commitments the prover introduces before
// the first sub-proof.
func appendProofCommitments(t *transcript.Transcript, newSource, claimed *encryption.Commitment) {
	t.AppendCommitment("commitment-new-source", newSource)
	t.AppendCommitment("commitment-claimed", claimed)
}
