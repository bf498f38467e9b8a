// Package sigma implements the sigma-protocol sub-proofs of a confidential
// transfer with fee:
//
//   - CiphertextCommitmentEqualityProof: an ElGamal ciphertext and a Pedersen
//     commitment hold the same value.
//   - ValidityProof: a commitment and two decryption handles were formed
//     correctly under one opening, so both recipients can decrypt.
//   - AggregatedValidityProof: two such statements folded into one proof.
//   - FeeSigmaProof: either the fee equals the maximum fee, or the fee
//     satisfies the basis-point rounding relation; the proof does not reveal
//     which.
//
// Every proof is made non-interactive with a shared transcript.Transcript.
// Constructors and verifiers append their own domain separator and commitments
// before drawing a challenge, so a transcript that has already absorbed the
// public statement must be handed to each of them in the same order on both
// sides.
package sigma
