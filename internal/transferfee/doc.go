// Package transferfee implements zero-knowledge proofs for a confidential transfer
// that withholds a protocol fee.
//
// Overview:
//   - The transfer amount is split into a low and a high limb; each limb is
//     committed once and carries decryption handles for the source, the
//     destination and the auditor
//   - The new source balance is derived homomorphically from the old encrypted
//     balance, and the fee is encrypted for the destination and the
//     withdraw-withheld authority
//   - Five sub-proofs over one Fiat-Shamir transcript show that the artifact is
//     consistent: ciphertext-commitment equality for the new balance, aggregated
//     validity of the limb encryptions, the fee sigma OR-proof, validity of the
//     fee encryption, and one aggregated range proof over every bounded quantity
//
// Fee semantics:
//   - fee = ceil(amount * rate / 10000), delta_fee = fee*10000 - amount*rate
//   - the fee actually encrypted is min(fee, maximum_fee), selected in constant time
//   - delta_fee is proved to lie in [0, 10000] through a range proof over both
//     delta_fee and 10000 - delta_fee
//
// Variants:
//   - Narrow: 16-bit low limb and 32-bit high limb; the low limb is range-checked
//     from both ends through the extra term 2^16 - 1 - lo
//   - Wide: 32-bit low limb and 32-bit high limb
//
// The variant is fixed when a Protocol is created. Proofs from one variant do
// not verify under the other.
//
// Usage:
//   - p, _ := NewProtocol(Narrow)
//   - data, err := p.Prove(&TransferRequest{...})
//   - err = p.Verify(data)
//   - amount, err := p.DecryptAmount(data, RoleDestination, &secret)
//
// Verification reports every failure as ErrVerificationFailed. The name of the
// failing sub-proof is only written to the debug log.
package transferfee
