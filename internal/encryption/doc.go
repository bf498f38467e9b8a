// Package encryption provides the commitment and public-key encryption primitives
// consumed by the transfer-with-fee proofs.
//
// Commitments are Pedersen commitments over BN254 G1:
//
//	C = x·G + r·H
//
// where G is the standard generator and H is derived by hashing to the curve,
// so nobody knows log_G(H).
//
// Encryption is twisted ElGamal. A secret key is a scalar s and its public key is
// P = s⁻¹·H. A ciphertext is a Pedersen commitment C = x·G + r·H together with a
// decryption handle D = r·P; the holder of s recovers x·G = C - s·D and solves a
// small discrete log. Because the commitment half does not depend on the
// recipient, one commitment may carry several handles for several recipients,
// all bound to the same opening r.
//
// Commitments, handles and ciphertexts are additively homomorphic and can be
// scaled by public scalars. Values that must be decrypted are kept below 2^32.
package encryption
