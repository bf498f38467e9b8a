// elgamal.go - Twisted ElGamal keys, decryption handles and ciphertexts.

package encryption

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"feeproof/internal/curve"
)

// MinSeedLength is the shortest seed accepted by NewKeypairFromSeed.
const MinSeedLength = 32

var (
	ErrSeedTooShort  = errors.New("encryption: seed too short")
	ErrZeroSecretKey = errors.New("encryption: secret key is zero")
)

// SecretKey is the ElGamal decryption scalar s.
type SecretKey struct {
	Scalar curve.Scalar
}

// Pubkey is the ElGamal public key P = s⁻¹·H.
type Pubkey struct {
	Point curve.Point
}

// Keypair holds an ElGamal public key and its secret.
type Keypair struct {
	Public Pubkey    `json:"public"`
	Secret SecretKey `json:"secret"`
}

// NewKeypair generates a keypair from crypto/rand.
func NewKeypair() (*Keypair, error) {
	s, err := curve.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	if s.IsZero() {
		return nil, ErrZeroSecretKey
	}
	return keypairFromScalar(&s), nil
}

// NewKeypairFromSeed derives a keypair deterministically from seed.
// The seed is hashed with SHA3-512 and reduced to a scalar.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) < MinSeedLength {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrSeedTooShort, len(seed), MinSeedLength)
	}
	digest := sha3.Sum512(seed)
	s := curve.ScalarFromWideBytes(digest[:])
	if s.IsZero() {
		return nil, ErrZeroSecretKey
	}
	return keypairFromScalar(&s), nil
}

func keypairFromScalar(s *curve.Scalar) *Keypair {
	sk := SecretKey{Scalar: *s}
	return &Keypair{Public: sk.Pubkey(), Secret: sk}
}

// Pubkey returns s⁻¹·H.
func (sk SecretKey) Pubkey() Pubkey {
	var inv curve.Scalar
	inv.Inverse(&sk.Scalar)
	return Pubkey{Point: curve.ScalarMul(&pedersenH, &inv)}
}

// Decrypt returns x·G for the amount x encrypted in ct.
func (sk SecretKey) Decrypt(ct *Ciphertext) curve.Point {
	sd := curve.ScalarMul(&ct.Handle.Point, &sk.Scalar)
	return curve.Sub(&ct.Commitment.Point, &sd)
}

// DecryptU32 recovers an amount below 2^32. ok is false when the plaintext is
// outside that range or ct was not encrypted to this key.
func (sk SecretKey) DecryptU32(ct *Ciphertext) (amount uint64, ok bool) {
	p := sk.Decrypt(ct)
	return decodeU32(&p)
}

// Zeroize overwrites the secret scalar in place.
func (sk *SecretKey) Zeroize() {
	sk.Scalar.SetZero()
}

// Bytes returns the canonical encoding of the secret scalar.
func (sk SecretKey) Bytes() [curve.ScalarSize]byte {
	return curve.EncodeScalar(&sk.Scalar)
}

// SecretKeyFromBytes decodes a canonical, non-zero secret scalar.
func SecretKeyFromBytes(b []byte) (SecretKey, error) {
	s, err := curve.DecodeScalar(b)
	if err != nil {
		return SecretKey{}, fmt.Errorf("decode secret key: %w", err)
	}
	if s.IsZero() {
		return SecretKey{}, ErrZeroSecretKey
	}
	return SecretKey{Scalar: s}, nil
}

// Encrypt encrypts amount under a fresh opening.
func (pk Pubkey) Encrypt(amount uint64) (Ciphertext, Opening, error) {
	o, err := NewOpening()
	if err != nil {
		return Ciphertext{}, Opening{}, err
	}
	return pk.EncryptWithOpening(amount, &o), o, nil
}

// EncryptWithOpening encrypts amount under the given opening.
func (pk Pubkey) EncryptWithOpening(amount uint64, o *Opening) Ciphertext {
	return Ciphertext{
		Commitment: CommitWithOpening(amount, o),
		Handle:     pk.DecryptHandle(o),
	}
}

// DecryptHandle returns r·P for the opening r.
func (pk Pubkey) DecryptHandle(o *Opening) DecryptHandle {
	return DecryptHandle{Point: curve.ScalarMul(&pk.Point, &o.Scalar)}
}

func (pk Pubkey) IsIdentity() bool {
	return pk.Point.IsInfinity()
}

func (pk Pubkey) Equal(other Pubkey) bool {
	return pk.Point.Equal(&other.Point)
}

// Bytes returns the 32-byte compressed encoding of the key.
func (pk Pubkey) Bytes() [curve.PointSize]byte {
	return curve.EncodePoint(&pk.Point)
}

// PubkeyFromBytes decodes a 32-byte compressed public key. The identity decodes
// without error; proofs over it fail verification instead.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	p, err := curve.DecodePoint(b)
	if err != nil {
		return Pubkey{}, fmt.Errorf("decode pubkey: %w", err)
	}
	return Pubkey{Point: p}, nil
}

// EncryptGrouped commits to amount once and derives one decryption handle per
// public key, all bound to the same opening.
func EncryptGrouped(amount uint64, pubkeys ...Pubkey) (Commitment, []DecryptHandle, Opening, error) {
	c, o, err := Commit(amount)
	if err != nil {
		return Commitment{}, nil, Opening{}, err
	}
	handles := make([]DecryptHandle, len(pubkeys))
	for i := range pubkeys {
		handles[i] = pubkeys[i].DecryptHandle(&o)
	}
	return c, handles, o, nil
}

// DecryptHandle binds a commitment's opening to one public key.
type DecryptHandle struct {
	Point curve.Point
}

func (d DecryptHandle) Add(other DecryptHandle) DecryptHandle {
	return DecryptHandle{Point: curve.Add(&d.Point, &other.Point)}
}

func (d DecryptHandle) Sub(other DecryptHandle) DecryptHandle {
	return DecryptHandle{Point: curve.Sub(&d.Point, &other.Point)}
}

func (d DecryptHandle) Mul(s *curve.Scalar) DecryptHandle {
	return DecryptHandle{Point: curve.ScalarMul(&d.Point, s)}
}

func (d DecryptHandle) Equal(other DecryptHandle) bool {
	return d.Point.Equal(&other.Point)
}

func (d DecryptHandle) Bytes() [curve.PointSize]byte {
	return curve.EncodePoint(&d.Point)
}

func DecryptHandleFromBytes(b []byte) (DecryptHandle, error) {
	p, err := curve.DecodePoint(b)
	if err != nil {
		return DecryptHandle{}, fmt.Errorf("decode handle: %w", err)
	}
	return DecryptHandle{Point: p}, nil
}

// CiphertextSize is the encoded length of a Ciphertext.
const CiphertextSize = 2 * curve.PointSize

// Ciphertext is a commitment plus the handle for a single recipient.
type Ciphertext struct {
	Commitment Commitment
	Handle     DecryptHandle
}

func (ct Ciphertext) Add(other Ciphertext) Ciphertext {
	return Ciphertext{
		Commitment: ct.Commitment.Add(other.Commitment),
		Handle:     ct.Handle.Add(other.Handle),
	}
}

func (ct Ciphertext) Sub(other Ciphertext) Ciphertext {
	return Ciphertext{
		Commitment: ct.Commitment.Sub(other.Commitment),
		Handle:     ct.Handle.Sub(other.Handle),
	}
}

func (ct Ciphertext) Mul(s *curve.Scalar) Ciphertext {
	return Ciphertext{
		Commitment: ct.Commitment.Mul(s),
		Handle:     ct.Handle.Mul(s),
	}
}

func (ct Ciphertext) MulUint64(v uint64) Ciphertext {
	s := curve.ScalarFromUint64(v)
	return ct.Mul(&s)
}

func (ct Ciphertext) Equal(other Ciphertext) bool {
	return ct.Commitment.Equal(other.Commitment) && ct.Handle.Equal(other.Handle)
}

// Bytes returns commitment || handle.
func (ct Ciphertext) Bytes() [CiphertextSize]byte {
	var out [CiphertextSize]byte
	c := ct.Commitment.Bytes()
	d := ct.Handle.Bytes()
	copy(out[:curve.PointSize], c[:])
	copy(out[curve.PointSize:], d[:])
	return out
}

// CiphertextFromBytes decodes commitment || handle.
func CiphertextFromBytes(b []byte) (Ciphertext, error) {
	if len(b) != CiphertextSize {
		return Ciphertext{}, fmt.Errorf("%w: ciphertext is %d bytes, want %d", curve.ErrInvalidEncoding, len(b), CiphertextSize)
	}
	c, err := CommitmentFromBytes(b[:curve.PointSize])
	if err != nil {
		return Ciphertext{}, err
	}
	d, err := DecryptHandleFromBytes(b[curve.PointSize:])
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{Commitment: c, Handle: d}, nil
}
