// transcript.go - Merlin Fiat-Shamir transcript used by every proof in this module.
//
// All public values are appended under a label before any challenge that depends
// on them is drawn; prover and verifier must append the same values in the same
// order or their challenges diverge.

package transcript

import (
	"encoding/binary"
	"errors"

	"github.com/gtank/merlin"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
)

// challengeBytes is wide enough that reducing modulo the group order leaves no usable bias.
const challengeBytes = 64

// ErrIdentityPoint is returned when a prover-supplied point is the group identity.
var ErrIdentityPoint = errors.New("transcript: identity point")

// Transcript wraps a merlin transcript with typed appends.
type Transcript struct {
	mt *merlin.Transcript
}

// New starts a transcript under the given application label.
func New(label string) *Transcript {
	return &Transcript{mt: merlin.NewTranscript(label)}
}

func (t *Transcript) AppendMessage(label string, msg []byte) {
	t.mt.AppendMessage([]byte(label), msg)
}

// AppendU64 appends v as 8 little-endian bytes.
func (t *Transcript) AppendU64(label string, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	t.AppendMessage(label, buf[:])
}

func (t *Transcript) AppendScalar(label string, s *curve.Scalar) {
	b := curve.EncodeScalar(s)
	t.AppendMessage(label, b[:])
}

func (t *Transcript) AppendPoint(label string, p *curve.Point) {
	b := curve.EncodePoint(p)
	t.AppendMessage(label, b[:])
}

// ValidateAndAppendPoint appends p, failing first if it is the identity.
func (t *Transcript) ValidateAndAppendPoint(label string, p *curve.Point) error {
	if p.IsInfinity() {
		return ErrIdentityPoint
	}
	t.AppendPoint(label, p)
	return nil
}

func (t *Transcript) AppendPubkey(label string, pk *encryption.Pubkey) {
	t.AppendPoint(label, &pk.Point)
}

func (t *Transcript) AppendCommitment(label string, c *encryption.Commitment) {
	t.AppendPoint(label, &c.Point)
}

func (t *Transcript) AppendHandle(label string, d *encryption.DecryptHandle) {
	t.AppendPoint(label, &d.Point)
}

// AppendCiphertext appends commitment || handle as one message.
func (t *Transcript) AppendCiphertext(label string, ct *encryption.Ciphertext) {
	b := ct.Bytes()
	t.AppendMessage(label, b[:])
}

// DomainSeparator marks the start of a sub-protocol.
func (t *Transcript) DomainSeparator(name string) {
	t.AppendMessage("dom-sep", []byte(name))
}

// ChallengeScalar draws a challenge bound to everything appended so far.
func (t *Transcript) ChallengeScalar(label string) curve.Scalar {
	return curve.ScalarFromWideBytes(t.mt.ExtractBytes([]byte(label), challengeBytes))
}
