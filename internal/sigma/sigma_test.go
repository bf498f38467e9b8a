package sigma

import (
	"testing"

	"github.com/stretchr/testify/require"

	"feeproof/internal/curve"
	"feeproof/internal/encryption"
	"feeproof/internal/transcript"
)

func newKeypair(t *testing.T) *encryption.Keypair {
	t.Helper()
	kp, err := encryption.NewKeypair()
	require.NoError(t, err)
	return kp
}

func TestEqualityProof(t *testing.T) {
	source := newKeypair(t)
	ct, _, err := source.Public.Encrypt(55)
	require.NoError(t, err)
	commitment, opening, err := encryption.Commit(55)
	require.NoError(t, err)

	proof, err := NewCiphertextCommitmentEqualityProof(source, &ct, 55, &opening, transcript.New("test"))
	require.NoError(t, err)

	t.Run("verifies", func(t *testing.T) {
		require.NoError(t, proof.Verify(&source.Public, &ct, &commitment, transcript.New("test")))
	})

	t.Run("different value", func(t *testing.T) {
		other, _, err := encryption.Commit(56)
		require.NoError(t, err)
		err = proof.Verify(&source.Public, &ct, &other, transcript.New("test"))
		require.ErrorIs(t, err, ErrEqualityProof)
	})

	t.Run("different transcript", func(t *testing.T) {
		err := proof.Verify(&source.Public, &ct, &commitment, transcript.New("other"))
		require.ErrorIs(t, err, ErrEqualityProof)
	})

	t.Run("bytes round trip", func(t *testing.T) {
		b := proof.Bytes()
		decoded, err := CiphertextCommitmentEqualityProofFromBytes(b[:])
		require.NoError(t, err)
		require.Equal(t, proof, decoded)
		require.NoError(t, decoded.Verify(&source.Public, &ct, &commitment, transcript.New("test")))
	})

	t.Run("wrong length", func(t *testing.T) {
		b := proof.Bytes()
		_, err := CiphertextCommitmentEqualityProofFromBytes(b[1:])
		require.ErrorIs(t, err, curve.ErrInvalidEncoding)
	})
}

func TestValidityProof(t *testing.T) {
	dest := newKeypair(t)
	auditor := newKeypair(t)

	c, handles, opening, err := encryption.EncryptGrouped(65, dest.Public, auditor.Public)
	require.NoError(t, err)

	proof, err := NewValidityProof(&dest.Public, &auditor.Public, 65, &opening, transcript.New("test"))
	require.NoError(t, err)

	t.Run("verifies", func(t *testing.T) {
		err := proof.Verify(&c, &dest.Public, &auditor.Public, &handles[0], &handles[1], transcript.New("test"))
		require.NoError(t, err)
	})

	t.Run("swapped handles", func(t *testing.T) {
		err := proof.Verify(&c, &dest.Public, &auditor.Public, &handles[1], &handles[0], transcript.New("test"))
		require.ErrorIs(t, err, ErrValidityProof)
	})

	t.Run("identity pubkey", func(t *testing.T) {
		var identity encryption.Pubkey
		id, idHandles, idOpening, err := encryption.EncryptGrouped(65, dest.Public, identity)
		require.NoError(t, err)
		p, err := NewValidityProof(&dest.Public, &identity, 65, &idOpening, transcript.New("test"))
		require.NoError(t, err)
		err = p.Verify(&id, &dest.Public, &identity, &idHandles[0], &idHandles[1], transcript.New("test"))
		require.ErrorIs(t, err, ErrValidityProof)
	})

	t.Run("bytes round trip", func(t *testing.T) {
		b := proof.Bytes()
		decoded, err := ValidityProofFromBytes(b[:])
		require.NoError(t, err)
		require.Equal(t, proof, decoded)
	})
}

func TestAggregatedValidityProof(t *testing.T) {
	dest := newKeypair(t)
	auditor := newKeypair(t)

	cLo, hLo, oLo, err := encryption.EncryptGrouped(1<<16-1, dest.Public, auditor.Public)
	require.NoError(t, err)
	cHi, hHi, oHi, err := encryption.EncryptGrouped(1<<32-1, dest.Public, auditor.Public)
	require.NoError(t, err)

	proof, err := NewAggregatedValidityProof(&dest.Public, &auditor.Public,
		[2]uint64{1<<16 - 1, 1<<32 - 1}, [2]*encryption.Opening{&oLo, &oHi}, transcript.New("test"))
	require.NoError(t, err)

	commitments := [2]encryption.Commitment{cLo, cHi}
	destHandles := [2]encryption.DecryptHandle{hLo[0], hHi[0]}
	auditorHandles := [2]encryption.DecryptHandle{hLo[1], hHi[1]}

	require.NoError(t, proof.Verify(&dest.Public, &auditor.Public, commitments, destHandles, auditorHandles, transcript.New("test")))

	t.Run("limbs swapped", func(t *testing.T) {
		swapped := [2]encryption.Commitment{cHi, cLo}
		err := proof.Verify(&dest.Public, &auditor.Public, swapped, destHandles, auditorHandles, transcript.New("test"))
		require.ErrorIs(t, err, ErrValidityProof)
	})

	t.Run("bytes round trip", func(t *testing.T) {
		b := proof.Bytes()
		decoded, err := AggregatedValidityProofFromBytes(b[:])
		require.NoError(t, err)
		require.NoError(t, decoded.Verify(&dest.Public, &auditor.Public, commitments, destHandles, auditorHandles, transcript.New("test")))
	})
}

// feeStatement builds the commitments of a fee sigma statement the way the
// transfer prover does.
type feeStatement struct {
	fee, delta, claimed                      encryption.Commitment
	feeOpening, deltaOpening, claimedOpening encryption.Opening
	appliedFee, deltaFee, maxFee             uint64
}

func newFeeStatement(t *testing.T, amount uint64, rate uint16, appliedFee, deltaFee, maxFee uint64) *feeStatement {
	t.Helper()
	amountCommitment, amountOpening, err := encryption.Commit(amount)
	require.NoError(t, err)
	feeCommitment, feeOpening, err := encryption.Commit(appliedFee)
	require.NoError(t, err)
	claimed, claimedOpening, err := encryption.Commit(deltaFee)
	require.NoError(t, err)

	delta := feeCommitment.MulUint64(10000).Sub(amountCommitment.MulUint64(uint64(rate)))
	deltaOpening := feeOpening.MulUint64(10000).Sub(amountOpening.MulUint64(uint64(rate)))

	return &feeStatement{
		fee: feeCommitment, delta: delta, claimed: claimed,
		feeOpening: feeOpening, deltaOpening: deltaOpening, claimedOpening: claimedOpening,
		appliedFee: appliedFee, deltaFee: deltaFee, maxFee: maxFee,
	}
}

func (s *feeStatement) prove(t *testing.T) *FeeSigmaProof {
	t.Helper()
	proof, err := NewFeeSigmaProof(
		CommittedValue{Value: s.appliedFee, Commitment: &s.fee, Opening: &s.feeOpening},
		CommittedValue{Value: s.deltaFee, Commitment: &s.delta, Opening: &s.deltaOpening},
		CommittedValue{Value: s.deltaFee, Commitment: &s.claimed, Opening: &s.claimedOpening},
		s.maxFee, transcript.New("test"))
	require.NoError(t, err)
	return proof
}

func (s *feeStatement) verify(p *FeeSigmaProof) error {
	return p.Verify(&s.fee, &s.delta, &s.claimed, s.maxFee, transcript.New("test"))
}

func TestFeeSigmaProof(t *testing.T) {
	t.Run("fee below maximum", func(t *testing.T) {
		// 55 * 400 = 22000, fee = 3, delta = 8000
		s := newFeeStatement(t, 55, 400, 3, 8000, 10)
		require.NoError(t, s.verify(s.prove(t)))
	})

	t.Run("fee clamped to maximum", func(t *testing.T) {
		// 100 * 400 = 40000, fee = 4 clamped to 3, delta = 0
		s := newFeeStatement(t, 100, 400, 3, 0, 3)
		require.NoError(t, s.verify(s.prove(t)))
	})

	t.Run("wrong claimed delta", func(t *testing.T) {
		s := newFeeStatement(t, 55, 400, 3, 8000, 10)
		proof := s.prove(t)
		wrong, _, err := encryption.Commit(7999)
		require.NoError(t, err)
		s.claimed = wrong
		require.ErrorIs(t, s.verify(proof), ErrFeeSigmaProof)
	})

	t.Run("wrong maximum", func(t *testing.T) {
		s := newFeeStatement(t, 100, 400, 3, 0, 3)
		proof := s.prove(t)
		s.maxFee = 4
		require.ErrorIs(t, s.verify(proof), ErrFeeSigmaProof)
	})

	t.Run("tampered challenge", func(t *testing.T) {
		s := newFeeStatement(t, 55, 400, 3, 8000, 10)
		proof := s.prove(t)
		one := curve.ScalarFromUint64(1)
		proof.CMax.Add(&proof.CMax, &one)
		require.ErrorIs(t, s.verify(proof), ErrFeeSigmaProof)
	})

	t.Run("bytes round trip", func(t *testing.T) {
		s := newFeeStatement(t, 55, 400, 3, 8000, 10)
		proof := s.prove(t)
		b := proof.Bytes()
		decoded, err := FeeSigmaProofFromBytes(b[:])
		require.NoError(t, err)
		require.Equal(t, proof, decoded)
		require.NoError(t, s.verify(decoded))
	})
}
