package transferfee

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizes(t *testing.T) {
	require.Equal(t, 128, LimbEncryptionSize)
	require.Equal(t, 96, FeeEncryptionSize)
	require.Equal(t, 128, KeysSize)
	require.Equal(t, 1632, ProofSize)
	require.Equal(t, 2186, TransferWithFeeDataSize)
}

func TestTransferWithFeeDataEncoding(t *testing.T) {
	ps := newParties(t)
	proto := newProtocol(t, Narrow)
	data, err := proto.Prove(ps.request(t, 100, 120, defaultParams))
	require.NoError(t, err)

	b, err := data.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, TransferWithFeeDataSize)

	t.Run("round trip", func(t *testing.T) {
		decoded, err := ParseTransferWithFeeData(b)
		require.NoError(t, err)
		require.NoError(t, proto.Verify(decoded))

		again, err := decoded.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, b, again)
	})

	t.Run("fields", func(t *testing.T) {
		lo := data.Lo.Bytes()
		decodedLo, err := LimbEncryptionFromBytes(lo[:])
		require.NoError(t, err)
		require.Equal(t, data.Lo, decodedLo)

		fee := data.Fee.Bytes()
		decodedFee, err := FeeEncryptionFromBytes(fee[:])
		require.NoError(t, err)
		require.Equal(t, data.Fee, decodedFee)

		keys := data.Keys.Bytes()
		decodedKeys, err := TransferWithFeeKeysFromBytes(keys[:])
		require.NoError(t, err)
		require.Equal(t, data.Keys, decodedKeys)

		proof, err := data.Proof.Bytes()
		require.NoError(t, err)
		decodedProof, err := ProofFromBytes(proof[:])
		require.NoError(t, err)
		again, err := decodedProof.Bytes()
		require.NoError(t, err)
		require.Equal(t, proof, again)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := ParseTransferWithFeeData(b[1:])
		require.ErrorIs(t, err, ErrMalformedInput)
		_, err = ParseTransferWithFeeData(append(append([]byte{}, b...), 0))
		require.ErrorIs(t, err, ErrMalformedInput)
		_, err = LimbEncryptionFromBytes(make([]byte, 3))
		require.ErrorIs(t, err, ErrMalformedInput)
		_, err = ProofFromBytes(nil)
		require.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("invalid point", func(t *testing.T) {
		bad := append([]byte{}, b...)
		for i := 0; i < 32; i++ {
			bad[i] = 0xff
		}
		_, err := ParseTransferWithFeeData(bad)
		require.ErrorIs(t, err, ErrMalformedInput)
	})

	t.Run("unmarshal failure leaves value unchanged", func(t *testing.T) {
		target := *data
		require.Error(t, target.UnmarshalBinary(b[:10]))
		require.Equal(t, *data, target)
	})

	t.Run("flipped bytes are rejected", func(t *testing.T) {
		// one offset in every top-level field
		offsets := []int{
			5,                                   // lo
			LimbEncryptionSize + 40,             // hi
			2*LimbEncryptionSize + 70,           // keys
			2*LimbEncryptionSize + KeysSize + 9, // new source ciphertext
			2*LimbEncryptionSize + KeysSize + 64 + 50,                         // fee
			2*LimbEncryptionSize + KeysSize + 64 + FeeEncryptionSize + 1,      // fee parameters
			2*LimbEncryptionSize + KeysSize + 64 + FeeEncryptionSize + 10 + 3, // proof
			TransferWithFeeDataSize - 7,
		}
		for _, off := range offsets {
			bad := append([]byte{}, b...)
			bad[off] ^= 0x01
			decoded, err := ParseTransferWithFeeData(bad)
			if err != nil {
				require.ErrorIs(t, err, ErrMalformedInput)
				continue
			}
			require.ErrorIs(t, proto.Verify(decoded), ErrVerificationFailed, "offset %d", off)
		}
	})
}
