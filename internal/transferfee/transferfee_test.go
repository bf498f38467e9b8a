package transferfee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"feeproof/internal/encryption"
)

type parties struct {
	source, destination, auditor, authority *encryption.Keypair
}

func newParties(t *testing.T) parties {
	t.Helper()
	kps := make([]*encryption.Keypair, 4)
	for i := range kps {
		kp, err := encryption.NewKeypair()
		require.NoError(t, err)
		kps[i] = kp
	}
	return parties{source: kps[0], destination: kps[1], auditor: kps[2], authority: kps[3]}
}

func (p parties) request(t *testing.T, amount, balance uint64, params FeeParameters) *TransferRequest {
	t.Helper()
	ct, _, err := p.source.Public.Encrypt(balance)
	require.NoError(t, err)
	return &TransferRequest{
		Amount:                    amount,
		SpendableBalance:          balance,
		SourceCiphertext:          ct,
		Source:                    p.source,
		Destination:               p.destination.Public,
		Auditor:                   p.auditor.Public,
		WithdrawWithheldAuthority: p.authority.Public,
		FeeParameters:             params,
	}
}

func newProtocol(t *testing.T, v Variant) *Protocol {
	t.Helper()
	p, err := NewProtocol(v)
	require.NoError(t, err)
	return p
}

var defaultParams = FeeParameters{FeeRateBasisPoints: 400, MaximumFee: 3}

func TestProveVerify(t *testing.T) {
	cases := []struct {
		name    string
		variant Variant
		amount  uint64
		balance uint64
		params  FeeParameters
		fee     uint64
	}{
		{name: "zero amount", variant: Narrow, amount: 0, balance: 120, params: defaultParams, fee: 0},
		{name: "largest narrow amount", variant: Narrow, amount: 1<<48 - 1, balance: math.MaxUint64, params: defaultParams, fee: 3},
		{name: "fee clamped", variant: Narrow, amount: 100, balance: 120, params: defaultParams, fee: 3},
		{name: "fee below maximum", variant: Narrow, amount: 100, balance: 120, params: FeeParameters{FeeRateBasisPoints: 400, MaximumFee: 10}, fee: 4},
		{name: "fee equals maximum", variant: Narrow, amount: 75, balance: 75, params: defaultParams, fee: 3},
		{name: "rounded fee", variant: Narrow, amount: 1, balance: 1, params: FeeParameters{FeeRateBasisPoints: 1, MaximumFee: 100}, fee: 1},
		{name: "zero rate", variant: Narrow, amount: 5000, balance: 5000, params: FeeParameters{MaximumFee: 100}, fee: 0},
		{name: "wide", variant: Wide, amount: 1<<40 + 12345, balance: 1 << 41, params: FeeParameters{FeeRateBasisPoints: 25, MaximumFee: 1 << 20}, fee: 1 << 20},
		{name: "wide unclamped", variant: Wide, amount: 77_777, balance: 100_000, params: FeeParameters{FeeRateBasisPoints: 25, MaximumFee: 1 << 20}, fee: 195},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ps := newParties(t)
			proto := newProtocol(t, tc.variant)

			data, err := proto.Prove(ps.request(t, tc.amount, tc.balance, tc.params))
			require.NoError(t, err)
			require.NoError(t, proto.Verify(data))

			for _, role := range []struct {
				role Role
				kp   *encryption.Keypair
			}{
				{RoleSource, ps.source},
				{RoleDestination, ps.destination},
				{RoleAuditor, ps.auditor},
			} {
				amount, err := proto.DecryptAmount(data, role.role, &role.kp.Secret)
				require.NoError(t, err, role.role.String())
				require.Equal(t, tc.amount, amount, role.role.String())
			}

			fee, err := proto.DecryptFee(data, RoleDestination, &ps.destination.Secret)
			require.NoError(t, err)
			require.Equal(t, tc.fee, fee)
			fee, err = proto.DecryptFee(data, RoleWithdrawWithheldAuthority, &ps.authority.Secret)
			require.NoError(t, err)
			require.Equal(t, tc.fee, fee)

			// the new source ciphertext holds the remaining balance
			remaining := ps.source.Secret.Decrypt(&data.NewSourceCiphertext)
			want := encryption.Encode(tc.balance - tc.amount)
			require.True(t, want.Point.Equal(&remaining))
		})
	}
}

func TestProveRejects(t *testing.T) {
	ps := newParties(t)

	t.Run("amount too large for narrow", func(t *testing.T) {
		_, err := newProtocol(t, Narrow).Prove(ps.request(t, 1<<48, math.MaxUint64, defaultParams))
		require.ErrorIs(t, err, ErrRange)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := newProtocol(t, Narrow).Prove(ps.request(t, 121, 120, defaultParams))
		require.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("fee overflow", func(t *testing.T) {
		params := FeeParameters{FeeRateBasisPoints: math.MaxUint16, MaximumFee: 3}
		_, err := newProtocol(t, Wide).Prove(ps.request(t, math.MaxUint64, math.MaxUint64, params))
		require.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := NewProtocol(Variant(7))
		require.Error(t, err)
	})
}

func TestIdentityKeys(t *testing.T) {
	var identity encryption.Pubkey
	cases := map[string]func(r *TransferRequest){
		"destination": func(r *TransferRequest) { r.Destination = identity },
		"auditor":     func(r *TransferRequest) { r.Auditor = identity },
		"authority":   func(r *TransferRequest) { r.WithdrawWithheldAuthority = identity },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ps := newParties(t)
			proto := newProtocol(t, Narrow)
			req := ps.request(t, 100, 120, defaultParams)
			mutate(req)

			data, err := proto.Prove(req)
			if err != nil {
				return
			}
			require.ErrorIs(t, proto.Verify(data), ErrVerificationFailed)
		})
	}
}

func TestVerifyTampered(t *testing.T) {
	ps := newParties(t)
	proto := newProtocol(t, Narrow)
	data, err := proto.Prove(ps.request(t, 100, 120, defaultParams))
	require.NoError(t, err)

	g := encryption.Encode(1)
	shift := func(c *encryption.Commitment) { *c = c.Add(g) }
	shiftHandle := func(h *encryption.DecryptHandle) { h.Point.Add(&h.Point, &g.Point) }

	cases := map[string]func(d *TransferWithFeeData){
		"lo commitment":          func(d *TransferWithFeeData) { shift(&d.Lo.Commitment) },
		"lo source handle":       func(d *TransferWithFeeData) { shiftHandle(&d.Lo.SourceHandle) },
		"lo destination handle":  func(d *TransferWithFeeData) { shiftHandle(&d.Lo.DestinationHandle) },
		"lo auditor handle":      func(d *TransferWithFeeData) { shiftHandle(&d.Lo.AuditorHandle) },
		"hi commitment":          func(d *TransferWithFeeData) { shift(&d.Hi.Commitment) },
		"hi source handle":       func(d *TransferWithFeeData) { shiftHandle(&d.Hi.SourceHandle) },
		"hi destination handle":  func(d *TransferWithFeeData) { shiftHandle(&d.Hi.DestinationHandle) },
		"hi auditor handle":      func(d *TransferWithFeeData) { shiftHandle(&d.Hi.AuditorHandle) },
		"new source commitment":  func(d *TransferWithFeeData) { shift(&d.NewSourceCiphertext.Commitment) },
		"new source handle":      func(d *TransferWithFeeData) { shiftHandle(&d.NewSourceCiphertext.Handle) },
		"fee commitment":         func(d *TransferWithFeeData) { shift(&d.Fee.Commitment) },
		"fee destination handle": func(d *TransferWithFeeData) { shiftHandle(&d.Fee.DestinationHandle) },
		"fee authority handle":   func(d *TransferWithFeeData) { shiftHandle(&d.Fee.WithdrawWithheldAuthorityHandle) },
		"proof new source":       func(d *TransferWithFeeData) { shift(&d.Proof.NewSourceCommitment) },
		"proof claimed":          func(d *TransferWithFeeData) { shift(&d.Proof.ClaimedCommitment) },
		"destination key":        func(d *TransferWithFeeData) { d.Keys.Destination = ps.auditor.Public },
		"auditor key":            func(d *TransferWithFeeData) { d.Keys.Auditor = ps.destination.Public },
		"fee rate":               func(d *TransferWithFeeData) { d.FeeParameters.FeeRateBasisPoints++ },
		"maximum fee":            func(d *TransferWithFeeData) { d.FeeParameters.MaximumFee++ },
		"equality response":      func(d *TransferWithFeeData) { d.Proof.Equality.Zs.Add(&d.Proof.Equality.Zs, &d.Proof.Equality.Zx) },
		"validity response": func(d *TransferWithFeeData) {
			d.Proof.AmountValidity.Zx.Add(&d.Proof.AmountValidity.Zx, &d.Proof.AmountValidity.Zr)
		},
		"fee sigma response": func(d *TransferWithFeeData) { d.Proof.FeeSigma.ZX.Add(&d.Proof.FeeSigma.ZX, &d.Proof.FeeSigma.ZDelta) },
		"fee validity response": func(d *TransferWithFeeData) {
			d.Proof.FeeValidity.Zx.Add(&d.Proof.FeeValidity.Zx, &d.Proof.FeeValidity.Zr)
		},
		"range t_x": func(d *TransferWithFeeData) { d.Proof.Range.TX.Add(&d.Proof.Range.TX, &d.Proof.Range.TXBlinding) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tampered := *data
			mutate(&tampered)
			require.ErrorIs(t, proto.Verify(&tampered), ErrVerificationFailed)
		})
	}

	t.Run("original still verifies", func(t *testing.T) {
		require.NoError(t, proto.Verify(data))
	})

	t.Run("wrong variant", func(t *testing.T) {
		require.ErrorIs(t, newProtocol(t, Wide).Verify(data), ErrVerificationFailed)
	})
}

func TestDecryptRoles(t *testing.T) {
	ps := newParties(t)
	proto := newProtocol(t, Narrow)
	data, err := proto.Prove(ps.request(t, 100, 120, defaultParams))
	require.NoError(t, err)

	_, err = proto.DecryptAmount(data, RoleWithdrawWithheldAuthority, &ps.authority.Secret)
	require.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = proto.DecryptFee(data, RoleAuditor, &ps.auditor.Secret)
	require.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = proto.DecryptFee(data, RoleSource, &ps.source.Secret)
	require.ErrorIs(t, err, ErrDecryptionFailed)

	// a key that does not match the handle yields an unrecoverable point
	_, err = proto.DecryptAmount(data, RoleDestination, &ps.auditor.Secret)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}
