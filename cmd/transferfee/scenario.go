// scenario.go - Concurrent N-transfer scenario.
//
// One destination, one auditor and one withdraw-withheld authority are shared by
// every transfer; each transfer has its own source keypair and balance. For each
// transfer the scenario:
//   - builds the artifact from the source's encrypted balance
//   - verifies it as an independent verifier would
//   - decrypts the amount as the destination and the fee as the authority
//   - appends the encoded artifact to the bundle
//
// The bundle is saved once all transfers have completed.

package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"feeproof/internal/encryption"
	"feeproof/internal/transferfee"
)

// errAmountMismatch is returned when a decrypted value differs from the proved one.
var errAmountMismatch = errors.New("decrypted value does not match")

type recipients struct {
	destination, auditor, authority *encryption.Keypair
}

func newRecipients() (*recipients, error) {
	var r recipients
	for _, kp := range []**encryption.Keypair{&r.destination, &r.auditor, &r.authority} {
		k, err := encryption.NewKeypair()
		if err != nil {
			return nil, err
		}
		*kp = k
	}
	return &r, nil
}

// scenario holds everything shared between the transfers of one run.
type scenario struct {
	cfg     *Config
	log     *Logger
	metrics *MetricsCollector
	proto   *transferfee.Protocol
	to      *recipients
	bundle  *Bundle
}

func newScenario(cfg *Config, log *Logger, metrics *MetricsCollector) (*scenario, error) {
	proto, err := transferfee.NewProtocol(cfg.ProtocolVariant())
	if err != nil {
		return nil, err
	}
	to, err := newRecipients()
	if err != nil {
		return nil, fmt.Errorf("generate recipient keys: %w", err)
	}
	return &scenario{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		proto:   proto,
		to:      to,
		bundle:  NewBundle(),
	}, nil
}

// run executes every transfer, at most MaxConcurrency at a time, and saves the
// bundle. The first failing transfer cancels the rest.
func (s *scenario) run(ctx context.Context) error {
	s.log.Info().
		Str("variant", s.proto.Variant().String()).
		Int("transfers", s.cfg.NumTransfers).
		Int("max_concurrency", s.cfg.MaxConcurrency).
		Msg("starting transfer scenario")
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for i := 0; i < s.cfg.NumTransfers; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.transfer(i); err != nil {
				s.metrics.RecordError("transfer")
				return fmt.Errorf("transfer %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.metrics.RecordBundleSize(s.bundle.Len())
	if err := s.bundle.SaveToFile(s.cfg.BundlePath); err != nil {
		return fmt.Errorf("save bundle: %w", err)
	}
	s.log.Info().
		Int("artifacts", s.bundle.Len()).
		Str("bundle", s.cfg.BundlePath).
		Dur("elapsed", time.Since(start)).
		Msg("transfer scenario complete")
	return nil
}

func (s *scenario) transfer(i int) error {
	amount := s.cfg.BaseAmount + uint64(i)
	params := s.cfg.FeeParameters()

	source, err := encryption.NewKeypair()
	if err != nil {
		return err
	}
	defer source.Secret.Zeroize()
	balance, _, err := source.Public.Encrypt(s.cfg.InitialBalance)
	if err != nil {
		return err
	}

	proveStart := time.Now()
	data, err := s.proto.Prove(&transferfee.TransferRequest{
		Amount:                    amount,
		SpendableBalance:          s.cfg.InitialBalance,
		SourceCiphertext:          balance,
		Source:                    source,
		Destination:               s.to.destination.Public,
		Auditor:                   s.to.auditor.Public,
		WithdrawWithheldAuthority: s.to.authority.Public,
		FeeParameters:             params,
	})
	if err != nil {
		return err
	}
	s.metrics.RecordProofGeneration(time.Since(proveStart))

	verifyStart := time.Now()
	if err := s.proto.Verify(data); err != nil {
		s.metrics.RecordVerificationFailure()
		return err
	}
	s.metrics.RecordProofVerification(time.Since(verifyStart))

	if err := s.checkDecryption(data, amount, params); err != nil {
		return err
	}

	d, err := s.bundle.Append(s.proto.Variant(), data)
	if err != nil {
		return err
	}
	s.metrics.RecordTransfer(s.proto.Variant().String())
	s.log.Debug().Int("transfer", i).Str("digest", d).Msg("transfer appended to bundle")
	s.log.Audit("transfer_proved", map[string]any{
		"transfer": i,
		"digest":   d,
		"variant":  s.proto.Variant().String(),
	})
	return nil
}

// checkDecryption recovers the amount as the destination and auditor and the
// fee as the withdraw-withheld authority. Fees of 2^32 or more are not
// recoverable by discrete log and are skipped.
func (s *scenario) checkDecryption(data *transferfee.TransferWithFeeData, amount uint64, params transferfee.FeeParameters) error {
	for _, role := range []struct {
		role transferfee.Role
		kp   *encryption.Keypair
	}{
		{transferfee.RoleDestination, s.to.destination},
		{transferfee.RoleAuditor, s.to.auditor},
	} {
		got, err := s.proto.DecryptAmount(data, role.role, &role.kp.Secret)
		if err != nil {
			return err
		}
		if got != amount {
			return fmt.Errorf("%w: %s amount", errAmountMismatch, role.role)
		}
	}

	fee, _, err := transferfee.CalculateFee(amount, params.FeeRateBasisPoints)
	if err != nil {
		return err
	}
	want := transferfee.ClampFee(fee, params.MaximumFee)
	if want > math.MaxUint32 {
		return nil
	}
	got, err := s.proto.DecryptFee(data, transferfee.RoleWithdrawWithheldAuthority, &s.to.authority.Secret)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: fee", errAmountMismatch)
	}
	return nil
}

// verifyBundle re-verifies every artifact of a saved bundle and returns how
// many were rejected.
func verifyBundle(b *Bundle, log *Logger, metrics *MetricsCollector) (rejected int, err error) {
	for _, e := range b.Entries() {
		v, err := transferfee.ParseVariant(e.Variant)
		if err != nil {
			return rejected, fmt.Errorf("entry %s: %w", e.Digest, err)
		}
		proto, err := transferfee.NewProtocol(v)
		if err != nil {
			return rejected, err
		}

		data, err := e.Decode()
		if err == nil {
			start := time.Now()
			err = proto.Verify(data)
			metrics.RecordProofVerification(time.Since(start))
		}
		if err != nil {
			rejected++
			metrics.RecordVerificationFailure()
			log.Warn().Str("digest", e.Digest).Err(err).Msg("artifact rejected")
			log.Audit("artifact_rejected", map[string]any{"digest": e.Digest})
			continue
		}
		log.Debug().Str("digest", e.Digest).Msg("artifact verified")
	}
	return rejected, nil
}
